package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/syncer"
	"github.com/slok/crxsync/internal/workflow"
)

// JSONPrinter prints task and sync information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type taskItem struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Notes            string     `json:"notes,omitempty"`
	Importance       int        `json:"importance"`
	State            string     `json:"state"`
	Tags             []string   `json:"tags"`
	ActivityID       string     `json:"activity_id,omitempty"`
	Unsynced         bool       `json:"unsynced,omitempty"`
	DueAt            *time.Time `json:"due_at,omitempty"`
	ElapsedSeconds   int        `json:"elapsed_seconds"`
	EstimatedSeconds int        `json:"estimated_seconds"`
	ModifiedAt       time.Time  `json:"modified_at"`
}

type statusOutput struct {
	LastSuccessAt     *time.Time `json:"last_success_at"`
	LastAttemptAt     *time.Time `json:"last_attempt_at"`
	LastError         string     `json:"last_error,omitempty"`
	Ongoing           bool       `json:"ongoing"`
	UserContactID     string     `json:"user_contact_id,omitempty"`
	PendingResourceID string     `json:"pending_resource_id,omitempty"`
	Tasks             int        `json:"tasks"`
	Synced            int        `json:"synced"`
	Unsynced          int        `json:"unsynced"`
	Pending           int        `json:"pending"`
}

type syncOutput struct {
	PassID     string    `json:"pass_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Aborted    bool      `json:"aborted"`
	Created    int       `json:"created"`
	Pushed     int       `json:"pushed"`
	Pulled     int       `json:"pulled"`
	Deleted    int       `json:"deleted"`
	Unsynced   int       `json:"unsynced"`
	Skipped    int       `json:"skipped"`
	Comments   int       `json:"comments"`
}

type transitionOutput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	From string `json:"from_state_id"`
	To   string `json:"to_state_id"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTasks prints tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.TaskContainer) error {
	items := make([]taskItem, len(tasks))
	for i, t := range tasks {
		tags := t.Tags
		if tags == nil {
			tags = []string{}
		}
		items[i] = taskItem{
			ID:               t.Task.ID,
			Title:            t.Task.Title,
			Notes:            t.Task.Notes,
			Importance:       t.Task.Importance,
			State:            string(t.LifecycleState()),
			Tags:             tags,
			ActivityID:       t.Remote.ActivityID,
			Unsynced:         t.Remote.Unsynced(),
			DueAt:            optTime(t.Task.DueAt),
			ElapsedSeconds:   t.Task.ElapsedSeconds,
			EstimatedSeconds: t.Task.EstimatedSeconds,
			ModifiedAt:       t.Task.ModifiedAt.UTC(),
		}
	}

	return j.encode(items)
}

// PrintStatus prints the sync status in JSON format.
func (j *JSONPrinter) PrintStatus(report model.StatusReport) error {
	return j.encode(statusOutput{
		LastSuccessAt:     optTime(report.Status.LastSuccessAt),
		LastAttemptAt:     optTime(report.Status.LastAttemptAt),
		LastError:         report.Status.LastError,
		Ongoing:           report.Status.Ongoing,
		UserContactID:     report.UserContactID,
		PendingResourceID: report.PendingResourceID,
		Tasks:             report.Tasks,
		Synced:            report.Synced,
		Unsynced:          report.Unsynced,
		Pending:           report.Pending,
	})
}

// PrintSyncResult prints a sync pass result in JSON format.
func (j *JSONPrinter) PrintSyncResult(res syncer.Result) error {
	return j.encode(syncOutput{
		PassID:     res.PassID,
		StartedAt:  res.StartedAt.UTC(),
		FinishedAt: res.FinishedAt.UTC(),
		Aborted:    res.Aborted,
		Created:    res.Created,
		Pushed:     res.Pushed,
		Pulled:     res.Pulled,
		Deleted:    res.Deleted,
		Unsynced:   res.Unsynced,
		Skipped:    res.Skipped,
		Comments:   res.Comments,
	})
}

// PrintPath prints a transition path in JSON format.
func (j *JSONPrinter) PrintPath(path []workflow.Transition) error {
	items := make([]transitionOutput, len(path))
	for i, t := range path {
		items[i] = transitionOutput{ID: t.ID, Name: t.Name, From: t.FromStateID, To: t.ToStateID}
	}
	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}
