package lib

import (
	"time"

	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/syncer"
)

// Importance is how important a task is.
type Importance int

const (
	ImportanceDoOrDie Importance = model.ImportanceDoOrDie
	ImportanceMustDo  Importance = model.ImportanceMustDo
	ImportanceShould  Importance = model.ImportanceShould
	ImportanceNone    Importance = model.ImportanceNone
)

// TaskState is the lifecycle state of a task.
type TaskState string

const (
	TaskStateOpen      TaskState = TaskState(model.LifecycleOpen)
	TaskStateCompleted TaskState = TaskState(model.LifecycleCompleted)
	// TaskStateDeleted tasks are removed once the CRM activity is closed.
	TaskStateDeleted TaskState = TaskState(model.LifecycleDeleted)
)

// Task is a local task.
type Task struct {
	ID               string
	Title            string
	Notes            string
	Importance       Importance
	State            TaskState
	Tags             []string
	DueAt            *time.Time
	CreatedAt        time.Time
	ModifiedAt       time.Time
	ElapsedSeconds   int
	EstimatedSeconds int

	// ActivityID is the CRM activity the task is linked to, empty when not synced yet.
	ActivityID string
	// LocalOnly tasks are never sent to the CRM.
	LocalOnly bool
}

// AddTaskOpts are the options to add a task.
type AddTaskOpts struct {
	Title      string
	Notes      string
	Importance Importance
	// DueAt is optional.
	DueAt    *time.Time
	Estimate time.Duration
	Tags     []string
	// LocalOnly keeps the task out of the CRM.
	LocalOnly bool
}

// ListTasksOpts are the options to list tasks.
type ListTasksOpts struct {
	// TagPattern is a glob (e.g. "work/**"), only tasks with a matching tag are listed.
	TagPattern string
	// All includes completed and deleted tasks.
	All bool
}

// SyncResult is the summary of a sync pass.
type SyncResult struct {
	PassID     string
	StartedAt  time.Time
	FinishedAt time.Time
	// Aborted is set when the pass was interrupted by a context cancellation.
	Aborted  bool
	Created  int
	Pushed   int
	Pulled   int
	Deleted  int
	Unsynced int
	// Skipped counts the tasks not pushed because the CRM has no creator to file them under.
	Skipped  int
	Comments int
}

// Status is the sync status of the local store.
type Status struct {
	LastSuccessAt *time.Time
	LastAttemptAt *time.Time
	LastError     string
	Ongoing       bool
	Tasks         int
	Synced        int
	LocalOnly     int
	Pending       int
}

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromInternalTask(c model.TaskContainer) Task {
	return Task{
		ID:               c.Task.ID,
		Title:            c.Task.Title,
		Notes:            c.Task.Notes,
		Importance:       Importance(c.Task.Importance),
		State:            TaskState(c.LifecycleState()),
		Tags:             append([]string(nil), c.Tags...),
		DueAt:            optTime(c.Task.DueAt),
		CreatedAt:        c.Task.CreatedAt,
		ModifiedAt:       c.Task.ModifiedAt,
		ElapsedSeconds:   c.Task.ElapsedSeconds,
		EstimatedSeconds: c.Task.EstimatedSeconds,
		ActivityID:       c.Remote.ActivityID,
		LocalOnly:        c.Remote.Unsynced() || c.Remote.OptedOut(),
	}
}

func fromInternalTaskList(cs []model.TaskContainer) []Task {
	ts := make([]Task, 0, len(cs))
	for _, c := range cs {
		ts = append(ts, fromInternalTask(c))
	}
	return ts
}

func fromInternalSyncResult(r syncer.Result) SyncResult {
	return SyncResult{
		PassID:     r.PassID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Aborted:    r.Aborted,
		Created:    r.Created,
		Pushed:     r.Pushed,
		Pulled:     r.Pulled,
		Deleted:    r.Deleted,
		Unsynced:   r.Unsynced,
		Skipped:    r.Skipped,
		Comments:   r.Comments,
	}
}

func fromInternalStatus(r model.StatusReport) Status {
	return Status{
		LastSuccessAt: optTime(r.Status.LastSuccessAt),
		LastAttemptAt: optTime(r.Status.LastAttemptAt),
		LastError:     r.Status.LastError,
		Ongoing:       r.Status.Ongoing,
		Tasks:         r.Tasks,
		Synced:        r.Synced,
		LocalOnly:     r.Unsynced,
		Pending:       r.Pending,
	}
}
