package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/syncer"
	"github.com/slok/crxsync/internal/workflow"
)

// TablePrinter prints task and sync information in a table format.
type TablePrinter struct {
	writer io.Writer
	now    func() time.Time
}

// NewTablePrinter creates a new table printer. Relative times are computed
// against now, time.Now when nil.
func NewTablePrinter(w io.Writer, now func() time.Time) *TablePrinter {
	if now == nil {
		now = time.Now
	}
	return &TablePrinter{writer: w, now: now}
}

var importanceNames = map[int]string{
	model.ImportanceDoOrDie: "do-or-die",
	model.ImportanceMustDo:  "must-do",
	model.ImportanceShould:  "should",
	model.ImportanceNone:    "none",
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []model.TaskContainer) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "TITLE\tSTATE\tIMPORTANCE\tDUE\tELAPSED\tTAGS\tSYNC\tMODIFIED")

	now := t.now()
	for _, c := range tasks {
		due := "-"
		if c.Task.HasDueDate() {
			due = FormatDue(c.Task.DueAt, now)
		}
		tags := "-"
		if len(c.Tags) > 0 {
			tags = strings.Join(c.Tags, ",")
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Task.Title,
			c.LifecycleState(),
			importanceNames[c.Task.Importance],
			due,
			FormatSeconds(c.Task.ElapsedSeconds),
			tags,
			syncState(c.Remote),
			RelativeTime(c.Task.ModifiedAt, now),
		)
	}

	return nil
}

func syncState(m model.RemoteMetadata) string {
	switch {
	case m.Synced():
		return "synced"
	case m.Unsynced():
		return "local-only"
	default:
		return "pending"
	}
}

// PrintStatus prints the sync status.
func (t *TablePrinter) PrintStatus(report model.StatusReport) error {
	st := report.Status

	lastSuccess := "never"
	if !st.LastSuccessAt.IsZero() {
		lastSuccess = fmt.Sprintf("%s (%s)", FormatTimestamp(st.LastSuccessAt), RelativeTime(st.LastSuccessAt, t.now()))
	}
	fmt.Fprintf(t.writer, "Last sync:    %s\n", lastSuccess)

	if !st.LastAttemptAt.IsZero() {
		fmt.Fprintf(t.writer, "Last attempt: %s\n", FormatTimestamp(st.LastAttemptAt))
	}
	if st.LastError != "" {
		fmt.Fprintf(t.writer, "Last error:   %s\n", st.LastError)
	}
	fmt.Fprintf(t.writer, "Ongoing:      %t\n", st.Ongoing)

	if report.UserContactID != "" {
		fmt.Fprintf(t.writer, "User:         %s\n", report.UserContactID)
	}
	if report.PendingResourceID != "" {
		fmt.Fprintf(t.writer, "Resource:     %s\n", report.PendingResourceID)
	}

	fmt.Fprintf(t.writer, "Tasks:        %d (synced: %d, local-only: %d, pending: %d)\n",
		report.Tasks, report.Synced, report.Unsynced, report.Pending)

	return nil
}

// PrintSyncResult prints a sync pass result.
func (t *TablePrinter) PrintSyncResult(res syncer.Result) error {
	if res.Aborted {
		fmt.Fprintln(t.writer, "Sync aborted")
		return nil
	}

	fmt.Fprintf(t.writer, "Synced in %s: %d created, %d pushed, %d pulled, %d deleted, %d local-only, %d comments",
		res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond),
		res.Created, res.Pushed, res.Pulled, res.Deleted, res.Unsynced, res.Comments)
	if res.Skipped > 0 {
		fmt.Fprintf(t.writer, ", %d skipped (no creator)", res.Skipped)
	}
	fmt.Fprintln(t.writer)
	return nil
}

// PrintPath prints a transition path.
func (t *TablePrinter) PrintPath(path []workflow.Transition) error {
	if len(path) == 0 {
		fmt.Fprintln(t.writer, "Already in the target state")
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "STEP\tTRANSITION\tFROM\tTO")
	for i, tr := range path {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, tr.Name, tr.FromStateID, tr.ToStateID)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
