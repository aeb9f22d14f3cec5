package model

import (
	"fmt"
	"strings"
	"time"
)

// Field identifies a synchronizable task field. Fields are bit flags so a
// set of them can be stored in a single value.
type Field uint16

const (
	FieldTitle Field = 1 << iota
	FieldNotes
	FieldImportance
	FieldDueAt
	FieldCompletedAt
	FieldDeletedAt
	FieldElapsed
	FieldEstimated
	FieldModifiedAt
	FieldCreatedAt

	// FieldsAll is the set of all the task fields.
	FieldsAll = FieldTitle | FieldNotes | FieldImportance | FieldDueAt | FieldCompletedAt |
		FieldDeletedAt | FieldElapsed | FieldEstimated | FieldModifiedAt | FieldCreatedAt
)

var fieldNames = []struct {
	f    Field
	name string
}{
	{FieldTitle, "title"},
	{FieldNotes, "notes"},
	{FieldImportance, "importance"},
	{FieldDueAt, "due"},
	{FieldCompletedAt, "completed"},
	{FieldDeletedAt, "deleted"},
	{FieldElapsed, "elapsed"},
	{FieldEstimated, "estimated"},
	{FieldModifiedAt, "modified"},
	{FieldCreatedAt, "created"},
}

// Has returns true if all the fields of o are present in f.
func (f Field) Has(o Field) bool { return f&o == o }

func (f Field) String() string {
	names := []string{}
	for _, fn := range fieldNames {
		if f.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

// Importance levels, lower is more important.
const (
	ImportanceDoOrDie = 0
	ImportanceMustDo  = 1
	ImportanceShould  = 2
	ImportanceNone    = 3
)

// Lifecycle is the coarse state of a task used to reconcile local and remote copies.
type Lifecycle string

const (
	LifecycleOpen      Lifecycle = "open"
	LifecycleCompleted Lifecycle = "completed"
	LifecycleDeleted   Lifecycle = "deleted"
)

// Task is the user visible task record.
type Task struct {
	ID               string
	Title            string
	Notes            string
	Importance       int
	DueAt            time.Time
	CreatedAt        time.Time
	CompletedAt      time.Time
	DeletedAt        time.Time
	ModifiedAt       time.Time
	ElapsedSeconds   int
	EstimatedSeconds int

	// Fields is the set of fields that hold a value in this record.
	Fields Field
}

// Has returns true when the task holds a value for the field.
func (t Task) Has(f Field) bool { return t.Fields.Has(f) }

// IsDeleted returns true if the task has been deleted.
func (t Task) IsDeleted() bool { return !t.DeletedAt.IsZero() }

// IsCompleted returns true if the task has been completed.
func (t Task) IsCompleted() bool { return !t.CompletedAt.IsZero() }

// HasDueDate returns true if the task has a due date.
func (t Task) HasDueDate() bool { return !t.DueAt.IsZero() }

// PresentFields returns the fields of a fully loaded record that hold a value.
// Time fields without value are not present.
func (t Task) PresentFields() Field {
	f := FieldTitle | FieldNotes | FieldImportance | FieldElapsed | FieldEstimated
	times := []struct {
		f Field
		t time.Time
	}{
		{FieldDueAt, t.DueAt},
		{FieldCompletedAt, t.CompletedAt},
		{FieldDeletedAt, t.DeletedAt},
		{FieldModifiedAt, t.ModifiedAt},
		{FieldCreatedAt, t.CreatedAt},
	}
	for _, tt := range times {
		if !tt.t.IsZero() {
			f |= tt.f
		}
	}
	return f
}

// Lifecycle returns the lifecycle state of the task, deletion wins over completion.
func (t Task) Lifecycle() Lifecycle {
	switch {
	case t.IsDeleted():
		return LifecycleDeleted
	case t.IsCompleted():
		return LifecycleCompleted
	default:
		return LifecycleOpen
	}
}

// Validate validates the task.
func (t Task) Validate() error {
	if t.Has(FieldTitle) && strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}

	if t.Importance < ImportanceDoOrDie || t.Importance > ImportanceNone {
		return fmt.Errorf("importance must be between %d and %d", ImportanceDoOrDie, ImportanceNone)
	}

	if t.ElapsedSeconds < 0 || t.EstimatedSeconds < 0 {
		return fmt.Errorf("elapsed and estimated seconds can't be negative")
	}

	return nil
}

// PriorityStars returns the remote priority for the task importance.
func PriorityStars(importance int) int { return 5 - importance }

// ImportanceFromStars returns the local importance for a remote priority.
func ImportanceFromStars(stars int) int {
	importance := 5 - stars
	switch {
	case importance < ImportanceDoOrDie:
		return ImportanceDoOrDie
	case importance > ImportanceNone:
		return ImportanceNone
	}
	return importance
}

// Comment is a local comment (update) attached to a task.
type Comment struct {
	ID        string
	TaskID    string
	TaskTitle string
	Message   string
	CreatedAt time.Time
}
