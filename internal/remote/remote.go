package remote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/workflow"
)

// TimeFormat is the wire format of the remote timestamps.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// FormatTime formats a time in the remote wire format, zero times are empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a time in the remote wire format, empty values are zero times.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, model.ErrMalformedResponse)
	}
	return t, nil
}

// Field is a remote activity field that can be set independently.
type Field string

const (
	FieldName           Field = "name"
	FieldDescription    Field = "detailedDescription"
	FieldDueBy          Field = "dueBy"
	FieldPriority       Field = "priority"
	FieldScheduledStart Field = "scheduledStart"
)

// FormatPriority formats a priority as a field value.
func FormatPriority(stars int) string { return strconv.Itoa(stars) }

// FetchKind is the kind of a single activity fetch result.
type FetchKind int

const (
	FetchFound FetchKind = iota
	FetchNotFound
	FetchFailed
)

// FetchResult is the result of fetching a single activity.
type FetchResult struct {
	Kind     FetchKind
	Activity *model.TaskContainer
	// Err is set when Kind is FetchFailed.
	Err error
}

// Found returns a found result.
func Found(a model.TaskContainer) FetchResult { return FetchResult{Kind: FetchFound, Activity: &a} }

// NotFound returns a not found result.
func NotFound() FetchResult { return FetchResult{Kind: FetchNotFound} }

// Failed returns a failed result. Not found errors are converted to not found results.
func Failed(err error) FetchResult {
	if isNotFound(err) {
		return NotFound()
	}
	return FetchResult{Kind: FetchFailed, Err: err}
}

func isNotFound(err error) bool { return errors.Is(err, model.ErrNotFound) }

// CreateActivityRequest are the fields a new activity is created with.
type CreateActivityRequest struct {
	Title           string
	CreatorRemoteID string
	ContactRemoteID string
	DueBy           time.Time
	Priority        int
}

// Gateway performs the remote operations against the CRM activity API. Errors
// wrap model.ErrAuthRequired, model.ErrNotFound or model.ErrMalformedResponse
// when it applies, any other error is a transport error.
type Gateway interface {
	// CurrentUser returns the principal the gateway is authenticated as.
	CurrentUser(ctx context.Context) (*model.User, error)
	ListCreators(ctx context.Context) ([]model.Creator, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)
	ListResources(ctx context.Context) ([]model.Resource, error)

	// FetchProcessID returns the ID of the activity process with the name.
	FetchProcessID(ctx context.Context, processName string) (string, error)
	FetchStates(ctx context.Context, processID string) ([]workflow.State, error)
	FetchTransitions(ctx context.Context, processID string) ([]workflow.Transition, error)

	// FetchActivities returns all the activities that are not closed.
	FetchActivities(ctx context.Context) ([]model.TaskContainer, error)
	FetchActivity(ctx context.Context, activityID string) FetchResult
	CreateActivity(ctx context.Context, req CreateActivityRequest) (*model.TaskContainer, error)
	SetField(ctx context.Context, activityID string, field Field, value string) error
	AssignCreator(ctx context.Context, activityID, creatorRemoteID string) error
	AssignContact(ctx context.Context, activityID, contactRemoteID string) error

	ExecuteTransition(ctx context.Context, activityID, processID, transitionID, title, text string) error
	FetchCurrentProcessAndState(ctx context.Context, activityID string) (processID, stateID string, err error)

	FetchResourceAssignments(ctx context.Context, activityID string) ([]model.ResourceAssignment, error)
	CreateResourceAssignment(ctx context.Context, activityID, resourceID string) error
	DeleteResourceAssignment(ctx context.Context, activityID, assignmentID string) error

	// FetchComments returns the text of the notes added to the activity after since.
	FetchComments(ctx context.Context, activityID, addNoteTransitionID string, since time.Time) ([]string, error)
	CreateWorkRecord(ctx context.Context, activityID, resourceID string, seconds int) error
}

//go:generate mockery --case underscore --output remotemock --outpkg remotemock --name Gateway
