package storage

import (
	"context"
	"time"

	"github.com/slok/crxsync/internal/model"
)

// TaskRepository is the local task store. Tasks are stored together with their
// sync metadata and tags.
type TaskRepository interface {
	GetTask(ctx context.Context, id string) (*model.TaskContainer, error)
	// SaveTask creates or replaces the task, its sync metadata and its tags.
	SaveTask(ctx context.Context, c model.TaskContainer) error
	// DeleteTask deletes the task and everything attached to it.
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context) ([]model.TaskContainer, error)
	// ListSyncedTasks returns the tasks that have a remote activity.
	ListSyncedTasks(ctx context.Context) ([]model.TaskContainer, error)
	// ListLocallyCreatedTasks returns the tasks that were never seen by a sync.
	ListLocallyCreatedTasks(ctx context.Context) ([]model.TaskContainer, error)
	// ListLocallyUpdatedTasks returns the tasks with sync metadata modified after since.
	ListLocallyUpdatedTasks(ctx context.Context, since time.Time) ([]model.TaskContainer, error)
	// ClearSyncMetadata forgets all the remote tracking information.
	ClearSyncMetadata(ctx context.Context) error
}

// CommentRepository is the local comment store.
type CommentRepository interface {
	CreateComment(ctx context.Context, c model.Comment) error
	// ListComments returns the comments of the task created after since, oldest first.
	ListComments(ctx context.Context, taskID string, since time.Time) ([]model.Comment, error)
}

// CatalogRepository stores the remote lookup tables.
type CatalogRepository interface {
	ListCreators(ctx context.Context) ([]model.Creator, error)
	// ReplaceCreators stores the creators and removes the ones missing.
	ReplaceCreators(ctx context.Context, creators []model.Creator) error
	ListContacts(ctx context.Context) ([]model.Contact, error)
	// ReplaceContacts stores the contacts and removes the ones missing.
	ReplaceContacts(ctx context.Context, contacts []model.Contact) error
}

// PreferencesRepository stores the sync preferences.
type PreferencesRepository interface {
	GetPreferences(ctx context.Context) (*model.Preferences, error)
	SavePreferences(ctx context.Context, p model.Preferences) error
}

// Repository is the whole local store.
type Repository interface {
	TaskRepository
	CommentRepository
	CatalogRepository
	PreferencesRepository
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository
