package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	tasks       map[string]model.TaskContainer
	comments    map[string][]model.Comment
	creators    []model.Creator
	contacts    []model.Contact
	preferences model.Preferences
	mu          sync.RWMutex
	logger      log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		tasks:    make(map[string]model.TaskContainer),
		comments: make(map[string][]model.Comment),
		logger:   cfg.Logger,
	}, nil
}

func copyContainer(c model.TaskContainer) model.TaskContainer {
	c.Tags = model.NormalizeTags(c.Tags)
	c.Raw = nil
	c.Task.Fields = c.Task.PresentFields()
	return c
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.TaskContainer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	c = copyContainer(c)
	return &c, nil
}

// SaveTask creates or replaces a task.
func (r *Repository) SaveTask(ctx context.Context, c model.TaskContainer) error {
	if c.Task.ID == "" {
		return fmt.Errorf("task id is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[c.Task.ID] = copyContainer(c)
	r.logger.Debugf("Saved task in repository: %s", c.Task.ID)
	return nil
}

// DeleteTask deletes a task and its comments.
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	delete(r.tasks, id)
	delete(r.comments, id)
	r.logger.Debugf("Deleted task from repository: %s", id)
	return nil
}

func (r *Repository) list(filter func(c model.TaskContainer) bool) []model.TaskContainer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []model.TaskContainer{}
	for _, c := range r.tasks {
		if filter(c) {
			res = append(res, copyContainer(c))
		}
	}

	// Same order as the SQL implementation.
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Task.CreatedAt.Equal(res[j].Task.CreatedAt) {
			return res[i].Task.CreatedAt.Before(res[j].Task.CreatedAt)
		}
		return res[i].Task.ID < res[j].Task.ID
	})
	return res
}

// ListTasks returns all the tasks.
func (r *Repository) ListTasks(ctx context.Context) ([]model.TaskContainer, error) {
	return r.list(func(model.TaskContainer) bool { return true }), nil
}

// ListSyncedTasks returns the tasks that have a remote activity.
func (r *Repository) ListSyncedTasks(ctx context.Context) ([]model.TaskContainer, error) {
	return r.list(func(c model.TaskContainer) bool { return c.Remote.Synced() }), nil
}

// ListLocallyCreatedTasks returns the tasks never seen by a sync.
func (r *Repository) ListLocallyCreatedTasks(ctx context.Context) ([]model.TaskContainer, error) {
	return r.list(func(c model.TaskContainer) bool { return c.Remote.ActivityKey == 0 }), nil
}

// ListLocallyUpdatedTasks returns the tasks with sync metadata modified after since.
func (r *Repository) ListLocallyUpdatedTasks(ctx context.Context, since time.Time) ([]model.TaskContainer, error) {
	return r.list(func(c model.TaskContainer) bool {
		return c.Remote.ActivityKey != 0 && c.Task.ModifiedAt.After(since)
	}), nil
}

// ClearSyncMetadata removes the sync metadata of all the tasks.
func (r *Repository) ClearSyncMetadata(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.tasks {
		c.Remote = model.RemoteMetadata{}
		r.tasks[id] = c
	}
	return nil
}

// CreateComment stores a comment.
func (r *Repository) CreateComment(ctx context.Context, c model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[c.TaskID]; !ok {
		return fmt.Errorf("task %s: %w", c.TaskID, model.ErrNotFound)
	}
	for _, existing := range r.comments[c.TaskID] {
		if existing.ID == c.ID {
			return fmt.Errorf("comment %s: %w", c.ID, model.ErrAlreadyExists)
		}
	}

	r.comments[c.TaskID] = append(r.comments[c.TaskID], c)
	return nil
}

// ListComments returns the comments of a task created after since.
func (r *Repository) ListComments(ctx context.Context, taskID string, since time.Time) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []model.Comment{}
	for _, c := range r.comments[taskID] {
		if c.CreatedAt.After(since) {
			res = append(res, c)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// ListCreators returns the creators sorted by name.
func (r *Repository) ListCreators(ctx context.Context) ([]model.Creator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := append([]model.Creator{}, r.creators...)
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// ReplaceCreators replaces all the creators.
func (r *Repository) ReplaceCreators(ctx context.Context, creators []model.Creator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creators = append([]model.Creator{}, creators...)
	return nil
}

// ListContacts returns the contacts sorted by name.
func (r *Repository) ListContacts(ctx context.Context) ([]model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := append([]model.Contact{}, r.contacts...)
	sort.Slice(res, func(i, j int) bool { return res[i].DisplayName() < res[j].DisplayName() })
	return res, nil
}

// ReplaceContacts replaces all the contacts.
func (r *Repository) ReplaceContacts(ctx context.Context, contacts []model.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contacts = append([]model.Contact{}, contacts...)
	return nil
}

// GetPreferences returns the preferences.
func (r *Repository) GetPreferences(ctx context.Context) (*model.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.preferences
	return &p, nil
}

// SavePreferences stores the preferences.
func (r *Repository) SavePreferences(ctx context.Context, p model.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.preferences = p
	return nil
}
