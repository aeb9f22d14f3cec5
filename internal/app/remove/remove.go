package remove

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
)

// ServiceConfig is the configuration for the remove service.
type ServiceConfig struct {
	Repository storage.TaskRepository
	Now        func() time.Time
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service removes a local task.
type Service struct {
	repo   storage.TaskRepository
	now    func() time.Time
	logger log.Logger
}

// NewService creates a new remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		now:    cfg.Now,
		logger: cfg.Logger,
	}, nil
}

// Request represents the remove request parameters.
type Request struct {
	// TitleOrID is the task title or ID to remove.
	TitleOrID string
	// Force removes the task from the local store right away, its CRM
	// activity is left untouched and is pulled again on the next sync.
	Force bool
}

// Run removes a task by title or ID.
// A task linked to a CRM activity is marked as deleted so the next sync closes
// the activity, the rest are removed from the local store.
func (s *Service) Run(ctx context.Context, req Request) (*model.TaskContainer, error) {
	s.logger.Debugf("removing task: %s (force: %v)", req.TitleOrID, req.Force)

	c, err := findTask(ctx, s.repo, req.TitleOrID)
	if err != nil {
		return nil, err
	}

	if req.Force || !c.Remote.Synced() {
		if err := s.repo.DeleteTask(ctx, c.Task.ID); err != nil {
			return nil, fmt.Errorf("could not delete task: %w", err)
		}
		s.logger.Infof("removed task: %s (ID: %s)", c.Task.Title, c.Task.ID)
		return c, nil
	}

	if c.Task.IsDeleted() {
		return nil, fmt.Errorf("task already removed, waiting for sync: %w", model.ErrNotValid)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	c.Task.DeletedAt = now
	c.Task.ModifiedAt = now
	c.Task.Fields |= model.FieldDeletedAt | model.FieldModifiedAt

	if err := s.repo.SaveTask(ctx, *c); err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	s.logger.Infof("marked task as deleted: %s (ID: %s)", c.Task.Title, c.Task.ID)
	return c, nil
}

// findTask looks up a task by ID first when it looks like a ULID, then by title.
// Removed tasks only match by ID.
func findTask(ctx context.Context, repo storage.TaskRepository, titleOrID string) (*model.TaskContainer, error) {
	if looksLikeULID(titleOrID) {
		c, err := repo.GetTask(ctx, titleOrID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("could not get task: %w", err)
		}
	}

	tasks, err := repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	var found *model.TaskContainer
	for _, c := range tasks {
		if c.Task.Title != titleOrID || c.Task.IsDeleted() {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("more than one task titled %q, use the ID: %w", titleOrID, model.ErrNotValid)
		}
		found = &c
	}
	if found == nil {
		return nil, fmt.Errorf("task not found: %s: %w", titleOrID, model.ErrNotFound)
	}

	return found, nil
}

// looksLikeULID checks if a string looks like a ULID (26 characters, alphanumeric uppercase).
func looksLikeULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
