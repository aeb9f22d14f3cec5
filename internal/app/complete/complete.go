package complete

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
)

// ServiceConfig is the configuration for the complete service.
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

// Service completes or reopens local tasks.
type Service struct {
	repo   storage.TaskRepository
	now    func() time.Time
	logger log.Logger
}

// NewService creates a new complete service.
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

// Request represents the complete request parameters.
type Request struct {
	// TitleOrID is the task title or ID.
	TitleOrID string
	// Reopen marks a completed task as open again.
	Reopen bool
}

// Run completes (or reopens) a task by title or ID.
func (s *Service) Run(ctx context.Context, req Request) (*model.TaskContainer, error) {
	s.logger.Debugf("completing task: %s (reopen: %v)", req.TitleOrID, req.Reopen)

	c, err := findTask(ctx, s.repo, req.TitleOrID)
	if err != nil {
		return nil, err
	}

	if c.Task.IsDeleted() {
		return nil, fmt.Errorf("cannot change a removed task: %w", model.ErrNotValid)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	switch {
	case req.Reopen && !c.Task.IsCompleted():
		return nil, fmt.Errorf("cannot reopen task: not completed: %w", model.ErrNotValid)
	case req.Reopen:
		c.Task.CompletedAt = time.Time{}
		c.Task.Fields &^= model.FieldCompletedAt
	case c.Task.IsCompleted():
		return nil, fmt.Errorf("cannot complete task: already completed: %w", model.ErrNotValid)
	default:
		c.Task.CompletedAt = now
		c.Task.Fields |= model.FieldCompletedAt
	}
	c.Task.ModifiedAt = now
	c.Task.Fields |= model.FieldModifiedAt

	if err := s.repo.SaveTask(ctx, *c); err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	s.logger.Infof("task %s: %s (ID: %s)", c.LifecycleState(), c.Task.Title, c.Task.ID)
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
