package create

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
)

// ServiceConfig is the configuration for the create service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Create"})
	return nil
}

// Service creates local tasks, the next sync pass sends them to the CRM.
type Service struct {
	repo   storage.TaskRepository
	now    func() time.Time
	logger log.Logger
}

// NewService creates a new create service.
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

// Request represents the create request parameters.
type Request struct {
	Title            string
	Notes            string
	Importance       int
	DueAt            time.Time
	EstimatedSeconds int
	Tags             []string
	// NoSync keeps the task local, it is never sent to the CRM.
	NoSync bool
}

// Run creates a new local task. Open tasks are matched by title with the CRM
// so two open tasks can't share a title.
func (s *Service) Run(ctx context.Context, req Request) (*model.TaskContainer, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	t := model.Task{
		ID:               ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Title:            strings.TrimSpace(req.Title),
		Notes:            req.Notes,
		Importance:       req.Importance,
		DueAt:            req.DueAt.UTC(),
		CreatedAt:        now,
		ModifiedAt:       now,
		EstimatedSeconds: req.EstimatedSeconds,
	}
	t.Fields = t.PresentFields()

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w: %w", err, model.ErrNotValid)
	}

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	for _, c := range tasks {
		if c.LifecycleState() == model.LifecycleOpen && c.Task.Title == t.Title {
			return nil, fmt.Errorf("open task with title %q already exists: %w", t.Title, model.ErrAlreadyExists)
		}
	}

	c := model.TaskContainer{
		Task: t,
		Tags: model.NormalizeTags(req.Tags),
	}
	if req.NoSync {
		c.Remote.CreatorID = model.CreatorNoSync
	}

	if err := s.repo.SaveTask(ctx, c); err != nil {
		return nil, fmt.Errorf("could not save task: %w", err)
	}

	s.logger.Infof("Created task: %s (%s)", c.Task.Title, c.Task.ID)

	return &c, nil
}
