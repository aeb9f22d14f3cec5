package list

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.TaskRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service lists local tasks with optional filtering.
type Service struct {
	repo   storage.TaskRepository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// TagPattern is an optional glob, only tasks with a matching tag are listed.
	TagPattern string
	// All includes completed and deleted tasks.
	All bool
}

// Run lists the local tasks.
func (s *Service) Run(ctx context.Context, req Request) ([]model.TaskContainer, error) {
	if req.TagPattern != "" && !doublestar.ValidatePattern(req.TagPattern) {
		return nil, fmt.Errorf("invalid tag pattern %q: %w", req.TagPattern, model.ErrNotValid)
	}

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	res := make([]model.TaskContainer, 0, len(tasks))
	for _, t := range tasks {
		if !req.All && t.LifecycleState() != model.LifecycleOpen {
			continue
		}
		if req.TagPattern != "" && !matchesAny(req.TagPattern, t.Tags) {
			continue
		}
		res = append(res, t)
	}

	s.logger.Debugf("found %d tasks", len(res))
	return res, nil
}

func matchesAny(pattern string, tags []string) bool {
	for _, tag := range tags {
		if ok, _ := doublestar.Match(pattern, tag); ok {
			return true
		}
	}
	return false
}
