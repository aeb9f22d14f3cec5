package status

import (
	"context"
	"fmt"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
)

// Repository is the storage the status is read from.
type Repository interface {
	storage.TaskRepository
	storage.PreferencesRepository
}

// ServiceConfig is the configuration for the status service.
type ServiceConfig struct {
	Repository Repository
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

// Service reports the sync status.
type Service struct {
	repo   Repository
	logger log.Logger
}

// NewService creates a new status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the status request parameters.
type Request struct{}

// Run returns the last sync status and the task counts of the local store.
func (s *Service) Run(ctx context.Context, req Request) (*model.StatusReport, error) {
	prefs, err := s.repo.GetPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get preferences: %w", err)
	}

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	report := &model.StatusReport{
		Status:            prefs.Status,
		UserContactID:     prefs.UserContactID,
		PendingResourceID: prefs.PendingResourceID,
		Tasks:             len(tasks),
	}
	for _, t := range tasks {
		switch {
		case t.Remote.Synced():
			report.Synced++
		case t.Remote.Unsynced():
			report.Unsynced++
		default:
			report.Pending++
		}
	}

	return report, nil
}
