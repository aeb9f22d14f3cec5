package signout

import (
	"context"
	"fmt"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
)

// ServiceConfig is the configuration for the signout service.
type ServiceConfig struct {
	Repository storage.Repository
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

// Service forgets everything the local store knows about the remote account.
// Local tasks are kept, the next sync treats them as never synced.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new signout service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the signout request parameters.
type Request struct{}

// Run clears the sync metadata, the remote lookup tables and the preferences.
func (s *Service) Run(ctx context.Context, req Request) error {
	prefs, err := s.repo.GetPreferences(ctx)
	if err != nil {
		return fmt.Errorf("could not get preferences: %w", err)
	}
	if prefs.Status.Ongoing {
		return fmt.Errorf("can't sign out: %w", model.ErrSyncOngoing)
	}

	if err := s.repo.ClearSyncMetadata(ctx); err != nil {
		return fmt.Errorf("could not clear sync metadata: %w", err)
	}
	if err := s.repo.ReplaceCreators(ctx, nil); err != nil {
		return fmt.Errorf("could not clear creators: %w", err)
	}
	if err := s.repo.ReplaceContacts(ctx, nil); err != nil {
		return fmt.Errorf("could not clear contacts: %w", err)
	}
	if err := s.repo.SavePreferences(ctx, model.Preferences{}); err != nil {
		return fmt.Errorf("could not clear preferences: %w", err)
	}

	s.logger.Infof("signed out")
	return nil
}
