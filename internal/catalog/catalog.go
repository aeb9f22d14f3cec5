// Package catalog serves the creator and contact lookup tables a sync pass
// needs to translate between local numeric keys and remote IDs.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage"
)

// ServiceConfig is the configuration of the catalog service.
type ServiceConfig struct {
	Repository storage.CatalogRepository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "catalog.Service"})
	return nil
}

// Service caches the lookup tables of the local store. It's empty until it's
// reloaded, and should be invalidated once the sync pass using it ends.
type Service struct {
	repo     storage.CatalogRepository
	logger   log.Logger
	mu       sync.RWMutex
	loaded   bool
	creators map[int64]model.Creator
	contacts map[int64]model.Contact
}

// NewService returns a new catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Update stores the remote creators and contacts, the ones no longer present
// are removed, and reloads the cache.
func (s *Service) Update(ctx context.Context, creators []model.Creator, contacts []model.Contact) error {
	if err := s.repo.ReplaceCreators(ctx, creators); err != nil {
		return fmt.Errorf("could not store creators: %w", err)
	}
	if err := s.repo.ReplaceContacts(ctx, contacts); err != nil {
		return fmt.Errorf("could not store contacts: %w", err)
	}

	return s.Reload(ctx)
}

// Reload loads the lookup tables from the local store.
func (s *Service) Reload(ctx context.Context) error {
	creators, err := s.repo.ListCreators(ctx)
	if err != nil {
		return fmt.Errorf("could not list creators: %w", err)
	}
	contacts, err := s.repo.ListContacts(ctx)
	if err != nil {
		return fmt.Errorf("could not list contacts: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.creators = make(map[int64]model.Creator, len(creators))
	for _, c := range creators {
		s.creators[c.ID] = c
	}
	s.contacts = make(map[int64]model.Contact, len(contacts))
	for _, c := range contacts {
		s.contacts[c.ID] = c
	}
	s.loaded = true

	s.logger.Debugf("Catalog loaded with %d creators and %d contacts", len(creators), len(contacts))
	return nil
}

// Invalidate drops the cached tables.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	s.creators = nil
	s.contacts = nil
}

// Loaded returns true if the tables are cached.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Creator returns the creator with the numeric key.
func (s *Service) Creator(id int64) (model.Creator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creators[id]
	return c, ok
}

// Contact returns the contact with the numeric key.
func (s *Service) Contact(id int64) (model.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	return c, ok
}

// CreatorRemoteID returns the remote ID of a creator key, empty if unknown.
func (s *Service) CreatorRemoteID(id int64) string {
	c, _ := s.Creator(id)
	return c.RemoteID
}

// ContactRemoteID returns the remote ID of a contact key, empty if unknown.
func (s *Service) ContactRemoteID(id int64) string {
	c, _ := s.Contact(id)
	return c.RemoteID
}

// FirstCreator returns the creator with the lowest name, used when nothing else is configured.
func (s *Service) FirstCreator() (model.Creator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first model.Creator
	found := false
	for _, c := range s.creators {
		if !found || c.Name < first.Name || (c.Name == first.Name && c.ID < first.ID) {
			first = c
			found = true
		}
	}
	return first, found
}
