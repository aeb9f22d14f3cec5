package path

import (
	"context"
	"fmt"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote"
	"github.com/slok/crxsync/internal/workflow"
)

// ServiceConfig is the configuration for the path service.
type ServiceConfig struct {
	Remote      remote.Gateway
	ProcessName string
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Remote == nil {
		return fmt.Errorf("remote is required")
	}

	if c.ProcessName == "" {
		c.ProcessName = model.DefaultConfig().ProcessName
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service computes the transitions needed to move an activity between two
// workflow states.
type Service struct {
	remote      remote.Gateway
	processName string
	logger      log.Logger
}

// NewService creates a new path service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		remote:      cfg.Remote,
		processName: cfg.ProcessName,
		logger:      cfg.Logger,
	}, nil
}

// Request represents the path request parameters.
type Request struct {
	// From and To are state names.
	From string
	To   string
}

// Run returns the shortest transition path between the states.
func (s *Service) Run(ctx context.Context, req Request) ([]workflow.Transition, error) {
	processID, err := s.remote.FetchProcessID(ctx, s.processName)
	if err != nil {
		return nil, fmt.Errorf("could not fetch activity process: %w", err)
	}
	states, err := s.remote.FetchStates(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch workflow states: %w", err)
	}
	transitions, err := s.remote.FetchTransitions(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch workflow transitions: %w", err)
	}

	graph, err := workflow.NewGraph(processID, states, transitions)
	if err != nil {
		return nil, fmt.Errorf("invalid workflow: %w", err)
	}

	from, ok := graph.StateByName(req.From)
	if !ok {
		return nil, fmt.Errorf("state %q: %w", req.From, model.ErrNotFound)
	}
	to, ok := graph.StateByName(req.To)
	if !ok {
		return nil, fmt.Errorf("state %q: %w", req.To, model.ErrNotFound)
	}

	path, ok := graph.ShortestPath(from.ID, to.ID)
	if !ok {
		return nil, fmt.Errorf("no path from %q to %q: %w", req.From, req.To, model.ErrNotFound)
	}

	s.logger.Debugf("found %d transitions path", len(path))
	return path, nil
}
