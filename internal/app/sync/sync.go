package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/syncer"
)

// Engine runs sync passes.
type Engine interface {
	Run(ctx context.Context) (*syncer.Result, error)
}

// MetricsExporter writes the metrics in the node exporter textfile format.
type MetricsExporter interface {
	WriteTextfile(path string) error
}

// ServiceConfig is the configuration for the sync service.
type ServiceConfig struct {
	Engine Engine
	// Metrics is optional, when set metrics are written to MetricsTextfile after every pass.
	Metrics         MetricsExporter
	MetricsTextfile string
	Logger          log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}

	if c.Metrics != nil && c.MetricsTextfile == "" {
		return fmt.Errorf("metrics textfile is required when exporting metrics")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Service runs the task synchronization, once or periodically.
type Service struct {
	engine   Engine
	metrics  MetricsExporter
	textfile string
	logger   log.Logger
}

// NewService creates a new sync service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		engine:   cfg.Engine,
		metrics:  cfg.Metrics,
		textfile: cfg.MetricsTextfile,
		logger:   cfg.Logger,
	}, nil
}

// Request represents the sync request parameters.
type Request struct {
	// Interval makes the service run a pass every interval until the context
	// is done. A single pass is run when zero.
	Interval time.Duration
}

// Run runs the sync. In periodic mode failed passes are logged and retried
// on the next tick, the result of the last pass is returned.
func (s *Service) Run(ctx context.Context, req Request) (*syncer.Result, error) {
	if req.Interval < 0 {
		return nil, fmt.Errorf("interval can't be negative: %w", model.ErrNotValid)
	}

	if req.Interval == 0 {
		return s.pass(ctx)
	}

	s.logger.Infof("Running sync every %s", req.Interval)
	ticker := time.NewTicker(req.Interval)
	defer ticker.Stop()

	var last *syncer.Result
	for {
		res, err := s.pass(ctx)
		switch {
		case errors.Is(err, model.ErrSyncOngoing):
			s.logger.Infof("Sync already running, skipping")
		case err != nil:
			s.logger.Errorf("Sync failed: %s", err)
		default:
			last = res
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			s.logger.Debugf("Stopping periodic sync")
			return last, nil
		}
	}
}

func (s *Service) pass(ctx context.Context) (*syncer.Result, error) {
	res, err := s.engine.Run(ctx)

	if s.metrics != nil {
		if merr := s.metrics.WriteTextfile(s.textfile); merr != nil {
			s.logger.Warningf("Could not write metrics textfile: %s", merr)
		}
	}

	if err != nil {
		return res, fmt.Errorf("could not sync tasks: %w", err)
	}
	return res, nil
}
