// Package syncer is the task synchronization engine. A pass matches the local
// tasks with the remote activities, reconciles the diverging ones and pushes
// and pulls the changes made since the last successful pass.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/slok/crxsync/internal/catalog"
	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/metrics"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote"
	"github.com/slok/crxsync/internal/storage"
	"github.com/slok/crxsync/internal/workflow"
)

// ErrorKind is the class of a failed pass.
type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindAuth      ErrorKind = "auth"
	ErrorKindMalformed ErrorKind = "malformed"
	ErrorKindShutdown  ErrorKind = "shutdown"
	ErrorKindTransport ErrorKind = "transport"
)

// ClassifyError returns the kind of a pass error.
func ClassifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, model.ErrShutdown), errors.Is(err, context.Canceled):
		return ErrorKindShutdown
	case errors.Is(err, model.ErrAuthRequired):
		return ErrorKindAuth
	case errors.Is(err, model.ErrMalformedResponse):
		return ErrorKindMalformed
	default:
		return ErrorKindTransport
	}
}

// EngineConfig is the configuration of the sync engine.
type EngineConfig struct {
	Remote     remote.Gateway
	Repository storage.Repository
	// Catalog is created from Repository when missing.
	Catalog     *catalog.Service
	ProcessName string
	Names       workflow.Names
	// DefaultCreator is the remote creator ID new tasks are filed under,
	// model.NoSyncCreator keeps them local.
	DefaultCreator string
	// StaleOngoingAfter is the time after which a persisted ongoing flag is
	// considered left by a crashed process.
	StaleOngoingAfter time.Duration
	Metrics           metrics.Recorder
	Now               func() time.Time
	Logger            log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Remote == nil {
		return fmt.Errorf("remote is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "syncer.Engine"})

	if c.Catalog == nil {
		cat, err := catalog.NewService(catalog.ServiceConfig{Repository: c.Repository, Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create catalog: %w", err)
		}
		c.Catalog = cat
	}
	if c.ProcessName == "" {
		c.ProcessName = model.DefaultConfig().ProcessName
	}
	if c.Names == (workflow.Names{}) {
		c.Names = workflow.DefaultNames()
	}
	if c.StaleOngoingAfter == 0 {
		c.StaleOngoingAfter = time.Hour
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Result is the summary of a sync pass.
type Result struct {
	PassID     string
	StartedAt  time.Time
	FinishedAt time.Time
	// Aborted is true when the pass was interrupted by a shutdown.
	Aborted  bool
	Created  int
	Pushed   int
	Pulled   int
	Deleted  int
	Unsynced int
	// Skipped counts the tasks that could not be pushed for lack of a creator.
	Skipped  int
	Comments int
}

// Engine runs sync passes, one at a time.
type Engine struct {
	cfg     EngineConfig
	ongoing atomic.Bool
	logger  log.Logger
}

// NewEngine returns a new sync engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{cfg: cfg, logger: cfg.Logger}, nil
}

// Run runs one sync pass. A pass interrupted by a shutdown returns an aborted
// result without error. Any other failure is recorded as the last sync error
// and returned. The last successful sync time is only updated on success.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if !e.ongoing.CompareAndSwap(false, true) {
		return nil, model.ErrSyncOngoing
	}
	defer e.ongoing.Store(false)

	repo := e.cfg.Repository
	prefs, err := repo.GetPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get preferences: %w", err)
	}

	now := e.cfg.Now().UTC()
	if prefs.Status.Ongoing && now.Sub(prefs.Status.LastAttemptAt) < e.cfg.StaleOngoingAfter {
		return nil, fmt.Errorf("started at %s: %w", prefs.Status.LastAttemptAt, model.ErrSyncOngoing)
	}

	prefs.Status.Ongoing = true
	prefs.Status.LastAttemptAt = now
	if err := repo.SavePreferences(ctx, *prefs); err != nil {
		return nil, fmt.Errorf("could not save preferences: %w", err)
	}

	res := &Result{PassID: uuid.NewString(), StartedAt: now}
	p := &pass{
		engine:   e,
		cfg:      &e.cfg,
		prefs:    prefs,
		lastSync: prefs.Status.LastSuccessAt,
		res:      res,
		handled:  map[string]bool{},
		logger:   e.logger.WithValues(log.Kv{"pass": res.PassID}),
	}

	// The ongoing flag is cleared whatever happens, even on shutdown.
	defer func() {
		prefs.Status.Ongoing = false
		if err := repo.SavePreferences(context.WithoutCancel(ctx), *prefs); err != nil {
			e.logger.Errorf("Could not clear ongoing sync flag: %s", err)
		}
	}()

	p.logger.Infof("Sync pass started")
	passErr := p.run(ctx)
	res.FinishedAt = e.cfg.Now().UTC()
	duration := res.FinishedAt.Sub(res.StartedAt)

	kind := ClassifyError(passErr)
	if passErr != nil && ctx.Err() != nil {
		kind = ErrorKindShutdown
	}

	switch kind {
	case ErrorKindNone:
		prefs.Status.LastSuccessAt = res.FinishedAt
		prefs.Status.LastError = ""
		e.cfg.Metrics.ObservePass("success", duration)
		p.logger.WithValues(log.Kv{
			"created":  res.Created,
			"pushed":   res.Pushed,
			"pulled":   res.Pulled,
			"deleted":  res.Deleted,
			"unsynced": res.Unsynced,
			"skipped":  res.Skipped,
			"comments": res.Comments,
		}).Infof("Sync pass finished")
		return res, nil

	case ErrorKindShutdown:
		res.Aborted = true
		e.cfg.Metrics.ObservePass(string(kind), duration)
		p.logger.Debugf("Sync pass aborted by shutdown")
		return res, nil

	default:
		prefs.Status.LastError = passErr.Error()
		e.cfg.Metrics.ObservePass(string(kind), duration)
		p.logger.WithValues(log.Kv{"kind": kind}).Errorf("Sync pass failed: %s", passErr)
		return res, fmt.Errorf("sync pass failed: %w", passErr)
	}
}

// Ongoing returns true while a pass is running in this process.
func (e *Engine) Ongoing() bool { return e.ongoing.Load() }
