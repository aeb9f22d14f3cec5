package lib

import (
	"context"
	"fmt"

	"github.com/slok/crxsync/internal/app/complete"
	"github.com/slok/crxsync/internal/app/create"
	"github.com/slok/crxsync/internal/app/list"
	"github.com/slok/crxsync/internal/app/remove"
	"github.com/slok/crxsync/internal/app/status"
	appsync "github.com/slok/crxsync/internal/app/sync"
	"github.com/slok/crxsync/internal/conventions"
	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote/fake"
	"github.com/slok/crxsync/internal/storage"
	"github.com/slok/crxsync/internal/storage/memory"
	"github.com/slok/crxsync/internal/storage/sqlite"
	"github.com/slok/crxsync/internal/syncer"
	"github.com/slok/crxsync/internal/workflow"
)

// NoSyncCreator is the DefaultCreator value that keeps new tasks out of the CRM.
const NoSyncCreator = model.NoSyncCreator

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses ~/.crxsync/crxsync.db for
// storage and the default in-memory CRM.
type Config struct {
	// DBPath is the SQLite database path.
	// Default: ~/.crxsync/crxsync.db.
	DBPath string

	// InMemory stores the tasks in memory instead of SQLite, DBPath is ignored.
	InMemory bool

	// CRMSeed is the YAML state the in-memory CRM starts with, see
	// [Client.CRMSnapshot]. Default: a CRM with the default activity process.
	CRMSeed []byte

	// ProcessName is the CRM activity process tasks are synced with.
	ProcessName string

	// DefaultCreator is the CRM creator ID new tasks are filed under. Use
	// [NoSyncCreator] to keep new tasks local. Default: the first creator.
	DefaultCreator string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DBPath == "" && !c.InMemory {
		c.DBPath = conventions.DBPath(conventions.DataDir())
	}

	if c.ProcessName == "" {
		c.ProcessName = model.DefaultConfig().ProcessName
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point to sync tasks programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use, concurrent syncs fail with [ErrSyncOngoing].
type Client struct {
	repo    storage.Repository
	remote  *fake.Gateway
	sync    *appsync.Service
	list    *list.Service
	create  *create.Service
	remove  *remove.Service
	done    *complete.Service
	status  *status.Service
	closeFn func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{closeFn: func() error { return nil }}

	if cfg.InMemory {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo = repo
	} else {
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: cfg.DBPath,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo = repo
		c.closeFn = repo.Close
	}

	if err := c.init(cfg); err != nil {
		_ = c.closeFn()
		return nil, err
	}

	return c, nil
}

func (c *Client) init(cfg Config) error {
	var seed *fake.Seed
	if len(cfg.CRMSeed) > 0 {
		s, err := fake.LoadSeed(cfg.CRMSeed)
		if err != nil {
			return mapError(fmt.Errorf("invalid CRM seed: %w: %w", err, model.ErrNotValid))
		}
		seed = s
	}

	names := workflow.DefaultNames()
	rem, err := fake.NewGateway(fake.GatewayConfig{
		Seed:   seed,
		Names:  names,
		Logger: cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create CRM: %w", err)
	}
	c.remote = rem

	engine, err := syncer.NewEngine(syncer.EngineConfig{
		Remote:         rem,
		Repository:     c.repo,
		ProcessName:    cfg.ProcessName,
		Names:          names,
		DefaultCreator: cfg.DefaultCreator,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create sync engine: %w", err)
	}

	if c.sync, err = appsync.NewService(appsync.ServiceConfig{Engine: engine, Logger: cfg.Logger}); err != nil {
		return err
	}
	if c.list, err = list.NewService(list.ServiceConfig{Repository: c.repo, Logger: cfg.Logger}); err != nil {
		return err
	}
	if c.create, err = create.NewService(create.ServiceConfig{Repository: c.repo, Logger: cfg.Logger}); err != nil {
		return err
	}
	if c.remove, err = remove.NewService(remove.ServiceConfig{Repository: c.repo, Logger: cfg.Logger}); err != nil {
		return err
	}
	if c.done, err = complete.NewService(complete.ServiceConfig{Repository: c.repo, Logger: cfg.Logger}); err != nil {
		return err
	}
	if c.status, err = status.NewService(status.ServiceConfig{Repository: c.repo, Logger: cfg.Logger}); err != nil {
		return err
	}

	return nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	return c.closeFn()
}

// Sync runs a sync pass between the local tasks and the CRM.
func (c *Client) Sync(ctx context.Context) (*SyncResult, error) {
	res, err := c.sync.Run(ctx, appsync.Request{})
	if err != nil {
		return nil, mapError(err)
	}
	r := fromInternalSyncResult(*res)
	return &r, nil
}

// ListTasks lists the local tasks. opts may be nil.
func (c *Client) ListTasks(ctx context.Context, opts *ListTasksOpts) ([]Task, error) {
	req := list.Request{}
	if opts != nil {
		req.TagPattern = opts.TagPattern
		req.All = opts.All
	}

	tasks, err := c.list.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	return fromInternalTaskList(tasks), nil
}

// AddTask adds a local task, the next sync sends it to the CRM.
func (c *Client) AddTask(ctx context.Context, opts AddTaskOpts) (*Task, error) {
	req := create.Request{
		Title:            opts.Title,
		Notes:            opts.Notes,
		Importance:       int(opts.Importance),
		EstimatedSeconds: int(opts.Estimate.Seconds()),
		Tags:             opts.Tags,
		NoSync:           opts.LocalOnly,
	}
	if opts.DueAt != nil {
		req.DueAt = *opts.DueAt
	}

	t, err := c.create.Run(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}
	task := fromInternalTask(*t)
	return &task, nil
}

// CompleteTask marks a task as completed by title or ID.
func (c *Client) CompleteTask(ctx context.Context, titleOrID string) (*Task, error) {
	return c.setCompleted(ctx, titleOrID, false)
}

// ReopenTask marks a completed task as open by title or ID.
func (c *Client) ReopenTask(ctx context.Context, titleOrID string) (*Task, error) {
	return c.setCompleted(ctx, titleOrID, true)
}

func (c *Client) setCompleted(ctx context.Context, titleOrID string, reopen bool) (*Task, error) {
	t, err := c.done.Run(ctx, complete.Request{TitleOrID: titleOrID, Reopen: reopen})
	if err != nil {
		return nil, mapError(err)
	}
	task := fromInternalTask(*t)
	return &task, nil
}

// RemoveTask removes a task by title or ID. A synced task is kept as deleted
// until the next sync closes its CRM activity, unless force is set.
func (c *Client) RemoveTask(ctx context.Context, titleOrID string, force bool) error {
	_, err := c.remove.Run(ctx, remove.Request{TitleOrID: titleOrID, Force: force})
	return mapError(err)
}

// Status returns the sync status.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	r, err := c.status.Run(ctx, status.Request{})
	if err != nil {
		return nil, mapError(err)
	}
	s := fromInternalStatus(*r)
	return &s, nil
}

// CRMSnapshot returns the current in-memory CRM state as YAML, use it as
// [Config].CRMSeed to start a new client with the same CRM.
func (c *Client) CRMSnapshot() ([]byte, error) {
	return c.remote.Snapshot().Marshal()
}
