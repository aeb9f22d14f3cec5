package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	appsync "github.com/slok/crxsync/internal/app/sync"
	"github.com/slok/crxsync/internal/conventions"
	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/metrics/prometheus"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote/fake"
	"github.com/slok/crxsync/internal/storage/io"
	"github.com/slok/crxsync/internal/storage/sqlite"
	"github.com/slok/crxsync/internal/syncer"
	"github.com/slok/crxsync/internal/workflow"
)

// loadConfig loads the configuration file. A missing default config file
// loads the default configuration.
func loadConfig(ctx context.Context, rootCmd *RootCommand) (model.Config, error) {
	path := rootCmd.ConfigPath
	explicit := path != ""
	if !explicit {
		path = conventions.ConfigPath(conventions.DataDir())
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("could not resolve config path: %w", err)
	}

	repo := io.NewConfigYAMLRepository(os.DirFS("/"))
	cfg, err := repo.GetConfig(ctx, path[1:])
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			rootCmd.Logger.Debugf("Config file %s missing, using defaults", path)
			return model.DefaultConfig(), nil
		}
		return model.Config{}, fmt.Errorf("could not load config: %w", err)
	}

	return cfg, nil
}

func workflowNames(cfg model.Config) workflow.Names {
	return workflow.Names{
		InProgress: cfg.InProgressState,
		Complete:   cfg.CompleteState,
		Closed:     cfg.ClosedState,
		AddNote:    cfg.AddNoteTransition,
	}
}

// remoteGateway is the remote the commands talk to, persist stores its state
// when the remote supports it.
type remoteGateway struct {
	*fake.Gateway
	persist func() error
}

func newRemote(cfg model.Config, logger log.Logger) (*remoteGateway, error) {
	if cfg.RemoteKind != model.RemoteKindFake {
		return nil, fmt.Errorf("unknown remote kind %q: %w", cfg.RemoteKind, model.ErrNotValid)
	}

	var seed *fake.Seed
	if cfg.SeedFile != "" {
		data, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("could not read seed file: %w", err)
		}
		seed, err = fake.LoadSeed(data)
		if err != nil {
			return nil, fmt.Errorf("could not load seed: %w", err)
		}
	}

	g, err := fake.NewGateway(fake.GatewayConfig{
		Seed:   seed,
		Names:  workflowNames(cfg),
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create fake remote: %w", err)
	}

	rg := &remoteGateway{Gateway: g, persist: func() error { return nil }}
	if cfg.PersistSeed {
		rg.persist = func() error {
			data, err := g.Snapshot().Marshal()
			if err != nil {
				return err
			}
			return os.WriteFile(cfg.SeedFile, data, 0o600)
		}
	}

	return rg, nil
}

// persistingEngine stores the remote state after every pass.
type persistingEngine struct {
	appsync.Engine
	remote *remoteGateway
	logger log.Logger
}

func (p persistingEngine) Run(ctx context.Context) (*syncer.Result, error) {
	res, err := p.Engine.Run(ctx)
	if perr := p.remote.persist(); perr != nil {
		p.logger.Warningf("Could not persist remote state: %s", perr)
	}
	return res, err
}

// syncDeps are the dependencies of the commands that run sync passes.
type syncDeps struct {
	config     model.Config
	repository *sqlite.Repository
	service    *appsync.Service
}

func newSyncDeps(ctx context.Context, rootCmd *RootCommand) (*syncDeps, error) {
	logger := rootCmd.Logger

	cfg, err := loadConfig(ctx, rootCmd)
	if err != nil {
		return nil, err
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	rem, err := newRemote(cfg, logger)
	if err != nil {
		repo.Close()
		return nil, err
	}

	recorder := prometheus.NewRecorder()
	engine, err := syncer.NewEngine(syncer.EngineConfig{
		Remote:         rem,
		Repository:     repo,
		ProcessName:    cfg.ProcessName,
		Names:          workflowNames(cfg),
		DefaultCreator: cfg.DefaultCreator,
		Metrics:        recorder,
		Logger:         logger,
	})
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("could not create sync engine: %w", err)
	}

	svcCfg := appsync.ServiceConfig{
		Engine: persistingEngine{Engine: engine, remote: rem, logger: logger},
		Logger: logger,
	}
	if cfg.MetricsTextfile != "" {
		svcCfg.Metrics = recorder
		svcCfg.MetricsTextfile = cfg.MetricsTextfile
	}
	svc, err := appsync.NewService(svcCfg)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return &syncDeps{
		config:     cfg,
		repository: repo,
		service:    svc,
	}, nil
}

func (d *syncDeps) Close() error { return d.repository.Close() }
