package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/slok/crxsync/internal/model"
)

// ConfigYAMLRepository loads the application configuration from YAML files.
type ConfigYAMLRepository struct {
	fs       fs.FS
	validate *validator.Validate
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{
		fs:       filesystem,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// GetConfig loads the configuration from a YAML file, missing values get their default.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.Config, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.Config{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Config{}, ctx.Err()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.Config{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := r.validate.Struct(cfg); err != nil {
		return model.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg.toModel(), nil
}

// Config represents the YAML structure of the configuration.
type Config struct {
	Remote   RemoteConfig   `yaml:"remote"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Sync     SyncConfig     `yaml:"sync"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// RemoteConfig represents the YAML structure of the remote configuration.
type RemoteConfig struct {
	Kind     string `yaml:"kind" validate:"omitempty,oneof=fake"`
	SeedFile string `yaml:"seed_file"`
	// Persist writes the fake CRM state back to the seed file after every pass.
	Persist bool `yaml:"persist" validate:"excluded_without=SeedFile"`
}

// WorkflowConfig represents the YAML structure of the activity workflow names.
type WorkflowConfig struct {
	Process    string `yaml:"process" validate:"omitempty,max=256"`
	InProgress string `yaml:"in_progress"`
	Complete   string `yaml:"complete"`
	Closed     string `yaml:"closed" validate:"omitempty,nefield=Complete"`
	AddNote    string `yaml:"add_note"`
}

// SyncConfig represents the YAML structure of the sync configuration.
type SyncConfig struct {
	DefaultCreator string        `yaml:"default_creator"`
	Interval       time.Duration `yaml:"interval" validate:"omitempty,min=10s"`
}

// MetricsConfig represents the YAML structure of the metrics configuration.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" validate:"omitempty,max=4096"`
}

func (c Config) toModel() model.Config {
	cfg := model.DefaultConfig()

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.RemoteKind, c.Remote.Kind)
	set(&cfg.SeedFile, c.Remote.SeedFile)
	set(&cfg.ProcessName, c.Workflow.Process)
	set(&cfg.InProgressState, c.Workflow.InProgress)
	set(&cfg.CompleteState, c.Workflow.Complete)
	set(&cfg.ClosedState, c.Workflow.Closed)
	set(&cfg.AddNoteTransition, c.Workflow.AddNote)
	set(&cfg.DefaultCreator, c.Sync.DefaultCreator)
	set(&cfg.MetricsTextfile, c.Metrics.Textfile)
	cfg.PersistSeed = c.Remote.Persist
	if c.Sync.Interval > 0 {
		cfg.SyncInterval = c.Sync.Interval
	}

	return cfg
}
