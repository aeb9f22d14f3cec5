package io

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/internal/model"
)

func TestConfigYAMLRepository_GetConfig(t *testing.T) {
	defaultWith := func(f func(c *model.Config)) model.Config {
		c := model.DefaultConfig()
		f(&c)
		return c
	}

	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg model.Config
		expErr bool
	}{
		"Empty config should load the defaults": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("---\n")},
			},
			path:   "config.yaml",
			expCfg: model.DefaultConfig(),
		},

		"A complete config should load successfully": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte(`
remote:
  kind: fake
  seed_file: /tmp/seed.yaml
  persist: true
workflow:
  process: My process
  in_progress: Doing
  complete: Done
  closed: Gone
  add_note: Comment
sync:
  default_creator: no-sync
  interval: 1m
metrics:
  textfile: /tmp/crxsync.prom
`)},
			},
			path: "config.yaml",
			expCfg: defaultWith(func(c *model.Config) {
				c.SeedFile = "/tmp/seed.yaml"
				c.PersistSeed = true
				c.ProcessName = "My process"
				c.InProgressState = "Doing"
				c.CompleteState = "Done"
				c.ClosedState = "Gone"
				c.AddNoteTransition = "Comment"
				c.DefaultCreator = model.NoSyncCreator
				c.SyncInterval = time.Minute
				c.MetricsTextfile = "/tmp/crxsync.prom"
			}),
		},

		"An unknown remote kind should fail": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("remote: {kind: http}\n")},
			},
			path:   "config.yaml",
			expErr: true,
		},

		"Persisting without a seed file should fail": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("remote: {persist: true}\n")},
			},
			path:   "config.yaml",
			expErr: true,
		},

		"A too short interval should fail": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("sync: {interval: 1s}\n")},
			},
			path:   "config.yaml",
			expErr: true,
		},

		"Same closed and complete states should fail": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("workflow: {complete: Done, closed: Done}\n")},
			},
			path:   "config.yaml",
			expErr: true,
		},

		"Invalid YAML should fail": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("remote: [")},
			},
			path:   "config.yaml",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewConfigYAMLRepository(test.fs)

			cfg, err := repo.GetConfig(context.Background(), test.path)

			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expCfg, cfg)
		})
	}
}

func TestConfigYAMLRepository_MissingFile(t *testing.T) {
	repo := NewConfigYAMLRepository(fstest.MapFS{})

	_, err := repo.GetConfig(context.Background(), "missing.yaml")

	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
