package lib_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/pkg/lib"
)

func newClient(t *testing.T, cfg lib.Config) *lib.Client {
	t.Helper()

	client, err := lib.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientSyncCreatesActivities(t *testing.T) {
	tests := map[string]struct {
		cfg func(t *testing.T) lib.Config
	}{
		"In memory store": {
			cfg: func(t *testing.T) lib.Config { return lib.Config{InMemory: true} },
		},
		"SQLite store": {
			cfg: func(t *testing.T) lib.Config {
				return lib.Config{DBPath: filepath.Join(t.TempDir(), "crxsync.db")}
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()
			client := newClient(t, test.cfg(t))

			due := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
			task, err := client.AddTask(ctx, lib.AddTaskOpts{
				Title:      "Call the client",
				Importance: lib.ImportanceMustDo,
				DueAt:      &due,
				Tags:       []string{"work"},
			})
			require.NoError(err)
			assert.Empty(task.ActivityID)
			assert.Equal(lib.TaskStateOpen, task.State)

			res, err := client.Sync(ctx)
			require.NoError(err)
			assert.Equal(1, res.Created)
			assert.False(res.Aborted)
			assert.NotEmpty(res.PassID)

			tasks, err := client.ListTasks(ctx, nil)
			require.NoError(err)
			require.Len(tasks, 1)
			assert.NotEmpty(tasks[0].ActivityID)
			assert.Equal([]string{"work"}, tasks[0].Tags)

			st, err := client.Status(ctx)
			require.NoError(err)
			assert.Equal(1, st.Synced)
			assert.NotNil(st.LastSuccessAt)
			assert.Empty(st.LastError)

			snapshot, err := client.CRMSnapshot()
			require.NoError(err)
			assert.Contains(string(snapshot), "Call the client")
		})
	}
}

func TestClientLocalOnlyTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	client := newClient(t, lib.Config{InMemory: true})

	_, err := client.AddTask(ctx, lib.AddTaskOpts{Title: "Water plants", LocalOnly: true})
	require.NoError(err)

	res, err := client.Sync(ctx)
	require.NoError(err)
	assert.Equal(0, res.Created)
	assert.Equal(1, res.Unsynced)

	tasks, err := client.ListTasks(ctx, nil)
	require.NoError(err)
	require.Len(tasks, 1)
	assert.True(tasks[0].LocalOnly)
	assert.Empty(tasks[0].ActivityID)
}

func TestClientCRMSeedIsPulled(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	seed := []byte(`
user: {login: me, contact: c1}
contacts: [{id: c1, first_name: John}]
creators: [{id: d1, name: Inbox}]
resources: [{id: r1, name: work/backend}]
activities:
  - id: a1
    title: Fix the build
    creator: d1
    contact: c1
    priority: 4
    resources: [r1]
`)
	client := newClient(t, lib.Config{InMemory: true, CRMSeed: seed})

	res, err := client.Sync(ctx)
	require.NoError(err)
	assert.Equal(1, res.Pulled)

	tasks, err := client.ListTasks(ctx, &lib.ListTasksOpts{TagPattern: "work/*"})
	require.NoError(err)
	require.Len(tasks, 1)
	assert.Equal("a1", tasks[0].ActivityID)
	assert.Equal("Fix the build", tasks[0].Title)
	assert.Equal(lib.ImportanceMustDo, tasks[0].Importance)
}

func TestClientErrors(t *testing.T) {
	tests := map[string]struct {
		run   func(ctx context.Context, c *lib.Client) error
		expIs error
	}{
		"Adding a duplicated open task should fail.": {
			run: func(ctx context.Context, c *lib.Client) error {
				if _, err := c.AddTask(ctx, lib.AddTaskOpts{Title: "test"}); err != nil {
					return err
				}
				_, err := c.AddTask(ctx, lib.AddTaskOpts{Title: "test"})
				return err
			},
			expIs: lib.ErrAlreadyExists,
		},
		"Adding a task without title should fail.": {
			run: func(ctx context.Context, c *lib.Client) error {
				_, err := c.AddTask(ctx, lib.AddTaskOpts{})
				return err
			},
			expIs: lib.ErrNotValid,
		},
		"Completing a missing task should fail.": {
			run: func(ctx context.Context, c *lib.Client) error {
				_, err := c.CompleteTask(ctx, "missing")
				return err
			},
			expIs: lib.ErrNotFound,
		},
		"Reopening an open task should fail.": {
			run: func(ctx context.Context, c *lib.Client) error {
				if _, err := c.AddTask(ctx, lib.AddTaskOpts{Title: "test"}); err != nil {
					return err
				}
				_, err := c.ReopenTask(ctx, "test")
				return err
			},
			expIs: lib.ErrNotValid,
		},
		"Listing with an invalid tag pattern should fail.": {
			run: func(ctx context.Context, c *lib.Client) error {
				_, err := c.ListTasks(ctx, &lib.ListTasksOpts{TagPattern: "[a"})
				return err
			},
			expIs: lib.ErrNotValid,
		},
		"Removing a missing task should fail.": {
			run: func(ctx context.Context, c *lib.Client) error {
				return c.RemoveTask(ctx, "missing", false)
			},
			expIs: lib.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			client := newClient(t, lib.Config{InMemory: true})

			err := test.run(context.Background(), client)
			require.Error(t, err)
			assert.True(t, errors.Is(err, test.expIs), "expected %v, got: %v", test.expIs, err)
		})
	}
}

func TestClientInvalidSeed(t *testing.T) {
	_, err := lib.New(context.Background(), lib.Config{InMemory: true, CRMSeed: []byte("user: {login: me}")})
	assert.True(t, errors.Is(err, lib.ErrNotValid))
}

func TestClientCompleteAndRemoveLocalTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	client := newClient(t, lib.Config{InMemory: true})

	_, err := client.AddTask(ctx, lib.AddTaskOpts{Title: "test"})
	require.NoError(err)

	task, err := client.CompleteTask(ctx, "test")
	require.NoError(err)
	assert.Equal(lib.TaskStateCompleted, task.State)

	open, err := client.ListTasks(ctx, nil)
	require.NoError(err)
	assert.Empty(open)

	task, err = client.ReopenTask(ctx, task.ID)
	require.NoError(err)
	assert.Equal(lib.TaskStateOpen, task.State)

	// Never synced tasks are removed right away.
	require.NoError(client.RemoveTask(ctx, "test", false))
	all, err := client.ListTasks(ctx, &lib.ListTasksOpts{All: true})
	require.NoError(err)
	assert.Empty(all)
}
