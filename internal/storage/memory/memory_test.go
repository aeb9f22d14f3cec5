package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/storage/memory"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func taskFixture(id string, modifiedAt time.Time, meta model.RemoteMetadata) model.TaskContainer {
	return model.TaskContainer{
		Task: model.Task{
			ID:         id,
			Title:      "task " + id,
			Importance: model.ImportanceShould,
			CreatedAt:  t0,
			ModifiedAt: modifiedAt,
		},
		Remote: meta,
		Tags:   []string{"work", "home", "work"},
	}
}

func TestRepositoryTasks(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *memory.Repository) error
		expErr  bool
	}{
		"Saving a task should store it with normalized tags": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.SaveTask(ctx, taskFixture("t1", t0, model.RemoteMetadata{})))

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, "task t1", got.Task.Title)
				assert.Equal(t, []string{"home", "work"}, got.Tags)
				assert.True(t, got.Task.Has(model.FieldTitle))
				assert.False(t, got.Task.Has(model.FieldDueAt))
				return nil
			},
		},

		"Saving a task without ID should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				return repo.SaveTask(ctx, taskFixture("", t0, model.RemoteMetadata{}))
			},
			expErr: true,
		},

		"Getting a missing task should fail with not found": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				_, err := repo.GetTask(ctx, "missing")
				assert.True(t, errors.Is(err, model.ErrNotFound))
				return err
			},
			expErr: true,
		},

		"Deleting a task should delete its comments": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				require.NoError(t, repo.SaveTask(ctx, taskFixture("t1", t0, model.RemoteMetadata{})))
				require.NoError(t, repo.CreateComment(ctx, model.Comment{ID: "c1", TaskID: "t1", CreatedAt: t0}))
				require.NoError(t, repo.DeleteTask(ctx, "t1"))

				comments, err := repo.ListComments(ctx, "t1", time.Time{})
				require.NoError(t, err)
				assert.Empty(t, comments)

				return repo.DeleteTask(ctx, "t1")
			},
			expErr: true,
		},

		"Sync listings should filter by metadata and modification": {
			actions: func(ctx context.Context, t *testing.T, repo *memory.Repository) error {
				synced := model.RemoteMetadata{ActivityID: "a1", ActivityKey: model.HashID("a1")}
				unsynced := model.RemoteMetadata{ActivityKey: model.UnsyncedActivityKey, CreatorID: model.CreatorNoSync}
				require.NoError(t, repo.SaveTask(ctx, taskFixture("new", t0, model.RemoteMetadata{})))
				require.NoError(t, repo.SaveTask(ctx, taskFixture("old", t0, synced)))
				require.NoError(t, repo.SaveTask(ctx, taskFixture("changed", t0.Add(time.Hour), model.RemoteMetadata{ActivityID: "a2", ActivityKey: model.HashID("a2")})))
				require.NoError(t, repo.SaveTask(ctx, taskFixture("unsynced", t0.Add(time.Hour), unsynced)))

				ids := func(cs []model.TaskContainer, err error) []string {
					require.NoError(t, err)
					res := []string{}
					for _, c := range cs {
						res = append(res, c.Task.ID)
					}
					return res
				}

				assert.Equal(t, []string{"changed", "old"}, ids(repo.ListSyncedTasks(ctx)))
				assert.Equal(t, []string{"new"}, ids(repo.ListLocallyCreatedTasks(ctx)))
				assert.Equal(t, []string{"changed", "unsynced"}, ids(repo.ListLocallyUpdatedTasks(ctx, t0.Add(time.Minute))))

				require.NoError(t, repo.ClearSyncMetadata(ctx))
				assert.Empty(t, ids(repo.ListSyncedTasks(ctx)))
				assert.Len(t, ids(repo.ListLocallyCreatedTasks(ctx)), 4)
				return nil
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: log.Noop})
			require.NoError(t, err)

			err = test.actions(context.Background(), t, repo)

			if test.expErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRepositoryComments(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)

	err = repo.CreateComment(ctx, model.Comment{ID: "c0", TaskID: "missing"})
	assert.True(errors.Is(err, model.ErrNotFound))

	require.NoError(repo.SaveTask(ctx, taskFixture("t1", t0, model.RemoteMetadata{})))
	require.NoError(repo.CreateComment(ctx, model.Comment{ID: "c2", TaskID: "t1", Message: "second", CreatedAt: t0.Add(2 * time.Minute)}))
	require.NoError(repo.CreateComment(ctx, model.Comment{ID: "c1", TaskID: "t1", Message: "first", CreatedAt: t0.Add(time.Minute)}))
	require.NoError(repo.CreateComment(ctx, model.Comment{ID: "c0", TaskID: "t1", Message: "old", CreatedAt: t0}))

	err = repo.CreateComment(ctx, model.Comment{ID: "c1", TaskID: "t1"})
	assert.True(errors.Is(err, model.ErrAlreadyExists))

	comments, err := repo.ListComments(ctx, "t1", t0)
	require.NoError(err)
	require.Len(comments, 2)
	assert.Equal("first", comments[0].Message)
	assert.Equal("second", comments[1].Message)
}

func TestRepositoryCatalogAndPreferences(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(err)

	require.NoError(repo.ReplaceCreators(ctx, []model.Creator{{ID: 2, Name: "b"}, {ID: 1, Name: "a"}}))
	require.NoError(repo.ReplaceCreators(ctx, []model.Creator{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}}))
	creators, err := repo.ListCreators(ctx)
	require.NoError(err)
	assert.Equal([]model.Creator{{ID: 1, Name: "a"}, {ID: 3, Name: "c"}}, creators)

	require.NoError(repo.ReplaceContacts(ctx, []model.Contact{{ID: 1, FirstName: "Zoe"}, {ID: 2, FirstName: "Ann"}}))
	contacts, err := repo.ListContacts(ctx)
	require.NoError(err)
	assert.Equal("Ann", contacts[0].FirstName)

	p, err := repo.GetPreferences(ctx)
	require.NoError(err)
	assert.Equal(model.Preferences{}, *p)

	p.Status.LastSuccessAt = t0
	p.PendingResourceID = "r1"
	require.NoError(repo.SavePreferences(ctx, *p))
	p2, err := repo.GetPreferences(ctx)
	require.NoError(err)
	assert.Equal(*p, *p2)
}
