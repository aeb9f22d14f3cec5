package fake_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote"
	"github.com/slok/crxsync/internal/remote/fake"
)

func newTestGateway(t *testing.T) *fake.Gateway {
	t.Helper()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	g, err := fake.NewGateway(fake.GatewayConfig{
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	})
	require.NoError(t, err)
	return g
}

func TestGatewayActivityLifecycle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	g := newTestGateway(t)

	a, err := g.CreateActivity(ctx, remote.CreateActivityRequest{
		Title:           "test",
		CreatorRemoteID: "creator-inbox",
		Priority:        model.PriorityStars(model.ImportanceMustDo),
	})
	require.NoError(err)
	assert.Equal("test", a.Task.Title)
	assert.Equal(model.ImportanceMustDo, a.Task.Importance)
	assert.Equal("state-new", a.Remote.StateID)
	assert.Equal(model.HashID(a.Remote.ActivityID), a.Remote.ActivityKey)

	// Can't complete from new.
	err = g.ExecuteTransition(ctx, a.Remote.ActivityID, "process-default", "tr-03-complete", "", "")
	assert.True(errors.Is(err, model.ErrNotValid))

	require.NoError(g.ExecuteTransition(ctx, a.Remote.ActivityID, "process-default", "tr-01-assign", "", ""))
	require.NoError(g.ExecuteTransition(ctx, a.Remote.ActivityID, "process-default", "tr-03-complete", "", ""))

	res := g.FetchActivity(ctx, a.Remote.ActivityID)
	require.Equal(remote.FetchFound, res.Kind)
	assert.Equal(model.LifecycleCompleted, res.Activity.LifecycleState())

	require.NoError(g.ExecuteTransition(ctx, a.Remote.ActivityID, "process-default", "tr-04-close", "", ""))
	res = g.FetchActivity(ctx, a.Remote.ActivityID)
	assert.Equal(model.LifecycleDeleted, res.Activity.LifecycleState())

	all, err := g.FetchActivities(ctx)
	require.NoError(err)
	assert.Empty(all, "closed activities should not be listed")
}

func TestGatewayFetchActivityNotFound(t *testing.T) {
	g := newTestGateway(t)

	res := g.FetchActivity(context.Background(), "missing")

	assert.Equal(t, remote.FetchNotFound, res.Kind)
}

func TestGatewayFailOn(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	g := newTestGateway(t)
	errTest := errors.New("whatever")

	g.FailOn("FetchActivity", errTest)
	res := g.FetchActivity(ctx, "missing")
	assert.Equal(remote.FetchFailed, res.Kind)
	assert.ErrorIs(res.Err, errTest)

	g.FailOn("FetchActivity", nil)
	res = g.FetchActivity(ctx, "missing")
	assert.Equal(remote.FetchNotFound, res.Kind)

	assert.Equal([]string{"FetchActivity", "FetchActivity"}, g.Calls())
}

func TestGatewayResourcesAndComments(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	g := newTestGateway(t)

	a, err := g.CreateActivity(ctx, remote.CreateActivityRequest{Title: "test", CreatorRemoteID: "creator-inbox"})
	require.NoError(err)
	id := a.Remote.ActivityID
	since := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(g.CreateResourceAssignment(ctx, id, "resource-work"))
	err = g.CreateResourceAssignment(ctx, id, "resource-missing")
	assert.ErrorIs(err, model.ErrNotValid)

	as, err := g.FetchResourceAssignments(ctx, id)
	require.NoError(err)
	require.Len(as, 1)
	require.NoError(g.DeleteResourceAssignment(ctx, id, as[0].AssignmentID))
	assert.ErrorIs(g.DeleteResourceAssignment(ctx, id, as[0].AssignmentID), model.ErrNotFound)

	require.NoError(g.ExecuteTransition(ctx, id, "process-default", "tr-01-assign", "Assign", ""))
	require.NoError(g.ExecuteTransition(ctx, id, "process-default", "tr-02-add-note", "Note", "hello"))

	notes, err := g.FetchComments(ctx, id, "tr-02-add-note", since)
	require.NoError(err)
	assert.Equal([]string{"hello"}, notes)

	require.NoError(g.CreateWorkRecord(ctx, id, "resource-guest", 60))
	res := g.FetchActivity(ctx, id)
	assert.Equal(60, res.Activity.Task.ElapsedSeconds)
}

func TestLoadSeed(t *testing.T) {
	tests := map[string]struct {
		data   string
		expErr bool
	}{
		"A seed without process should use the default process": {
			data: `
user: {login: me, contact: c1}
contacts: [{id: c1, first_name: John}]
creators: [{id: d1, name: Inbox}]
activities:
  - id: a1
    title: test
    creator: d1
`,
		},

		"An activity with an unknown creator should fail": {
			data: `
user: {login: me, contact: c1}
contacts: [{id: c1}]
activities: [{id: a1, creator: missing}]
`,
			expErr: true,
		},

		"A user without contact should fail": {
			data:   `user: {login: me, contact: c1}`,
			expErr: true,
		},

		"Invalid YAML should fail": {
			data:   `{`,
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			seed, err := fake.LoadSeed([]byte(test.data))

			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, fake.DefaultProcessName, seed.Process.Name)

			_, err = fake.NewGateway(fake.GatewayConfig{Seed: seed})
			assert.NoError(t, err)
		})
	}
}

func TestGatewaySnapshotRestoresState(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()
	g := newTestGateway(t)

	a, err := g.CreateActivity(ctx, remote.CreateActivityRequest{Title: "test", CreatorRemoteID: "creator-inbox", Priority: 4})
	require.NoError(err)
	id := a.Remote.ActivityID
	require.NoError(g.CreateResourceAssignment(ctx, id, "resource-work"))
	require.NoError(g.ExecuteTransition(ctx, id, "process-default", "tr-01-assign", "Assign", ""))
	require.NoError(g.ExecuteTransition(ctx, id, "process-default", "tr-02-add-note", "Note", "hello"))
	require.NoError(g.CreateWorkRecord(ctx, id, "resource-guest", 90))
	before := g.FetchActivity(ctx, id)
	require.Equal(remote.FetchFound, before.Kind)

	data, err := g.Snapshot().Marshal()
	require.NoError(err)
	seed, err := fake.LoadSeed(data)
	require.NoError(err)
	restored, err := fake.NewGateway(fake.GatewayConfig{Seed: seed})
	require.NoError(err)

	after := restored.FetchActivity(ctx, id)
	require.Equal(remote.FetchFound, after.Kind)
	assert.Equal(before.Activity.Task, after.Activity.Task)
	assert.Equal(before.Activity.Tags, after.Activity.Tags)
	assert.Equal(before.Activity.Remote, after.Activity.Remote)

	notes, err := restored.FetchComments(ctx, id, "tr-02-add-note", time.Time{})
	require.NoError(err)
	assert.Equal([]string{"hello"}, notes)
}
