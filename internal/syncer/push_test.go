package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote"
	"github.com/slok/crxsync/internal/remote/fake"
	"github.com/slok/crxsync/internal/remote/remotemock"
	"github.com/slok/crxsync/internal/storage/memory"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestPass(t *testing.T, gw remote.Gateway, clock func() time.Time, lastSync time.Time) (*pass, *memory.Repository) {
	t.Helper()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	e, err := NewEngine(EngineConfig{Remote: gw, Repository: repo, Now: clock})
	require.NoError(t, err)

	return &pass{
		engine:   e,
		cfg:      &e.cfg,
		prefs:    &model.Preferences{},
		lastSync: lastSync,
		res:      &Result{},
		handled:  map[string]bool{},
		logger:   log.Noop,
	}, repo
}

func newPreparedPass(t *testing.T, lastSync time.Time) (*pass, *memory.Repository, *fake.Gateway) {
	t.Helper()

	clock := newClock(t0)
	gw, err := fake.NewGateway(fake.GatewayConfig{Now: clock})
	require.NoError(t, err)
	p, repo := newTestPass(t, gw, clock, lastSync)
	require.NoError(t, p.prepare(context.Background()))
	return p, repo, gw
}

func countCalls(calls []string, method string) int {
	n := 0
	for _, c := range calls {
		if c == method {
			n++
		}
	}
	return n
}

func indexOf(calls []string, method string) int {
	for i, c := range calls {
		if c == method {
			return i
		}
	}
	return -1
}

func syncedTask(activityID string, modifiedAt time.Time) model.TaskContainer {
	task := model.Task{
		ID:         "task-" + activityID,
		Title:      "synced task",
		Importance: model.ImportanceShould,
		CreatedAt:  t0.Add(-24 * time.Hour),
		ModifiedAt: modifiedAt,
	}
	task.Fields = task.PresentFields()

	return model.TaskContainer{
		Task: task,
		Remote: model.RemoteMetadata{
			ActivityID:  activityID,
			ActivityKey: model.HashID(activityID),
			CreatorID:   model.HashID("creator-inbox"),
			AssigneeID:  model.HashID("contact-guest"),
		},
	}
}

func remoteActivity(id, stateID string, modifiedAt time.Time) fake.Activity {
	return fake.Activity{
		ID:         id,
		Title:      "synced task",
		CreatorID:  "creator-inbox",
		ContactID:  "contact-guest",
		StateID:    stateID,
		Priority:   model.PriorityStars(model.ImportanceShould),
		CreatedAt:  t0.Add(-24 * time.Hour),
		ModifiedAt: modifiedAt,
	}
}

func TestShouldTransmit(t *testing.T) {
	due := t0.Add(48 * time.Hour)
	newTask := func(f func(t *model.Task)) model.TaskContainer {
		task := model.Task{Title: "title", Notes: "notes", Importance: 1, DueAt: due, ElapsedSeconds: 60}
		f(&task)
		task.Fields = task.PresentFields()
		return model.TaskContainer{Task: task}
	}
	same := newTask(func(*model.Task) {})

	tests := map[string]struct {
		local  model.TaskContainer
		remote *model.TaskContainer
		field  model.Field
		exp    bool
	}{
		"A field missing locally should not be transmitted.": {
			local:  same,
			remote: nil,
			field:  model.FieldCompletedAt,
			exp:    false,
		},
		"A field missing remotely should be transmitted.": {
			local:  newTask(func(t *model.Task) { t.CompletedAt = t0 }),
			remote: &same,
			field:  model.FieldCompletedAt,
			exp:    true,
		},
		"Without remote every present field should be transmitted.": {
			local: same,
			field: model.FieldTitle,
			exp:   true,
		},
		"Equal titles should not be transmitted.": {
			local:  same,
			remote: &same,
			field:  model.FieldTitle,
			exp:    false,
		},
		"Different titles should be transmitted.": {
			local:  newTask(func(t *model.Task) { t.Title = "other" }),
			remote: &same,
			field:  model.FieldTitle,
			exp:    true,
		},
		"Equal due dates in different locations should not be transmitted.": {
			local:  newTask(func(t *model.Task) { t.DueAt = due.In(time.FixedZone("x", 3600)) }),
			remote: &same,
			field:  model.FieldDueAt,
			exp:    false,
		},
		"Different completion timestamps should not be transmitted.": {
			local: newTask(func(t *model.Task) { t.CompletedAt = t0 }),
			remote: func() *model.TaskContainer {
				c := newTask(func(t *model.Task) { t.CompletedAt = t0.Add(time.Hour) })
				return &c
			}(),
			field: model.FieldCompletedAt,
			exp:   false,
		},
		"Different deletion timestamps should not be transmitted.": {
			local: newTask(func(t *model.Task) { t.DeletedAt = t0 }),
			remote: func() *model.TaskContainer {
				c := newTask(func(t *model.Task) { t.DeletedAt = t0.Add(-time.Hour) })
				return &c
			}(),
			field: model.FieldDeletedAt,
			exp:   false,
		},
		"Less local elapsed time should not be transmitted.": {
			local: newTask(func(t *model.Task) { t.ElapsedSeconds = 120 }),
			remote: func() *model.TaskContainer {
				c := newTask(func(t *model.Task) { t.ElapsedSeconds = 300 })
				return &c
			}(),
			field: model.FieldElapsed,
			exp:   false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, shouldTransmit(test.local, test.remote, test.field))
		})
	}
}

func TestPushNoSyncCreatorMakesNoRemoteCalls(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// Any call to the mock without expectations fails the test.
	gw := remotemock.NewMockGateway(t)
	p, _ := newTestPass(t, gw, newClock(t0), time.Time{})

	local := model.TaskContainer{
		Task:   model.Task{ID: "task-1", Title: "local only", CreatedAt: t0, ModifiedAt: t0},
		Remote: model.RemoteMetadata{CreatorID: model.CreatorNoSync},
	}
	local.Task.Fields = local.Task.PresentFields()

	res, err := p.push(context.Background(), local, nil)
	require.NoError(err)
	assert.Equal(model.UnsyncedActivityKey, res.Remote.ActivityKey)
	assert.True(res.Remote.Unsynced())
	assert.False(res.Remote.Synced())
	assert.Equal(1, p.res.Unsynced)
}

func TestPushCreatesActivityOnceBeforeUpdatingFields(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	p, _, gw := newPreparedPass(t, time.Time{})
	gw.ResetCalls()

	due := t0.Add(72 * time.Hour)
	local := model.TaskContainer{
		Task: model.Task{
			ID:               "task-1",
			Title:            "write report",
			Notes:            "quarterly numbers",
			Importance:       model.ImportanceMustDo,
			DueAt:            due,
			EstimatedSeconds: 3600,
			CreatedAt:        t0,
			ModifiedAt:       t0,
		},
		Tags: []string{"work", "unknown"},
	}
	local.Task.Fields = local.Task.PresentFields()

	res, err := p.push(ctx, local, nil)
	require.NoError(err)
	require.True(res.Remote.Synced())

	calls := gw.Calls()
	assert.Equal(1, countCalls(calls, "CreateActivity"))
	assert.Less(indexOf(calls, "CreateActivity"), indexOf(calls, "SetField"))
	assert.Equal(1, p.res.Created)
	assert.Equal(1, p.res.Pushed)

	a, ok := gw.Activity(res.Remote.ActivityID)
	require.True(ok)
	assert.Equal("write report", a.Title)
	assert.Equal("quarterly numbers", a.Description)
	assert.Equal("contact-guest", a.ContactID)
	assert.True(a.ScheduledStart.Equal(due.Add(-time.Hour)))
	require.Len(a.Assignments, 1)
	assert.Equal("resource-work", a.Assignments[0].ResourceID)
	// Tags changed, so the activity is moved to in progress.
	assert.Equal("state-in-progress", a.StateID)

	// Local task carries the remote state.
	assert.Equal("task-1", res.Task.ID)
	assert.Equal(3600, res.Task.EstimatedSeconds)
	assert.Equal([]string{"work"}, res.Tags)
	assert.True(res.Task.ModifiedAt.Equal(a.ModifiedAt))
}

func TestPushLifecycleOntoCreatedActivity(t *testing.T) {
	tests := map[string]struct {
		lifecycle model.Lifecycle
		expState  string
	}{
		"A task completed before its first sync should complete the new activity.": {
			lifecycle: model.LifecycleCompleted,
			expState:  "state-complete",
		},
		"A task deleted before its first sync should close the new activity.": {
			lifecycle: model.LifecycleDeleted,
			expState:  "state-closed",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			p, _, gw := newPreparedPass(t, time.Time{})

			local := model.TaskContainer{
				Task: model.Task{ID: "task-1", Title: "done offline", CreatedAt: t0.Add(-time.Hour), ModifiedAt: t0},
			}
			switch test.lifecycle {
			case model.LifecycleDeleted:
				local.Task.DeletedAt = t0
			case model.LifecycleCompleted:
				local.Task.CompletedAt = t0
			}
			local.Task.Fields = local.Task.PresentFields()

			res, err := p.push(context.Background(), local, nil)
			require.NoError(err)
			require.True(res.Remote.Synced())
			assert.Equal(test.lifecycle, res.LifecycleState())
			assert.Equal(1, p.res.Created)

			a, ok := gw.Activity(res.Remote.ActivityID)
			require.True(ok)
			assert.Equal(test.expState, a.StateID)
		})
	}
}

func TestPushUnknownCreator(t *testing.T) {
	t.Run("A stale creator should fall back to the first known creator.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		p, _, gw := newPreparedPass(t, time.Time{})
		gw.ResetCalls()

		local := model.TaskContainer{
			Task:   model.Task{ID: "task-1", Title: "filed under a removed dashboard", CreatedAt: t0, ModifiedAt: t0},
			Remote: model.RemoteMetadata{CreatorID: model.HashID("creator-removed")},
		}
		local.Task.Fields = local.Task.PresentFields()

		res, err := p.push(context.Background(), local, nil)
		require.NoError(err)
		require.True(res.Remote.Synced())
		assert.Equal(1, countCalls(gw.Calls(), "CreateActivity"))
		assert.Equal(model.HashID("creator-inbox"), res.Remote.CreatorID)
		assert.Equal(0, p.res.Skipped)

		a, ok := gw.Activity(res.Remote.ActivityID)
		require.True(ok)
		assert.Equal("creator-inbox", a.CreatorID)
	})

	t.Run("Without creators the task should be skipped and counted.", func(t *testing.T) {
		assert := assert.New(t)
		require := require.New(t)

		// Any call to the mock without expectations fails the test.
		gw := remotemock.NewMockGateway(t)
		p, _ := newTestPass(t, gw, newClock(t0), time.Time{})

		local := model.TaskContainer{
			Task: model.Task{ID: "task-1", Title: "nowhere to file", CreatedAt: t0, ModifiedAt: t0},
		}
		local.Task.Fields = local.Task.PresentFields()

		res, err := p.push(context.Background(), local, nil)
		require.NoError(err)
		assert.False(res.Remote.Synced())
		assert.Equal(1, p.res.Skipped)
		assert.Equal(0, p.res.Created)
	})
}

func TestPushTagDiffKeepsAssignmentsAfterLastSync(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	lastSync := t0.Add(-time.Hour)
	p, _, gw := newPreparedPass(t, lastSync)

	before := lastSync.Add(-time.Hour)
	at := lastSync
	after := lastSync.Add(time.Minute)
	a := remoteActivity("act-1", "state-in-progress", lastSync)
	a.Assignments = []model.ResourceAssignment{
		{ResourceID: "resource-home", AssignmentID: "as-home", AssignedAt: &before},
		{ResourceID: "resource-work", AssignmentID: "as-work", AssignedAt: &at},
		{ResourceID: "resource-guest", AssignmentID: "as-guest", AssignedAt: &after},
		{ResourceID: "resource-work", AssignmentID: "as-no-time"},
	}
	gw.PutActivity(a)

	local := syncedTask("act-1", t0)
	_, err := p.push(ctx, local, nil)
	require.NoError(err)

	got, _ := gw.Activity("act-1")
	ids := []string{}
	for _, as := range got.Assignments {
		ids = append(ids, as.AssignmentID)
	}
	assert.Equal([]string{"as-work", "as-guest", "as-no-time"}, ids)
}

func TestPushWorkRecords(t *testing.T) {
	tests := map[string]struct {
		localElapsed  int
		remoteElapsed int
		expRecords    []int
	}{
		"Local elapsed time lower than the remote should not create a work record.": {
			localElapsed:  120,
			remoteElapsed: 300,
			expRecords:    []int{300},
		},
		"Equal elapsed times should not create a work record.": {
			localElapsed:  300,
			remoteElapsed: 300,
			expRecords:    []int{300},
		},
		"Local elapsed time greater than the remote should report the delta.": {
			localElapsed:  420,
			remoteElapsed: 300,
			expRecords:    []int{300, 120},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			p, _, gw := newPreparedPass(t, time.Time{})
			a := remoteActivity("act-1", "state-in-progress", t0)
			a.WorkRecords = []fake.WorkRecord{{ResourceID: "resource-guest", Seconds: test.remoteElapsed}}
			gw.PutActivity(a)
			gw.ResetCalls()

			local := syncedTask("act-1", t0.Add(time.Hour))
			local.Task.ElapsedSeconds = test.localElapsed
			_, err := p.push(context.Background(), local, nil)
			require.NoError(err)

			got, _ := gw.Activity("act-1")
			records := []int{}
			for _, r := range got.WorkRecords {
				assert.Equal("resource-guest", r.ResourceID)
				records = append(records, r.Seconds)
			}
			assert.Equal(test.expRecords, records)
			assert.Equal(len(test.expRecords)-1, countCalls(gw.Calls(), "CreateWorkRecord"))
		})
	}
}

func TestPushLifecycle(t *testing.T) {
	tests := map[string]struct {
		remoteModified time.Time
		lifecycle      model.Lifecycle
		expState       string
		expLifecycle   model.Lifecycle
	}{
		"A local deletion newer than the remote should close the activity.": {
			remoteModified: t0.Add(-time.Hour),
			lifecycle:      model.LifecycleDeleted,
			expState:       "state-closed",
			expLifecycle:   model.LifecycleDeleted,
		},
		"A local deletion older than the remote should be rolled back.": {
			remoteModified: t0.Add(time.Hour),
			lifecycle:      model.LifecycleDeleted,
			expState:       "state-in-progress",
			expLifecycle:   model.LifecycleOpen,
		},
		"A local completion newer than the remote should complete the activity.": {
			remoteModified: t0.Add(-time.Hour),
			lifecycle:      model.LifecycleCompleted,
			expState:       "state-complete",
			expLifecycle:   model.LifecycleCompleted,
		},
		"A local completion older than the remote should be rolled back.": {
			remoteModified: t0.Add(time.Hour),
			lifecycle:      model.LifecycleCompleted,
			expState:       "state-in-progress",
			expLifecycle:   model.LifecycleOpen,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			p, _, gw := newPreparedPass(t, time.Time{})
			gw.PutActivity(remoteActivity("act-1", "state-in-progress", test.remoteModified))

			local := syncedTask("act-1", t0)
			switch test.lifecycle {
			case model.LifecycleDeleted:
				local.Task.DeletedAt = t0
			case model.LifecycleCompleted:
				local.Task.CompletedAt = t0
			}
			local.Task.Fields = local.Task.PresentFields()

			res, err := p.push(context.Background(), local, nil)
			require.NoError(err)
			assert.Equal(test.expLifecycle, res.LifecycleState())

			got, _ := gw.Activity("act-1")
			assert.Equal(test.expState, got.StateID)
		})
	}
}

func TestReconcile(t *testing.T) {
	remoteModified := t0
	older := t0.Add(-time.Hour)
	newer := t0.Add(time.Hour)

	tests := map[string]struct {
		remoteState   string
		remoteMissing bool
		lifecycle     model.Lifecycle
		localModified time.Time
		expKept       bool
		expState      string
	}{
		"Missing remote activity should delete the local task.": {
			remoteMissing: true,
			lifecycle:     model.LifecycleOpen,
			localModified: older,
		},
		"Deleted on both sides should delete the local task.": {
			remoteState:   "state-closed",
			lifecycle:     model.LifecycleDeleted,
			localModified: older,
			expState:      "state-closed",
		},
		"Remote deleted and older local completion should complete the remote and delete the local task.": {
			remoteState:   "state-closed",
			lifecycle:     model.LifecycleCompleted,
			localModified: older,
			expState:      "state-complete",
		},
		"Remote deleted and newer local completion should delete the local task.": {
			remoteState:   "state-closed",
			lifecycle:     model.LifecycleCompleted,
			localModified: newer,
			expState:      "state-closed",
		},
		"Remote deleted and older open local should reopen the remote.": {
			remoteState:   "state-closed",
			lifecycle:     model.LifecycleOpen,
			localModified: older,
			expKept:       true,
			expState:      "state-in-progress",
		},
		"Remote deleted and newer open local should delete the local task.": {
			remoteState:   "state-closed",
			lifecycle:     model.LifecycleOpen,
			localModified: newer,
			expState:      "state-closed",
		},
		"Remote completed and older local deletion should close the remote.": {
			remoteState:   "state-complete",
			lifecycle:     model.LifecycleDeleted,
			localModified: older,
			expState:      "state-closed",
		},
		"Remote completed and newer local deletion should delete the local task.": {
			remoteState:   "state-complete",
			lifecycle:     model.LifecycleDeleted,
			localModified: newer,
			expState:      "state-complete",
		},
		"Completed on both sides should delete the local task.": {
			remoteState:   "state-complete",
			lifecycle:     model.LifecycleCompleted,
			localModified: older,
			expState:      "state-complete",
		},
		"Remote completed and older open local should reopen the remote.": {
			remoteState:   "state-complete",
			lifecycle:     model.LifecycleOpen,
			localModified: older,
			expKept:       true,
			expState:      "state-in-progress",
		},
		"Open remote should delete the local task.": {
			remoteState:   "state-in-progress",
			lifecycle:     model.LifecycleOpen,
			localModified: newer,
			expState:      "state-in-progress",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			ctx := context.Background()

			p, repo, gw := newPreparedPass(t, time.Time{})
			if !test.remoteMissing {
				gw.PutActivity(remoteActivity("act-1", test.remoteState, remoteModified))
			}

			local := syncedTask("act-1", test.localModified)
			switch test.lifecycle {
			case model.LifecycleDeleted:
				local.Task.DeletedAt = test.localModified
			case model.LifecycleCompleted:
				local.Task.CompletedAt = test.localModified
			}
			local.Task.Fields = local.Task.PresentFields()
			require.NoError(repo.SaveTask(ctx, local))

			require.NoError(p.reconcile(ctx, local))

			_, err := repo.GetTask(ctx, local.Task.ID)
			if test.expKept {
				assert.NoError(err)
				assert.Equal(0, p.res.Deleted)
			} else {
				assert.ErrorIs(err, model.ErrNotFound)
				assert.Equal(1, p.res.Deleted)
			}

			if !test.remoteMissing {
				got, _ := gw.Activity("act-1")
				assert.Equal(test.expState, got.StateID)
			}
		})
	}
}

func TestReconcileFetchFailure(t *testing.T) {
	p, repo, gw := newPreparedPass(t, time.Time{})
	ctx := context.Background()

	local := syncedTask("act-1", t0)
	require.NoError(t, repo.SaveTask(ctx, local))
	gw.FailOn("FetchActivity", assert.AnError)

	err := p.reconcile(ctx, local)
	assert.ErrorIs(t, err, assert.AnError)

	_, err = repo.GetTask(ctx, local.Task.ID)
	assert.NoError(t, err)
}

func TestAddNoteMovesToAddNoteState(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	p, _, gw := newPreparedPass(t, time.Time{})
	gw.PutActivity(remoteActivity("act-1", "state-new", t0))

	require.NoError(p.addNote(context.Background(), "act-1", "hello"))

	got, _ := gw.Activity("act-1")
	require.Len(got.FollowUps, 2)
	assert.Equal("tr-01-assign", got.FollowUps[0].TransitionID)
	assert.Equal("Assign", got.FollowUps[0].Title)
	assert.Equal("tr-02-add-note", got.FollowUps[1].TransitionID)
	assert.Equal("Note", got.FollowUps[1].Title)
	assert.Equal("hello", got.FollowUps[1].Text)
}

func TestAddNoteSkippedWithoutDirectTransition(t *testing.T) {
	p, _, gw := newPreparedPass(t, time.Time{})
	gw.PutActivity(remoteActivity("act-1", "state-closed", t0))
	gw.ResetCalls()

	// Revive goes straight from closed to in progress.
	require.NoError(t, p.addNote(context.Background(), "act-1", "hello"))
	got, _ := gw.Activity("act-1")
	assert.Len(t, got.FollowUps, 2)

	gw.PutActivity(remoteActivity("act-2", "state-unknown", t0))
	require.NoError(t, p.addNote(context.Background(), "act-2", "hello"))
	got, _ = gw.Activity("act-2")
	assert.Empty(t, got.FollowUps)
}

func TestDriveTo(t *testing.T) {
	tests := map[string]struct {
		from     string
		to       string
		expOK    bool
		expState string
		expPath  []string
	}{
		"Driving to the current state should not execute transitions.": {
			from:     "state-in-progress",
			to:       "In Progress",
			expOK:    true,
			expState: "state-in-progress",
			expPath:  []string{},
		},
		"Driving from new to closed should use the shortest path.": {
			from:     "state-new",
			to:       "Closed",
			expOK:    true,
			expState: "state-closed",
			expPath:  []string{"tr-06-cancel"},
		},
		"Driving from closed to complete should revive first.": {
			from:     "state-closed",
			to:       "Complete",
			expOK:    true,
			expState: "state-complete",
			expPath:  []string{"tr-07-revive", "tr-03-complete"},
		},
		"Driving to an unknown state should fail.": {
			from:     "state-new",
			to:       "Archived",
			expOK:    false,
			expState: "state-new",
			expPath:  []string{},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			p, _, gw := newPreparedPass(t, time.Time{})
			gw.PutActivity(remoteActivity("act-1", test.from, t0))

			ok, err := p.driveTo(context.Background(), "act-1", test.to)
			require.NoError(err)
			assert.Equal(test.expOK, ok)

			got, _ := gw.Activity("act-1")
			assert.Equal(test.expState, got.StateID)
			path := []string{}
			for _, f := range got.FollowUps {
				path = append(path, f.TransitionID)
			}
			assert.Equal(test.expPath, path)
		})
	}
}
