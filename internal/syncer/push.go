package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/metrics"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote"
)

// Titles of the follow ups the sync executes on its own.
const (
	followUpAssignTitle   = "Assign"
	followUpResourceTitle = "Assign Resource"
	followUpNoteTitle     = "Note"
)

// Reconciliation decisions.
const (
	decisionDeleteLocal    = "delete-local"
	decisionRemoteMissing  = "remote-missing"
	decisionReopenRemote   = "reopen-remote"
	decisionCompleteRemote = "complete-remote"
	decisionCloseRemote    = "close-remote"
)

// push sends the local task to the remote and returns the resulting local
// task, nil when there is nothing to store. A nil remote is fetched when needed.
func (p *pass) push(ctx context.Context, local model.TaskContainer, rem *model.TaskContainer) (*model.TaskContainer, error) {
	return p.pushOnto(ctx, local, rem, false)
}

// pushOnto pushes the local task onto rem. A fresh remote is the activity
// just created for the task, its modification time is always newer than the
// local one so it never wins lifecycle conflicts.
func (p *pass) pushOnto(ctx context.Context, local model.TaskContainer, rem *model.TaskContainer, fresh bool) (*model.TaskContainer, error) {
	gw := p.cfg.Remote
	logger := p.logger.WithValues(log.Kv{"task": local.Task.ID})

	creatorID := p.creatorFor(local)
	if creatorID == model.CreatorNoSync {
		local.Remote.CreatorID = model.CreatorNoSync
		local.Remote.ActivityKey = model.UnsyncedActivityKey
		p.res.Unsynced++
		p.cfg.Metrics.IncTask(metrics.TaskOpUnsynced)
		return &local, nil
	}

	creator, ok := p.cfg.Catalog.Creator(creatorID)
	if !ok {
		creator, ok = p.cfg.Catalog.FirstCreator()
		if !ok {
			logger.Warningf("No creator for task, not pushed")
			p.res.Skipped++
			p.cfg.Metrics.IncTask(metrics.TaskOpSkipped)
			return &local, nil
		}
		logger.Infof("Unknown creator %d, using %q", creatorID, creator.Name)
		creatorID = creator.ID
	}

	if !local.Remote.Synced() {
		created, err := gw.CreateActivity(ctx, remote.CreateActivityRequest{
			Title:           local.Task.Title,
			CreatorRemoteID: creator.RemoteID,
			ContactRemoteID: p.contactFor(local),
			DueBy:           local.Task.DueAt,
			Priority:        model.PriorityStars(local.Task.Importance),
		})
		if err != nil {
			return nil, fmt.Errorf("could not create activity: %w", err)
		}
		transferIdentifiers(*created, &local)
		local.Remote.CreatorID = creatorID
		p.res.Created++
		p.cfg.Metrics.IncTask(metrics.TaskOpCreated)
		logger.Debugf("Activity %s created", created.Remote.ActivityID)

		return p.pushOnto(ctx, local, created, true)
	}

	id := local.Remote.ActivityID
	if rem == nil {
		r := gw.FetchActivity(ctx, id)
		switch r.Kind {
		case remote.FetchNotFound:
			logger.Debugf("Activity %s not found, task not pushed", id)
			return &local, nil
		case remote.FetchFailed:
			return nil, fmt.Errorf("could not fetch activity %s: %w", id, r.Err)
		}
		rem = r.Activity
	}

	// Lifecycle changes, the most recently modified side wins.
	if shouldTransmit(local, rem, model.FieldDeletedAt) && local.Task.IsDeleted() {
		if p.transmitLifecycle(ctx, &local, *rem, p.cfg.Names.Closed, fresh) {
			p.countPushed()
			return &local, nil
		}
		return p.pull(ctx, local)
	}
	if shouldTransmit(local, rem, model.FieldCompletedAt) && local.Task.IsCompleted() {
		if !p.transmitLifecycle(ctx, &local, *rem, p.cfg.Names.Complete, fresh) {
			return p.pull(ctx, local)
		}
	}
	if !local.Task.IsCompleted() && rem.Task.IsCompleted() && local.ModifiedAfter(*rem) {
		if _, err := p.driveTo(ctx, id, p.cfg.Names.InProgress); err != nil {
			return nil, err
		}
	}

	if rem.Remote.CreatorID != creatorID {
		if err := gw.AssignCreator(ctx, id, creator.RemoteID); err != nil {
			return nil, fmt.Errorf("could not assign creator: %w", err)
		}
		r := gw.FetchActivity(ctx, id)
		switch r.Kind {
		case remote.FetchNotFound:
			return &local, nil
		case remote.FetchFailed:
			return nil, fmt.Errorf("could not fetch activity %s: %w", id, r.Err)
		}
		rem = r.Activity
	}
	local.Remote.CreatorID = creatorID

	if err := p.pushFields(ctx, local, *rem); err != nil {
		return nil, err
	}

	created, err := p.pushTags(ctx, local)
	if err != nil {
		return nil, err
	}
	if created {
		if err := p.followUpToInProgress(ctx, id); err != nil {
			return nil, err
		}
	}

	if delta := local.Task.ElapsedSeconds - rem.Task.ElapsedSeconds; delta > 0 && p.prefs.PendingResourceID != "" {
		if err := gw.CreateWorkRecord(ctx, id, p.prefs.PendingResourceID, delta); err != nil {
			return nil, fmt.Errorf("could not create work record: %w", err)
		}
	}

	if contact := p.contactFor(local); contact != "" {
		if err := gw.AssignContact(ctx, id, contact); err != nil {
			return nil, fmt.Errorf("could not assign contact: %w", err)
		}
	}

	p.countPushed()
	return p.pull(ctx, local)
}

// transmitLifecycle drives the remote to the state, rolling back the local
// change when the remote was modified later or the state can't be reached.
// A fresh remote has no changes of its own to keep.
func (p *pass) transmitLifecycle(ctx context.Context, local *model.TaskContainer, rem model.TaskContainer, state string, fresh bool) bool {
	ok := false
	if fresh || !rem.ModifiedAfter(*local) {
		var err error
		ok, err = p.driveTo(ctx, local.Remote.ActivityID, state)
		if err != nil {
			p.logger.Warningf("Could not drive activity %s to %q: %s", local.Remote.ActivityID, state, err)
			ok = false
		}
	}
	if ok {
		return true
	}

	if state == p.cfg.Names.Closed {
		local.Task.DeletedAt = time.Time{}
		local.Task.Fields &^= model.FieldDeletedAt
	} else {
		local.Task.CompletedAt = time.Time{}
		local.Task.Fields &^= model.FieldCompletedAt
	}
	p.cfg.Metrics.IncTask(metrics.TaskOpRollback)
	p.logger.WithValues(log.Kv{"task": local.Task.ID}).Infof("Local change to %q rolled back", state)
	return false
}

func (p *pass) pushFields(ctx context.Context, local, rem model.TaskContainer) error {
	type update struct {
		field remote.Field
		value string
	}

	updates := []update{}
	if shouldTransmit(local, &rem, model.FieldTitle) {
		updates = append(updates, update{remote.FieldName, local.Task.Title})
	}
	if shouldTransmit(local, &rem, model.FieldImportance) {
		updates = append(updates, update{remote.FieldPriority, remote.FormatPriority(model.PriorityStars(local.Task.Importance))})
	}
	if shouldTransmit(local, &rem, model.FieldDueAt) {
		updates = append(updates, update{remote.FieldDueBy, remote.FormatTime(local.Task.DueAt)})
	}
	if shouldTransmit(local, &rem, model.FieldNotes) {
		updates = append(updates, update{remote.FieldDescription, local.Task.Notes})
	}
	if local.Task.HasDueDate() && local.Task.EstimatedSeconds > 0 {
		start := remote.FormatTime(local.Task.DueAt.Add(-time.Duration(local.Task.EstimatedSeconds) * time.Second))
		if rem.Raw == nil || (*rem.Raw)[string(remote.FieldScheduledStart)] != start {
			updates = append(updates, update{remote.FieldScheduledStart, start})
		}
	}

	for _, u := range updates {
		if err := p.cfg.Remote.SetField(ctx, local.Remote.ActivityID, u.field, u.value); err != nil {
			return fmt.Errorf("could not set %s: %w", u.field, err)
		}
	}
	return nil
}

// pushTags applies the local tags as resource assignments and returns true if
// any assignment was created. Remote only assignments are removed when they
// were made before the last sync.
func (p *pass) pushTags(ctx context.Context, local model.TaskContainer) (bool, error) {
	gw := p.cfg.Remote
	id := local.Remote.ActivityID

	assignments, err := gw.FetchResourceAssignments(ctx, id)
	if err != nil {
		return false, fmt.Errorf("could not fetch resource assignments: %w", err)
	}

	assigned := map[string]model.ResourceAssignment{}
	for _, a := range assignments {
		assigned[a.ResourceID] = a
	}
	localTags := local.TagSet()

	tags := model.NormalizeTags(local.Tags)
	created := false
	for _, tag := range tags {
		resourceID, ok := p.labels[tag]
		if !ok {
			continue
		}
		if _, ok := assigned[resourceID]; ok {
			continue
		}
		if err := gw.CreateResourceAssignment(ctx, id, resourceID); err != nil {
			p.logger.Warningf("Could not assign tag %q to activity %s: %s", tag, id, err)
			continue
		}
		created = true
	}

	for _, a := range assignments {
		name, ok := p.resourceNames[a.ResourceID]
		if !ok {
			continue
		}
		if _, ok := localTags[name]; ok {
			continue
		}
		if a.AssignedAt == nil || !a.AssignedAt.Before(p.lastSync) {
			continue
		}
		if err := gw.DeleteResourceAssignment(ctx, id, a.AssignmentID); err != nil {
			p.logger.Warningf("Could not remove tag %q from activity %s: %s", name, id, err)
		}
	}

	return created, nil
}

// pull returns the local task updated with the remote state.
func (p *pass) pull(ctx context.Context, local model.TaskContainer) (*model.TaskContainer, error) {
	if local.Task.IsDeleted() {
		return &local, nil
	}
	if !local.Remote.Synced() {
		return nil, nil
	}

	r := p.cfg.Remote.FetchActivity(ctx, local.Remote.ActivityID)
	switch r.Kind {
	case remote.FetchNotFound:
		return &local, nil
	case remote.FetchFailed:
		return nil, fmt.Errorf("could not fetch activity %s: %w", local.Remote.ActivityID, r.Err)
	}

	merged := p.merge(&local, *r.Activity)
	return &merged, nil
}

// reconcile decides the fate of a synced local task missing from the remote activities.
func (p *pass) reconcile(ctx context.Context, local model.TaskContainer) error {
	id := local.Remote.ActivityID
	r := p.cfg.Remote.FetchActivity(ctx, id)
	switch r.Kind {
	case remote.FetchNotFound:
		return p.deleteLocal(ctx, local, decisionRemoteMissing)
	case remote.FetchFailed:
		return fmt.Errorf("could not fetch activity %s: %w", id, r.Err)
	}

	rem := *r.Activity
	if local.ModifiedAfter(rem) {
		switch rem.LifecycleState() {
		case model.LifecycleDeleted, model.LifecycleCompleted:
			if local.LifecycleState() != rem.LifecycleState() {
				return p.deleteLocal(ctx, local, decisionDeleteLocal)
			}
		}
	}

	switch rl, ll := rem.LifecycleState(), local.LifecycleState(); {
	case rl == model.LifecycleDeleted && ll == model.LifecycleCompleted:
		if _, err := p.driveTo(ctx, id, p.cfg.Names.Complete); err != nil && !errors.Is(err, model.ErrNotValid) {
			return err
		}
		return p.deleteLocal(ctx, local, decisionCompleteRemote)

	case rl == model.LifecycleCompleted && ll == model.LifecycleDeleted:
		if _, err := p.driveTo(ctx, id, p.cfg.Names.Closed); err != nil && !errors.Is(err, model.ErrNotValid) {
			return err
		}
		return p.deleteLocal(ctx, local, decisionCloseRemote)

	case rl != model.LifecycleOpen && ll == model.LifecycleOpen:
		ok, err := p.driveTo(ctx, id, p.cfg.Names.InProgress)
		if err != nil && !errors.Is(err, model.ErrNotValid) {
			return err
		}
		if !ok {
			return p.deleteLocal(ctx, local, decisionDeleteLocal)
		}
		p.cfg.Metrics.IncReconciliation(decisionReopenRemote)
		p.logger.WithValues(log.Kv{"task": local.Task.ID}).Debugf("Activity %s reopened", id)
		return nil

	default:
		return p.deleteLocal(ctx, local, decisionDeleteLocal)
	}
}

// syncComments pulls the remote notes and pushes the local comments created
// since the last sync.
func (p *pass) syncComments(ctx context.Context, local model.TaskContainer) error {
	addNote, ok := p.graph.TransitionByName(p.cfg.Names.AddNote)
	if !ok {
		return nil
	}
	id := local.Remote.ActivityID

	// Listed before pulling so the pulled notes are not pushed back.
	comments, err := p.cfg.Repository.ListComments(ctx, local.Task.ID, p.lastSync)
	if err != nil {
		return fmt.Errorf("could not list comments: %w", err)
	}

	notes, err := p.cfg.Remote.FetchComments(ctx, id, addNote.ID, p.lastSync)
	if err != nil {
		return fmt.Errorf("could not fetch comments: %w", err)
	}
	for _, n := range notes {
		c := model.Comment{
			ID:        p.newID(),
			TaskID:    local.Task.ID,
			TaskTitle: local.Task.Title,
			Message:   n,
			CreatedAt: p.cfg.Now().UTC(),
		}
		if err := p.cfg.Repository.CreateComment(ctx, c); err != nil {
			return fmt.Errorf("could not create comment: %w", err)
		}
		p.res.Comments++
	}

	for _, c := range comments {
		if err := p.followUpToInProgress(ctx, id); err != nil {
			return err
		}
		if err := p.addNote(ctx, id, c.Message); err != nil {
			return err
		}
		p.res.Comments++
	}

	return nil
}

// driveTo moves the activity to the named state through the shortest
// transition path. False is returned when the state can't be reached.
func (p *pass) driveTo(ctx context.Context, activityID, stateName string) (bool, error) {
	target, ok := p.graph.StateByName(stateName)
	if !ok {
		p.logger.Debugf("Unknown workflow state %q", stateName)
		return false, nil
	}

	processID, stateID, err := p.cfg.Remote.FetchCurrentProcessAndState(ctx, activityID)
	if err != nil {
		return false, fmt.Errorf("could not fetch state of activity %s: %w", activityID, err)
	}
	if processID != p.graph.ProcessID() {
		p.logger.Debugf("Activity %s belongs to unknown process %s", activityID, processID)
		return false, nil
	}

	path, ok := p.graph.ShortestPath(stateID, target.ID)
	if !ok {
		return false, nil
	}
	for _, t := range path {
		if err := p.cfg.Remote.ExecuteTransition(ctx, activityID, processID, t.ID, t.Name, ""); err != nil {
			if errors.Is(err, model.ErrNotValid) {
				return false, nil
			}
			return false, fmt.Errorf("could not execute transition %q: %w", t.Name, err)
		}
		p.cfg.Metrics.IncTransition(t.Name)
	}

	return true, nil
}

// followUpToInProgress moves the activity to the in progress state when a
// direct transition exists.
func (p *pass) followUpToInProgress(ctx context.Context, activityID string) error {
	target, ok := p.graph.StateByName(p.cfg.Names.InProgress)
	if !ok {
		return nil
	}

	processID, stateID, err := p.cfg.Remote.FetchCurrentProcessAndState(ctx, activityID)
	if err != nil {
		return fmt.Errorf("could not fetch state of activity %s: %w", activityID, err)
	}
	if stateID == target.ID {
		return nil
	}

	t, ok := p.graph.TransitionBetween(stateID, target.ID)
	if !ok {
		p.logger.Debugf("No transition from %s to %q, skipping", stateID, target.Name)
		return nil
	}
	return p.execute(ctx, activityID, processID, t.ID, t.Name, followUpResourceTitle, "")
}

// addNote records a note as an add note follow up, moving first the activity
// to the state the follow up starts from.
func (p *pass) addNote(ctx context.Context, activityID, text string) error {
	addNote, ok := p.graph.TransitionByName(p.cfg.Names.AddNote)
	if !ok {
		return nil
	}

	processID, stateID, err := p.cfg.Remote.FetchCurrentProcessAndState(ctx, activityID)
	if err != nil {
		return fmt.Errorf("could not fetch state of activity %s: %w", activityID, err)
	}

	if stateID != addNote.FromStateID {
		t, ok := p.graph.TransitionBetween(stateID, addNote.FromStateID)
		if !ok {
			p.logger.Debugf("No transition from %s to add notes, note skipped", stateID)
			return nil
		}
		if err := p.execute(ctx, activityID, processID, t.ID, t.Name, followUpAssignTitle, ""); err != nil {
			return err
		}
	}

	return p.execute(ctx, activityID, processID, addNote.ID, addNote.Name, followUpNoteTitle, text)
}

// execute runs a follow up, rejected follow ups are skipped.
func (p *pass) execute(ctx context.Context, activityID, processID, transitionID, name, title, text string) error {
	err := p.cfg.Remote.ExecuteTransition(ctx, activityID, processID, transitionID, title, text)
	switch {
	case err == nil:
		p.cfg.Metrics.IncTransition(name)
		return nil
	case errors.Is(err, model.ErrNotValid):
		p.logger.Warningf("Follow up %q on activity %s rejected: %s", name, activityID, err)
		return nil
	default:
		return fmt.Errorf("could not execute follow up %q: %w", name, err)
	}
}

func (p *pass) countPushed() {
	p.res.Pushed++
	p.cfg.Metrics.IncTask(metrics.TaskOpPushed)
}

// creatorFor returns the creator key of the task, falling back to the default one.
func (p *pass) creatorFor(local model.TaskContainer) int64 {
	switch {
	case local.Remote.CreatorID != 0:
		return local.Remote.CreatorID
	case p.prefs.DefaultCreatorID != 0:
		return p.prefs.DefaultCreatorID
	}
	if c, ok := p.cfg.Catalog.FirstCreator(); ok {
		return c.ID
	}
	return 0
}

// contactFor returns the remote contact the task is assigned to, the current
// user when unassigned.
func (p *pass) contactFor(local model.TaskContainer) string {
	if local.Remote.AssigneeID != 0 {
		if id := p.cfg.Catalog.ContactRemoteID(local.Remote.AssigneeID); id != "" {
			return id
		}
	}
	return p.prefs.UserContactID
}

// shouldTransmit returns true if the local value of the field has to be sent
// to the remote. Completion and deletion only compare presence, the remote
// assigns its own timestamps.
func shouldTransmit(local model.TaskContainer, rem *model.TaskContainer, f model.Field) bool {
	if !local.Task.Has(f) {
		return false
	}
	if rem == nil || !rem.Task.Has(f) {
		return true
	}

	l, r := local.Task, rem.Task
	switch f {
	case model.FieldTitle:
		return l.Title != r.Title
	case model.FieldNotes:
		return l.Notes != r.Notes
	case model.FieldImportance:
		return l.Importance != r.Importance
	case model.FieldDueAt:
		return !l.DueAt.Equal(r.DueAt)
	case model.FieldCompletedAt:
		return l.CompletedAt.IsZero() != r.CompletedAt.IsZero()
	case model.FieldDeletedAt:
		return l.DeletedAt.IsZero() != r.DeletedAt.IsZero()
	case model.FieldElapsed:
		return l.ElapsedSeconds > r.ElapsedSeconds
	case model.FieldEstimated:
		return l.EstimatedSeconds != r.EstimatedSeconds
	}
	return false
}
