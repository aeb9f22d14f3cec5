package syncer

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/metrics"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/workflow"
)

// pass is the state of a single sync pass.
type pass struct {
	engine   *Engine
	cfg      *EngineConfig
	prefs    *model.Preferences
	lastSync time.Time
	res      *Result
	logger   log.Logger

	user  *model.User
	graph *workflow.Graph
	// labels maps tag names to remote resource IDs.
	labels        map[string]string
	resourceNames map[string]string
	// handled are the local task IDs already written in this pass.
	handled map[string]bool
}

func (p *pass) run(ctx context.Context) error {
	if err := p.prepare(ctx); err != nil {
		return err
	}
	defer p.cfg.Catalog.Invalidate()

	remotes, err := p.cfg.Remote.FetchActivities(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch activities: %w", err)
	}
	remoteIdx := model.IndexByMatchKey(remotes)
	p.logger.Debugf("Fetched %d remote activities", len(remotes))

	if err := p.matchLocalTasksToRemote(ctx, remoteIdx); err != nil {
		return err
	}

	// Remote activities without local counterpart.
	locals, err := p.cfg.Repository.ListSyncedTasks(ctx)
	if err != nil {
		return fmt.Errorf("could not list synced tasks: %w", err)
	}
	localIdx := model.IndexByMatchKey(locals)
	remoteNewByTitle := map[string]model.TaskContainer{}
	for _, r := range remotes {
		if _, ok := localIdx[r.MatchKey()]; !ok {
			if _, dup := remoteNewByTitle[r.Task.Title]; !dup {
				remoteNewByTitle[r.Task.Title] = r
			}
		}
	}

	handledRemote := map[string]bool{}
	if err := p.sendLocallyCreated(ctx, remoteNewByTitle, handledRemote); err != nil {
		return err
	}
	if err := p.sendLocallyUpdated(ctx, remoteIdx, handledRemote); err != nil {
		return err
	}
	return p.receiveRemote(ctx, remotes, handledRemote)
}

// prepare loads the remote user, lookup tables and workflow graph.
func (p *pass) prepare(ctx context.Context) error {
	gw := p.cfg.Remote

	user, err := gw.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("could not get current user: %w", err)
	}
	p.user = user
	p.prefs.UserID = user.ID
	p.prefs.UserContactID = user.ContactID
	switch p.cfg.DefaultCreator {
	case "":
	case model.NoSyncCreator:
		p.prefs.DefaultCreatorID = model.CreatorNoSync
	default:
		p.prefs.DefaultCreatorID = model.HashID(p.cfg.DefaultCreator)
	}

	creators, err := gw.ListCreators(ctx)
	if err != nil {
		return fmt.Errorf("could not list creators: %w", err)
	}
	contacts, err := gw.ListContacts(ctx)
	if err != nil {
		return fmt.Errorf("could not list contacts: %w", err)
	}
	if err := p.cfg.Catalog.Update(ctx, creators, contacts); err != nil {
		return fmt.Errorf("could not update catalog: %w", err)
	}

	resources, err := gw.ListResources(ctx)
	if err != nil {
		return fmt.Errorf("could not list resources: %w", err)
	}
	p.labels = make(map[string]string, len(resources))
	p.resourceNames = make(map[string]string, len(resources))
	for _, r := range resources {
		p.labels[r.Name] = r.ID
		p.resourceNames[r.ID] = r.Name
		if r.ContactID != "" && r.ContactID == user.ContactID {
			p.prefs.PendingResourceID = r.ID
		}
	}

	processID, err := gw.FetchProcessID(ctx, p.cfg.ProcessName)
	if err != nil {
		return fmt.Errorf("could not fetch activity process %q: %w", p.cfg.ProcessName, err)
	}
	states, err := gw.FetchStates(ctx, processID)
	if err != nil {
		return fmt.Errorf("could not fetch workflow states: %w", err)
	}
	transitions, err := gw.FetchTransitions(ctx, processID)
	if err != nil {
		return fmt.Errorf("could not fetch workflow transitions: %w", err)
	}
	graph, err := workflow.NewGraph(processID, states, transitions)
	if err != nil {
		return fmt.Errorf("invalid workflow: %w: %w", err, model.ErrMalformedResponse)
	}
	p.graph = graph

	return nil
}

// matchLocalTasksToRemote reconciles the synced local tasks missing from the
// remote activities and syncs the comments of the matched ones.
func (p *pass) matchLocalTasksToRemote(ctx context.Context, remoteIdx map[string]model.TaskContainer) error {
	locals, err := p.cfg.Repository.ListSyncedTasks(ctx)
	if err != nil {
		return fmt.Errorf("could not list synced tasks: %w", err)
	}

	for _, local := range locals {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, ok := remoteIdx[local.MatchKey()]; !ok {
			if err := p.reconcile(ctx, local); err != nil {
				return fmt.Errorf("could not reconcile task %s: %w", local.Task.ID, err)
			}
			continue
		}

		if err := p.syncComments(ctx, local); err != nil {
			return fmt.Errorf("could not sync comments of task %s: %w", local.Task.ID, err)
		}
	}

	return nil
}

// sendLocallyCreated pushes the tasks never seen by a sync. A task titled as a
// remote activity without local counterpart is linked to it instead of
// creating a duplicate.
func (p *pass) sendLocallyCreated(ctx context.Context, remoteNewByTitle map[string]model.TaskContainer, handledRemote map[string]bool) error {
	locals, err := p.cfg.Repository.ListLocallyCreatedTasks(ctx)
	if err != nil {
		return fmt.Errorf("could not list locally created tasks: %w", err)
	}

	for _, local := range locals {
		if err := ctx.Err(); err != nil {
			return err
		}

		var remote *model.TaskContainer
		if r, ok := remoteNewByTitle[local.Task.Title]; ok {
			delete(remoteNewByTitle, local.Task.Title)
			handledRemote[r.MatchKey()] = true
			transferIdentifiers(r, &local)
			remote = &r
			p.logger.Debugf("Task %s linked to activity %s by title", local.Task.ID, r.MatchKey())
		}

		res, err := p.push(ctx, local, remote)
		if err != nil {
			return fmt.Errorf("could not push task %s: %w", local.Task.ID, err)
		}
		if err := p.write(ctx, res); err != nil {
			return err
		}
		if res.Remote.Synced() {
			handledRemote[res.MatchKey()] = true
		}
	}

	return nil
}

// sendLocallyUpdated pushes the tasks modified since the last sync.
func (p *pass) sendLocallyUpdated(ctx context.Context, remoteIdx map[string]model.TaskContainer, handledRemote map[string]bool) error {
	locals, err := p.cfg.Repository.ListLocallyUpdatedTasks(ctx, p.lastSync)
	if err != nil {
		return fmt.Errorf("could not list locally updated tasks: %w", err)
	}

	for _, local := range locals {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.handled[local.Task.ID] {
			continue
		}

		var remote *model.TaskContainer
		if r, ok := remoteIdx[local.MatchKey()]; ok && local.Remote.Synced() {
			remote = &r
			handledRemote[r.MatchKey()] = true
		}

		res, err := p.push(ctx, local, remote)
		if err != nil {
			return fmt.Errorf("could not push task %s: %w", local.Task.ID, err)
		}
		if err := p.write(ctx, res); err != nil {
			return err
		}
	}

	return nil
}

// receiveRemote writes locally the remote activities not pushed in this pass.
func (p *pass) receiveRemote(ctx context.Context, remotes []model.TaskContainer, handledRemote map[string]bool) error {
	locals, err := p.cfg.Repository.ListSyncedTasks(ctx)
	if err != nil {
		return fmt.Errorf("could not list synced tasks: %w", err)
	}
	localIdx := model.IndexByMatchKey(locals)

	for _, r := range remotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if handledRemote[r.MatchKey()] {
			continue
		}

		var local *model.TaskContainer
		if l, ok := localIdx[r.MatchKey()]; ok {
			if p.handled[l.Task.ID] {
				continue
			}
			local = &l
		}

		merged := p.merge(local, r)
		if local != nil && sameContent(*local, merged) {
			continue
		}
		if err := p.write(ctx, &merged); err != nil {
			return err
		}
		p.res.Pulled++
		p.cfg.Metrics.IncTask(metrics.TaskOpPulled)
	}

	return nil
}

// write stores the result of a push or pull.
func (p *pass) write(ctx context.Context, c *model.TaskContainer) error {
	if c == nil {
		return nil
	}
	if c.Task.ID == "" {
		c.Task.ID = p.newID()
	}

	if err := p.cfg.Repository.SaveTask(ctx, *c); err != nil {
		return fmt.Errorf("could not save task %s: %w", c.Task.ID, err)
	}
	p.handled[c.Task.ID] = true
	return nil
}

func (p *pass) deleteLocal(ctx context.Context, local model.TaskContainer, decision string) error {
	if err := p.cfg.Repository.DeleteTask(ctx, local.Task.ID); err != nil {
		return fmt.Errorf("could not delete task %s: %w", local.Task.ID, err)
	}

	p.res.Deleted++
	p.cfg.Metrics.IncTask(metrics.TaskOpDeleted)
	p.cfg.Metrics.IncReconciliation(decision)
	p.logger.WithValues(log.Kv{"task": local.Task.ID, "decision": decision}).Debugf("Local task deleted")
	return nil
}

// merge returns the remote activity as a local task. Local only values are kept.
func (p *pass) merge(local *model.TaskContainer, remote model.TaskContainer) model.TaskContainer {
	res := remote
	res.Raw = nil
	res.Tags = model.NormalizeTags(remote.Tags)

	if local != nil {
		res.Task.ID = local.Task.ID
		res.Task.EstimatedSeconds = local.Task.EstimatedSeconds
		if res.Task.CreatedAt.IsZero() {
			res.Task.CreatedAt = local.Task.CreatedAt
		}
		if local.Task.ElapsedSeconds > res.Task.ElapsedSeconds {
			res.Task.ElapsedSeconds = local.Task.ElapsedSeconds
		}
	}

	res.Task.Fields = res.Task.PresentFields()
	return res
}

func (p *pass) newID() string {
	return ulid.MustNew(ulid.Timestamp(p.cfg.Now()), rand.Reader).String()
}

// transferIdentifiers makes a local task track a remote activity.
func transferIdentifiers(from model.TaskContainer, to *model.TaskContainer) {
	to.Remote.ActivityID = from.Remote.ActivityID
	to.Remote.ActivityKey = from.Remote.ActivityKey
	to.Remote.StateID = from.Remote.StateID
}

func sameContent(a, b model.TaskContainer) bool {
	ta, tb := a.Task, b.Task
	ta.Fields, tb.Fields = 0, 0
	if !ta.DueAt.Equal(tb.DueAt) || !ta.CreatedAt.Equal(tb.CreatedAt) || !ta.CompletedAt.Equal(tb.CompletedAt) ||
		!ta.DeletedAt.Equal(tb.DeletedAt) || !ta.ModifiedAt.Equal(tb.ModifiedAt) {
		return false
	}
	ta.DueAt, ta.CreatedAt, ta.CompletedAt, ta.DeletedAt, ta.ModifiedAt = time.Time{}, time.Time{}, time.Time{}, time.Time{}, time.Time{}
	tb.DueAt, tb.CreatedAt, tb.CompletedAt, tb.DeletedAt, tb.ModifiedAt = time.Time{}, time.Time{}, time.Time{}, time.Time{}, time.Time{}
	if ta != tb || a.Remote != b.Remote {
		return false
	}

	at, bt := model.NormalizeTags(a.Tags), model.NormalizeTags(b.Tags)
	if len(at) != len(bt) {
		return false
	}
	for i := range at {
		if at[i] != bt[i] {
			return false
		}
	}
	return true
}
