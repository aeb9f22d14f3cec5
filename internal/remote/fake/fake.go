// Package fake implements an in-memory CRM activity API. It enforces the
// workflow of its activity process so it can be used to run real sync passes
// without a CRM server.
package fake

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/crxsync/internal/log"
	"github.com/slok/crxsync/internal/model"
	"github.com/slok/crxsync/internal/remote"
	"github.com/slok/crxsync/internal/workflow"
)

// Activity is the server side representation of an activity.
type Activity struct {
	ID             string
	Title          string
	Description    string
	CreatorID      string
	ContactID      string
	StateID        string
	Priority       int
	DueBy          time.Time
	ScheduledStart time.Time
	CreatedAt      time.Time
	ModifiedAt     time.Time
	Assignments    []model.ResourceAssignment
	FollowUps      []FollowUp
	WorkRecords    []WorkRecord
}

// FollowUp is a workflow transition executed on an activity.
type FollowUp struct {
	TransitionID string
	Title        string
	Text         string
	CreatedAt    time.Time
}

// WorkRecord is time reported on an activity.
type WorkRecord struct {
	ResourceID string
	Seconds    int
}

func (a Activity) copy() Activity {
	a.Assignments = append([]model.ResourceAssignment(nil), a.Assignments...)
	a.FollowUps = append([]FollowUp(nil), a.FollowUps...)
	a.WorkRecords = append([]WorkRecord(nil), a.WorkRecords...)
	return a
}

// GatewayConfig is the configuration for the fake gateway.
type GatewayConfig struct {
	// Seed is the initial data, the default seed is used if missing.
	Seed *Seed
	// Names are used to know which states close or complete an activity.
	Names  workflow.Names
	Now    func() time.Time
	Logger log.Logger
}

func (c *GatewayConfig) defaults() error {
	if c.Seed == nil {
		c.Seed = DefaultSeed()
	}
	if err := c.Seed.validate(); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	if c.Names == (workflow.Names{}) {
		c.Names = workflow.DefaultNames()
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.Fake"})
	return nil
}

// Gateway is a fake implementation of remote.Gateway.
type Gateway struct {
	seed       Seed
	graph      *workflow.Graph
	names      workflow.Names
	now        func() time.Time
	activities map[string]*Activity
	failures   map[string]error
	calls      []string
	mu         sync.Mutex
	logger     log.Logger
}

var _ remote.Gateway = &Gateway{}

// NewGateway returns a new fake gateway.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	graph, err := cfg.Seed.Process.graph()
	if err != nil {
		return nil, fmt.Errorf("invalid process: %w", err)
	}

	g := &Gateway{
		seed:       *cfg.Seed,
		graph:      graph,
		names:      cfg.Names,
		now:        cfg.Now,
		activities: map[string]*Activity{},
		failures:   map[string]error{},
		logger:     cfg.Logger,
	}

	now := g.timestamp()
	for _, sa := range cfg.Seed.Activities {
		a := &Activity{
			ID:             sa.ID,
			Title:          sa.Title,
			Description:    sa.Description,
			CreatorID:      sa.Creator,
			ContactID:      sa.Contact,
			StateID:        sa.State,
			Priority:       sa.Priority,
			DueBy:          sa.DueBy.UTC(),
			ScheduledStart: sa.ScheduledStart.UTC(),
			CreatedAt:      orTime(sa.CreatedAt, now),
			ModifiedAt:     orTime(sa.ModifiedAt, now),
		}
		if a.StateID == "" {
			a.StateID = cfg.Seed.Process.InitialState
		}
		for _, r := range sa.Resources {
			a.Assignments = append(a.Assignments, model.ResourceAssignment{
				ResourceID:   r,
				AssignmentID: g.newID(),
				AssignedAt:   &a.CreatedAt,
			})
		}
		for _, f := range sa.FollowUps {
			a.FollowUps = append(a.FollowUps, FollowUp{TransitionID: f.Transition, Title: f.Title, Text: f.Text, CreatedAt: f.CreatedAt.UTC()})
		}
		for _, w := range sa.WorkRecords {
			a.WorkRecords = append(a.WorkRecords, WorkRecord{ResourceID: w.Resource, Seconds: w.Seconds})
		}
		g.activities[a.ID] = a
	}

	return g, nil
}

func orTime(t, def time.Time) time.Time {
	if t.IsZero() {
		return def
	}
	return t.UTC()
}

// Snapshot returns the current server state as a seed, a gateway created
// from it serves the same activities.
func (g *Gateway) Snapshot() *Seed {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.seed
	s.Activities = make([]SeedActivity, 0, len(g.activities))
	for _, a := range g.activities {
		sa := SeedActivity{
			ID:             a.ID,
			Title:          a.Title,
			Description:    a.Description,
			Creator:        a.CreatorID,
			Contact:        a.ContactID,
			State:          a.StateID,
			Priority:       a.Priority,
			DueBy:          a.DueBy,
			ScheduledStart: a.ScheduledStart,
			CreatedAt:      a.CreatedAt,
			ModifiedAt:     a.ModifiedAt,
		}
		for _, as := range a.Assignments {
			sa.Resources = append(sa.Resources, as.ResourceID)
		}
		for _, f := range a.FollowUps {
			sa.FollowUps = append(sa.FollowUps, SeedFollowUp{Transition: f.TransitionID, Title: f.Title, Text: f.Text, CreatedAt: f.CreatedAt})
		}
		for _, w := range a.WorkRecords {
			sa.WorkRecords = append(sa.WorkRecords, SeedWorkRecord{Resource: w.ResourceID, Seconds: w.Seconds})
		}
		s.Activities = append(s.Activities, sa)
	}
	sort.Slice(s.Activities, func(i, j int) bool { return s.Activities[i].ID < s.Activities[j].ID })

	return &s
}

// FailOn makes every call to the method fail with err, a nil err removes the failure.
func (g *Gateway) FailOn(method string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err == nil {
		delete(g.failures, method)
		return
	}
	g.failures[method] = err
}

// Calls returns the name of the methods called in order.
func (g *Gateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// ResetCalls forgets the recorded calls.
func (g *Gateway) ResetCalls() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

// Activity returns a copy of the server side activity.
func (g *Gateway) Activity(id string) (Activity, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.activities[id]
	if !ok {
		return Activity{}, false
	}
	return a.copy(), true
}

// PutActivity stores an activity as is, as if another client changed it.
func (g *Gateway) PutActivity(a Activity) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a = a.copy()
	g.activities[a.ID] = &a
}

// DeleteActivity removes an activity from the server.
func (g *Gateway) DeleteActivity(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.activities, id)
}

// call records the call and returns the injected failure if any. Must be called with the lock held.
func (g *Gateway) call(ctx context.Context, method string) error {
	g.calls = append(g.calls, method)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := g.failures[method]; ok {
		return err
	}
	return nil
}

func (g *Gateway) timestamp() time.Time { return g.now().UTC().Truncate(time.Millisecond) }

func (g *Gateway) newID() string {
	return ulid.MustNew(ulid.Timestamp(g.now()), rand.Reader).String()
}

func (g *Gateway) activity(id string) (*Activity, error) {
	a, ok := g.activities[id]
	if !ok {
		return nil, fmt.Errorf("activity %s: %w", id, model.ErrNotFound)
	}
	return a, nil
}

func (g *Gateway) hasCreator(id string) bool {
	for _, c := range g.seed.Creators {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (g *Gateway) hasContact(id string) bool {
	for _, c := range g.seed.Contacts {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (g *Gateway) resourceName(id string) (string, bool) {
	for _, r := range g.seed.Resources {
		if r.ID == id {
			return r.Name, true
		}
	}
	return "", false
}

func (g *Gateway) container(a *Activity) model.TaskContainer {
	elapsed := 0
	for _, w := range a.WorkRecords {
		elapsed += w.Seconds
	}

	t := model.Task{
		Title:          a.Title,
		Notes:          a.Description,
		Importance:     model.ImportanceFromStars(a.Priority),
		DueAt:          a.DueBy,
		CreatedAt:      a.CreatedAt,
		ModifiedAt:     a.ModifiedAt,
		ElapsedSeconds: elapsed,
	}
	switch g.graph.Lifecycle(a.StateID, g.names) {
	case model.LifecycleDeleted:
		t.DeletedAt = a.ModifiedAt
	case model.LifecycleCompleted:
		t.CompletedAt = a.ModifiedAt
	}
	t.Fields = t.PresentFields() &^ model.FieldEstimated

	tags := []string{}
	for _, as := range a.Assignments {
		if name, ok := g.resourceName(as.ResourceID); ok {
			tags = append(tags, name)
		}
	}

	raw := model.RawActivity{
		"activityId":                       a.ID,
		string(remote.FieldName):           a.Title,
		string(remote.FieldDescription):    a.Description,
		string(remote.FieldDueBy):          remote.FormatTime(a.DueBy),
		string(remote.FieldPriority):       remote.FormatPriority(a.Priority),
		string(remote.FieldScheduledStart): remote.FormatTime(a.ScheduledStart),
		"processState":                     a.StateID,
		"creator":                          a.CreatorID,
		"assignedTo":                       a.ContactID,
		"modifiedAt":                       remote.FormatTime(a.ModifiedAt),
	}

	return model.TaskContainer{
		Task: t,
		Remote: model.RemoteMetadata{
			ActivityID:  a.ID,
			ActivityKey: model.HashID(a.ID),
			StateID:     a.StateID,
			CreatorID:   model.HashID(a.CreatorID),
			AssigneeID:  model.HashID(a.ContactID),
		},
		Tags: model.NormalizeTags(tags),
		Raw:  &raw,
	}
}

func (g *Gateway) CurrentUser(ctx context.Context) (*model.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "CurrentUser"); err != nil {
		return nil, err
	}

	return &model.User{
		ID:        model.HashID(g.seed.User.Contact),
		ContactID: g.seed.User.Contact,
		Login:     g.seed.User.Login,
	}, nil
}

func (g *Gateway) ListCreators(ctx context.Context) ([]model.Creator, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "ListCreators"); err != nil {
		return nil, err
	}

	res := make([]model.Creator, 0, len(g.seed.Creators))
	for _, c := range g.seed.Creators {
		res = append(res, model.Creator{ID: model.HashID(c.ID), RemoteID: c.ID, Name: c.Name})
	}
	return res, nil
}

func (g *Gateway) ListContacts(ctx context.Context) ([]model.Contact, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "ListContacts"); err != nil {
		return nil, err
	}

	res := make([]model.Contact, 0, len(g.seed.Contacts))
	for _, c := range g.seed.Contacts {
		res = append(res, model.Contact{ID: model.HashID(c.ID), RemoteID: c.ID, FirstName: c.FirstName, LastName: c.LastName})
	}
	return res, nil
}

func (g *Gateway) ListResources(ctx context.Context) ([]model.Resource, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "ListResources"); err != nil {
		return nil, err
	}

	res := make([]model.Resource, 0, len(g.seed.Resources))
	for _, r := range g.seed.Resources {
		res = append(res, model.Resource{ID: r.ID, Name: r.Name, ContactID: r.Contact})
	}
	return res, nil
}

func (g *Gateway) FetchProcessID(ctx context.Context, processName string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "FetchProcessID"); err != nil {
		return "", err
	}

	if processName != g.seed.Process.Name {
		return "", fmt.Errorf("process %q: %w", processName, model.ErrNotFound)
	}
	return g.seed.Process.ID, nil
}

func (g *Gateway) FetchStates(ctx context.Context, processID string) ([]workflow.State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "FetchStates"); err != nil {
		return nil, err
	}

	if processID != g.seed.Process.ID {
		return nil, fmt.Errorf("process %s: %w", processID, model.ErrNotFound)
	}
	return g.seed.Process.states(), nil
}

func (g *Gateway) FetchTransitions(ctx context.Context, processID string) ([]workflow.Transition, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "FetchTransitions"); err != nil {
		return nil, err
	}

	if processID != g.seed.Process.ID {
		return nil, fmt.Errorf("process %s: %w", processID, model.ErrNotFound)
	}
	return g.seed.Process.transitions(), nil
}

func (g *Gateway) FetchActivities(ctx context.Context) ([]model.TaskContainer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "FetchActivities"); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(g.activities))
	for id, a := range g.activities {
		if g.graph.Lifecycle(a.StateID, g.names) == model.LifecycleDeleted {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	res := make([]model.TaskContainer, 0, len(ids))
	for _, id := range ids {
		res = append(res, g.container(g.activities[id]))
	}
	return res, nil
}

func (g *Gateway) FetchActivity(ctx context.Context, activityID string) remote.FetchResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "FetchActivity"); err != nil {
		return remote.Failed(err)
	}

	a, err := g.activity(activityID)
	if err != nil {
		return remote.Failed(err)
	}
	return remote.Found(g.container(a))
}

func (g *Gateway) CreateActivity(ctx context.Context, req remote.CreateActivityRequest) (*model.TaskContainer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "CreateActivity"); err != nil {
		return nil, err
	}

	if !g.hasCreator(req.CreatorRemoteID) {
		return nil, fmt.Errorf("creator %q: %w", req.CreatorRemoteID, model.ErrNotValid)
	}
	if req.ContactRemoteID != "" && !g.hasContact(req.ContactRemoteID) {
		return nil, fmt.Errorf("contact %q: %w", req.ContactRemoteID, model.ErrNotValid)
	}

	now := g.timestamp()
	a := &Activity{
		ID:         g.newID(),
		Title:      req.Title,
		CreatorID:  req.CreatorRemoteID,
		ContactID:  req.ContactRemoteID,
		StateID:    g.seed.Process.InitialState,
		Priority:   req.Priority,
		DueBy:      req.DueBy.UTC(),
		CreatedAt:  now,
		ModifiedAt: now,
	}
	g.activities[a.ID] = a
	g.logger.Debugf("Created activity %s", a.ID)

	c := g.container(a)
	return &c, nil
}

func (g *Gateway) SetField(ctx context.Context, activityID string, field remote.Field, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "SetField"); err != nil {
		return err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return err
	}

	switch field {
	case remote.FieldName:
		a.Title = value
	case remote.FieldDescription:
		a.Description = value
	case remote.FieldPriority:
		p, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid priority %q: %w", value, model.ErrNotValid)
		}
		a.Priority = p
	case remote.FieldDueBy, remote.FieldScheduledStart:
		t, err := remote.ParseTime(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", field, model.ErrNotValid)
		}
		if field == remote.FieldDueBy {
			a.DueBy = t
		} else {
			a.ScheduledStart = t
		}
	default:
		return fmt.Errorf("unknown field %q: %w", field, model.ErrNotValid)
	}

	a.ModifiedAt = g.timestamp()
	return nil
}

func (g *Gateway) AssignCreator(ctx context.Context, activityID, creatorRemoteID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "AssignCreator"); err != nil {
		return err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return err
	}
	if !g.hasCreator(creatorRemoteID) {
		return fmt.Errorf("creator %q: %w", creatorRemoteID, model.ErrNotValid)
	}

	a.CreatorID = creatorRemoteID
	a.ModifiedAt = g.timestamp()
	return nil
}

func (g *Gateway) AssignContact(ctx context.Context, activityID, contactRemoteID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "AssignContact"); err != nil {
		return err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return err
	}
	if contactRemoteID != "" && !g.hasContact(contactRemoteID) {
		return fmt.Errorf("contact %q: %w", contactRemoteID, model.ErrNotValid)
	}

	// Reassigning the same contact is a no-op on the server.
	if a.ContactID != contactRemoteID {
		a.ContactID = contactRemoteID
		a.ModifiedAt = g.timestamp()
	}
	return nil
}

func (g *Gateway) ExecuteTransition(ctx context.Context, activityID, processID, transitionID, title, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "ExecuteTransition"); err != nil {
		return err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return err
	}
	if processID != g.graph.ProcessID() {
		return fmt.Errorf("process %s: %w", processID, model.ErrNotValid)
	}

	var tr *workflow.Transition
	for _, t := range g.graph.Transitions() {
		if t.ID == transitionID {
			tr = &t
			break
		}
	}
	if tr == nil {
		return fmt.Errorf("transition %s: %w", transitionID, model.ErrNotFound)
	}
	if tr.FromStateID != a.StateID {
		return fmt.Errorf("transition %s can't be executed from state %s: %w", transitionID, a.StateID, model.ErrNotValid)
	}

	now := g.timestamp()
	a.StateID = tr.ToStateID
	a.FollowUps = append(a.FollowUps, FollowUp{TransitionID: tr.ID, Title: title, Text: text, CreatedAt: now})
	a.ModifiedAt = now
	g.logger.Debugf("Activity %s transitioned with %s to %s", a.ID, tr.Name, tr.ToStateID)
	return nil
}

func (g *Gateway) FetchCurrentProcessAndState(ctx context.Context, activityID string) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "FetchCurrentProcessAndState"); err != nil {
		return "", "", err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return "", "", err
	}
	return g.graph.ProcessID(), a.StateID, nil
}

func (g *Gateway) FetchResourceAssignments(ctx context.Context, activityID string) ([]model.ResourceAssignment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "FetchResourceAssignments"); err != nil {
		return nil, err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return nil, err
	}
	return append([]model.ResourceAssignment{}, a.Assignments...), nil
}

func (g *Gateway) CreateResourceAssignment(ctx context.Context, activityID, resourceID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "CreateResourceAssignment"); err != nil {
		return err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return err
	}
	if _, ok := g.resourceName(resourceID); !ok {
		return fmt.Errorf("resource %q: %w", resourceID, model.ErrNotValid)
	}

	now := g.timestamp()
	a.Assignments = append(a.Assignments, model.ResourceAssignment{
		ResourceID:   resourceID,
		AssignmentID: g.newID(),
		AssignedAt:   &now,
	})
	a.ModifiedAt = now
	return nil
}

func (g *Gateway) DeleteResourceAssignment(ctx context.Context, activityID, assignmentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "DeleteResourceAssignment"); err != nil {
		return err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return err
	}

	for i, as := range a.Assignments {
		if as.AssignmentID == assignmentID {
			a.Assignments = append(a.Assignments[:i], a.Assignments[i+1:]...)
			a.ModifiedAt = g.timestamp()
			return nil
		}
	}
	return fmt.Errorf("assignment %s: %w", assignmentID, model.ErrNotFound)
}

func (g *Gateway) FetchComments(ctx context.Context, activityID, addNoteTransitionID string, since time.Time) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "FetchComments"); err != nil {
		return nil, err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return nil, err
	}

	notes := []string{}
	for _, f := range a.FollowUps {
		if f.TransitionID == addNoteTransitionID && f.CreatedAt.After(since) {
			notes = append(notes, f.Text)
		}
	}
	return notes, nil
}

func (g *Gateway) CreateWorkRecord(ctx context.Context, activityID, resourceID string, seconds int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.call(ctx, "CreateWorkRecord"); err != nil {
		return err
	}

	a, err := g.activity(activityID)
	if err != nil {
		return err
	}
	if seconds <= 0 {
		return fmt.Errorf("work record must be positive: %w", model.ErrNotValid)
	}
	if _, ok := g.resourceName(resourceID); !ok {
		return fmt.Errorf("resource %q: %w", resourceID, model.ErrNotValid)
	}

	a.WorkRecords = append(a.WorkRecords, WorkRecord{ResourceID: resourceID, Seconds: seconds})
	a.ModifiedAt = g.timestamp()
	return nil
}
