// Package workflow models the finite state activity lifecycle the remote CRM
// enforces, and computes the transitions needed to move an activity between
// states.
package workflow

import (
	"fmt"
	"sort"

	"github.com/slok/crxsync/internal/model"
)

// State is a workflow state.
type State struct {
	ID   string
	Name string
}

// Transition is a directed edge between two states, states are referenced by ID.
type Transition struct {
	ID          string
	Name        string
	FromStateID string
	ToStateID   string
}

// Names are the well known state and transition names the sync relies on.
type Names struct {
	InProgress string
	Complete   string
	Closed     string
	AddNote    string
}

// DefaultNames returns the names used by the default activity process.
func DefaultNames() Names {
	return Names{
		InProgress: "In Progress",
		Complete:   "Complete",
		Closed:     "Closed",
		AddNote:    "Add Note",
	}
}

// Graph is an immutable workflow definition. It's safe for concurrent use.
type Graph struct {
	processID         string
	states            map[string]State
	statesByName      map[string]State
	transitions       []Transition
	transitionsByName map[string]Transition
	outgoing          map[string][]Transition
}

// NewGraph returns a new graph. Transitions referencing states that are not part
// of the graph are ignored.
func NewGraph(processID string, states []State, transitions []Transition) (*Graph, error) {
	g := &Graph{
		processID:         processID,
		states:            make(map[string]State, len(states)),
		statesByName:      make(map[string]State, len(states)),
		transitionsByName: make(map[string]Transition, len(transitions)),
		outgoing:          make(map[string][]Transition, len(states)),
	}

	for _, s := range states {
		if s.ID == "" {
			return nil, fmt.Errorf("state %q without id: %w", s.Name, model.ErrNotValid)
		}
		if _, ok := g.states[s.ID]; ok {
			return nil, fmt.Errorf("duplicated state %q: %w", s.ID, model.ErrNotValid)
		}
		g.states[s.ID] = s
		if _, ok := g.statesByName[s.Name]; !ok {
			g.statesByName[s.Name] = s
		}
	}

	seen := map[string]bool{}
	for _, t := range transitions {
		if t.ID == "" {
			return nil, fmt.Errorf("transition %q without id: %w", t.Name, model.ErrNotValid)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicated transition %q: %w", t.ID, model.ErrNotValid)
		}
		seen[t.ID] = true

		_, okFrom := g.states[t.FromStateID]
		_, okTo := g.states[t.ToStateID]
		if !okFrom || !okTo {
			continue
		}

		g.transitions = append(g.transitions, t)
	}

	// Deterministic order everywhere: lowest transition ID first.
	sort.Slice(g.transitions, func(i, j int) bool { return g.transitions[i].ID < g.transitions[j].ID })
	for _, t := range g.transitions {
		if _, ok := g.transitionsByName[t.Name]; !ok {
			g.transitionsByName[t.Name] = t
		}
		g.outgoing[t.FromStateID] = append(g.outgoing[t.FromStateID], t)
	}

	return g, nil
}

// ProcessID returns the remote process the graph belongs to.
func (g *Graph) ProcessID() string { return g.processID }

// States returns all the states sorted by ID.
func (g *Graph) States() []State {
	states := make([]State, 0, len(g.states))
	for _, s := range g.states {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states
}

// Transitions returns all the transitions sorted by ID.
func (g *Graph) Transitions() []Transition {
	return append([]Transition(nil), g.transitions...)
}

// StateByName returns the state with the name.
func (g *Graph) StateByName(name string) (State, bool) {
	s, ok := g.statesByName[name]
	return s, ok
}

// StateByID returns the state with the ID.
func (g *Graph) StateByID(id string) (State, bool) {
	s, ok := g.states[id]
	return s, ok
}

// TransitionByName returns the transition with the name.
func (g *Graph) TransitionByName(name string) (Transition, bool) {
	t, ok := g.transitionsByName[name]
	return t, ok
}

// TransitionBetween returns the direct transition from one state to another.
func (g *Graph) TransitionBetween(fromStateID, toStateID string) (Transition, bool) {
	for _, t := range g.outgoing[fromStateID] {
		if t.ToStateID == toStateID {
			return t, true
		}
	}
	return Transition{}, false
}

// ShortestPath returns the transitions that, applied in order, move an activity
// from one state to the other. An empty path is returned when both states are the
// same, and false when there is no path or any of the states is unknown.
//
// Outgoing transitions are explored in ascending ID order, so when more than one
// shortest path exists, the one using the lowest transition IDs is returned.
func (g *Graph) ShortestPath(fromStateID, toStateID string) ([]Transition, bool) {
	if _, ok := g.states[fromStateID]; !ok {
		return nil, false
	}
	if _, ok := g.states[toStateID]; !ok {
		return nil, false
	}
	if fromStateID == toStateID {
		return []Transition{}, true
	}

	// BFS keeping the transition used to reach each state.
	via := map[string]Transition{}
	visited := map[string]bool{fromStateID: true}
	queue := []string{fromStateID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, t := range g.outgoing[current] {
			if visited[t.ToStateID] {
				continue
			}
			visited[t.ToStateID] = true
			via[t.ToStateID] = t

			if t.ToStateID == toStateID {
				return g.unwind(via, fromStateID, toStateID), true
			}
			queue = append(queue, t.ToStateID)
		}
	}

	return nil, false
}

func (g *Graph) unwind(via map[string]Transition, fromStateID, toStateID string) []Transition {
	path := []Transition{}
	for s := toStateID; s != fromStateID; {
		t := via[s]
		path = append(path, t)
		s = t.FromStateID
	}

	// Reverse, we walked from the target.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Lifecycle maps a state to the coarse task lifecycle.
func (g *Graph) Lifecycle(stateID string, names Names) model.Lifecycle {
	s, ok := g.states[stateID]
	if !ok {
		return model.LifecycleOpen
	}

	switch s.Name {
	case names.Closed:
		return model.LifecycleDeleted
	case names.Complete:
		return model.LifecycleCompleted
	default:
		return model.LifecycleOpen
	}
}
