package fake

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/crxsync/internal/workflow"
)

// DefaultProcessName is the name of the activity process the default seed serves.
const DefaultProcessName = "Bug + feature tracking process"

// Seed is the initial data of the fake CRM.
type Seed struct {
	User       SeedUser       `yaml:"user"`
	Contacts   []SeedContact  `yaml:"contacts"`
	Creators   []SeedCreator  `yaml:"creators"`
	Resources  []SeedResource `yaml:"resources"`
	Process    SeedProcess    `yaml:"process"`
	Activities []SeedActivity `yaml:"activities"`
}

// SeedUser is the authenticated principal.
type SeedUser struct {
	Login   string `yaml:"login"`
	Contact string `yaml:"contact"`
}

// SeedContact is a CRM account.
type SeedContact struct {
	ID        string `yaml:"id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// SeedCreator is an activity creator (dashboard).
type SeedCreator struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// SeedResource is a labeled resource.
type SeedResource struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Contact string `yaml:"contact"`
}

// SeedProcess is the activity process workflow.
type SeedProcess struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name"`
	InitialState string           `yaml:"initial_state"`
	States       []SeedState      `yaml:"states"`
	Transitions  []SeedTransition `yaml:"transitions"`
}

// SeedState is a workflow state.
type SeedState struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// SeedTransition is a workflow transition.
type SeedTransition struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// SeedActivity is an activity that already exists on the CRM.
type SeedActivity struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Creator     string    `yaml:"creator"`
	Contact     string    `yaml:"contact"`
	State       string    `yaml:"state"`
	Priority    int       `yaml:"priority"`
	DueBy       time.Time `yaml:"due_by"`
	Resources   []string  `yaml:"resources"`

	// Server side state, set when the seed is a snapshot.
	ScheduledStart time.Time        `yaml:"scheduled_start,omitempty"`
	CreatedAt      time.Time        `yaml:"created_at,omitempty"`
	ModifiedAt     time.Time        `yaml:"modified_at,omitempty"`
	FollowUps      []SeedFollowUp   `yaml:"follow_ups,omitempty"`
	WorkRecords    []SeedWorkRecord `yaml:"work_records,omitempty"`
}

// SeedFollowUp is a transition already executed on an activity.
type SeedFollowUp struct {
	Transition string    `yaml:"transition"`
	Title      string    `yaml:"title"`
	Text       string    `yaml:"text"`
	CreatedAt  time.Time `yaml:"created_at"`
}

// SeedWorkRecord is time already reported on an activity.
type SeedWorkRecord struct {
	Resource string `yaml:"resource"`
	Seconds  int    `yaml:"seconds"`
}

// LoadSeed parses a YAML seed.
func LoadSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if s.Process.Name == "" && len(s.Process.States) == 0 {
		s.Process = DefaultSeed().Process
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	return &s, nil
}

// Marshal returns the YAML representation of the seed, LoadSeed accepts it.
func (s Seed) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	return data, nil
}

func (s Seed) validate() error {
	if s.User.Login == "" {
		return fmt.Errorf("user login is required")
	}

	contacts := map[string]bool{}
	for _, c := range s.Contacts {
		if c.ID == "" {
			return fmt.Errorf("contact id is required")
		}
		contacts[c.ID] = true
	}
	if !contacts[s.User.Contact] {
		return fmt.Errorf("user contact %q is missing", s.User.Contact)
	}

	creators := map[string]bool{}
	for _, c := range s.Creators {
		if c.ID == "" {
			return fmt.Errorf("creator id is required")
		}
		creators[c.ID] = true
	}

	resources := map[string]bool{}
	for _, r := range s.Resources {
		if r.ID == "" || r.Name == "" {
			return fmt.Errorf("resource id and name are required")
		}
		resources[r.ID] = true
	}

	if s.Process.ID == "" || s.Process.Name == "" {
		return fmt.Errorf("process id and name are required")
	}
	states := map[string]bool{}
	for _, st := range s.Process.States {
		states[st.ID] = true
	}
	if !states[s.Process.InitialState] {
		return fmt.Errorf("initial state %q is missing", s.Process.InitialState)
	}

	ids := map[string]bool{}
	for _, a := range s.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity id is required")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicated activity %q", a.ID)
		}
		ids[a.ID] = true

		if !creators[a.Creator] {
			return fmt.Errorf("activity %q: unknown creator %q", a.ID, a.Creator)
		}
		if a.Contact != "" && !contacts[a.Contact] {
			return fmt.Errorf("activity %q: unknown contact %q", a.ID, a.Contact)
		}
		if a.State != "" && !states[a.State] {
			return fmt.Errorf("activity %q: unknown state %q", a.ID, a.State)
		}
		for _, r := range a.Resources {
			if !resources[r] {
				return fmt.Errorf("activity %q: unknown resource %q", a.ID, r)
			}
		}
	}

	return nil
}

func (p SeedProcess) graph() (*workflow.Graph, error) {
	return workflow.NewGraph(p.ID, p.states(), p.transitions())
}

func (p SeedProcess) states() []workflow.State {
	states := make([]workflow.State, 0, len(p.States))
	for _, s := range p.States {
		states = append(states, workflow.State{ID: s.ID, Name: s.Name})
	}
	return states
}

func (p SeedProcess) transitions() []workflow.Transition {
	ts := make([]workflow.Transition, 0, len(p.Transitions))
	for _, t := range p.Transitions {
		ts = append(ts, workflow.Transition{ID: t.ID, Name: t.Name, FromStateID: t.From, ToStateID: t.To})
	}
	return ts
}

// DefaultSeed returns a small CRM with the default activity process, one user,
// one dashboard and a couple of resources.
func DefaultSeed() *Seed {
	return &Seed{
		User:     SeedUser{Login: "guest", Contact: "contact-guest"},
		Contacts: []SeedContact{{ID: "contact-guest", FirstName: "Guest", LastName: "User"}},
		Creators: []SeedCreator{{ID: "creator-inbox", Name: "Inbox"}},
		Resources: []SeedResource{
			{ID: "resource-guest", Name: "guest", Contact: "contact-guest"},
			{ID: "resource-work", Name: "work"},
			{ID: "resource-home", Name: "home"},
		},
		Process: SeedProcess{
			ID:           "process-default",
			Name:         DefaultProcessName,
			InitialState: "state-new",
			States: []SeedState{
				{ID: "state-new", Name: "New"},
				{ID: "state-in-progress", Name: "In Progress"},
				{ID: "state-complete", Name: "Complete"},
				{ID: "state-closed", Name: "Closed"},
			},
			Transitions: []SeedTransition{
				{ID: "tr-01-assign", Name: "Assign", From: "state-new", To: "state-in-progress"},
				{ID: "tr-02-add-note", Name: "Add Note", From: "state-in-progress", To: "state-in-progress"},
				{ID: "tr-03-complete", Name: "Complete", From: "state-in-progress", To: "state-complete"},
				{ID: "tr-04-close", Name: "Close", From: "state-complete", To: "state-closed"},
				{ID: "tr-05-reopen", Name: "Reopen", From: "state-complete", To: "state-in-progress"},
				{ID: "tr-06-cancel", Name: "Cancel", From: "state-new", To: "state-closed"},
				{ID: "tr-07-revive", Name: "Revive", From: "state-closed", To: "state-in-progress"},
			},
		},
	}
}
