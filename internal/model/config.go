package model

import "time"

// RemoteKindFake is the in-memory CRM, the only remote kind without transport.
const RemoteKindFake = "fake"

// Config is the application configuration.
type Config struct {
	RemoteKind string
	// SeedFile is the data file the fake remote starts with, optional.
	SeedFile string
	// PersistSeed writes the fake remote state back to SeedFile.
	PersistSeed bool

	ProcessName       string
	InProgressState   string
	CompleteState     string
	ClosedState       string
	AddNoteTransition string

	// DefaultCreator is the remote ID of the creator new tasks are filed under.
	// NoSyncCreator keeps new tasks local.
	DefaultCreator string
	SyncInterval   time.Duration

	// MetricsTextfile is where sync metrics are written after every pass, optional.
	MetricsTextfile string
}

// NoSyncCreator is the configuration value that opts new tasks out of sync.
const NoSyncCreator = "no-sync"

// DefaultConfig returns the configuration used when there is no configuration file.
func DefaultConfig() Config {
	return Config{
		RemoteKind:        RemoteKindFake,
		ProcessName:       "Bug + feature tracking process",
		InProgressState:   "In Progress",
		CompleteState:     "Complete",
		ClosedState:       "Closed",
		AddNoteTransition: "Add Note",
		SyncInterval:      15 * time.Minute,
	}
}
