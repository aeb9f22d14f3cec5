package model

import (
	"strings"
	"time"
)

// Creator is a remote dashboard (activity creator) a task is filed under.
type Creator struct {
	// ID is the numeric key of RemoteID.
	ID       int64
	RemoteID string
	Name     string
}

// Contact is a remote account a task can be assigned to.
type Contact struct {
	// ID is the numeric key of RemoteID.
	ID        int64
	RemoteID  string
	FirstName string
	LastName  string
}

// DisplayName returns the human name of the contact.
func (c Contact) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Resource is a remote labeled resource, resources model tags.
type Resource struct {
	ID        string
	Name      string
	ContactID string
}

// ResourceAssignment links a remote activity with a resource.
type ResourceAssignment struct {
	ResourceID   string
	AssignmentID string
	AssignedAt   *time.Time
}

// User is the remote principal the sync runs as.
type User struct {
	// ID is the numeric key of ContactID.
	ID        int64
	ContactID string
	Login     string
}

// SyncStatus is the persisted state of the synchronization.
type SyncStatus struct {
	LastSuccessAt time.Time
	LastAttemptAt time.Time
	LastError     string
	Ongoing       bool
}

// Preferences are the persisted sync preferences of the account.
type Preferences struct {
	Status SyncStatus
	// PendingResourceID is the resource of the current user, work records are reported with it.
	PendingResourceID string
	UserID            int64
	UserContactID     string
	// DefaultCreatorID is the creator new tasks are filed under when they don't have one.
	DefaultCreatorID int64
}

// StatusReport summarizes the sync state of the local store.
type StatusReport struct {
	Status            SyncStatus
	UserContactID     string
	PendingResourceID string
	Tasks             int
	Synced            int
	// Unsynced are the tasks opted out of sync.
	Unsynced int
	// Pending are the tasks never synced.
	Pending int
}
