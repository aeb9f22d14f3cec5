package model

import (
	"math"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	// CreatorNoSync is the creator (dashboard) sentinel for tasks that opted out of sync.
	CreatorNoSync int64 = -1
	// UnsyncedActivityKey is the reserved activity key for tasks that are tracked locally only.
	UnsyncedActivityKey int64 = 1
)

// RemoteMetadata is the remote tracking information of a task.
type RemoteMetadata struct {
	// ActivityID is the remote activity id, empty when the task was never synced.
	ActivityID string
	// ActivityKey is the numeric secondary key of ActivityID (see HashID).
	ActivityKey int64
	StateID     string
	CreatorID   int64
	AssigneeID  int64
}

// Synced returns true if the task has a remote counterpart.
func (m RemoteMetadata) Synced() bool { return m.ActivityID != "" }

// OptedOut returns true if the task should not be synced.
func (m RemoteMetadata) OptedOut() bool { return m.CreatorID == CreatorNoSync }

// Unsynced returns true if the task was marked as locally untracked.
func (m RemoteMetadata) Unsynced() bool { return m.ActivityKey == UnsyncedActivityKey }

// Syncable is the capability every synchronized item has, regardless of where it
// was read from.
type Syncable interface {
	MatchKey() string
	LifecycleState() Lifecycle
	ModificationTime() time.Time
}

// Container pairs a task with its remote tracking metadata, its tags and
// optionally the raw remote payload it was built from.
type Container[R any] struct {
	Task   Task
	Remote RemoteMetadata
	Tags   []string
	Raw    *R
}

// MatchKey satisfies Syncable.
func (c Container[R]) MatchKey() string { return c.Remote.ActivityID }

// LifecycleState satisfies Syncable.
func (c Container[R]) LifecycleState() Lifecycle { return c.Task.Lifecycle() }

// ModificationTime satisfies Syncable.
func (c Container[R]) ModificationTime() time.Time { return c.Task.ModifiedAt }

// ModifiedAfter returns true if the container was modified after other.
func (c Container[R]) ModifiedAfter(other Syncable) bool {
	return c.ModificationTime().After(other.ModificationTime())
}

// TagSet returns the tags as a set.
func (c Container[R]) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		set[t] = struct{}{}
	}
	return set
}

// RawActivity is the plain data record the remote gateway parsed an activity from.
type RawActivity map[string]string

// TaskContainer is the container used by the synchronization engine.
type TaskContainer = Container[RawActivity]

// IndexByMatchKey indexes syncable items by their match key, items without key are ignored.
func IndexByMatchKey[S Syncable](items []S) map[string]S {
	idx := make(map[string]S, len(items))
	for _, it := range items {
		if k := it.MatchKey(); k != "" {
			idx[k] = it
		}
	}
	return idx
}

// HashID returns the positive numeric key for a remote string id. 0 is
// returned for empty ids and the reserved UnsyncedActivityKey is never returned.
func HashID(remoteID string) int64 {
	if remoteID == "" {
		return 0
	}

	k := int64(xxhash.Sum64String(remoteID) & math.MaxInt64)
	if k == 0 || k == UnsyncedActivityKey {
		return math.MaxInt64
	}
	return k
}

// NormalizeTags returns the sorted unique non empty tags.
func NormalizeTags(tags []string) []string {
	set := map[string]struct{}{}
	for _, t := range tags {
		if t != "" {
			set[t] = struct{}{}
		}
	}

	res := make([]string, 0, len(set))
	for t := range set {
		res = append(res, t)
	}
	sort.Strings(res)
	return res
}
