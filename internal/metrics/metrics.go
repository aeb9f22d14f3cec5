package metrics

import "time"

// Task operations recorded by the sync.
const (
	TaskOpCreated  = "created"
	TaskOpPushed   = "pushed"
	TaskOpPulled   = "pulled"
	TaskOpDeleted  = "deleted"
	TaskOpUnsynced = "unsynced"
	TaskOpRollback = "rollback"
	TaskOpSkipped  = "skipped"
)

// Recorder records the sync metrics.
type Recorder interface {
	// ObservePass records a finished sync pass.
	ObservePass(result string, duration time.Duration)
	// IncTask records an operation applied to a task.
	IncTask(op string)
	// IncTransition records a remote workflow transition execution.
	IncTransition(transition string)
	// IncReconciliation records the decision taken for a stale local task.
	IncReconciliation(decision string)
}

// Noop is a recorder that doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) ObservePass(string, time.Duration) {}
func (noop) IncTask(string)                    {}
func (noop) IncTransition(string)              {}
func (noop) IncReconciliation(string)          {}
