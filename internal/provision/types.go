package provision

import "time"

// Phase is a point-in-time stack lifecycle phase reported by the
// provisioning system. The set is closed; the orchestrator branches on
// exact values and treats anything else as a configuration error.
type Phase string

const (
	PhaseNotFound                 Phase = "NOT_FOUND"
	PhaseCreateInProgress         Phase = "CREATE_IN_PROGRESS"
	PhaseCreateComplete           Phase = "CREATE_COMPLETE"
	PhaseCreateFailed             Phase = "CREATE_FAILED"
	PhaseUpdateInProgress         Phase = "UPDATE_IN_PROGRESS"
	PhaseUpdateComplete           Phase = "UPDATE_COMPLETE"
	PhaseUpdateFailed             Phase = "UPDATE_FAILED"
	PhaseUpdateRollbackInProgress Phase = "UPDATE_ROLLBACK_IN_PROGRESS"
	PhaseUpdateRollbackComplete   Phase = "UPDATE_ROLLBACK_COMPLETE"
	PhaseUpdateRollbackFailed     Phase = "UPDATE_ROLLBACK_FAILED"
	PhaseDeleteInProgress         Phase = "DELETE_IN_PROGRESS"
	PhaseDeleteComplete           Phase = "DELETE_COMPLETE"
	PhaseDeleteFailed             Phase = "DELETE_FAILED"
)

// Terminal reports whether the phase is stable, i.e. no further transition
// happens without new operator action.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseCreateComplete, PhaseCreateFailed,
		PhaseUpdateComplete, PhaseUpdateFailed,
		PhaseUpdateRollbackComplete, PhaseUpdateRollbackFailed,
		PhaseDeleteComplete, PhaseDeleteFailed,
		PhaseNotFound:
		return true
	}
	return false
}

// InProgress reports whether an operation is currently in flight.
func (p Phase) InProgress() bool {
	switch p {
	case PhaseCreateInProgress, PhaseUpdateInProgress,
		PhaseUpdateRollbackInProgress, PhaseDeleteInProgress:
		return true
	}
	return false
}

// Complete reports whether the phase is a successful terminal phase.
func (p Phase) Complete() bool {
	switch p {
	case PhaseCreateComplete, PhaseUpdateComplete,
		PhaseUpdateRollbackComplete, PhaseDeleteComplete:
		return true
	}
	return false
}

// Failed reports whether the phase is a failed terminal phase.
func (p Phase) Failed() bool {
	switch p {
	case PhaseCreateFailed, PhaseUpdateFailed,
		PhaseUpdateRollbackFailed, PhaseDeleteFailed:
		return true
	}
	return false
}

// StackHandle identifies one provisioned stack instance. It is created at
// orchestration start, never mutated, and used as the correlation key for
// every subsequent provisioning call.
type StackHandle struct {
	Name        string
	Region      string
	Environment string
}

// String returns the handle in name@region form for log output.
func (h StackHandle) String() string {
	return h.Name + "@" + h.Region
}

// StackStatus is a read-only snapshot of the provisioning system's report
// for a StackHandle. It is refreshed by polling and never cached beyond one
// orchestration step.
type StackStatus struct {
	Phase      Phase
	Reason     string
	ObservedAt time.Time
}

// SnapshotStatus is the lifecycle status of a data-store snapshot.
type SnapshotStatus string

const (
	SnapshotCreating  SnapshotStatus = "creating"
	SnapshotAvailable SnapshotStatus = "available"
	SnapshotFailed    SnapshotStatus = "failed"
)

// Snapshot describes one data-store snapshot. Its lifecycle is independent
// of the stack it was taken from; a snapshot may outlive the stack.
type Snapshot struct {
	ID               string
	SourceResourceID string
	Status           SnapshotStatus
	CreatedAt        time.Time
}

// RestoreConfig describes the target configuration for restoring a snapshot.
// Restore-test targets must be isolated: not publicly routable and tagged as
// ephemeral test resources.
type RestoreConfig struct {
	TargetID         string
	InstanceClass    string
	PubliclyRoutable bool
	Tags             map[string]string
}

// Resource is a provisioned resource as seen by list operations, carrying
// just enough metadata for tag- and age-based garbage collection.
type Resource struct {
	ID        string
	Tags      map[string]string
	CreatedAt time.Time
}
