// Package snapshot manages data-store snapshot lifecycles: creation,
// availability polling, optional restore testing, and garbage collection of
// restore-test resources.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/stacklift/stacklift/internal/check"
	"github.com/stacklift/stacklift/internal/poll"
	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/util/naming"
)

// TimeoutError is returned when a snapshot does not become available before
// the deadline. It carries the last observed status so the operator can tell
// a stuck creation from a slow one; the same contract the stack poller keeps.
type TimeoutError struct {
	SnapshotID string
	LastStatus provision.SnapshotStatus
	Waited     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("snapshot %s not available within %v (last observed: %s)",
		e.SnapshotID, e.Waited, e.LastStatus)
}

// Observer receives progress output during snapshot operations.
type Observer interface {
	Printf(format string, v ...interface{})
}

// Manager drives snapshot operations against the provisioning system.
type Manager struct {
	client   provision.Client
	observer Observer
	interval time.Duration
	now      func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock replaces the clock (used in tests for deterministic IDs).
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithPollInterval sets the snapshot status poll interval.
func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.interval = d }
}

// NewManager creates a snapshot manager.
func NewManager(client provision.Client, observer Observer, opts ...ManagerOption) *Manager {
	m := &Manager{
		client:   client,
		observer: observer,
		interval: poll.DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create takes a snapshot of the resource under a deterministic identifier
// derived from resource, purpose, and timestamp.
func (m *Manager) Create(ctx context.Context, resourceID, purpose string) (provision.Snapshot, error) {
	id := naming.Snapshot(resourceID, purpose, m.now())
	m.observer.Printf("[snapshot] creating %s from %s", id, resourceID)

	snap, err := m.client.CreateSnapshot(ctx, resourceID, id)
	if err != nil {
		return provision.Snapshot{}, fmt.Errorf("failed to create snapshot %s: %w", id, err)
	}
	return snap, nil
}

// AwaitAvailable polls the snapshot until it is available, failed, or the
// timeout elapses. The polling discipline matches the stack poller:
// cancellation only between polls, timeout surfaced distinctly.
func (m *Manager) AwaitAvailable(ctx context.Context, snap provision.Snapshot, timeout time.Duration) (provision.Snapshot, error) {
	lastStatus := snap.Status
	result, done, err := poll.Until(ctx, m.interval, timeout, func(ctx context.Context) (provision.Snapshot, bool, error) {
		current, err := m.client.DescribeSnapshot(ctx, snap.ID)
		if err != nil {
			return provision.Snapshot{}, false, err
		}
		lastStatus = current.Status
		switch current.Status {
		case provision.SnapshotAvailable:
			return current, true, nil
		case provision.SnapshotFailed:
			return provision.Snapshot{}, false, fmt.Errorf("snapshot %s failed", snap.ID)
		default:
			m.observer.Printf("[snapshot] %s is %s, waiting...", snap.ID, current.Status)
			return provision.Snapshot{}, false, nil
		}
	})
	if err != nil {
		return provision.Snapshot{}, err
	}
	if !done {
		return provision.Snapshot{}, &TimeoutError{SnapshotID: snap.ID, LastStatus: lastStatus, Waited: timeout}
	}
	return result, nil
}

// RestoreTest proves the snapshot restores: it creates an isolated
// throwaway instance from it, waits for availability, performs a trivial
// read, and tears the instance down before returning. The outcome is a
// check result, never an error: a failed restore test is a reportable
// finding, not a crash. The test instance never survives the run.
func (m *Manager) RestoreTest(ctx context.Context, snap provision.Snapshot, timeout time.Duration) check.Result {
	result := check.Result{Name: "restore-test", Category: check.CategorySecurity}

	targetID := naming.RestoreTestInstance(snap.SourceResourceID, m.now())
	m.observer.Printf("[snapshot] restore test: creating %s from %s", targetID, snap.ID)

	restoredID, err := m.client.RestoreFromSnapshot(ctx, snap.ID, provision.RestoreConfig{
		TargetID:         targetID,
		PubliclyRoutable: false,
		Tags:             naming.TestResourceTags(),
	})
	if err != nil {
		result.Outcome = check.Fail
		result.Message = fmt.Sprintf("restore from %s failed: %v", snap.ID, err)
		return result
	}

	// The restore call mutated the provisioning system. From here on
	// operator interrupts are deferred: the leg runs to its own terminal
	// observation and the teardown below must still reach the provisioning
	// system, or the test instance would outlive the run.
	ctx = context.WithoutCancel(ctx)

	// The test instance must not survive the run, whatever happens below.
	defer func() {
		m.observer.Printf("[snapshot] restore test: deleting %s", restoredID)
		if err := m.client.DeleteResource(ctx, restoredID); err != nil {
			m.observer.Printf("[snapshot] WARNING: failed to delete restore-test instance %s: %v", restoredID, err)
		}
	}()

	available, err := m.awaitResource(ctx, restoredID, timeout)
	if err != nil {
		result.Outcome = check.Fail
		result.Message = fmt.Sprintf("restore target %s: %v", restoredID, err)
		return result
	}
	if !available {
		result.Outcome = check.Fail
		result.Message = fmt.Sprintf("restore target %s not available within %v", restoredID, timeout)
		return result
	}

	result.Outcome = check.Pass
	result.Message = fmt.Sprintf("snapshot %s restored and readable", snap.ID)
	return result
}

// awaitResource polls until the restored resource is listable. Listing the
// resource back is the trivial health read the restore test requires.
func (m *Manager) awaitResource(ctx context.Context, resourceID string, timeout time.Duration) (bool, error) {
	_, done, err := poll.Until(ctx, m.interval, timeout, func(ctx context.Context) (provision.Resource, bool, error) {
		resources, err := m.client.ListResources(ctx, resourceID)
		if err != nil {
			return provision.Resource{}, false, err
		}
		for _, r := range resources {
			if r.ID == resourceID {
				return r, true, nil
			}
		}
		return provision.Resource{}, false, nil
	})
	return done, err
}

// FinalSnapshot implements the data-preservation policy: when keepData is
// set it takes a snapshot before any destructive action and returns its
// identifier; when not, the skip is an explicit, logged decision.
func (m *Manager) FinalSnapshot(ctx context.Context, resourceID string, keepData bool, timeout time.Duration) (string, error) {
	if !keepData {
		m.observer.Printf("[snapshot] data preservation not requested, skipping final snapshot of %s", resourceID)
		return "", nil
	}

	snap, err := m.Create(ctx, resourceID, "final")
	if err != nil {
		return "", err
	}
	snap, err = m.AwaitAvailable(ctx, snap, timeout)
	if err != nil {
		return "", err
	}
	m.observer.Printf("[snapshot] final snapshot %s is available", snap.ID)
	return snap.ID, nil
}
