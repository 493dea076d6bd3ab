// Package provisiontest provides a configurable in-memory provisioning
// client for tests.
package provisiontest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stacklift/stacklift/internal/provision"
)

// FakeClient implements provision.Client with scriptable behavior and call
// recording. The zero value reports every stack as NOT_FOUND and every
// snapshot as creating.
//
// Statuses is consumed one entry per DescribeStack call; the last entry
// repeats once the script runs out, so a poller settles on it. Function
// fields override the default behavior per call when set.
type FakeClient struct {
	mu sync.Mutex

	Statuses []provision.StackStatus
	statusIx int

	Account string

	Snapshots map[string]provision.Snapshot
	Resources []provision.Resource

	CreateOrUpdateErr error
	DeleteErr         error
	CancelErr         error
	ContinueErr       error
	RestoreErr        error

	CreateOrUpdateFn func(handle provision.StackHandle, template string) error
	AccountFn        func(ctx context.Context) (string, error)

	Calls []string
}

var _ provision.Client = (*FakeClient)(nil)

func (f *FakeClient) record(call string) {
	f.Calls = append(f.Calls, call)
}

// CallsTo returns how many recorded calls start with the given name.
func (f *FakeClient) CallsTo(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if len(c) >= len(name) && c[:len(name)] == name {
			n++
		}
	}
	return n
}

func (f *FakeClient) DescribeStack(_ context.Context, handle provision.StackHandle) (provision.StackStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DescribeStack " + handle.Name)
	if len(f.Statuses) == 0 {
		return provision.StackStatus{Phase: provision.PhaseNotFound, ObservedAt: time.Now()}, nil
	}
	st := f.Statuses[f.statusIx]
	if f.statusIx < len(f.Statuses)-1 {
		f.statusIx++
	}
	if st.ObservedAt.IsZero() {
		st.ObservedAt = time.Now()
	}
	return st, nil
}

func (f *FakeClient) CreateOrUpdateStack(_ context.Context, handle provision.StackHandle, template string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateOrUpdateStack " + handle.Name)
	if f.CreateOrUpdateFn != nil {
		return f.CreateOrUpdateFn(handle, template)
	}
	return f.CreateOrUpdateErr
}

func (f *FakeClient) DeleteStack(_ context.Context, handle provision.StackHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteStack " + handle.Name)
	return f.DeleteErr
}

func (f *FakeClient) CancelUpdate(_ context.Context, handle provision.StackHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CancelUpdate " + handle.Name)
	return f.CancelErr
}

func (f *FakeClient) ContinueRollback(_ context.Context, handle provision.StackHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ContinueRollback " + handle.Name)
	return f.ContinueErr
}

func (f *FakeClient) CreateSnapshot(_ context.Context, resourceID, snapshotID string) (provision.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateSnapshot " + snapshotID)
	snap := provision.Snapshot{
		ID:               snapshotID,
		SourceResourceID: resourceID,
		Status:           provision.SnapshotAvailable,
		CreatedAt:        time.Now(),
	}
	if f.Snapshots == nil {
		f.Snapshots = map[string]provision.Snapshot{}
	}
	f.Snapshots[snapshotID] = snap
	return snap, nil
}

func (f *FakeClient) DescribeSnapshot(_ context.Context, snapshotID string) (provision.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DescribeSnapshot " + snapshotID)
	snap, ok := f.Snapshots[snapshotID]
	if !ok {
		return provision.Snapshot{}, provision.ErrSnapshotNotFound
	}
	return snap, nil
}

func (f *FakeClient) RestoreFromSnapshot(_ context.Context, snapshotID string, cfg provision.RestoreConfig) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RestoreFromSnapshot " + snapshotID)
	if f.RestoreErr != nil {
		return "", f.RestoreErr
	}
	f.Resources = append(f.Resources, provision.Resource{
		ID:        cfg.TargetID,
		Tags:      cfg.Tags,
		CreatedAt: time.Now(),
	})
	return cfg.TargetID, nil
}

func (f *FakeClient) DeleteResource(_ context.Context, resourceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteResource " + resourceID)
	for i, res := range f.Resources {
		if res.ID == resourceID {
			f.Resources = append(f.Resources[:i], f.Resources[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("resource %s not found", resourceID)
}

func (f *FakeClient) ListResources(_ context.Context, prefix string) ([]provision.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListResources " + prefix)
	var out []provision.Resource
	for _, res := range f.Resources {
		if len(res.ID) >= len(prefix) && res.ID[:len(prefix)] == prefix {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *FakeClient) AccountIdentity(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AccountIdentity")
	if f.AccountFn != nil {
		return f.AccountFn(ctx)
	}
	if f.Account == "" {
		return "000000000000", nil
	}
	return f.Account, nil
}
