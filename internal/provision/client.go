package provision

import "context"

// Client is the provisioning system consumed by the orchestrator.
//
// Mutating calls (CreateOrUpdateStack, DeleteStack, CancelUpdate,
// ContinueRollback, CreateSnapshot, RestoreFromSnapshot, DeleteResource) are
// issued at most once per run and only after an approval decision has been
// recorded. The provisioning system is the authority on concurrent mutation:
// a rejection because an operation is already in flight surfaces as a
// [TransientError].
type Client interface {
	// DescribeStack returns the current status of the stack. A stack the
	// provisioning system has no record of reports PhaseNotFound rather
	// than an error.
	DescribeStack(ctx context.Context, handle StackHandle) (StackStatus, error)

	// CreateOrUpdateStack issues the create-or-update call for the stack.
	// The call returns once the operation is accepted; completion is
	// observed by polling DescribeStack.
	CreateOrUpdateStack(ctx context.Context, handle StackHandle, templateBody string) error

	// DeleteStack requests deletion of the stack.
	DeleteStack(ctx context.Context, handle StackHandle) error

	// CancelUpdate aborts an update that is currently in flight.
	CancelUpdate(ctx context.Context, handle StackHandle) error

	// ContinueRollback resumes a rollback stuck in UPDATE_ROLLBACK_FAILED
	// or recovers a failed update.
	ContinueRollback(ctx context.Context, handle StackHandle) error

	// CreateSnapshot takes a snapshot of the data-store resource under the
	// given snapshot identifier.
	CreateSnapshot(ctx context.Context, resourceID, snapshotID string) (Snapshot, error)

	// DescribeSnapshot returns the current status of a snapshot.
	DescribeSnapshot(ctx context.Context, snapshotID string) (Snapshot, error)

	// RestoreFromSnapshot creates a new data-store resource from a snapshot
	// and returns its resource identifier.
	RestoreFromSnapshot(ctx context.Context, snapshotID string, cfg RestoreConfig) (string, error)

	// DeleteResource deletes a single data-store resource by identifier.
	DeleteResource(ctx context.Context, resourceID string) error

	// ListResources lists data-store resources whose identifier starts with
	// the given prefix, with their tags and creation time.
	ListResources(ctx context.Context, prefix string) ([]Resource, error)

	// AccountIdentity resolves the account identifier the client is
	// operating against, for the approval gate's cross-check.
	AccountIdentity(ctx context.Context) (string, error)
}
