package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklift/stacklift/internal/provision"
)

// mockRDS implements rdsAPI with function fields.
type mockRDS struct {
	createSnap   func(*rds.CreateDBSnapshotInput) (*rds.CreateDBSnapshotOutput, error)
	describeSnap func(*rds.DescribeDBSnapshotsInput) (*rds.DescribeDBSnapshotsOutput, error)
	restore      func(*rds.RestoreDBInstanceFromDBSnapshotInput) (*rds.RestoreDBInstanceFromDBSnapshotOutput, error)
	deleteInst   func(*rds.DeleteDBInstanceInput) (*rds.DeleteDBInstanceOutput, error)
	describeInst func(*rds.DescribeDBInstancesInput) (*rds.DescribeDBInstancesOutput, error)
}

func (m *mockRDS) CreateDBSnapshot(_ context.Context, in *rds.CreateDBSnapshotInput, _ ...func(*rds.Options)) (*rds.CreateDBSnapshotOutput, error) {
	return m.createSnap(in)
}

func (m *mockRDS) DescribeDBSnapshots(_ context.Context, in *rds.DescribeDBSnapshotsInput, _ ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error) {
	return m.describeSnap(in)
}

func (m *mockRDS) RestoreDBInstanceFromDBSnapshot(_ context.Context, in *rds.RestoreDBInstanceFromDBSnapshotInput, _ ...func(*rds.Options)) (*rds.RestoreDBInstanceFromDBSnapshotOutput, error) {
	return m.restore(in)
}

func (m *mockRDS) DeleteDBInstance(_ context.Context, in *rds.DeleteDBInstanceInput, _ ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error) {
	return m.deleteInst(in)
}

func (m *mockRDS) DescribeDBInstances(_ context.Context, in *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	return m.describeInst(in)
}

func TestCreateSnapshot(t *testing.T) {
	t.Parallel()
	now := time.Now()
	client := &Client{rds: &mockRDS{
		createSnap: func(in *rds.CreateDBSnapshotInput) (*rds.CreateDBSnapshotOutput, error) {
			assert.Equal(t, "orders-db", awssdk.ToString(in.DBInstanceIdentifier))
			assert.Equal(t, "orders-db-verify-1", awssdk.ToString(in.DBSnapshotIdentifier))
			return &rds.CreateDBSnapshotOutput{
				DBSnapshot: &rdstypes.DBSnapshot{
					DBSnapshotIdentifier: in.DBSnapshotIdentifier,
					DBInstanceIdentifier: in.DBInstanceIdentifier,
					Status:               awssdk.String("creating"),
					SnapshotCreateTime:   &now,
				},
			}, nil
		},
	}}

	snap, err := client.CreateSnapshot(context.Background(), "orders-db", "orders-db-verify-1")
	require.NoError(t, err)
	assert.Equal(t, "orders-db-verify-1", snap.ID)
	assert.Equal(t, "orders-db", snap.SourceResourceID)
	assert.Equal(t, provision.SnapshotCreating, snap.Status)
}

func TestDescribeSnapshot_NotFound(t *testing.T) {
	t.Parallel()
	client := &Client{rds: &mockRDS{
		describeSnap: func(*rds.DescribeDBSnapshotsInput) (*rds.DescribeDBSnapshotsOutput, error) {
			return nil, &rdstypes.DBSnapshotNotFoundFault{}
		},
	}}

	_, err := client.DescribeSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, provision.ErrSnapshotNotFound)
}

func TestDescribeSnapshot_EmptyResultIsNotFound(t *testing.T) {
	t.Parallel()
	client := &Client{rds: &mockRDS{
		describeSnap: func(*rds.DescribeDBSnapshotsInput) (*rds.DescribeDBSnapshotsOutput, error) {
			return &rds.DescribeDBSnapshotsOutput{}, nil
		},
	}}

	_, err := client.DescribeSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, provision.ErrSnapshotNotFound)
}

func TestRestoreFromSnapshot(t *testing.T) {
	t.Parallel()
	client := &Client{rds: &mockRDS{
		restore: func(in *rds.RestoreDBInstanceFromDBSnapshotInput) (*rds.RestoreDBInstanceFromDBSnapshotOutput, error) {
			assert.False(t, awssdk.ToBool(in.PubliclyAccessible), "restore targets must never be public")
			assert.Equal(t, "snap-1", awssdk.ToString(in.DBSnapshotIdentifier))
			return &rds.RestoreDBInstanceFromDBSnapshotOutput{
				DBInstance: &rdstypes.DBInstance{DBInstanceIdentifier: in.DBInstanceIdentifier},
			}, nil
		},
	}}

	id, err := client.RestoreFromSnapshot(context.Background(), "snap-1", provision.RestoreConfig{
		TargetID: "orders-db-restore-test-1",
		Tags:     map[string]string{"stacklift:test": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, "orders-db-restore-test-1", id)
}

func TestDeleteResource_SkipsFinalSnapshot(t *testing.T) {
	t.Parallel()
	client := &Client{rds: &mockRDS{
		deleteInst: func(in *rds.DeleteDBInstanceInput) (*rds.DeleteDBInstanceOutput, error) {
			assert.True(t, awssdk.ToBool(in.SkipFinalSnapshot))
			return &rds.DeleteDBInstanceOutput{}, nil
		},
	}}

	assert.NoError(t, client.DeleteResource(context.Background(), "orders-db-restore-test-1"))
}

func TestListResources_FiltersAndPaginates(t *testing.T) {
	t.Parallel()
	now := time.Now()
	pages := 0
	client := &Client{rds: &mockRDS{
		describeInst: func(in *rds.DescribeDBInstancesInput) (*rds.DescribeDBInstancesOutput, error) {
			pages++
			if pages == 1 {
				assert.Nil(t, in.Marker)
				return &rds.DescribeDBInstancesOutput{
					DBInstances: []rdstypes.DBInstance{
						{DBInstanceIdentifier: awssdk.String("orders-db-restore-test-1"), InstanceCreateTime: &now},
						{DBInstanceIdentifier: awssdk.String("unrelated-db")},
					},
					Marker: awssdk.String("page-2"),
				}, nil
			}
			assert.Equal(t, "page-2", awssdk.ToString(in.Marker))
			return &rds.DescribeDBInstancesOutput{
				DBInstances: []rdstypes.DBInstance{
					{
						DBInstanceIdentifier: awssdk.String("orders-db-restore-test-2"),
						TagList: []rdstypes.Tag{
							{Key: awssdk.String("stacklift:test"), Value: awssdk.String("true")},
						},
					},
				},
			}, nil
		},
	}}

	resources, err := client.ListResources(context.Background(), "orders-db-restore-test")
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "orders-db-restore-test-1", resources[0].ID)
	assert.Equal(t, now, resources[0].CreatedAt)
	assert.Equal(t, "true", resources[1].Tags["stacklift:test"])
	assert.Equal(t, 2, pages)
}

func TestListResources_ErrorSurfaces(t *testing.T) {
	t.Parallel()
	client := &Client{rds: &mockRDS{
		describeInst: func(*rds.DescribeDBInstancesInput) (*rds.DescribeDBInstancesOutput, error) {
			return nil, errors.New("throttled")
		},
	}}

	_, err := client.ListResources(context.Background(), "orders")
	assert.Error(t, err)
}

func TestMapSnapshotStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want provision.SnapshotStatus
	}{
		{"available", provision.SnapshotAvailable},
		{"failed", provision.SnapshotFailed},
		{"error", provision.SnapshotFailed},
		{"invalid", provision.SnapshotFailed},
		{"creating", provision.SnapshotCreating},
		{"pending", provision.SnapshotCreating},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapSnapshotStatus(tt.in), "status %q", tt.in)
	}
}
