package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/stacklift/stacklift/internal/provision"
)

// CreateSnapshot takes an RDS snapshot of the given instance.
func (c *Client) CreateSnapshot(ctx context.Context, resourceID, snapshotID string) (provision.Snapshot, error) {
	out, err := c.rds.CreateDBSnapshot(ctx, &rds.CreateDBSnapshotInput{
		DBInstanceIdentifier: awssdk.String(resourceID),
		DBSnapshotIdentifier: awssdk.String(snapshotID),
		Tags: []rdstypes.Tag{
			{Key: awssdk.String("managed-by"), Value: awssdk.String("stacklift")},
		},
	})
	if err != nil {
		return provision.Snapshot{}, classify("create snapshot", err)
	}
	return mapSnapshot(out.DBSnapshot), nil
}

// DescribeSnapshot returns the current snapshot status.
func (c *Client) DescribeSnapshot(ctx context.Context, snapshotID string) (provision.Snapshot, error) {
	out, err := c.rds.DescribeDBSnapshots(ctx, &rds.DescribeDBSnapshotsInput{
		DBSnapshotIdentifier: awssdk.String(snapshotID),
	})
	if err != nil {
		var nf *rdstypes.DBSnapshotNotFoundFault
		if errors.As(err, &nf) {
			return provision.Snapshot{}, provision.ErrSnapshotNotFound
		}
		return provision.Snapshot{}, fmt.Errorf("failed to describe snapshot %s: %w", snapshotID, err)
	}
	if len(out.DBSnapshots) == 0 {
		return provision.Snapshot{}, provision.ErrSnapshotNotFound
	}
	return mapSnapshot(&out.DBSnapshots[0]), nil
}

// RestoreFromSnapshot creates a new DB instance from a snapshot. Restore-test
// targets are created without public routing.
func (c *Client) RestoreFromSnapshot(ctx context.Context, snapshotID string, cfg provision.RestoreConfig) (string, error) {
	tags := make([]rdstypes.Tag, 0, len(cfg.Tags))
	for k, v := range cfg.Tags {
		tags = append(tags, rdstypes.Tag{Key: awssdk.String(k), Value: awssdk.String(v)})
	}

	in := &rds.RestoreDBInstanceFromDBSnapshotInput{
		DBInstanceIdentifier: awssdk.String(cfg.TargetID),
		DBSnapshotIdentifier: awssdk.String(snapshotID),
		PubliclyAccessible:   awssdk.Bool(cfg.PubliclyRoutable),
		Tags:                 tags,
	}
	if cfg.InstanceClass != "" {
		in.DBInstanceClass = awssdk.String(cfg.InstanceClass)
	}

	out, err := c.rds.RestoreDBInstanceFromDBSnapshot(ctx, in)
	if err != nil {
		return "", classify("restore from snapshot", err)
	}
	return awssdk.ToString(out.DBInstance.DBInstanceIdentifier), nil
}

// DeleteResource deletes a DB instance without taking a final snapshot. It
// is only ever invoked on restore-test targets; the snapshot manager owns
// the safety filter.
func (c *Client) DeleteResource(ctx context.Context, resourceID string) error {
	_, err := c.rds.DeleteDBInstance(ctx, &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier: awssdk.String(resourceID),
		SkipFinalSnapshot:    awssdk.Bool(true),
	})
	if err != nil {
		return classify("delete resource", err)
	}
	return nil
}

// ListResources lists DB instances whose identifier starts with prefix.
func (c *Client) ListResources(ctx context.Context, prefix string) ([]provision.Resource, error) {
	var resources []provision.Resource
	var marker *string

	for {
		out, err := c.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("failed to list DB instances: %w", err)
		}

		for _, db := range out.DBInstances {
			id := awssdk.ToString(db.DBInstanceIdentifier)
			if !strings.HasPrefix(id, prefix) {
				continue
			}
			tags := make(map[string]string, len(db.TagList))
			for _, t := range db.TagList {
				tags[awssdk.ToString(t.Key)] = awssdk.ToString(t.Value)
			}
			created := time.Time{}
			if db.InstanceCreateTime != nil {
				created = *db.InstanceCreateTime
			}
			resources = append(resources, provision.Resource{
				ID:        id,
				Tags:      tags,
				CreatedAt: created,
			})
		}

		if out.Marker == nil {
			return resources, nil
		}
		marker = out.Marker
	}
}

func mapSnapshot(s *rdstypes.DBSnapshot) provision.Snapshot {
	if s == nil {
		return provision.Snapshot{}
	}
	created := time.Time{}
	if s.SnapshotCreateTime != nil {
		created = *s.SnapshotCreateTime
	}
	return provision.Snapshot{
		ID:               awssdk.ToString(s.DBSnapshotIdentifier),
		SourceResourceID: awssdk.ToString(s.DBInstanceIdentifier),
		Status:           mapSnapshotStatus(awssdk.ToString(s.Status)),
		CreatedAt:        created,
	}
}

// mapSnapshotStatus folds RDS snapshot statuses into the three-valued
// lifecycle the orchestrator understands.
func mapSnapshotStatus(s string) provision.SnapshotStatus {
	switch s {
	case "available":
		return provision.SnapshotAvailable
	case "failed", "error", "invalid":
		return provision.SnapshotFailed
	default:
		return provision.SnapshotCreating
	}
}
