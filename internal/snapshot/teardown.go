package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/util/naming"
)

// TeardownTestResources deletes restore-test instances older than the given
// age. The filter is the safety boundary: a resource is only deleted when it
// matches the restore-test naming convention AND carries the test tag AND is
// old enough. Production resources never carry the prefix or the tag, and
// anything tagged production is skipped outright.
func (m *Manager) TeardownTestResources(ctx context.Context, olderThan time.Duration, dryRun bool) ([]string, error) {
	resources, err := m.client.ListResources(ctx, naming.RestoreTestPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list test resources: %w", err)
	}

	cutoff := m.now().Add(-olderThan)
	var removed []string

	for _, res := range resources {
		if !eligibleForTeardown(res, cutoff) {
			continue
		}

		if dryRun {
			m.observer.Printf("[cleanup] would delete %s (created %s)", res.ID, res.CreatedAt.Format(time.RFC3339))
			removed = append(removed, res.ID)
			continue
		}

		m.observer.Printf("[cleanup] deleting %s (created %s)", res.ID, res.CreatedAt.Format(time.RFC3339))
		if err := m.client.DeleteResource(ctx, res.ID); err != nil {
			m.observer.Printf("[cleanup] WARNING: failed to delete %s: %v", res.ID, err)
			continue
		}
		removed = append(removed, res.ID)
	}

	return removed, nil
}

// eligibleForTeardown is the hard safety filter for test-resource GC.
func eligibleForTeardown(res provision.Resource, cutoff time.Time) bool {
	if !naming.IsRestoreTestInstance(res.ID) {
		return false
	}
	if res.Tags[naming.TagTestResource] != "true" {
		return false
	}
	if res.Tags["environment"] == "prod" || res.Tags["production"] == "true" {
		return false
	}
	if res.CreatedAt.IsZero() || res.CreatedAt.After(cutoff) {
		return false
	}
	return true
}
