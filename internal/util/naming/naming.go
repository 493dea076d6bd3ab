// Package naming provides consistent naming functions for snapshots and
// restore-test resources.
//
// Snapshot identifiers follow {resource}-{purpose}-{timestamp} so repeated
// runs stay traceable and old snapshots can be garbage collected by prefix
// and age. Restore-test instances carry a fixed prefix that the teardown
// filter matches on; production resources never receive that prefix.
package naming

import (
	"fmt"
	"strings"
	"time"
)

// RestoreTestPrefix marks throwaway instances created only to prove a
// snapshot restores. Teardown only ever matches this prefix.
const RestoreTestPrefix = "restoretest-"

// TagTestResource marks ephemeral test resources; teardown requires it.
const TagTestResource = "stacklift-test"

// TagPurpose records why a resource or snapshot was created.
const TagPurpose = "stacklift-purpose"

// timestampLayout keeps identifiers sortable and free of characters the
// provisioning systems reject.
const timestampLayout = "20060102-150405"

// Snapshot returns the deterministic snapshot identifier for a resource,
// purpose, and creation time.
func Snapshot(resourceID, purpose string, t time.Time) string {
	return fmt.Sprintf("%s-%s-%s", resourceID, purpose, t.UTC().Format(timestampLayout))
}

// RestoreTestInstance returns the identifier for a restore-test target
// created from the given source resource.
func RestoreTestInstance(resourceID string, t time.Time) string {
	return clamp(fmt.Sprintf("%s%s-%s", RestoreTestPrefix, resourceID, t.UTC().Format(timestampLayout)), 63)
}

// IsRestoreTestInstance reports whether an identifier follows the
// restore-test naming convention.
func IsRestoreTestInstance(id string) bool {
	return strings.HasPrefix(id, RestoreTestPrefix)
}

// TestResourceTags returns the tag set every restore-test resource carries.
func TestResourceTags() map[string]string {
	return map[string]string{
		TagTestResource: "true",
		TagPurpose:      "restore-test",
	}
}

// clamp shortens identifiers that exceed the provider limit while keeping
// the prefix intact.
func clamp(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
