package naming

import (
	"strings"
	"testing"
	"time"
)

var refTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestSnapshot(t *testing.T) {
	t.Parallel()
	got := Snapshot("orders-db", "final", refTime)
	want := "orders-db-final-20260314-092653"
	if got != want {
		t.Errorf("Snapshot() = %q, want %q", got, want)
	}
}

func TestSnapshot_TimestampIsUTC(t *testing.T) {
	t.Parallel()
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	local := refTime.In(berlin)
	if got, want := Snapshot("db", "x", local), Snapshot("db", "x", refTime); got != want {
		t.Errorf("Snapshot() differs by zone: %q vs %q", got, want)
	}
}

func TestRestoreTestInstance(t *testing.T) {
	t.Parallel()
	got := RestoreTestInstance("orders-db", refTime)
	if !strings.HasPrefix(got, RestoreTestPrefix) {
		t.Errorf("RestoreTestInstance() = %q, missing prefix %q", got, RestoreTestPrefix)
	}
	if !strings.Contains(got, "orders-db") {
		t.Errorf("RestoreTestInstance() = %q, missing source resource", got)
	}
}

func TestRestoreTestInstance_ClampsLongNames(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 100)
	got := RestoreTestInstance(long, refTime)
	if len(got) > 63 {
		t.Errorf("RestoreTestInstance() length = %d, want <= 63", len(got))
	}
	if !strings.HasPrefix(got, RestoreTestPrefix) {
		t.Errorf("clamping lost the prefix: %q", got)
	}
}

func TestIsRestoreTestInstance(t *testing.T) {
	t.Parallel()
	cases := []struct {
		id   string
		want bool
	}{
		{"restoretest-orders-db-20260314-092653", true},
		{"orders-db", false},
		{"orders-restoretest-db", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsRestoreTestInstance(tc.id); got != tc.want {
			t.Errorf("IsRestoreTestInstance(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestTestResourceTags(t *testing.T) {
	t.Parallel()
	tags := TestResourceTags()
	if tags[TagTestResource] != "true" {
		t.Errorf("missing %s tag: %v", TagTestResource, tags)
	}
	if tags[TagPurpose] != "restore-test" {
		t.Errorf("missing %s tag: %v", TagPurpose, tags)
	}
}
