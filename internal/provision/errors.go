package provision

import (
	"errors"
	"fmt"
)

// ErrSnapshotNotFound is returned by DescribeSnapshot for unknown snapshot
// identifiers.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// TransientError marks a provisioning call that was rejected because another
// operation is already in flight against the same stack or resource. It is
// reported, not retried automatically within the same run.
type TransientError struct {
	Op     string
	Reason string
	Err    error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s rejected, operation already in progress: %s", e.Op, e.Reason)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a rejection for an in-flight operation.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
