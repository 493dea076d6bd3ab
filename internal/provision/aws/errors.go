package aws

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/stacklift/stacklift/internal/provision"
)

// classify wraps API errors, marking in-flight rejections as transient so
// the orchestrator reports them instead of treating them as hard failures.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isOperationInFlight(err) {
		return &provision.TransientError{Op: op, Reason: apiErrorMessage(err), Err: err}
	}
	return err
}

// isStackMissing detects the ValidationError CloudFormation returns for a
// DescribeStacks call on a stack that does not exist.
func isStackMissing(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.ErrorCode() == "ValidationError" &&
		strings.Contains(ae.ErrorMessage(), "does not exist")
}

// isNoChanges detects the update rejection for a template identical to the
// deployed one.
func isNoChanges(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	return strings.Contains(ae.ErrorMessage(), "No updates are to be performed")
}

// isOperationInFlight detects rejections caused by a concurrent operation
// against the same stack or resource.
func isOperationInFlight(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.ErrorCode() {
	case "OperationInProgressException", "ResourceInUseException", "InvalidDBInstanceState":
		return true
	}
	return strings.Contains(ae.ErrorMessage(), "_IN_PROGRESS state")
}

func apiErrorMessage(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorMessage()
	}
	return err.Error()
}
