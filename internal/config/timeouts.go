package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval      time.Duration // Interval between stack status polls
	Deploy            time.Duration // Deadline for a deploy to reach a terminal phase
	Delete            time.Duration // Deadline for a delete to reach DELETE_COMPLETE
	Rollback          time.Duration // Deadline for a rollback to reach a terminal phase
	Snapshot          time.Duration // Deadline for a snapshot to become available
	Restore           time.Duration // Deadline for a restore-test target to become available
	RetryMaxAttempts  int           // Maximum number of retry attempts for read calls
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - STACKLIFT_POLL_INTERVAL (default: 30s)
//   - STACKLIFT_TIMEOUT_DEPLOY (default: 30m)
//   - STACKLIFT_TIMEOUT_DELETE (default: 20m)
//   - STACKLIFT_TIMEOUT_ROLLBACK (default: 30m)
//   - STACKLIFT_TIMEOUT_SNAPSHOT (default: 15m)
//   - STACKLIFT_TIMEOUT_RESTORE (default: 25m)
//   - STACKLIFT_RETRY_MAX_ATTEMPTS (default: 5)
//   - STACKLIFT_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:      parseDuration("STACKLIFT_POLL_INTERVAL", 30*time.Second),
		Deploy:            parseDuration("STACKLIFT_TIMEOUT_DEPLOY", 30*time.Minute),
		Delete:            parseDuration("STACKLIFT_TIMEOUT_DELETE", 20*time.Minute),
		Rollback:          parseDuration("STACKLIFT_TIMEOUT_ROLLBACK", 30*time.Minute),
		Snapshot:          parseDuration("STACKLIFT_TIMEOUT_SNAPSHOT", 15*time.Minute),
		Restore:           parseDuration("STACKLIFT_TIMEOUT_RESTORE", 25*time.Minute),
		RetryMaxAttempts:  parseInt("STACKLIFT_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("STACKLIFT_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
