// Package tui provides a Bubble Tea-based terminal UI for watching stack
// status.
package tui

import "github.com/stacklift/stacklift/internal/provision"

// StatusMsg carries the latest stack status from the provisioning system.
type StatusMsg struct {
	Status   provision.StackStatus
	NotFound bool
	FetchErr string
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the stack reached a terminal phase.
type DoneMsg struct{}
