// Package poll implements the blocking wait-with-timeout used for stack and
// snapshot status. Polling is the only cancellable part of a run: cancelling
// a poll never cancels the underlying provisioning operation.
package poll

import (
	"context"
	"fmt"
	"time"

	"github.com/stacklift/stacklift/internal/provision"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 30 * time.Second

// TimeoutError is returned when the deadline elapses before a terminal
// phase is observed. It carries the last observed phase so the operator can
// decide what to do next; callers must branch on it explicitly rather than
// treating a timeout as failure.
type TimeoutError struct {
	Handle    provision.StackHandle
	LastPhase provision.Phase
	Waited    time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("stack %s did not reach a terminal phase within %v (last observed: %s)",
		e.Handle, e.Waited.Round(time.Second), e.LastPhase)
}

// Observer receives progress output during long polls.
type Observer interface {
	Printf(format string, v ...interface{})
}

// Poller waits for a stack to reach one of a set of phases.
type Poller struct {
	Client   provision.Client
	Interval time.Duration
	Observer Observer
}

// New creates a poller with the given interval. A zero interval falls back
// to DefaultInterval.
func New(client provision.Client, interval time.Duration, obs Observer) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{Client: client, Interval: interval, Observer: obs}
}

// Await polls the stack status until the phase is a member of terminal or
// timeout elapses. The first describe happens immediately; subsequent ones
// on the configured interval. Cancellation is honored only between polls.
func (p *Poller) Await(ctx context.Context, handle provision.StackHandle, terminal []provision.Phase, timeout time.Duration) (provision.StackStatus, error) {
	deadline := time.Now().Add(timeout)
	lastPhase := provision.PhaseNotFound

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		status, err := p.Client.DescribeStack(ctx, handle)
		if err != nil {
			return provision.StackStatus{}, fmt.Errorf("status poll for %s failed: %w", handle, err)
		}
		lastPhase = status.Phase

		if phaseIn(status.Phase, terminal) {
			return status, nil
		}

		if p.Observer != nil {
			p.Observer.Printf("[poll] %s is %s, waiting...", handle, status.Phase)
		}

		if time.Now().After(deadline) {
			return provision.StackStatus{}, &TimeoutError{
				Handle:    handle,
				LastPhase: lastPhase,
				Waited:    timeout,
			}
		}

		select {
		case <-ctx.Done():
			return provision.StackStatus{}, fmt.Errorf("poll cancelled while %s was %s: %w", handle, lastPhase, ctx.Err())
		case <-ticker.C:
		}
	}
}

// AwaitTerminal waits for any terminal phase.
func (p *Poller) AwaitTerminal(ctx context.Context, handle provision.StackHandle, timeout time.Duration) (provision.StackStatus, error) {
	return p.Await(ctx, handle, allTerminalPhases, timeout)
}

var allTerminalPhases = []provision.Phase{
	provision.PhaseNotFound,
	provision.PhaseCreateComplete, provision.PhaseCreateFailed,
	provision.PhaseUpdateComplete, provision.PhaseUpdateFailed,
	provision.PhaseUpdateRollbackComplete, provision.PhaseUpdateRollbackFailed,
	provision.PhaseDeleteComplete, provision.PhaseDeleteFailed,
}

func phaseIn(p provision.Phase, set []provision.Phase) bool {
	for _, candidate := range set {
		if p == candidate {
			return true
		}
	}
	return false
}

// Until repeatedly evaluates probe on the poller's interval until it reports
// done, an error, or the timeout elapses. It is the same polling discipline
// as Await for non-stack resources (snapshots, restore targets). On timeout
// it returns the zero value and false.
func Until[T any](ctx context.Context, interval, timeout time.Duration, probe func(context.Context) (T, bool, error)) (T, bool, error) {
	var zero T
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := time.Now().Add(timeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		v, done, err := probe(ctx)
		if err != nil {
			return zero, false, err
		}
		if done {
			return v, true, nil
		}
		if time.Now().After(deadline) {
			return zero, false, nil
		}

		select {
		case <-ctx.Done():
			return zero, false, ctx.Err()
		case <-ticker.C:
		}
	}
}
