// Package lifecycle implements the deployment lifecycle orchestrator: the
// state machine that sequences validate, deploy, verify, and rollback or
// cleanup against the provisioning system.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stacklift/stacklift/internal/approval"
	"github.com/stacklift/stacklift/internal/check"
	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/metrics"
	"github.com/stacklift/stacklift/internal/poll"
	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/report"
)

// Orchestrator drives one run through the lifecycle state machine. A run is
// strictly sequential: deploy, then poll, then verify, never overlapped,
// because the provisioning system rejects concurrent mutation of one stack.
type Orchestrator struct {
	state   State
	entered time.Time
}

// NewOrchestrator creates an orchestrator in INIT.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{state: StateInit, entered: time.Now()}
}

// State returns the current machine state.
func (o *Orchestrator) State() State {
	return o.state
}

// enter transitions to the next state, recording how long the previous one
// took.
func (o *Orchestrator) enter(ctx *Context, next State) {
	metrics.ObserveState(string(o.state), time.Since(o.entered))
	o.state = next
	o.entered = time.Now()
	ctx.Observer.Event(Event{
		Type:     EventStateEntered,
		State:    next,
		Message:  fmt.Sprintf("entering %s", next),
		Resource: ctx.Handle.Name,
	})
}

// rollbackTerminal is the phase set a continue-rollback re-polls to.
var rollbackTerminal = []provision.Phase{
	provision.PhaseUpdateRollbackComplete,
	provision.PhaseUpdateRollbackFailed,
}

// deleteTerminal is the phase set a teardown waits for.
var deleteTerminal = []provision.Phase{
	provision.PhaseDeleteComplete,
	provision.PhaseDeleteFailed,
	provision.PhaseNotFound,
}

// Deploy runs the full validate, deploy, verify sequence and returns the
// run outcome. The returned error is reserved for fatal problems before any
// side effect (configuration errors, prompt I/O); once a mutating call has
// been issued every failure is captured in the outcome's report instead,
// because the stack's real state must still be polled and reported.
func (o *Orchestrator) Deploy(ctx *Context) (*Outcome, error) {
	agg := report.NewAggregator(ctx.Handle.Name, string(ctx.Env), check.PreDeploy)

	// INIT -> VALIDATING: pre-deploy checks. A blocking failure stops the
	// run before any mutating call.
	o.enter(ctx, StateValidating)
	preResults, err := o.runChecks(ctx, check.PreDeploy, agg)
	if err != nil {
		return nil, err
	}
	if hasBlockingFailure(preResults) {
		o.enter(ctx, StateDenied)
		agg.Recommend("fix the failing pre-deploy checks and re-run 'stacklift deploy %s'", ctx.Env)
		return o.finish(ctx, agg, ClassBlockedByPolicy, "pre-deploy checks failed"), nil
	}

	if ctx.Options.DryRun {
		o.enter(ctx, StateDone)
		agg.Recommend("dry run: no mutating calls were issued")
		return o.finish(ctx, agg, ClassSuccess, "dry run complete"), nil
	}

	// VALIDATING -> APPROVED | DENIED.
	decision, err := ctx.Gate.Authorize(ctx, approval.ActionDeploy)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		o.enter(ctx, StateDenied)
		ctx.Observer.Event(Event{Type: EventActionDenied, State: StateDenied, Message: decision.Reason})
		agg.Recommend("approval denied: %s", decision.Reason)
		return o.finish(ctx, agg, ClassBlockedByPolicy, decision.Reason), nil
	}
	o.enter(ctx, StateApproved)
	ctx.Observer.Event(Event{Type: EventActionApproved, State: StateApproved, Message: "deploy approved", Fields: map[string]string{"mode": decision.Token.Mode}})

	// Data preservation happens before the stack is touched.
	if ctx.Options.KeepData && ctx.Config.Resources.DatabaseID != "" {
		snapID, err := ctx.Snaps.FinalSnapshot(ctx, ctx.Config.Resources.DatabaseID, true, ctx.Timeouts.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("pre-deploy snapshot failed, stack untouched: %w", err)
		}
		agg.RecordSnapshot(snapID)
	}

	template, err := ctx.Config.LoadTemplate()
	if err != nil {
		return nil, err
	}

	// APPROVED -> DEPLOYING. Re-check the current phase first so a crashed
	// run can be re-invoked without double-issuing the mutating call.
	o.enter(ctx, StateDeploying)
	current, err := ctx.Client.DescribeStack(ctx, ctx.Handle)
	if err != nil {
		return nil, err
	}

	if current.Phase.InProgress() {
		ctx.Observer.Printf("[deploy] %s already has an operation in flight (%s), attaching to poll",
			ctx.Handle, current.Phase)
	} else {
		ctx.Observer.Event(Event{Type: EventMutationIssued, State: StateDeploying, Message: "create-or-update issued", Resource: ctx.Handle.Name})
		if err := ctx.Client.CreateOrUpdateStack(ctx, ctx.Handle, template); err != nil {
			return o.deployCallFailed(ctx, agg, err)
		}
	}

	// DEPLOYING -> POLLING. From here on operator interrupts are deferred:
	// the run must observe a terminal phase before exiting so the stack is
	// never left in an unobserved transitional state.
	o.enter(ctx, StatePolling)
	detached := context.WithoutCancel(ctx.Context)
	status, err := ctx.Poller.AwaitTerminal(detached, ctx.Handle, ctx.DeployDeadline())
	if err != nil {
		return o.pollFailed(ctx, agg, err), nil
	}

	if status.Phase == provision.PhaseUpdateRollbackComplete {
		// The provisioning system rolled the update back on its own.
		o.enter(ctx, StateFailed)
		agg.Recommend("the update failed and was rolled back automatically; investigate the template before re-deploying")
		return o.finish(ctx, agg, ClassAutoRecovered, "rolled back to previous revision"), nil
	}
	if status.Phase.Complete() {
		return o.verify(ctx, agg)
	}
	return o.recover(ctx, agg, status), nil
}

// verify is the POLLING -> VERIFIED leg: post-deploy checks plus the
// optional snapshot restore test.
func (o *Orchestrator) verify(ctx *Context, agg *report.Aggregator) (*Outcome, error) {
	o.enter(ctx, StateVerified)
	agg.SetPhase(check.PostDeploy)

	postResults, err := o.runChecks(ctx, check.PostDeploy, agg)
	if err != nil {
		// The stack is already deployed; a check wiring problem must not
		// masquerade as a healthy run.
		agg.Recommend("post-deploy checks could not run: %v", err)
		return o.finish(ctx, agg, ClassNeedsManual, "verification incomplete"), nil
	}

	if ctx.Options.RestoreTest && ctx.Config.Resources.DatabaseID != "" {
		res := o.restoreTest(ctx, agg)
		agg.Add(res)
		metrics.RecordCheck(string(res.Category), string(res.Outcome))
		postResults = append(postResults, res)
	}

	if hasBlockingFailure(postResults) {
		agg.Recommend("the stack deployed but verification failed; inspect the failing checks before routing traffic")
		return o.finish(ctx, agg, ClassNeedsManual, "post-deploy verification failed"), nil
	}

	o.enter(ctx, StateDone)
	return o.finish(ctx, agg, ClassSuccess, "deploy verified"), nil
}

// restoreTest proves the database snapshot path actually works end to end:
// take a fresh snapshot, wait for it, restore it into a throwaway instance.
func (o *Orchestrator) restoreTest(ctx *Context, agg *report.Aggregator) check.Result {
	fail := func(format string, v ...interface{}) check.Result {
		return check.Result{
			Name:     "restore-test",
			Category: check.CategorySecurity,
			Outcome:  check.Fail,
			Message:  fmt.Sprintf(format, v...),
		}
	}

	snap, err := ctx.Snaps.Create(ctx, ctx.Config.Resources.DatabaseID, "verify")
	if err != nil {
		return fail("snapshot create failed: %v", err)
	}
	snap, err = ctx.Snaps.AwaitAvailable(ctx, snap, ctx.Timeouts.Snapshot)
	if err != nil {
		return fail("snapshot %s never became available: %v", snap.ID, err)
	}
	if agg.SnapshotID() == "" {
		agg.RecordSnapshot(snap.ID)
	}
	return ctx.Snaps.RestoreTest(ctx, snap, ctx.Timeouts.Restore)
}

// recover handles a terminal failed phase after a deploy: DEPLOY_FAILED ->
// ROLLING_BACK when the provisioning system can be steered back to a stable
// state, otherwise the run stops hard and reports for the operator.
func (o *Orchestrator) recover(ctx *Context, agg *report.Aggregator, status provision.StackStatus) *Outcome {
	o.enter(ctx, StateFailed)
	if status.Reason != "" {
		agg.Recommend("deploy failed in %s: %s", status.Phase, status.Reason)
	}

	switch SelectStrategy(status.Phase) {
	case StrategyContinueRollback:
		return o.continueRollback(ctx, agg)
	case StrategyCancelUpdate:
		return o.cancelUpdate(ctx, agg)
	default:
		unsafe := &UnsafeRollbackError{Phase: status.Phase}
		agg.Recommend("%s", unsafe.Error())
		agg.Recommend("inspect the stack events in the console, then re-run or tear down")
		return o.finish(ctx, agg, ClassNeedsManual, fmt.Sprintf("stack is %s", status.Phase))
	}
}

// continueRollback resumes a stuck rollback. Rollback is its own mutating
// action, so it goes through the approval gate like any other.
func (o *Orchestrator) continueRollback(ctx *Context, agg *report.Aggregator) *Outcome {
	decision, err := ctx.Gate.Authorize(ctx, approval.ActionRollback)
	if err != nil || !decision.Granted {
		reason := "approval denied"
		if err != nil {
			reason = err.Error()
		} else if decision.Reason != "" {
			reason = decision.Reason
		}
		agg.Recommend("rollback not approved (%s); run 'stacklift rollback %s' when ready", reason, ctx.Env)
		return o.finish(ctx, agg, ClassBlockedByPolicy, "rollback blocked")
	}

	o.enter(ctx, StateRollingBack)
	ctx.Observer.Event(Event{Type: EventMutationIssued, State: StateRollingBack, Message: "continue-rollback issued", Resource: ctx.Handle.Name})

	detached := context.WithoutCancel(ctx.Context)
	if err := ctx.Client.ContinueRollback(detached, ctx.Handle); err != nil {
		agg.Recommend("continue-rollback call failed: %v", err)
		return o.finish(ctx, agg, ClassNeedsManual, "rollback could not be issued")
	}

	rolled, err := ctx.Poller.Await(detached, ctx.Handle, rollbackTerminal, ctx.Timeouts.Rollback)
	if err != nil {
		return o.pollFailed(ctx, agg, err)
	}
	if rolled.Phase == provision.PhaseUpdateRollbackComplete {
		agg.Recommend("rollback succeeded; the stack is back on its previous revision, investigate the failed template before re-deploying")
		return o.finish(ctx, agg, ClassAutoRecovered, "rolled back to previous revision")
	}
	agg.Recommend("rollback did not complete (stack is %s); continue it manually from the console", rolled.Phase)
	return o.finish(ctx, agg, ClassNeedsManual, "rollback failed")
}

// cancelUpdate aborts an update that raced with another operator, then
// waits for the resulting rollback to settle.
func (o *Orchestrator) cancelUpdate(ctx *Context, agg *report.Aggregator) *Outcome {
	decision, err := ctx.Gate.Authorize(ctx, approval.ActionRollback)
	if err != nil || !decision.Granted {
		agg.Recommend("an update is already in flight and cancelling it was not approved; wait for it to finish and re-run")
		return o.finish(ctx, agg, ClassBlockedByPolicy, "concurrent update left running")
	}

	o.enter(ctx, StateRollingBack)
	ctx.Observer.Event(Event{Type: EventMutationIssued, State: StateRollingBack, Message: "cancel-update issued", Resource: ctx.Handle.Name})

	detached := context.WithoutCancel(ctx.Context)
	if err := ctx.Client.CancelUpdate(detached, ctx.Handle); err != nil {
		agg.Recommend("cancel-update call failed: %v", err)
		return o.finish(ctx, agg, ClassNeedsManual, "cancel-update could not be issued")
	}
	rolled, err := ctx.Poller.Await(detached, ctx.Handle, rollbackTerminal, ctx.Timeouts.Rollback)
	if err != nil {
		return o.pollFailed(ctx, agg, err)
	}
	if rolled.Phase == provision.PhaseUpdateRollbackComplete {
		agg.Recommend("the concurrent update was cancelled and rolled back; coordinate with the other operator before re-deploying")
		return o.finish(ctx, agg, ClassAutoRecovered, "concurrent update cancelled")
	}
	agg.Recommend("cancel-update left the stack in %s; continue the rollback manually", rolled.Phase)
	return o.finish(ctx, agg, ClassNeedsManual, "rollback after cancel failed")
}

// deployCallFailed classifies an error from the create-or-update call. A
// rejection because another operation is in flight is the race the cancel
// strategy exists for; anything else is reported for the operator.
func (o *Orchestrator) deployCallFailed(ctx *Context, agg *report.Aggregator, callErr error) (*Outcome, error) {
	if provision.IsTransient(callErr) {
		status, err := ctx.Client.DescribeStack(ctx, ctx.Handle)
		if err == nil && status.Phase == provision.PhaseUpdateInProgress {
			ctx.Observer.Printf("[deploy] update raced with a concurrent operation on %s", ctx.Handle)
			o.enter(ctx, StateFailed)
			return o.cancelUpdate(ctx, agg), nil
		}
	}
	agg.Recommend("deploy call was rejected: %v", callErr)
	return o.finish(ctx, agg, ClassNeedsManual, "deploy call rejected"), nil
}

// pollFailed turns a polling error into an outcome. Timeouts keep the last
// observed phase so the operator knows what the stack was doing.
func (o *Orchestrator) pollFailed(ctx *Context, agg *report.Aggregator, err error) *Outcome {
	var timeout *poll.TimeoutError
	if errors.As(err, &timeout) {
		agg.Recommend("timed out after %s with the stack still %s; re-run with a larger --wait-time or inspect the console",
			timeout.Waited.Round(time.Second), timeout.LastPhase)
		return o.finish(ctx, agg, ClassNeedsManual, "polling timed out")
	}
	agg.Recommend("polling failed: %v", err)
	return o.finish(ctx, agg, ClassNeedsManual, "polling failed")
}

// Teardown destroys the stack, preserving data per the environment's
// retention policy. Approval comes first so a denied run makes zero calls
// to the provisioning system.
func (o *Orchestrator) Teardown(ctx *Context) (*Outcome, error) {
	agg := report.NewAggregator(ctx.Handle.Name, string(ctx.Env), check.Teardown)

	o.enter(ctx, StateValidating)
	if ctx.Options.DryRun {
		o.enter(ctx, StateDone)
		agg.Recommend("dry run: %s would be deleted, data retention %s", ctx.Handle, ctx.Spec.Retention)
		return o.finish(ctx, agg, ClassSuccess, "dry run complete"), nil
	}

	decision, err := ctx.Gate.Authorize(ctx, approval.ActionDestroy)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		o.enter(ctx, StateDenied)
		ctx.Observer.Event(Event{Type: EventActionDenied, State: StateDenied, Message: decision.Reason})
		agg.Recommend("approval denied: %s", decision.Reason)
		return o.finish(ctx, agg, ClassBlockedByPolicy, decision.Reason), nil
	}
	o.enter(ctx, StateApproved)
	ctx.Observer.Event(Event{Type: EventActionApproved, State: StateApproved, Message: "destroy approved", Fields: map[string]string{"mode": decision.Token.Mode}})

	o.enter(ctx, StateCleaningUp)
	if ctx.Config.Resources.DatabaseID != "" {
		keep := ctx.Options.KeepData || ctx.Spec.Retention == config.RetentionPreserve
		snapID, err := ctx.Snaps.FinalSnapshot(ctx, ctx.Config.Resources.DatabaseID, keep, ctx.Timeouts.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("final snapshot failed, stack untouched: %w", err)
		}
		if snapID != "" {
			agg.RecordSnapshot(snapID)
		}
	}

	ctx.Observer.Event(Event{Type: EventMutationIssued, State: StateCleaningUp, Message: "delete issued", Resource: ctx.Handle.Name})
	detached := context.WithoutCancel(ctx.Context)
	if err := ctx.Client.DeleteStack(detached, ctx.Handle); err != nil {
		agg.Recommend("delete call was rejected: %v", err)
		return o.finish(ctx, agg, ClassNeedsManual, "delete call rejected"), nil
	}

	status, err := ctx.Poller.Await(detached, ctx.Handle, deleteTerminal, ctx.DeleteDeadline())
	if err != nil {
		return o.pollFailed(ctx, agg, err), nil
	}
	if status.Phase == provision.PhaseDeleteFailed {
		agg.Recommend("delete failed: %s; resolve the retained resources in the console and re-run teardown", status.Reason)
		return o.finish(ctx, agg, ClassNeedsManual, "delete failed"), nil
	}

	o.enter(ctx, StateDone)
	return o.finish(ctx, agg, ClassSuccess, "stack deleted"), nil
}

// runChecks executes every registered check for the phase, feeding results
// to the aggregator and metrics as they come in.
func (o *Orchestrator) runChecks(ctx *Context, phase check.Phase, agg *report.Aggregator) ([]check.Result, error) {
	results, err := ctx.Checks.RunAll(ctx, phase, ctx.Options.Category, ctx.CheckContext())
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		metrics.RecordCheck(string(res.Category), string(res.Outcome))
		marker := "ok"
		if res.Outcome != check.Pass {
			marker = string(res.Outcome)
		}
		ctx.Observer.Printf("[check] %-24s %s  %s", res.Name, marker, res.Message)
	}
	agg.AddAll(results)
	return results, nil
}

func hasBlockingFailure(results []check.Result) bool {
	for _, res := range results {
		if res.Outcome == check.Fail {
			return true
		}
	}
	return false
}

// finish finalizes the run's report and emits the outcome. Every path
// through Deploy and Teardown ends here exactly once.
func (o *Orchestrator) finish(ctx *Context, agg *report.Aggregator, class Classification, summary string) *Outcome {
	rep := agg.Finalize()
	metrics.ObserveState(string(o.state), time.Since(o.entered))
	metrics.RecordRun(string(ctx.Env), string(class))
	ctx.Observer.Event(Event{
		Type:    EventRunFinished,
		State:   o.state,
		Message: summary,
		Fields: map[string]string{
			"classification": string(class),
			"successRate":    fmt.Sprintf("%d", rep.SuccessRate),
		},
	})
	return &Outcome{
		Classification: class,
		State:          o.state,
		Report:         rep,
		Recommendation: summary,
	}
}
