package lifecycle

import (
	"context"
	"log"
	"time"

	"github.com/go-logr/logr/funcr"

	"github.com/stacklift/stacklift/internal/approval"
	"github.com/stacklift/stacklift/internal/check"
	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/metrics"
	"github.com/stacklift/stacklift/internal/poll"
	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/snapshot"
)

// Options are the caller-supplied flags for one run.
type Options struct {
	DryRun      bool
	Force       bool
	KeepData    bool
	Verbose     bool
	RestoreTest bool

	// WaitTime overrides the deploy/delete poll deadline when positive.
	WaitTime time.Duration

	// Category narrows check execution to one category; empty runs all.
	Category check.Category
}

// Context wraps all dependencies and state needed for one orchestration
// run. It is constructed once at run start and passed by reference; no
// component reads process-wide mutable state.
type Context struct {
	context.Context

	Config   *config.Config
	Env      config.Environment
	Spec     config.EnvironmentSpec
	Handle   provision.StackHandle
	Client   provision.Client
	Checks   *check.Registry
	Gate     *approval.Gate
	Snaps    *snapshot.Manager
	Poller   *poll.Poller
	Observer Observer
	Timeouts *config.Timeouts
	Options  Options
}

// NewContext assembles a run context. The environment spec must already be
// resolved; a missing spec is a configuration error handled by the caller.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	env config.Environment,
	client provision.Client,
	prompter approval.Prompter,
	opts Options,
) (*Context, error) {
	spec, err := cfg.Spec(env)
	if err != nil {
		return nil, err
	}

	var observer Observer = NewConsoleObserver()
	if opts.Verbose {
		observer = NewLogrObserver(funcr.New(func(prefix, args string) {
			log.Println(args)
		}, funcr.Options{Verbosity: 1}))
	}
	timeouts := config.LoadTimeouts()

	handle := provision.StackHandle{
		Name:        cfg.StackNameFor(env),
		Region:      cfg.Region,
		Environment: string(env),
	}

	gate := approval.NewGate(env, cfg.ExpectedAccountID, prompter, client.AccountIdentity,
		approval.WithForce(opts.Force))

	poller := poll.New(client, timeouts.PollInterval, &pollObserver{inner: observer, stack: handle.Name})

	return &Context{
		Context:  ctx,
		Config:   cfg,
		Env:      env,
		Spec:     spec,
		Handle:   handle,
		Client:   client,
		Checks:   check.Defaults(env),
		Gate:     gate,
		Snaps:    snapshot.NewManager(client, observer, snapshot.WithPollInterval(timeouts.PollInterval)),
		Poller:   poller,
		Observer: observer,
		Timeouts: timeouts,
		Options:  opts,
	}, nil
}

// CheckContext builds the read-only context handed to checks.
func (c *Context) CheckContext() *check.Context {
	return &check.Context{
		Environment:          c.Env,
		Handle:               c.Handle,
		Client:               c.Client,
		DatabaseID:           c.Config.Resources.DatabaseID,
		NetworkID:            c.Config.Resources.NetworkID,
		EstimatedMonthlyCost: c.Config.EstimatedMonthlyCost,
		BudgetCeiling:        c.Spec.BudgetCeiling,
		Security:             c.Config.Security,
		Monitoring:           c.Config.Monitoring,
	}
}

// DeployDeadline returns the poll deadline for deploy operations, honoring
// the --wait-time override.
func (c *Context) DeployDeadline() time.Duration {
	if c.Options.WaitTime > 0 {
		return c.Options.WaitTime
	}
	return c.Timeouts.Deploy
}

// DeleteDeadline returns the poll deadline for delete operations.
func (c *Context) DeleteDeadline() time.Duration {
	if c.Options.WaitTime > 0 {
		return c.Options.WaitTime
	}
	return c.Timeouts.Delete
}

// pollObserver forwards poll progress to the run observer and counts poll
// cycles.
type pollObserver struct {
	inner Observer
	stack string
}

func (o *pollObserver) Printf(format string, v ...interface{}) {
	metrics.RecordPoll(o.stack)
	o.inner.Printf(format, v...)
}
