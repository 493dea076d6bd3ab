package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stacklift/stacklift/internal/check"
	"github.com/stacklift/stacklift/internal/lifecycle"
)

// DeployFlags carries the deploy command's flag values.
type DeployFlags struct {
	DryRun      bool
	Force       bool
	KeepData    bool
	Verbose     bool
	RestoreTest bool
	JSON        bool
	WaitTime    time.Duration
	Category    string

	// Stack, Template and ReportDir override the corresponding config
	// values for this run when non-empty.
	Stack     string
	Template  string
	ReportDir string
}

// newOrchestrator creates the lifecycle orchestrator - replaceable in tests.
var newOrchestrator = lifecycle.NewOrchestrator

// Deploy handles the deploy command.
//
// It assembles a run context, drives the orchestrator through the full
// deploy lifecycle and emits the report. The returned error carries the
// run's classification when the run did not succeed; the process exits 1
// in that case and 0 otherwise.
func Deploy(ctx context.Context, configPath, envName string, flags DeployFlags) error {
	cfg, env, client, err := setup(ctx, configPath, envName)
	if err != nil {
		return err
	}

	if flags.Stack != "" {
		cfg.StackName = flags.Stack
	}
	if flags.Template != "" {
		cfg.TemplatePath = flags.Template
	}
	if flags.ReportDir != "" {
		cfg.Report.Dir = flags.ReportDir
	}

	log.Printf("Deploying %s to %s", cfg.StackNameFor(env), env)

	runCtx, err := lifecycle.NewContext(ctx, cfg, env, client, newPrompter(), lifecycle.Options{
		DryRun:      flags.DryRun,
		Force:       flags.Force,
		KeepData:    flags.KeepData,
		Verbose:     flags.Verbose,
		RestoreTest: flags.RestoreTest,
		WaitTime:    flags.WaitTime,
		Category:    check.Category(flags.Category),
	})
	if err != nil {
		return err
	}

	outcome, err := newOrchestrator().Deploy(runCtx)
	if err != nil {
		return err
	}

	if err := emitReport(ctx, cfg, outcome.Report, flags.JSON); err != nil {
		return err
	}

	if outcome.ExitCode() != 0 {
		return fmt.Errorf("deploy %s: %s", outcome.Classification, outcome.Recommendation)
	}
	log.Printf("Deploy of %s finished: %s", runCtx.Handle, outcome.Recommendation)
	return nil
}
