package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/stacklift/stacklift/internal/lifecycle"
)

// TeardownFlags carries the teardown command's flag values.
type TeardownFlags struct {
	DryRun   bool
	Force    bool
	KeepData bool
	JSON     bool
	WaitTime time.Duration
}

// Teardown handles the teardown command.
//
// Approval always comes before the final snapshot and the delete call, so
// a denied run leaves the provisioning system completely untouched.
func Teardown(ctx context.Context, configPath, envName string, flags TeardownFlags) error {
	cfg, env, client, err := setup(ctx, configPath, envName)
	if err != nil {
		return err
	}

	log.Printf("Tearing down %s in %s", cfg.StackNameFor(env), env)

	runCtx, err := lifecycle.NewContext(ctx, cfg, env, client, newPrompter(), lifecycle.Options{
		DryRun:   flags.DryRun,
		Force:    flags.Force,
		KeepData: flags.KeepData,
		WaitTime: flags.WaitTime,
	})
	if err != nil {
		return err
	}

	outcome, err := newOrchestrator().Teardown(runCtx)
	if err != nil {
		return err
	}

	if err := emitReport(ctx, cfg, outcome.Report, flags.JSON); err != nil {
		return err
	}

	if outcome.ExitCode() != 0 {
		return fmt.Errorf("teardown %s: %s", outcome.Classification, outcome.Recommendation)
	}
	log.Printf("Teardown of %s finished: %s", runCtx.Handle, outcome.Recommendation)
	return nil
}
