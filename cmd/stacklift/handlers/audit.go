package handlers

import (
	"context"
	"fmt"

	"github.com/stacklift/stacklift/internal/check"
	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/report"
)

// AuditFlags carries the audit command's flag values.
type AuditFlags struct {
	Phase    string
	Category string
	JSON     bool
}

// Audit handles the audit command: run one phase of the check suite
// against the live stack and report, without any mutating call.
func Audit(ctx context.Context, configPath, envName string, flags AuditFlags) error {
	cfg, env, client, err := setup(ctx, configPath, envName)
	if err != nil {
		return err
	}
	spec, err := cfg.Spec(env)
	if err != nil {
		return err
	}

	var phase check.Phase
	switch flags.Phase {
	case "", string(check.PreDeploy):
		phase = check.PreDeploy
	case string(check.PostDeploy):
		phase = check.PostDeploy
	default:
		return fmt.Errorf("unknown phase %q, want %q or %q", flags.Phase, check.PreDeploy, check.PostDeploy)
	}

	handle := provision.StackHandle{
		Name:        cfg.StackNameFor(env),
		Region:      cfg.Region,
		Environment: string(env),
	}

	results, err := check.Defaults(env).RunAll(ctx, phase, check.Category(flags.Category), &check.Context{
		Environment:          env,
		Handle:               handle,
		Client:               client,
		DatabaseID:           cfg.Resources.DatabaseID,
		NetworkID:            cfg.Resources.NetworkID,
		EstimatedMonthlyCost: cfg.EstimatedMonthlyCost,
		BudgetCeiling:        spec.BudgetCeiling,
		Security:             cfg.Security,
		Monitoring:           cfg.Monitoring,
	})
	if err != nil {
		return err
	}

	agg := report.NewAggregator(handle.Name, string(env), phase)
	agg.AddAll(results)
	rep := agg.Finalize()

	if err := emitReport(ctx, cfg, rep, flags.JSON); err != nil {
		return err
	}
	if rep.Blocking() {
		return fmt.Errorf("audit failed: %d of %d checks failed", rep.Failed, rep.Total)
	}
	return nil
}
