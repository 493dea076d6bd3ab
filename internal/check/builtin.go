package check

import (
	"context"

	"github.com/stacklift/stacklift/internal/config"
)

// Defaults returns a registry populated with the built-in checks for the
// given environment. The cost check is advisory in dev and blocking
// elsewhere; everything marked blocking halts a deploy when it fails.
func Defaults(env config.Environment) *Registry {
	r := NewRegistry()

	costSeverity := Blocking
	if env == config.EnvDev {
		costSeverity = Advisory
	}

	r.Register(Check{
		Name:     "stack-reachable",
		Category: CategoryConnectivity,
		Phases:   []Phase{PreDeploy, PostDeploy},
		Severity: Blocking,
		Run:      stackReachable,
	})
	r.Register(Check{
		// Advisory: an operation in flight usually means a crashed run to
		// re-attach to, and the deploy path re-checks the phase before
		// issuing anything.
		Name:     "stack-stable",
		Category: CategoryConnectivity,
		Phases:   []Phase{PreDeploy},
		Severity: Advisory,
		Run:      stackStable,
	})
	r.Register(Check{
		Name:     "database-resolvable",
		Category: CategoryConnectivity,
		Phases:   []Phase{PostDeploy},
		Severity: Blocking,
		Run:      databaseResolvable,
	})
	r.Register(Check{
		Name:     "no-public-access",
		Category: CategorySecurity,
		Phases:   []Phase{PreDeploy, PostDeploy},
		Severity: Blocking,
		Run:      noPublicAccess,
	})
	r.Register(Check{
		Name:     "encryption-at-rest",
		Category: CategoryEncryption,
		Phases:   []Phase{PreDeploy, PostDeploy},
		Severity: Blocking,
		Run:      encryptionAtRest,
	})
	r.Register(Check{
		Name:     "tls-enforced",
		Category: CategoryEncryption,
		Phases:   []Phase{PreDeploy},
		Severity: Advisory,
		Run:      tlsEnforced,
	})
	r.Register(Check{
		Name:     "budget-ceiling",
		Category: CategoryCost,
		Phases:   []Phase{PreDeploy},
		Severity: costSeverity,
		Run:      budgetCeiling,
	})
	r.Register(Check{
		Name:     "alarms-configured",
		Category: CategoryMonitoring,
		Phases:   []Phase{PostDeploy},
		Severity: Advisory,
		Run:      alarmsConfigured,
	})
	r.Register(Check{
		Name:     "log-retention",
		Category: CategoryMonitoring,
		Phases:   []Phase{PreDeploy, PostDeploy},
		Severity: Advisory,
		Run:      logRetention,
	})

	return r
}

// stackReachable verifies the provisioning system answers for the handle.
// Before the first deploy NOT_FOUND is a valid answer; the point is that
// the API is reachable and the caller is authorized.
func stackReachable(ctx context.Context, cc *Context) Result {
	status, err := cc.Client.DescribeStack(ctx, cc.Handle)
	if err != nil {
		return fail("describe %s failed: %v", cc.Handle, err)
	}
	return pass("stack %s reports %s", cc.Handle, status.Phase)
}

// stackStable refuses to deploy over an operation already in flight.
func stackStable(ctx context.Context, cc *Context) Result {
	status, err := cc.Client.DescribeStack(ctx, cc.Handle)
	if err != nil {
		return fail("describe %s failed: %v", cc.Handle, err)
	}
	if status.Phase.InProgress() {
		return fail("stack %s has an operation in flight (%s)", cc.Handle, status.Phase)
	}
	return pass("no operation in flight")
}

// databaseResolvable verifies the configured data store exists after deploy.
func databaseResolvable(ctx context.Context, cc *Context) Result {
	if cc.DatabaseID == "" {
		return warn("no database configured, skipping")
	}
	resources, err := cc.Client.ListResources(ctx, cc.DatabaseID)
	if err != nil {
		return fail("listing %s failed: %v", cc.DatabaseID, err)
	}
	for _, res := range resources {
		if res.ID == cc.DatabaseID {
			return pass("database %s resolved", cc.DatabaseID)
		}
	}
	return fail("database %s not found", cc.DatabaseID)
}

func noPublicAccess(_ context.Context, cc *Context) Result {
	if cc.Security.PublicAccess {
		if cc.Environment == config.EnvDev {
			return warn("public access enabled (tolerated in dev)")
		}
		return fail("public access is enabled for %s", cc.Environment)
	}
	return pass("public access disabled")
}

func encryptionAtRest(_ context.Context, cc *Context) Result {
	if !cc.Security.EncryptionAtRest {
		return fail("encryption at rest is not enabled")
	}
	return pass("encryption at rest enabled")
}

func tlsEnforced(_ context.Context, cc *Context) Result {
	if !cc.Security.EnforceTLS {
		return fail("in-transit encryption is not enforced")
	}
	return pass("TLS enforced")
}

// budgetCeiling compares the estimated monthly cost against the tier budget.
func budgetCeiling(_ context.Context, cc *Context) Result {
	if cc.BudgetCeiling <= 0 {
		return warn("no budget ceiling configured for %s", cc.Environment)
	}
	if cc.EstimatedMonthlyCost > cc.BudgetCeiling {
		return fail("estimated %.2f/month exceeds %s ceiling of %.2f",
			cc.EstimatedMonthlyCost, cc.Environment, cc.BudgetCeiling)
	}
	return pass("estimated %.2f/month within ceiling %.2f", cc.EstimatedMonthlyCost, cc.BudgetCeiling)
}

func alarmsConfigured(_ context.Context, cc *Context) Result {
	if !cc.Monitoring.AlarmsRequired {
		return warn("alarms not required by configuration")
	}
	return pass("alarm requirements declared")
}

func logRetention(_ context.Context, cc *Context) Result {
	if cc.Monitoring.LogRetentionDays <= 0 {
		return fail("log retention is not configured")
	}
	if cc.Environment == config.EnvProd && cc.Monitoring.LogRetentionDays < 90 {
		return fail("prod log retention %d days is below the 90 day minimum", cc.Monitoring.LogRetentionDays)
	}
	return pass("log retention %d days", cc.Monitoring.LogRetentionDays)
}
