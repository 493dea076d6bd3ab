// Package approval decides what confirmation a mutating action requires per
// environment tier and records the decision as an in-memory token.
//
// Denial is a first-class result, not an error: callers check the decision
// and abort gracefully, leaving the stack untouched.
package approval

import (
	"time"

	"github.com/stacklift/stacklift/internal/config"
)

// Action is the kind of mutating action being gated.
type Action string

const (
	ActionDeploy   Action = "deploy"
	ActionRollback Action = "rollback"
	ActionDestroy  Action = "destroy"
)

// Policy describes the confirmation steps one environment tier requires.
// Policies are resolved once from the table below, never re-branched on the
// environment name at call sites.
type Policy struct {
	// AutoApprove grants non-destroy actions without any interactive step.
	AutoApprove bool

	// ConfirmEach requires a yes/no confirmation for every action kind.
	ConfirmEach bool

	// Phrases maps an action to the confirmation phrase the operator must
	// type. Actions absent from the map need no typed phrase.
	Phrases map[Action]string

	// IdentityCheck requires the resolved account identifier to be
	// affirmed against the expected one before any action.
	IdentityCheck bool

	// DestroyConfirmsAccount additionally requires typing the resolved
	// account identifier itself before a destroy.
	DestroyConfirmsAccount bool

	// DestroyCountdown delays destroy execution after approval.
	DestroyCountdown time.Duration

	// ForceBypass allows --force to skip prompts for non-destroy actions.
	ForceBypass bool
}

// policies is the per-tier policy table. Destroy is never force-bypassed
// and prod is never auto-approved.
var policies = map[config.Environment]Policy{
	config.EnvDev: {
		AutoApprove: true,
		Phrases: map[Action]string{
			ActionDestroy: "destroy",
		},
		ForceBypass: true,
	},
	config.EnvStaging: {
		ConfirmEach: true,
		Phrases: map[Action]string{
			ActionDestroy: "destroy staging",
		},
		ForceBypass: true,
	},
	config.EnvProd: {
		ConfirmEach: true,
		Phrases: map[Action]string{
			ActionDeploy:   "deploy to production",
			ActionRollback: "rollback production",
			ActionDestroy:  "destroy production",
		},
		IdentityCheck:          true,
		DestroyConfirmsAccount: true,
		DestroyCountdown:       10 * time.Second,
	},
}

// PolicyFor returns the resolved policy for an environment.
func PolicyFor(env config.Environment) Policy {
	return policies[env]
}
