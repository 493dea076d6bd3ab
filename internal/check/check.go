// Package check defines the pluggable validation checks run before and
// after a deployment, and the registry that evaluates them.
//
// Checks are pure with respect to the stack: they read, never mutate. A
// check that panics or misbehaves is converted into a failed result so one
// broken check never masks the rest of the report.
package check

import (
	"context"
	"fmt"

	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/provision"
)

// Outcome is a single check verdict.
type Outcome string

const (
	Pass Outcome = "pass"
	Fail Outcome = "fail"
	Warn Outcome = "warn"
)

// Category groups checks by concern. Categories are independent; a failure
// in one never short-circuits another.
type Category string

const (
	CategoryConnectivity Category = "connectivity"
	CategorySecurity     Category = "security"
	CategoryEncryption   Category = "encryption"
	CategoryCost         Category = "cost"
	CategoryMonitoring   Category = "monitoring"
)

// Phase scopes a check to a point in the run.
type Phase string

const (
	PreDeploy  Phase = "pre-deploy"
	PostDeploy Phase = "post-deploy"

	// Teardown labels reports from destroy runs; no checks register for it.
	Teardown Phase = "teardown"
)

// Severity declares whether a failing check blocks gated actions or is only
// reported.
type Severity string

const (
	Blocking Severity = "blocking"
	Advisory Severity = "advisory"
)

// Result is the outcome of one check invocation. It is immutable and owned
// by the report aggregator once emitted.
type Result struct {
	Name     string   `json:"name"`
	Outcome  Outcome  `json:"outcome"`
	Message  string   `json:"message"`
	Category Category `json:"category"`
}

// Context carries read-only handles to the identifiers a check may inspect.
// The orchestrator resolves these from the provisioning system and the run
// configuration before checks run.
type Context struct {
	Environment config.Environment
	Handle      provision.StackHandle
	Client      provision.Client

	DatabaseID string
	NetworkID  string

	EstimatedMonthlyCost float64
	BudgetCeiling        float64

	Security   config.SecurityConfig
	Monitoring config.MonitoringConfig
}

// Check is one named validation.
type Check struct {
	Name     string
	Category Category
	Phases   []Phase
	Severity Severity
	Run      func(ctx context.Context, cc *Context) Result
}

// AppliesTo reports whether the check runs in the given phase.
func (c Check) AppliesTo(phase Phase) bool {
	for _, p := range c.Phases {
		if p == phase {
			return true
		}
	}
	return false
}

// pass, fail, and warn build results with just outcome and message; the
// registry stamps the check's name and category when the result is emitted,
// so check bodies never repeat their own identity.
func pass(format string, v ...interface{}) Result {
	return Result{Outcome: Pass, Message: fmt.Sprintf(format, v...)}
}

func fail(format string, v ...interface{}) Result {
	return Result{Outcome: Fail, Message: fmt.Sprintf(format, v...)}
}

func warn(format string, v ...interface{}) Result {
	return Result{Outcome: Warn, Message: fmt.Sprintf(format, v...)}
}
