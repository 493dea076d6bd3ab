package config

import "fmt"

// Environment is the deployment tier a run targets. It is selected by the
// caller, immutable for the duration of a run, and drives the approval
// policy, budget ceiling, and data-retention behavior.
type Environment string

const (
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// Environments lists all valid environments in tier order.
var Environments = []Environment{EnvDev, EnvStaging, EnvProd}

// ParseEnvironment validates a caller-supplied environment name.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvDev, EnvStaging, EnvProd:
		return Environment(s), nil
	}
	return "", fmt.Errorf("unknown environment %q (expected dev, staging, or prod)", s)
}

// RetentionPolicy controls what happens to stack data on teardown.
type RetentionPolicy string

const (
	// RetentionDiscard deletes data with the stack unless --keep-data is set.
	RetentionDiscard RetentionPolicy = "discard"
	// RetentionPreserve always takes a final snapshot before teardown.
	RetentionPreserve RetentionPolicy = "preserve"
)

// EnvironmentSpec holds the per-tier settings resolved once at run start.
type EnvironmentSpec struct {
	// BudgetCeiling is the monthly cost ceiling in USD used by the cost
	// check. Zero disables the check for the tier.
	BudgetCeiling float64 `yaml:"budgetCeiling"`

	// Retention is the data-retention policy applied on teardown.
	Retention RetentionPolicy `yaml:"retention"`

	// StackSuffix distinguishes the per-tier stack name, e.g. "-dev".
	StackSuffix string `yaml:"stackSuffix"`
}

// defaultEnvironments returns the built-in tier settings used when the
// config file does not override them.
func defaultEnvironments() map[Environment]EnvironmentSpec {
	return map[Environment]EnvironmentSpec{
		EnvDev:     {BudgetCeiling: 50, Retention: RetentionDiscard, StackSuffix: "-dev"},
		EnvStaging: {BudgetCeiling: 200, Retention: RetentionDiscard, StackSuffix: "-staging"},
		EnvProd:    {BudgetCeiling: 1000, Retention: RetentionPreserve, StackSuffix: "-prod"},
	}
}
