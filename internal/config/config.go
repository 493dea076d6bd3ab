package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvRegion overrides the deployment region.
const EnvRegion = "STACKLIFT_REGION"

// EnvAccountID supplies the expected account identifier for the approval
// gate's identity cross-check.
const EnvAccountID = "STACKLIFT_ACCOUNT_ID"

// ResourceRefs names the provisioned resources the audit checks inspect.
// They are resolved from the stack by the orchestrator and passed to checks
// read-only.
type ResourceRefs struct {
	DatabaseID string `yaml:"databaseId"`
	NetworkID  string `yaml:"networkId"`
}

// ReportConfig controls where run reports are written.
type ReportConfig struct {
	Dir string `yaml:"dir"`

	// S3 upload of the rendered report, optional.
	S3Bucket    string `yaml:"s3Bucket"`
	S3Endpoint  string `yaml:"s3Endpoint"`
	S3AccessKey string `yaml:"s3AccessKey"`
	S3SecretKey string `yaml:"s3SecretKey"`
	S3Region    string `yaml:"s3Region"`
}

// MonitoringConfig declares the observability expectations the monitoring
// checks assert against.
type MonitoringConfig struct {
	AlarmsRequired   bool `yaml:"alarmsRequired"`
	LogRetentionDays int  `yaml:"logRetentionDays"`
}

// SecurityConfig declares the hardening expectations the security and
// encryption checks assert against.
type SecurityConfig struct {
	EncryptionAtRest bool `yaml:"encryptionAtRest"`
	EnforceTLS       bool `yaml:"enforceTls"`
	PublicAccess     bool `yaml:"publicAccess"`
}

// Config is the root stacklift configuration.
type Config struct {
	StackName    string `yaml:"stackName"`
	Region       string `yaml:"region"`
	TemplatePath string `yaml:"templatePath"`

	// ExpectedAccountID is the account the prod approval gate cross-checks
	// against. Overridable via STACKLIFT_ACCOUNT_ID.
	ExpectedAccountID string `yaml:"expectedAccountId"`

	// EstimatedMonthlyCost is the operator-maintained cost estimate for the
	// stack, compared against the tier budget ceiling by the cost check.
	EstimatedMonthlyCost float64 `yaml:"estimatedMonthlyCost"`

	Resources    ResourceRefs                    `yaml:"resources"`
	Report       ReportConfig                    `yaml:"report"`
	Monitoring   MonitoringConfig                `yaml:"monitoring"`
	Security     SecurityConfig                  `yaml:"security"`
	Environments map[Environment]EnvironmentSpec `yaml:"environments"`
}

// Load reads and parses the configuration from a YAML file, applies
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = "eu-central-1"
	}
	if region := os.Getenv(EnvRegion); region != "" {
		c.Region = region
	}
	if account := os.Getenv(EnvAccountID); account != "" {
		c.ExpectedAccountID = account
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}

	defaults := defaultEnvironments()
	if c.Environments == nil {
		c.Environments = defaults
		return
	}
	for env, def := range defaults {
		spec, ok := c.Environments[env]
		if !ok {
			c.Environments[env] = def
			continue
		}
		if spec.Retention == "" {
			spec.Retention = def.Retention
		}
		if spec.StackSuffix == "" {
			spec.StackSuffix = def.StackSuffix
		}
		c.Environments[env] = spec
	}
}

// Validate checks the configuration for fatal errors. A failure here is a
// ConfigurationError: the run aborts before any side effect.
func (c *Config) Validate() error {
	if c.StackName == "" {
		return fmt.Errorf("stackName is required")
	}
	if c.TemplatePath == "" {
		return fmt.Errorf("templatePath is required")
	}
	for env, spec := range c.Environments {
		switch env {
		case EnvDev, EnvStaging, EnvProd:
		default:
			return fmt.Errorf("unknown environment %q in environments section", env)
		}
		if spec.BudgetCeiling < 0 {
			return fmt.Errorf("environment %s: budgetCeiling must not be negative", env)
		}
		switch spec.Retention {
		case RetentionDiscard, RetentionPreserve:
		default:
			return fmt.Errorf("environment %s: unknown retention policy %q", env, spec.Retention)
		}
	}
	// Prod holds regulated data; refusing to discard it is not configurable.
	if prod, ok := c.Environments[EnvProd]; ok && prod.Retention != RetentionPreserve {
		return fmt.Errorf("environment prod: retention must be %q", RetentionPreserve)
	}
	return nil
}

// Spec returns the resolved settings for the given environment.
func (c *Config) Spec(env Environment) (EnvironmentSpec, error) {
	spec, ok := c.Environments[env]
	if !ok {
		return EnvironmentSpec{}, fmt.Errorf("no settings for environment %q", env)
	}
	return spec, nil
}

// StackNameFor returns the per-tier stack name.
func (c *Config) StackNameFor(env Environment) string {
	spec, ok := c.Environments[env]
	if !ok {
		return c.StackName
	}
	return c.StackName + spec.StackSuffix
}

// LoadTemplate reads the stack template body from the configured path.
func (c *Config) LoadTemplate() (string, error) {
	// #nosec G304
	data, err := os.ReadFile(c.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", c.TemplatePath, err)
	}
	return string(data), nil
}
