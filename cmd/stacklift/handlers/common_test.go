package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stacklift/stacklift/internal/approval"
	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/provision"
)

// testConfig returns a valid configuration backed by a real template file.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "template.yaml")
	require.NoError(t, os.WriteFile(tmpl, []byte("Resources: {}\n"), 0o600))

	cfg := &config.Config{
		StackName:            "orders",
		Region:               "eu-central-1",
		TemplatePath:         tmpl,
		ExpectedAccountID:    "111111111111",
		EstimatedMonthlyCost: 10,
		Resources:            config.ResourceRefs{DatabaseID: "orders-db"},
		Security:             config.SecurityConfig{EncryptionAtRest: true, EnforceTLS: true},
		Monitoring:           config.MonitoringConfig{AlarmsRequired: true, LogRetentionDays: 90},
		Report:               config.ReportConfig{Dir: filepath.Join(dir, "reports")},
		Environments: map[config.Environment]config.EnvironmentSpec{
			config.EnvDev:     {BudgetCeiling: 50, Retention: config.RetentionDiscard, StackSuffix: "-dev"},
			config.EnvStaging: {BudgetCeiling: 200, Retention: config.RetentionDiscard, StackSuffix: "-staging"},
			config.EnvProd:    {BudgetCeiling: 1000, Retention: config.RetentionPreserve, StackSuffix: "-prod"},
		},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

// autoPrompter approves every prompt and echoes back the requested phrase
// from its script.
type autoPrompter struct {
	inputs  []string
	inputIx int
}

func (p *autoPrompter) Confirm(context.Context, string, string) (bool, error) {
	return true, nil
}

func (p *autoPrompter) Input(context.Context, string, string) (string, error) {
	if p.inputIx >= len(p.inputs) {
		return "", errors.New("unexpected Input call")
	}
	v := p.inputs[p.inputIx]
	p.inputIx++
	return v, nil
}

// swapFactories replaces the handler factory variables for one test.
func swapFactories(t *testing.T, cfg *config.Config, client provision.Client, prompter approval.Prompter) {
	t.Helper()
	origLoad := loadConfig
	origClient := newProvisionClient
	origPrompter := newPrompter
	t.Cleanup(func() {
		loadConfig = origLoad
		newProvisionClient = origClient
		newPrompter = origPrompter
	})

	loadConfig = func(string) (*config.Config, error) { return cfg, nil }
	newProvisionClient = func(context.Context, string) (provision.Client, error) { return client, nil }
	newPrompter = func() approval.Prompter { return prompter }
}
