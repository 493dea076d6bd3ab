// Package handlers implements the CLI command logic.
//
// Handlers wire configuration, the provisioning client and the lifecycle
// orchestrator together. Factory function variables can be replaced in
// tests to inject fakes without touching global state.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/stacklift/stacklift/internal/approval"
	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/provision/aws"
	"github.com/stacklift/stacklift/internal/report"
)

const defaultConfigPath = "stacklift.yaml"

// Factory function variables - can be replaced in tests.
var (
	// loadConfig loads and validates the stack configuration.
	loadConfig = func(path string) (*config.Config, error) {
		if path == "" {
			path = defaultConfigPath
		}
		return config.Load(path)
	}

	// newProvisionClient creates the provisioning system client.
	newProvisionClient = func(ctx context.Context, region string) (provision.Client, error) {
		return aws.NewClient(ctx, region)
	}

	// newPrompter creates the interactive prompter for approvals.
	newPrompter = func() approval.Prompter {
		return approval.HuhPrompter{}
	}
)

// emitReport prints the report and persists it per the configuration.
// Persistence failures are logged, never fatal: the run's classification
// must not change because an artifact could not be written.
func emitReport(ctx context.Context, cfg *config.Config, rep *report.Report, jsonOut bool) error {
	switch {
	case jsonOut:
		out, err := report.RenderJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case isatty.IsTerminal(os.Stdout.Fd()):
		fmt.Println(report.RenderStyled(rep))
	default:
		fmt.Println(report.RenderText(rep))
	}

	if cfg.Report.Dir != "" {
		path, err := report.WriteFile(rep, cfg.Report.Dir)
		if err != nil {
			log.Printf("Warning: failed to write report artifact: %v", err)
		} else if !jsonOut {
			fmt.Printf("report written to %s\n", path)
		}
	}

	if cfg.Report.S3Bucket != "" {
		uploader, err := report.NewUploader(ctx, cfg.Report)
		if err != nil {
			log.Printf("Warning: failed to create report uploader: %v", err)
			return nil
		}
		key, err := uploader.Upload(ctx, rep)
		if err != nil {
			log.Printf("Warning: failed to upload report: %v", err)
			return nil
		}
		if !jsonOut {
			fmt.Printf("report uploaded to s3://%s/%s\n", cfg.Report.S3Bucket, key)
		}
	}

	return nil
}

// setup loads the configuration, resolves the environment and creates the
// provisioning client. Every handler that talks to the provisioning system
// starts here.
func setup(ctx context.Context, configPath, envName string) (*config.Config, config.Environment, provision.Client, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, "", nil, err
	}
	env, err := config.ParseEnvironment(envName)
	if err != nil {
		return nil, "", nil, err
	}
	client, err := newProvisionClient(ctx, cfg.Region)
	if err != nil {
		return nil, "", nil, err
	}
	return cfg, env, client, nil
}
