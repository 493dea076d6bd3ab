package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklift/stacklift/cmd/stacklift/handlers"
)

// Deploy returns the command for deploying a stack to an environment.
//
// The deploy runs the full lifecycle: pre-deploy checks, approval, the
// create-or-update call, polling to a terminal phase and post-deploy
// verification. Exit code 0 means the deploy was verified (or the dry run
// passed); anything else exits 1 with a report explaining why.
//
// Optional flags:
//
//	--config, -c:   Path to stack configuration YAML file (default: stacklift.yaml)
//	--dry-run:      Run checks only, never issue a mutating call
//	--force:        Skip interactive confirmation where the environment allows it
//	--keep-data:    Snapshot the database before touching the stack
//	--restore-test: Prove the snapshot restores into a throwaway instance
//	--wait-time:    Override the polling deadline
//	--category:     Run only checks of one category
//	--json:         Print the report as JSON
//
// Environment variables:
//
//	STACKLIFT_REGION:     Overrides the configured region
//	STACKLIFT_ACCOUNT_ID: Overrides the expected account for prod identity checks
func Deploy() *cobra.Command {
	var (
		configPath  string
		dryRun      bool
		force       bool
		autoApprove bool
		keepData    bool
		verbose     bool
		restoreTest bool
		jsonOut     bool
		waitTime    durationFlag
		category    string
		stack       string
		template    string
		reportDir   string
	)

	cmd := &cobra.Command{
		Use:   "deploy <environment>",
		Short: "Deploy the stack to an environment",
		Long: `Deploy the stack to dev, staging or prod.

The run validates first, asks for approval per the environment's policy,
issues the deploy, polls the provisioning system to a terminal phase and
verifies the result. A failed update is rolled back automatically where a
safe recovery path exists.

Examples:
  # Validate without touching anything
  stacklift deploy staging --dry-run

  # Deploy to prod, preserving data and proving the snapshot restores
  stacklift deploy prod --keep-data --restore-test

  # Deploy with a longer polling deadline
  stacklift deploy prod --wait-time 45m`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Deploy(cmd.Context(), configPath, args[0], handlers.DeployFlags{
				DryRun:      dryRun,
				Force:       force || autoApprove,
				KeepData:    keepData,
				Verbose:     verbose,
				RestoreTest: restoreTest,
				JSON:        jsonOut,
				WaitTime:    time.Duration(waitTime),
				Category:    category,
				Stack:       stack,
				Template:    template,
				ReportDir:   reportDir,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: stacklift.yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run checks only, never issue a mutating call")
	cmd.Flags().BoolVar(&force, "force", false, "Skip interactive confirmation where allowed")
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Synonym for --force")
	cmd.Flags().BoolVar(&keepData, "keep-data", false, "Snapshot the database before touching the stack")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.Flags().BoolVar(&restoreTest, "restore-test", false, "Prove the snapshot restores into a throwaway instance")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().Var(&waitTime, "wait-time", "Override the polling deadline (Go duration or bare seconds)")
	cmd.Flags().StringVar(&category, "category", "", "Run only checks of one category")
	cmd.Flags().StringVar(&stack, "stack", "", "Override the configured stack name")
	cmd.Flags().StringVar(&template, "template", "", "Override the configured template path")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "Override the report output directory")

	return cmd
}
