package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklift/stacklift/cmd/stacklift/handlers"
)

// Teardown returns the command for destroying a stack.
//
// Destroys always go through the approval gate; --force never bypasses a
// destroy confirmation. Data is snapshotted first when --keep-data is set
// or the environment's retention policy says preserve (prod always does).
func Teardown() *cobra.Command {
	var (
		configPath  string
		dryRun      bool
		force       bool
		autoApprove bool
		keepData    bool
		jsonOut     bool
		waitTime    durationFlag
	)

	cmd := &cobra.Command{
		Use:   "teardown <environment>",
		Short: "Destroy the stack in an environment",
		Long: `Destroy the stack in dev, staging or prod.

Every destroy asks for typed confirmation per the environment's policy;
in prod the account identifier must be typed back and a countdown runs
before anything is deleted. The database gets a final snapshot first when
the retention policy preserves data.

Examples:
  # Tear down a dev stack
  stacklift teardown dev

  # Tear down staging but keep a final snapshot
  stacklift teardown staging --keep-data`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Teardown(cmd.Context(), configPath, args[0], handlers.TeardownFlags{
				DryRun:   dryRun,
				Force:    force || autoApprove,
				KeepData: keepData,
				JSON:     jsonOut,
				WaitTime: time.Duration(waitTime),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: stacklift.yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be deleted without deleting")
	cmd.Flags().BoolVar(&force, "force", false, "Skip interactive confirmation where allowed (never for destroys)")
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Synonym for --force")
	cmd.Flags().BoolVar(&keepData, "keep-data", false, "Take a final snapshot before deleting")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().Var(&waitTime, "wait-time", "Override the polling deadline (Go duration or bare seconds)")

	return cmd
}
