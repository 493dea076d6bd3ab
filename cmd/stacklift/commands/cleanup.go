package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklift/stacklift/cmd/stacklift/handlers"
)

// Cleanup returns the command for removing leftover restore-test instances.
func Cleanup() *cobra.Command {
	var (
		configPath string
		olderThan  time.Duration
		cleanupAll bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete leftover restore-test instances",
		Long: `Delete restore-test instances that a crashed run left behind.

Only instances carrying the stacklift test tag and older than the cutoff
are touched; anything tagged as production is never deleted.

Examples:
  # See what would be removed
  stacklift cleanup --dry-run

  # Remove test instances older than one hour
  stacklift cleanup --older-than 1h

  # Remove every tagged test instance regardless of age
  stacklift cleanup --cleanup-all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cleanup(cmd.Context(), configPath, olderThan, cleanupAll, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: stacklift.yaml)")
	cmd.Flags().DurationVar(&olderThan, "older-than", 2*time.Hour, "Only delete instances older than this")
	cmd.Flags().BoolVar(&cleanupAll, "cleanup-all", false, "Ignore the age cutoff and collect every tagged test instance")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List eligible instances without deleting")

	return cmd
}
