package commands

import (
	"github.com/spf13/cobra"

	"github.com/stacklift/stacklift/cmd/stacklift/handlers"
)

// Snapshot returns the command for taking a database snapshot on demand.
func Snapshot() *cobra.Command {
	var (
		configPath  string
		purpose     string
		restoreTest bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot <environment>",
		Short: "Snapshot the stack's database",
		Long: `Take a snapshot of the configured database and wait until it
is available.

With --restore-test the snapshot is additionally restored into a throwaway
instance to prove it actually works; the instance is deleted before the
command returns.

Examples:
  stacklift snapshot prod
  stacklift snapshot prod --restore-test`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Snapshot(cmd.Context(), configPath, args[0], purpose, restoreTest)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: stacklift.yaml)")
	cmd.Flags().StringVar(&purpose, "purpose", "manual", "Purpose tag embedded in the snapshot name")
	cmd.Flags().BoolVar(&restoreTest, "restore-test", false, "Restore the snapshot into a throwaway instance")

	return cmd
}
