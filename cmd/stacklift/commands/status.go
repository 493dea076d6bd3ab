package commands

import (
	"github.com/spf13/cobra"

	"github.com/stacklift/stacklift/cmd/stacklift/handlers"
)

// Status returns the command for inspecting the current stack phase.
func Status() *cobra.Command {
	var (
		configPath string
		watch      bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "status <environment>",
		Short: "Show the current stack phase",
		Long: `Show the stack's current phase and status reason.

With --watch the status refreshes in a live view until the stack reaches
a stable phase or you quit.

Examples:
  stacklift status prod
  stacklift status staging --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Status(cmd.Context(), configPath, args[0], watch, jsonOut)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: stacklift.yaml)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch the stack until it is stable")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the status as JSON")

	return cmd
}
