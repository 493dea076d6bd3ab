package commands

import (
	"github.com/spf13/cobra"

	"github.com/stacklift/stacklift/cmd/stacklift/handlers"
)

// Audit returns the command for running checks against a live stack
// without deploying anything.
func Audit() *cobra.Command {
	var (
		configPath string
		phase      string
		category   string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "audit <environment>",
		Short: "Run checks against the stack without deploying",
		Long: `Run the check suite against a live stack and print the report.

Audit never issues a mutating call. It exits 0 when no blocking check
fails, 1 otherwise.

Examples:
  # Run all pre-deploy checks against prod
  stacklift audit prod

  # Only security checks, as JSON
  stacklift audit prod --category security --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Audit(cmd.Context(), configPath, args[0], handlers.AuditFlags{
				Phase:    phase,
				Category: category,
				JSON:     jsonOut,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: stacklift.yaml)")
	cmd.Flags().StringVar(&phase, "phase", "pre-deploy", "Check phase to run (pre-deploy or post-deploy)")
	cmd.Flags().StringVar(&category, "category", "", "Run only checks of one category")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")

	return cmd
}
