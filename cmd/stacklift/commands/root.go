// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/stacklift/stacklift/internal/metrics"
)

// Root returns the root command for the stacklift CLI.
//
// The root command serves as the entry point and parent for all subcommands.
// It provides basic CLI metadata and organizes the command hierarchy.
func Root() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "stacklift",
		Short: "Deploy, verify and tear down cloud infrastructure stacks",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if metricsAddr == "" {
				return
			}
			errCh := metrics.Serve(cmd.Context(), metricsAddr)
			go func() {
				if err := <-errCh; err != nil {
					log.Printf("metrics server: %v", err)
				}
			}()
		},
	}

	cmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	// Core commands
	cmd.AddCommand(Deploy())
	cmd.AddCommand(Teardown())
	cmd.AddCommand(Audit())
	cmd.AddCommand(Status())

	// Utility commands
	cmd.AddCommand(Snapshot())
	cmd.AddCommand(Cleanup())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
