// Package main is the entry point for the stacklift CLI.
//
// stacklift deploys, verifies and tears down cloud infrastructure stacks.
// It runs pre-deploy checks, enforces per-environment approval policies,
// polls the provisioning system to a terminal phase and recovers failed
// updates where a safe rollback path exists.
//
// Commands: deploy, teardown, audit, status, snapshot, cleanup.
//
// For detailed usage information, run:
//
//	stacklift --help
package main

import (
	"fmt"
	"os"

	"github.com/stacklift/stacklift/cmd/stacklift/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
