package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/ui/tui"
	"github.com/stacklift/stacklift/internal/util/retry"
)

// runStatusTUI starts the watch view - replaceable in tests.
var runStatusTUI = tui.RunStatusTUI

// Status handles the status command.
func Status(ctx context.Context, configPath, envName string, watch, jsonOut bool) error {
	cfg, env, client, err := setup(ctx, configPath, envName)
	if err != nil {
		return err
	}

	handle := provision.StackHandle{
		Name:        cfg.StackNameFor(env),
		Region:      cfg.Region,
		Environment: string(env),
	}

	timeouts := config.LoadTimeouts()
	if watch {
		return runStatusTUI(ctx, client, handle, string(env), timeouts.PollInterval)
	}

	var status provision.StackStatus
	err = retry.Do(ctx, func() error {
		s, derr := client.DescribeStack(ctx, handle)
		if derr != nil {
			if provision.IsTransient(derr) {
				return derr
			}
			return retry.Fatal(derr)
		}
		status = s
		return nil
	},
		retry.WithMaxRetries(timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(timeouts.RetryInitialDelay),
	)
	if err != nil {
		return err
	}

	if jsonOut {
		out, err := json.MarshalIndent(map[string]interface{}{
			"stack":      handle.Name,
			"region":     handle.Region,
			"phase":      status.Phase,
			"reason":     status.Reason,
			"observedAt": status.ObservedAt,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Println(tui.RenderStatusOnce(status, handle, string(env)))
		return nil
	}
	fmt.Printf("%s: %s", handle, status.Phase)
	if status.Reason != "" {
		fmt.Printf(" (%s)", status.Reason)
	}
	fmt.Println()
	return nil
}
