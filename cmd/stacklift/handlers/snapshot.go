package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/stacklift/stacklift/internal/check"
	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/snapshot"
)

// Snapshot handles the snapshot command: take a database snapshot, wait
// until it is available and optionally prove it restores.
func Snapshot(ctx context.Context, configPath, envName, purpose string, restoreTest bool) error {
	cfg, _, client, err := setup(ctx, configPath, envName)
	if err != nil {
		return err
	}
	if cfg.Resources.DatabaseID == "" {
		return fmt.Errorf("no database configured for %s", cfg.StackName)
	}

	timeouts := config.LoadTimeouts()
	mgr := snapshot.NewManager(client, logObserver{}, snapshot.WithPollInterval(timeouts.PollInterval))

	snap, err := mgr.Create(ctx, cfg.Resources.DatabaseID, purpose)
	if err != nil {
		return err
	}
	log.Printf("Snapshot %s requested, waiting for it to become available", snap.ID)

	snap, err = mgr.AwaitAvailable(ctx, snap, timeouts.Snapshot)
	if err != nil {
		return err
	}
	log.Printf("Snapshot %s is available", snap.ID)

	if restoreTest {
		res := mgr.RestoreTest(ctx, snap, timeouts.Restore)
		log.Printf("Restore test: %s (%s)", res.Outcome, res.Message)
		if res.Outcome == check.Fail {
			return fmt.Errorf("restore test failed: %s", res.Message)
		}
	}
	return nil
}

// logObserver adapts log.Printf to the snapshot manager's observer.
type logObserver struct{}

func (logObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}
