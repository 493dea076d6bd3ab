package handlers

import (
	"context"
	"log"
	"time"

	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/snapshot"
)

// Cleanup handles the cleanup command: garbage-collect restore-test
// instances left behind by crashed runs. With all set the age cutoff is
// ignored and every tagged restore-test instance is eligible.
func Cleanup(ctx context.Context, configPath string, olderThan time.Duration, all, dryRun bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	client, err := newProvisionClient(ctx, cfg.Region)
	if err != nil {
		return err
	}

	timeouts := config.LoadTimeouts()
	mgr := snapshot.NewManager(client, logObserver{}, snapshot.WithPollInterval(timeouts.PollInterval))

	if all {
		olderThan = 0
	}
	removed, err := mgr.TeardownTestResources(ctx, olderThan, dryRun)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		log.Println("No leftover restore-test instances found")
		return nil
	}
	for _, id := range removed {
		if dryRun {
			log.Printf("Would delete %s", id)
		} else {
			log.Printf("Deleted %s", id)
		}
	}
	return nil
}
