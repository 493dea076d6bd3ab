// Package main provides a standalone sweeper for leftover restore-test
// instances.
//
// Runs that crash mid restore-test can leave a throwaway database instance
// behind. The sweeper finds instances carrying the stacklift test tag and
// deletes the ones older than the cutoff. It is meant to run on a schedule
// (cron, CI nightly) independently of the CLI.
//
// Usage:
//
//	# Delete test instances older than two hours in eu-central-1
//	sweeper -region eu-central-1
//
//	# Tighter cutoff
//	sweeper -region eu-central-1 -older-than 30m
//
//	# Dry run (list instances without deleting)
//	sweeper -region eu-central-1 -dry-run
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/stacklift/stacklift/internal/config"
	"github.com/stacklift/stacklift/internal/provision/aws"
	"github.com/stacklift/stacklift/internal/snapshot"
)

func main() {
	var (
		region    = flag.String("region", os.Getenv(config.EnvRegion), "Region to sweep")
		olderThan = flag.Duration("older-than", 2*time.Hour, "Only delete instances older than this")
		dryRun    = flag.Bool("dry-run", false, "List instances without deleting them")
	)
	flag.Parse()

	if *region == "" {
		log.Fatalf("Error: -region or %s must be set", config.EnvRegion)
	}

	ctx := context.Background()

	client, err := aws.NewClient(ctx, *region)
	if err != nil {
		log.Fatalf("Error: failed to create client: %v", err)
	}

	log.Printf("Sweeper starting in %s, cutoff %s", *region, *olderThan)

	mgr := snapshot.NewManager(client, stdObserver{})
	removed, err := mgr.TeardownTestResources(ctx, *olderThan, *dryRun)
	if err != nil {
		log.Fatalf("Error: sweep failed: %v", err)
	}

	if len(removed) == 0 {
		log.Println("Nothing to sweep")
		return
	}
	for _, id := range removed {
		if *dryRun {
			log.Printf("Would delete %s", id)
		} else {
			log.Printf("Deleted %s", id)
		}
	}
	log.Printf("Sweep finished, %d instance(s)", len(removed))
}

type stdObserver struct{}

func (stdObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}
