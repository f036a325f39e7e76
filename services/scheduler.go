// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSweeps wires the two background sweeps: the reaper every five minutes
// and the expiry sweep every hour. Neither surfaces errors to any caller;
// failed items are retried by the next run.
func StartSweeps(ctx context.Context, reaper *ReaperService, expiry *ExpiryService) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			reaper.ReapStale(ctx)
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			expiry.Sweep(ctx)
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Println("✅ Background sweeps scheduled (reaper: 5m, expiry: 1h)")
	return sched, nil
}
