// Package scheduler fires the daily jobs at fixed wall-clock times in the
// configured time zone.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunDaily blocks until ctx is done, invoking job once per day at the given
// local time.
func RunDaily(ctx context.Context, hour, minute int, loc *time.Location, name string, job func(now time.Time)) {
	for {
		now := time.Now().In(loc)
		next := NextRun(now, hour, minute)
		zap.L().Info("daily job scheduled",
			zap.String("job", name),
			zap.Time("next_run", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			job(fired.In(loc))
		}
	}
}

// NextRun returns the next occurrence of hour:minute strictly after now,
// in now's location.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
