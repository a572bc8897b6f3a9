package jobs

import (
	"context"
	"log/slog"
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/services"
)

// StaleExceptionJob removes exceptions left behind on days that no longer
// hold an occurrence after their event was edited.
type StaleExceptionJob struct {
	exceptionService *services.ExceptionService
	interval         time.Duration
}

func NewStaleExceptionJob(
	exceptionService *services.ExceptionService,
	interval time.Duration,
) StaleExceptionJob {
	return StaleExceptionJob{
		exceptionService: exceptionService,
		interval:         interval,
	}
}

func (j StaleExceptionJob) ID() string {
	return "stale-exceptions"
}

func (j StaleExceptionJob) RunEvery() time.Duration {
	if j.interval <= 0 {
		//nolint:mnd //no magic number
		return 24 * time.Hour
	}
	return j.interval
}

func (j StaleExceptionJob) Run(ctx context.Context, logger *slog.Logger) error {
	logger.Debug("removing stale exceptions")

	removed, err := j.exceptionService.RemoveAllStale(ctx)
	if err != nil {
		return err
	}

	logger.Debug("removed stale exceptions", slog.Int("count", removed))

	return nil
}
