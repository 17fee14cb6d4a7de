package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// runTimeout bounds a single scheduled run.
const runTimeout = 5 * time.Minute

// Scheduler runs a Backup on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// Schedule starts running b according to spec, a standard five-field cron
// expression. Overlapping runs are skipped.
func Schedule(spec string, b *Backup) (*Scheduler, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		b.Run(ctx) // errors are logged and counted by Run
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}

	c.Start()
	slog.Info("Backup scheduler started", "schedule", spec, "dir", b.dir, "keep", b.keep)
	return &Scheduler{cron: c}, nil
}

// Stop stops the schedule and waits for a running backup to finish or for
// ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("backup still running at shutdown: %w", ctx.Err())
	}
}

// cronLogger routes cron's logging to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
