package housekeeping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aidarbek/todochat/internal/metrics"
	"github.com/aidarbek/todochat/internal/repository"
	"github.com/robfig/cron/v3"
)

const defaultSchedule = "@hourly"

// Sweeper prunes expired session tokens. Expired tokens are already
// rejected at resolve time; the sweep only keeps the table from growing
// without bound.
type Sweeper struct {
	users    repository.UserRepository
	logger   *slog.Logger
	schedule string
}

func NewSweeper(users repository.UserRepository, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		users:    users,
		logger:   logger.With("component", "sweeper"),
		schedule: defaultSchedule,
	}
}

// Run sweeps once immediately, then on the cron schedule until ctx is
// done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.sweep(ctx)

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.sweep(ctx) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	c.Start()
	s.logger.Info("sweeper started", "schedule", s.schedule)

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.logger.Info("sweeper shut down")
	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	pruned, err := s.users.DeleteExpiredTokens(ctx, time.Now())
	if err != nil {
		s.logger.ErrorContext(ctx, "token sweep", "error", err)
		return
	}
	if pruned > 0 {
		metrics.TokensPrunedTotal.Add(float64(pruned))
		s.logger.InfoContext(ctx, "token sweep", "pruned", pruned)
	}
}
