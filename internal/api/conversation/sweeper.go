package conversation

import (
	"context"
	"log/slog"
	"time"

	"github.com/athipan1/Database-painaidee/app/observability/metrics"
)

// Sweeper periodically removes expired sessions. It only reclaims storage;
// expiry is already enforced on every read.
type Sweeper struct {
	store    SessionStore
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(store SessionStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run sweeps every interval until ctx is done. A non-positive interval disables it.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.InfoContext(ctx, "Session sweeper disabled")
		return nil
	}
	s.logger.InfoContext(ctx, "Session sweeper started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Session sweeper stopped")
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single cleanup pass.
func (s *Sweeper) Sweep(ctx context.Context) int {
	removed, err := s.store.CleanupExpired(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Session sweep failed", slog.Any("error", err))
		return 0
	}
	if removed > 0 {
		metrics.Get().SessionsSweptTotal.Add(ctx, int64(removed))
	}
	return removed
}
