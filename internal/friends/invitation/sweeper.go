package invitation

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically removes expired invitations whose timers have not
// fired yet.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewSweeper(registry *Registry, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{registry: registry, interval: interval, now: registry.now, logger: logger}
}

// Run sweeps every interval until ctx is cancelled. It returns nil on
// cancellation so it can run inside an errgroup.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.registry.DeleteExpired(s.now()); n > 0 {
				s.logger.DebugContext(ctx, "swept expired invitations", "count", n)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
