package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/itskys/jszs/internal/service"
)

// MonitorSweeper periodically purges monitor rows whose last heartbeat
// is older than the configured staleness cutoff, so the roster stays
// clean even when no admin is looking at it.
type MonitorSweeper struct {
	monitor  *service.MonitorService
	interval time.Duration
	log      zerolog.Logger
}

// NewMonitorSweeper creates a new MonitorSweeper.
func NewMonitorSweeper(monitor *service.MonitorService, interval time.Duration, log zerolog.Logger) *MonitorSweeper {
	return &MonitorSweeper{
		monitor:  monitor,
		interval: interval,
		log:      log.With().Str("component", "monitor_sweeper").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine.
func (w *MonitorSweeper) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			purged, err := w.monitor.Purge(ctx)
			if err != nil {
				if ctx.Err() == nil {
					w.log.Error().Err(err).Msg("Purge error")
				}
				continue
			}
			if purged > 0 {
				w.log.Info().Int64("purged", purged).Msg("Removed stale monitor rows")
			}
		}
	}
}
