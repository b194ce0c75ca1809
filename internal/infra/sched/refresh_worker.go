package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher is the scheduled unit of work, satisfied by the refresh use case.
type Refresher interface {
	Run(ctx context.Context) error
}

// RefreshWorker runs the feed refresh cycle on a fixed interval, after an
// initial delay that lets the bot finish starting up first.
type RefreshWorker struct {
	initialDelay time.Duration
	interval     time.Duration
	refresher    Refresher
	log          *zerolog.Logger
}

func NewRefreshWorker(initialDelay, interval time.Duration, refresher Refresher, logger *zerolog.Logger) *RefreshWorker {
	compLog := logger.With().Str("component", "RefreshWorker").Logger()
	return &RefreshWorker{
		initialDelay: initialDelay,
		interval:     interval,
		refresher:    refresher,
		log:          &compLog,
	}
}

func (w *RefreshWorker) Run(ctx context.Context) error {
	w.log.Info().
		Dur("initial_delay", w.initialDelay).
		Dur("interval", w.interval).
		Msg("Starting refresh worker")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(w.initialDelay):
	}
	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping refresh worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

func (w *RefreshWorker) runCycle(ctx context.Context) {
	if err := w.refresher.Run(ctx); err != nil {
		w.log.Error().Err(err).Msg("refresh cycle failed")
	}
}
