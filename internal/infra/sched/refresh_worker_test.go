package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) Run(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestRefreshWorkerRunsAfterInitialDelay(t *testing.T) {
	r := &countingRefresher{}
	logger := zerolog.Nop()
	w := NewRefreshWorker(10*time.Millisecond, time.Hour, r, &logger)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if got := r.calls.Load(); got != 1 {
		t.Errorf("refresh ran %d times, want 1 (initial run only)", got)
	}
}

func TestRefreshWorkerStopsDuringInitialDelay(t *testing.T) {
	r := &countingRefresher{}
	logger := zerolog.Nop()
	w := NewRefreshWorker(time.Hour, time.Hour, r, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx); err != context.Canceled {
		t.Fatalf("err = %v, want canceled", err)
	}
	if got := r.calls.Load(); got != 0 {
		t.Errorf("refresh ran %d times before the initial delay elapsed", got)
	}
}
