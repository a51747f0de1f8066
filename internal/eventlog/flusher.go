package eventlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Flusher periodically drains a Logger into a Repository.
type Flusher struct {
	logger   *Logger
	repo     Repository
	interval time.Duration
	log      *slog.Logger
}

// NewFlusher builds a Flusher. A non-positive interval defaults to 10s.
func NewFlusher(logger *Logger, repo Repository, interval time.Duration) *Flusher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Flusher{
		logger:   logger,
		repo:     repo,
		interval: interval,
		log:      slog.Default().With("component", "eventlog.flusher"),
	}
}

// Flush drains the buffer and saves it as one batch. On failure the drained
// events are put back at the head of the buffer so the next flush retries
// them in order.
func (f *Flusher) Flush(ctx context.Context) (int, error) {
	events := f.logger.Drain()
	if len(events) == 0 {
		return 0, nil
	}

	batchID := uuid.NewString()
	if err := f.repo.Save(ctx, batchID, events); err != nil {
		f.logger.requeue(events)
		return 0, fmt.Errorf("eventlog: flush batch %s: %w", batchID, err)
	}

	f.log.DebugContext(ctx, "flushed events", "batch_id", batchID, "count", len(events))
	return len(events), nil
}

// Run flushes every interval until ctx is done, then performs a final flush
// with a short detached deadline.
func (f *Flusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			if _, err := f.Flush(finalCtx); err != nil {
				f.log.ErrorContext(finalCtx, "final flush failed", "error", err)
			}
			cancel()
			return
		case <-ticker.C:
			if _, err := f.Flush(ctx); err != nil {
				f.log.ErrorContext(ctx, "flush failed", "error", err)
			}
		}
	}
}
