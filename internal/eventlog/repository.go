package eventlog

import "context"

// Repository is the port for persisting flushed events. The flusher depends
// on this abstraction, so the sink can be SQLite, a remote collector, or an
// in-memory fake in tests.
type Repository interface {
	// Save appends one flushed batch. Each call adds rows; it never updates.
	Save(ctx context.Context, batchID string, events []Event) error
}
