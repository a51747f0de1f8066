// Package sqlite provides a SQLite-backed implementation of eventlog.Repository.
//
// WAL mode is enabled on Open so the flusher can append while the debug HTTP
// surface reads recent events.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcmexdev/statesaga/internal/eventlog"

	// Pure-Go driver, no CGO.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup. The table is append-only: one
// row per flushed event, grouped by the batch that carried it.
const schema = `
CREATE TABLE IF NOT EXISTS log_events (
    -- Surrogate primary key, preserves insertion order.
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Flush batch this event was shipped in.
    batch_id        TEXT        NOT NULL,

    -- Logger-assigned hex id. Unique only within one logger lifetime.
    event_id        TEXT        NOT NULL,

    event_type      TEXT        NOT NULL,

    -- JSON object of string -> string.
    context         TEXT        NOT NULL DEFAULT '{}',

    error_message   TEXT,

    -- NULL until the event was finalized.
    elapsed_ms      INTEGER,

    created_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_log_events_batch ON log_events(batch_id);
CREATE INDEX IF NOT EXISTS idx_log_events_type ON log_events(event_type, created_at);
`

// Repository is the SQLite implementation of eventlog.Repository.
type Repository struct {
	db *sql.DB
}

var _ eventlog.Repository = (*Repository)(nil)

// Open opens (or creates) the SQLite database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/events.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts every event of a batch in one transaction.
func (r *Repository) Save(ctx context.Context, batchID string, events []eventlog.Event) error {
	const q = `
		INSERT INTO log_events
			(batch_id, event_id, event_type, context, error_message, elapsed_ms, created_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin batch %q: %w", batchID, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("sqlite: prepare batch %q: %w", batchID, err)
	}
	defer stmt.Close()

	for _, e := range events {
		ctxJSON, err := json.Marshal(e.Context)
		if err != nil {
			return fmt.Errorf("sqlite: encode context of %q: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			batchID,
			e.ID,
			e.Type,
			string(ctxJSON),
			nullableString(e.ErrorMessage),
			nullableMillis(e.ElapsedTime),
			formatTime(e.Date),
		); err != nil {
			return fmt.Errorf("sqlite: save event %q: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit batch %q: %w", batchID, err)
	}
	return nil
}

// Recent returns up to limit of the most recently stored events, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]eventlog.Event, error) {
	const q = `
		SELECT event_id, event_type, context, COALESCE(error_message, ''), elapsed_ms, created_at
		FROM   log_events
		ORDER  BY id DESC
		LIMIT  ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query recent: %w", err)
	}
	defer rows.Close()

	var out []eventlog.Event
	for rows.Next() {
		var (
			e         eventlog.Event
			ctxJSON   string
			elapsedMs sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Type, &ctxJSON, &e.ErrorMessage, &elapsedMs, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(ctxJSON), &e.Context); err != nil {
			return nil, fmt.Errorf("sqlite: decode context of %q: %w", e.ID, err)
		}
		if elapsedMs.Valid {
			d := time.Duration(elapsedMs.Int64) * time.Millisecond
			e.ElapsedTime = &d
		}
		if e.Date, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate events: %w", err)
	}
	return out, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings so SQLite stores NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableMillis(d *time.Duration) any {
	if d == nil {
		return nil
	}
	return d.Milliseconds()
}
