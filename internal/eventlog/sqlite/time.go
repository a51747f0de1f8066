package sqlite

import (
	"fmt"
	"time"
)

// Dates are stored as UTC RFC 3339 TEXT with nanoseconds, which sorts
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.999999999Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse created_at %q: %w", s, err)
	}
	return t, nil
}
