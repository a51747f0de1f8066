// Package eventlog buffers structured diagnostic events until an external
// scheduler flushes them to a telemetry sink.
//
// The buffer is owned by a single Logger instance. Events are appended by
// Log and LogException, read with Collect and cleared with Empty (or both at
// once with Drain). Each append returns a Finalizer that records how long the
// logged operation took; it may be called at most once.
package eventlog

import "time"

// Event is a single buffered log record.
type Event struct {
	ID           string            `json:"id"`
	Date         time.Time         `json:"date"`
	Type         string            `json:"type"`
	Context      map[string]string `json:"context"`
	ErrorMessage string            `json:"errorMessage,omitempty"`

	// ElapsedTime is nil until the event's Finalizer runs.
	ElapsedTime *time.Duration `json:"elapsedTime,omitempty"`
}

// Finalizer records the elapsed time since its event was appended.
// A second call returns ErrEventFrozen.
type Finalizer func() error

// Value is an environment context entry, either fixed or resolved lazily at
// append time.
type Value struct {
	static string
	lazy   func() string
}

// String returns a fixed context value.
func String(s string) Value { return Value{static: s} }

// Lazy returns a context value evaluated each time an event is appended.
func Lazy(f func() string) Value { return Value{lazy: f} }

func (v Value) resolve() string {
	if v.lazy != nil {
		return v.lazy()
	}
	return v.static
}

// EnvironmentContext is merged into every event's context.
type EnvironmentContext map[string]Value

// Standard context keys.
const (
	KeyAppState      = "appState"
	KeyRequestURL    = "requestURL"
	KeyStatusCode    = "statusCode"
	KeyStackTrace    = "stackTrace"
	KeyParams        = "params"
	KeyPayload       = "payload"
	KeyProcessMethod = "process_method"
	KeyDuration      = "duration"
)

// TypeError is the type of every event produced by LogException.
const TypeError = "error"
