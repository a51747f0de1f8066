package eventlog

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jcmexdev/statesaga/internal/pkg/exception"
)

// ErrEventFrozen is returned by a Finalizer invoked more than once.
var ErrEventFrozen error = exception.Protocol("this log event has frozen, and cannot record elapsed time again")

// Logger is the event buffer. It is safe for concurrent use.
type Logger struct {
	mu          sync.Mutex
	environment EnvironmentContext
	counter     uint64
	queue       []*Event

	now      func() time.Time
	appState func() string
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock overrides the time source used for ids, dates and elapsed times.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// WithStateSnapshot sets the function used to serialize global application
// state into exception events.
func WithStateSnapshot(snapshot func() string) Option {
	return func(l *Logger) {
		l.appState = snapshot
	}
}

// New creates a Logger. The id counter starts at the current wall-clock time
// in milliseconds.
func New(opts ...Option) *Logger {
	l := &Logger{
		environment: EnvironmentContext{},
		now:         time.Now,
		appState:    func() string { return "{}" },
	}
	for _, opt := range opts {
		opt(l)
	}
	l.counter = uint64(l.now().UnixMilli())
	return l
}

// SetContext replaces the environment context wholesale.
func (l *Logger) SetContext(ctx EnvironmentContext) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.environment = ctx
}

// Log records a generic event.
func (l *Logger) Log(eventType string, extra map[string]string) Finalizer {
	return l.appendLog(eventType, extra, "")
}

// LogException records an error event. err is classified with
// exception.From and the event context is shaped by its kind:
//   - API: requestURL and statusCode
//   - Lifecycle: stackTrace
//   - any kind: a serialized snapshot of global application state
//
// extra is merged first, so classification keys win over it.
func (l *Logger) LogException(err error, extra map[string]string) Finalizer {
	if err == nil {
		err = exception.Runtime("unknown error")
	}
	exc := exception.From(err)

	ctx := make(map[string]string, len(extra)+3)
	for k, v := range extra {
		ctx[k] = v
	}
	ctx[KeyAppState] = l.appState()
	switch exc.Kind {
	case exception.KindAPI:
		ctx[KeyRequestURL] = exc.RequestURL
		ctx[KeyStatusCode] = strconv.Itoa(exc.StatusCode)
	case exception.KindLifecycle:
		ctx[KeyStackTrace] = exc.ComponentStack
	}

	// The outermost message keeps any wrapping context.
	return l.appendLog(TypeError, ctx, err.Error())
}

// Collect returns a snapshot of the buffered events in append order.
// Later appends and finalizations do not affect the returned slice.
func (l *Logger) Collect() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Empty clears the buffer.
func (l *Logger) Empty() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = nil
}

// Drain collects and empties the buffer atomically.
func (l *Logger) Drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := l.snapshotLocked()
	l.queue = nil
	return events
}

// requeue puts events back at the head of the buffer after a failed flush.
func (l *Logger) requeue(events []Event) {
	if len(events) == 0 {
		return
	}
	restored := make([]*Event, 0, len(events)+len(l.queue))
	for i := range events {
		e := events[i]
		restored = append(restored, &e)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(restored, l.queue...)
}

func (l *Logger) snapshotLocked() []Event {
	out := make([]Event, len(l.queue))
	for i, e := range l.queue {
		out[i] = *e
		if e.ElapsedTime != nil {
			d := *e.ElapsedTime
			out[i].ElapsedTime = &d
		}
	}
	return out
}

func (l *Logger) appendLog(eventType string, extra map[string]string, errorMessage string) Finalizer {
	l.mu.Lock()
	env := l.environment
	l.mu.Unlock()

	// Lazy values run outside the lock; they may read arbitrary state.
	complete := make(map[string]string, len(extra)+len(env))
	for k, v := range extra {
		complete[k] = v
	}
	for k, v := range env {
		complete[k] = v.resolve()
	}

	l.mu.Lock()
	event := &Event{
		ID:           l.nextIDLocked(),
		Date:         l.now(),
		Type:         eventType,
		Context:      complete,
		ErrorMessage: errorMessage,
	}
	l.queue = append(l.queue, event)
	l.mu.Unlock()

	return func() error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if event.ElapsedTime != nil {
			return fmt.Errorf("eventlog: finalize %s: %w", event.ID, ErrEventFrozen)
		}
		elapsed := l.now().Sub(event.Date)
		if elapsed < 0 {
			elapsed = 0
		}
		event.ElapsedTime = &elapsed
		return nil
	}
}

func (l *Logger) nextIDLocked() string {
	id := strconv.FormatUint(l.counter, 16)
	l.counter++
	return id
}

// IsFrozen reports whether err came from finalizing an event twice.
func IsFrozen(err error) bool {
	return errors.Is(err, ErrEventFrozen)
}
