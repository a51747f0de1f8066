package interceptors

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jcmexdev/statesaga/internal/action"
)

// Lifecycle marks a handler as one of the module hooks. It does not wrap
// the handler.
func Lifecycle(kind action.LifecycleKind) action.Decorator {
	return func(d *action.Descriptor) {
		d.MarkLifecycle(kind)
	}
}

// Interval declares the tick period of a handler. The lifecycle runner
// waits period after each invocation completes before starting the next.
// The descriptor is also gated so that a call made while a previous one is
// still running is dropped, whatever scheduled it. The gate sits in front of
// every decorator, so a dropped call neither toggles Loading nor logs.
func Interval(period time.Duration) action.Decorator {
	return func(d *action.Descriptor) {
		d.MarkInterval(period)

		var running atomic.Bool
		d.SetGate(func(ctx context.Context) (func(), bool) {
			if !running.CompareAndSwap(false, true) {
				opLog(d.Owner()).DebugContext(ctx, "tick dropped: previous invocation still running",
					"action", d.Name())
				return nil, false
			}
			return func() { running.Store(false) }, true
		})
	}
}
