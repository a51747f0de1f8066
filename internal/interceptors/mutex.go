package interceptors

import (
	"context"
	"fmt"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/pkg/locker"
)

type mutexOptions struct {
	key    string
	locker locker.Locker
}

// MutexOption configures Mutex.
type MutexOption func(*mutexOptions)

// WithKey sets the exclusion key. Handlers sharing a key and a Locker
// exclude each other. The default key is the action name.
func WithKey(key string) MutexOption {
	return func(o *mutexOptions) { o.key = key }
}

// WithLocker sets the slot registry. The default is an in-process registry
// private to the decorated handler.
func WithLocker(l locker.Locker) MutexOption {
	return func(o *mutexOptions) { o.locker = l }
}

// Mutex allows at most one in-flight invocation per key. A call made while
// the slot is held is dropped: it returns nil without running the handler.
func Mutex(opts ...MutexOption) action.Decorator {
	o := mutexOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locker == nil {
		o.locker = locker.NewMemory()
	}

	return action.CreateDecorator(func(ctx context.Context, h *action.Bound, owner action.Owner) error {
		key := o.key
		if key == "" {
			key = h.ActionName
		}

		release, ok, err := o.locker.TryLock(ctx, key)
		if err != nil {
			return fmt.Errorf("interceptors: mutex %s: %w", key, err)
		}
		if !ok {
			opLog(owner).DebugContext(ctx, "invocation dropped: mutex held",
				"action", h.ActionName, "key", key)
			return nil
		}
		defer release()

		return h.Run(ctx)
	})
}
