package interceptors

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/eventlog"
	"github.com/jcmexdev/statesaga/internal/pkg/exception"
)

type retryOptions struct {
	maxRetries int
	interval   time.Duration
}

// RetryOption configures RetryOnNetworkConnectionError.
type RetryOption func(*retryOptions)

// WithMaxRetries bounds the number of retries. The handler runs at most
// n+1 times.
func WithMaxRetries(n int) RetryOption {
	return func(o *retryOptions) { o.maxRetries = n }
}

// WithInterval sets the constant wait between attempts.
func WithInterval(d time.Duration) RetryOption {
	return func(o *retryOptions) { o.interval = d }
}

// RetryOnNetworkConnectionError re-runs the handler with the same arguments
// when it fails with a network connection error. Unless overridden, the
// bound and interval come from the App config (RETRY_MAX_ATTEMPTS,
// RETRY_INTERVAL).
//
// Every consumed failure is logged through the exception path with
// process_method "will retry #n". Other errors are returned at once, and
// the last failure is returned once the bound is reached. Cancellation
// stops the retries and returns ctx.Err().
func RetryOnNetworkConnectionError(opts ...RetryOption) action.Decorator {
	o := retryOptions{maxRetries: -1, interval: -1}
	for _, opt := range opts {
		opt(&o)
	}

	return action.CreateDecorator(func(ctx context.Context, h *action.Bound, owner action.Owner) error {
		maxRetries, interval := o.maxRetries, o.interval
		cfg := owner.App().Config
		if maxRetries < 0 {
			maxRetries = cfg.RetryMaxAttempts
		}
		if interval < 0 {
			interval = cfg.RetryInterval
		}

		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(maxRetries)),
			ctx,
		)

		operation := func() error {
			err := h.Run(ctx)
			if err == nil {
				return nil
			}
			if exception.IsNetworkConnection(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		retry := 0
		notify := func(err error, _ time.Duration) {
			retry++
			owner.App().Logger.LogException(err, map[string]string{
				eventlog.KeyPayload:       h.MaskedParams,
				eventlog.KeyProcessMethod: fmt.Sprintf("will retry #%d", retry),
			})
		}

		return backoff.RetryNotify(operation, policy, notify)
	})
}
