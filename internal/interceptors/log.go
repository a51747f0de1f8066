package interceptors

import (
	"context"
	"errors"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/eventlog"
)

// Log records an event named after the action, with its masked parameters,
// when the handler starts. The event's elapsed time is recorded when the
// handler returns successfully or is cancelled. A failure is logged through
// the exception path and returned unchanged.
func Log() action.Decorator {
	return action.CreateDecorator(func(ctx context.Context, h *action.Bound, owner action.Owner) error {
		logger := owner.App().Logger
		finalize := logger.Log(h.ActionName, map[string]string{eventlog.KeyParams: h.MaskedParams})

		err := h.Run(ctx)
		if err != nil && !cancelled(ctx, err) {
			logger.LogException(err, map[string]string{eventlog.KeyParams: h.MaskedParams})
			return err
		}
		if ferr := finalize(); ferr != nil {
			return ferr
		}
		return err
	})
}

// cancelled reports whether err is ctx's own cancellation.
func cancelled(ctx context.Context, err error) bool {
	cerr := ctx.Err()
	return cerr != nil && errors.Is(err, cerr)
}
