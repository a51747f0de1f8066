package interceptors

import (
	"context"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/eventlog"
	"github.com/jcmexdev/statesaga/internal/pkg/exception"
)

// SilentOnNetworkConnectionError logs a network connection failure and
// completes normally instead of returning it. Any other error is returned
// unchanged.
func SilentOnNetworkConnectionError() action.Decorator {
	return action.CreateDecorator(func(ctx context.Context, h *action.Bound, owner action.Owner) error {
		err := h.Run(ctx)
		if err == nil || exception.IsProtocol(err) || !exception.IsNetworkConnection(err) {
			return err
		}
		owner.App().Logger.LogException(err, map[string]string{
			eventlog.KeyPayload:       h.MaskedParams,
			eventlog.KeyProcessMethod: "silent",
		})
		return nil
	})
}
