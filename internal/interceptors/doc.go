// Package interceptors implements the cross-cutting behaviors an action
// handler can be wrapped with.
//
// Decorators are passed to action.New (or module.Action) outermost first:
//
//	m.On(action.Tick, poll,
//		interceptors.Loading(),
//		interceptors.Mutex(),
//		interceptors.Log(),
//		interceptors.RetryOnNetworkConnectionError(),
//		interceptors.Interval(5*time.Second),
//	)
//
// Loading belongs outermost so the indicator covers every retry attempt, and
// Mutex outside Retry so a retried call still holds its one exclusion slot.
package interceptors

import (
	"log/slog"

	"github.com/jcmexdev/statesaga/internal/action"
)

// opLog returns the operational logger of the owner's App, or the default.
func opLog(owner action.Owner) *slog.Logger {
	if owner != nil && owner.App() != nil && owner.App().Log != nil {
		return owner.App().Log
	}
	return slog.Default()
}
