package interceptors

import (
	"context"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/store"
)

// DefaultLoadingIdentifier is the indicator toggled when Loading is given
// no identifier.
const DefaultLoadingIdentifier = "global"

// Loading turns the named loading indicator on while the handler runs. The
// indicator is turned off on every exit path, including cancellation.
func Loading(identifier ...string) action.Decorator {
	id := DefaultLoadingIdentifier
	if len(identifier) > 0 && identifier[0] != "" {
		id = identifier[0]
	}
	return action.CreateDecorator(func(ctx context.Context, h *action.Bound, owner action.Owner) error {
		st := owner.App().Store
		st.Dispatch(store.LoadingAction{Identifier: id, Show: true})
		defer st.Dispatch(store.LoadingAction{Identifier: id, Show: false})
		return h.Run(ctx)
	})
}
