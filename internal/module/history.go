package module

import (
	"context"

	"github.com/jcmexdev/statesaga/internal/store"
)

type preserveState struct{}

// PreserveState, passed as the state of PushHistory, keeps the state of the
// current history entry.
var PreserveState any = preserveState{}

// PushHistory requests navigation to url carrying state. A nil state pushes
// the entry without state.
//
// The request is only dispatched: the caller is not cancelled by it, even if
// the rendering layer reacts by unmounting the module.
func (m *Module[S]) PushHistory(ctx context.Context, url string, state any) error {
	a := m.App()
	if a == nil {
		return ErrNotRegistered
	}
	push := store.PushAction{URL: url, State: state}
	if _, ok := state.(preserveState); ok {
		push = store.PushAction{URL: url, PreserveState: true}
	}
	a.Log.DebugContext(ctx, "history push", "module", m.name, "url", url)
	a.Store.Dispatch(push)
	return nil
}

// PushState re-pushes the current URL with new state.
func (m *Module[S]) PushState(ctx context.Context, state any) error {
	a := m.App()
	if a == nil {
		return ErrNotRegistered
	}
	return m.PushHistory(ctx, a.Store.Snapshot().Location.URL(), state)
}
