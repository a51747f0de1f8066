package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetState(t *testing.T) {
	s := New(Location{Pathname: "/"})

	var types []string
	unsubscribe := s.Subscribe(func(prev, next State, a Action) {
		types = append(types, a.Type())
	})

	s.Dispatch(SetStateAction{Module: "home", State: map[string]int{"count": 1}, Description: "@@home/setState[count]"})

	v, ok := s.ModuleState("home")
	require.True(t, ok)
	assert.Equal(t, map[string]int{"count": 1}, v)
	assert.Equal(t, []string{"@@home/setState[count]"}, types)

	unsubscribe()
	s.Dispatch(SetStateAction{Module: "home", State: nil, Description: "@@home/reset"})
	assert.Len(t, types, 1)
}

func TestStore_Loading(t *testing.T) {
	s := New(Location{})

	s.Dispatch(LoadingAction{Identifier: "global", Show: true})
	s.Dispatch(LoadingAction{Identifier: "global", Show: true})
	assert.True(t, s.Snapshot().IsLoading("global"))

	s.Dispatch(LoadingAction{Identifier: "global"})
	assert.True(t, s.Snapshot().IsLoading("global"))

	s.Dispatch(LoadingAction{Identifier: "global"})
	assert.False(t, s.Snapshot().IsLoading("global"))

	// Never goes negative.
	s.Dispatch(LoadingAction{Identifier: "global"})
	s.Dispatch(LoadingAction{Identifier: "global", Show: true})
	assert.True(t, s.Snapshot().IsLoading("global"))
}

func TestStore_NavigationPrevention(t *testing.T) {
	s := New(Location{})
	s.Dispatch(NavigationPreventionAction{Prevented: true})
	assert.True(t, s.Snapshot().NavigationPrevented)
	s.Dispatch(NavigationPreventionAction{Prevented: false})
	assert.False(t, s.Snapshot().NavigationPrevented)
}

func TestStore_Push(t *testing.T) {
	s := New(Location{Pathname: "/home"})

	s.Dispatch(PushAction{URL: "/orders?page=2", State: "tab-a"})
	loc := s.Snapshot().Location
	assert.Equal(t, "/orders", loc.Pathname)
	assert.Equal(t, "?page=2", loc.Search)
	assert.Equal(t, "tab-a", loc.State)

	s.Dispatch(PushAction{URL: "/orders/1", PreserveState: true})
	assert.Equal(t, "tab-a", s.Snapshot().Location.State)

	s.Dispatch(PushAction{URL: "/orders/2"})
	assert.Nil(t, s.Snapshot().Location.State)

	history := s.History()
	require.Len(t, history, 4)
	assert.Equal(t, "/home", history[0].URL())
	assert.Equal(t, "/orders?page=2", history[1].URL())
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := New(Location{})
	snap := s.Snapshot()
	snap.App["intruder"] = 1

	_, ok := s.ModuleState("intruder")
	assert.False(t, ok)
}

func TestStore_ListenersSeePrevAndNext(t *testing.T) {
	s := New(Location{Pathname: "/a"})
	var from, to string
	s.Subscribe(func(prev, next State, _ Action) {
		from, to = prev.Location.URL(), next.Location.URL()
	})

	s.Dispatch(PushAction{URL: "/b"})
	assert.Equal(t, "/a", from)
	assert.Equal(t, "/b", to)
}

func TestStore_AppJSON(t *testing.T) {
	s := New(Location{})
	s.Dispatch(SetStateAction{Module: "home", State: map[string]int{"count": 2}, Description: "x"})
	assert.JSONEq(t, `{"home":{"count":2}}`, s.AppJSON())
}
