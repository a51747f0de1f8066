package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/statesaga/internal/config"
	"github.com/jcmexdev/statesaga/internal/store"
)

func TestApp_Claim(t *testing.T) {
	a := New(nil, store.Location{})

	require.NoError(t, a.Claim("home"))
	require.NoError(t, a.Claim("orders"))

	err := a.Claim("home")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateModule))
	require.ElementsMatch(t, []string{"home", "orders"}, a.Modules())
}

func TestApp_MaskParams(t *testing.T) {
	cfg := config.Default()
	cfg.MaskedKeywords = []string{"password"}
	a := New(cfg, store.Location{})

	got := a.MaskParams(map[string]string{"user": "amy", "password": "x"})
	require.Equal(t, `{"password":"***","user":"amy"}`, got)
	require.Equal(t, "", a.MaskParams())
}

func TestApp_LoggerSnapshotsStore(t *testing.T) {
	a := New(nil, store.Location{})
	a.Store.Dispatch(store.SetStateAction{Module: "home", State: map[string]int{"n": 1}, Description: "init"})

	a.Logger.LogException(errors.New("boom"), nil)
	require.JSONEq(t, `{"home":{"n":1}}`, a.Logger.Collect()[0].Context["appState"])
}
