package module

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/app"
	"github.com/jcmexdev/statesaga/internal/config"
	"github.com/jcmexdev/statesaga/internal/store"
)

type item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type homeState struct {
	Count int               `json:"count"`
	Name  string            `json:"name"`
	Items []item            `json:"items"`
	Tags  map[string]string `json:"tags"`
}

type commit struct {
	description string
	state       any
}

func newApp(t *testing.T, env string) (*app.App, *[]commit) {
	t.Helper()
	cfg := config.Default()
	cfg.Env = env
	a := app.New(cfg, store.Location{Pathname: "/home"})

	var commits []commit
	unsubscribe := a.Store.Subscribe(func(_, next store.State, act store.Action) {
		if set, ok := act.(store.SetStateAction); ok {
			commits = append(commits, commit{description: set.Description, state: set.State})
		}
	})
	t.Cleanup(unsubscribe)
	return a, &commits
}

func newHome(t *testing.T, env string) (*Module[homeState], *[]commit) {
	t.Helper()
	a, commits := newApp(t, env)
	m := New("home", homeState{Name: "start", Items: []item{{ID: 1, Title: "a"}}})
	require.NoError(t, m.Register(a))
	return m, commits
}

func TestRegister_CommitsInitialStateAndNamesHooks(t *testing.T) {
	a, commits := newApp(t, config.EnvDevelopment)
	m := New("home", homeState{Count: 1})
	fetch := m.Action("fetch", nil)
	tick := m.On(action.Tick, nil)

	assert.Nil(t, m.App())
	require.NoError(t, m.Register(a))

	require.Len(t, *commits, 1)
	assert.Equal(t, "@@home/@@init", (*commits)[0].description)
	assert.Equal(t, homeState{Count: 1}, m.State())

	assert.Equal(t, "home/fetch", fetch.Name())
	assert.Equal(t, "home/onTick", tick.Name())
	assert.Equal(t, "home/onEnter", m.Hook(action.Enter).Name())
	assert.Equal(t, action.Tick, m.Hook(action.Tick).Lifecycle())

	late := m.Action("late", nil)
	assert.Equal(t, "home/late", late.Name())
}

func TestRegister_NamesMustBeUnique(t *testing.T) {
	a, _ := newApp(t, config.EnvDevelopment)
	require.NoError(t, New("home", homeState{}).Register(a))

	err := New("home", homeState{}).Register(a)
	require.ErrorIs(t, err, app.ErrDuplicateModule)
}

func TestRegister_Twice(t *testing.T) {
	a, _ := newApp(t, config.EnvDevelopment)
	m := New("home", homeState{})
	require.NoError(t, m.Register(a))
	require.Error(t, m.Register(a))
}

func TestHooks_DefaultToNoOp(t *testing.T) {
	m, _ := newHome(t, config.EnvDevelopment)
	for _, kind := range []action.LifecycleKind{action.Enter, action.Render, action.Destroy, action.Tick} {
		require.NoError(t, m.Hook(kind).Call(context.Background()))
	}
}

func TestUnregistered(t *testing.T) {
	m := New("home", homeState{Count: 3})
	assert.Equal(t, 3, m.State().Count)

	_, err := m.Update(func(s *homeState) { s.Count++ })
	require.ErrorIs(t, err, ErrNotRegistered)
	require.ErrorIs(t, m.PushHistory(context.Background(), "/x", nil), ErrNotRegistered)
	require.ErrorIs(t, m.SetNavigationPrevented(true), ErrNotRegistered)
	require.ErrorIs(t, m.Hook(action.Enter).Call(context.Background()), action.ErrNotRegistered)
}

func TestUpdate_NoChangeNoCommit(t *testing.T) {
	m, commits := newHome(t, config.EnvDevelopment)
	*commits = nil

	changed, err := m.Update(func(s *homeState) {
		s.Count = 0
		s.Name = "start"
		s.Items[0].Title = "a"
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, *commits)
}

func TestUpdate_CommitsOnceWithChangedFields(t *testing.T) {
	m, commits := newHome(t, config.EnvDevelopment)
	*commits = nil

	changed, err := m.Update(func(s *homeState) {
		s.Count = 2
		s.Items[0].Title = "b"
	})
	require.NoError(t, err)
	assert.True(t, changed)

	require.Len(t, *commits, 1)
	assert.Equal(t, "@@home/setState[count,items]", (*commits)[0].description)
	assert.Equal(t, 2, m.State().Count)
	assert.Equal(t, "b", m.State().Items[0].Title)
}

func TestUpdate_DraftDoesNotAliasCommittedState(t *testing.T) {
	m, _ := newHome(t, config.EnvDevelopment)
	before := m.State()

	_, err := m.Update(func(s *homeState) { s.Items[0].Title = "changed" })
	require.NoError(t, err)

	assert.Equal(t, "a", before.Items[0].Title)
	assert.Equal(t, "changed", m.State().Items[0].Title)
}

func TestUpdate_ProductionOmitsFieldList(t *testing.T) {
	m, commits := newHome(t, config.EnvProduction)
	*commits = nil

	_, err := m.Update(func(s *homeState) { s.Tags = map[string]string{"k": "v"} })
	require.NoError(t, err)
	require.Len(t, *commits, 1)
	assert.Equal(t, "@@home/setState", (*commits)[0].description)
}

func TestSetState_CopiesGivenKeys(t *testing.T) {
	m, commits := newHome(t, config.EnvDevelopment)
	*commits = nil

	changed, err := m.SetState(map[string]any{"name": "next"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "@@home/setState[name]", (*commits)[0].description)
	assert.Equal(t, "next", m.State().Name)
	assert.Len(t, m.State().Items, 1)

	changed, err = m.SetState(map[string]any{"name": "next"})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSetState_TypeMismatchLeavesStateUntouched(t *testing.T) {
	m, commits := newHome(t, config.EnvDevelopment)
	*commits = nil

	changed, err := m.SetState(map[string]any{"count": "many"})
	require.Error(t, err)
	assert.False(t, changed)
	assert.Empty(t, *commits)
}

func TestSetNavigationPrevented(t *testing.T) {
	m, _ := newHome(t, config.EnvDevelopment)
	require.NoError(t, m.SetNavigationPrevented(true))
	assert.True(t, m.App().Store.Snapshot().NavigationPrevented)
}

func TestPushHistory(t *testing.T) {
	m, _ := newHome(t, config.EnvDevelopment)
	ctx := context.Background()
	st := m.App().Store

	require.NoError(t, m.PushHistory(ctx, "/list?page=2", map[string]int{"scroll": 10}))
	loc := st.Snapshot().Location
	assert.Equal(t, "/list", loc.Pathname)
	assert.Equal(t, "?page=2", loc.Search)
	assert.Equal(t, map[string]int{"scroll": 10}, loc.State)

	require.NoError(t, m.PushHistory(ctx, "/detail", PreserveState))
	assert.Equal(t, map[string]int{"scroll": 10}, st.Snapshot().Location.State)

	require.NoError(t, m.PushHistory(ctx, "/other", nil))
	assert.Nil(t, st.Snapshot().Location.State)

	require.NoError(t, m.PushState(ctx, "tab-2"))
	loc = st.Snapshot().Location
	assert.Equal(t, "/other", loc.Pathname)
	assert.Equal(t, "tab-2", loc.State)

	assert.Len(t, st.History(), 5)
}

func TestPushHistory_DoesNotCancelCaller(t *testing.T) {
	m, _ := newHome(t, config.EnvDevelopment)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, m.PushHistory(ctx, "/elsewhere", nil))
	assert.NoError(t, ctx.Err())
}

type metaState struct {
	Meta map[string]any `json:"meta"`
}

func TestUpdate_InterfaceValuesNoChangeNoCommit(t *testing.T) {
	a, commits := newApp(t, config.EnvDevelopment)
	m := New("meta", metaState{Meta: map[string]any{"page": 1, "filters": []any{"open"}}})
	require.NoError(t, m.Register(a))
	*commits = nil

	changed, err := m.Update(func(*metaState) {})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, *commits)

	changed, err = m.Update(func(s *metaState) { s.Meta["page"] = 2 })
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, *commits, 1)
	assert.Equal(t, "@@meta/setState[meta]", (*commits)[0].description)

	*commits = nil
	changed, err = m.SetState(map[string]any{"meta": map[string]any{"page": 2, "filters": []any{"open"}}})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, *commits)
}

func TestRegister_InitialStateIsCommittedAsCopy(t *testing.T) {
	a, _ := newApp(t, config.EnvDevelopment)
	initial := metaState{Meta: map[string]any{"page": 1}}
	m := New("meta", initial)
	require.NoError(t, m.Register(a))

	initial.Meta["page"] = 99
	assert.Equal(t, float64(1), m.State().Meta["page"])
}

type hiddenState struct {
	Count int `json:"count"`
	cache string
}

func TestUpdate_UnexportedFieldsIgnored(t *testing.T) {
	a, commits := newApp(t, config.EnvDevelopment)
	m := New("hidden", hiddenState{cache: "warm"})
	require.NoError(t, m.Register(a))
	*commits = nil

	changed, err := m.Update(func(s *hiddenState) { s.cache = "cold" })
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = m.Update(func(s *hiddenState) { s.Count++ })
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, *commits, 1)
	assert.Equal(t, "@@hidden/setState[count]", (*commits)[0].description)
	assert.Equal(t, 1, m.State().Count)
}
