// Package app is the process container shared by every module: the state
// store, the event logger and configuration.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jcmexdev/statesaga/internal/config"
	"github.com/jcmexdev/statesaga/internal/eventlog"
	"github.com/jcmexdev/statesaga/internal/pkg/mask"
	"github.com/jcmexdev/statesaga/internal/store"
)

// ErrDuplicateModule is returned when two modules claim the same name.
var ErrDuplicateModule = errors.New("app: module name already registered")

// App wires the collaborators modules depend on.
type App struct {
	Config *config.Config
	Store  *store.Store
	Logger *eventlog.Logger
	Log    *slog.Logger

	mu      sync.Mutex
	modules map[string]struct{}
}

// New builds an App. A nil cfg uses config.Default. The event logger
// serializes the store's module slices into exception events.
func New(cfg *config.Config, initial store.Location) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	st := store.New(initial)
	return &App{
		Config:  cfg,
		Store:   st,
		Logger:  eventlog.New(eventlog.WithStateSnapshot(st.AppJSON)),
		Log:     slog.Default(),
		modules: map[string]struct{}{},
	}
}

// Claim reserves a module name. Module names key the shared state tree, so
// they must be unique for the lifetime of the App.
func (a *App) Claim(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, taken := a.modules[name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateModule, name)
	}
	a.modules[name] = struct{}{}
	return nil
}

// Modules returns the claimed module names.
func (a *App) Modules() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.modules))
	for name := range a.modules {
		out = append(out, name)
	}
	return out
}

// MaskParams serializes handler arguments with the configured keywords
// redacted.
func (a *App) MaskParams(args ...any) string {
	return mask.Stringify(a.Config.MaskedKeywords, mask.Output, args...)
}
