// Package module implements the named owner of one slice of the shared state
// tree, together with its lifecycle hook slots.
//
// A Module does not store its state; it addresses the slice registered under
// its name in the App's store. Hooks and actions are action.Descriptors, so
// any interceptor can decorate them:
//
//	m := module.New("home", homeState{})
//	m.On(action.Tick, m.poll, interceptors.Mutex(), interceptors.Interval(5*time.Second))
//	if err := m.Register(a); err != nil { ... }
package module

import (
	"fmt"
	"sync"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/app"
	"github.com/jcmexdev/statesaga/internal/store"
)

// ErrNotRegistered is returned by state operations on a module that has not
// been registered with an App.
var ErrNotRegistered = action.ErrNotRegistered

var hookKinds = []action.LifecycleKind{action.Enter, action.Render, action.Destroy, action.Tick}

// Module owns the slice of type S stored under its name. S must round-trip
// through encoding/json: committed states, the initial one included, are
// JSON copies, so unexported fields are dropped and numbers held in
// interface fields become float64.
type Module[S any] struct {
	name    string
	initial S

	mu      sync.RWMutex
	app     *app.App
	hooks   map[action.LifecycleKind]*action.Descriptor
	actions map[string]*action.Descriptor

	// updateMu serializes read-mutate-commit cycles of this module.
	updateMu sync.Mutex
}

// New creates an unregistered module. Every hook slot starts as a no-op.
func New[S any](name string, initial S) *Module[S] {
	m := &Module[S]{
		name:    name,
		initial: initial,
		hooks:   make(map[action.LifecycleKind]*action.Descriptor, len(hookKinds)),
		actions: map[string]*action.Descriptor{},
	}
	for _, kind := range hookKinds {
		d := action.New(m, nil)
		d.MarkLifecycle(kind)
		m.hooks[kind] = d
	}
	return m
}

func (m *Module[S]) Name() string { return m.name }

// App returns the App the module is registered with, or nil.
func (m *Module[S]) App() *app.App {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.app
}

// On installs h, wrapped by decorators, in the hook slot of the given kind.
// A runner that already mounted the module keeps the hooks it started with.
func (m *Module[S]) On(kind action.LifecycleKind, h action.Handler, decorators ...action.Decorator) *action.Descriptor {
	d := action.New(m, h, decorators...)
	d.MarkLifecycle(kind)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[kind] = d
	if m.app != nil {
		d.SetName(m.name + "/" + kind.String())
	}
	return d
}

// Hook returns the descriptor in the slot of the given kind.
func (m *Module[S]) Hook(kind action.LifecycleKind) *action.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hooks[kind]
}

// Action declares a named handler owned by the module. It is called
// "<module>/<name>" once the module is registered.
func (m *Module[S]) Action(name string, h action.Handler, decorators ...action.Decorator) *action.Descriptor {
	d := action.New(m, h, decorators...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[name] = d
	if m.app != nil {
		d.SetName(m.name + "/" + name)
	}
	return d
}

// Register binds the module to a, names its hooks and actions, and commits
// the initial state as "@@<name>/@@init".
func (m *Module[S]) Register(a *app.App) error {
	initial, err := deepCopy(m.initial)
	if err != nil {
		return fmt.Errorf("module: %s: copy initial state: %w", m.name, err)
	}

	m.mu.Lock()
	if m.app != nil {
		m.mu.Unlock()
		return fmt.Errorf("module: %q is already registered", m.name)
	}
	if err := a.Claim(m.name); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("module: register: %w", err)
	}
	m.app = a
	for kind, d := range m.hooks {
		d.SetName(m.name + "/" + kind.String())
	}
	for name, d := range m.actions {
		d.SetName(m.name + "/" + name)
	}
	m.mu.Unlock()

	a.Store.Dispatch(store.SetStateAction{
		Module:      m.name,
		State:       initial,
		Description: "@@" + m.name + "/@@init",
	})
	a.Log.Debug("module registered", "module", m.name)
	return nil
}

// State returns the module's current slice. Before registration, or if the
// slice holds a value of another type, it returns the initial state.
func (m *Module[S]) State() S {
	a := m.App()
	if a == nil {
		return m.initial
	}
	v, ok := a.Store.ModuleState(m.name)
	if !ok {
		return m.initial
	}
	s, ok := v.(S)
	if !ok {
		return m.initial
	}
	return s
}

// SetNavigationPrevented asks the rendering layer to block (or stop
// blocking) navigation away from the current location.
func (m *Module[S]) SetNavigationPrevented(prevented bool) error {
	a := m.App()
	if a == nil {
		return ErrNotRegistered
	}
	a.Store.Dispatch(store.NavigationPreventionAction{Prevented: prevented})
	return nil
}
