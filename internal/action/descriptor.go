// Package action binds handlers to their owning module and provides the seam
// every interceptor attaches to.
//
// A Descriptor is a named slot holding a Handler. Decorators rewrite the slot:
// flag decorators annotate it, interceptor decorators (built with
// CreateDecorator) replace the handler with one that first binds the call
// arguments into a Bound value carrying the action name and masked
// parameters, then hands it to the interceptor.
package action

import (
	"context"
	"sync"
	"time"

	"github.com/jcmexdev/statesaga/internal/app"
	"github.com/jcmexdev/statesaga/internal/pkg/exception"
)

// Handler is an action body. It must return promptly once ctx is done.
type Handler func(ctx context.Context, args ...any) error

// Owner is the module an action belongs to.
type Owner interface {
	Name() string
	// App returns nil until the owner is registered.
	App() *app.App
}

// LifecycleKind marks a descriptor as one of the module lifecycle hooks.
type LifecycleKind int

const (
	NotLifecycle LifecycleKind = iota
	Enter
	Render
	Destroy
	Tick
)

func (k LifecycleKind) String() string {
	switch k {
	case Enter:
		return "onEnter"
	case Render:
		return "onRender"
	case Destroy:
		return "onDestroy"
	case Tick:
		return "onTick"
	default:
		return ""
	}
}

// ErrNotRegistered is returned when an action runs before its owner has been
// registered with an App.
var ErrNotRegistered error = exception.Protocol("action: owner is not registered")

// Decorator rewrites a descriptor.
type Decorator func(d *Descriptor)

// Gate admits or refuses a call before any decorator runs. When ok is true,
// release is called once the call returns.
type Gate func(ctx context.Context) (release func(), ok bool)

// Descriptor is a decoratable handler slot.
type Descriptor struct {
	mu        sync.RWMutex
	name      string
	owner     Owner
	handler   Handler
	lifecycle LifecycleKind
	interval  time.Duration
	gate      Gate
}

// New creates a descriptor for h owned by owner and applies decorators.
// Decorators are listed outermost first, like a stack of annotations: the
// first one wraps all the others at run time. A nil h is a no-op handler.
func New(owner Owner, h Handler, decorators ...Decorator) *Descriptor {
	if h == nil {
		h = func(context.Context, ...any) error { return nil }
	}
	d := &Descriptor{owner: owner, handler: h}
	for i := len(decorators) - 1; i >= 0; i-- {
		decorators[i](d)
	}
	return d
}

// Name is assigned at registration, after the descriptor is created, so it
// is read on every call rather than captured when decorating.
func (d *Descriptor) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

// SetName assigns the action name.
func (d *Descriptor) SetName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
}

func (d *Descriptor) Owner() Owner { return d.owner }

// Lifecycle reports which hook the descriptor was marked as.
func (d *Descriptor) Lifecycle() LifecycleKind {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lifecycle
}

// MarkLifecycle flags the descriptor as a lifecycle hook.
func (d *Descriptor) MarkLifecycle(kind LifecycleKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lifecycle = kind
}

// Interval is the minimum tick period; zero means the handler is not
// periodic.
func (d *Descriptor) Interval() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.interval
}

// MarkInterval sets the tick period.
func (d *Descriptor) MarkInterval(period time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interval = period
}

// SetGate installs g in front of the whole decorator chain. A refused call
// returns nil without reaching any decorator.
func (d *Descriptor) SetGate(g Gate) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gate = g
}

// Wrap replaces the handler with wrap(current).
func (d *Descriptor) Wrap(wrap func(Handler) Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = wrap(d.handler)
}

// Call runs the (decorated) handler.
func (d *Descriptor) Call(ctx context.Context, args ...any) error {
	if d.owner == nil || d.owner.App() == nil {
		return ErrNotRegistered
	}
	d.mu.RLock()
	h, gate := d.handler, d.gate
	d.mu.RUnlock()

	if gate != nil {
		release, ok := gate(ctx)
		if !ok {
			return nil
		}
		defer release()
	}
	return h(ctx, args...)
}
