// Package lifecycle drives a module's hooks the way a rendering layer would:
// onEnter once on mount, onRender on mount and on every location change,
// onTick on its declared interval, and onDestroy after unmount.
package lifecycle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/statesaga/internal/action"
	"github.com/jcmexdev/statesaga/internal/pkg/exception"
	"github.com/jcmexdev/statesaga/internal/store"
)

// ErrUnmounted is returned by Unmount on a runner that was already
// unmounted.
var ErrUnmounted error = exception.Protocol("lifecycle: component already unmounted")

// Component is anything with lifecycle hook slots, such as a module.Module.
type Component interface {
	action.Owner
	Hook(kind action.LifecycleKind) *action.Descriptor
}

// Runner is one mount of a component.
type Runner struct {
	id   string
	comp Component
	log  *slog.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
	renders     chan store.Location

	once sync.Once
}

// Mount starts the component's hooks. onEnter receives props; onRender
// receives the current store.Location. Hooks run on their own goroutines
// until Unmount, with ctx as the parent of their context.
func Mount(ctx context.Context, comp Component, props ...any) (*Runner, error) {
	a := comp.App()
	if a == nil {
		return nil, action.ErrNotRegistered
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &Runner{
		id:      uuid.NewString(),
		comp:    comp,
		log:     a.Log.With("module", comp.Name()),
		ctx:     runCtx,
		cancel:  cancel,
		renders: make(chan store.Location, 1),
	}
	r.log = r.log.With("mount_id", r.id)

	// Subscribe before reading the location so no push is missed.
	r.unsubscribe = a.Store.Subscribe(r.onDispatch)
	initial := a.Store.Snapshot().Location

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(initial, props)
	}()

	r.log.DebugContext(ctx, "component mounted")
	return r, nil
}

// ID identifies this mount in operational logs.
func (r *Runner) ID() string { return r.id }

// Unmount cancels every running hook, waits for them to return, then runs
// onDestroy with ctx.
func (r *Runner) Unmount(ctx context.Context) error {
	err := ErrUnmounted
	r.once.Do(func() {
		r.unsubscribe()
		r.cancel()
		r.wg.Wait()

		err = r.call(ctx, action.Destroy)
		r.log.DebugContext(ctx, "component unmounted")
	})
	return err
}

func (r *Runner) run(initial store.Location, props []any) {
	if err := r.call(r.ctx, action.Enter, props...); err != nil {
		return
	}

	if tick := r.comp.Hook(action.Tick); tick.Interval() > 0 {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.tickLoop(tick)
		}()
	}

	_ = r.call(r.ctx, action.Render, initial)
	for {
		select {
		case <-r.ctx.Done():
			return
		case loc := <-r.renders:
			_ = r.call(r.ctx, action.Render, loc)
		}
	}
}

// tickLoop waits the full period after each tick returns, so ticks never
// overlap however long one takes.
func (r *Runner) tickLoop(tick *action.Descriptor) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-timer.C:
		}
		_ = r.call(r.ctx, action.Tick)
		timer.Reset(tick.Interval())
	}
}

// onDispatch queues a render for every new location. Only the latest
// location is kept while a render is running.
func (r *Runner) onDispatch(prev, next store.State, a store.Action) {
	if _, ok := a.(store.PushAction); !ok {
		return
	}
	if r.ctx.Err() != nil {
		return
	}
	select {
	case r.renders <- next.Location:
		return
	default:
	}
	select {
	case <-r.renders:
	default:
	}
	select {
	case r.renders <- next.Location:
	default:
	}
}

func (r *Runner) call(ctx context.Context, kind action.LifecycleKind, args ...any) error {
	hook := r.comp.Hook(kind)
	if hook == nil {
		return nil
	}
	err := hook.Call(ctx, args...)
	if err != nil && ctx.Err() == nil {
		r.log.ErrorContext(ctx, "hook failed", "hook", kind.String(), "action", hook.Name(), "error", err)
	}
	return err
}
