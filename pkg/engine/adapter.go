package engine

import (
	"context"

	"go.uber.org/atomic"

	"github.com/navguard-dev/navguard/pkg/guard"
)

// Adapter wraps an external engine: it wires the guard orchestrator into
// the engine's redirect hook and mirrors the engine's location stream so
// callers can read the current location without touching the engine.
type Adapter struct {
	engine   Engine
	orch     *guard.Orchestrator
	deps     guard.Deps
	location atomic.String
	started  atomic.Bool
	unsub    func()
	done     chan struct{}
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithDeps sets the dependency bag handed to guards evaluated through
// the engine's redirect hook.
func WithDeps(deps guard.Deps) AdapterOption {
	return func(a *Adapter) {
		a.deps = deps
	}
}

// NewAdapter wraps engine with the given orchestrator.
func NewAdapter(engine Engine, orch *guard.Orchestrator, opts ...AdapterOption) *Adapter {
	a := &Adapter{engine: engine, orch: orch, done: make(chan struct{})}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start installs the redirect hook and begins mirroring the engine's
// location stream. Calling Start twice is a no-op.
func (a *Adapter) Start(ctx context.Context) {
	if !a.started.CompareAndSwap(false, true) {
		return
	}

	handler := a.orch.RedirectHandler(func(ctx context.Context, st guard.EngineState) guard.Request {
		return guard.Request{
			Destination: st.Location,
			RouteName:   st.RouteName,
			PathParams:  st.PathParams,
			QueryParams: st.QueryParams,
			Payload:     st.Extra,
			Deps:        a.deps,
		}
	})
	a.engine.SetRedirectHook(func(ctx context.Context, st *State) string {
		return handler(ctx, guard.EngineState{
			Location:    st.Location,
			RouteName:   st.RouteName,
			PathParams:  st.PathParams,
			QueryParams: st.QueryParams,
			Extra:       st.Extra,
		})
	})

	a.location.Store(a.engine.Location())
	locations, unsub := a.engine.Subscribe()
	a.unsub = unsub

	go func() {
		defer close(a.done)
		for {
			select {
			case loc, ok := <-locations:
				if !ok {
					return
				}
				a.location.Store(loc)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the location subscription.
func (a *Adapter) Stop() {
	if !a.started.Load() {
		return
	}
	if a.unsub != nil {
		a.unsub()
	}
	<-a.done
}

// Location returns the last location mirrored from the engine.
func (a *Adapter) Location() string {
	return a.location.Load()
}

// Go delegates to the engine; guards run inside its redirect hook.
func (a *Adapter) Go(ctx context.Context, location string, extra any) {
	a.engine.Go(ctx, location, extra)
}

// Push delegates to the engine.
func (a *Adapter) Push(ctx context.Context, location string, extra any) {
	a.engine.Push(ctx, location, extra)
}

// Replace delegates to the engine.
func (a *Adapter) Replace(ctx context.Context, location string, extra any) {
	a.engine.Replace(ctx, location, extra)
}

// Pop delegates to the engine.
func (a *Adapter) Pop() bool {
	return a.engine.Pop()
}
