package guard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/navguard-dev/navguard/pkg/pattern"
)

// Request describes one navigation attempt to be evaluated.
type Request struct {
	// Destination is the requested location, query string included.
	Destination string

	// RouteName selects the route-specific guard list. May be empty.
	RouteName string

	// PathParams are the parameters extracted from the matched route.
	PathParams map[string]string

	// QueryParams are the decoded query parameters.
	QueryParams map[string]string

	// Payload is the caller-supplied navigation payload.
	Payload any

	// Deps is the dependency bag exposed to guards.
	Deps Deps
}

// Orchestrator owns a global guard list and per-route-name guard lists,
// and evaluates them for navigation attempts.
//
// An orchestrator is always an explicit instance passed by the caller.
// There is deliberately no package-level default: multiple navigators
// (for example in tests) must not share registries.
type Orchestrator struct {
	mu     sync.RWMutex
	global []Guard
	routes map[string][]Guard
	logger *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the logger used for debug-level evaluation traces.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an empty orchestrator.
func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		routes: make(map[string][]Guard),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AddGlobal registers a guard that is considered for every navigation.
func (o *Orchestrator) AddGlobal(g Guard) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.global = append(o.global, g)
}

// RemoveGlobal removes a previously registered global guard.
// Guards are compared by identity.
func (o *Orchestrator) RemoveGlobal(g Guard) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.global = removeGuard(o.global, g)
}

// AddRoute registers a guard under a route name.
func (o *Orchestrator) AddRoute(routeName string, g Guard) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes[routeName] = append(o.routes[routeName], g)
}

// RemoveRoute removes a guard from a route's list.
func (o *Orchestrator) RemoveRoute(routeName string, g Guard) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes[routeName] = removeGuard(o.routes[routeName], g)
	if len(o.routes[routeName]) == 0 {
		delete(o.routes, routeName)
	}
}

// ClearRoute drops every guard registered under a route name.
func (o *Orchestrator) ClearRoute(routeName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.routes, routeName)
}

// Globals returns a copy of the global guard list in registration order.
func (o *Orchestrator) Globals() []Guard {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Guard(nil), o.global...)
}

// RouteGuards returns a copy of the guard list for a route name.
func (o *Orchestrator) RouteGuards(routeName string) []Guard {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Guard(nil), o.routes[routeName]...)
}

// Evaluate runs the applicable guards for one navigation attempt.
//
// Guards are collected from the global list plus the route-specific list
// for req.RouteName, stable-sorted by descending priority (ties preserve
// registration order), and evaluated sequentially. The first non-Allow
// result short-circuits the pass. A guard error or panic is converted to
// a Reject embedding the failure, never a silent allow. If every guard
// allows, or none apply, the result is Allow.
//
// A single evaluation pass is authoritative for one navigation attempt;
// there is no retry and a redirect result is not re-evaluated against
// its target.
func (o *Orchestrator) Evaluate(ctx context.Context, req Request) Result {
	guards := o.collect(req.RouteName)
	path := pattern.StripQuery(req.Destination)

	for _, g := range guards {
		if !g.ShouldActivateFor(path) {
			o.logger.Debug("guard skipped", "path", path, "priority", g.Priority())
			continue
		}

		gc := &Context{
			Destination: req.Destination,
			Location:    path,
			RouteName:   req.RouteName,
			PathParams:  req.PathParams,
			QueryParams: req.QueryParams,
			Payload:     req.Payload,
			Deps:        req.Deps,
		}

		result, err := safeActivate(ctx, g, gc)
		if err != nil {
			o.logger.Debug("guard failed", "path", path, "error", err)
			return RejectWith(fmt.Sprintf("guard error: %v", err))
		}
		if !result.IsAllow() {
			o.logger.Debug("guard short-circuit", "path", path, "result", result.String())
			return result
		}
	}
	return Allow()
}

// EvaluateLeave runs the deactivation side of applicable guards when a
// navigation is about to leave req.Destination (the current location).
// Guards that do not implement Deactivator are skipped. Ordering,
// short-circuiting, and error conversion follow Evaluate.
func (o *Orchestrator) EvaluateLeave(ctx context.Context, req Request) Result {
	guards := o.collect(req.RouteName)
	path := pattern.StripQuery(req.Destination)

	for _, g := range guards {
		d, ok := g.(Deactivator)
		if !ok || !g.ShouldActivateFor(path) {
			continue
		}

		gc := &Context{
			Destination: req.Destination,
			Location:    path,
			RouteName:   req.RouteName,
			PathParams:  req.PathParams,
			QueryParams: req.QueryParams,
			Payload:     req.Payload,
			Deps:        req.Deps,
		}

		result, err := safeDeactivate(ctx, d, gc)
		if err != nil {
			return RejectWith(fmt.Sprintf("guard error: %v", err))
		}
		if !result.IsAllow() {
			return result
		}
	}
	return Allow()
}

// collect snapshots the applicable guards in evaluation order.
func (o *Orchestrator) collect(routeName string) []Guard {
	o.mu.RLock()
	guards := make([]Guard, 0, len(o.global)+len(o.routes[routeName]))
	guards = append(guards, o.global...)
	if routeName != "" {
		guards = append(guards, o.routes[routeName]...)
	}
	o.mu.RUnlock()

	sort.SliceStable(guards, func(i, j int) bool {
		return guards[i].Priority() > guards[j].Priority()
	})
	return guards
}

// safeActivate invokes a guard, converting a panic into an error so a
// misbehaving guard degrades to a rejection instead of tearing down the
// navigator.
func safeActivate(ctx context.Context, g Guard, gc *Context) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("guard panic: %v", r)
		}
	}()
	return g.Activate(ctx, gc)
}

func safeDeactivate(ctx context.Context, d Deactivator, gc *Context) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("guard panic: %v", r)
		}
	}()
	return d.Deactivate(ctx, gc)
}

// EngineState is the engine's view of a pending navigation, as handed to
// a redirect hook by an externally supplied router engine.
type EngineState struct {
	Location    string
	RouteName   string
	PathParams  map[string]string
	QueryParams map[string]string
	Extra       any
}

// RedirectHandler returns a function suitable for wiring into an external
// router engine's redirect hook. The build function converts the engine
// state into an evaluation request; a nil build uses the state verbatim
// with an empty dependency bag.
//
// The handler maps Allow to "" (no redirect), Redirect to the target
// path, and Reject to "" as well; the engine cannot block, so surfacing
// a rejection (for example routing to an error screen) is the caller's
// responsibility.
func (o *Orchestrator) RedirectHandler(build func(ctx context.Context, st EngineState) Request) func(ctx context.Context, st EngineState) string {
	return func(ctx context.Context, st EngineState) string {
		var req Request
		if build != nil {
			req = build(ctx, st)
		} else {
			req = Request{
				Destination: st.Location,
				RouteName:   st.RouteName,
				PathParams:  st.PathParams,
				QueryParams: st.QueryParams,
				Payload:     st.Extra,
			}
		}
		result := o.Evaluate(ctx, req)
		if redirect, ok := result.Redirect(); ok {
			return redirect.Path
		}
		return ""
	}
}

func removeGuard(guards []Guard, g Guard) []Guard {
	for i, existing := range guards {
		if existing == g {
			return append(guards[:i], guards[i+1:]...)
		}
	}
	return guards
}
