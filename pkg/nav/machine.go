package nav

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/navguard-dev/navguard/pkg/guard"
	"github.com/navguard-dev/navguard/pkg/pattern"
)

// popUntilLimit bounds PopUntil so it terminates even when the predicate
// never matches. This is a defensive bound, not a semantic contract: a
// predicate that matches nothing simply leaves the stack at its root.
const popUntilLimit = 100

// subscriberBuffer is the channel capacity handed to Subscribe. Events
// for a subscriber whose buffer is full are dropped.
const subscriberBuffer = 16

// entry is one element of the navigation stack.
type entry struct {
	location string
	payload  any
}

// Machine is the navigation state machine: it owns the navigation stack,
// the current location and its parameter caches, and an append-only
// history log. Every go/push/replace consults the guard orchestrator
// before mutating state; the guard outcome determines the final target.
//
// Public navigation operations are serialized by an internal mutex, so
// concurrent overlapping calls on one machine do not race on the stack.
// Guards and observers run under that lock and must not call back into
// the machine's navigation operations.
//
// A redirect is resolved exactly once per navigation attempt: the
// orchestrator is not re-invoked against the redirect target. This keeps
// evaluation cost bounded and rules out redirect chains, at the cost of
// not re-applying guards that also gate the target.
type Machine struct {
	mu        sync.Mutex
	orch      *guard.Orchestrator
	routes    []Route
	stack     []entry
	history   []Event
	histLimit int
	observers []Observer
	subs      map[int]chan Event
	nextSub   int
	deps      guard.Deps
	clock     func() time.Time
	seq       atomic.Int64
	logger    *slog.Logger

	// caches for the current location
	routeName   string
	pathParams  map[string]string
	queryParams map[string]string
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithOrchestrator sets the guard orchestrator consulted before every
// stack mutation. Without it the machine creates its own empty one.
func WithOrchestrator(o *guard.Orchestrator) MachineOption {
	return func(m *Machine) {
		m.orch = o
	}
}

// WithObserver registers observers for machine lifecycle hooks.
func WithObserver(observers ...Observer) MachineOption {
	return func(m *Machine) {
		m.observers = append(m.observers, observers...)
	}
}

// WithRoutes registers named routes at construction.
func WithRoutes(routes []Route) MachineOption {
	return func(m *Machine) {
		m.routes = append(m.routes, routes...)
	}
}

// WithDeps sets the dependency bag exposed to guards on every
// evaluation.
func WithDeps(deps guard.Deps) MachineOption {
	return func(m *Machine) {
		m.deps = deps
	}
}

// WithClock overrides the history timestamp source. Test seam.
func WithClock(clock func() time.Time) MachineOption {
	return func(m *Machine) {
		m.clock = clock
	}
}

// WithHistoryLimit caps the history log at n events, dropping the
// oldest. Zero (the default) keeps everything.
func WithHistoryLimit(n int) MachineOption {
	return func(m *Machine) {
		m.histLimit = n
	}
}

// WithMachineLogger sets the machine's logger.
func WithMachineLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// New creates a machine seeded with an initial location. The stack is
// never empty: the seed is its root and Pop never removes it.
func New(initial string, opts ...MachineOption) *Machine {
	m := &Machine{
		subs:   make(map[int]chan Event),
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.orch == nil {
		m.orch = guard.NewOrchestrator()
	}
	m.stack = []entry{{location: initial}}
	m.refreshCaches()
	return m
}

// NavOption configures a single navigation call.
type NavOption func(*navOptions)

type navOptions struct {
	payload any
}

// WithPayload attaches an opaque payload to the navigation. Guards see
// it on the evaluation context; the machine stores it with the stack
// entry.
func WithPayload(payload any) NavOption {
	return func(o *navOptions) {
		o.payload = payload
	}
}

// Go navigates to location, replacing the whole stack with the resolved
// target. A rejection leaves state unchanged and records a rejected
// event; a redirect records a redirected event with the requested
// location in RedirectedFrom.
func (m *Machine) Go(ctx context.Context, location string, opts ...NavOption) error {
	return m.navigate(ctx, location, EventGo, opts)
}

// Push navigates to location, appending the resolved target to the
// stack.
func (m *Machine) Push(ctx context.Context, location string, opts ...NavOption) error {
	return m.navigate(ctx, location, EventPush, opts)
}

// Replace navigates to location, overwriting the top stack entry with
// the resolved target.
func (m *Machine) Replace(ctx context.Context, location string, opts ...NavOption) error {
	return m.navigate(ctx, location, EventReplace, opts)
}

// GoNamed resolves a registered route name to a path, substitutes path
// parameters, appends encoded query parameters, and delegates to Go.
// An unregistered name fails with ErrRouteNotFound.
func (m *Machine) GoNamed(ctx context.Context, name string, pathParams, queryParams map[string]string, opts ...NavOption) error {
	return m.navigateNamed(ctx, name, pathParams, queryParams, EventGo, opts)
}

// PushNamed is the Push counterpart of GoNamed.
func (m *Machine) PushNamed(ctx context.Context, name string, pathParams, queryParams map[string]string, opts ...NavOption) error {
	return m.navigateNamed(ctx, name, pathParams, queryParams, EventPush, opts)
}

// ReplaceNamed is the Replace counterpart of GoNamed.
func (m *Machine) ReplaceNamed(ctx context.Context, name string, pathParams, queryParams map[string]string, opts ...NavOption) error {
	return m.navigateNamed(ctx, name, pathParams, queryParams, EventReplace, opts)
}

func (m *Machine) navigateNamed(ctx context.Context, name string, pathParams, queryParams map[string]string, op EventType, opts []NavOption) error {
	location, err := m.buildPath(name, pathParams, queryParams)
	if err != nil {
		for _, ob := range m.observers {
			ob.OnNavigationError(name, err)
		}
		return err
	}
	return m.navigate(ctx, location, op, opts)
}

func (m *Machine) navigate(ctx context.Context, location string, op EventType, opts []NavOption) error {
	var o navOptions
	for _, opt := range opts {
		opt(&o)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.top().location
	for _, ob := range m.observers {
		ob.BeforeNavigate(op, from, location)
	}

	path := pattern.StripQuery(location)
	name, pathParams := m.routeFor(path)

	// Deactivation guards for the location being left run first; any
	// objection wins over the destination's own evaluation.
	result := m.orch.EvaluateLeave(ctx, guard.Request{
		Destination: from,
		RouteName:   m.routeName,
		PathParams:  m.pathParams,
		QueryParams: m.queryParams,
		Payload:     m.top().payload,
		Deps:        m.deps,
	})
	if result.IsAllow() {
		result = m.orch.Evaluate(ctx, guard.Request{
			Destination: location,
			RouteName:   name,
			PathParams:  pathParams,
			QueryParams: parseQuery(location),
			Payload:     o.payload,
			Deps:        m.deps,
		})
	}

	switch result.Kind() {
	case guard.KindReject:
		reject, _ := result.Reject()
		m.logger.Debug("navigation rejected", "from", from, "to", location, "reason", reject.Reason)
		e := m.record(EventRejected, from, location, "", reject.Reason)
		for _, ob := range m.observers {
			ob.OnGuardReject(location, reject)
			ob.AfterNavigate(e)
		}

	case guard.KindRedirect:
		redirect, _ := result.Redirect()
		applyOp := op
		if !redirect.Replace {
			applyOp = EventPush
		}
		m.apply(applyOp, redirect.Path, redirect.Payload)
		e := m.record(EventRedirected, from, redirect.Path, location, "")
		for _, ob := range m.observers {
			ob.OnGuardRedirect(location, redirect)
			ob.AfterNavigate(e)
		}

	default:
		m.apply(op, location, o.payload)
		e := m.record(op, from, location, "", "")
		for _, ob := range m.observers {
			ob.AfterNavigate(e)
		}
	}
	return nil
}

// apply mutates the stack for the resolved final target and refreshes
// the current-location caches. Synchronous; never suspends.
func (m *Machine) apply(op EventType, final string, payload any) {
	e := entry{location: final, payload: payload}
	switch op {
	case EventGo:
		m.stack = []entry{e}
	case EventPush:
		m.stack = append(m.stack, e)
	case EventReplace:
		m.stack[len(m.stack)-1] = e
	}
	m.refreshCaches()
}

// Pop removes the top stack entry. The root location is never removed:
// popping a single-entry stack is a no-op returning false.
func (m *Machine) Pop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.popLocked()
}

func (m *Machine) popLocked() bool {
	if len(m.stack) <= 1 {
		return false
	}
	from := m.top().location
	m.stack = m.stack[:len(m.stack)-1]
	m.refreshCaches()
	e := m.record(EventPop, from, m.top().location, "", "")
	for _, ob := range m.observers {
		ob.AfterNavigate(e)
	}
	return true
}

// PopUntil pops while the stack has more than one entry and the
// predicate is false for the current location. Iterations are bounded by
// popUntilLimit to guarantee termination.
func (m *Machine) PopUntil(pred func(location string) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < popUntilLimit; i++ {
		if len(m.stack) <= 1 || pred(m.top().location) {
			return
		}
		m.popLocked()
	}
}

// CanPop reports whether a Pop would remove an entry.
func (m *Machine) CanPop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stack) > 1
}

// Reset clears the stack and history and reseeds with initial.
func (m *Machine) Reset(initial string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stack = []entry{{location: initial}}
	m.history = nil
	m.refreshCaches()
}

// AddGuard registers a global guard on the machine's orchestrator.
func (m *Machine) AddGuard(g guard.Guard) {
	m.orch.AddGlobal(g)
}

// RemoveGuard removes a global guard from the machine's orchestrator.
func (m *Machine) RemoveGuard(g guard.Guard) {
	m.orch.RemoveGlobal(g)
}

// Guards returns a read-only view of the global guard list.
func (m *Machine) Guards() []guard.Guard {
	return m.orch.Globals()
}

// Orchestrator exposes the machine's orchestrator for route-scoped
// guard registration.
func (m *Machine) Orchestrator() *guard.Orchestrator {
	return m.orch
}

// CurrentLocation returns the top-of-stack location.
func (m *Machine) CurrentLocation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.top().location
}

// CurrentRouteName returns the registered route name matching the
// current location, or "".
func (m *Machine) CurrentRouteName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.routeName
}

// CurrentPathParams returns a copy of the current path parameters.
func (m *Machine) CurrentPathParams() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyParams(m.pathParams)
}

// CurrentQueryParams returns a copy of the current query parameters.
func (m *Machine) CurrentQueryParams() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyParams(m.queryParams)
}

// CurrentPayload returns the payload stored with the top stack entry.
func (m *Machine) CurrentPayload() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.top().payload
}

// Stack returns a copy of the stack locations, root first.
func (m *Machine) Stack() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	locations := make([]string, len(m.stack))
	for i, e := range m.stack {
		locations[i] = e.location
	}
	return locations
}

// History returns a copy of the recorded events in append order.
func (m *Machine) History() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.history...)
}

// LastEvent returns the most recently recorded event.
func (m *Machine) LastEvent() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return Event{}, false
	}
	return m.history[len(m.history)-1], true
}

// Subscribe returns a channel receiving every recorded event and a
// cancel function. The channel is buffered; events a slow subscriber
// cannot keep up with are dropped, never blocking navigation.
func (m *Machine) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// record appends a history event and fans it out to subscribers.
func (m *Machine) record(op EventType, from, to, redirectedFrom, reason string) Event {
	e := Event{
		Seq:            m.seq.Inc(),
		From:           from,
		To:             to,
		Type:           op,
		RedirectedFrom: redirectedFrom,
		Reason:         reason,
		Timestamp:      m.clock(),
	}
	m.history = append(m.history, e)
	if m.histLimit > 0 && len(m.history) > m.histLimit {
		m.history = m.history[len(m.history)-m.histLimit:]
	}
	for _, ch := range m.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return e
}

// refreshCaches recomputes route name and parameter caches for the
// current location.
func (m *Machine) refreshCaches() {
	location := m.top().location
	path := pattern.StripQuery(location)
	m.routeName, m.pathParams = m.routeFor(path)
	m.queryParams = parseQuery(location)
}

func (m *Machine) top() entry {
	return m.stack[len(m.stack)-1]
}

// parseQuery extracts flattened query parameters from a location.
// Repeated keys keep their first value.
func parseQuery(location string) map[string]string {
	i := strings.IndexByte(location, '?')
	if i < 0 {
		return nil
	}
	raw := location[i+1:]
	if j := strings.IndexByte(raw, '#'); j >= 0 {
		raw = raw[:j]
	}
	values, err := url.ParseQuery(raw)
	if err != nil || len(values) == 0 {
		return nil
	}
	params := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params
}

func copyParams(params map[string]string) map[string]string {
	if len(params) == 0 {
		return nil
	}
	copied := make(map[string]string, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return copied
}
