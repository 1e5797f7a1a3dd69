// Package engine defines the boundary to an externally supplied router
// engine (a widget-tree-driven navigator). The engine is either wrapped
// by an Adapter, which installs the guard orchestrator into the engine's
// redirect hook, or simulated by Sim, which stands in for it in tests
// and demos.
package engine

import "context"

// State is the engine's descriptor of a pending or current navigation:
// the matched location, its parameters, and an opaque payload.
type State struct {
	Location    string
	RouteName   string
	PathParams  map[string]string
	QueryParams map[string]string
	Extra       any
}

// RedirectHook is the engine's redirect decision callback. Returning a
// non-empty path diverts the navigation; returning "" lets it proceed.
type RedirectHook func(ctx context.Context, st *State) string

// Engine is the surface this module consumes from an external router
// engine.
type Engine interface {
	// SetRedirectHook installs the redirect decision callback. The
	// engine invokes it once per navigation attempt.
	SetRedirectHook(hook RedirectHook)

	// Location returns the engine's current location.
	Location() string

	// Subscribe returns a location-change notification stream and a
	// cancel function.
	Subscribe() (<-chan string, func())

	// Navigation primitives mirroring go/push/replace/pop semantics.
	Go(ctx context.Context, location string, extra any)
	Push(ctx context.Context, location string, extra any)
	Replace(ctx context.Context, location string, extra any)
	Pop() bool
}
