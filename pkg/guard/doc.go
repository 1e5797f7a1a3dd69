// Package guard implements the navigation-authorization engine: guards,
// their three-way results, and the orchestrator that evaluates them.
//
// A Guard decides whether a navigation to a location is allowed,
// redirected, or rejected. Guards carry a priority and optional
// applies-to/excludes pattern lists; exclusions are checked first and are
// never overridden by a broader include.
//
// The Orchestrator owns the guard registries (a global list plus
// per-route-name lists), sorts applicable guards by descending priority
// with registration order breaking ties, and evaluates them sequentially,
// short-circuiting on the first non-Allow result. A guard that fails with
// an error or panic is treated as an explicit rejection.
//
// Results form a closed variant type. Consumers branch on Result.Kind:
//
//	switch result.Kind() {
//	case guard.KindAllow:
//	    // proceed
//	case guard.KindRedirect:
//	    redirect, _ := result.Redirect()
//	    // divert to redirect.Path
//	case guard.KindReject:
//	    reject, _ := result.Reject()
//	    // block; surface reject.Reason if reject.ShowError
//	}
//
// AllOf and AnyOf compose guards into a single unit with the usual
// and/or short-circuit semantics.
package guard
