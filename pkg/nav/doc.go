// Package nav implements the navigation state machine gated by the guard
// engine.
//
// A Machine owns an in-memory navigation stack (always at least one
// entry, the root), the current location with its path/query parameter
// caches, and an append-only history log. Every Go, Push, and Replace
// call consults a guard.Orchestrator first; the outcome decides whether
// the mutation proceeds, is diverted to a redirect target, or is blocked
// with a rejected history event.
//
//	orch := guard.NewOrchestrator()
//	orch.AddGlobal(authGuard)
//
//	m := nav.New("/",
//	    nav.WithOrchestrator(orch),
//	    nav.WithRoutes(nav.Routes(map[string]string{
//	        "login": "/login",
//	        "user":  "/users/:id",
//	    })),
//	)
//
//	_ = m.Push(ctx, "/users/42?tab=posts")
//	m.CurrentLocation()    // "/users/42?tab=posts" or the redirect target
//	m.CurrentPathParams()  // {"id": "42"}
//
// Navigation state is ephemeral per process run; nothing is persisted.
package nav
