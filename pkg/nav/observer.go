package nav

import "github.com/navguard-dev/navguard/pkg/guard"

// Observer receives machine lifecycle hooks. All hooks run synchronously
// on the navigating goroutine; implementations must not call back into
// the machine's navigation operations.
//
// Embed Hooks to get no-op defaults for the hooks you don't need.
type Observer interface {
	// BeforeNavigate fires before guard evaluation for go/push/replace.
	BeforeNavigate(op EventType, from, to string)

	// AfterNavigate fires after a transition is recorded, including
	// rejected and redirected ones.
	AfterNavigate(e Event)

	// OnGuardRedirect fires when a guard diverted a navigation.
	OnGuardRedirect(requested string, r guard.Redirect)

	// OnGuardReject fires when a guard blocked a navigation.
	OnGuardReject(requested string, r guard.Reject)

	// OnNavigationError fires when a navigation call fails with a hard
	// error (for example an unregistered route name).
	OnNavigationError(requested string, err error)
}

// Hooks is a no-op Observer for embedding.
type Hooks struct{}

func (Hooks) BeforeNavigate(op EventType, from, to string)          {}
func (Hooks) AfterNavigate(e Event)                                 {}
func (Hooks) OnGuardRedirect(requested string, r guard.Redirect)    {}
func (Hooks) OnGuardReject(requested string, r guard.Reject)        {}
func (Hooks) OnNavigationError(requested string, err error)         {}
