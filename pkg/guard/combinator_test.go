package guard

import (
	"context"
	"testing"

	"github.com/navguard-dev/navguard/pkg/pattern"
)

func staticGuard(result Result, opts ...Option) Guard {
	return New(func(ctx context.Context, gc *Context) (Result, error) {
		return result, nil
	}, opts...)
}

func recordingGuard(result Result, invoked *bool) Guard {
	return New(func(ctx context.Context, gc *Context) (Result, error) {
		*invoked = true
		return result, nil
	})
}

func evalCombinator(t *testing.T, g Guard, path string) Result {
	t.Helper()
	result, err := g.Activate(context.Background(), &Context{Destination: path, Location: path})
	if err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	return result
}

func TestAllOfAllAllow(t *testing.T) {
	g := AllOf(staticGuard(Allow()), staticGuard(Allow()))
	if result := evalCombinator(t, g, "/test"); !result.IsAllow() {
		t.Errorf("AllOf([allow, allow]) = %v, want allow", result)
	}
}

func TestAllOfShortCircuitsOnRedirect(t *testing.T) {
	var afterInvoked bool
	g := AllOf(
		staticGuard(Allow()),
		staticGuard(RedirectTo("/login")),
		recordingGuard(Allow(), &afterInvoked),
	)

	result := evalCombinator(t, g, "/test")
	redirect, ok := result.Redirect()
	if !ok || redirect.Path != "/login" {
		t.Fatalf("AllOf = %v, want redirect(/login)", result)
	}
	if afterInvoked {
		t.Error("guard after the redirect must never be invoked")
	}
}

func TestAllOfPropagatesError(t *testing.T) {
	g := AllOf(New(func(ctx context.Context, gc *Context) (Result, error) {
		return Result{}, context.Canceled
	}))
	if _, err := g.Activate(context.Background(), &Context{Location: "/x"}); err == nil {
		t.Fatal("expected member error to propagate")
	}
}

func TestAnyOfLastObjectionWins(t *testing.T) {
	g := AnyOf(
		staticGuard(RejectWith("first")),
		staticGuard(RejectWith("second")),
	)

	result := evalCombinator(t, g, "/test")
	reject, ok := result.Reject()
	if !ok {
		t.Fatalf("AnyOf = %v, want reject", result)
	}
	if reject.Reason != "second" {
		t.Errorf("reason = %q, want %q (last reject wins)", reject.Reason, "second")
	}
}

func TestAnyOfFirstAllowWins(t *testing.T) {
	var redirectInvoked bool
	g := AnyOf(
		staticGuard(RejectWith("no")),
		staticGuard(Allow()),
		recordingGuard(RedirectTo("/elsewhere"), &redirectInvoked),
	)

	if result := evalCombinator(t, g, "/test"); !result.IsAllow() {
		t.Errorf("AnyOf([reject, allow, redirect]) = %v, want allow", result)
	}
	if redirectInvoked {
		t.Error("members after the first allow must never be invoked")
	}
}

func TestAnyOfEmptyAllows(t *testing.T) {
	// ShouldActivateFor is false for an empty combinator, but a direct
	// activation still allows.
	g := AnyOf()
	if g.ShouldActivateFor("/x") {
		t.Error("empty AnyOf should not activate")
	}
	if result := evalCombinator(t, g, "/x"); !result.IsAllow() {
		t.Errorf("empty AnyOf = %v, want allow", result)
	}
}

func TestCombinatorPriorityIsMax(t *testing.T) {
	g := AllOf(
		staticGuard(Allow(), WithPriority(10)),
		staticGuard(Allow(), WithPriority(100)),
		staticGuard(Allow(), WithPriority(-5)),
	)
	if g.Priority() != 100 {
		t.Errorf("AllOf priority = %d, want 100", g.Priority())
	}

	any := AnyOf(staticGuard(Allow(), WithPriority(-7)), staticGuard(Allow(), WithPriority(-3)))
	if any.Priority() != -3 {
		t.Errorf("AnyOf priority = %d, want -3", any.Priority())
	}
}

func TestCombinatorSkipsNonApplicableMembers(t *testing.T) {
	g := AllOf(
		staticGuard(RejectWith("admin only"), AppliesTo(pattern.MustCompile("/admin/*"))),
		staticGuard(Allow()),
	)

	if result := evalCombinator(t, g, "/public"); !result.IsAllow() {
		t.Errorf("non-applicable member should be skipped, got %v", result)
	}
	result := evalCombinator(t, g, "/admin/x")
	if _, ok := result.Reject(); !ok {
		t.Errorf("applicable member should run, got %v", result)
	}
}
