package guard

import (
	"context"
	"testing"

	"github.com/navguard-dev/navguard/pkg/pattern"
)

func allowGuard(opts ...Option) Guard {
	return New(func(ctx context.Context, gc *Context) (Result, error) {
		return Allow(), nil
	}, opts...)
}

func TestShouldActivateForDefaultsToEverywhere(t *testing.T) {
	g := allowGuard()
	for _, path := range []string{"/", "/users", "/a/b/c"} {
		if !g.ShouldActivateFor(path) {
			t.Errorf("guard without patterns should apply to %q", path)
		}
	}
}

func TestShouldActivateForAppliesTo(t *testing.T) {
	g := allowGuard(AppliesTo(pattern.MustCompile("/admin/*")))

	if !g.ShouldActivateFor("/admin/users") {
		t.Error("expected guard to apply to /admin/users")
	}
	if g.ShouldActivateFor("/public") {
		t.Error("guard should not apply to /public")
	}
}

func TestExcludePrecedence(t *testing.T) {
	// Excludes win even when appliesTo would match the same path.
	g := allowGuard(
		AppliesTo(pattern.MustCompile("/*")),
		Excludes(pattern.MustCompile("/public")),
	)

	if g.ShouldActivateFor("/public") {
		t.Error("exclude must override a broader include")
	}
	if !g.ShouldActivateFor("/private") {
		t.Error("expected guard to apply to /private")
	}
}

func TestExcludeWithoutAppliesTo(t *testing.T) {
	g := allowGuard(Excludes(pattern.MustCompile("/public")))

	if g.ShouldActivateFor("/public") {
		t.Error("guard must never activate for an excluded path")
	}
	if !g.ShouldActivateFor("/anything/else") {
		t.Error("guard should apply everywhere but the exclusion")
	}
}

func TestDeactivateDefaultsToAllow(t *testing.T) {
	g := allowGuard()
	d, ok := g.(Deactivator)
	if !ok {
		t.Fatal("guard built with New should implement Deactivator")
	}
	result, err := d.Deactivate(context.Background(), &Context{})
	if err != nil {
		t.Fatalf("Deactivate error: %v", err)
	}
	if !result.IsAllow() {
		t.Errorf("default Deactivate = %v, want allow", result)
	}
}

func TestResultAccessors(t *testing.T) {
	r := RedirectTo("/login", WithPayload("ret"), WithoutReplace())
	redirect, ok := r.Redirect()
	if !ok {
		t.Fatal("expected redirect details")
	}
	if redirect.Path != "/login" || redirect.Payload != "ret" || redirect.Replace {
		t.Errorf("redirect = %+v", redirect)
	}
	if _, ok := r.Reject(); ok {
		t.Error("redirect result must not expose reject details")
	}

	r = RejectWith("nope", WithShowError())
	reject, ok := r.Reject()
	if !ok {
		t.Fatal("expected reject details")
	}
	if reject.Reason != "nope" || !reject.ShowError {
		t.Errorf("reject = %+v", reject)
	}

	if !Allow().IsAllow() {
		t.Error("Allow().IsAllow() = false")
	}
}

func TestRedirectDefaultsToReplace(t *testing.T) {
	redirect, _ := RedirectTo("/login").Redirect()
	if !redirect.Replace {
		t.Error("redirect replace flag should default to true")
	}
}

func TestRedirectToEmptyPathPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for empty redirect path")
		}
	}()
	RedirectTo("")
}

func TestDepFrom(t *testing.T) {
	type store struct{ name string }
	s := &store{name: "sessions"}

	gc := &Context{Deps: NewDeps(map[string]any{"store": s, "count": 3})}

	got, ok := DepFrom[*store](gc, "store")
	if !ok || got != s {
		t.Errorf("DepFrom[*store] = %v, %v", got, ok)
	}
	if _, ok := DepFrom[string](gc, "store"); ok {
		t.Error("type mismatch should report false")
	}
	if _, ok := DepFrom[*store](gc, "missing"); ok {
		t.Error("missing key should report false")
	}
	if n, ok := DepFrom[int](gc, "count"); !ok || n != 3 {
		t.Errorf("DepFrom[int] = %v, %v", n, ok)
	}
}

func TestDepsWithDoesNotMutateOriginal(t *testing.T) {
	base := NewDeps(map[string]any{"a": 1})
	derived := base.With("b", 2)

	if _, ok := base.Value("b"); ok {
		t.Error("With must not mutate the receiver")
	}
	if v, ok := derived.Value("b"); !ok || v != 2 {
		t.Errorf("derived.Value(b) = %v, %v", v, ok)
	}
}
