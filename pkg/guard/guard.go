package guard

import (
	"context"

	"github.com/navguard-dev/navguard/pkg/pattern"
)

// Guard is a priority-ordered policy unit deciding whether a navigation
// to a given location is allowed, redirected, or rejected.
//
// Activation may perform blocking work (reading external state); the
// orchestrator awaits each guard's result before invoking the next, so
// no two guards run concurrently within one evaluation.
type Guard interface {
	// Priority orders guards within one evaluation; higher runs first.
	Priority() int

	// ShouldActivateFor reports whether the guard applies to path.
	// The path has its query string already stripped.
	ShouldActivateFor(path string) bool

	// Activate decides the outcome for one navigation attempt.
	// A returned error is treated by the orchestrator as a rejection,
	// never as a silent allow.
	Activate(ctx context.Context, gc *Context) (Result, error)
}

// Deactivator is an optional extension for guards that also gate leaving
// a location (canDeactivate semantics).
type Deactivator interface {
	Deactivate(ctx context.Context, gc *Context) (Result, error)
}

// ActivateFunc is the signature of a guard decision function.
type ActivateFunc func(ctx context.Context, gc *Context) (Result, error)

// Option configures a guard built with New.
type Option func(*simpleGuard)

// WithPriority sets the guard's priority. The default is 0.
func WithPriority(priority int) Option {
	return func(g *simpleGuard) {
		g.priority = priority
	}
}

// AppliesTo restricts the guard to paths matching at least one pattern.
// Without it the guard applies to every path (subject to Excludes).
func AppliesTo(patterns ...pattern.Pattern) Option {
	return func(g *simpleGuard) {
		g.appliesTo = append(g.appliesTo, patterns...)
	}
}

// Excludes exempts paths matching any of the patterns. Exclusions are an
// escape hatch: they are checked before AppliesTo and are never overridden
// by a broader include pattern.
func Excludes(patterns ...pattern.Pattern) Option {
	return func(g *simpleGuard) {
		g.excludes = append(g.excludes, patterns...)
	}
}

// WithDeactivate sets the decision function for leaving a location.
func WithDeactivate(fn ActivateFunc) Option {
	return func(g *simpleGuard) {
		g.deactivate = fn
	}
}

// simpleGuard is the guard implementation returned by New.
type simpleGuard struct {
	priority   int
	appliesTo  []pattern.Pattern
	excludes   []pattern.Pattern
	activate   ActivateFunc
	deactivate ActivateFunc
}

// New builds a guard from a decision function.
//
// Example:
//
//	authGuard := guard.New(
//	    func(ctx context.Context, gc *guard.Context) (guard.Result, error) {
//	        if !sessionActive(gc) {
//	            return guard.RedirectTo("/login"), nil
//	        }
//	        return guard.Allow(), nil
//	    },
//	    guard.WithPriority(100),
//	    guard.Excludes(pattern.MustCompile("/login")),
//	)
func New(activate ActivateFunc, opts ...Option) Guard {
	g := &simpleGuard{activate: activate}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *simpleGuard) Priority() int { return g.priority }

// ShouldActivateFor applies the exclude-before-include policy.
func (g *simpleGuard) ShouldActivateFor(path string) bool {
	return applies(path, g.appliesTo, g.excludes)
}

func (g *simpleGuard) Activate(ctx context.Context, gc *Context) (Result, error) {
	return g.activate(ctx, gc)
}

func (g *simpleGuard) Deactivate(ctx context.Context, gc *Context) (Result, error) {
	if g.deactivate == nil {
		return Allow(), nil
	}
	return g.deactivate(ctx, gc)
}

// applies implements the shared applicability rule: excludes first, then
// an absent appliesTo list means "everywhere", otherwise any match wins.
func applies(path string, appliesTo, excludes []pattern.Pattern) bool {
	for _, p := range excludes {
		if p.Matches(path) {
			return false
		}
	}
	if len(appliesTo) == 0 {
		return true
	}
	for _, p := range appliesTo {
		if p.Matches(path) {
			return true
		}
	}
	return false
}
