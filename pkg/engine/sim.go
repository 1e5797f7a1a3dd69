package engine

import (
	"context"
	"sync"

	"github.com/navguard-dev/navguard/pkg/pattern"
)

// Sim is an in-memory engine used where no real router engine is
// available: tests, demos, and the bridge. It honors the installed
// redirect hook like a real engine would, once per navigation attempt,
// before mutating its stack.
type Sim struct {
	mu      sync.Mutex
	hook    RedirectHook
	stack   []string
	extras  []any
	subs    map[int]chan string
	nextSub int
}

// NewSim creates a simulated engine seeded with an initial location.
func NewSim(initial string) *Sim {
	return &Sim{
		stack:  []string{initial},
		extras: []any{nil},
		subs:   make(map[int]chan string),
	}
}

// SetRedirectHook implements Engine.
func (s *Sim) SetRedirectHook(hook RedirectHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = hook
}

// Location implements Engine.
func (s *Sim) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack[len(s.stack)-1]
}

// Subscribe implements Engine.
func (s *Sim) Subscribe() (<-chan string, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan string, 16)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Go implements Engine.
func (s *Sim) Go(ctx context.Context, location string, extra any) {
	s.apply(ctx, location, extra, func(final string, fextra any) {
		s.stack = []string{final}
		s.extras = []any{fextra}
	})
}

// Push implements Engine.
func (s *Sim) Push(ctx context.Context, location string, extra any) {
	s.apply(ctx, location, extra, func(final string, fextra any) {
		s.stack = append(s.stack, final)
		s.extras = append(s.extras, fextra)
	})
}

// Replace implements Engine.
func (s *Sim) Replace(ctx context.Context, location string, extra any) {
	s.apply(ctx, location, extra, func(final string, fextra any) {
		s.stack[len(s.stack)-1] = final
		s.extras[len(s.extras)-1] = fextra
	})
}

// Pop implements Engine. The root entry is never removed.
func (s *Sim) Pop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.stack) <= 1 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	s.extras = s.extras[:len(s.extras)-1]
	s.broadcast(s.stack[len(s.stack)-1])
	return true
}

// apply runs the redirect hook, resolves the final target, and mutates
// the stack through the given function.
func (s *Sim) apply(ctx context.Context, location string, extra any, mutate func(final string, fextra any)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	final := location
	fextra := extra
	if s.hook != nil {
		st := &State{
			Location:    pattern.StripQuery(location),
			QueryParams: nil,
			Extra:       extra,
		}
		if redirect := s.hook(ctx, st); redirect != "" {
			final = redirect
			fextra = nil
		}
	}
	mutate(final, fextra)
	s.broadcast(final)
}

// broadcast fans the new location out to subscribers, dropping on slow
// consumers. Callers hold s.mu.
func (s *Sim) broadcast(location string) {
	for _, ch := range s.subs {
		select {
		case ch <- location:
		default:
		}
	}
}

// Stack returns a copy of the simulated stack, root first.
func (s *Sim) Stack() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stack...)
}
