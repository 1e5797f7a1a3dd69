package engine

import (
	"context"
	"testing"
	"time"

	"github.com/navguard-dev/navguard/pkg/guard"
)

func TestSimHonorsRedirectHook(t *testing.T) {
	ctx := context.Background()
	s := NewSim("/")
	s.SetRedirectHook(func(ctx context.Context, st *State) string {
		if st.Location == "/protected" {
			return "/login"
		}
		return ""
	})

	s.Go(ctx, "/protected", nil)
	if got := s.Location(); got != "/login" {
		t.Errorf("Location = %q, want /login", got)
	}

	s.Go(ctx, "/open", nil)
	if got := s.Location(); got != "/open" {
		t.Errorf("Location = %q, want /open", got)
	}
}

func TestSimStackSemantics(t *testing.T) {
	ctx := context.Background()
	s := NewSim("/")

	s.Push(ctx, "/a", nil)
	s.Push(ctx, "/b", nil)
	s.Replace(ctx, "/c", nil)

	got := s.Stack()
	want := []string{"/", "/a", "/c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stack = %v, want %v", got, want)
		}
	}

	if !s.Pop() {
		t.Error("Pop should succeed")
	}
	s.Pop()
	if s.Pop() {
		t.Error("Pop on root must be a no-op")
	}
}

func TestSimSubscribe(t *testing.T) {
	ctx := context.Background()
	s := NewSim("/")
	locations, cancel := s.Subscribe()
	defer cancel()

	s.Push(ctx, "/a", nil)

	select {
	case loc := <-locations:
		if loc != "/a" {
			t.Errorf("location = %q, want /a", loc)
		}
	case <-time.After(time.Second):
		t.Fatal("no location notification received")
	}
}

func TestAdapterInstallsOrchestrator(t *testing.T) {
	ctx := context.Background()
	orch := guard.NewOrchestrator()
	orch.AddGlobal(guard.New(func(ctx context.Context, gc *guard.Context) (guard.Result, error) {
		if gc.Location == "/members" {
			return guard.RedirectTo("/join"), nil
		}
		return guard.Allow(), nil
	}))

	sim := NewSim("/")
	a := NewAdapter(sim, orch)
	a.Start(ctx)
	defer a.Stop()

	a.Go(ctx, "/members", nil)
	if got := sim.Location(); got != "/join" {
		t.Errorf("engine location = %q, want /join (guard redirect)", got)
	}

	// The adapter mirrors the engine's location stream.
	deadline := time.After(time.Second)
	for a.Location() != "/join" {
		select {
		case <-deadline:
			t.Fatalf("adapter location = %q, want /join", a.Location())
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestAdapterDepsReachGuards(t *testing.T) {
	ctx := context.Background()
	orch := guard.NewOrchestrator()
	orch.AddGlobal(guard.New(func(ctx context.Context, gc *guard.Context) (guard.Result, error) {
		if _, ok := guard.DepFrom[string](gc, "session"); !ok {
			return guard.RedirectTo("/login"), nil
		}
		return guard.Allow(), nil
	}))

	sim := NewSim("/")
	a := NewAdapter(sim, orch, WithDeps(guard.NewDeps(map[string]any{"session": "s-1"})))
	a.Start(ctx)
	defer a.Stop()

	a.Go(ctx, "/account", nil)
	if got := sim.Location(); got != "/account" {
		t.Errorf("engine location = %q, want /account (deps satisfied guard)", got)
	}
}
