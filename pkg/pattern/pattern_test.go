package pattern

import (
	"errors"
	"testing"
)

func TestCompileRejectsNonTerminalWildcard(t *testing.T) {
	_, err := Compile("/files/*/meta")
	if err == nil {
		t.Fatal("expected error for non-terminal wildcard")
	}
	if !errors.Is(err, ErrBadPattern) {
		t.Errorf("error = %v, want ErrBadPattern", err)
	}
}

func TestCompileRejectsUnnamedParam(t *testing.T) {
	if _, err := Compile("/users/:"); err == nil {
		t.Fatal("expected error for unnamed parameter segment")
	}
}

func TestLiteralMatch(t *testing.T) {
	p := MustCompile("/users/list")

	if !p.Matches("/users/list") {
		t.Error("expected match for /users/list")
	}
	if p.Matches("/users/other") {
		t.Error("unexpected match for /users/other")
	}
	if p.Matches("/users") {
		t.Error("unexpected match for /users (segment count)")
	}
	if p.Matches("/users/list/extra") {
		t.Error("unexpected match for /users/list/extra (segment count)")
	}
}

func TestParamMatch(t *testing.T) {
	p := MustCompile("/users/:id")

	if !p.Matches("/users/42") {
		t.Fatal("expected match for /users/42")
	}
	params := p.Params("/users/42")
	if params["id"] != "42" {
		t.Errorf("params[id] = %q, want %q", params["id"], "42")
	}
	if p.Matches("/users") {
		t.Error("unexpected match for /users")
	}
}

func TestWildcardMatch(t *testing.T) {
	p := MustCompile("/admin/*")

	if !p.Matches("/admin/x") {
		t.Error("expected match for /admin/x")
	}
	if !p.Matches("/admin/x/y") {
		t.Error("expected match for /admin/x/y")
	}
	if p.Matches("/admin") {
		t.Error("unexpected match for /admin (wildcard needs a segment)")
	}
	if p.Matches("/other/x") {
		t.Error("unexpected match for /other/x")
	}
}

func TestWildcardWithParams(t *testing.T) {
	p := MustCompile("/projects/:id/*")

	params := p.Params("/projects/7/files/a/b")
	if params == nil {
		t.Fatal("expected match for /projects/7/files/a/b")
	}
	if params["id"] != "7" {
		t.Errorf("params[id] = %q, want %q", params["id"], "7")
	}
}

func TestSlashInsensitivity(t *testing.T) {
	p := MustCompile("users/:id/")

	if !p.Matches("/users/42") {
		t.Error("expected match despite slash differences")
	}
	if !p.Matches("users/42/") {
		t.Error("expected match for trailing slash path")
	}
}

func TestParamsNoMatchReturnsNil(t *testing.T) {
	p := MustCompile("/users/:id")
	if params := p.Params("/posts/42"); params != nil {
		t.Errorf("Params on non-match = %v, want nil", params)
	}
}

func TestRootPattern(t *testing.T) {
	p := MustCompile("/")
	if !p.Matches("/") {
		t.Error("expected / to match /")
	}
	if p.Matches("/a") {
		t.Error("unexpected match for /a")
	}
}

func TestStripQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/users/42", "/users/42"},
		{"/users/42?tab=posts", "/users/42"},
		{"/users?a=1&b=2", "/users"},
		{"/docs#anchor", "/docs"},
		{"/docs?q=x#anchor", "/docs"},
	}
	for _, tt := range tests {
		if got := StripQuery(tt.in); got != tt.want {
			t.Errorf("StripQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic from MustCompile")
		}
	}()
	MustCompile("/a/*/b")
}
