package guard

import "fmt"

// Kind identifies which variant of a Result is active.
type Kind int

const (
	// KindAllow lets the navigation proceed unchanged.
	KindAllow Kind = iota

	// KindRedirect diverts the navigation to another path.
	KindRedirect

	// KindReject blocks the navigation entirely.
	KindReject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAllow:
		return "allow"
	case KindRedirect:
		return "redirect"
	case KindReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Redirect carries the details of a redirect decision.
type Redirect struct {
	// Path is the destination the navigation is diverted to. Never empty.
	Path string

	// Payload is an optional navigation payload for the redirect target.
	Payload any

	// Replace indicates the redirect overwrites the pending navigation
	// (applied with the caller's requested operation). When false the
	// redirect target is pushed on top of the stack instead.
	Replace bool
}

// Reject carries the details of a reject decision.
type Reject struct {
	// Reason is an optional human-readable explanation.
	Reason string

	// ShowError signals that the caller should surface feedback to the
	// end user. It is a signal, not an action: displaying anything is
	// the surrounding UI layer's responsibility.
	ShowError bool
}

// Result is the three-way outcome of a guard decision: Allow, Redirect,
// or Reject. It is a closed variant; construct values only through Allow,
// RedirectTo, or RejectWith and branch on Kind.
type Result struct {
	kind     Kind
	redirect Redirect
	reject   Reject
}

// Allow returns the allow result. It carries no data.
func Allow() Result {
	return Result{kind: KindAllow}
}

// RedirectOption configures a redirect result.
type RedirectOption func(*Redirect)

// WithPayload attaches a navigation payload to the redirect target.
func WithPayload(payload any) RedirectOption {
	return func(r *Redirect) {
		r.Payload = payload
	}
}

// WithoutReplace makes the redirect stack on top of the pending
// navigation instead of overwriting it.
func WithoutReplace() RedirectOption {
	return func(r *Redirect) {
		r.Replace = false
	}
}

// RedirectTo returns a redirect result for the given path.
// The path must be non-empty; an empty path is a programming error and
// panics at construction rather than surfacing mid-navigation.
//
// Note that a redirect is resolved exactly once per navigation attempt:
// guards are not re-run against the redirect target. A guard protecting
// the target path is therefore bypassed for that attempt.
func RedirectTo(path string, opts ...RedirectOption) Result {
	if path == "" {
		panic("guard: RedirectTo with empty path")
	}
	r := Redirect{Path: path, Replace: true}
	for _, opt := range opts {
		opt(&r)
	}
	return Result{kind: KindRedirect, redirect: r}
}

// RejectOption configures a reject result.
type RejectOption func(*Reject)

// WithShowError marks the rejection as one the UI should surface.
func WithShowError() RejectOption {
	return func(r *Reject) {
		r.ShowError = true
	}
}

// RejectWith returns a reject result with an optional reason.
func RejectWith(reason string, opts ...RejectOption) Result {
	r := Reject{Reason: reason}
	for _, opt := range opts {
		opt(&r)
	}
	return Result{kind: KindReject, reject: r}
}

// Kind returns the active variant.
func (r Result) Kind() Kind { return r.kind }

// IsAllow reports whether the result allows the navigation.
func (r Result) IsAllow() bool { return r.kind == KindAllow }

// Redirect returns the redirect details.
// The second return is false unless Kind is KindRedirect.
func (r Result) Redirect() (Redirect, bool) {
	if r.kind != KindRedirect {
		return Redirect{}, false
	}
	return r.redirect, true
}

// Reject returns the reject details.
// The second return is false unless Kind is KindReject.
func (r Result) Reject() (Reject, bool) {
	if r.kind != KindReject {
		return Reject{}, false
	}
	return r.reject, true
}

// String renders the result for logs.
func (r Result) String() string {
	switch r.kind {
	case KindRedirect:
		return fmt.Sprintf("redirect(%s)", r.redirect.Path)
	case KindReject:
		if r.reject.Reason == "" {
			return "reject"
		}
		return fmt.Sprintf("reject(%s)", r.reject.Reason)
	default:
		return "allow"
	}
}
