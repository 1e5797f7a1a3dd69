package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadPattern is returned when a route pattern cannot be compiled.
// Use errors.Is to detect it regardless of wrapping.
var ErrBadPattern = errors.New("bad route pattern")

// segKind classifies a pattern segment.
type segKind int

const (
	segLiteral segKind = iota
	segParam           // :name
	segWildcard        // *, terminal only
)

// segment is one compiled pattern segment.
type segment struct {
	kind segKind

	// value is the literal text for segLiteral, the parameter name
	// for segParam, and empty for segWildcard.
	value string
}

// Pattern is a compiled route pattern with literal segments, parameter
// segments (:name), and at most one trailing wildcard segment (*).
//
// Patterns are immutable once compiled and safe for concurrent use.
type Pattern struct {
	raw      string
	segments []segment
	wildcard bool
}

// Compile parses a route pattern template.
//
// A wildcard segment is only legal in the final position; anything else
// fails with ErrBadPattern so malformed patterns surface at registration
// time rather than during live navigation.
func Compile(raw string) (Pattern, error) {
	segs := splitPath(raw)

	p := Pattern{raw: raw, segments: make([]segment, 0, len(segs))}
	for i, seg := range segs {
		switch {
		case strings.HasPrefix(seg, "*"):
			if i != len(segs)-1 {
				return Pattern{}, fmt.Errorf("%w: %q: wildcard must be the final segment", ErrBadPattern, raw)
			}
			p.wildcard = true
			p.segments = append(p.segments, segment{kind: segWildcard})
		case strings.HasPrefix(seg, ":"):
			name := seg[1:]
			if name == "" {
				return Pattern{}, fmt.Errorf("%w: %q: parameter segment needs a name", ErrBadPattern, raw)
			}
			p.segments = append(p.segments, segment{kind: segParam, value: name})
		default:
			p.segments = append(p.segments, segment{kind: segLiteral, value: seg})
		}
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
// Intended for patterns known at compile time.
func MustCompile(raw string) Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic("pattern: " + err.Error())
	}
	return p
}

// MustCompileAll compiles a list of templates, panicking on the first error.
func MustCompileAll(raw ...string) []Pattern {
	patterns := make([]Pattern, len(raw))
	for i, r := range raw {
		patterns[i] = MustCompile(r)
	}
	return patterns
}

// String returns the original template text.
func (p Pattern) String() string { return p.raw }

// Matches reports whether path satisfies the pattern.
//
// Both pattern and path are split on "/" with empty segments discarded, so
// leading and trailing slashes are insignificant. Query strings must be
// stripped by the caller before matching.
func (p Pattern) Matches(path string) bool {
	_, ok := p.match(path)
	return ok
}

// Params extracts the parameter bindings from path.
// Returns nil if the path does not match.
func (p Pattern) Params(path string) map[string]string {
	params, ok := p.match(path)
	if !ok {
		return nil
	}
	return params
}

// match walks pattern and path segments in lockstep. No backtracking is
// needed: parameters bind exactly one segment and the wildcard, when
// present, is always terminal and consumes the rest.
func (p Pattern) match(path string) (map[string]string, bool) {
	segs := splitPath(path)

	if !p.wildcard && len(segs) != len(p.segments) {
		return nil, false
	}
	if p.wildcard && len(segs) < len(p.segments) {
		// The wildcard segment itself must match at least one segment.
		return nil, false
	}

	var params map[string]string
	for i, ps := range p.segments {
		switch ps.kind {
		case segLiteral:
			if segs[i] != ps.value {
				return nil, false
			}
		case segParam:
			if segs[i] == "" {
				return nil, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[ps.value] = segs[i]
		case segWildcard:
			return params, true
		}
	}
	return params, true
}

// splitPath splits a path into segments, discarding empty ones.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	raw := strings.Split(path, "/")
	segs := raw[:0]
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// StripQuery removes an embedded query string (and fragment) from a
// location, returning the bare path for matching.
func StripQuery(location string) string {
	if i := strings.IndexByte(location, '?'); i >= 0 {
		location = location[:i]
	}
	if i := strings.IndexByte(location, '#'); i >= 0 {
		location = location[:i]
	}
	return location
}
