package nav

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/navguard-dev/navguard/pkg/pattern"
)

// ErrRouteNotFound is returned by named navigation when the route name
// is not registered. Unlike guard rejections this is a programming
// error and propagates to the caller.
var ErrRouteNotFound = errors.New("route not found")

// Route is a named route template.
type Route struct {
	Name     string
	Template string

	pattern pattern.Pattern
}

// Routes builds a route set for Machine registration, panicking on a bad
// template. Intended for static route tables.
//
// Example:
//
//	m := nav.New("/", nav.WithRoutes(nav.Routes(map[string]string{
//	    "home":    "/",
//	    "user":    "/users/:id",
//	    "docs":    "/docs/*",
//	})))
func Routes(templates map[string]string) []Route {
	routes := make([]Route, 0, len(templates))
	for name, template := range templates {
		routes = append(routes, Route{
			Name:     name,
			Template: template,
			pattern:  pattern.MustCompile(template),
		})
	}
	// Map iteration order is random; sort for deterministic matching.
	sort.Slice(routes, func(i, j int) bool { return routes[i].Name < routes[j].Name })
	return routes
}

// RegisterRoute adds a named route template to the machine.
// Malformed templates (for example a non-terminal wildcard) fail here,
// at registration time, never during live navigation.
func (m *Machine) RegisterRoute(name, template string) error {
	p, err := pattern.Compile(template)
	if err != nil {
		return fmt.Errorf("route %q: %w", name, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, Route{Name: name, Template: template, pattern: p})
	return nil
}

// Resolve matches a location against the registered routes and returns
// the route name and path parameters, without navigating. The query
// string is ignored for matching. Returns empty name when nothing
// matches.
func (m *Machine) Resolve(location string) (string, map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.routeFor(pattern.StripQuery(location))
}

// routeFor resolves a bare path to a registered route name and its path
// parameters. Routes are tried in registration order; the first match
// wins. Returns empty name when nothing matches.
func (m *Machine) routeFor(path string) (string, map[string]string) {
	for _, r := range m.routes {
		if r.pattern.Matches(path) {
			return r.Name, r.pattern.Params(path)
		}
	}
	return "", nil
}

// buildPath expands a route template with path parameters and appends
// encoded query parameters.
func (m *Machine) buildPath(name string, pathParams, queryParams map[string]string) (string, error) {
	m.mu.Lock()
	var template string
	found := false
	for _, r := range m.routes {
		if r.Name == name {
			template = r.Template
			found = true
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}

	segs := strings.Split(strings.Trim(template, "/"), "/")
	built := make([]string, 0, len(segs))
	for _, seg := range segs {
		switch {
		case seg == "":
			// Root template.
		case strings.HasPrefix(seg, ":"):
			param := seg[1:]
			value, ok := pathParams[param]
			if !ok || value == "" {
				return "", fmt.Errorf("route %q: missing path parameter %q", name, param)
			}
			built = append(built, url.PathEscape(value))
		case strings.HasPrefix(seg, "*"):
			return "", fmt.Errorf("route %q: cannot build a path for a wildcard template", name)
		default:
			built = append(built, seg)
		}
	}

	path := "/" + strings.Join(built, "/")
	if len(queryParams) > 0 {
		values := url.Values{}
		for k, v := range queryParams {
			values.Set(k, v)
		}
		path += "?" + values.Encode()
	}
	return path, nil
}
