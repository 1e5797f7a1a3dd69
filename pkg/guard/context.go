package guard

// Deps is a string-keyed, type-erased bag of dependencies handed to guards.
// It decouples guards from any specific framework type: a guard looks up
// the capabilities it needs with DepFrom and must not assume any ambient
// global state beyond what the bag supplies.
type Deps struct {
	values map[string]any
}

// NewDeps builds a dependency bag from the given values.
// The map is copied; later mutation of the argument has no effect.
func NewDeps(values map[string]any) Deps {
	if len(values) == 0 {
		return Deps{}
	}
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Deps{values: copied}
}

// Value returns the raw dependency stored under key.
func (d Deps) Value(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// With returns a copy of the bag with key set to value.
func (d Deps) With(key string, value any) Deps {
	copied := make(map[string]any, len(d.values)+1)
	for k, v := range d.values {
		copied[k] = v
	}
	copied[key] = value
	return Deps{values: copied}
}

// DepFrom retrieves a typed dependency from the context's bag.
// Returns (zero, false) when the key is absent or holds a different type.
//
// Example:
//
//	store, ok := guard.DepFrom[*SessionStore](gc, "sessions")
//	if !ok {
//	    return guard.RejectWith("session store unavailable"), nil
//	}
func DepFrom[T any](gc *Context, key string) (T, bool) {
	var zero T
	if gc == nil {
		return zero, false
	}
	v, ok := gc.Deps.Value(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Context is the immutable snapshot handed to a guard for one evaluation.
// It is constructed fresh per navigation attempt and must not be retained
// or mutated by guard implementations.
type Context struct {
	// Destination is the requested location, including any query string.
	Destination string

	// Location is the matched location with the query string stripped.
	Location string

	// RouteName is the registered route name for the destination,
	// empty when the destination matched no named route.
	RouteName string

	// PathParams holds parameters extracted from the matched pattern.
	PathParams map[string]string

	// QueryParams holds the decoded query parameters.
	QueryParams map[string]string

	// Payload is the opaque navigation payload supplied by the caller.
	Payload any

	// Deps is the dependency bag for this evaluation.
	Deps Deps
}
