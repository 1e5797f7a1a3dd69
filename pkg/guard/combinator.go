package guard

import "context"

// AllOf combines guards so that every member must allow.
//
// Members are evaluated in list order; the first non-Allow result is
// returned and the remaining members are never invoked. Members whose
// ShouldActivateFor rejects the path are skipped. The combinator's
// priority is the maximum of its members' priorities.
func AllOf(guards ...Guard) Guard {
	return &allOf{members: guards}
}

type allOf struct {
	members []Guard
}

func (g *allOf) Priority() int { return maxPriority(g.members) }

// ShouldActivateFor is true when any member would activate; applicability
// of individual members is re-checked during activation.
func (g *allOf) ShouldActivateFor(path string) bool {
	return anyApplies(g.members, path)
}

func (g *allOf) Activate(ctx context.Context, gc *Context) (Result, error) {
	for _, m := range g.members {
		if !m.ShouldActivateFor(gc.Location) {
			continue
		}
		result, err := m.Activate(ctx, gc)
		if err != nil {
			return Result{}, err
		}
		if !result.IsAllow() {
			return result, nil
		}
	}
	return Allow(), nil
}

// AnyOf combines guards so that a single allowing member suffices.
//
// Members are evaluated in list order and the first Allow is returned
// immediately. If no member allows, the *last* Reject/Redirect seen is
// returned: the most recent objection wins, so later (typically more
// specific) members take precedence in the failure message. A member
// error counts as an objection equivalent to a reject and does not stop
// later members from allowing.
func AnyOf(guards ...Guard) Guard {
	return &anyOf{members: guards}
}

type anyOf struct {
	members []Guard
}

func (g *anyOf) Priority() int { return maxPriority(g.members) }

func (g *anyOf) ShouldActivateFor(path string) bool {
	return anyApplies(g.members, path)
}

func (g *anyOf) Activate(ctx context.Context, gc *Context) (Result, error) {
	evaluated := false
	var last Result
	for _, m := range g.members {
		if !m.ShouldActivateFor(gc.Location) {
			continue
		}
		result, err := m.Activate(ctx, gc)
		if err != nil {
			result = RejectWith("guard error: " + err.Error())
		}
		if result.IsAllow() {
			return result, nil
		}
		evaluated = true
		last = result
	}
	if !evaluated {
		return Allow(), nil
	}
	return last, nil
}

func maxPriority(members []Guard) int {
	priority := 0
	for i, m := range members {
		if i == 0 || m.Priority() > priority {
			priority = m.Priority()
		}
	}
	return priority
}

func anyApplies(members []Guard, path string) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if m.ShouldActivateFor(path) {
			return true
		}
	}
	return false
}
