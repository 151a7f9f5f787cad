package types

import "strings"

// Scheme is a polymorphic type: a body closed over a list of universally
// quantified type parameters with optional constraints and defaults
// (spec.md §3 "Scheme").
type Scheme struct {
	TypeParams []TypeParam
	Body       Type
}

func (s Scheme) String() string {
	if len(s.TypeParams) == 0 {
		return s.Body.String()
	}
	names := make([]string, len(s.TypeParams))
	for i, tp := range s.TypeParams {
		names[i] = tp.Name
		if tp.Constraint != nil {
			names[i] += ": " + tp.Constraint.String()
		}
	}
	return "<" + strings.Join(names, ", ") + ">" + s.Body.String()
}

// FreeTypeVariables returns the free variables of the scheme's body that
// are not bound by its own type parameters. Per spec.md invariant 3, a
// well-formed scheme produced by Generalize has none of these referring
// outside its own type-parameter scope, but this is still meaningful for
// schemes built by hand (e.g. builtins).
func (s Scheme) FreeTypeVariables() []VarID {
	bound := make(map[VarID]bool, len(s.TypeParams))
	for _, tp := range s.TypeParams {
		bound[tp.ID] = true
	}
	var out []VarID
	for _, id := range s.Body.FreeTypeVariables() {
		if !bound[id] {
			out = append(out, id)
		}
	}
	return out
}
