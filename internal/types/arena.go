package types

import "sync/atomic"

// Arena allocates fresh type-variable ids for a single
// checking run (spec.md §4.1). Every Checker instance owns its own Arena
// so that multiple checkers can run concurrently (spec.md §5).
type Arena struct {
	nextID uint64
}

// NewArena returns a fresh, empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// FreshVar allocates a new Var with a new id, honoring an optional upper
// bound constraint consulted during unification.
func (a *Arena) FreshVar(constraint Type) Var {
	id := VarID(atomic.AddUint64(&a.nextID, 1))
	return Var{ID: id, Constraint: constraint}
}

// FreshVarNamed is FreshVar but with a display name (used for explicit
// type parameters and the builtin prelude's "T", "U", ...).
func (a *Arena) FreshVarNamed(name string, constraint Type) Var {
	v := a.FreshVar(constraint)
	v.Name = name
	return v
}

// Peek returns the id that would be allocated next, without allocating it.
func (a *Arena) Peek() VarID {
	return VarID(atomic.LoadUint64(&a.nextID) + 1)
}
