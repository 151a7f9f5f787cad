// Package checkctx implements the checker's lexically scoped Context:
// layered name -> (value type, mutability) bindings, type aliases ->
// schemes, nested scope push/pop, and the fresh-id counter every Arena
// allocation draws from (spec.md §4.2).
package checkctx

import "github.com/escalier-lang/escalier/internal/types"

// ScopeKind controls whether `await` is legal in a scope (spec.md §4.2).
type ScopeKind int

const (
	Inherit ScopeKind = iota // inherits the parent scope's async-ness
	Sync
	Async
)

// Binding is a variable binding in a scope: its type and whether it may
// be reassigned (spec.md §3 "Binding").
type Binding struct {
	Type    types.Type
	Mutable bool
}

// Scope is one lexical layer of the Context.
type Scope struct {
	Kind    ScopeKind
	Values  map[string]Binding
	Schemes map[string]types.Scheme
	Aliases map[string]types.Type
	isAsync bool
}

func newScope(kind ScopeKind, parentAsync bool) *Scope {
	async := parentAsync
	switch kind {
	case Sync:
		async = false
	case Async:
		async = true
	}
	return &Scope{
		Kind:    kind,
		Values:  make(map[string]Binding),
		Schemes: make(map[string]types.Scheme),
		Aliases: make(map[string]types.Type),
		isAsync: async,
	}
}

// IsAsync reports whether code directly in this scope may use `await`.
func (s *Scope) IsAsync() bool { return s.isAsync }
