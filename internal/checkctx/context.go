package checkctx

import (
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
)

// Context is the checker's lexically scoped environment: a stack of
// Scopes plus a stack of diagnostic Report frames and the Arena fresh-id
// source every Checker instance owns (spec.md §3/§4.2). Each Checker owns
// exactly one Context, so concurrent checker runs never share mutable
// state (spec.md §5).
type Context struct {
	Arena  *types.Arena
	scopes []*Scope
	reports []*checkerr.Report
}

// New returns a Context with one root (prelude) scope already pushed.
func New(arena *types.Arena) *Context {
	c := &Context{Arena: arena}
	c.PushScope(Sync)
	return c
}

// PushScope opens a new lexical scope and a fresh diagnostic report frame.
func (c *Context) PushScope(kind ScopeKind) {
	parentAsync := false
	if len(c.scopes) > 0 {
		parentAsync = c.scopes[len(c.scopes)-1].IsAsync()
	}
	c.scopes = append(c.scopes, newScope(kind, parentAsync))
	c.reports = append(c.reports, checkerr.NewReport())
}

// PopScope closes the innermost scope, merging its report frame into the
// new innermost frame (or leaving it as the final Report if this was the
// last scope). Callers must pop on every exit path, including error
// paths, to avoid leaking frames (spec.md §5).
func (c *Context) PopScope() *checkerr.Report {
	n := len(c.scopes)
	popped := c.reports[n-1]
	c.scopes = c.scopes[:n-1]
	c.reports = c.reports[:n-1]
	if len(c.reports) > 0 {
		c.reports[len(c.reports)-1].Merge(popped)
	}
	return popped
}

// CurrentScope returns the innermost scope.
func (c *Context) CurrentScope() *Scope { return c.scopes[len(c.scopes)-1] }

// Scopes returns the full scope stack, outermost first. Used by
// generalization to compute which type variables are still free in an
// enclosing scope and therefore must not be quantified away.
func (c *Context) Scopes() []*Scope { return c.scopes }

// Report returns the innermost diagnostic frame, into which new errors
// discovered right now should be added.
func (c *Context) Report() *checkerr.Report { return c.reports[len(c.reports)-1] }

// IsAsync reports whether the current scope permits `await`.
func (c *Context) IsAsync() bool { return c.CurrentScope().IsAsync() }

// InsertBinding declares a value binding in the current scope.
func (c *Context) InsertBinding(name string, b Binding) {
	c.CurrentScope().Values[name] = b
}

// InsertScheme declares a polymorphic value (e.g. a generalized `let`) in
// the current scope. Any monomorphic placeholder binding previously
// inserted under the same name (e.g. a self-recursive fn's pre-body
// placeholder) is removed, since LookupValue prefers a Binding over a
// Scheme and a stale placeholder would otherwise shadow the
// generalization it's replacing.
func (c *Context) InsertScheme(name string, s types.Scheme) {
	delete(c.CurrentScope().Values, name)
	c.CurrentScope().Schemes[name] = s
}

// RemoveBinding deletes name's monomorphic binding from the current
// scope, if any. Used before generalizing a self-recursive fn's type: the
// placeholder binding inserted to support self-recursion during body
// inference would otherwise count toward envFreeTypeVariables and block
// generalization of the very type variables it introduced.
func (c *Context) RemoveBinding(name string) {
	delete(c.CurrentScope().Values, name)
}

// InsertAlias declares a type alias in the current scope.
func (c *Context) InsertAlias(name string, t types.Type) {
	c.CurrentScope().Aliases[name] = t
}

// LookupBinding walks outward from the current scope for a monomorphic
// value binding.
func (c *Context) LookupBinding(name string) (Binding, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i].Values[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// LookupScheme walks outward for a polymorphic value binding.
func (c *Context) LookupScheme(name string) (types.Scheme, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if s, ok := c.scopes[i].Schemes[name]; ok {
			return s, true
		}
	}
	return types.Scheme{}, false
}

// LookupValue looks up name as either a monomorphic binding or a scheme,
// instantiating the scheme with fresh vars if found there. This is the
// entry point expression inference uses for identifier lookup (spec.md
// §4.4).
func (c *Context) LookupValue(name string, instantiate func(types.Scheme) types.Type) (types.Type, bool, bool) {
	if b, ok := c.LookupBinding(name); ok {
		return b.Type, b.Mutable, true
	}
	if s, ok := c.LookupScheme(name); ok {
		return instantiate(s), false, true
	}
	return nil, false, false
}

// LookupAlias walks outward for a type alias.
func (c *Context) LookupAlias(name string) (types.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i].Aliases[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// ResolveTypeAlias implements unify.Resolver by expanding a Ref through
// the alias table. Returns t unchanged if it is not a resolvable alias.
func (c *Context) ResolveTypeAlias(t types.Type) types.Type {
	ref, ok := t.(types.Ref)
	if !ok {
		return t
	}
	aliased, ok := c.LookupAlias(ref.Name)
	if !ok {
		return t
	}
	if len(ref.TypeArgs) == 0 {
		return aliased
	}
	if scheme, ok := c.schemeFor(ref.Name); ok {
		subst := make(types.Subst, len(scheme.TypeParams))
		for i, tp := range scheme.TypeParams {
			if i < len(ref.TypeArgs) {
				subst[tp.ID] = ref.TypeArgs[i]
			}
		}
		return scheme.Body.Apply(subst)
	}
	return aliased
}

// LookupAliasScheme returns the type-parameter list a generic alias
// (`type Name<T> = ...`) was declared with, if name is one. Used by
// emitter-facing queries that need a declaration's own type parameters,
// not just its expanded body.
func (c *Context) LookupAliasScheme(name string) (types.Scheme, bool) {
	return c.schemeFor(name)
}

func (c *Context) schemeFor(name string) (types.Scheme, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if s, ok := c.scopes[i].Schemes["type:"+name]; ok {
			return s, true
		}
	}
	return types.Scheme{}, false
}

// InsertAliasScheme declares a generic type alias (`type Name<T> = ...`)
// as a scheme, keyed separately from value schemes so `type Foo` and a
// value binding named `Foo` never collide.
func (c *Context) InsertAliasScheme(name string, s types.Scheme) {
	c.CurrentScope().Schemes["type:"+name] = s
	c.InsertAlias(name, s.Body)
}

// Apply applies subst to every binding, scheme, and alias visible across
// the whole scope stack (spec.md §4.6: "Contexts implement apply by
// walking every binding/scheme").
func (c *Context) Apply(subst types.Subst) {
	for _, scope := range c.scopes {
		for name, b := range scope.Values {
			scope.Values[name] = Binding{Type: b.Type.Apply(subst), Mutable: b.Mutable}
		}
		for name, s := range scope.Schemes {
			scope.Schemes[name] = types.Scheme{TypeParams: s.TypeParams, Body: s.Body.Apply(subst)}
		}
		for name, t := range scope.Aliases {
			scope.Aliases[name] = t.Apply(subst)
		}
	}
}
