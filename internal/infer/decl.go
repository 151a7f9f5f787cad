package infer

import (
	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkctx"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
	"github.com/escalier-lang/escalier/internal/unify"
)

// inferLetDecl infers the value, unifies it against an optional
// annotation, generalizes the result, and installs it as a scheme so
// later references get their own fresh instantiation (spec.md §4.7
// let-polymorphism).
func (c *Checker) inferLetDecl(l *ast.LetDecl) {
	valueT := c.inferExpr(l.Value)
	if l.Annotation != nil {
		declared := c.translateType(l.Annotation, nil)
		s, err := unify.Unify(valueT, declared, c.Ctx)
		if err != nil {
			c.addErr(withSpan(err, l.GetSpan()))
		} else {
			c.Ctx.Apply(s)
			valueT = declared.Apply(s)
		}
	}
	c.bindLetPattern(l.Pattern, valueT)
}

// bindLetPattern binds each identifier in pat to a generalized scheme of
// its corresponding slice of valueT, rather than inferPattern's plain
// monomorphic Binding, so `let id = fn(x) { x }` is usable at multiple
// instantiations afterward.
func (c *Checker) bindLetPattern(pat ast.Pattern, valueT types.Type) {
	switch p := pat.(type) {
	case *ast.IdentPat:
		if p.Mutable {
			c.checkNoMutableFromReadonly(p.GetSpan(), p.Name, valueT)
		} else {
			// An immutable binding can't be used to mutate its value even
			// when the value's own type has mutable parts (spec.md §4.9):
			// project it down to its readonly view before it's bound.
			valueT = readonlyView(valueT)
		}
		scheme := c.generalize(valueT)
		if len(scheme.TypeParams) == 0 {
			c.Ctx.InsertBinding(p.Name, checkctx.Binding{Type: valueT, Mutable: p.Mutable})
		} else {
			c.Ctx.InsertScheme(p.Name, scheme)
		}
	default:
		// Destructuring patterns bind each leaf monomorphically: the spec's
		// let-polymorphism applies to whole bound values, not to fields torn
		// out of a tuple/object destructure.
		c.inferPattern(pat, valueT)
	}
}

func (c *Checker) inferFunctionDecl(f *ast.FunctionDecl) {
	// Two-pass self-recursion: bind a monomorphic placeholder naming the
	// function before inferring its body, so a call to itself inside the
	// body resolves (spec.md §4.10 "self-recursion is allowed").
	placeholder := c.fresh(nil)
	c.Ctx.InsertBinding(f.Name, checkctx.Binding{Type: placeholder, Mutable: false})
	fnT := c.inferExpr(f.Fn)
	if s, err := unify.Unify(fnT, placeholder, c.Ctx); err == nil {
		c.Ctx.Apply(s)
		fnT = fnT.Apply(s)
	}
	// Drop the self-recursion placeholder before generalizing: generalize
	// treats every binding still in scope as part of the environment, so a
	// lingering placeholder bound to fnT itself would make fnT's own type
	// variables look "free in env" and block them from being quantified.
	c.Ctx.RemoveBinding(f.Name)
	c.Ctx.InsertScheme(f.Name, c.generalize(fnT))
}

func (c *Checker) inferTypeDecl(t *ast.TypeDecl) {
	scope, typeParams := c.bindTypeParams(t.TypeParams, nil)
	body := c.translateType(t.Value, scope)
	if len(typeParams) == 0 {
		c.Ctx.InsertAlias(t.Name, body)
		return
	}
	c.Ctx.InsertAliasScheme(t.Name, types.Scheme{TypeParams: typeParams, Body: body})
}

func (c *Checker) inferDeclareDecl(d *ast.DeclareDecl) {
	t := c.translateType(d.Annotation, nil)
	c.Ctx.InsertBinding(d.Name, checkctx.Binding{Type: t, Mutable: false})
}

// inferMatch infers the scrutinee, then each arm in its own scope (so
// pattern bindings don't leak), enforcing that a catch-all arm (Wildcard
// or a bare Ident pattern) appears last if present, and that there is at
// least one arm (spec.md §4.4/§7).
func (c *Checker) inferMatch(m *ast.Match) types.Type {
	scrutT := c.inferExpr(m.Scrutinee)
	if len(m.Arms) == 0 {
		c.addErr(&checkerr.TypeError{Kind: checkerr.MatchEmpty, Span: m.GetSpan()})
		return c.fresh(nil)
	}
	var branchTypes []types.Type
	seenCatchall := false
	for i, arm := range m.Arms {
		if seenCatchall {
			c.addErr(&checkerr.TypeError{Kind: checkerr.MatchCatchallMustBeLast, Span: m.GetSpan()})
		}
		if isCatchallPattern(arm.Pattern) {
			seenCatchall = true
		}
		c.Ctx.PushScope(checkctx.Inherit)
		armScrutT := c.narrowDiscriminatedUnion(scrutT, arm.Pattern)
		c.inferPattern(arm.Pattern, armScrutT)
		if arm.Guard != nil {
			guardT := c.inferExpr(arm.Guard)
			if s, err := unify.Unify(guardT, types.PrimType{Kind: types.Boolean}, c.Ctx); err == nil {
				c.Ctx.Apply(s)
			}
		}
		bodyT := c.inferExpr(arm.Body)
		c.Ctx.PopScope()
		branchTypes = append(branchTypes, bodyT)
		_ = i
	}
	if !seenCatchall {
		c.addErr(&checkerr.TypeError{
			Kind:     checkerr.MatchExhaustiveness,
			Severity: checkerr.SeverityWarning,
			Span:     m.GetSpan(),
		})
	}
	return types.NormalizeUnion(branchTypes)
}

func isCatchallPattern(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPat, *ast.IdentPat:
		return true
	default:
		return false
	}
}
