package infer

import (
	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkctx"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
	"github.com/escalier-lang/escalier/internal/unify"
)

// inferPattern infers a pattern's type and binds every identifier it
// introduces into the current scope (spec.md §4.3). When expected is
// non-nil (an annotation or a value being destructured), the pattern's
// inferred shape is unified against it, acting as an upper bound that
// narrows fresh pattern variables to concrete field types.
func (c *Checker) inferPattern(pat ast.Pattern, expected types.Type) types.Type {
	seen := map[string]bool{}
	t := c.inferPatternRec(pat, seen)
	if expected == nil {
		return t
	}
	subst, err := unify.Unify(t, expected, c.Ctx)
	if err != nil {
		c.addErr(withSpan(err, pat.GetSpan()))
		return expected
	}
	c.Ctx.Apply(subst)
	return t.Apply(subst)
}

func (c *Checker) inferPatternRec(pat ast.Pattern, seen map[string]bool) types.Type {
	switch p := pat.(type) {
	case *ast.IdentPat:
		if seen[p.Name] {
			c.addErr(&checkerr.TypeError{Kind: checkerr.DuplicateIdentInPat, Span: p.GetSpan(), Name: p.Name})
		}
		seen[p.Name] = true
		tv := c.fresh(nil)
		c.Ctx.InsertBinding(p.Name, checkctx.Binding{Type: tv, Mutable: p.Mutable})
		return tv

	case *ast.WildcardPat:
		return c.fresh(nil)

	case *ast.LitPat:
		return c.inferExpr(p.Lit)

	case *ast.IsPat:
		if seen[p.Ident] {
			c.addErr(&checkerr.TypeError{Kind: checkerr.DuplicateIdentInPat, Span: p.GetSpan(), Name: p.Ident})
		}
		seen[p.Ident] = true
		tag := types.Ref{Name: p.ID}
		c.Ctx.InsertBinding(p.Ident, checkctx.Binding{Type: tag, Mutable: false})
		return tag

	case *ast.RestPat:
		inner := c.inferPatternRec(p.Arg, seen)
		return types.Rest{T: inner}

	case *ast.TuplePat:
		elems := make([]types.Type, len(p.Elems))
		for i, e := range p.Elems {
			if e == nil {
				elems[i] = c.fresh(nil)
				continue
			}
			elems[i] = c.inferPatternRec(e, seen)
		}
		return types.Tuple{Elements: elems, Mutable: true}

	case *ast.ObjectPat:
		elems := make([]types.Elem, 0, len(p.Props))
		for _, prop := range p.Props {
			switch pr := prop.(type) {
			case ast.KeyValuePat:
				t := c.inferPatternRec(pr.Value, seen)
				elems = append(elems, types.Prop{Name: pr.Key, T: t, Mutable: true})
			case ast.ShorthandPat:
				if seen[pr.Name] {
					c.addErr(&checkerr.TypeError{Kind: checkerr.DuplicateIdentInPat, Span: p.GetSpan(), Name: pr.Name})
				}
				seen[pr.Name] = true
				fresh := c.fresh(nil)
				var bound types.Type = fresh
				optional := false
				if pr.Default != nil {
					defT := c.inferExpr(pr.Default)
					if subst, err := unify.Unify(defT, fresh, c.Ctx); err == nil {
						c.Ctx.Apply(subst)
						bound = fresh.Apply(subst)
					}
					optional = true
				}
				c.Ctx.InsertBinding(pr.Name, checkctx.Binding{Type: bound, Mutable: false})
				elems = append(elems, types.Prop{Name: pr.Name, T: bound, Optional: optional, Mutable: true})
			case ast.RestPatProp:
				rest := c.inferPatternRec(pr.Arg, seen)
				_ = rest // the rest target absorbs remaining props; no elem recorded
			}
		}
		return types.Object{Elems: elems}

	default:
		return c.fresh(nil)
	}
}

// canonicalizeParamType applies CanonicalizeRestParam and, for optional
// params, widens to T | undefined (spec.md §4.3).
func canonicalizeParamType(t types.Type, optional bool) types.Type {
	t = types.CanonicalizeRestParam(t)
	if optional {
		return types.NormalizeUnion([]types.Type{t, types.KeywordType{Kind: types.Undefined}})
	}
	return t
}

// withSpan annotates a *checkerr.TypeError returned by unify.Unify (which
// has no span of its own) with the span of the node that triggered it.
func withSpan(err error, span ast.Span) *checkerr.TypeError {
	if te, ok := err.(*checkerr.TypeError); ok {
		te.Span = span
		return te
	}
	return &checkerr.TypeError{Kind: checkerr.CannotUnify, Span: span, Message: err.Error()}
}
