package infer

import (
	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/types"
)

// narrowDiscriminatedUnion implements the disjoint-union narrowing a
// match arm gets for free when its scrutinee is a union of object shapes
// and the arm's pattern pins a literal value on some field: only the
// union members whose corresponding field is that same literal (or whose
// field is absent, leaving no basis to rule the member out) remain live
// for the rest of that arm's pattern/body inference. Members the pattern
// can't possibly match are dropped rather than making the arm unify
// against the whole union.
func (c *Checker) narrowDiscriminatedUnion(scrutT types.Type, pat ast.Pattern) types.Type {
	u, ok := c.Ctx.ResolveTypeAlias(scrutT).(types.Union)
	if !ok {
		return scrutT
	}
	objPat, ok := pat.(*ast.ObjectPat)
	if !ok {
		return scrutT
	}

	var discriminants []struct {
		name string
		lit  types.Lit
	}
	for _, prop := range objPat.Props {
		kv, ok := prop.(ast.KeyValuePat)
		if !ok {
			continue
		}
		litPat, ok := kv.Value.(*ast.LitPat)
		if !ok {
			continue
		}
		litT := c.inferExpr(litPat.Lit)
		lit, ok := litT.(types.Lit)
		if !ok {
			continue
		}
		discriminants = append(discriminants, struct {
			name string
			lit  types.Lit
		}{kv.Key, lit})
	}
	if len(discriminants) == 0 {
		return scrutT
	}

	var kept []types.Type
	for _, member := range u.Types {
		obj, ok := c.Ctx.ResolveTypeAlias(member).(types.Object)
		if !ok {
			kept = append(kept, member)
			continue
		}
		matches := true
		for _, d := range discriminants {
			fieldT, found := obj.LookupProp(d.name)
			if !found {
				continue // no basis to rule this member out
			}
			fieldLit, ok := fieldT.(types.Lit)
			if !ok {
				continue
			}
			if !sameLit(fieldLit, d.lit) {
				matches = false
				break
			}
		}
		if matches {
			kept = append(kept, member)
		}
	}
	if len(kept) == 0 {
		return scrutT
	}
	return types.NormalizeUnion(kept)
}

func sameLit(a, b types.Lit) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case types.LitStr:
		return a.Str == b.Str
	case types.LitNum:
		return a.Lexeme == b.Lexeme
	case types.LitBool:
		return a.Bool == b.Bool
	default:
		return true
	}
}
