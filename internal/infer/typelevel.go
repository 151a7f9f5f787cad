package infer

import (
	"github.com/escalier-lang/escalier/internal/types"
	"github.com/escalier-lang/escalier/internal/unify"
)

// reduceTypeLevel evaluates keyof/indexed-access/mapped/conditional
// operators as far as possible (spec.md §4.8). It is called once at the
// point a type annotation is fully translated (a let/param/return
// annotation, a type alias body); it is not re-run during unification,
// matching spec.md §9's answer that type-level operators reduce eagerly
// rather than being unified structurally.
func (c *Checker) reduceTypeLevel(t types.Type) types.Type {
	return c.reduceDepth(t, 0)
}

const maxReduceDepth = 64

func (c *Checker) reduceDepth(t types.Type, depth int) types.Type {
	if depth > maxReduceDepth || t == nil {
		return t
	}
	switch v := t.(type) {
	case types.KeyOf:
		return c.reduceKeyOf(c.reduceDepth(v.T, depth+1))
	case types.IndexAccess:
		return c.reduceIndexAccess(c.reduceDepth(v.Object, depth+1), c.reduceDepth(v.Index, depth+1), depth)
	case types.MappedType:
		reduced := c.reduceMappedType(v, depth)
		return c.expandMappedType(reduced)
	case types.ConditionalType:
		return c.reduceConditional(v, depth)
	case types.Union:
		out := make([]types.Type, len(v.Types))
		for i, m := range v.Types {
			out[i] = c.reduceDepth(m, depth+1)
		}
		return types.NormalizeUnion(out)
	case types.Intersection:
		out := make([]types.Type, len(v.Types))
		for i, m := range v.Types {
			out[i] = c.reduceDepth(m, depth+1)
		}
		return types.NormalizeIntersection(out)
	case types.Array:
		return types.Array{Elem: c.reduceDepth(v.Elem, depth+1), Mutable: v.Mutable}
	case types.Object:
		elems := make([]types.Elem, len(v.Elems))
		copy(elems, v.Elems)
		return types.Object{Elems: elems, IsInterface: v.IsInterface}
	default:
		return t
	}
}

// reduceKeyOf produces a union of string-literal types, one per named
// property, method or getter on an object. `keyof` of a Rest is the keyof
// of the wrapped type, and `keyof This` is never. Every other operand
// (including unions, intersections, tuples, arrays and primitives) is
// left as an unreduced KeyOf.
func (c *Checker) reduceKeyOf(obj types.Type) types.Type {
	resolved := c.Ctx.ResolveTypeAlias(obj)
	switch r := resolved.(type) {
	case types.Rest:
		return c.reduceKeyOf(r.T)
	case types.This:
		return types.KeywordType{Kind: types.Never}
	}
	o, ok := resolved.(types.Object)
	if !ok {
		return types.KeyOf{T: obj}
	}
	var keys []types.Type
	for _, e := range o.Elems {
		switch el := e.(type) {
		case types.Prop:
			keys = append(keys, types.Lit{Kind: types.LitStr, Str: el.Name})
		case types.Method:
			keys = append(keys, types.Lit{Kind: types.LitStr, Str: el.Name})
		case types.Getter:
			keys = append(keys, types.Lit{Kind: types.LitStr, Str: el.Name})
		}
	}
	if len(keys) == 0 {
		return types.KeywordType{Kind: types.Never}
	}
	return types.NormalizeUnion(keys)
}

// reduceIndexAccess looks up T[K]. When K is a union of literal keys, the
// result distributes over the union (spec.md §4.8 "indexed access
// distributes over a union index").
func (c *Checker) reduceIndexAccess(obj, index types.Type, depth int) types.Type {
	if u, ok := index.(types.Union); ok {
		parts := make([]types.Type, len(u.Types))
		for i, m := range u.Types {
			parts[i] = c.reduceIndexAccess(obj, m, depth+1)
		}
		return types.NormalizeUnion(parts)
	}
	resolved := c.Ctx.ResolveTypeAlias(obj)
	switch o := resolved.(type) {
	case types.Object:
		if lit, ok := index.(types.Lit); ok && lit.Kind == types.LitStr {
			if pt, found := o.LookupProp(lit.Str); found {
				return pt
			}
		}
		if idx, ok := findIndexElem(o); ok {
			return idx.Value
		}
	case types.Tuple:
		if lit, ok := index.(types.Lit); ok && lit.Kind == types.LitNum {
			i := int(parseIntLexeme(lit.Lexeme))
			if i >= 0 && i < len(o.Elements) {
				return o.Elements[i]
			}
		}
		return types.NormalizeUnion(o.Elements)
	case types.Array:
		return o.Elem
	}
	return types.IndexAccess{Object: obj, Index: index}
}

func findIndexElem(o types.Object) (types.Index, bool) {
	for _, e := range o.Elems {
		if idx, ok := e.(types.Index); ok {
			return idx, true
		}
	}
	return types.Index{}, false
}

// reduceMappedType expands {[P]: V for P in S} into a concrete Object by
// iterating S's keys (spec.md §4.8). S must reduce to an object or a
// union of string/number literals (a keyof result) for expansion to
// proceed; otherwise the MappedType is returned unreduced.
func (c *Checker) reduceMappedType(m types.MappedType, depth int) types.MappedType {
	return types.MappedType{
		TypeParam:        m.TypeParam,
		Source:           c.reduceDepth(m.Source, depth+1),
		Key:              m.Key,
		Value:            m.Value,
		OptionalModifier: m.OptionalModifier,
		ReadonlyModifier: m.ReadonlyModifier,
	}
}

// expandMappedType is the second half of mapped-type reduction, applied
// once the comprehension's source has been narrowed to a concrete key
// set; split out from reduceMappedType because it substitutes the bound
// type parameter once per key, which Apply alone cannot express.
func (c *Checker) expandMappedType(m types.MappedType) types.Type {
	keys := c.keysOf(m.Source)
	if keys == nil {
		return m
	}
	elems := make([]types.Elem, 0, len(keys))
	for _, k := range keys {
		subst := types.Subst{}
		// TypeParam is a surface name, not a Var id; substitution for it
		// happens by direct Ref replacement since mapped types bind by
		// name, not by allocated var (spec.md §3 MappedType representation).
		valueT := substituteRef(m.Value, m.TypeParam, k, subst)
		name, _ := literalKeyName(k)
		elems = append(elems, types.Prop{
			Name:     name,
			T:        valueT,
			Optional: m.OptionalModifier == types.ModifierAdd,
			Mutable:  m.ReadonlyModifier != types.ModifierAdd,
		})
	}
	return types.Object{Elems: elems}
}

func (c *Checker) keysOf(source types.Type) []types.Type {
	switch s := c.Ctx.ResolveTypeAlias(source).(type) {
	case types.Union:
		return s.Types
	case types.Lit:
		return []types.Type{s}
	case types.Object:
		var out []types.Type
		for _, e := range s.Elems {
			if p, ok := e.(types.Prop); ok {
				out = append(out, types.Lit{Kind: types.LitStr, Str: p.Name})
			}
		}
		return out
	default:
		return nil
	}
}

func literalKeyName(t types.Type) (string, bool) {
	lit, ok := t.(types.Lit)
	if !ok {
		return "", false
	}
	switch lit.Kind {
	case types.LitStr:
		return lit.Str, true
	case types.LitNum:
		return lit.Lexeme, true
	default:
		return "", false
	}
}

// substituteRef replaces every Ref{Name: name} occurrence in t with
// replacement, used for mapped-type value expansion where the bound
// variable is a surface name rather than a Var id.
func substituteRef(t types.Type, name string, replacement types.Type, _ types.Subst) types.Type {
	switch v := t.(type) {
	case types.Ref:
		if v.Name == name && len(v.TypeArgs) == 0 {
			return replacement
		}
		return t
	case types.IndexAccess:
		return types.IndexAccess{
			Object: substituteRef(v.Object, name, replacement, nil),
			Index:  substituteRef(v.Index, name, replacement, nil),
		}
	case types.Union:
		out := make([]types.Type, len(v.Types))
		for i, m := range v.Types {
			out[i] = substituteRef(m, name, replacement, nil)
		}
		return types.NormalizeUnion(out)
	default:
		return t
	}
}

// reduceConditional evaluates `if (C: E) { A } else { B }`, capturing
// `infer N` positions in E against C via unification before picking a
// branch (spec.md §4.8). If C still contains free type variables, the
// conditional cannot be decided yet and is returned unreduced (deferred
// conditional types, spec.md §9). A naked union check type distributes
// over the conditional member-by-member before either branch is chosen
// (spec.md §4.8: `(X|Y) extends E ? A : B = (X extends E ? A : B) | (Y
// extends E ? A : B)`).
func (c *Checker) reduceConditional(ct types.ConditionalType, depth int) types.Type {
	check := c.reduceDepth(ct.Check, depth+1)
	extends := ct.Extends

	if len(check.FreeTypeVariables()) > 0 {
		return types.ConditionalType{Check: check, Extends: extends, True: ct.True, False: ct.False}
	}

	if u, ok := check.(types.Union); ok {
		parts := make([]types.Type, len(u.Types))
		for i, m := range u.Types {
			parts[i] = c.reduceConditional(types.ConditionalType{
				Check: m, Extends: extends, True: ct.True, False: ct.False,
			}, depth+1)
		}
		return types.NormalizeUnion(parts)
	}

	infers := map[string]types.Type{}
	matched := c.matchInfer(check, extends, infers)

	if matched {
		trueT := substituteInfers(ct.True, infers)
		return c.reduceDepth(trueT, depth+1)
	}
	return c.reduceDepth(ct.False, depth+1)
}

// matchInfer structurally compares check against extends, binding any
// `infer N` position found in extends to the corresponding part of check,
// and reports whether extends (with its infer holes filled) matches.
// Anything not shaped by an `infer` hole falls through to the real
// unifier, so literal subsumption, union branches, vars, and object
// width-subtyping all apply here exactly as they do everywhere else
// "does this type fit where that one is expected" is asked (spec.md §4.8:
// "evaluate by unify(C, E)").
func (c *Checker) matchInfer(check, extends types.Type, infers map[string]types.Type) bool {
	switch e := extends.(type) {
	case types.InferType:
		infers[e.Name] = check
		return true
	case types.Array:
		c2, ok := check.(types.Array)
		if !ok {
			return false
		}
		return c.matchInfer(c2.Elem, e.Elem, infers)
	case types.Tuple:
		c2, ok := check.(types.Tuple)
		if !ok || len(c2.Elements) != len(e.Elements) {
			return false
		}
		for i := range e.Elements {
			if !c.matchInfer(c2.Elements[i], e.Elements[i], infers) {
				return false
			}
		}
		return true
	default:
		_, err := unify.Unify(check, extends, c.Ctx)
		return err == nil
	}
}

func substituteInfers(t types.Type, infers map[string]types.Type) types.Type {
	switch v := t.(type) {
	case types.InferType:
		if bound, ok := infers[v.Name]; ok {
			return bound
		}
		return t
	case types.Array:
		return types.Array{Elem: substituteInfers(v.Elem, infers), Mutable: v.Mutable}
	case types.Union:
		out := make([]types.Type, len(v.Types))
		for i, m := range v.Types {
			out[i] = substituteInfers(m, infers)
		}
		return types.NormalizeUnion(out)
	default:
		return t
	}
}
