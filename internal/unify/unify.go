// Package unify implements Escalier's structural unifier (spec.md §4.5).
// Unify(t1, t2, ctx) treats t1 as a subtype constraint of t2: "t1 is
// acceptable where t2 is expected" -- used for annotation-vs-inferred
// flow (the annotation is t2, the inferred type is t1) and for ordinary
// expression-vs-expected-parameter flow.
package unify

import (
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
)

// Resolver looks up type aliases so Unify can expand a Ref that wasn't
// resolved locally. checkctx.Context satisfies this interface.
type Resolver interface {
	ResolveTypeAlias(types.Type) types.Type
}

type pair struct{ t1, t2 types.Type }

// Unify attempts to find a substitution under which t1 is a subtype of
// t2, per the rules in spec.md §4.5. resolver may be nil.
func Unify(t1, t2 types.Type, resolver Resolver) (types.Subst, error) {
	return unify(t1, t2, nil, resolver)
}

func unify(t1, t2 types.Type, visited []pair, resolver Resolver) (types.Subst, error) {
	// Co-induction: recursive alias unification (e.g. `type List = {head:
	// number, tail: List}`) can revisit the same pair; assume success
	// rather than looping forever (spec.md §9 "Cyclic types").
	for _, p := range visited {
		if sameType(p.t1, t1) && sameType(p.t2, t2) {
			return types.Subst{}, nil
		}
	}
	visited = append(visited, pair{t1, t2})

	if sameType(t1, t2) {
		return types.Subst{}, nil
	}

	// Var is always handled first regardless of the other side's kind.
	if v1, ok := t1.(types.Var); ok {
		return bind(v1, t2)
	}

	// Expand Refs through the resolver before any other dispatch.
	if ref, ok := t1.(types.Ref); ok {
		if resolver != nil {
			if expanded := resolver.ResolveTypeAlias(ref); !sameType(expanded, ref) {
				return unify(expanded, t2, visited, resolver)
			}
		}
	}
	if ref, ok := t2.(types.Ref); ok {
		if v2, ok2 := t1.(types.Var); ok2 {
			return bind(v2, t2)
		}
		if resolver != nil {
			if expanded := resolver.ResolveTypeAlias(ref); !sameType(expanded, ref) {
				return unify(t1, expanded, visited, resolver)
			}
		}
	}

	if v2, ok := t2.(types.Var); ok {
		return bind(v2, t1)
	}

	// Literal subsumption (rule 4): Lit <: Prim/Keyword of its base.
	if lit, ok := t1.(types.Lit); ok {
		if sameType(lit.Base(), t2) {
			return types.Subst{}, nil
		}
	}

	// t1 <: (A | B): t1 must unify with at least one branch (rule 6),
	// preferring exact structural equality, else the first that succeeds.
	if union2, ok := t2.(types.Union); ok {
		if _, isUnion1 := t1.(types.Union); !isUnion1 {
			for _, member := range union2.Types {
				if sameType(t1, member) {
					return types.Subst{}, nil
				}
			}
			for _, member := range union2.Types {
				if s, err := unify(t1, member, visited, resolver); err == nil {
					return s, nil
				}
			}
			return nil, unifyErr(t1, t2, checkerr.NoUnionBranchMatches)
		}
	}

	// (A | B) <: t2: every member must unify with t2 (rule 5).
	if union1, ok := t1.(types.Union); ok {
		s := types.Subst{}
		for _, member := range union1.Types {
			m, err := unify(member.Apply(s), t2.Apply(s), visited, resolver)
			if err != nil {
				return nil, err
			}
			s = s.Compose(m)
		}
		return s, nil
	}

	// t1 <: (A & B): t1 must unify with every conjunct (rule 8).
	if ix2, ok := t2.(types.Intersection); ok {
		s := types.Subst{}
		for _, part := range ix2.Types {
			m, err := unify(t1.Apply(s), part.Apply(s), visited, resolver)
			if err != nil {
				return nil, err
			}
			s = s.Compose(m)
		}
		return s, nil
	}

	// (A & B) <: t2: at least one conjunct must unify with t2 (rule 7).
	if ix1, ok := t1.(types.Intersection); ok {
		for _, part := range ix1.Types {
			if s, err := unify(part, t2, visited, resolver); err == nil {
				return s, nil
			}
		}
		return nil, unifyErr(t1, t2, checkerr.NoUnionBranchMatches)
	}

	switch a := t1.(type) {
	case types.PrimType:
		b, ok := t2.(types.PrimType)
		if !ok || a.Kind != b.Kind {
			return nil, unifyErr(t1, t2, checkerr.PrimMismatch)
		}
		return types.Subst{}, nil
	case types.KeywordType:
		b, ok := t2.(types.KeywordType)
		if !ok || a.Kind != b.Kind {
			return nil, unifyErr(t1, t2, checkerr.PrimMismatch)
		}
		return types.Subst{}, nil
	case types.Lit:
		b, ok := t2.(types.Lit)
		if !ok || !sameType(a, b) {
			return nil, unifyErr(t1, t2, checkerr.PrimMismatch)
		}
		return types.Subst{}, nil
	case types.This:
		if _, ok := t2.(types.This); ok {
			return types.Subst{}, nil
		}
		return nil, unifyErr(t1, t2, checkerr.PrimMismatch)
	case types.Object:
		return unifyObject(a, t2, visited, resolver)
	case types.Tuple:
		return unifyTuple(a, t2, visited, resolver)
	case types.Array:
		return unifyArray(a, t2, visited, resolver)
	case types.TFunc:
		return unifyFunc(a, t2, visited, resolver)
	case types.Ref:
		b, ok := t2.(types.Ref)
		if !ok || a.Name != b.Name || len(a.TypeArgs) != len(b.TypeArgs) {
			return nil, unifyErr(t1, t2, checkerr.PrimMismatch)
		}
		s := types.Subst{}
		for i := range a.TypeArgs {
			m, err := unify(a.TypeArgs[i].Apply(s), b.TypeArgs[i].Apply(s), visited, resolver)
			if err != nil {
				return nil, err
			}
			s = s.Compose(m)
		}
		return s, nil
	default:
		return nil, unifyErr(t1, t2, checkerr.PrimMismatch)
	}
}

func unifyObject(a types.Object, t2 types.Type, visited []pair, resolver Resolver) (types.Subst, error) {
	b, ok := t2.(types.Object)
	if !ok {
		return nil, unifyErr(a, t2, checkerr.PrimMismatch)
	}
	s := types.Subst{}
	for _, elem := range b.Elems {
		switch be := elem.(type) {
		case types.Prop:
			av, found := a.LookupProp(be.Name)
			if !found {
				if be.Optional {
					continue
				}
				return nil, unifyErr(a, t2, checkerr.MissingProp)
			}
			// Rule 9: readonly accepts readonly or mutable; mutable
			// requires mutable.
			if ap, ok := lookupPropElem(a, be.Name); ok {
				if be.Mutable && !ap.Mutable {
					return nil, unifyErr(a, t2, checkerr.MutabilityMismatch)
				}
			}
			m, err := unify(av.Apply(s), be.T.Apply(s), visited, resolver)
			if err != nil {
				return nil, err
			}
			s = s.Compose(m)
		case types.Method, types.Getter:
			name := memberName(be)
			av, found := a.LookupProp(name)
			if !found {
				return nil, unifyErr(a, t2, checkerr.MissingProp)
			}
			bv, _ := b.LookupProp(name)
			m, err := unify(av.Apply(s), bv.Apply(s), visited, resolver)
			if err != nil {
				return nil, err
			}
			s = s.Compose(m)
		}
	}
	return s, nil
}

func lookupPropElem(o types.Object, name string) (types.Prop, bool) {
	for _, e := range o.Elems {
		if p, ok := e.(types.Prop); ok && p.Name == name {
			return p, true
		}
	}
	return types.Prop{}, false
}

func memberName(e types.Elem) string {
	switch v := e.(type) {
	case types.Method:
		return v.Name
	case types.Getter:
		return v.Name
	case types.Setter:
		return v.Name
	default:
		return ""
	}
}

func unifyTuple(a types.Tuple, t2 types.Type, visited []pair, resolver Resolver) (types.Subst, error) {
	switch b := t2.(type) {
	case types.Tuple:
		if len(a.Elements) != len(b.Elements) {
			return nil, unifyErr(a, t2, checkerr.ArityMismatch)
		}
		s := types.Subst{}
		for i := range a.Elements {
			m, err := unify(a.Elements[i].Apply(s), b.Elements[i].Apply(s), visited, resolver)
			if err != nil {
				return nil, err
			}
			s = s.Compose(m)
		}
		return s, nil
	case types.Array:
		s := types.Subst{}
		for _, el := range a.Elements {
			m, err := unify(el.Apply(s), b.Elem.Apply(s), visited, resolver)
			if err != nil {
				return nil, err
			}
			s = s.Compose(m)
		}
		return s, nil
	default:
		return nil, unifyErr(a, t2, checkerr.PrimMismatch)
	}
}

func unifyArray(a types.Array, t2 types.Type, visited []pair, resolver Resolver) (types.Subst, error) {
	b, ok := t2.(types.Array)
	if !ok {
		return nil, unifyErr(a, t2, checkerr.PrimMismatch)
	}
	return unify(a.Elem, b.Elem, visited, resolver)
}

func unifyFunc(a types.TFunc, t2 types.Type, visited []pair, resolver Resolver) (types.Subst, error) {
	b, ok := t2.(types.TFunc)
	if !ok {
		return nil, unifyErr(a, t2, checkerr.PrimMismatch)
	}
	required := 0
	for _, p := range b.Params {
		if !isOptionalParam(p) {
			required++
		}
	}
	if len(a.Params) < required || len(a.Params) > len(b.Params) {
		return nil, unifyErr(a, t2, checkerr.ArityMismatch)
	}
	s := types.Subst{}
	for i := range a.Params {
		// Parameters unify contravariantly: the expected (b) param is the
		// subtype constraint against the actual (a) param.
		m, err := unify(stripOptional(b.Params[i]), stripOptional(a.Params[i]), visited, resolver)
		if err != nil {
			return nil, err
		}
		s = s.Compose(m)
	}
	// Return type unifies covariantly.
	m, err := unify(a.ReturnType.Apply(s), b.ReturnType.Apply(s), visited, resolver)
	if err != nil {
		return nil, err
	}
	return s.Compose(m), nil
}

func isOptionalParam(t types.Type) bool {
	u, ok := t.(types.Union)
	if !ok {
		return false
	}
	for _, m := range u.Types {
		if kw, ok := m.(types.KeywordType); ok && kw.Kind == types.Undefined {
			return true
		}
	}
	return false
}

func stripOptional(t types.Type) types.Type {
	u, ok := t.(types.Union)
	if !ok {
		return t
	}
	rest := make([]types.Type, 0, len(u.Types))
	for _, m := range u.Types {
		if kw, ok := m.(types.KeywordType); ok && kw.Kind == types.Undefined {
			continue
		}
		rest = append(rest, m)
	}
	if len(rest) == 0 {
		return types.KeywordType{Kind: types.Undefined}
	}
	return types.NormalizeUnion(rest)
}

// bind binds a type variable to a type, performing the occurs check
// (spec.md invariant 2).
func bind(tv types.Var, t types.Type) (types.Subst, error) {
	if v, ok := t.(types.Var); ok && v.ID == tv.ID {
		return types.Subst{}, nil
	}
	if occurs(tv, t) {
		return nil, &checkerr.TypeError{
			Kind:   checkerr.CannotUnify,
			Reason: checkerr.OccursCheck,
			T1:     tv,
			T2:     t,
		}
	}
	if tv.Constraint != nil {
		if _, err := unify(t, tv.Constraint, nil, nil); err != nil {
			return nil, err
		}
	}
	return types.Subst{tv.ID: t}, nil
}

// occurs reports whether tv appears free in t (spec.md invariant 2).
func occurs(tv types.Var, t types.Type) bool {
	for _, id := range t.FreeTypeVariables() {
		if id == tv.ID {
			return true
		}
	}
	return false
}

func sameType(a, b types.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.String() == b.String()
}

func unifyErr(t1, t2 types.Type, reason checkerr.UnifyReason) error {
	return &checkerr.TypeError{
		Kind:   checkerr.CannotUnify,
		Reason: reason,
		T1:     t1,
		T2:     t2,
	}
}
