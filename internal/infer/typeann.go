package infer

import (
	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/types"
)

// typeParamScope maps an explicit generic parameter's surface name to the
// types.Type (a Ref or a fresh constrained Var) standing in for it while
// translating a type annotation or inferring a generic's body.
type typeParamScope map[string]types.Type

// translateType turns a surface TypeAnnotation into a types.Type. Unknown
// names are looked up in the Context's alias table; names found in scope
// resolve to type parameter references instead.
func (c *Checker) translateType(ann ast.TypeAnnotation, scope typeParamScope) types.Type {
	if ann == nil {
		return c.fresh(nil)
	}
	switch a := ann.(type) {
	case *ast.TypeRefAnn:
		if scope != nil {
			if t, ok := scope[a.Name]; ok && len(a.TypeArgs) == 0 {
				return t
			}
		}
		args := make([]types.Type, len(a.TypeArgs))
		for i, arg := range a.TypeArgs {
			args[i] = c.translateType(arg, scope)
		}
		if len(args) == 1 && (a.Name == "Array" || a.Name == "ReadonlyArray") {
			return types.Array{Elem: args[0], Mutable: a.Name == "Array"}
		}
		if alias, ok := c.Ctx.LookupAlias(a.Name); ok && len(args) == 0 {
			return alias
		}
		if _, ok := c.Ctx.LookupAlias(a.Name); !ok {
			if !isKnownBuiltinAlias(a.Name) {
				c.unknownType(a.GetSpan(), a.Name)
			}
		}
		return types.Ref{Name: a.Name, TypeArgs: args}
	case *ast.TypePrimAnn:
		return translatePrimName(a.Name)
	case *ast.TypeLitAnn:
		return translateLitAnn(a)
	case *ast.TypeObjectAnn:
		return c.translateObjectAnn(a, scope)
	case *ast.TypeTupleAnn:
		elems := make([]types.Type, len(a.Elems))
		for i, e := range a.Elems {
			elems[i] = c.translateType(e, scope)
		}
		return types.Tuple{Elements: elems, Mutable: true}
	case *ast.TypeArrayAnn:
		return types.Array{Elem: c.translateType(a.Elem, scope), Mutable: a.Mutable}
	case *ast.TypeRestAnn:
		return types.Rest{T: c.translateType(a.T, scope)}
	case *ast.TypeUnionAnn:
		ts := make([]types.Type, len(a.Types))
		for i, t := range a.Types {
			ts[i] = c.translateType(t, scope)
		}
		return types.NormalizeUnion(ts)
	case *ast.TypeIntersectionAnn:
		ts := make([]types.Type, len(a.Types))
		for i, t := range a.Types {
			ts[i] = c.translateType(t, scope)
		}
		return types.NormalizeIntersection(ts)
	case *ast.TypeFuncAnn:
		return c.translateFuncAnn(a, scope)
	case *ast.TypeKeyOfAnn:
		return c.reduceTypeLevel(types.KeyOf{T: c.translateType(a.T, scope)})
	case *ast.TypeIndexAccessAnn:
		return c.reduceTypeLevel(types.IndexAccess{Object: c.translateType(a.Object, scope), Index: c.translateType(a.Index, scope)})
	case *ast.TypeMappedAnn:
		return c.reduceTypeLevel(c.translateMappedAnn(a, scope))
	case *ast.TypeConditionalAnn:
		return c.reduceTypeLevel(types.ConditionalType{
			Check:   c.translateType(a.Check, scope),
			Extends: c.translateType(a.Extends, scope),
			True:    c.translateType(a.True, scope),
			False:   c.translateType(a.False, scope),
		})
	case *ast.TypeInferAnn:
		return types.InferType{Name: a.Name}
	case *ast.TypeTypeOfAnn:
		if t, _, ok := c.Ctx.LookupValue(a.Ident, c.instantiate); ok {
			return t
		}
		c.unknownIdent(a.GetSpan(), a.Ident)
		return c.fresh(nil)
	case *ast.TypeThisAnn:
		return types.This{}
	case *ast.TypeWildcardAnn:
		return types.Wildcard{}
	default:
		return c.fresh(nil)
	}
}

func isKnownBuiltinAlias(name string) bool {
	switch name {
	case "Array", "ReadonlyArray", "Promise", "Record":
		return true
	default:
		return false
	}
}

func translatePrimName(name string) types.Type {
	switch name {
	case "number":
		return types.PrimType{Kind: types.Number}
	case "string":
		return types.PrimType{Kind: types.String}
	case "boolean":
		return types.PrimType{Kind: types.Boolean}
	case "symbol":
		return types.PrimType{Kind: types.SymbolPrim}
	case "null":
		return types.KeywordType{Kind: types.Null}
	case "undefined":
		return types.KeywordType{Kind: types.Undefined}
	case "never":
		return types.KeywordType{Kind: types.Never}
	case "unknown":
		return types.KeywordType{Kind: types.Unknown}
	default:
		return types.PrimType{Kind: types.String}
	}
}

func translateLitAnn(a *ast.TypeLitAnn) types.Type {
	switch a.Kind {
	case "num":
		return types.Lit{Kind: types.LitNum, Lexeme: a.Num}
	case "str":
		return types.Lit{Kind: types.LitStr, Str: a.Str}
	case "bool":
		return types.Lit{Kind: types.LitBool, Bool: a.Bool}
	case "null":
		return types.Lit{Kind: types.LitNull}
	case "undefined":
		return types.Lit{Kind: types.LitUndefined}
	default:
		return types.Lit{Kind: types.LitStr, Str: a.Str}
	}
}

func (c *Checker) translateObjectAnn(a *ast.TypeObjectAnn, scope typeParamScope) types.Type {
	elems := make([]types.Elem, 0, len(a.Members))
	for _, m := range a.Members {
		switch member := m.(type) {
		case ast.TypePropAnn:
			elems = append(elems, types.Prop{
				Name:     member.Name,
				Optional: member.Optional,
				Mutable:  member.Mutable,
				Readonly: member.Readonly,
				T:        c.translateType(member.T, scope),
			})
		case ast.TypeMethodAnn:
			innerScope, typeParams := c.bindTypeParams(member.TypeParams, scope)
			params := make([]types.Type, len(member.Params))
			for i, p := range member.Params {
				params[i] = c.translateParamAnn(p, innerScope)
			}
			elems = append(elems, types.Method{
				Name:       member.Name,
				TypeParams: typeParams,
				Params:     params,
				Ret:        c.translateType(member.Ret, innerScope),
				Mutates:    member.Mutates,
			})
		case ast.TypeIndexAnn:
			elems = append(elems, types.Index{
				Key:     c.translateType(member.KeyType, scope),
				Value:   c.translateType(member.Value, scope),
				Mutable: member.Mutable,
			})
		case ast.TypeCallAnn:
			innerScope, typeParams := c.bindTypeParams(member.TypeParams, scope)
			params := make([]types.Type, len(member.Params))
			for i, p := range member.Params {
				params[i] = c.translateParamAnn(p, innerScope)
			}
			elems = append(elems, types.Call{TypeParams: typeParams, Params: params, Ret: c.translateType(member.Ret, innerScope)})
		}
	}
	return types.Object{Elems: elems, IsInterface: a.IsInterface}
}

func (c *Checker) translateParamAnn(p ast.ParamAnn, scope typeParamScope) types.Type {
	t := c.translateType(p.Annotation, scope)
	if p.Rest {
		return types.Rest{T: t}
	}
	if p.Optional {
		return types.NormalizeUnion([]types.Type{t, types.KeywordType{Kind: types.Undefined}})
	}
	return t
}

func (c *Checker) translateFuncAnn(a *ast.TypeFuncAnn, scope typeParamScope) types.Type {
	innerScope, typeParams := c.bindTypeParams(a.TypeParams, scope)
	params := make([]types.Type, len(a.Params))
	for i, p := range a.Params {
		params[i] = c.translateParamAnn(p, innerScope)
	}
	var throws types.Type
	if a.Throws != nil {
		throws = c.translateType(a.Throws, innerScope)
	}
	return types.TFunc{
		TypeParams: typeParams,
		Params:     params,
		ReturnType: c.translateType(a.Ret, innerScope),
		Throws:     throws,
	}
}

func (c *Checker) translateMappedAnn(a *ast.TypeMappedAnn, scope typeParamScope) types.Type {
	innerScope := make(typeParamScope, len(scope)+1)
	for k, v := range scope {
		innerScope[k] = v
	}
	innerScope[a.TypeParam] = types.Ref{Name: a.TypeParam}
	return types.MappedType{
		TypeParam:        a.TypeParam,
		Source:           c.translateType(a.Source, scope),
		Value:            c.translateType(a.Value, innerScope),
		OptionalModifier: modifierOf(a.OptionalModifier),
		ReadonlyModifier: modifierOf(a.ReadonlyModifier),
	}
}

func modifierOf(s string) types.Modifier {
	switch s {
	case "+":
		return types.ModifierAdd
	case "-":
		return types.ModifierRemove
	default:
		return types.ModifierNone
	}
}

// bindTypeParams allocates fresh constrained Vars for a set of explicit
// type-parameter declarations, returning an extended scope plus the
// types.TypeParam list (used by Scheme/TFunc construction).
func (c *Checker) bindTypeParams(decls []ast.TypeParamDecl, outer typeParamScope) (typeParamScope, []types.TypeParam) {
	if len(decls) == 0 {
		return outer, nil
	}
	scope := make(typeParamScope, len(outer)+len(decls))
	for k, v := range outer {
		scope[k] = v
	}
	out := make([]types.TypeParam, len(decls))
	for i, d := range decls {
		var constraint types.Type
		if d.Constraint != nil {
			constraint = c.translateType(d.Constraint, scope)
		}
		v := c.Arena.FreshVarNamed(d.Name, constraint)
		scope[d.Name] = v
		var def types.Type
		if d.Default != nil {
			def = c.translateType(d.Default, scope)
		}
		out[i] = types.TypeParam{Name: d.Name, ID: v.ID, Constraint: constraint, Default: def}
	}
	return scope, out
}
