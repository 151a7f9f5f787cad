package infer

import (
	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
	"github.com/escalier-lang/escalier/internal/unify"
)

// inferExpr dispatches on an expression's concrete type and returns its
// inferred type, attributing the result onto the AST node itself (spec.md
// §4.4/§4.10 "every expression node is attributed its inferred type").
func (c *Checker) inferExpr(expr ast.Expression) types.Type {
	t := c.inferExprRaw(expr)
	expr.SetInferredType(t)
	return t
}

func (c *Checker) inferExprRaw(expr ast.Expression) types.Type {
	switch e := expr.(type) {
	case *ast.NumLit:
		return types.Lit{Kind: types.LitNum, Lexeme: e.Lexeme}
	case *ast.StrLit:
		return types.Lit{Kind: types.LitStr, Str: e.Value}
	case *ast.BoolLit:
		return types.Lit{Kind: types.LitBool, Bool: e.Value}
	case *ast.NullLit:
		return types.Lit{Kind: types.LitNull}
	case *ast.UndefinedLit:
		return types.Lit{Kind: types.LitUndefined}

	case *ast.Ident:
		t, _, ok := c.Ctx.LookupValue(e.Name, c.instantiate)
		if !ok {
			c.unknownIdent(e.GetSpan(), e.Name)
			return c.fresh(nil)
		}
		return t

	case *ast.Binary:
		return c.inferBinary(e)
	case *ast.Unary:
		return c.inferUnary(e)

	case *ast.ObjectLit:
		return c.inferObjectLit(e)
	case *ast.ArrayLit:
		return c.inferArrayLit(e)
	case *ast.TupleLit:
		elems := make([]types.Type, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = c.inferExpr(el)
		}
		return types.Tuple{Elements: elems, Mutable: true}

	case *ast.Member:
		return c.inferMember(e)
	case *ast.Index:
		return c.inferIndex(e)
	case *ast.Call:
		return c.inferCall(e)
	case *ast.Assign:
		return c.inferAssign(e)
	case *ast.Await:
		return c.inferAwait(e)

	case *ast.TemplateLiteral:
		for _, sub := range e.Exprs {
			c.inferExpr(sub)
		}
		// A template with no interpolation is a fixed string: infer its
		// exact literal rather than widening to `string` (spec.md "literals
		// infer to the corresponding Lit type").
		if len(e.Exprs) == 0 && len(e.Quasis) == 1 {
			return types.Lit{Kind: types.LitStr, Str: e.Quasis[0]}
		}
		return types.PrimType{Kind: types.String}
	case *ast.TaggedTemplate:
		return c.inferTaggedTemplate(e)

	case *ast.JSXElement:
		return c.inferJSXElement(e)

	case *ast.Block:
		return c.inferBlock(e)
	case *ast.If:
		return c.inferIf(e)
	case *ast.Match:
		return c.inferMatch(e)
	case *ast.Lambda:
		return c.inferLambda(e)

	default:
		return c.fresh(nil)
	}
}

func (c *Checker) inferBinary(e *ast.Binary) types.Type {
	lt := c.inferExpr(e.Left)
	rt := c.inferExpr(e.Right)
	key := string(e.Op)
	if e.Op == ast.OpAdd {
		if s, err := unify.Unify(lt, types.PrimType{Kind: types.String}, c.Ctx); err == nil {
			c.Ctx.Apply(s)
			if s2, err2 := unify.Unify(rt, types.PrimType{Kind: types.String}, c.Ctx); err2 == nil {
				c.Ctx.Apply(s2)
				return types.PrimType{Kind: types.String}
			}
		}
	}
	scheme, ok := c.Ctx.LookupScheme(key)
	if !ok {
		c.addErr(&checkerr.TypeError{Kind: checkerr.CannotUnify, Span: e.GetSpan(), Message: "unknown operator " + key})
		return c.fresh(nil)
	}
	fnT := c.instantiate(scheme).(types.TFunc)
	return c.applyFuncLike(fnT, []types.Type{lt, rt}, e.GetSpan())
}

func (c *Checker) inferUnary(e *ast.Unary) types.Type {
	at := c.inferExpr(e.Arg)
	key := string(e.Op)
	if e.Op == ast.OpNeg {
		key = "neg"
	}
	scheme, ok := c.Ctx.LookupScheme(key)
	if !ok {
		return c.fresh(nil)
	}
	fnT := c.instantiate(scheme).(types.TFunc)
	return c.applyFuncLike(fnT, []types.Type{at}, e.GetSpan())
}

// applyFuncLike unifies each argument against its parameter (contravariant
// direction handled inside unify.Unify) and returns the (possibly
// substituted) return type. Used by operator dispatch and ordinary calls.
func (c *Checker) applyFuncLike(fn types.TFunc, args []types.Type, span ast.Span) types.Type {
	s := types.Subst{}
	for i, p := range fn.Params {
		if i >= len(args) {
			break
		}
		m, err := unify.Unify(args[i].Apply(s), p.Apply(s), c.Ctx)
		if err != nil {
			c.addErr(withSpan(err, span))
			continue
		}
		s = s.Compose(m)
	}
	c.Ctx.Apply(s)
	return fn.ReturnType.Apply(s)
}

func (c *Checker) inferObjectLit(e *ast.ObjectLit) types.Type {
	var elems []types.Elem
	var spreadTypes []types.Type
	for _, prop := range e.Props {
		switch p := prop.(type) {
		case ast.KeyValueProp:
			t := c.inferExpr(p.Value)
			elems = append(elems, types.Prop{Name: p.Key, T: t, Mutable: true})
		case ast.ShorthandProp:
			t, _, ok := c.Ctx.LookupValue(p.Name, c.instantiate)
			if !ok {
				c.unknownIdent(e.GetSpan(), p.Name)
				t = c.fresh(nil)
			}
			elems = append(elems, types.Prop{Name: p.Name, T: t, Mutable: true})
		case ast.SpreadProp:
			spreadTypes = append(spreadTypes, c.inferExpr(p.Value))
		case ast.MethodProp:
			lt := c.inferExpr(p.Lambda)
			fn := lt.(types.TFunc)
			elems = append(elems, types.Method{
				Name:       p.Key,
				TypeParams: fn.TypeParams,
				Params:     fn.Params,
				Ret:        fn.ReturnType,
			})
		}
	}
	obj := types.Type(types.Object{Elems: elems})
	if len(spreadTypes) == 0 {
		return obj
	}
	all := append(append([]types.Type{}, spreadTypes...), obj)
	return types.NormalizeIntersection(all)
}

func (c *Checker) inferArrayLit(e *ast.ArrayLit) types.Type {
	var memberTypes []types.Type
	for _, el := range e.Elems {
		t := c.inferExpr(el.Value)
		if el.Spread {
			if arr, ok := t.(types.Array); ok {
				t = arr.Elem
			}
		}
		memberTypes = append(memberTypes, t)
	}
	if len(memberTypes) == 0 {
		return types.Array{Elem: c.fresh(nil), Mutable: true}
	}
	return types.Array{Elem: types.NormalizeUnion(memberTypes), Mutable: true}
}

func (c *Checker) inferMember(e *ast.Member) types.Type {
	ot := c.inferExpr(e.Object)
	resolved := c.Ctx.ResolveTypeAlias(ot)
	obj, ok := resolved.(types.Object)
	if !ok {
		c.addErr(&checkerr.TypeError{Kind: checkerr.NotAnObject, Span: e.GetSpan(), T1: ot})
		return c.fresh(nil)
	}
	pt, found := obj.LookupProp(e.Prop)
	if !found {
		c.addErr(&checkerr.TypeError{Kind: checkerr.NotIndexable, Span: e.GetSpan(), T1: ot, Name: e.Prop})
		return c.fresh(nil)
	}
	if e.Optional {
		return types.NormalizeUnion([]types.Type{pt, types.KeywordType{Kind: types.Undefined}})
	}
	return pt
}

func (c *Checker) inferIndex(e *ast.Index) types.Type {
	ot := c.inferExpr(e.Object)
	kt := c.inferExpr(e.Key)
	switch o := c.Ctx.ResolveTypeAlias(ot).(type) {
	case types.Array:
		return o.Elem
	case types.Tuple:
		if lit, ok := kt.(types.Lit); ok && lit.Kind == types.LitNum {
			idx := int(parseIntLexeme(lit.Lexeme))
			if idx >= 0 && idx < len(o.Elements) {
				return o.Elements[idx]
			}
		}
		return types.NormalizeUnion(o.Elements)
	case types.Object:
		return types.IndexAccess{Object: o, Index: kt}
	default:
		c.addErr(&checkerr.TypeError{Kind: checkerr.NotIndexable, Span: e.GetSpan(), T1: ot})
		return c.fresh(nil)
	}
}

func parseIntLexeme(s string) int64 {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int64(r-'0')
	}
	return n
}

func (c *Checker) inferCall(e *ast.Call) types.Type {
	ct := c.inferExpr(e.Callee)
	resolved := c.Ctx.ResolveTypeAlias(ct)
	fn, ok := resolved.(types.TFunc)
	if !ok {
		c.addErr(&checkerr.TypeError{Kind: checkerr.NotCallable, Span: e.GetSpan(), T1: ct})
		return c.fresh(nil)
	}
	if len(fn.TypeParams) > 0 {
		var typeArgs []types.Type
		for _, ta := range e.TypeArgs {
			typeArgs = append(typeArgs, c.translateType(ta, nil))
		}
		scheme := types.Scheme{TypeParams: fn.TypeParams, Body: fn}
		fn = c.instantiateWithArgs(scheme, typeArgs).(types.TFunc)
	}
	args := make([]types.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.inferExpr(a)
	}
	return c.applyFuncLike(fn, args, e.GetSpan())
}

func (c *Checker) inferAssign(e *ast.Assign) types.Type {
	vt := c.inferExpr(e.Value)
	if ident, ok := e.Target.(*ast.Ident); ok {
		b, found := c.Ctx.LookupBinding(ident.Name)
		if found && !b.Mutable {
			c.addErr(&checkerr.TypeError{Kind: checkerr.ReassignImmutable, Span: e.GetSpan(), Name: ident.Name})
			return vt
		}
	}
	tt := c.inferExpr(e.Target)
	if s, err := unify.Unify(vt, tt, c.Ctx); err != nil {
		c.addErr(withSpan(err, e.GetSpan()))
	} else {
		c.Ctx.Apply(s)
	}
	return types.KeywordType{Kind: types.Undefined}
}

func (c *Checker) inferAwait(e *ast.Await) types.Type {
	if !c.Ctx.IsAsync() {
		c.addErr(&checkerr.TypeError{Kind: checkerr.AsyncAwaitMisuse, Span: e.GetSpan()})
	}
	at := c.inferExpr(e.Arg)
	if obj, ok := c.Ctx.ResolveTypeAlias(at).(types.Object); ok {
		if rt, found := obj.LookupProp("then"); found {
			if fn, ok := rt.(types.TFunc); ok && len(fn.Params) > 0 {
				if cb, ok := fn.Params[0].(types.TFunc); ok && len(cb.Params) > 0 {
					return cb.Params[0]
				}
			}
		}
	}
	if pref, ok := at.(types.Ref); ok && pref.Name == "Promise" && len(pref.TypeArgs) == 1 {
		return pref.TypeArgs[0]
	}
	return at
}

func (c *Checker) inferTaggedTemplate(e *ast.TaggedTemplate) types.Type {
	tagT := c.inferExpr(e.Tag)
	for _, sub := range e.Quasi.Exprs {
		c.inferExpr(sub)
	}
	if fn, ok := c.Ctx.ResolveTypeAlias(tagT).(types.TFunc); ok {
		return fn.ReturnType
	}
	return types.PrimType{Kind: types.String}
}

// inferJSXElement checks each attribute against the resolved component's
// declared prop object (looked up by tag name as an ordinary value binding
// returning a props->element function, matching how JSX desugars to a
// call in the original implementation), falling back to inferring
// attributes standalone when the tag isn't bound (an intrinsic tag name
// like "div").
func (c *Checker) inferJSXElement(e *ast.JSXElement) types.Type {
	propType, hasComponent, _ := c.Ctx.LookupValue(e.Name, c.instantiate)
	var propsObj types.Object
	if hasComponent {
		if fn, ok := c.Ctx.ResolveTypeAlias(propType).(types.TFunc); ok && len(fn.Params) > 0 {
			propsObj, _ = c.Ctx.ResolveTypeAlias(fn.Params[0]).(types.Object)
		}
	}
	for _, attr := range e.Attrs {
		var at types.Type
		if attr.Value != nil {
			at = c.inferExpr(attr.Value)
		} else {
			at = types.Lit{Kind: types.LitBool, Bool: true}
		}
		if hasComponent {
			if expected, found := propsObj.LookupProp(attr.Name); found {
				if s, err := unify.Unify(at, expected, c.Ctx); err == nil {
					c.Ctx.Apply(s)
				} else {
					c.addErr(withSpan(err, e.GetSpan()))
				}
			}
		}
	}
	for _, sp := range e.Spread {
		c.inferExpr(sp)
	}
	for _, child := range e.Children {
		c.inferExpr(child)
	}
	return types.Ref{Name: "Element"}
}
