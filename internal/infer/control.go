package infer

import (
	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkctx"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
	"github.com/escalier-lang/escalier/internal/unify"
)

func (c *Checker) inferBlock(b *ast.Block) types.Type {
	c.Ctx.PushScope(checkctx.Inherit)
	defer func() {
		report := c.Ctx.PopScope()
		_ = report
	}()
	for _, stmt := range b.Stmts {
		c.inferStmt(stmt)
	}
	if b.Last == nil {
		return types.KeywordType{Kind: types.Undefined}
	}
	return c.inferExpr(b.Last)
}

func (c *Checker) inferIf(e *ast.If) types.Type {
	condT := c.inferExpr(e.Cond)
	if s, err := unify.Unify(condT, types.PrimType{Kind: types.Boolean}, c.Ctx); err == nil {
		c.Ctx.Apply(s)
	}
	thenT := c.inferExpr(e.Then)
	if e.Else == nil {
		return types.KeywordType{Kind: types.Undefined}
	}
	elseT := c.inferExpr(e.Else)
	return types.NormalizeUnion([]types.Type{thenT, elseT})
}

// inferLambda pushes a fresh scope, binds parameters (unifying any
// annotation as an upper bound per spec.md §4.3), infers the body inside
// it, and returns the resulting TFunc. Explicit generics are bound as
// fresh constrained vars visible to both the parameter and body
// translation (spec.md §4.7 "explicit generics scope over the whole
// signature").
func (c *Checker) inferLambda(l *ast.Lambda) types.Type {
	kind := checkctx.Inherit
	if l.IsAsync {
		kind = checkctx.Async
	}
	c.Ctx.PushScope(kind)
	defer func() { c.Ctx.PopScope() }()

	scope, typeParams := c.bindTypeParams(l.TypeParams, nil)

	params := make([]types.Type, len(l.Params))
	for i, p := range l.Params {
		var expected types.Type
		if p.Annotation != nil {
			expected = c.translateType(p.Annotation, scope)
		}
		pt := c.inferPattern(p.Pattern, expected)
		if p.Default != nil {
			defT := c.inferExpr(p.Default)
			if s, err := unify.Unify(defT, pt, c.Ctx); err == nil {
				c.Ctx.Apply(s)
			}
		}
		params[i] = canonicalizeParamType(pt, p.Optional || p.Default != nil)
	}
	if l.Rest != nil {
		var expected types.Type
		if l.Rest.Annotation != nil {
			expected = types.Array{Elem: c.translateType(l.Rest.Annotation, scope), Mutable: true}
		}
		pt := c.inferPattern(l.Rest.Pattern, expected)
		params = append(params, types.Rest{T: pt})
	}

	c.returnStack = append(c.returnStack, &returnFrame{})
	bodyT := c.inferExpr(l.Body)
	frame := c.returnStack[len(c.returnStack)-1]
	c.returnStack = c.returnStack[:len(c.returnStack)-1]

	retT := bodyT
	if len(frame.returns) > 0 {
		all := append(append([]types.Type{}, frame.returns...), bodyT)
		retT = types.NormalizeUnion(all)
	}
	if l.ReturnType != nil {
		declared := c.translateType(l.ReturnType, scope)
		if s, err := unify.Unify(retT, declared, c.Ctx); err == nil {
			c.Ctx.Apply(s)
			retT = declared.Apply(s)
		} else {
			c.addErr(withSpan(err, l.GetSpan()))
		}
	}
	var throws types.Type
	if l.Throws != nil {
		throws = c.translateType(l.Throws, scope)
	}
	if l.IsAsync {
		retT = types.Ref{Name: "Promise", TypeArgs: []types.Type{retT}}
	}
	return types.TFunc{TypeParams: typeParams, Params: params, ReturnType: retT, Throws: throws}
}

// inferStmt infers a statement and discards its value (if any): the value
// semantics of a Block's trailing expression are handled by inferBlock,
// not here (spec.md §4.10's statement list is side-effect-only except for
// the final expression).
func (c *Checker) inferStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetDecl:
		c.inferLetDecl(s)
	case *ast.FunctionDecl:
		c.inferFunctionDecl(s)
	case *ast.TypeDecl:
		c.inferTypeDecl(s)
	case *ast.DeclareDecl:
		// already bound by predeclareTypes's second pass; nothing left to do.
	case *ast.ReturnStmt:
		c.inferReturnStmt(s)
	case *ast.ExprStmt:
		c.inferExpr(s.Expr)
	case *ast.ImportDecl:
		// imports resolve externally; nothing to infer (spec.md Non-goals).
	case *ast.ForIn:
		c.inferForIn(s)
	case *ast.ClassDecl:
		c.inferClassDecl(s)
	}
}

func (c *Checker) inferReturnStmt(s *ast.ReturnStmt) {
	if len(c.returnStack) == 0 {
		c.addErr(&checkerr.TypeError{Kind: checkerr.ReturnOutsideFunction, Span: s.GetSpan()})
		if s.Value != nil {
			c.inferExpr(s.Value)
		}
		return
	}
	var t types.Type = types.KeywordType{Kind: types.Undefined}
	if s.Value != nil {
		t = c.inferExpr(s.Value)
	}
	frame := c.returnStack[len(c.returnStack)-1]
	frame.returns = append(frame.returns, t)
}

func (c *Checker) inferForIn(s *ast.ForIn) {
	iterT := c.inferExpr(s.Iterable)
	var elemT types.Type = c.fresh(nil)
	switch it := c.Ctx.ResolveTypeAlias(iterT).(type) {
	case types.Array:
		elemT = it.Elem
	case types.Tuple:
		elemT = types.NormalizeUnion(it.Elements)
	}
	c.Ctx.PushScope(checkctx.Inherit)
	defer func() { c.Ctx.PopScope() }()
	c.inferPattern(s.Pattern, elemT)
	c.inferBlock(s.Body)
}

// inferClassDecl binds the class name as an opaque nominal type: an alias
// to a Ref of its own name. Fields and the constructor are not inspected.
func (c *Checker) inferClassDecl(s *ast.ClassDecl) {
	c.Ctx.InsertAlias(s.Name, types.Ref{Name: s.Name})
}
