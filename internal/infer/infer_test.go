package infer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkctx"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
)

func ident(name string) *ast.Ident  { return &ast.Ident{Name: name} }
func num(lexeme string) *ast.NumLit { return &ast.NumLit{Lexeme: lexeme} }
func str(v string) *ast.StrLit      { return &ast.StrLit{Value: v} }

func letDecl(name string, ann ast.TypeAnnotation, value ast.Expression, mut bool) *ast.LetDecl {
	return &ast.LetDecl{Pattern: &ast.IdentPat{Name: name, Mutable: mut}, Annotation: ann, Value: value}
}

func program(stmts ...ast.Statement) *ast.Program {
	return &ast.Program{Statements: stmts}
}

func TestLiteralInference(t *testing.T) {
	c := New()
	ty := c.inferExpr(num("1"))
	lit, ok := ty.(types.Lit)
	require.True(t, ok)
	require.Equal(t, types.LitNum, lit.Kind)
}

func TestBinaryAddNumbers(t *testing.T) {
	c := New()
	ty := c.inferExpr(&ast.Binary{Op: ast.OpAdd, Left: num("1"), Right: num("2")})
	require.Equal(t, types.PrimType{Kind: types.Number}, ty)
	require.Empty(t, c.Ctx.Report().Diagnostics)
}

func TestBinaryAddStrings(t *testing.T) {
	c := New()
	ty := c.inferExpr(&ast.Binary{Op: ast.OpAdd, Left: str("a"), Right: str("b")})
	require.Equal(t, types.PrimType{Kind: types.String}, ty)
}

func TestLetPolymorphismReusesSchemeAtDifferentTypes(t *testing.T) {
	c := New()
	report := c.CheckProgram(program(
		&ast.FunctionDecl{Name: "identity", Fn: &ast.Lambda{
			Params: []ast.Param{{Pattern: &ast.IdentPat{Name: "x"}}},
			Body:   ident("x"),
		}},
		letDecl("a", nil, &ast.Call{Callee: ident("identity"), Args: []ast.Expression{num("1")}}, false),
		letDecl("b", nil, &ast.Call{Callee: ident("identity"), Args: []ast.Expression{str("s")}}, false),
	))
	require.Empty(t, report.Diagnostics)
}

// TestDeclareDeclIsPredeclaredForForwardReference mirrors spec.md §4.10's
// "pre-declare every top-level ... declared binding" rule: a `let`
// appearing before a `declare let` it references must still resolve.
func TestDeclareDeclIsPredeclaredForForwardReference(t *testing.T) {
	c := New()
	report := c.CheckProgram(program(
		letDecl("x", nil, &ast.Binary{Op: ast.OpAdd, Left: ident("y"), Right: num("1")}, false),
		&ast.DeclareDecl{Name: "y", Annotation: &ast.TypePrimAnn{Name: "number"}},
	))
	require.Empty(t, report.Diagnostics)
}

func TestUnknownIdentifier(t *testing.T) {
	c := New()
	c.inferExpr(ident("nope"))
	report := c.Ctx.Report()
	require.Len(t, report.Diagnostics, 1)
	require.Equal(t, checkerr.UnknownIdent, report.Diagnostics[0].Kind)
}

func TestReassignImmutableBinding(t *testing.T) {
	c := New()
	report := c.CheckProgram(program(
		letDecl("x", nil, num("1"), false),
		&ast.ExprStmt{Expr: &ast.Assign{Target: ident("x"), Value: num("2")}},
	))
	require.Len(t, report.Diagnostics, 1)
	require.Equal(t, checkerr.ReassignImmutable, report.Diagnostics[0].Kind)
}

func TestMatchRequiresCatchallElseWarns(t *testing.T) {
	c := New()
	m := &ast.Match{
		Scrutinee: num("1"),
		Arms: []ast.MatchArm{
			{Pattern: &ast.LitPat{Lit: num("1")}, Body: str("one")},
		},
	}
	c.inferMatch(m)
	report := c.Ctx.Report()
	require.Len(t, report.Diagnostics, 1)
	require.Equal(t, checkerr.MatchExhaustiveness, report.Diagnostics[0].Kind)
	require.Equal(t, checkerr.SeverityWarning, report.Diagnostics[0].Severity)
}

func TestMatchEmptyIsFatal(t *testing.T) {
	c := New()
	c.inferMatch(&ast.Match{Scrutinee: num("1")})
	report := c.Ctx.Report()
	require.Len(t, report.Diagnostics, 1)
	require.True(t, report.Diagnostics[0].IsFatal())
}

func TestObjectLitMemberAccess(t *testing.T) {
	c := New()
	obj := &ast.ObjectLit{Props: []ast.ObjectProp{
		ast.KeyValueProp{Key: "x", Value: num("1")},
	}}
	ty := c.inferExpr(&ast.Member{Object: obj, Prop: "x"})
	require.Equal(t, types.Lit{Kind: types.LitNum, Lexeme: "1"}, ty)
}

func TestKeyOfReduction(t *testing.T) {
	c := New()
	objAnn := &ast.TypeObjectAnn{Members: []ast.TypeObjectMember{
		ast.TypePropAnn{Name: "a", T: &ast.TypePrimAnn{Name: "number"}},
		ast.TypePropAnn{Name: "b", T: &ast.TypePrimAnn{Name: "string"}},
	}}
	ty := c.translateType(&ast.TypeKeyOfAnn{T: objAnn}, nil)
	u, ok := ty.(types.Union)
	require.True(t, ok)
	require.Len(t, u.Types, 2)
}

func TestMappedTypeExpansion(t *testing.T) {
	c := New()
	objAnn := &ast.TypeObjectAnn{Members: []ast.TypeObjectMember{
		ast.TypePropAnn{Name: "a", T: &ast.TypePrimAnn{Name: "number"}},
	}}
	mapped := &ast.TypeMappedAnn{
		TypeParam:        "K",
		Source:           &ast.TypeKeyOfAnn{T: objAnn},
		Value:            &ast.TypePrimAnn{Name: "boolean"},
		OptionalModifier: "",
		ReadonlyModifier: "",
	}
	ty := c.translateType(mapped, nil)
	obj, ok := ty.(types.Object)
	require.True(t, ok)
	require.Len(t, obj.Elems, 1)
	prop, ok := obj.Elems[0].(types.Prop)
	require.True(t, ok)
	require.Equal(t, "a", prop.Name)
	require.Equal(t, types.PrimType{Kind: types.Boolean}, prop.T)
}

func TestAwaitOutsideAsyncIsAnError(t *testing.T) {
	c := New()
	c.inferExpr(&ast.Await{Arg: num("1")})
	report := c.Ctx.Report()
	require.Len(t, report.Diagnostics, 1)
	require.Equal(t, checkerr.AsyncAwaitMisuse, report.Diagnostics[0].Kind)
}

// TestMatchNarrowsDiscriminatedUnion mirrors spec scenario 3: matching a
// union-of-objects scrutinee on a literal-valued discriminant field
// narrows each arm to only the members that literal could select.
func TestMatchNarrowsDiscriminatedUnion(t *testing.T) {
	c := New()
	mousedown := &ast.TypeObjectAnn{Members: []ast.TypeObjectMember{
		ast.TypePropAnn{Name: "type", T: &ast.TypeLitAnn{Kind: "str", Str: "mousedown"}},
		ast.TypePropAnn{Name: "x", T: &ast.TypePrimAnn{Name: "number"}},
		ast.TypePropAnn{Name: "y", T: &ast.TypePrimAnn{Name: "number"}},
	}}
	keydown := &ast.TypeObjectAnn{Members: []ast.TypeObjectMember{
		ast.TypePropAnn{Name: "type", T: &ast.TypeLitAnn{Kind: "str", Str: "keydown"}},
		ast.TypePropAnn{Name: "key", T: &ast.TypePrimAnn{Name: "string"}},
	}}
	eventT := c.translateType(&ast.TypeUnionAnn{Types: []ast.TypeAnnotation{mousedown, keydown}}, nil)
	c.Ctx.InsertBinding("event", checkctx.Binding{Type: eventT, Mutable: false})

	m := &ast.Match{
		Scrutinee: ident("event"),
		Arms: []ast.MatchArm{
			{
				Pattern: &ast.ObjectPat{Props: []ast.ObjectPatProp{
					ast.KeyValuePat{Key: "type", Value: &ast.LitPat{Lit: str("mousedown")}},
					ast.KeyValuePat{Key: "x", Value: &ast.IdentPat{Name: "x"}},
					ast.KeyValuePat{Key: "y", Value: &ast.IdentPat{Name: "y"}},
				}},
				Body: &ast.TemplateLiteral{Quasis: []string{"md"}},
			},
			{
				Pattern: &ast.ObjectPat{Props: []ast.ObjectPatProp{
					ast.KeyValuePat{Key: "type", Value: &ast.LitPat{Lit: str("keydown")}},
					ast.KeyValuePat{Key: "key", Value: &ast.IdentPat{Name: "key"}},
				}},
				Body: ident("key"),
			},
		},
	}
	ty := c.inferMatch(m)
	report := c.Ctx.Report()
	// Neither arm's pattern has a catch-all, so this match still earns an
	// exhaustiveness warning (the checker's exhaustiveness check is
	// catch-all-based, not full union coverage) -- but it is the *only*
	// diagnostic: each arm's literal discriminant narrowed the scrutinee
	// down to exactly the member it can match, so both arms' patterns
	// unify cleanly against a single object shape rather than the whole
	// union, with no CannotUnify errors.
	require.Len(t, report.Diagnostics, 1)
	require.Equal(t, checkerr.MatchExhaustiveness, report.Diagnostics[0].Kind)
	// NormalizeUnion widens a bare "md" literal arm into `string` once a
	// sibling arm already returns the unrefined primitive, so the overall
	// match result is `string`, not a two-member union.
	require.Equal(t, types.PrimType{Kind: types.String}, ty)
}

// TestExportedDeclsConstAndDeclare mirrors spec.md §6's emitter surface:
// every top-level let becomes a queryable `declare const`, and every
// `declare` passes through tagged as such.
func TestExportedDeclsConstAndDeclare(t *testing.T) {
	c := New()
	prog := program(
		letDecl("answer", nil, num("42"), false),
		&ast.DeclareDecl{Name: "process", Annotation: &ast.TypePrimAnn{Name: "number"}},
	)
	c.CheckProgram(prog)
	decls := c.ExportedDecls(prog)
	require.Len(t, decls, 2)
	require.Equal(t, "answer", decls[0].Name)
	require.Equal(t, ExportConst, decls[0].Kind)
	require.Equal(t, "process", decls[1].Name)
	require.Equal(t, ExportDeclare, decls[1].Kind)
	require.Equal(t, types.PrimType{Kind: types.Number}, decls[1].Type)
}

// TestExportedDeclsTypeGetsReadonlyCompanion mirrors
// escalier_codegen/tests/codegen_test.rs's expectation that a mutable
// type alias gets a derived readonly companion type alongside it.
func TestExportedDeclsTypeGetsReadonlyCompanion(t *testing.T) {
	c := New()
	decl := &ast.TypeDecl{Name: "Box", Value: &ast.TypeObjectAnn{Members: []ast.TypeObjectMember{
		ast.TypePropAnn{Name: "value", Mutable: true, T: &ast.TypePrimAnn{Name: "number"}},
	}}}
	prog := program(decl)
	c.CheckProgram(prog)
	decls := c.ExportedDecls(prog)
	require.Len(t, decls, 1)
	require.Equal(t, "Box", decls[0].Name)
	require.Equal(t, ExportType, decls[0].Kind)
	require.Equal(t, "ReadonlyBox", decls[0].ReadonlyName)
	require.NotNil(t, decls[0].ReadonlyType)
}

func TestConditionalTypeInferArrayElement(t *testing.T) {
	c := New()
	ct := types.ConditionalType{
		Check:   types.Array{Elem: types.PrimType{Kind: types.Number}},
		Extends: types.Array{Elem: types.InferType{Name: "E"}},
		True:    types.InferType{Name: "E"},
		False:   types.KeywordType{Kind: types.Never},
	}
	ty := c.reduceTypeLevel(ct)
	require.Equal(t, types.PrimType{Kind: types.Number}, ty)
}

// TestConditionalTypeUsesRealUnifyForLiteralSubsumption confirms the
// default (no `infer`) branch of a conditional decides via the real
// structural unifier rather than exact-string equality: a string literal
// check type extends the `string` primitive.
func TestConditionalTypeUsesRealUnifyForLiteralSubsumption(t *testing.T) {
	c := New()
	ct := types.ConditionalType{
		Check:   types.Lit{Kind: types.LitStr, Str: "a"},
		Extends: types.PrimType{Kind: types.String},
		True:    types.Lit{Kind: types.LitStr, Str: "yes"},
		False:   types.Lit{Kind: types.LitStr, Str: "no"},
	}
	ty := c.reduceTypeLevel(ct)
	require.Equal(t, types.Lit{Kind: types.LitStr, Str: "yes"}, ty)
}

// TestConditionalTypeUsesRealUnifyForObjectWidthSubtyping confirms an
// object with extra fields still extends a narrower shape, which
// exact-string equality could never accept.
func TestConditionalTypeUsesRealUnifyForObjectWidthSubtyping(t *testing.T) {
	c := New()
	wide := types.Object{Elems: []types.Elem{
		types.Prop{Name: "x", T: types.PrimType{Kind: types.Number}},
		types.Prop{Name: "y", T: types.PrimType{Kind: types.Number}},
	}}
	narrow := types.Object{Elems: []types.Elem{
		types.Prop{Name: "x", T: types.PrimType{Kind: types.Number}},
	}}
	ct := types.ConditionalType{
		Check:   wide,
		Extends: narrow,
		True:    types.Lit{Kind: types.LitBool, Bool: true},
		False:   types.Lit{Kind: types.LitBool, Bool: false},
	}
	ty := c.reduceTypeLevel(ct)
	require.Equal(t, types.Lit{Kind: types.LitBool, Bool: true}, ty)
}

// TestConditionalTypeDistributesOverUnion mirrors spec.md §4.8's
// distribution rule: (X|Y) extends E ? A : B reduces member-by-member
// rather than testing the whole union against E at once.
func TestConditionalTypeDistributesOverUnion(t *testing.T) {
	c := New()
	ct := types.ConditionalType{
		Check: types.NormalizeUnion([]types.Type{
			types.PrimType{Kind: types.Number},
			types.PrimType{Kind: types.String},
		}),
		Extends: types.PrimType{Kind: types.Number},
		True:    types.Lit{Kind: types.LitStr, Str: "num"},
		False:   types.Lit{Kind: types.LitStr, Str: "other"},
	}
	ty := c.reduceTypeLevel(ct)
	u, ok := ty.(types.Union)
	require.True(t, ok)
	require.Len(t, u.Types, 2)
	require.Contains(t, u.Types, types.Lit{Kind: types.LitStr, Str: "num"})
	require.Contains(t, u.Types, types.Lit{Kind: types.LitStr, Str: "other"})
}

// TestImmutableBindingGetsReadonlyView checks readonlyView on a fixture
// object (setter and mutating method dropped, prop made readonly, getter
// kept), invariant 7 (readonly(readonly(T)) = readonly(T)), and then the
// binding path: an immutable `let` bound to an object literal is stored
// with its readonly view.
func TestImmutableBindingGetsReadonlyView(t *testing.T) {
	mutableObj := types.Object{Elems: []types.Elem{
		types.Prop{Name: "x", Mutable: true, T: types.PrimType{Kind: types.Number}},
		types.Setter{Name: "x", Param: types.PrimType{Kind: types.Number}},
		types.Method{Name: "bump", Mutates: true, Ret: types.KeywordType{Kind: types.Undefined}},
		types.Getter{Name: "x", Ret: types.PrimType{Kind: types.Number}},
	}}

	once := readonlyView(mutableObj)
	obj, ok := once.(types.Object)
	require.True(t, ok)
	require.Len(t, obj.Elems, 2) // Setter and mutating Method dropped

	var sawProp, sawGetter bool
	for _, e := range obj.Elems {
		switch el := e.(type) {
		case types.Prop:
			sawProp = true
			require.False(t, el.Mutable)
			require.True(t, el.Readonly)
		case types.Getter:
			sawGetter = true
		default:
			t.Fatalf("unexpected elem kind %T survived readonlyView", e)
		}
	}
	require.True(t, sawProp)
	require.True(t, sawGetter)

	twice := readonlyView(once)
	require.Equal(t, once, twice)

	c := New()
	report := c.CheckProgram(program(
		letDecl("frozen", nil, &ast.ObjectLit{Props: []ast.ObjectProp{
			ast.KeyValueProp{Key: "x", Value: num("1")},
		}}, false),
	))
	require.Empty(t, report.Diagnostics)
	b, found := c.Ctx.LookupBinding("frozen")
	require.True(t, found)
	frozen, isObj := b.Type.(types.Object)
	require.True(t, isObj)
	require.Len(t, frozen.Elems, 1)
	frozenProp, isProp := frozen.Elems[0].(types.Prop)
	require.True(t, isProp)
	require.True(t, frozenProp.Readonly)
	require.False(t, frozenProp.Mutable)
}
