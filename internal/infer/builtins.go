package infer

import (
	"github.com/escalier-lang/escalier/internal/checkctx"
	"github.com/escalier-lang/escalier/internal/types"
)

// installPrelude seeds a fresh Context with the builtin aliases and
// polymorphic operator/function schemes every program can reference
// without an explicit `declare` (spec.md §6's surface forms assume these
// exist: arithmetic/comparison operators, Array/Promise/Record, and the
// handful of global functions used in examples throughout the spec).
func installPrelude(c *Checker) {
	installBuiltinAliases(c)
	installOperatorSchemes(c)
	installGlobalSchemes(c)
}

func installBuiltinAliases(c *Checker) {
	// Array<T> / ReadonlyArray<T> are recognized directly by translateType
	// (isKnownBuiltinAlias) and desugar to types.Array; Promise<T> and
	// Record<K, V> need alias schemes since type-level ops (keyof, mapped
	// types) can act on them structurally.
	tv := c.Arena.FreshVarNamed("T", nil)
	uv := c.Arena.FreshVarNamed("U", nil)
	thenMethod := types.Method{
		Name:       "then",
		TypeParams: []types.TypeParam{{Name: "U", ID: uv.ID}},
		Params:     []types.Type{types.TFunc{Params: []types.Type{tv}, ReturnType: uv}},
		Ret:        types.Ref{Name: "Promise", TypeArgs: []types.Type{uv}},
	}
	c.Ctx.InsertAliasScheme("Promise", types.Scheme{
		TypeParams: []types.TypeParam{{Name: "T", ID: tv.ID}},
		Body:       types.Object{Elems: []types.Elem{thenMethod}},
	})

	kv := c.Arena.FreshVarNamed("K", nil)
	vv := c.Arena.FreshVarNamed("V", nil)
	c.Ctx.InsertAliasScheme("Record", types.Scheme{
		TypeParams: []types.TypeParam{{Name: "K", ID: kv.ID}, {Name: "V", ID: vv.ID}},
		Body:       types.Index{Key: kv, Value: vv, Mutable: true},
	})
}

// installOperatorSchemes binds the arithmetic, comparison, logical, and
// equality operators used by internal/infer's binary-expression inference
// as ordinary polymorphic function schemes stored under synthetic names
// ("+", "==", ...), so operator inference is just a scheme lookup +
// instantiate + unify like any other call (spec.md §4.4 "binary
// operators resolve against builtin overload sets").
func installOperatorSchemes(c *Checker) {
	num := types.PrimType{Kind: types.Number}
	str := types.PrimType{Kind: types.String}
	boolean := types.PrimType{Kind: types.Boolean}

	binaryNumOp := func(name string) {
		c.Ctx.InsertScheme(name, types.Scheme{Body: types.TFunc{
			Params:     []types.Type{num, num},
			ReturnType: num,
		}})
	}
	for _, op := range []string{"+", "-", "*", "/", "%", "**"} {
		binaryNumOp(op)
	}
	// `+` also overloads over strings. inferBinary handles that case itself
	// (both operands unify with string, result string) before looking up
	// the numeric "+" scheme; the "+str" scheme below is registered under
	// its own key but inferBinary does not look it up.
	c.Ctx.InsertScheme("+str", types.Scheme{Body: types.TFunc{
		Params:     []types.Type{str, str},
		ReturnType: str,
	}})

	for _, op := range []string{"<", "<=", ">", ">="} {
		c.Ctx.InsertScheme(op, types.Scheme{Body: types.TFunc{
			Params:     []types.Type{num, num},
			ReturnType: boolean,
		}})
	}

	tv := c.Arena.FreshVarNamed("T", nil)
	for _, op := range []string{"==", "!="} {
		c.Ctx.InsertScheme(op, types.Scheme{
			TypeParams: []types.TypeParam{{Name: "T", ID: tv.ID}},
			Body: types.TFunc{
				Params:     []types.Type{tv, tv},
				ReturnType: boolean,
			},
		})
	}

	for _, op := range []string{"&&", "||"} {
		c.Ctx.InsertScheme(op, types.Scheme{Body: types.TFunc{
			Params:     []types.Type{boolean, boolean},
			ReturnType: boolean,
		}})
	}

	c.Ctx.InsertScheme("!", types.Scheme{Body: types.TFunc{
		Params:     []types.Type{boolean},
		ReturnType: boolean,
	}})
	c.Ctx.InsertScheme("neg", types.Scheme{Body: types.TFunc{
		Params:     []types.Type{num},
		ReturnType: num,
	}})
}

// installGlobalSchemes binds the small set of ambient functions the spec's
// examples call without a `declare` block (console logging and the
// identity-shaped `structuredClone`), matching how the original
// implementation's test fixtures assume a host global scope.
func installGlobalSchemes(c *Checker) {
	tv := c.Arena.FreshVarNamed("T", nil)
	c.Ctx.InsertScheme("structuredClone", types.Scheme{
		TypeParams: []types.TypeParam{{Name: "T", ID: tv.ID}},
		Body:       types.TFunc{Params: []types.Type{tv}, ReturnType: tv},
	})

	anyArg := c.Arena.FreshVarNamed("T", nil)
	consoleLog := types.Method{
		Name:    "log",
		Params:  []types.Type{types.Rest{T: anyArg}},
		Ret:     types.KeywordType{Kind: types.Undefined},
		Mutates: true,
	}
	c.Ctx.InsertBinding("console", checkctx.Binding{
		Type:    types.Object{Elems: []types.Elem{consoleLog}},
		Mutable: false,
	})
}
