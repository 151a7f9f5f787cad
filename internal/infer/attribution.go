package infer

import (
	"reflect"

	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/types"
)

// ExportKind tags which surface form an ExportedDecl came from.
type ExportKind int

const (
	ExportConst ExportKind = iota
	ExportType
	ExportDeclare
)

func (k ExportKind) String() string {
	switch k {
	case ExportConst:
		return "const"
	case ExportType:
		return "type"
	case ExportDeclare:
		return "declare"
	default:
		return "?"
	}
}

// ExportedDecl is one top-level declaration's checked shape, queryable
// from a Context after CheckProgram returns (spec.md §6 "Outputs exposed
// to emitters": "Declared aliases, declared values, and generalized
// schemes are queryable from the final Context"). A `.d.ts` emitter --
// out of scope for this module per spec.md §1 -- is the intended
// consumer; escalier_codegen/tests/codegen_test.rs's declaration-shape
// expectations (`declare_const`, `declare_type`, a readonly-derived
// companion type for mutable aliases) are what these fields are shaped
// to answer:
//   - every top-level `let`/`const` → ExportConst, emits `declare const
//     name: Type;`
//   - every `type` → ExportType, emits `declare type Name<...> = ...;`
//     and, when ReadonlyName is non-empty, a derived
//     `declare type ReadonlyName<...> = ...;` too
//   - every `declare` → ExportDeclare, passes through as-is
type ExportedDecl struct {
	Name         string
	Kind         ExportKind
	TypeParams   []types.TypeParam
	Type         types.Type
	ReadonlyName string // set only for ExportType whose value type has mutable structure
	ReadonlyType types.Type
}

// ExportedDecls walks prog's top-level statements and reports each one's
// checked shape. Call after CheckProgram so every binding/scheme/alias is
// fully resolved. Destructuring `let` patterns are skipped: spec.md §6's
// emitter surface only names single bound identifiers ("every top-level
// let/const"), and a destructured binding has no single declared name to
// attach a `declare const` to.
func (c *Checker) ExportedDecls(prog *ast.Program) []ExportedDecl {
	var out []ExportedDecl
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.LetDecl:
			if d, ok := c.exportedConst(s); ok {
				out = append(out, d)
			}
		case *ast.FunctionDecl:
			out = append(out, c.exportedValue(s.Name, ExportConst))
		case *ast.TypeDecl:
			out = append(out, c.exportedType(s.Name))
		case *ast.DeclareDecl:
			out = append(out, c.exportedValue(s.Name, ExportDeclare))
		}
	}
	return out
}

func (c *Checker) exportedConst(l *ast.LetDecl) (ExportedDecl, bool) {
	ident, ok := l.Pattern.(*ast.IdentPat)
	if !ok {
		return ExportedDecl{}, false
	}
	return c.exportedValue(ident.Name, ExportConst), true
}

// exportedValue looks up name's scheme first (preserving its own
// TypeParams rather than instantiating them away) and falls back to a
// plain monomorphic binding.
func (c *Checker) exportedValue(name string, kind ExportKind) ExportedDecl {
	d := ExportedDecl{Name: name, Kind: kind}
	if s, ok := c.Ctx.LookupScheme(name); ok {
		d.TypeParams = s.TypeParams
		d.Type = s.Body
		return d
	}
	if b, ok := c.Ctx.LookupBinding(name); ok {
		d.Type = b.Type
	}
	return d
}

func (c *Checker) exportedType(name string) ExportedDecl {
	d := ExportedDecl{Name: name, Kind: ExportType}
	if s, ok := c.Ctx.LookupAliasScheme(name); ok {
		d.TypeParams = s.TypeParams
		d.Type = s.Body
	} else if t, ok := c.Ctx.LookupAlias(name); ok {
		d.Type = t
	}
	if d.Type == nil {
		return d
	}
	if ro := readonlyView(d.Type); !reflect.DeepEqual(ro, d.Type) {
		d.ReadonlyName = "Readonly" + name
		d.ReadonlyType = ro
	}
	return d
}
