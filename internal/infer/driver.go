package infer

import (
	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkerr"
)

// CheckProgram infers every top-level statement in order and returns the
// accumulated diagnostics (spec.md §4.10). Statement order matters:
// self-recursion within a single FunctionDecl is supported via its own
// placeholder binding, but two functions calling each other before either
// is declared is rejected the same way any forward reference is --
// whichever one runs first hits UnknownIdent resolving the other (spec.md
// §9 "no mutual recursion" resolved this way, matching the original
// implementation's single-pass module evaluator).
func (c *Checker) CheckProgram(prog *ast.Program) *checkerr.Report {
	c.predeclareTypes(prog)
	for _, stmt := range prog.Statements {
		c.inferStmt(stmt)
	}
	return c.Ctx.Report()
}

// predeclareTypes gives every top-level type alias, class, and declared
// binding a forward name before any statement's body is inferred, so one
// type alias may reference another declared later in the same file, and
// a `let`/`fn`'s body may reference a `declare let`/`declare fn` appearing
// below it in source order (spec.md §4.10 "Pre-declare every top-level
// alias and declared binding (two-pass) to allow forward references").
// Ordinary (non-declared) value bindings get no such treatment; see
// CheckProgram's doc comment.
func (c *Checker) predeclareTypes(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.TypeDecl:
			c.Ctx.InsertAlias(s.Name, c.fresh(nil))
		case *ast.ClassDecl:
			c.Ctx.InsertAlias(s.Name, c.fresh(nil))
		}
	}
	// Declared bindings are translated in a second pass, after every type
	// alias/class name is at least forward-visible, so a `declare let x:
	// SomeLaterAlias` can resolve SomeLaterAlias too.
	for _, stmt := range prog.Statements {
		if d, ok := stmt.(*ast.DeclareDecl); ok {
			c.inferDeclareDecl(d)
		}
	}
}
