// Package infer implements Escalier's inference engine: pattern and
// expression inference, generalization/instantiation, type-level
// evaluation, mutability/readonly derivation, and the top-level program
// driver (spec.md §4).
package infer

import (
	"github.com/google/uuid"

	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkctx"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
)

// Checker holds all state for one inference run: its own Arena and
// Context (spec.md §5 -- multiple Checkers may run concurrently, each
// owning independent state). Session is a uuid tag identifying this
// checker run; it is not copied onto the diagnostics the checker emits.
type Checker struct {
	Session uuid.UUID
	Arena   *types.Arena
	Ctx     *checkctx.Context

	// returnStack collects the return-type constraints seen inside the
	// function currently being inferred, one frame per nested lambda.
	returnStack []*returnFrame
}

type returnFrame struct {
	returns        []types.Type
	allPathsReturn bool
}

// New creates a Checker with a fresh Arena and Context, pre-populated
// with the builtin prelude (spec.md §4.10 implicitly assumes built-in
// operator/identifier schemes exist before user code is inferred).
func New() *Checker {
	arena := types.NewArena()
	ctx := checkctx.New(arena)
	c := &Checker{Session: uuid.New(), Arena: arena, Ctx: ctx}
	installPrelude(c)
	return c
}

func (c *Checker) fresh(constraint types.Type) types.Var {
	return c.Arena.FreshVar(constraint)
}

func (c *Checker) addErr(e *checkerr.TypeError) {
	c.Ctx.Report().Add(e)
}

func (c *Checker) unknownIdent(span ast.Span, name string) {
	c.addErr(&checkerr.TypeError{Kind: checkerr.UnknownIdent, Span: span, Name: name})
}

func (c *Checker) unknownType(span ast.Span, name string) {
	c.addErr(&checkerr.TypeError{Kind: checkerr.UnknownType, Span: span, Name: name})
}
