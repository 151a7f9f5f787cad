package ast

import "github.com/escalier-lang/escalier/internal/types"

// Node is the base interface every AST node implements.
type Node interface {
	GetSpan() Span
}

// Expression is any node that produces a value and carries an inferred
// type once the checker has run.
type Expression interface {
	Node
	exprNode()
	// InferredType returns the type the checker attributed to this node,
	// or nil before inference has reached it.
	InferredType() types.Type
	SetInferredType(types.Type)
}

// Pattern is any node appearing in a binding or match-arm position.
type Pattern interface {
	Node
	patNode()
	InferredType() types.Type
	SetInferredType(types.Type)
}

// TypeAnnotation is a surface type expression (the RHS of `: T` or `type
// Name = T`), translated to a types.Type during inference.
type TypeAnnotation interface {
	Node
	typeAnnNode()
	InferredType() types.Type
	SetInferredType(types.Type)
}

// Statement is any top-level or block-level statement.
type Statement interface {
	Node
	stmtNode()
}

// attrs is embedded by every concrete node to provide the InferredType
// bookkeeping without repeating it on every struct.
type attrs struct {
	Span Span
	typ  types.Type
}

func (a *attrs) GetSpan() Span                    { return a.Span }
func (a *attrs) InferredType() types.Type         { return a.typ }
func (a *attrs) SetInferredType(t types.Type)     { a.typ = t }
