package ast

// LetDecl is `let name[: T] = expr` or `let mut name[: T] = expr`, or a
// destructuring form `let (a, b) = expr`.
type LetDecl struct {
	Tok        Span
	Pattern    Pattern
	Annotation TypeAnnotation // nil if untyped
	Value      Expression
}

func (*LetDecl) stmtNode()       {}
func (l *LetDecl) GetSpan() Span { return l.Tok }

// FunctionDecl is a named function statement: `fn name(...) { ... }`,
// sugar for `let name = fn(...) { ... }` that additionally permits
// self-recursion. When several FunctionDecls in one scope share a name,
// the later one replaces the earlier binding; no duplicate-name
// diagnostic is reported (the same holds for repeated `let` names).
type FunctionDecl struct {
	Tok  Span
	Name string
	Fn   *Lambda
}

func (*FunctionDecl) stmtNode()       {}
func (f *FunctionDecl) GetSpan() Span { return f.Tok }

// TypeDecl is `type Name[<T, ...>] = TypeAnnotation`.
type TypeDecl struct {
	Tok        Span
	Name       string
	TypeParams []TypeParamDecl
	Value      TypeAnnotation
}

func (*TypeDecl) stmtNode()       {}
func (t *TypeDecl) GetSpan() Span { return t.Tok }

// DeclareDecl is an ambient `declare let name: T` binding with no value;
// the checker trusts the annotation without unifying against an
// inferred RHS.
type DeclareDecl struct {
	Tok        Span
	Name       string
	Annotation TypeAnnotation
}

func (*DeclareDecl) stmtNode()       {}
func (d *DeclareDecl) GetSpan() Span { return d.Tok }

// ClassDecl is a class declaration. Per spec.md §6, classes are deferred:
// the checker only binds the class name as an opaque nominal type (a Ref
// to itself). Fields, the constructor, inheritance, method overriding and
// static members are not checked.
type ClassDecl struct {
	Tok    Span
	Name   string
	Fields []TypePropAnn
	Ctor   *Lambda // nil if no explicit constructor
}

func (*ClassDecl) stmtNode()       {}
func (c *ClassDecl) GetSpan() Span { return c.Tok }

// ReturnStmt is `return [expr]`. Valid only inside a function body;
// spec.md §4.4/§7 requires `ReturnOutsideFunction` otherwise.
type ReturnStmt struct {
	Tok   Span
	Value Expression // nil for a bare `return`
}

func (*ReturnStmt) stmtNode()       {}
func (r *ReturnStmt) GetSpan() Span { return r.Tok }

// ExprStmt wraps an expression used for its side effects.
type ExprStmt struct {
	Tok  Span
	Expr Expression
}

func (*ExprStmt) stmtNode()       {}
func (e *ExprStmt) GetSpan() Span { return e.Tok }

// ImportDecl is external interface per spec.md §6 ("imports... not
// specified here"); kept only so Program.Statements can include it
// without the checker needing to special-case it beyond a no-op skip.
type ImportDecl struct {
	Tok  Span
	Path string
}

func (*ImportDecl) stmtNode()       {}
func (i *ImportDecl) GetSpan() Span { return i.Tok }

// Program is the root node the parser produces for one source file.
type Program struct {
	Statements []Statement
}
