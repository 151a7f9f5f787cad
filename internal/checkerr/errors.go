// Package checkerr centralizes the checker's error taxonomy (spec.md §7)
// and the Report accumulator diagnostics are collected into, following
// funxy's typed-error-struct pattern (typesystem.SymbolNotFoundError)
// generalized into one closed, tagged set instead of many one-off types.
package checkerr

import (
	"fmt"

	"github.com/escalier-lang/escalier/internal/ast"
)

// Kind is the closed set of error/warning classes spec.md §7 names.
type Kind int

const (
	UnknownIdent Kind = iota
	UnknownType
	DuplicateIdentInPat
	CannotUnify
	NotCallable
	NotIndexable
	NotAnObject
	AssignReadonlyToMut
	ReassignImmutable
	ReturnOutsideFunction
	MatchExhaustiveness // warning
	MatchCatchallMustBeLast
	MatchEmpty
	AsyncAwaitMisuse
	ParserError
)

func (k Kind) String() string {
	switch k {
	case UnknownIdent:
		return "UnknownIdent"
	case UnknownType:
		return "UnknownType"
	case DuplicateIdentInPat:
		return "DuplicateIdentInPat"
	case CannotUnify:
		return "CannotUnify"
	case NotCallable:
		return "NotCallable"
	case NotIndexable:
		return "NotIndexable"
	case NotAnObject:
		return "NotAnObject"
	case AssignReadonlyToMut:
		return "AssignReadonlyToMut"
	case ReassignImmutable:
		return "ReassignImmutable"
	case ReturnOutsideFunction:
		return "ReturnOutsideFunction"
	case MatchExhaustiveness:
		return "MatchExhaustiveness"
	case MatchCatchallMustBeLast:
		return "MatchCatchallMustBeLast"
	case MatchEmpty:
		return "MatchEmpty"
	case AsyncAwaitMisuse:
		return "AsyncAwaitMisuse"
	case ParserError:
		return "ParserError"
	default:
		return "UnknownErrorKind"
	}
}

// UnifyReason sub-classifies a CannotUnify error (spec.md §7).
type UnifyReason int

const (
	ReasonNone UnifyReason = iota
	PrimMismatch
	ArityMismatch
	MissingProp
	PropTypeMismatch
	MutabilityMismatch
	NoUnionBranchMatches
	OccursCheck
)

func (r UnifyReason) String() string {
	switch r {
	case PrimMismatch:
		return "PrimMismatch"
	case ArityMismatch:
		return "ArityMismatch"
	case MissingProp:
		return "MissingProp"
	case PropTypeMismatch:
		return "PropTypeMismatch"
	case MutabilityMismatch:
		return "MutabilityMismatch"
	case NoUnionBranchMatches:
		return "NoUnionBranchMatches"
	case OccursCheck:
		return "OccursCheck"
	default:
		return ""
	}
}

// Severity distinguishes warnings (which don't abort their statement)
// from fatal errors (which do, per spec.md §7's propagation policy).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// TypeError is a single tagged diagnostic.
type TypeError struct {
	Kind     Kind
	Severity Severity
	Span     ast.Span
	Message  string

	// Name is populated for UnknownIdent/UnknownType/DuplicateIdentInPat/
	// AssignReadonlyToMut/ReassignImmutable/NotIndexable's key argument.
	Name string
	// T1/T2 are populated for CannotUnify.
	T1, T2 fmt.Stringer
	Reason UnifyReason
}

func (e *TypeError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case UnknownIdent:
		return fmt.Sprintf("unknown identifier %q", e.Name)
	case UnknownType:
		return fmt.Sprintf("unknown type %q", e.Name)
	case DuplicateIdentInPat:
		return fmt.Sprintf("duplicate binding %q in pattern", e.Name)
	case CannotUnify:
		if e.Reason != ReasonNone {
			return fmt.Sprintf("cannot unify %s with %s: %s", e.T1, e.T2, e.Reason)
		}
		return fmt.Sprintf("cannot unify %s with %s", e.T1, e.T2)
	case NotCallable:
		return fmt.Sprintf("%s is not callable", e.T1)
	case NotIndexable:
		return fmt.Sprintf("%s is not indexable by %s", e.T1, e.Name)
	case NotAnObject:
		return fmt.Sprintf("%s is not an object", e.T1)
	case AssignReadonlyToMut:
		return fmt.Sprintf("cannot assign readonly value to mutable binding %q", e.Name)
	case ReassignImmutable:
		return fmt.Sprintf("cannot reassign immutable binding %q", e.Name)
	case ReturnOutsideFunction:
		return "return outside of a function"
	case MatchExhaustiveness:
		return "match is not exhaustive"
	case MatchCatchallMustBeLast:
		return "catch-all match arm must be last"
	case MatchEmpty:
		return "match must have at least one arm"
	case AsyncAwaitMisuse:
		return "await used outside an async scope"
	case ParserError:
		return "parse error"
	default:
		return "type error"
	}
}

// IsFatal reports whether this error aborts its containing statement
// (spec.md §7 "Top-level fatal classes").
func (e *TypeError) IsFatal() bool {
	switch e.Kind {
	case MatchEmpty, ReturnOutsideFunction:
		return true
	case MatchExhaustiveness:
		return false
	default:
		return e.Severity == SeverityError
	}
}

// Report accumulates diagnostics discovered during one inference run.
// Errors inside a sub-expression attach here and do not abort sibling
// inference (spec.md §7's propagation policy); the Report is pushed and
// popped in lock-step with Context scopes so every exit path -- including
// error paths -- keeps frames balanced (spec.md §5).
type Report struct {
	Diagnostics []*TypeError
}

func NewReport() *Report { return &Report{} }

func (r *Report) Add(e *TypeError) { r.Diagnostics = append(r.Diagnostics, e) }

func (r *Report) HasFatal() bool {
	for _, d := range r.Diagnostics {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

// Merge appends child's diagnostics onto r, used when a pushed report
// frame is popped back into its parent.
func (r *Report) Merge(child *Report) {
	r.Diagnostics = append(r.Diagnostics, child.Diagnostics...)
}
