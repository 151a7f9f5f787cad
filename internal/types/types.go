// Package types implements Escalier's type representation: the tagged
// variants from the arena, substitutions, and the structural operations
// (Apply, FreeTypeVariables, String) every variant must support.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/escalier-lang/escalier/internal/config"
)

// Type is the interface every type variant implements.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []VarID
}

// VarID is a unification variable's identity. Ids are allocated by an
// Arena and are unique within a single checking run.
type VarID uint64

// Subst maps variable ids to the types they have been bound to.
type Subst map[VarID]Type

// Compose returns a substitution equivalent to applying s1 then s2: every
// right-hand side of s1 is itself substituted through s2, then s2's own
// entries are merged on top (s2 wins on key collision, matching the spec's
// "apply s1 then s2" reading).
func (s1 Subst) Compose(s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s1 {
		out[k] = v.Apply(s2)
	}
	for k, v := range s2 {
		out[k] = v
	}
	return out
}

// MergeUnion composes two substitutions, unioning the right-hand sides of
// colliding keys into a Union type instead of letting one side win.
// Nothing in this module calls it; inferMatch keeps each arm's bindings
// in that arm's own scope instead.
func (s1 Subst) MergeUnion(s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s1 {
		out[k] = v
	}
	for k, v := range s2 {
		if existing, ok := out[k]; ok && existing.String() != v.String() {
			out[k] = NormalizeUnion([]Type{existing, v})
		} else {
			out[k] = v
		}
	}
	return out
}

func applyChain(t Type, s Subst, visited map[VarID]bool) Type {
	if t == nil {
		return nil
	}
	v, ok := t.(Var)
	if !ok {
		return t.Apply(s)
	}
	if visited[v.ID] {
		return v
	}
	repl, ok := s[v.ID]
	if !ok {
		return v
	}
	if rv, ok := repl.(Var); ok && rv.ID == v.ID {
		return v
	}
	nv := make(map[VarID]bool, len(visited)+1)
	for k := range visited {
		nv[k] = true
	}
	nv[v.ID] = true
	return applyChain(repl, s, nv)
}

// Prim enumerates Escalier's scalar primitive kinds.
type Prim int

const (
	Number Prim = iota
	String
	Boolean
	SymbolPrim
)

func (p Prim) String() string {
	switch p {
	case Number:
		return "number"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case SymbolPrim:
		return "symbol"
	default:
		return "<unknown prim>"
	}
}

// Keyword enumerates the keyword types that are not primitives.
type Keyword int

const (
	Null Keyword = iota
	Undefined
	Never
	Unknown
	SymbolKeyword
)

func (k Keyword) String() string {
	switch k {
	case Null:
		return "null"
	case Undefined:
		return "undefined"
	case Never:
		return "never"
	case Unknown:
		return "unknown"
	case SymbolKeyword:
		return "symbol"
	default:
		return "<unknown keyword>"
	}
}

// --- Var ---------------------------------------------------------------

// Var is a unification variable, optionally constrained by an upper bound
// consulted during unification (spec.md §3 "Var(id, constraint?)").
type Var struct {
	ID         VarID
	Name       string // display name, e.g. "t12" or a generalized "T"
	Constraint Type
}

func (v Var) String() string {
	if config.Snapshot {
		return "t?"
	}
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("t%d", v.ID)
}

func (v Var) Apply(s Subst) Type { return applyChain(v, s, nil) }

func (v Var) FreeTypeVariables() []VarID { return []VarID{v.ID} }

// --- PrimType / KeywordType ---------------------------------------------

type PrimType struct{ Kind Prim }

func (p PrimType) String() string                 { return p.Kind.String() }
func (p PrimType) Apply(Subst) Type                { return p }
func (p PrimType) FreeTypeVariables() []VarID      { return nil }

type KeywordType struct{ Kind Keyword }

func (k KeywordType) String() string            { return k.Kind.String() }
func (k KeywordType) Apply(Subst) Type           { return k }
func (k KeywordType) FreeTypeVariables() []VarID { return nil }

// --- Lit -----------------------------------------------------------------

// LitKind enumerates literal type payload shapes.
type LitKind int

const (
	LitNum LitKind = iota
	LitStr
	LitBool
	LitNull
	LitUndefined
)

// Lit is a literal type; literal types subsume their base primitive/keyword
// per spec.md invariant 4.
type Lit struct {
	Kind   LitKind
	Lexeme string // for LitNum, the source lexeme (preserves e.g. "1" vs "1.0")
	Str    string
	Bool   bool
}

func (l Lit) String() string {
	switch l.Kind {
	case LitNum:
		return l.Lexeme
	case LitStr:
		return fmt.Sprintf("%q", l.Str)
	case LitBool:
		if l.Bool {
			return "true"
		}
		return "false"
	case LitNull:
		return "null"
	case LitUndefined:
		return "undefined"
	default:
		return "<unknown lit>"
	}
}

func (l Lit) Apply(Subst) Type           { return l }
func (l Lit) FreeTypeVariables() []VarID { return nil }

// Base returns the primitive or keyword type that this literal subsumes to.
func (l Lit) Base() Type {
	switch l.Kind {
	case LitNum:
		return PrimType{Kind: Number}
	case LitStr:
		return PrimType{Kind: String}
	case LitBool:
		return PrimType{Kind: Boolean}
	case LitNull:
		return KeywordType{Kind: Null}
	case LitUndefined:
		return KeywordType{Kind: Undefined}
	default:
		return KeywordType{Kind: Unknown}
	}
}

// --- Ref -----------------------------------------------------------------

// Ref is a reference to a named alias or generic type parameter, resolved
// through the checking Context.
type Ref struct {
	Name     string
	TypeArgs []Type
}

func (r Ref) String() string {
	if len(r.TypeArgs) == 0 {
		return r.Name
	}
	args := make([]string, len(r.TypeArgs))
	for i, a := range r.TypeArgs {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", r.Name, strings.Join(args, ", "))
}

func (r Ref) Apply(s Subst) Type {
	newArgs := make([]Type, len(r.TypeArgs))
	for i, a := range r.TypeArgs {
		newArgs[i] = a.Apply(s)
	}
	return Ref{Name: r.Name, TypeArgs: newArgs}
}

func (r Ref) FreeTypeVariables() []VarID {
	var out []VarID
	for _, a := range r.TypeArgs {
		out = append(out, a.FreeTypeVariables()...)
	}
	return uniqueVarIDs(out)
}

// --- This / Wildcard ------------------------------------------------------

type This struct{}

func (This) String() string              { return "this" }
func (This) Apply(Subst) Type            { return This{} }
func (This) FreeTypeVariables() []VarID  { return nil }

type Wildcard struct{}

func (Wildcard) String() string              { return "_" }
func (Wildcard) Apply(Subst) Type            { return Wildcard{} }
func (Wildcard) FreeTypeVariables() []VarID  { return nil }

func uniqueVarIDs(in []VarID) []VarID {
	seen := make(map[VarID]bool, len(in))
	out := make([]VarID, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// sortedKeys returns the keys of m sorted for canonical/deterministic
// display and comparison (spec.md invariant 6).
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
