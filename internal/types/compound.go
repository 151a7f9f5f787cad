package types

import (
	"fmt"
	"strings"
)

// --- Object ---------------------------------------------------------------

// Elem is one member of an Object type: Prop, Method, Getter, Setter,
// Index, Call, or Constructor (spec.md §3).
type Elem interface {
	elemNode()
	applyElem(Subst) Elem
	ftvElem() []VarID
	stringElem() string
	// key returns the sort key used for canonical ordering (invariant 6).
	// Call/Constructor/Index signatures use NUL-prefixed keys and so sort
	// before every named member.
	key() string
}

type Prop struct {
	Name     string
	Optional bool
	Mutable  bool
	Readonly bool
	T        Type
}

func (Prop) elemNode() {}
func (p Prop) key() string { return p.Name }
func (p Prop) applyElem(s Subst) Elem { return Prop{p.Name, p.Optional, p.Mutable, p.Readonly, p.T.Apply(s)} }
func (p Prop) ftvElem() []VarID       { return p.T.FreeTypeVariables() }
func (p Prop) stringElem() string {
	mods := ""
	if p.Readonly {
		mods += "readonly "
	}
	opt := ""
	if p.Optional {
		opt = "?"
	}
	return fmt.Sprintf("%s%s%s: %s", mods, p.Name, opt, p.T.String())
}

type Method struct {
	Name       string
	TypeParams []TypeParam
	Params     []Type
	Ret        Type
	Mutates    bool
}

func (Method) elemNode() {}
func (m Method) key() string { return m.Name }
func (m Method) applyElem(s Subst) Elem {
	params := make([]Type, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Apply(s)
	}
	return Method{m.Name, m.TypeParams, params, m.Ret.Apply(s), m.Mutates}
}
func (m Method) ftvElem() []VarID {
	var out []VarID
	for _, p := range m.Params {
		out = append(out, p.FreeTypeVariables()...)
	}
	return append(out, m.Ret.FreeTypeVariables()...)
}
func (m Method) stringElem() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("%s(%s): %s", m.Name, strings.Join(params, ", "), m.Ret.String())
}

type Getter struct {
	Name string
	Ret  Type
}

func (Getter) elemNode() {}
func (g Getter) key() string               { return g.Name }
func (g Getter) applyElem(s Subst) Elem    { return Getter{g.Name, g.Ret.Apply(s)} }
func (g Getter) ftvElem() []VarID          { return g.Ret.FreeTypeVariables() }
func (g Getter) stringElem() string        { return fmt.Sprintf("get %s(): %s", g.Name, g.Ret.String()) }

type Setter struct {
	Name  string
	Param Type
}

func (Setter) elemNode() {}
func (s Setter) key() string            { return s.Name }
func (st Setter) applyElem(s Subst) Elem { return Setter{st.Name, st.Param.Apply(s)} }
func (st Setter) ftvElem() []VarID       { return st.Param.FreeTypeVariables() }
func (st Setter) stringElem() string     { return fmt.Sprintf("set %s(%s)", st.Name, st.Param.String()) }

type Index struct {
	Key     Type
	Value   Type
	Mutable bool
}

func (Index) elemNode() {}
func (i Index) key() string { return "\x00index" } // sorts before named members
func (i Index) applyElem(s Subst) Elem {
	return Index{i.Key.Apply(s), i.Value.Apply(s), i.Mutable}
}
func (i Index) ftvElem() []VarID {
	return append(i.Key.FreeTypeVariables(), i.Value.FreeTypeVariables()...)
}
func (i Index) stringElem() string {
	return fmt.Sprintf("[key: %s]: %s", i.Key.String(), i.Value.String())
}

type Call struct {
	TypeParams []TypeParam
	Params     []Type
	Ret        Type
}

func (Call) elemNode() {}
func (c Call) key() string { return "\x00call" }
func (c Call) applyElem(s Subst) Elem {
	params := make([]Type, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.Apply(s)
	}
	return Call{c.TypeParams, params, c.Ret.Apply(s)}
}
func (c Call) ftvElem() []VarID {
	var out []VarID
	for _, p := range c.Params {
		out = append(out, p.FreeTypeVariables()...)
	}
	return append(out, c.Ret.FreeTypeVariables()...)
}
func (c Call) stringElem() string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("(%s): %s", strings.Join(params, ", "), c.Ret.String())
}

type Constructor struct {
	TypeParams []TypeParam
	Params     []Type
	Ret        Type
}

func (Constructor) elemNode() {}
func (c Constructor) key() string { return "\x00new" }
func (c Constructor) applyElem(s Subst) Elem {
	params := make([]Type, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.Apply(s)
	}
	return Constructor{c.TypeParams, params, c.Ret.Apply(s)}
}
func (c Constructor) ftvElem() []VarID {
	var out []VarID
	for _, p := range c.Params {
		out = append(out, p.FreeTypeVariables()...)
	}
	return append(out, c.Ret.FreeTypeVariables()...)
}
func (c Constructor) stringElem() string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("new (%s): %s", strings.Join(params, ", "), c.Ret.String())
}

// Object is a structural row-polymorphic object/interface type.
type Object struct {
	Elems       []Elem
	IsInterface bool
}

func (o Object) String() string {
	sorted := SortedElems(o.Elems)
	parts := make([]string, len(sorted))
	for i, e := range sorted {
		parts[i] = e.stringElem()
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, "; "))
}

func (o Object) Apply(s Subst) Type {
	newElems := make([]Elem, len(o.Elems))
	for i, e := range o.Elems {
		newElems[i] = e.applyElem(s)
	}
	return Object{Elems: newElems, IsInterface: o.IsInterface}
}

func (o Object) FreeTypeVariables() []VarID {
	var out []VarID
	for _, e := range o.Elems {
		out = append(out, e.ftvElem()...)
	}
	return uniqueVarIDs(out)
}

// SortedElems returns a copy of elems in canonical order (invariant 6):
// call/index/constructor signatures first, then named members
// alphabetically.
func SortedElems(elems []Elem) []Elem {
	out := make([]Elem, len(elems))
	copy(out, elems)
	// stable sort by key
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].key() > out[j].key(); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// LookupProp finds a named, directly-present property/method/getter on an
// object, returning its exposed type (optional props surfaced as T |
// undefined per spec.md §4.4) and whether it was found.
func (o Object) LookupProp(name string) (Type, bool) {
	for _, e := range o.Elems {
		switch el := e.(type) {
		case Prop:
			if el.Name == name {
				if el.Optional {
					return NormalizeUnion([]Type{el.T, KeywordType{Kind: Undefined}}), true
				}
				return el.T, true
			}
		case Method:
			if el.Name == name {
				return TFunc{Params: el.Params, ReturnType: el.Ret, TypeParams: el.TypeParams}, true
			}
		case Getter:
			if el.Name == name {
				return el.Ret, true
			}
		}
	}
	return nil, false
}

// --- Tuple / Array / Rest --------------------------------------------------

type Tuple struct {
	Elements []Type
	Mutable  bool
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

func (t Tuple) Apply(s Subst) Type {
	newElems := make([]Type, len(t.Elements))
	for i, e := range t.Elements {
		newElems[i] = e.Apply(s)
	}
	return Tuple{Elements: newElems, Mutable: t.Mutable}
}

func (t Tuple) FreeTypeVariables() []VarID {
	var out []VarID
	for _, e := range t.Elements {
		out = append(out, e.FreeTypeVariables()...)
	}
	return uniqueVarIDs(out)
}

type Array struct {
	Elem    Type
	Mutable bool
}

func (a Array) String() string {
	if a.Mutable {
		return fmt.Sprintf("%s[]", a.Elem.String())
	}
	return fmt.Sprintf("ReadonlyArray<%s>", a.Elem.String())
}

func (a Array) Apply(s Subst) Type           { return Array{a.Elem.Apply(s), a.Mutable} }
func (a Array) FreeTypeVariables() []VarID   { return a.Elem.FreeTypeVariables() }

// Rest wraps the type of a rest parameter/tuple tail/pattern.
type Rest struct {
	T Type
}

func (r Rest) String() string            { return "..." + r.T.String() }
func (r Rest) Apply(s Subst) Type        { return Rest{r.T.Apply(s)} }
func (r Rest) FreeTypeVariables() []VarID { return r.T.FreeTypeVariables() }

// CanonicalizeRestParam turns a top-level Rest(T) parameter type into
// Array(T), per spec.md §4.3 ("Rest parameters... externally represented
// as arrays").
func CanonicalizeRestParam(t Type) Type {
	if r, ok := t.(Rest); ok {
		return Array{Elem: r.T, Mutable: true}
	}
	return t
}

// --- Union / Intersection ---------------------------------------------------

type Union struct {
	Types []Type
}

func (u Union) String() string {
	parts := make([]string, len(u.Types))
	for i, t := range u.Types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}

func (u Union) Apply(s Subst) Type {
	newTypes := make([]Type, len(u.Types))
	for i, t := range u.Types {
		newTypes[i] = t.Apply(s)
	}
	return NormalizeUnion(newTypes)
}

func (u Union) FreeTypeVariables() []VarID {
	var out []VarID
	for _, t := range u.Types {
		out = append(out, t.FreeTypeVariables()...)
	}
	return uniqueVarIDs(out)
}

type Intersection struct {
	Types []Type
}

func (i Intersection) String() string {
	parts := make([]string, len(i.Types))
	for idx, t := range i.Types {
		parts[idx] = t.String()
	}
	return strings.Join(parts, " & ")
}

func (i Intersection) Apply(s Subst) Type {
	newTypes := make([]Type, len(i.Types))
	for idx, t := range i.Types {
		newTypes[idx] = t.Apply(s)
	}
	return NormalizeIntersection(newTypes)
}

func (i Intersection) FreeTypeVariables() []VarID {
	var out []VarID
	for _, t := range i.Types {
		out = append(out, t.FreeTypeVariables()...)
	}
	return uniqueVarIDs(out)
}

// NormalizeUnion flattens nested unions, drops Never (absorbent, invariant
// 5), merges a Lit with its base Prim/Keyword when both are present
// (invariant 4), deduplicates, and sorts for canonical comparison
// (invariant 6).
func NormalizeUnion(in []Type) Type {
	flat := make([]Type, 0, len(in))
	for _, t := range in {
		if u, ok := t.(Union); ok {
			flat = append(flat, u.Types...)
		} else {
			flat = append(flat, t)
		}
	}

	// Drop Never; it is absorbent in unions.
	filtered := flat[:0:0]
	for _, t := range flat {
		if kw, ok := t.(KeywordType); ok && kw.Kind == Never {
			continue
		}
		filtered = append(filtered, t)
	}
	if len(filtered) == 0 {
		return KeywordType{Kind: Never}
	}

	// Literal subsumption: if a Prim/Keyword base is present alongside any
	// Lit with that base, drop the narrower literal members.
	basesPresent := map[string]bool{}
	for _, t := range filtered {
		switch t.(type) {
		case PrimType, KeywordType:
			basesPresent[t.String()] = true
		}
	}
	subsumed := filtered[:0:0]
	for _, t := range filtered {
		if lit, ok := t.(Lit); ok {
			if basesPresent[lit.Base().String()] {
				continue
			}
		}
		subsumed = append(subsumed, t)
	}

	seen := map[string]bool{}
	unique := make([]Type, 0, len(subsumed))
	for _, t := range subsumed {
		key := t.String()
		if !seen[key] {
			seen[key] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 1 {
		return unique[0]
	}
	sortTypesByString(unique)
	return Union{Types: unique}
}

// NormalizeIntersection flattens nested intersections, drops Unknown
// (absorbent, invariant 5), deduplicates, and sorts.
func NormalizeIntersection(in []Type) Type {
	flat := make([]Type, 0, len(in))
	for _, t := range in {
		if ix, ok := t.(Intersection); ok {
			flat = append(flat, ix.Types...)
		} else {
			flat = append(flat, t)
		}
	}
	filtered := flat[:0:0]
	for _, t := range flat {
		if kw, ok := t.(KeywordType); ok && kw.Kind == Unknown {
			continue
		}
		filtered = append(filtered, t)
	}
	if len(filtered) == 0 {
		return KeywordType{Kind: Unknown}
	}
	seen := map[string]bool{}
	unique := make([]Type, 0, len(filtered))
	for _, t := range filtered {
		key := t.String()
		if !seen[key] {
			seen[key] = true
			unique = append(unique, t)
		}
	}
	if len(unique) == 1 {
		return unique[0]
	}
	sortTypesByString(unique)
	return Intersection{Types: unique}
}

func sortTypesByString(ts []Type) {
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j-1].String() > ts[j].String(); j-- {
			ts[j-1], ts[j] = ts[j], ts[j-1]
		}
	}
}

// --- Func / TypeParam -------------------------------------------------------

type TypeParam struct {
	Name       string
	ID         VarID // the Var id this parameter binds in a Scheme's body
	Constraint Type
	Default    Type
}

// TFunc represents a function/lambda type.
type TFunc struct {
	TypeParams []TypeParam
	Params     []Type
	ReturnType Type
	Throws     Type // nil if the function is not declared to throw
}

func (f TFunc) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	prefix := ""
	if len(f.TypeParams) > 0 {
		names := make([]string, len(f.TypeParams))
		for i, tp := range f.TypeParams {
			names[i] = tp.Name
		}
		prefix = fmt.Sprintf("<%s>", strings.Join(names, ", "))
	}
	return fmt.Sprintf("%s(%s) => %s", prefix, strings.Join(params, ", "), f.ReturnType.String())
}

func (f TFunc) Apply(s Subst) Type {
	bound := map[string]bool{}
	for _, tp := range f.TypeParams {
		bound[tp.Name] = true
	}
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Apply(s)
	}
	var throws Type
	if f.Throws != nil {
		throws = f.Throws.Apply(s)
	}
	return TFunc{
		TypeParams: f.TypeParams,
		Params:     params,
		ReturnType: f.ReturnType.Apply(s),
		Throws:     throws,
	}
}

func (f TFunc) FreeTypeVariables() []VarID {
	bound := map[string]bool{}
	for _, tp := range f.TypeParams {
		bound[tp.Name] = true
	}
	var out []VarID
	for _, p := range f.Params {
		out = append(out, p.FreeTypeVariables()...)
	}
	out = append(out, f.ReturnType.FreeTypeVariables()...)
	return uniqueVarIDs(out)
}

// App is a pending application node: equivalent to a function-shaped
// constraint used in some inference paths (spec.md §3).
type App struct {
	Args     []Type
	Ret      Type
	TypeArgs []Type
}

func (a App) String() string {
	args := make([]string, len(a.Args))
	for i, t := range a.Args {
		args[i] = t.String()
	}
	return fmt.Sprintf("App(%s) -> %s", strings.Join(args, ", "), a.Ret.String())
}

func (a App) Apply(s Subst) Type {
	args := make([]Type, len(a.Args))
	for i, t := range a.Args {
		args[i] = t.Apply(s)
	}
	return App{Args: args, Ret: a.Ret.Apply(s), TypeArgs: a.TypeArgs}
}

func (a App) FreeTypeVariables() []VarID {
	var out []VarID
	for _, t := range a.Args {
		out = append(out, t.FreeTypeVariables()...)
	}
	return append(out, a.Ret.FreeTypeVariables()...)
}
