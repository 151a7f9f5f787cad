package types

import "fmt"

// KeyOf is the `keyof T` type-level operator (reduced in internal/infer's
// type-level evaluator; this is the unreduced AST-level representation
// used before/when reduction cannot proceed, e.g. T still has free vars).
type KeyOf struct {
	T Type
}

func (k KeyOf) String() string            { return fmt.Sprintf("keyof %s", k.T.String()) }
func (k KeyOf) Apply(s Subst) Type        { return KeyOf{k.T.Apply(s)} }
func (k KeyOf) FreeTypeVariables() []VarID { return k.T.FreeTypeVariables() }

// IndexAccess is the `T[K]` type-level lookup operator.
type IndexAccess struct {
	Object Type
	Index  Type
}

func (i IndexAccess) String() string {
	return fmt.Sprintf("%s[%s]", i.Object.String(), i.Index.String())
}
func (i IndexAccess) Apply(s Subst) Type {
	return IndexAccess{i.Object.Apply(s), i.Index.Apply(s)}
}
func (i IndexAccess) FreeTypeVariables() []VarID {
	return append(i.Object.FreeTypeVariables(), i.Index.FreeTypeVariables()...)
}

// Modifier describes an add/remove toggle for mapped-type `+?`/`-?` and
// `readonly`/`-readonly` modifiers. Kept as an explicit tri-state (not a
// bool) so "absent" (don't touch the modifier) is distinguishable from
// "remove" -- matching the original Rust parser's own representation.
type Modifier int

const (
	ModifierNone Modifier = iota
	ModifierAdd
	ModifierRemove
)

// MappedType is the `{[P]: V for P in S}` type-level comprehension.
type MappedType struct {
	TypeParam        string // P
	Source           Type   // S
	Key              Type   // optional renamed key expression; nil if P itself
	Value            Type   // V, in terms of TypeParam
	OptionalModifier Modifier
	ReadonlyModifier Modifier
}

func (m MappedType) String() string {
	opt := ""
	switch m.OptionalModifier {
	case ModifierAdd:
		opt = "+?"
	case ModifierRemove:
		opt = "-?"
	}
	ro := ""
	switch m.ReadonlyModifier {
	case ModifierAdd:
		ro = "readonly "
	case ModifierRemove:
		ro = "-readonly "
	}
	return fmt.Sprintf("{[%s%s]%s: %s for %s in %s}", ro, m.TypeParam, opt, m.Value.String(), m.TypeParam, m.Source.String())
}

func (m MappedType) Apply(s Subst) Type {
	newSubst := make(Subst, len(s))
	for k, v := range s {
		newSubst[k] = v
	}
	out := MappedType{
		TypeParam:        m.TypeParam,
		Source:           m.Source.Apply(s),
		Value:            m.Value.Apply(s),
		OptionalModifier: m.OptionalModifier,
		ReadonlyModifier: m.ReadonlyModifier,
	}
	if m.Key != nil {
		out.Key = m.Key.Apply(s)
	}
	return out
}

func (m MappedType) FreeTypeVariables() []VarID {
	out := append(m.Source.FreeTypeVariables(), m.Value.FreeTypeVariables()...)
	if m.Key != nil {
		out = append(out, m.Key.FreeTypeVariables()...)
	}
	return uniqueVarIDs(out)
}

// ConditionalType is the `if (C: E) { A } else { B }` type-level
// conditional, optionally capturing `infer N` positions in E.
type ConditionalType struct {
	Check   Type
	Extends Type
	True    Type
	False   Type
}

func (c ConditionalType) String() string {
	return fmt.Sprintf("if (%s: %s) { %s } else { %s }", c.Check.String(), c.Extends.String(), c.True.String(), c.False.String())
}

func (c ConditionalType) Apply(s Subst) Type {
	return ConditionalType{
		Check:   c.Check.Apply(s),
		Extends: c.Extends.Apply(s),
		True:    c.True.Apply(s),
		False:   c.False.Apply(s),
	}
}

func (c ConditionalType) FreeTypeVariables() []VarID {
	var out []VarID
	out = append(out, c.Check.FreeTypeVariables()...)
	out = append(out, c.Extends.FreeTypeVariables()...)
	out = append(out, c.True.FreeTypeVariables()...)
	out = append(out, c.False.FreeTypeVariables()...)
	return uniqueVarIDs(out)
}

// InferType is the `infer N` placeholder appearing inside a conditional
// type's Extends clause.
type InferType struct {
	Name string
}

func (i InferType) String() string            { return "infer " + i.Name }
func (i InferType) Apply(Subst) Type           { return i }
func (i InferType) FreeTypeVariables() []VarID { return nil }

// TypeOf is the `typeof ident` type-level operator.
type TypeOf struct {
	Ident string
}

func (t TypeOf) String() string            { return "typeof " + t.Ident }
func (t TypeOf) Apply(Subst) Type          { return t }
func (t TypeOf) FreeTypeVariables() []VarID { return nil }
