package infer

import (
	"github.com/escalier-lang/escalier/internal/ast"
	"github.com/escalier-lang/escalier/internal/checkerr"
	"github.com/escalier-lang/escalier/internal/types"
)

// readonlyView derives the readonly projection of t: arrays/tuples lose
// their Mutable flag, object properties gain Readonly/lose Mutable, and
// setters/mutating methods are dropped outright, recursively (spec.md
// §4.9 "a readonly view exposes no mutating members... drop setters,
// drop methods marked as mutating, leave getters intact"). Used whenever
// a location is bound immutably but its value type contains mutable
// parts (bindLetPattern), and wherever else a value flows into a
// position that promises not to mutate it.
func readonlyView(t types.Type) types.Type {
	switch v := t.(type) {
	case types.Array:
		return types.Array{Elem: readonlyView(v.Elem), Mutable: false}
	case types.Tuple:
		elems := make([]types.Type, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = readonlyView(e)
		}
		return types.Tuple{Elements: elems, Mutable: false}
	case types.Object:
		elems := make([]types.Elem, 0, len(v.Elems))
		for _, e := range v.Elems {
			switch el := e.(type) {
			case types.Prop:
				elems = append(elems, types.Prop{Name: el.Name, Optional: el.Optional, Mutable: false, Readonly: true, T: readonlyView(el.T)})
			case types.Setter:
				// dropped: a readonly view exposes no way to write the field
			case types.Method:
				if el.Mutates {
					continue // dropped: mutating methods aren't callable through a readonly view
				}
				elems = append(elems, el)
			default:
				elems = append(elems, e)
			}
		}
		return types.Object{Elems: elems, IsInterface: v.IsInterface}
	case types.Union:
		out := make([]types.Type, len(v.Types))
		for i, m := range v.Types {
			out[i] = readonlyView(m)
		}
		return types.NormalizeUnion(out)
	default:
		return t
	}
}

// checkNoMutableFromReadonly reports AssignReadonlyToMut when a readonly
// value (an Array or Tuple with Mutable=false at the top level) is bound
// to a mutable `let mut` identifier (spec.md §4.9, §7). Object values are
// not checked: an object whose props are readonly is never reported. The
// inverse direction -- binding a mutable value to an immutable name -- is
// always fine and not checked here.
func (c *Checker) checkNoMutableFromReadonly(span ast.Span, name string, t types.Type) {
	if isReadonly(t) {
		c.addErr(&checkerr.TypeError{Kind: checkerr.AssignReadonlyToMut, Span: span, Name: name})
	}
}

func isReadonly(t types.Type) bool {
	switch v := t.(type) {
	case types.Array:
		return !v.Mutable
	case types.Tuple:
		return !v.Mutable
	default:
		return false
	}
}
