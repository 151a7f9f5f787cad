package infer

import "github.com/escalier-lang/escalier/internal/types"

// generalize closes over every free type variable in t that does not also
// appear free somewhere in the enclosing scopes (spec.md §4.7's
// let-polymorphism: only variables introduced by this binding's own
// inference are quantified, not ones still constrained by an outer call).
func (c *Checker) generalize(t types.Type) types.Scheme {
	free := t.FreeTypeVariables()
	envFree := c.envFreeTypeVariables()
	params := make([]types.TypeParam, 0, len(free))
	for _, id := range free {
		if envFree[id] {
			continue
		}
		params = append(params, types.TypeParam{Name: nextTypeParamName(len(params)), ID: id})
	}
	return types.Scheme{TypeParams: params, Body: t}
}

// envFreeTypeVariables collects the free variables of every binding and
// scheme currently visible, used to decide which of a new binding's free
// variables are "owned" by an outer scope and therefore must not be
// quantified away.
func (c *Checker) envFreeTypeVariables() map[types.VarID]bool {
	out := map[types.VarID]bool{}
	for _, scope := range c.Ctx.Scopes() {
		for _, b := range scope.Values {
			for _, id := range b.Type.FreeTypeVariables() {
				out[id] = true
			}
		}
		for _, s := range scope.Schemes {
			// A scheme's own quantified params are not free in the
			// enclosing environment; only its remaining free vars are.
			bound := map[types.VarID]bool{}
			for _, tp := range s.TypeParams {
				bound[tp.ID] = true
			}
			for _, id := range s.Body.FreeTypeVariables() {
				if !bound[id] {
					out[id] = true
				}
			}
		}
	}
	return out
}

func nextTypeParamName(i int) string {
	letters := "TUVWXYZABCDEFGHIJKLMNOPQRS"
	if i < len(letters) {
		return string(letters[i])
	}
	return string(letters[i%len(letters)]) + itoaSmall(i/len(letters))
}

func itoaSmall(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// instantiate replaces a Scheme's quantified parameters with fresh type
// variables, preserving each parameter's constraint (spec.md §4.7).
func (c *Checker) instantiate(s types.Scheme) types.Type {
	if len(s.TypeParams) == 0 {
		return s.Body
	}
	subst := make(types.Subst, len(s.TypeParams))
	for _, tp := range s.TypeParams {
		constraint := tp.Constraint
		if constraint != nil {
			constraint = constraint.Apply(subst)
		}
		subst[tp.ID] = c.fresh(constraint)
	}
	return s.Body.Apply(subst)
}

// instantiateWithArgs is used for explicit type arguments at a call site
// (`f<string>(x)`): known positions are bound to the supplied argument
// types, remaining ones get fresh vars.
func (c *Checker) instantiateWithArgs(s types.Scheme, args []types.Type) types.Type {
	if len(s.TypeParams) == 0 {
		return s.Body
	}
	subst := make(types.Subst, len(s.TypeParams))
	for i, tp := range s.TypeParams {
		if i < len(args) {
			subst[tp.ID] = args[i]
			continue
		}
		constraint := tp.Constraint
		if constraint != nil {
			constraint = constraint.Apply(subst)
		}
		subst[tp.ID] = c.fresh(constraint)
	}
	return s.Body.Apply(subst)
}
