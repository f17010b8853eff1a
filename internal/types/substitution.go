package types

import "github.com/cwbudde/livyc/internal/compileerr"

// Substitution is a finite mapping from TypeVar id to type term. The zero
// value (a nil map) is the identity substitution (spec.md §3.2).
type Substitution map[int]Type

// Substitute replaces every free TypeVar in t that is a key of sub with
// its mapped value, recursively. It is the single workhorse both the
// unifier and the final substitutor traversal (§4.4.5) build on.
func Substitute(t Type, sub Substitution) Type {
	switch v := t.(type) {
	case *TypeVar:
		mapped, ok := sub[v.ID]
		if !ok {
			return v
		}
		if next, ok := mapped.(*TypeVar); ok && next.ID == v.ID {
			return v
		}
		return Substitute(mapped, sub)
	case *GenericType:
		args := make([]Type, len(v.Args))
		for i, a := range v.Args {
			args[i] = Substitute(a, sub)
		}
		return &GenericType{Sp: v.Sp, Base: v.Base, Args: args}
	case *FuncType:
		return &FuncType{Sp: v.Sp, Left: Substitute(v.Left, sub), Right: Substitute(v.Right, sub)}
	case *TypeScheme:
		inner := make(Substitution, len(sub))
		for id, val := range sub {
			if _, bound := v.Bound[id]; !bound {
				inner[id] = val
			}
		}
		return &TypeScheme{Actual: Substitute(v.Actual, inner), Bound: v.Bound}
	default:
		return t
	}
}

// Close applies sub to its own range until a fixed point is reached
// (spec.md §4.4.3, "Solve"). Substitute already resolves chained TypeVars
// recursively in a single call, so this normally converges in one pass;
// the loop exists so the function remains correct even if a future change
// to Substitute stops being fully recursive.
func Close(sub Substitution) Substitution {
	for {
		next := make(Substitution, len(sub))
		changed := false
		for id, v := range sub {
			resolved := Substitute(v, sub)
			if !IsEqual(resolved, v) {
				changed = true
			}
			next[id] = resolved
		}
		sub = next
		if !changed {
			return sub
		}
	}
}

// Instantiate replaces every bound variable of a TypeScheme with a fresh
// TypeVar and returns the resulting (scheme-free) type. Non-scheme types
// are returned unchanged (spec.md §4.4.4).
func Instantiate(t Type, counter *Counter) Type {
	scheme, ok := t.(*TypeScheme)
	if !ok {
		return t
	}
	fresh := make(Substitution, len(scheme.Bound))
	for id, v := range scheme.Bound {
		if v.Numeric {
			fresh[id] = counter.FreshNumeric(v.Sp)
		} else {
			fresh[id] = counter.Fresh(v.Sp)
		}
	}
	return Substitute(scheme.Actual, fresh)
}

// FreeVars returns every TypeVar reachable in t, except those bound by an
// enclosing TypeScheme (spec.md §4.4.4).
func FreeVars(t Type) map[int]*TypeVar {
	out := map[int]*TypeVar{}
	collectFreeVars(t, out)
	return out
}

func collectFreeVars(t Type, out map[int]*TypeVar) {
	switch v := t.(type) {
	case *TypeVar:
		out[v.ID] = v
	case *GenericType:
		for _, a := range v.Args {
			collectFreeVars(a, out)
		}
	case *FuncType:
		collectFreeVars(v.Left, out)
		collectFreeVars(v.Right, out)
	case *TypeScheme:
		inner := map[int]*TypeVar{}
		collectFreeVars(v.Actual, inner)
		for id, tv := range inner {
			if _, bound := v.Bound[id]; !bound {
				out[id] = tv
			}
		}
	}
}

// Generalize wraps t in a TypeScheme over its free variables
// (let-polymorphism, spec.md §4.4.4). If t has no free variables, or is
// already a scheme with no further free variables, t is returned
// unchanged. Nested schemes are flattened: generalizing a TypeScheme
// merges the new free variables into the existing bound set rather than
// nesting two schemes.
func Generalize(t Type) Type {
	if scheme, ok := t.(*TypeScheme); ok {
		free := FreeVars(scheme.Actual)
		if len(free) == 0 {
			return scheme
		}
		bound := make(map[int]*TypeVar, len(scheme.Bound)+len(free))
		for id, v := range scheme.Bound {
			bound[id] = v
		}
		for id, v := range free {
			bound[id] = v
		}
		return &TypeScheme{Actual: scheme.Actual, Bound: bound}
	}
	free := FreeVars(t)
	if len(free) == 0 {
		return t
	}
	return &TypeScheme{Actual: t, Bound: free}
}

// Unify produces the most general substitution making left and right
// equal, or fails with a type-mismatch error (spec.md §4.4.3).
func Unify(left, right Type, counter *Counter) (Substitution, error) {
	left = Instantiate(left, counter)
	right = Instantiate(right, counter)

	if _, ok := left.(*TypeVar); ok {
		return unifyVar(left, right)
	}
	if _, ok := right.(*TypeVar); ok {
		return unifyVar(right, left)
	}

	lg, lIsGeneric := left.(*GenericType)
	rg, rIsGeneric := right.(*GenericType)
	if lIsGeneric && rIsGeneric {
		return unifyGenerics(lg, rg, counter)
	}

	lf, lIsFunc := left.(*FuncType)
	rf, rIsFunc := right.(*FuncType)
	if lIsFunc && rIsFunc {
		return unifyFuncs(lf, rf, counter)
	}

	return nil, compileerr.TypeMismatch(left, right)
}

func unifyVar(v Type, other Type) (Substitution, error) {
	tv := v.(*TypeVar)
	if otherVar, ok := other.(*TypeVar); ok {
		if tv.ID == otherVar.ID {
			return Substitution{}, nil
		}
		// When exactly one side carries the Numeric restriction, bind the
		// unrestricted id to the restricted variable (not the other way
		// around) so the restriction survives as whichever id later gets
		// resolved to a concrete type, instead of being discarded the
		// moment two variables meet.
		if tv.Numeric && !otherVar.Numeric {
			return Substitution{otherVar.ID: tv}, nil
		}
		return Substitution{tv.ID: other}, nil
	}
	if tv.Numeric && !isNumericConcrete(other) {
		return nil, compileerr.TypeMismatch(v, other)
	}
	if occurs(tv, other) {
		return nil, compileerr.OccursCheck(v, other)
	}
	return Substitution{tv.ID: other}, nil
}

// isNumericConcrete reports whether t is the closed Int or Float type —
// the only two concrete types a Numeric TypeVar may resolve to.
func isNumericConcrete(t Type) bool {
	gt, ok := t.(*GenericType)
	return ok && len(gt.Args) == 0 && (gt.Base == "Int" || gt.Base == "Float")
}

// occurs reports whether v appears free inside t — the occurs check that
// rejects infinite types like `a = a -> a` (spec.md §4.4.3, §8 property 2).
func occurs(v *TypeVar, t Type) bool {
	_, ok := FreeVars(t)[v.ID]
	return ok
}

func unifyGenerics(left, right *GenericType, counter *Counter) (Substitution, error) {
	if left.Base != right.Base || len(left.Args) != len(right.Args) {
		return nil, compileerr.TypeMismatch(left, right)
	}
	sub := Substitution{}
	for i := range left.Args {
		l := Substitute(left.Args[i], sub)
		r := Substitute(right.Args[i], sub)
		next, err := Unify(l, r, counter)
		if err != nil {
			return nil, err
		}
		merged, err := Compose(sub, next, counter)
		if err != nil {
			return nil, err
		}
		sub = merged
	}
	return sub, nil
}

func unifyFuncs(left, right *FuncType, counter *Counter) (Substitution, error) {
	leftSub, err := Unify(left.Left, right.Left, counter)
	if err != nil {
		return nil, err
	}
	rightSub, err := Unify(Substitute(left.Right, leftSub), Substitute(right.Right, leftSub), counter)
	if err != nil {
		return nil, err
	}
	return Compose(leftSub, rightSub, counter)
}

// Compose merges two substitutions (spec.md §4.4.3). Keys present in both
// with unequal values are resolved by unifying those two values and
// folding the result back in; this is the only place composition can
// itself fail with a type-mismatch error.
func Compose(left, right Substitution, counter *Counter) (Substitution, error) {
	result := make(Substitution, len(left)+len(right))
	for id, v := range left {
		result[id] = v
	}
	for id, v := range right {
		existing, present := result[id]
		if !present || IsEqual(existing, v) {
			result[id] = v
			continue
		}
		// Apply what's already known before re-unifying: existing and v
		// were each built in isolation (an equation's two sides are never
		// pre-substituted against the rest of the solution, see Solve),
		// so either can still mention a TypeVar that result already maps
		// back to id's own binding. Resolving that here is what lets
		// Unify's occurs check see a cycle hiding behind an
		// already-solved indirection, instead of silently composing a
		// self-referential substitution that later recurses forever in
		// Substitute/Close.
		solved, err := Unify(Substitute(existing, result), Substitute(v, result), counter)
		if err != nil {
			return nil, err
		}
		merged, err := Compose(result, solved, counter)
		if err != nil {
			return nil, err
		}
		result = merged
	}
	return result, nil
}

// Equation is one (left, right) pair pushed by the equation generator
// (spec.md §4.4.2). OnMismatch, if set, replaces the generic
// TypeMismatch Solve would otherwise return when Unify fails on this
// particular pair — used where a mismatch here has a more specific
// diagnosis than "cannot unify" (e.g. internal/infer's same-scope
// redefinition check, spec.md §7).
type Equation struct {
	Left       Type
	Right      Type
	OnMismatch func(left, right Type) error
}

// Solve folds Unify across the equation list in order, composing
// substitutions, then closes the result (spec.md §4.4.3, "Solve").
func Solve(equations []Equation, counter *Counter) (Substitution, error) {
	sub := Substitution{}
	for _, eq := range equations {
		s, err := Unify(eq.Left, eq.Right, counter)
		if err != nil {
			if eq.OnMismatch != nil {
				return nil, eq.OnMismatch(eq.Left, eq.Right)
			}
			return nil, err
		}
		merged, err := Compose(sub, s, counter)
		if err != nil {
			return nil, err
		}
		sub = merged
	}
	return Close(sub), nil
}
