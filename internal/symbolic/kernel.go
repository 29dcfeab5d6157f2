package symbolic

import (
	"github.com/sdlab/succd/pkg/model"
)

// Kernel is the engine-agnostic half of the symbolic layer: expression
// compilation, space/state conversion, percolation, and one-step /
// saturated reachability, all expressed purely in terms of the Engine
// contract.
type Kernel struct {
	eng Engine
	n   int
}

// NewKernel wraps eng, which must have been built for exactly n
// variables.
func NewKernel(eng Engine, n int) *Kernel {
	return &Kernel{eng: eng, n: n}
}

func (k *Kernel) Engine() Engine { return k.eng }

// Compile translates a model.Expr into a BDD node over the kernel's
// variable order.
func (k *Kernel) Compile(e model.Expr) Node {
	switch x := e.(type) {
	case model.VarExpr:
		return k.eng.Ithvar(x.ID)
	case model.ConstExpr:
		if x.Value {
			return k.eng.One()
		}
		return k.eng.Zero()
	case model.NotExpr:
		return k.eng.Not(k.Compile(x.X))
	case model.AndExpr:
		acc := k.eng.One()
		for _, sub := range x.Xs {
			acc = k.eng.And(acc, k.Compile(sub))
		}
		return acc
	case model.OrExpr:
		acc := k.eng.Zero()
		for _, sub := range x.Xs {
			acc = k.eng.Or(acc, k.Compile(sub))
		}
		return acc
	case model.XorExpr:
		a, b := k.Compile(x.A), k.Compile(x.B)
		return k.eng.Or(k.eng.And(a, k.eng.Not(b)), k.eng.And(k.eng.Not(a), b))
	case model.EquivExpr:
		a, b := k.Compile(x.A), k.Compile(x.B)
		return k.eng.Or(k.eng.And(a, b), k.eng.And(k.eng.Not(a), k.eng.Not(b)))
	default:
		panic("symbolic: unknown expr type")
	}
}

// FromSpace returns the BDD denoting every state completion of sp: a
// conjunction of literals for its fixed variables.
func (k *Kernel) FromSpace(sp *model.Space) Node {
	f := k.eng.One()
	for _, id := range sp.FixedVars() {
		v, _ := sp.IsFixed(id)
		lit := k.eng.Ithvar(id)
		if !v {
			lit = k.eng.NIthvar(id)
		}
		f = k.eng.And(f, lit)
	}
	return f
}

// FromState returns the singleton-set BDD denoting exactly s.
func (k *Kernel) FromState(s model.State) Node {
	f := k.eng.One()
	for i, v := range s {
		lit := k.eng.Ithvar(i)
		if v == 0 {
			lit = k.eng.NIthvar(i)
		}
		f = k.eng.And(f, lit)
	}
	return f
}

// PickOneState returns one satisfying full assignment of f, or ok=false
// if f is empty. Implemented generically by walking the variable order
// and restricting, so it makes no assumption beyond the Engine contract.
func (k *Kernel) PickOneState(f Node) (model.State, bool) {
	if k.eng.IsZero(f) {
		return nil, false
	}
	s := model.NewState(k.n)
	cur := f
	for i := 0; i < k.n; i++ {
		onTrue := k.eng.Restrict(cur, i, true)
		if !k.eng.IsZero(onTrue) {
			s.Set(i, true)
			cur = onTrue
			continue
		}
		onFalse := k.eng.Restrict(cur, i, false)
		s.Set(i, false)
		cur = onFalse
	}
	return s, true
}

// IterateSatisfyingStates calls fn once per full satisfying assignment of
// f, depth-first over the variable order, stopping after limit calls
// (limit<=0 means unbounded) or when fn returns false.
func (k *Kernel) IterateSatisfyingStates(f Node, limit int, fn func(model.State) bool) {
	count := 0
	s := model.NewState(k.n)
	var walk func(node Node, i int) bool
	walk = func(node Node, i int) bool {
		if limit > 0 && count >= limit {
			return false
		}
		if k.eng.IsZero(node) {
			return true
		}
		if i == k.n {
			count++
			cont := fn(s.Clone())
			return cont
		}
		for _, v := range [2]bool{false, true} {
			s.Set(i, v)
			next := k.eng.Restrict(node, i, v)
			if !k.eng.IsZero(next) {
				if !walk(next, i+1) {
					return false
				}
			}
			if limit > 0 && count >= limit {
				return false
			}
		}
		return true
	}
	walk(f, 0)
}

// Percolate extends sp with i↦b whenever f_i restricted to sp's
// completions is the constant b, repeating until a fixed point; running
// it again on its own output changes nothing.
func (k *Kernel) Percolate(sp *model.Space, funcs []Node) *model.Space {
	cur := sp.Clone()
	for {
		changed := false
		for i := 0; i < k.n; i++ {
			if _, fixed := cur.IsFixed(i); fixed {
				continue
			}
			space := k.FromSpace(cur)
			fi := k.eng.And(funcs[i], space)
			notFi := k.eng.And(k.eng.Not(funcs[i]), space)
			switch {
			case k.eng.IsZero(notFi) && !k.eng.IsZero(fi):
				// f_i is always 1 on completions of cur
				cur.Fix(i, true)
				changed = true
			case k.eng.IsZero(fi) && !k.eng.IsZero(notFi):
				cur.Fix(i, false)
				changed = true
			}
		}
		if !changed {
			return cur
		}
	}
}

// StepForward computes the one-step asynchronous image of set under the
// update functions: the union, over every variable i, of states reached
// by firing i's update where it is enabled.
func (k *Kernel) StepForward(set Node, funcs []Node) Node {
	acc := k.eng.Zero()
	for i := 0; i < k.n; i++ {
		acc = k.eng.Or(acc, k.stepVar(set, funcs, i, true))
	}
	return acc
}

// StepBackward computes the one-step asynchronous preimage of set: states
// with some enabled update that lands in set.
func (k *Kernel) StepBackward(set Node, funcs []Node) Node {
	acc := k.eng.Zero()
	for i := 0; i < k.n; i++ {
		acc = k.eng.Or(acc, k.stepVar(set, funcs, i, false))
	}
	return acc
}

// stepVar computes the relational product of set with transition t_i for
// either the forward or backward direction.
func (k *Kernel) stepVar(set Node, funcs []Node, i int, forward bool) Node {
	if forward {
		// states in set where f_i disagrees with x_i, updated to f_i's
		// value: (set ∧ f_i ∧ ¬x_i) ∨ (set ∧ ¬f_i ∧ x_i), with x_i
		// replaced by f_i's value afterward.
		enabledHigh := k.eng.And(k.eng.And(set, funcs[i]), k.eng.NIthvar(i))
		enabledLow := k.eng.And(k.eng.And(set, k.eng.Not(funcs[i])), k.eng.Ithvar(i))
		toHigh := k.eng.Restrict(enabledHigh, i, false)
		toHigh = k.eng.And(toHigh, k.eng.Ithvar(i))
		toLow := k.eng.Restrict(enabledLow, i, true)
		toLow = k.eng.And(toLow, k.eng.NIthvar(i))
		return k.eng.Or(toHigh, toLow)
	}
	// Backward: predecessors y such that firing i from y lands in set.
	// y has x_i = ¬f_i(y) and the successor (y with x_i flipped to
	// f_i(y)) is in set.
	succHigh := k.eng.And(set, k.eng.Ithvar(i))   // successor has x_i=1
	succLow := k.eng.And(set, k.eng.NIthvar(i))   // successor has x_i=0
	predFromHigh := k.eng.And(k.eng.Restrict(succHigh, i, true), k.eng.And(funcs[i], k.eng.NIthvar(i)))
	predFromLow := k.eng.And(k.eng.Restrict(succLow, i, false), k.eng.And(k.eng.Not(funcs[i]), k.eng.Ithvar(i)))
	return k.eng.Or(predFromHigh, predFromLow)
}

// Saturate computes the least fixed point of start under repeated
// StepForward (or StepBackward) application — the forward (or backward)
// reachable set. Termination follows from finiteness of the state space;
// the result does not depend on the per-variable iteration order used
// internally by each step, only on reaching the fixed point.
func (k *Kernel) Saturate(start Node, funcs []Node, forward bool) Node {
	reached := start
	for {
		var delta Node
		if forward {
			delta = k.StepForward(reached, funcs)
		} else {
			delta = k.StepBackward(reached, funcs)
		}
		next := k.eng.Or(reached, delta)
		if k.eng.Equal(next, reached) {
			return reached
		}
		reached = next
	}
}

// ForwardReachable returns the forward-reachable set from start.
func (k *Kernel) ForwardReachable(start Node, funcs []Node) Node {
	return k.Saturate(start, funcs, true)
}

// BackwardReachable returns the backward-reachable set to target.
func (k *Kernel) BackwardReachable(target Node, funcs []Node) Node {
	return k.Saturate(target, funcs, false)
}
