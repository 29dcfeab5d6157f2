package model

// BooleanNetwork is an update-function-per-variable Boolean network: each
// variable i evolves under Funcs[i], a propositional expression over the
// full variable set.
type BooleanNetwork struct {
	Vars  *VariableSet
	Funcs []Expr // Funcs[i] is the update function of variable i

	// Deps[i] is the dependency set of Funcs[i], precomputed once
	// at construction so the influence graph and the oracle's fix/solve
	// loop never re-walk the expression tree.
	Deps [][]int
}

// NewBooleanNetwork builds a network from a symbol table and one update
// expression per variable, precomputing dependency sets.
func NewBooleanNetwork(vars *VariableSet, funcs []Expr) *BooleanNetwork {
	deps := make([][]int, len(funcs))
	for i, f := range funcs {
		deps[i] = DependencySet(f)
	}
	return &BooleanNetwork{Vars: vars, Funcs: funcs, Deps: deps}
}

// N returns the number of variables in the network.
func (bn *BooleanNetwork) N() int {
	return len(bn.Funcs)
}

// EvalVar evaluates variable i's update function against state s.
func (bn *BooleanNetwork) EvalVar(i int, s State) bool {
	return bn.Funcs[i].Eval(s)
}

// IsFixedPoint reports whether s is a synchronous fixed point: f_i(s) ==
// s_i for every i. Under asynchronous update fixed points are exactly the
// singleton attractors.
func (bn *BooleanNetwork) IsFixedPoint(s State) bool {
	for i, f := range bn.Funcs {
		if f.Eval(s) != s.Get(i) {
			return false
		}
	}
	return true
}

// EnabledUpdates returns the ids of variables whose update function
// disagrees with the current value in s — the set of asynchronously
// enabled transitions out of s.
func (bn *BooleanNetwork) EnabledUpdates(s State) []int {
	var enabled []int
	for i, f := range bn.Funcs {
		if f.Eval(s) != s.Get(i) {
			enabled = append(enabled, i)
		}
	}
	return enabled
}

// AsyncSuccessor returns the state reached by firing the single update of
// variable i in s (s itself is left unmodified).
func (bn *BooleanNetwork) AsyncSuccessor(s State, i int) State {
	out := s.Clone()
	out.Set(i, bn.Funcs[i].Eval(s))
	return out
}

// AsyncSuccessors returns one successor state per currently enabled
// update, in variable-id order.
func (bn *BooleanNetwork) AsyncSuccessors(s State) []State {
	enabled := bn.EnabledUpdates(s)
	out := make([]State, len(enabled))
	for k, i := range enabled {
		out[k] = bn.AsyncSuccessor(s, i)
	}
	return out
}
