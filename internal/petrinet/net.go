// Package petrinet is the one-shot translator from a parsed Boolean
// network into a bipartite place/transition encoding — two places per
// variable, one guarded transition per (variable, target value) pair —
// plus the per-space restriction the trap-space oracle enumerates over.
package petrinet

import (
	"github.com/sdlab/succd/pkg/model"
)

// maxGuardVars bounds the brute-force DNF extraction used to derive a
// transition's guard cubes: above this many dependencies, the guard
// collapses to "true" (no precondition filtering beyond the oracle's own
// fixings), trading precision for tractability exactly like
// model.maxMonotonicityProbe does for sign classification.
const maxGuardVars = 20

// Cube is a conjunction of literals, keyed by variable id. The empty cube
// (no literals) is the vacuous conjunction "true". A transition's Guard
// is a disjunction of cubes; a nil/empty Guard is the vacuous disjunction
// "false" (the transition can never fire).
type Cube map[int]bool

// satisfies reports whether a (indexed by variable id; a partial marking
// leaves some variables absent, meaning "free") is compatible with every
// literal of c — i.e. some completion of a's free variables could make c
// hold. An id absent from a never falsifies the cube: it is a variable
// the caller hasn't fixed yet, so it can still be set to match.
func (c Cube) satisfies(a map[int]bool) bool {
	for id, v := range c {
		if av, ok := a[id]; ok && av != v {
			return false
		}
	}
	return true
}

// Transition is t_{i,b}: firing it consumes the token at v_{i,1-b} and
// produces one at v_{i,b}, guarded by the DNF precondition of f_i = b.
type Transition struct {
	Var    int
	Value  bool
	Guard  []Cube // disjunction of cubes; an empty slice never fires, a single empty cube always may
}

// enabled reports whether t can fire in marking (a full or partial
// variable->value map): the pre-place must be set (or unknown, in a
// restricted net), and some guard cube must be satisfied.
func (t Transition) enabled(marking map[int]bool) bool {
	if pre, ok := marking[t.Var]; ok && pre == t.Value {
		return false // pre-place v_{i,1-b} already consumed / not present
	}
	for _, c := range t.Guard {
		if c.satisfies(marking) {
			return true
		}
	}
	return false
}

// Net is the Petri-net encoding of a Boolean network: two places per
// variable and one transition per (variable, target value) pair.
type Net struct {
	BN          *model.BooleanNetwork
	Transitions []Transition
	// Restriction is the enclosing space this net was restricted to, or
	// nil for the unrestricted, whole-network net.
	Restriction *model.Space
}

// Build derives the Petri-net encoding of bn. Each transition's
// guard is the set of prime-ish implicants of f_i = b, enumerated by
// brute force over f_i's dependency set; dependency sets above
// maxGuardVars degrade to an unconditional guard.
func Build(bn *model.BooleanNetwork) (*Net, error) {
	var transitions []Transition
	for i, f := range bn.Funcs {
		deps := bn.Deps[i]
		for _, b := range [2]bool{false, true} {
			guard := implicants(f, deps, b)
			transitions = append(transitions, Transition{Var: i, Value: b, Guard: guard})
		}
	}
	return &Net{BN: bn, Transitions: transitions}, nil
}

// implicants enumerates the cubes (over deps) on which f evaluates to b.
// Above maxGuardVars dependencies it conservatively returns the
// unconditional guard (a single empty cube), so trap-space checks treat
// the transition as possibly enabled rather than silently missing an
// escape.
func implicants(f model.Expr, deps []int, b bool) []Cube {
	if len(deps) > maxGuardVars {
		return []Cube{{}}
	}
	if len(deps) == 0 {
		if f.Eval(nil) == b {
			return []Cube{{}}
		}
		return nil
	}
	maxID := 0
	for _, d := range deps {
		if d > maxID {
			maxID = d
		}
	}
	assignment := make([]uint8, maxID+1)
	var cubes []Cube
	total := 1 << uint(len(deps))
	for mask := 0; mask < total; mask++ {
		cube := make(Cube, len(deps))
		for k, d := range deps {
			v := mask&(1<<uint(k)) != 0
			assignment[d] = 0
			if v {
				assignment[d] = 1
			}
			cube[d] = v
		}
		if f.Eval(assignment) == b {
			cubes = append(cubes, cube)
		}
	}
	return cubes
}

// Restrict returns the net obtained by pruning every transition whose
// firing would leave sp (i.e. that sets a fixed variable to the opposite
// of its pinned value), and treating sp's fixed variables as constant
// places. The restricted net is what the trap-space oracle
// enumerates over; it is rebuilt on every call and not cached.
func (net *Net) Restrict(sp *model.Space) *Net {
	out := &Net{BN: net.BN, Restriction: sp}
	for _, t := range net.Transitions {
		if fixedVal, fixed := sp.IsFixed(t.Var); fixed {
			if fixedVal != t.Value {
				continue // firing would leave sp
			}
		}
		out.Transitions = append(out.Transitions, t)
	}
	return out
}

// IsTrapSpace reports whether sp is a trap space of net: for every
// variable sp fixes to v, the transition that would move it to ¬v must
// be unable to fire given sp's fixings, so no enabled transition leaves
// the space.
func (net *Net) IsTrapSpace(sp *model.Space) bool {
	marking := make(map[int]bool, len(sp.FixedVars()))
	for _, id := range sp.FixedVars() {
		v, _ := sp.IsFixed(id)
		marking[id] = v
	}
	for _, t := range net.Transitions {
		v, fixed := sp.IsFixed(t.Var)
		if !fixed || v == t.Value {
			continue
		}
		if t.enabled(marking) {
			return false
		}
	}
	return true
}

// FreeVars returns the variable ids not fixed by the net's restriction
// (all variables, if the net is unrestricted).
func (net *Net) FreeVars() []int {
	if net.Restriction == nil {
		out := make([]int, net.BN.N())
		for i := range out {
			out[i] = i
		}
		return out
	}
	return net.Restriction.FreeVars()
}
