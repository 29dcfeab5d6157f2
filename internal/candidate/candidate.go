// Package candidate constructs the NFVS-derived retained set and
// enumerates attractor-candidate states within a diagram node's space.
//
// The candidate set could equally be produced by the trap-space oracle
// in fix mode on a net with the NFVS values pinned, but for an NFVS of
// size O(log n) — typical of sparse biological networks — the remaining
// free variables can still number in the hundreds, well past the
// oracle's brute-force budget (internal/oracle's defaultMaxFreeVars).
// This package instead asks the symbolic kernel to build the candidate
// set as one BDD — conjoining the space, the retained-set fixings, and
// "f_j ⇔ x_j" for every j outside the NFVS — and enumerates satisfying
// states from that BDD up to the configured cap. Same set, different
// realization, chosen for scalability.
package candidate

import (
	"math/rand"
	"sort"

	"github.com/sdlab/succd/internal/symbolic"
	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
)

// maxRetainedProbeVars bounds the brute-force majority-vote count used to
// build the retained set, mirroring model.maxMonotonicityProbe.
const maxRetainedProbeVars = 20

// RetainedSet is an assignment of NFVS variables used to bias candidate
// generation toward majority-outcome fixed points.
type RetainedSet map[int]bool

// BuildRetainedSet constructs R for the NFVS variables in n, restricted
// to space sp: for each i, the majority value of f_i over the
// completions of sp consistent with i's dependency set, with a
// seeded-random tie-break.
func BuildRetainedSet(bn *model.BooleanNetwork, sp *model.Space, n []int, rng *rand.Rand) RetainedSet {
	r := make(RetainedSet, len(n))
	for _, i := range n {
		r[i] = majorityValue(bn, sp, i, rng)
	}
	return r
}

func majorityValue(bn *model.BooleanNetwork, sp *model.Space, i int, rng *rand.Rand) bool {
	f := bn.Funcs[i]
	deps := bn.Deps[i]

	var free []int
	for _, d := range deps {
		if _, fixed := sp.IsFixed(d); !fixed {
			free = append(free, d)
		}
	}
	if len(free) > maxRetainedProbeVars {
		return rng.Intn(2) == 1
	}

	maxID := i
	for _, d := range deps {
		if d > maxID {
			maxID = d
		}
	}
	assignment := make([]uint8, maxID+1)
	for _, d := range deps {
		if v, fixed := sp.IsFixed(d); fixed {
			if v {
				assignment[d] = 1
			}
		}
	}

	countTrue, countFalse := 0, 0
	total := 1 << uint(len(free))
	for mask := 0; mask < total; mask++ {
		for k, d := range free {
			if mask&(1<<uint(k)) != 0 {
				assignment[d] = 1
			} else {
				assignment[d] = 0
			}
		}
		if f.Eval(assignment) {
			countTrue++
		} else {
			countFalse++
		}
	}
	switch {
	case countTrue > countFalse:
		return true
	case countFalse > countTrue:
		return false
	default:
		return rng.Intn(2) == 1
	}
}

// Result is the outcome of one candidate-generation attempt at a node.
type Result struct {
	Retained   RetainedSet
	Candidates []model.State
	// Unbounded is true when the candidate set exceeded cMax and the
	// node must be reported as over-budget so a caller can split it
	// further instead of enumerating an unbounded set.
	Unbounded bool
}

// Generate runs the retained-set optimization loop: up to samples
// resampled retained sets, keeping the one yielding the smallest
// candidate set, capped at cMax.
func Generate(k *symbolic.Kernel, funcs []symbolic.Node, bn *model.BooleanNetwork, sp *model.Space, nfvsVars []int, samples, cMax int, rng *rand.Rand) (Result, error) {
	if samples < 1 {
		samples = 1
	}
	var best *Result
	for s := 0; s < samples; s++ {
		retained := BuildRetainedSet(bn, sp, nfvsVars, rng)
		states, unbounded := enumerate(k, funcs, bn, sp, retained, cMax)
		cand := Result{Retained: retained, Candidates: states, Unbounded: unbounded}
		if best == nil || (!cand.Unbounded && (best.Unbounded || len(cand.Candidates) < len(best.Candidates))) {
			best = &cand
		}
	}
	if best.Unbounded {
		return *best, errors.BudgetExceeded("candidate set size", cMax)
	}
	return *best, nil
}

// enumerate builds the candidate-set BDD and materializes its satisfying
// states, up to cMax+1 (so the caller can distinguish "exactly cMax" from
// "more than cMax").
func enumerate(k *symbolic.Kernel, funcs []symbolic.Node, bn *model.BooleanNetwork, sp *model.Space, retained RetainedSet, cMax int) ([]model.State, bool) {
	eng := k.Engine()
	set := k.FromSpace(sp)

	ids := make([]int, 0, len(retained))
	for i := range retained {
		ids = append(ids, i)
	}
	sort.Ints(ids)
	inN := make(map[int]bool, len(ids))
	for _, i := range ids {
		inN[i] = true
		lit := eng.Ithvar(i)
		if !retained[i] {
			lit = eng.NIthvar(i)
		}
		set = eng.And(set, lit)
	}

	for j := 0; j < bn.N(); j++ {
		if inN[j] {
			continue
		}
		if _, fixed := sp.IsFixed(j); fixed {
			continue // already pinned by sp; contributes no new constraint
		}
		fixedPoint := eng.Or(eng.And(funcs[j], eng.Ithvar(j)), eng.And(eng.Not(funcs[j]), eng.NIthvar(j)))
		set = eng.And(set, fixedPoint)
	}

	var states []model.State
	k.IterateSatisfyingStates(set, cMax+1, func(s model.State) bool {
		states = append(states, s)
		return true
	})
	if len(states) > cMax {
		return states[:cMax], true
	}
	return states, false
}
