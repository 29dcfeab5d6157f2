// Package oracle is the trap-space oracle: given a restricted Petri net
// and an enclosing space, it enumerates minimal, maximal, or fixed-point
// trap sub-spaces.
//
// The answer-set/SAT solver such an oracle is usually backed by sits
// behind this package's boundary; here an internal backtracking search
// plays the solver's role, using the same trail-and-backtrack
// discipline a miniKanren-style relational solver uses (try a value,
// recurse, undo on failure) rather than a bespoke ad hoc walk.
package oracle

import (
	"sort"

	"github.com/sdlab/succd/internal/petrinet"
	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
)

// Kind selects which family of trap sub-spaces Enumerate searches for.
type Kind int

const (
	// KindFix enumerates fixed points: every requested variable is
	// pinned, and the result is a trap space (equivalently, a state
	// fixed under the restricted network).
	KindFix Kind = iota
	// KindMax enumerates the maximal proper trap sub-spaces of within —
	// the succession diagram's next expansion layer,
	// left unpercolated for the caller to percolate and filter. A
	// maximal trap sub-space can require several variables fixed at
	// once (a coupled pair may admit {A=1,B=1} as a trap while neither
	// {A=1} nor {B=1} is one), so the search runs over the whole
	// free/0/1 lattice of the requested variables, not single fixings.
	KindMax
	// KindMin enumerates the minimal trap sub-spaces of within: trap
	// spaces with no strictly smaller trap space below them over the
	// requested variables.
	KindMin
)

// defaultMaxFreeVars bounds the brute-force lattice search (2^k for
// KindFix, 3^k for KindMax/KindMin); beyond it Enumerate reports a
// recoverable budget error so the caller can narrow the request (e.g.
// via block decomposition) rather than spin.
const defaultMaxFreeVars = 24

// Enumerate returns (as a materialized, capped slice — finite and
// non-restartable) trap sub-spaces of within, searching over the
// variables in freeVars (all of within's free variables, if freeVars is
// nil). limit<=0 means unbounded.
//
// Tie-break on equally valid results follows freeVars' order ascending
// by id.
func Enumerate(net *petrinet.Net, within *model.Space, freeVars []int, kind Kind, limit int) ([]*model.Space, error) {
	if freeVars == nil {
		freeVars = within.FreeVars()
	} else {
		freeVars = append([]int(nil), freeVars...)
	}
	sort.Ints(freeVars)

	switch kind {
	case KindMax, KindMin, KindFix:
	default:
		return nil, errors.MalformedInput("unknown trap-space oracle kind")
	}
	if len(freeVars) > defaultMaxFreeVars {
		return nil, errors.BudgetExceeded("trap-space oracle free-variable count", defaultMaxFreeVars)
	}
	switch kind {
	case KindFix:
		return enumerateFix(net, within, freeVars, limit), nil
	case KindMax:
		return enumerateMax(net, within, freeVars, limit), nil
	default:
		return enumerateMin(net, within, freeVars, limit), nil
	}
}

// enumerateAll walks the free/0/1 lattice over freeVars and collects
// every extension of within that is a valid trap space of net, including
// within itself when it is one. Recursion visits each variable
// free-first then 0 then 1, so the output order is deterministic and
// fewer-fixings-first along each branch; ties resolve by ascending
// variable id.
func enumerateAll(net *petrinet.Net, within *model.Space, freeVars []int) []*model.Space {
	var out []*model.Space
	cur := within.Clone()
	n := len(freeVars)
	var rec func(idx int)
	rec = func(idx int) {
		if idx == n {
			if net.IsTrapSpace(cur) {
				out = append(out, cur.Clone())
			}
			return
		}
		v := freeVars[idx]
		rec(idx + 1)
		cur.Fix(v, false)
		rec(idx + 1)
		cur.Fix(v, true)
		rec(idx + 1)
		cur.Free(v)
	}
	rec(0)
	return out
}

// enumerateMax keeps the ⊑-maximal proper trap sub-spaces of within:
// every trap space strictly below within over freeVars that is not
// itself strictly below another such space. Returning only valid trap
// spaces here is what keeps every diagram edge closed under the
// network's transitions.
func enumerateMax(net *petrinet.Net, within *model.Space, freeVars []int, limit int) []*model.Space {
	all := enumerateAll(net, within, freeVars)
	proper := all[:0]
	for _, t := range all {
		if !t.Equal(within) {
			proper = append(proper, t)
		}
	}
	var out []*model.Space
	for _, t := range proper {
		maximal := true
		for _, u := range proper {
			if u != t && t.LessOrEqual(u) && !u.Equal(t) {
				maximal = false
				break
			}
		}
		if maximal {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// enumerateFix brute-forces every full assignment of freeVars, keeping
// those that form a trap space (equivalently: a fixed point) of net.
func enumerateFix(net *petrinet.Net, within *model.Space, freeVars []int, limit int) []*model.Space {
	var out []*model.Space
	cur := within.Clone()
	n := len(freeVars)
	var rec func(idx int) bool
	rec = func(idx int) bool {
		if limit > 0 && len(out) >= limit {
			return false
		}
		if idx == n {
			if net.IsTrapSpace(cur) {
				out = append(out, cur.Clone())
			}
			return true
		}
		v := freeVars[idx]
		for _, val := range [2]bool{false, true} {
			cur.Fix(v, val)
			cont := rec(idx + 1)
			cur.Free(v)
			if !cont {
				return false
			}
		}
		return true
	}
	rec(0)
	return out
}

// enumerateMin keeps the ⊑-minimal trap sub-spaces of within: trap
// spaces (within included, when it is one) with no other trap space over
// freeVars strictly below them.
func enumerateMin(net *petrinet.Net, within *model.Space, freeVars []int, limit int) []*model.Space {
	all := enumerateAll(net, within, freeVars)
	var out []*model.Space
	for _, t := range all {
		minimal := true
		for _, u := range all {
			if u != t && u.LessOrEqual(t) && !u.Equal(t) {
				minimal = false
				break
			}
		}
		if minimal {
			out = append(out, t)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}
