// Package control answers control queries: given a fully expanded
// succession diagram and a target minimal trap space, enumerate the
// minimal internal driver sets — variable-value assignments that, once
// percolated, push every trajectory from the root into the target.
package control

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sdlab/succd/internal/succession"
	"github.com/sdlab/succd/internal/symbolic"
	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
)

// Mode selects how many driver sets Plan reports.
type Mode int

const (
	// ModeAllMinimal returns every minimal (not a superset of another
	// returned set) internal driver set.
	ModeAllMinimal Mode = iota
	// ModeMinimumSize returns every driver set tied for the smallest
	// cardinality.
	ModeMinimumSize
	// ModeAnyMinimum stops at the first minimum-size driver set found.
	ModeAnyMinimum
)

// DriverSet is a variable-value assignment along one root-to-target path.
type DriverSet struct {
	Assignment map[int]bool
}

// Vars returns the assignment's variable ids in ascending order.
func (d DriverSet) Vars() []int {
	ids := make([]int, 0, len(d.Assignment))
	for id := range d.Assignment {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (d DriverSet) key() string {
	var b strings.Builder
	for _, id := range d.Vars() {
		b.WriteString(strconv.Itoa(id))
		if d.Assignment[id] {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		b.WriteByte(';')
	}
	return b.String()
}

// subset reports whether d's assignment is contained in other's.
func (d DriverSet) subset(other DriverSet) bool {
	if len(d.Assignment) > len(other.Assignment) {
		return false
	}
	for id, v := range d.Assignment {
		if ov, ok := other.Assignment[id]; !ok || ov != v {
			return false
		}
	}
	return true
}

// lessRank orders two driver sets: smaller size first, ties broken by
// lexicographic order of fixed variable ids.
func lessRank(a, b DriverSet) bool {
	if len(a.Assignment) != len(b.Assignment) {
		return len(a.Assignment) < len(b.Assignment)
	}
	av, bv := a.Vars(), b.Vars()
	for i := 0; i < len(av) && i < len(bv); i++ {
		if av[i] != bv[i] {
			return av[i] < bv[i]
		}
	}
	return len(av) < len(bv)
}

// maxEdgeSearch bounds the subset-search edgeDriver performs to
// find a minimal single-edge driver before falling back to "every
// newly-fixed variable" — mirrors the brute-force caps used throughout
// the oracle and candidate packages.
const maxEdgeSearch = 12

// edgeDriver returns a minimal subset of the variables child fixes
// beyond parent such that percolating parent plus that subset lands
// inside child's space.
func edgeDriver(kernel *symbolic.Kernel, funcs []symbolic.Node, parent, child *model.Space) map[int]bool {
	parentFixed := make(map[int]bool)
	for _, id := range parent.FixedVars() {
		v, _ := parent.IsFixed(id)
		parentFixed[id] = v
	}
	var newVars []int
	for _, id := range child.FixedVars() {
		if _, ok := parentFixed[id]; !ok {
			newVars = append(newVars, id)
		}
	}
	if len(newVars) == 0 {
		return nil
	}
	if len(newVars) <= maxEdgeSearch {
		for size := 1; size < len(newVars); size++ {
			if found := searchSubset(kernel, funcs, parent, child, newVars, size); found != nil {
				return found
			}
		}
	}
	full := make(map[int]bool, len(newVars))
	for _, id := range newVars {
		v, _ := child.IsFixed(id)
		full[id] = v
	}
	return full
}

// searchSubset enumerates every size-sized subset of vars in ascending
// order and returns the assignment of the first one whose percolation
// lands inside child; nil if none qualifies at this size.
func searchSubset(kernel *symbolic.Kernel, funcs []symbolic.Node, parent, child *model.Space, vars []int, size int) map[int]bool {
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		assignment := make(map[int]bool, size)
		cand := parent.Clone()
		for _, i := range idx {
			v, _ := child.IsFixed(vars[i])
			assignment[vars[i]] = v
			cand.Fix(vars[i], v)
		}
		perc := kernel.Percolate(cand, funcs)
		if perc.LessOrEqual(child) {
			return assignment
		}
		if !nextCombination(idx, len(vars)) {
			return nil
		}
	}
}

func nextCombination(idx []int, n int) bool {
	k := len(idx)
	i := k - 1
	for i >= 0 && idx[i] == n-k+i {
		i--
	}
	if i < 0 {
		return false
	}
	idx[i]++
	for j := i + 1; j < k; j++ {
		idx[j] = idx[j-1] + 1
	}
	return true
}

// maxPaths bounds root-to-target path enumeration.
const maxPaths = 4096

// paths returns every root-to-target path (as node id slices) in d,
// discovered by DFS over parent links with target.ID as the sink.
func paths(d *succession.Diagram, targetID int) [][]int {
	var out [][]int
	var walk func(id int, trail []int) bool
	walk = func(id int, trail []int) bool {
		trail = append(trail, id)
		if id == d.Root().ID {
			rev := make([]int, len(trail))
			for i, v := range trail {
				rev[len(trail)-1-i] = v
			}
			out = append(out, rev)
			return len(out) < maxPaths
		}
		for _, p := range d.Node(id).ParentIDs {
			if !walk(p, trail) {
				return false
			}
		}
		return true
	}
	walk(targetID, nil)
	return out
}

// pathDriverSet unions the edge-driver of every edge on path into one
// DriverSet.
func pathDriverSet(d *succession.Diagram, kernel *symbolic.Kernel, funcs []symbolic.Node, path []int) DriverSet {
	assignment := make(map[int]bool)
	for i := 0; i+1 < len(path); i++ {
		parent := d.Node(path[i])
		child := d.Node(path[i+1])
		for id, v := range edgeDriver(kernel, funcs, parent.Space, child.Space) {
			assignment[id] = v
		}
	}
	return DriverSet{Assignment: assignment}
}

// findTargetNode locates the (unique, by canonicalization) node whose
// space equals target.
func findTargetNode(d *succession.Diagram, target *model.Space) (*succession.Node, error) {
	for _, n := range d.Nodes {
		if n.Space.Equal(target) {
			return n, nil
		}
	}
	return nil, errors.MalformedInput("target trap space is not a node of the succession diagram")
}

// Plan computes the control query: every root-to-target path's driver
// set, deduplicated and ranked, filtered according to mode.
func Plan(d *succession.Diagram, kernel *symbolic.Kernel, funcs []symbolic.Node, target *model.Space, mode Mode) ([]DriverSet, error) {
	node, err := findTargetNode(d, target)
	if err != nil {
		return nil, err
	}
	if node.ID == d.Root().ID {
		return []DriverSet{{Assignment: map[int]bool{}}}, nil
	}

	ps := paths(d, node.ID)
	seen := make(map[string]DriverSet)
	for _, p := range ps {
		ds := pathDriverSet(d, kernel, funcs, p)
		seen[ds.key()] = ds
		if mode == ModeAnyMinimum {
			// Fast path still needs the minimum across what's been seen
			// so far; keep scanning but stop early once a singleton
			// driver set appears (nothing can be smaller).
			if len(ds.Assignment) <= 1 {
				break
			}
		}
	}

	all := make([]DriverSet, 0, len(seen))
	for _, ds := range seen {
		all = append(all, ds)
	}
	sort.Slice(all, func(i, j int) bool { return lessRank(all[i], all[j]) })

	switch mode {
	case ModeAllMinimal:
		return minimalOnly(all), nil
	case ModeMinimumSize:
		if len(all) == 0 {
			return all, nil
		}
		minSize := len(all[0].Assignment)
		var out []DriverSet
		for _, ds := range all {
			if len(ds.Assignment) == minSize {
				out = append(out, ds)
			}
		}
		return out, nil
	default: // ModeAnyMinimum
		if len(all) == 0 {
			return all, nil
		}
		return all[:1], nil
	}
}

// minimalOnly drops any driver set that is a proper superset of another
// driver set in the list.
func minimalOnly(ranked []DriverSet) []DriverSet {
	var out []DriverSet
	for _, ds := range ranked {
		dominated := false
		for _, kept := range out {
			if kept.subset(ds) && len(kept.Assignment) < len(ds.Assignment) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, ds)
		}
	}
	return out
}
