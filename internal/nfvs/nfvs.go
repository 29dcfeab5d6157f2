// Package nfvs computes a (near-)minimum negative feedback vertex set
// of a network's signed influence graph.
//
// The graph itself is represented with lvlath's core.Graph — the same
// thread-safe adjacency-list type the succession-diagram component uses
// for its DAG bookkeeping — so the two components share one graph
// representation across the module; SCC detection (Tarjan's algorithm,
// the standard way to test "does this vertex set still hit every cycle")
// is implemented directly against that type.
package nfvs

import (
	"math/rand"
	"sort"
	"strconv"

	core "github.com/katalvlaran/lvlath/graph/core"

	"github.com/sdlab/succd/pkg/model"
)

func vid(i int) string { return strconv.Itoa(i) }

// buildGraph renders g's vertex set restricted to restrict (or all of
// g.N, if restrict is nil) as a core.Graph, dropping positive self-loops
// first — they can never lie on a negative cycle.
func buildGraph(g *model.InfluenceGraph, restrict map[int]bool) *core.Graph {
	cg := core.NewGraph(true, false)
	include := func(i int) bool { return restrict == nil || restrict[i] }
	for i := 0; i < g.N; i++ {
		if include(i) {
			cg.AddVertex(&core.Vertex{ID: vid(i)})
		}
	}
	for _, e := range g.Edges {
		if !include(e.From) || !include(e.To) {
			continue
		}
		if e.From == e.To && e.Sign == model.SignPositive {
			continue
		}
		cg.AddEdge(vid(e.From), vid(e.To), 0)
	}
	return cg
}

// negativeSCCs returns, for the current graph, the set of vertices
// belonging to an SCC that contains at least one negative or dual edge
// (a necessary condition for a negative cycle to exist through it — the
// sufficient, sign-product-exact test requires enumerating simple
// cycles, which is exponential in general; this graph-level
// over-approximation is the trade-off taken here).
func negativeSCCs(cg *core.Graph, negEdgeSet map[[2]string]bool) map[string]bool {
	sccs := tarjanSCC(cg)
	bad := make(map[string]bool)
	for _, comp := range sccs {
		members := make(map[string]bool, len(comp))
		for _, v := range comp {
			members[v] = true
		}
		hasNeg := false
		if len(comp) == 1 {
			v := comp[0]
			if negEdgeSet[[2]string{v, v}] {
				hasNeg = true
			}
		} else {
			for _, v := range comp {
				for _, w := range cg.Neighbors(v) {
					if members[w.ID] && negEdgeSet[[2]string{v, w.ID}] {
						hasNeg = true
						break
					}
				}
				if hasNeg {
					break
				}
			}
		}
		if hasNeg {
			for v := range members {
				bad[v] = true
			}
		}
	}
	return bad
}

// Compute returns an approximately minimum negative feedback vertex set
// of g, restricted to the variables in restrict (or all variables, if
// restrict is nil). Deterministic for a fixed seed: iterated greedy
// hitting-set over the negative-cycle SCCs, refined by a local-search
// redundancy pass.
func Compute(g *model.InfluenceGraph, restrict []int, seed uint64) []int {
	var restrictSet map[int]bool
	if restrict != nil {
		restrictSet = make(map[int]bool, len(restrict))
		for _, i := range restrict {
			restrictSet[i] = true
		}
	}

	negEdgeSet := make(map[[2]string]bool)
	for _, e := range g.Edges {
		if e.Sign == model.SignNegative || e.Sign == model.SignDual {
			negEdgeSet[[2]string{vid(e.From), vid(e.To)}] = true
		}
	}

	rng := rand.New(rand.NewSource(int64(seed)))
	cg := buildGraph(g, restrictSet)
	removed := make(map[string]bool)

	var picked []string
	for {
		working := removeVertices(cg, removed)
		bad := negativeSCCs(working, negEdgeSet)
		if len(bad) == 0 {
			break
		}
		// Score each candidate vertex by its in+out degree in the
		// remaining graph (a cheap proxy for "appears on many negative cycles");
		// break ties by a seeded random permutation so repeated runs
		// with the same seed pick the same vertex.
		candidates := make([]string, 0, len(bad))
		for v := range bad {
			candidates = append(candidates, v)
		}
		sort.Strings(candidates)
		rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })

		best := candidates[0]
		bestScore := -1
		for _, v := range candidates {
			score := len(working.Neighbors(v))
			for _, w := range working.Vertices() {
				if w.ID != v && working.HasEdge(w.ID, v) {
					score++
				}
			}
			if score > bestScore {
				bestScore = score
				best = v
			}
		}
		removed[best] = true
		picked = append(picked, best)
	}

	// Local-search redundancy pass: drop any picked vertex whose removal
	// from the final set still leaves every negative SCC hit.
	pruned := pruneRedundant(cg, picked, negEdgeSet)

	out := make([]int, len(pruned))
	for k, v := range pruned {
		n, _ := strconv.Atoi(v)
		out[k] = n
	}
	sort.Ints(out)
	return out
}

func removeVertices(cg *core.Graph, removed map[string]bool) *core.Graph {
	out := core.NewGraph(true, false)
	for _, v := range cg.Vertices() {
		if !removed[v.ID] {
			out.AddVertex(&core.Vertex{ID: v.ID})
		}
	}
	for _, e := range cg.Edges() {
		if removed[e.From.ID] || removed[e.To.ID] {
			continue
		}
		out.AddEdge(e.From.ID, e.To.ID, 0)
	}
	return out
}

func pruneRedundant(cg *core.Graph, picked []string, negEdgeSet map[[2]string]bool) []string {
	keep := make(map[string]bool, len(picked))
	for _, v := range picked {
		keep[v] = true
	}
	for _, v := range picked {
		delete(keep, v)
		// Test whether dropping v from the selection still hits every
		// negative SCC with just the remaining kept vertices removed.
		trialRemoved := make(map[string]bool)
		for k := range keep {
			trialRemoved[k] = true
		}
		working := removeVertices(cg, trialRemoved)
		if len(negativeSCCs(working, negEdgeSet)) > 0 {
			keep[v] = true // v is still needed
		}
	}
	out := make([]string, 0, len(keep))
	for v := range keep {
		out = append(out, v)
	}
	return out
}
