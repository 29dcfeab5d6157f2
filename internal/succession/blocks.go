package succession

import (
	"sort"

	"github.com/sdlab/succd/pkg/model"
)

// computeBlocks partitions free into the weakly-connected components of
// the signed influence graph induced on free — sub-problems that share
// no edge with one another — sorted ascending by size so the smallest
// blocks sort first.
func computeBlocks(g *model.InfluenceGraph, free []int) [][]int {
	if len(free) == 0 {
		return nil
	}
	inFree := make(map[int]bool, len(free))
	for _, v := range free {
		inFree[v] = true
	}

	parent := make(map[int]int, len(free))
	for _, v := range free {
		parent[v] = v
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for _, e := range g.Edges {
		if inFree[e.From] && inFree[e.To] {
			union(e.From, e.To)
		}
	}

	groups := make(map[int][]int)
	for _, v := range free {
		r := find(v)
		groups[r] = append(groups[r], v)
	}
	blocks := make([][]int, 0, len(groups))
	for _, members := range groups {
		sort.Ints(members)
		blocks = append(blocks, members)
	}
	sort.Slice(blocks, func(i, j int) bool {
		if len(blocks[i]) != len(blocks[j]) {
			return len(blocks[i]) < len(blocks[j])
		}
		return blocks[i][0] < blocks[j][0]
	})
	return blocks
}
