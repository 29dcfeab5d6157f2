package nfvs

import (
	core "github.com/katalvlaran/lvlath/graph/core"

	"github.com/sdlab/succd/pkg/collections"
)

// tarjanSCC returns the strongly connected components of g, each as a
// slice of vertex ids, in the order Tarjan's algorithm discovers them.
func tarjanSCC(g *core.Graph) [][]string {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	stack := collections.NewStack[string](16)
	var sccs [][]string

	var verts []string
	for _, v := range g.Vertices() {
		verts = append(verts, v.ID)
	}

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack.Push(v)
		onStack[v] = true

		for _, w := range g.Neighbors(v) {
			if _, seen := indices[w.ID]; !seen {
				strongconnect(w.ID)
				if lowlink[w.ID] < lowlink[v] {
					lowlink[v] = lowlink[w.ID]
				}
			} else if onStack[w.ID] {
				if indices[w.ID] < lowlink[v] {
					lowlink[v] = indices[w.ID]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var comp []string
			for {
				w, _ := stack.Pop()
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, comp)
		}
	}

	for _, v := range verts {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}
	return sccs
}
