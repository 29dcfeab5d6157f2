// Package succession builds the succession diagram: the lazily expanded
// DAG of percolated trap spaces, canonicalized by space content and
// mirrored into an lvlath graph for traversal bookkeeping.
package succession

import (
	"sort"
	"strconv"

	core "github.com/katalvlaran/lvlath/graph/core"

	"github.com/sdlab/succd/internal/petrinet"
	"github.com/sdlab/succd/internal/symbolic"
	"github.com/sdlab/succd/pkg/model"
)

// Strategy selects how far, and in what order, the diagram is expanded.
type Strategy int

const (
	StrategyBFS Strategy = iota
	StrategyDFS
	StrategyMinimalOnly
	StrategyTarget
	StrategyBlock
)

// Limits bundles the resource caps that bound a single diagram's
// expansion.
type Limits struct {
	MaxSDNodes         int
	MaxCandidates      int
	SimSteps           int
	RetainedSetSamples int
}

func vid(id int) string { return strconv.Itoa(id) }

// Diagram is the succession diagram under construction: a set of
// canonicalized Node values plus the DAG edges between them.
type Diagram struct {
	BN        *model.BooleanNetwork
	Kernel    *symbolic.Kernel
	Funcs     []symbolic.Node
	Influence *model.InfluenceGraph
	Net       *petrinet.Net

	Strategy Strategy
	Target   *model.Space
	Limits   Limits

	Nodes []*Node
	canon map[string]int
	graph *core.Graph
}

// New builds a diagram whose root is the percolation of the full space.
func New(bn *model.BooleanNetwork, kernel *symbolic.Kernel, influence *model.InfluenceGraph, net *petrinet.Net, strategy Strategy, target *model.Space, limits Limits) *Diagram {
	funcs := make([]symbolic.Node, bn.N())
	for i, f := range bn.Funcs {
		funcs[i] = kernel.Compile(f)
	}
	d := &Diagram{
		BN:        bn,
		Kernel:    kernel,
		Funcs:     funcs,
		Influence: influence,
		Net:       net,
		Strategy:  strategy,
		Target:    target,
		Limits:    limits,
		canon:     make(map[string]int),
		graph:     core.NewGraph(true, false),
	}
	root := kernel.Percolate(model.NewSpace(bn.N()), funcs)
	rootNode := d.register(root, nil)
	rootNode.State = StatePercolated
	return d
}

// register canonicalizes sp by its fixing content — one node per
// distinct space, however many expansions rediscover it — wiring an
// edge from parent if given. Returns the existing node if sp was
// already known.
func (d *Diagram) register(sp *model.Space, parent *Node) *Node {
	key := sp.String(nil)
	if id, ok := d.canon[key]; ok {
		n := d.Nodes[id]
		if parent != nil {
			d.wireEdge(parent, n)
		}
		return n
	}
	id := len(d.Nodes)
	n := newNode(id, sp)
	d.Nodes = append(d.Nodes, n)
	d.canon[key] = id
	d.graph.AddVertex(&core.Vertex{ID: vid(id)})
	if parent != nil {
		d.wireEdge(parent, n)
	}
	return n
}

func (d *Diagram) wireEdge(parent, child *Node) {
	if d.graph.HasEdge(vid(parent.ID), vid(child.ID)) {
		return
	}
	parent.ChildIDs = append(parent.ChildIDs, child.ID)
	child.ParentIDs = append(child.ParentIDs, parent.ID)
	d.graph.AddEdge(vid(parent.ID), vid(child.ID), 0)
}

// normalize renumbers nodes in breadth-first ChildIDs order from the
// root. The walkers in run.go enqueue siblings in whatever order the
// graph's adjacency map iterates, so raw registration ids can differ
// between two runs of the same configuration even though the set of
// spaces and edges cannot; ChildIDs are appended in oracle-result order
// during each parent's own expansion step, so a BFS over them is a
// run-independent total order; equal configurations yield equal ids.
func (d *Diagram) normalize() {
	remap := make([]int, len(d.Nodes))
	for i := range remap {
		remap[i] = -1
	}
	order := make([]*Node, 0, len(d.Nodes))
	queue := []int{0}
	remap[0] = 0
	order = append(order, d.Nodes[0])
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range d.Nodes[id].ChildIDs {
			if remap[c] == -1 {
				remap[c] = len(order)
				order = append(order, d.Nodes[c])
				queue = append(queue, c)
			}
		}
	}
	// Nodes unreachable via ChildIDs cannot exist (register always wires
	// the parent edge first), but keep them stable-last if they ever do.
	for id, n := range d.Nodes {
		if remap[id] == -1 {
			remap[id] = len(order)
			order = append(order, n)
		}
	}

	graph := core.NewGraph(true, false)
	canon := make(map[string]int, len(order))
	for newID, n := range order {
		n.ID = newID
		canon[n.Space.String(nil)] = newID
		graph.AddVertex(&core.Vertex{ID: vid(newID)})
	}
	for _, n := range order {
		for i, c := range n.ChildIDs {
			n.ChildIDs[i] = remap[c]
		}
		for i, p := range n.ParentIDs {
			n.ParentIDs[i] = remap[p]
		}
		sort.Ints(n.ParentIDs)
	}
	for _, n := range order {
		for _, c := range n.ChildIDs {
			graph.AddEdge(vid(n.ID), vid(c), 0)
		}
	}
	d.Nodes = order
	d.canon = canon
	d.graph = graph
}

// Root returns the diagram's root node.
func (d *Diagram) Root() *Node { return d.Nodes[0] }

// Node looks up a node by id.
func (d *Diagram) Node(id int) *Node { return d.Nodes[id] }

// ChildSpaces returns the spaces of node's already-registered children.
func (d *Diagram) ChildSpaces(node *Node) []*model.Space {
	out := make([]*model.Space, 0, len(node.ChildIDs))
	for _, id := range node.ChildIDs {
		out = append(out, d.Nodes[id].Space)
	}
	return out
}

// LeafNodes returns every fully expanded node with no children — the
// minimal trap spaces materialized so far.
func (d *Diagram) LeafNodes() []*Node {
	var out []*Node
	for _, n := range d.Nodes {
		if n.IsMinimal() {
			out = append(out, n)
		}
	}
	return out
}

// Depth returns the diagram's longest root-to-node path length, in
// edges.
func (d *Diagram) Depth() int {
	depth := make([]int, len(d.Nodes))
	best := 0
	var visit func(id int) int
	memo := make(map[int]bool)
	visit = func(id int) int {
		if memo[id] {
			return depth[id]
		}
		memo[id] = true
		node := d.Nodes[id]
		maxChild := 0
		for _, c := range node.ChildIDs {
			if cd := visit(c) + 1; cd > maxChild {
				maxChild = cd
			}
		}
		depth[id] = maxChild
		if maxChild > best {
			best = maxChild
		}
		return maxChild
	}
	visit(0)
	return best
}
