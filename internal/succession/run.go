package succession

import (
	"strconv"

	"github.com/katalvlaran/lvlath/graph/algorithms"
	core "github.com/katalvlaran/lvlath/graph/core"

	"github.com/sdlab/succd/pkg/errors"
)

// Run drives the diagram's expansion to completion (or until a resource
// limit/non-recoverable error stops it) according to Strategy.
func (d *Diagram) Run() error {
	var err error
	switch d.Strategy {
	case StrategyDFS:
		err = d.runDFS()
	case StrategyMinimalOnly:
		err = d.Expand(d.Root())
	case StrategyTarget:
		err = d.runTarget()
	default: // StrategyBFS, StrategyBlock
		err = d.runBFS()
	}
	if err != nil {
		return err
	}
	d.normalize()
	return nil
}

// runBFS drives the breadth-first full expansion with lvlath's own
// algorithms.BFS over d.graph, the same core.Graph mirror register/
// wireEdge maintain. BFS's walker queries graph.Neighbors(id) lazily,
// right after OnVisit returns (graph/algorithms/bfs.go), so the vertices
// and edges wireEdge adds while OnVisit's call to d.Expand runs are
// already present by the time the walker asks for this node's
// neighbors — the graph does not need to exist up front, only at each
// node's own visit.
func (d *Diagram) runBFS() error {
	_, err := algorithms.BFS(d.graph, vid(d.Root().ID), &algorithms.BFSOptions{OnVisit: d.expandOnVisit})
	return err
}

// runDFS is runBFS's depth-first counterpart,
// relying on the same lazy-neighbor-query property in graph/algorithms/
// dfs.go's recursive walk.
func (d *Diagram) runDFS() error {
	_, err := algorithms.DFS(d.graph, vid(d.Root().ID), &algorithms.DFSOptions{OnVisit: d.expandOnVisit})
	return err
}

// expandOnVisit is the OnVisit hook shared by runBFS/runDFS: expand the
// visited node unless an earlier step already expanded it or marked it
// over-budget/unknown. BFS/DFS each visit a vertex at most once, so this
// runs exactly once per node even though a node may be some other node's
// child more than once in the DAG.
func (d *Diagram) expandOnVisit(v *core.Vertex, _ int) error {
	node, err := d.nodeOf(v)
	if err != nil {
		return err
	}
	if node.State == StateExpanded || node.Status != StatusOK {
		return nil
	}
	return d.Expand(node)
}

// runTarget expands only nodes whose space still contains the target,
// walking the same growing graph breadth-first.
func (d *Diagram) runTarget() error {
	if d.Target == nil {
		return errors.MalformedInput("target-driven expansion requires a target space")
	}
	_, err := algorithms.BFS(d.graph, vid(d.Root().ID), &algorithms.BFSOptions{
		OnVisit: func(v *core.Vertex, depth int) error {
			node, err := d.nodeOf(v)
			if err != nil {
				return err
			}
			if node.State == StateExpanded || node.Status != StatusOK {
				return nil
			}
			if !d.Target.LessOrEqual(node.Space) {
				return nil
			}
			return d.Expand(node)
		},
	})
	return err
}

func (d *Diagram) nodeOf(v *core.Vertex) (*Node, error) {
	id, err := strconv.Atoi(v.ID)
	if err != nil {
		return nil, errors.MalformedInput("non-numeric node id in diagram graph: " + v.ID)
	}
	return d.Nodes[id], nil
}
