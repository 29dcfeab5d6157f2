package succession

import (
	"github.com/sdlab/succd/internal/oracle"
	"github.com/sdlab/succd/internal/petrinet"
	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
)

// Expand runs one expansion step on node, transitioning it through
// Percolated, BlocksComputed, ChildrenRequested, and Expanded.
// Recoverable oracle errors mark the node over-budget/unknown and
// return nil so the rest of the diagram can keep expanding; only
// non-recoverable errors propagate.
func (d *Diagram) Expand(node *Node) error {
	if node.State == StateExpanded {
		return nil
	}
	if d.Limits.MaxSDNodes > 0 && len(d.Nodes) > d.Limits.MaxSDNodes {
		node.Status = StatusOverBudget
		return nil
	}

	// 1. Percolate (idempotent if already done at registration time),
	// then restrict the Petri net to the percolated space.
	node.Space = d.Kernel.Percolate(node.Space, d.Funcs)
	node.State = StatePercolated
	restricted := d.Net.Restrict(node.Space)

	free := node.Space.FreeVars()
	if len(free) == 0 {
		node.ChildIDs = []int{}
		node.State = StateExpanded
		return nil
	}

	if d.Strategy == StrategyMinimalOnly {
		return d.expandMinimalOnly(node, restricted, free)
	}

	// 2. Block decomposition (only for the Block strategy; other
	// strategies search the whole free-variable set as one block).
	blocks := computeBlocks(d.Influence, free)
	node.State = StateBlocksComputed

	block := free
	if d.Strategy == StrategyBlock && len(blocks) > 0 {
		block = blocks[0]
	}
	node.Block = block
	node.State = StateChildrenRequested

	// 3. Oracle kind=max, within=node.Space, projected to block.
	limit := 0
	if d.Limits.MaxSDNodes > 0 {
		limit = d.Limits.MaxSDNodes
	}
	results, err := oracle.Enumerate(restricted, node.Space, block, oracle.KindMax, limit)
	if err != nil {
		return d.handleOracleError(node, err)
	}

	candidates := d.percolateChildren(node, results)
	if d.Strategy == StrategyTarget {
		candidates = filterTargetChildren(candidates, d.Target)
	}
	for _, c := range candidates {
		d.register(c, node)
	}
	if node.ChildIDs == nil {
		node.ChildIDs = []int{}
	}
	node.State = StateExpanded
	return nil
}

// expandMinimalOnly realizes the minimal-only strategy: one oracle call
// in KindMin mode over the whole free-variable set returns the minimal
// trap spaces directly, with no intermediate diagram layers.
func (d *Diagram) expandMinimalOnly(node *Node, net *petrinet.Net, free []int) error {
	limit := 0
	if d.Limits.MaxSDNodes > 0 {
		limit = d.Limits.MaxSDNodes
	}
	results, err := oracle.Enumerate(net, node.Space, free, oracle.KindMin, limit)
	if err != nil {
		return d.handleOracleError(node, err)
	}
	node.Block = free
	node.State = StateChildrenRequested
	for _, t := range results {
		tp := d.Kernel.Percolate(t, d.Funcs)
		if tp.Equal(node.Space) {
			continue
		}
		child := d.register(tp, node)
		child.ChildIDs = []int{}
		child.State = StateExpanded
	}
	if node.ChildIDs == nil {
		node.ChildIDs = []int{}
	}
	node.State = StateExpanded
	return nil
}

// percolateChildren percolates every extension the oracle returned,
// discarding the ones that make no progress.
func (d *Diagram) percolateChildren(node *Node, results []*model.Space) []*model.Space {
	var out []*model.Space
	for _, t := range results {
		tp := d.Kernel.Percolate(t, d.Funcs)
		if tp.Equal(node.Space) {
			continue
		}
		out = append(out, tp)
	}
	return out
}

// filterTargetChildren realizes strategy 4's "one sibling per expansion
// for control": keep every child compatible with target (on a path to
// M*) plus exactly one incompatible sibling, so the control planner can
// still see an alternative branch without materializing the whole layer.
func filterTargetChildren(children []*model.Space, target *model.Space) []*model.Space {
	if target == nil {
		return children
	}
	var out []*model.Space
	keptSibling := false
	for _, c := range children {
		if target.Compatible(c) {
			out = append(out, c)
		} else if !keptSibling {
			out = append(out, c)
			keptSibling = true
		}
	}
	if len(out) == 0 {
		return children
	}
	return out
}

func (d *Diagram) handleOracleError(node *Node, err error) error {
	if errors.IsRecoverable(err) {
		switch errors.GetErrorCode(err) {
		case errors.CodeOracleFailure, errors.CodeTimeout:
			node.Status = StatusUnknown
		default:
			node.Status = StatusOverBudget
		}
		node.Err = err
		return nil
	}
	return err
}
