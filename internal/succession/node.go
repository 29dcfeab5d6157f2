package succession

import "github.com/sdlab/succd/pkg/model"

// State is the per-node expansion state machine (Fresh, Percolated,
// BlocksComputed, ChildrenRequested, Expanded). Every oracle call sits
// on a state boundary, so an interrupted expansion leaves the node
// either untouched or fully committed, never half-expanded.
type State int

const (
	StateFresh State = iota
	StatePercolated
	StateBlocksComputed
	StateChildrenRequested
	StateExpanded
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StatePercolated:
		return "percolated"
	case StateBlocksComputed:
		return "blocks_computed"
	case StateChildrenRequested:
		return "children_requested"
	case StateExpanded:
		return "expanded"
	default:
		return "unknown"
	}
}

// Status reports a node's outcome against the configured resource
// limits.
type Status int

const (
	// StatusOK is a node whose expansion (if any) completed normally.
	StatusOK Status = iota
	// StatusOverBudget marks a node where an expansion step or its
	// attractor search hit a configured resource cap; the rest of the
	// diagram carries on. The node keeps no attractor seeds, and the
	// analysis summaries do not report this status, so it reads there
	// like a node with no attractors.
	StatusOverBudget
	// StatusUnknown marks a node where an oracle returned an
	// unparseable result or timed out.
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusOverBudget:
		return "over_budget"
	case StatusUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Node is a succession-diagram node: a percolated trap space plus its
// place in the DAG and whatever attractor information pruning has
// contributed.
type Node struct {
	ID        int
	Space     *model.Space
	ParentIDs []int
	// ChildIDs is nil until expanded, else the (possibly empty) list of
	// child node ids.
	ChildIDs []int
	State    State
	Status   Status
	// Block is the free-variable block the expansion that produced
	// ChildIDs searched over (all free variables under the minimal-only
	// strategy); nil for nodes no expansion step has searched.
	Block []int
	// AttractorSeeds is populated once the node has been expanded and
	// its candidate set pruned; nil until then.
	AttractorSeeds []model.State
	// Err records the recoverable error, if any, behind a non-OK Status.
	Err error
}

func newNode(id int, sp *model.Space) *Node {
	return &Node{ID: id, Space: sp, State: StateFresh, Status: StatusOK}
}

// IsExpanded reports whether this node's children have been computed.
func (n *Node) IsExpanded() bool { return n.State == StateExpanded }

// IsMinimal reports whether this node is a minimal trap space: expanded
// with no children.
func (n *Node) IsMinimal() bool { return n.IsExpanded() && len(n.ChildIDs) == 0 }

// TerminalPredicate returns the membership test for this node's
// terminal restriction space given its already-registered children's
// spaces: states inside n.Space but outside every child.
func (n *Node) TerminalPredicate(children []*model.Space) func(model.State) bool {
	return func(s model.State) bool {
		if !n.Space.ContainsState(s) {
			return false
		}
		for _, c := range children {
			if c.ContainsState(s) {
				return false
			}
		}
		return true
	}
}
