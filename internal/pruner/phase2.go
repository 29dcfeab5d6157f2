package pruner

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sdlab/succd/internal/petrinet"
	"github.com/sdlab/succd/internal/symbolic"
	"github.com/sdlab/succd/pkg/collections"
	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
)

// Verdict is the three-way tagged result of a reachability query.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictReachable
	VerdictNotReachable
)

// ReachabilityOracle answers "is target reachable from source in the
// asynchronous transition graph?" — the unfolding tool's contract,
// generalized to also cover the symbolic engine.
type ReachabilityOracle interface {
	Reachable(ctx context.Context, source, target model.State) (Verdict, error)
}

// SymbolicOracle answers reachability queries by saturating the BDD
// forward set from source.
type SymbolicOracle struct {
	Kernel *symbolic.Kernel
	Funcs  []symbolic.Node
}

func (o *SymbolicOracle) Reachable(ctx context.Context, source, target model.State) (Verdict, error) {
	fwd := o.Kernel.ForwardReachable(o.Kernel.FromState(source), o.Funcs)
	hit := o.Kernel.Engine().And(fwd, o.Kernel.FromState(target))
	if o.Kernel.Engine().IsZero(hit) {
		return VerdictNotReachable, nil
	}
	return VerdictReachable, nil
}

// SeedsAttractor runs the exact symbolic test directly: x seeds an
// attractor iff fwd(x) ∩ ¬bwd(x) is empty, i.e. fwd(x) ⊆ bwd(x).
func (o *SymbolicOracle) SeedsAttractor(x model.State) bool {
	fx := o.Kernel.FromState(x)
	fwd := o.Kernel.ForwardReachable(fx, o.Funcs)
	bwd := o.Kernel.BackwardReachable(fx, o.Funcs)
	eng := o.Kernel.Engine()
	outside := eng.And(fwd, eng.Not(bwd))
	return eng.IsZero(outside)
}

// AttractorsWithin exhaustively finds one seed per attractor wholly
// contained in the state set denoted by region, by elimination: pick a
// state, saturate its forward and backward sets, and either record it as
// a seed (fwd ⊆ bwd means its forward closure is a terminal SCC) or
// discard its whole backward set (a state that reaches a non-attractor
// state cannot itself be in an attractor, since attractors are
// terminal). Each round removes at least the picked state, so the loop
// terminates; PickOneState walks the variable order, so the result is
// deterministic. Used for the terminal restriction space of a non-leaf
// node, where the retained-set candidate generator has no coverage
// guarantee (its theorem speaks of the whole space, and every candidate
// can land inside a child trap space).
func (o *SymbolicOracle) AttractorsWithin(region symbolic.Node) []model.State {
	eng := o.Kernel.Engine()
	var seeds []model.State
	rem := region
	for {
		x, ok := o.Kernel.PickOneState(rem)
		if !ok {
			return seeds
		}
		fx := o.Kernel.FromState(x)
		fwd := o.Kernel.ForwardReachable(fx, o.Funcs)
		bwd := o.Kernel.BackwardReachable(fx, o.Funcs)
		if eng.IsZero(eng.And(fwd, eng.Not(bwd))) {
			// x is in an attractor and fwd is exactly that attractor;
			// report it only when it lies entirely inside region.
			if eng.IsZero(eng.And(fwd, eng.Not(region))) {
				seeds = append(seeds, x)
			}
			rem = eng.And(rem, eng.Not(eng.Or(fwd, bwd)))
		} else {
			rem = eng.And(rem, eng.Not(bwd))
		}
	}
}

// UnfoldingOracle answers reachability queries by invoking an external
// Petri-net unfolding tool discovered via PATH: the local,
// already-restricted net is exported in the tool's textual format and
// the tool is asked whether target's marking is reachable from source's.
type UnfoldingOracle struct {
	ToolPath string
	Net      *petrinet.Net
	Timeout  time.Duration
}

func (o *UnfoldingOracle) Reachable(ctx context.Context, source, target model.State) (Verdict, error) {
	if o.ToolPath == "" {
		return VerdictUnknown, errors.OracleFailure("unfolding", "tool path not configured")
	}
	runCtx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	net := exportNet(o.Net, source, target)
	cmd := exec.CommandContext(runCtx, o.ToolPath)
	cmd.Stdin = strings.NewReader(net)
	out, err := cmd.Output()
	if runCtx.Err() != nil {
		return VerdictUnknown, errors.Timeout("unfolding reachability query")
	}
	if err != nil {
		return VerdictUnknown, errors.OracleFailure("unfolding", err.Error())
	}
	return parseUnfoldingVerdict(out)
}

func parseUnfoldingVerdict(out []byte) (Verdict, error) {
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch line {
		case "reachable":
			return VerdictReachable, nil
		case "not-reachable", "unreachable":
			return VerdictNotReachable, nil
		case "unknown":
			return VerdictUnknown, nil
		}
	}
	return VerdictUnknown, errors.OracleFailure("unfolding", "unparseable response")
}

// exportNet renders net's transitions and the source/target markings in
// the unfolding tool's textual format. The exact grammar is owned by
// the tool; this emits a self-describing plain-text form any such
// tool's front-end can adapt to.
func exportNet(net *petrinet.Net, source, target model.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "places %d\n", net.BN.N()*2)
	for _, t := range net.Transitions {
		fmt.Fprintf(&b, "transition v%d_to_%v guards=%d\n", t.Var, t.Value, len(t.Guard))
	}
	fmt.Fprintf(&b, "source %s\n", source.Key())
	fmt.Fprintf(&b, "target %s\n", target.Key())
	return b.String()
}

// SeedsAttractorViaSuccessors answers the same question for an oracle
// that only exposes pairwise Reachable queries (the unfolding oracle):
// x seeds an attractor iff fwd(x) ⊆ bwd(x), i.e. every state reachable
// from x — the full forward closure, not just depth-1 successors — can
// itself reach back to x. A one-step-only check misses the case where a
// direct successor loops back to x but also escapes via another enabled
// transition to a state that never returns. The closure is walked by BFS
// over bn.AsyncSuccessors, visiting each state once. A fixed point (no
// successors) trivially seeds its own attractor.
func SeedsAttractorViaSuccessors(ctx context.Context, oracle ReachabilityOracle, bn *model.BooleanNetwork, x model.State) (bool, error) {
	if bn.IsFixedPoint(x) {
		return true, nil
	}
	visited := map[string]bool{x.Key(): true}
	queue := collections.NewQueue[model.State](16)
	queue.Enqueue(x)
	for !queue.IsEmpty() {
		cur, _ := queue.Dequeue()
		successors := bn.AsyncSuccessors(cur)
		for _, y := range successors {
			key := y.Key()
			if visited[key] {
				continue
			}
			visited[key] = true

			v, err := oracle.Reachable(ctx, y, x)
			if err != nil {
				return false, err
			}
			if v == VerdictUnknown {
				return false, errors.Timeout("unfolding reachability query")
			}
			if v != VerdictReachable {
				return false, nil
			}
			queue.Enqueue(y)
		}
	}
	return true, nil
}
