// Package analysis wires the whole pipeline behind a single entry
// point: build a network's succession diagram, identify the attractors
// inside each node, and answer control queries against the result.
package analysis

import (
	"context"
	"math/rand"
	"time"

	"github.com/sdlab/succd/internal/candidate"
	"github.com/sdlab/succd/internal/control"
	"github.com/sdlab/succd/internal/nfvs"
	"github.com/sdlab/succd/internal/petrinet"
	"github.com/sdlab/succd/internal/pruner"
	"github.com/sdlab/succd/internal/succession"
	"github.com/sdlab/succd/internal/symbolic"
	"github.com/sdlab/succd/pkg/config"
	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
	"github.com/sdlab/succd/pkg/parallel"
	"github.com/sdlab/succd/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("succd/analysis")

// Analysis is a single run's shared, read-only context — the BDD
// variable ordering and Petri-net encoding are constructed once and
// never mutated afterward — plus the diagram it produced.
type Analysis struct {
	BN        *model.BooleanNetwork
	Kernel    *symbolic.Kernel
	Funcs     []symbolic.Node
	Influence *model.InfluenceGraph
	Net       *petrinet.Net
	Diagram   *succession.Diagram
	Cfg       *config.Config

	// Timer records the wall-clock cost of each pipeline stage;
	// disabled outside Cfg.Debug so a stock run pays no bookkeeping cost.
	Timer *utils.Timer

	symOracle *pruner.SymbolicOracle
	pool      *pruner.Pool
}

// Run builds the Petri-net encoding, the signed influence graph, and the
// succession diagram for bn under cfg, then identifies attractors at
// every node reached by the diagram's expansion strategy.
func Run(ctx context.Context, bn *model.BooleanNetwork, eng symbolic.Engine, cfg *config.Config) (*Analysis, error) {
	ctx, span := tracer.Start(ctx, "analysis.Run")
	defer span.End()

	timer := utils.NewTimer("analysis", utils.WithEnabled(cfg.Debug))

	var net *petrinet.Net
	if _, err := timer.TimeFuncWithError("petrinet.build", func() error {
		var err error
		net, err = petrinet.Build(bn)
		return err
	}); err != nil {
		return nil, err
	}

	pt := timer.Start("influence.build")
	influence := model.BuildInfluenceGraph(bn)
	pt.Stop()

	kernel := symbolic.NewKernel(eng, bn.N())

	strategy, target, err := resolveStrategy(cfg, bn.Vars)
	if err != nil {
		return nil, err
	}
	limits := succession.Limits{
		MaxSDNodes:         cfg.Limits.MaxSDNodes,
		MaxCandidates:      cfg.Limits.MaxCandidates,
		SimSteps:           cfg.Limits.SimulationSteps,
		RetainedSetSamples: cfg.Limits.RetainedSetSamples,
	}
	diagram := succession.New(bn, kernel, influence, net, strategy, target, limits)
	if _, err := timer.TimeFuncWithError("diagram.expand", func() error {
		return diagram.Run()
	}); err != nil {
		return nil, err
	}

	a := &Analysis{
		BN:        bn,
		Kernel:    kernel,
		Funcs:     diagram.Funcs,
		Influence: influence,
		Net:       net,
		Diagram:   diagram,
		Cfg:       cfg,
		Timer:     timer,
		symOracle: &pruner.SymbolicOracle{Kernel: kernel, Funcs: diagram.Funcs},
		pool:      pruner.NewPool(parallel.DefaultPoolConfig()),
	}
	if _, err := timer.TimeFuncWithError("attractors.identify", func() error {
		return a.identifyAttractors(ctx)
	}); err != nil {
		return nil, err
	}
	return a, nil
}

func resolveStrategy(cfg *config.Config, vars *model.VariableSet) (succession.Strategy, *model.Space, error) {
	switch cfg.Expansion.Kind {
	case config.ExpansionDFS:
		return succession.StrategyDFS, nil, nil
	case config.ExpansionMinimal:
		return succession.StrategyMinimalOnly, nil, nil
	case config.ExpansionBlock:
		return succession.StrategyBlock, nil, nil
	case config.ExpansionTarget:
		sp := model.NewSpace(vars.Len())
		for name, v := range cfg.Expansion.Target {
			id, ok := vars.Lookup(name)
			if !ok {
				return 0, nil, errors.MalformedInput("target variable " + name + " is not part of the network")
			}
			sp.Fix(id, v != 0)
		}
		return succession.StrategyTarget, sp, nil
	default:
		return succession.StrategyBFS, nil, nil
	}
}

// identifyAttractors finds the attractor seeds of every expanded node of
// a.Diagram and writes them back onto its Node. Leaf (minimal trap
// space) nodes run the NFVS, candidate-generation, and pruning stages
// over their whole space. Non-leaf expanded nodes are searched only in
// the complement of their children's spaces: by the symbolic
// elimination sweep when the symbolic oracle is enabled, otherwise by
// the candidate pipeline filtered through node.TerminalPredicate. This
// way motif-avoidant attractors living inside a non-minimal trap space
// are reported at that node.
func (a *Analysis) identifyAttractors(ctx context.Context) error {
	rng := rand.New(rand.NewSource(int64(a.Cfg.RNGSeed)))
	for _, node := range a.Diagram.Nodes {
		if !node.IsExpanded() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		children := a.Diagram.ChildSpaces(node)
		var terminal func(model.State) bool
		if len(children) > 0 {
			terminal = node.TerminalPredicate(children)
		}
		if err := a.identifyAt(ctx, node, children, terminal, rng); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analysis) identifyAt(ctx context.Context, node *succession.Node, children []*model.Space, terminal func(model.State) bool, rng *rand.Rand) error {
	ctx, span := tracer.Start(ctx, "analysis.identifyAt", trace.WithAttributes(attribute.Int("succd.node_id", node.ID)))
	defer span.End()

	if terminal != nil && a.Cfg.Oracles.SymbolicReachability {
		// Non-leaf search: the retained-set theorem only promises that
		// candidates intersect every attractor of the whole space, and
		// the terminal filter below can strip exactly the candidates a
		// motif-avoidant attractor would have needed. The elimination
		// sweep over the terminal restriction space is exact and
		// deterministic, so it is authoritative whenever the symbolic
		// oracle is available.
		eng := a.Kernel.Engine()
		region := a.Kernel.FromSpace(node.Space)
		for _, c := range children {
			region = eng.And(region, eng.Not(a.Kernel.FromSpace(c)))
		}
		node.AttractorSeeds = a.symOracle.AttractorsWithin(region)
		return nil
	}

	restricted := a.Net.Restrict(node.Space)
	free := node.Space.FreeVars()
	n := nfvs.Compute(a.Influence, free, a.Cfg.RNGSeed)

	result, err := candidate.Generate(a.Kernel, a.Funcs, a.BN, node.Space, n, a.Cfg.Limits.RetainedSetSamples, a.Cfg.Limits.MaxCandidates, rng)
	if err != nil {
		if errors.IsRecoverable(err) {
			node.Status = succession.StatusOverBudget
			node.Err = err
			return nil
		}
		return err
	}
	candidates := result.Candidates
	if terminal != nil {
		// Candidate generation spans node's whole space; a non-leaf
		// search must not hand Phase 1 a candidate that already lies
		// inside a child's space, since a literal fixed point there
		// would survive Phase 1 trivially (no enabled update to check
		// the terminal restriction against) and reappear as a
		// duplicate seed of an attractor the child node already owns.
		filtered := candidates[:0]
		for _, s := range candidates {
			if terminal(s) {
				filtered = append(filtered, s)
			}
		}
		candidates = filtered
	}

	var unf *pruner.UnfoldingOracle
	if a.Cfg.Oracles.PintReachability {
		unf = &pruner.UnfoldingOracle{ToolPath: a.Cfg.Oracles.UnfoldingToolPath, Net: restricted, Timeout: 30 * time.Second}
	}
	mode := pruner.ModeSymbolic
	switch {
	case a.Cfg.Oracles.SymbolicReachability && a.Cfg.Oracles.PintReachability:
		mode = pruner.ModeBoth
	case a.Cfg.Oracles.PintReachability:
		mode = pruner.ModeUnfolding
	}

	seeds, err := pruner.Prune(ctx, a.pool, a.BN, candidates, children, a.symOracle, unf, pruner.Config{
		SimSteps: a.Cfg.Limits.SimulationSteps,
		Seed:     a.Cfg.RNGSeed,
		Terminal: terminal,
		Mode:     mode,
	})
	if err != nil {
		if errors.IsRecoverable(err) {
			node.Status = succession.StatusUnknown
			node.Err = err
			return nil
		}
		return err
	}
	node.AttractorSeeds = seeds
	return nil
}

// Summary is the shape of a finished run: node count, depth, node
// ordering, and the attractor count per node.
type Summary struct {
	NNodes           int
	Depth            int
	NodeOrdering     []int
	AttractorsByNode map[int]int
}

// Summary returns the diagram's shape plus an attractor count per node.
func (a *Analysis) Summary() Summary {
	ordering := make([]int, len(a.Diagram.Nodes))
	counts := make(map[int]int)
	for i, n := range a.Diagram.Nodes {
		ordering[i] = n.ID
		if len(n.AttractorSeeds) > 0 {
			counts[n.ID] = len(n.AttractorSeeds)
		}
	}
	return Summary{
		NNodes:           len(a.Diagram.Nodes),
		Depth:            a.Diagram.Depth(),
		NodeOrdering:     ordering,
		AttractorsByNode: counts,
	}
}

// ExpandedAttractorSeeds returns one representative state per attractor,
// keyed by the node whose space is that attractor's minimal trap space.
func (a *Analysis) ExpandedAttractorSeeds() map[int][]model.State {
	out := make(map[int][]model.State)
	for _, n := range a.Diagram.Nodes {
		if len(n.AttractorSeeds) > 0 {
			out[n.ID] = n.AttractorSeeds
		}
	}
	return out
}

// ExpandedAttractorSets fully enumerates the forward-reachable set of
// every seed — the attractor's complete state set — on demand,
// returning a BDD handle per node.
func (a *Analysis) ExpandedAttractorSets() map[int][]symbolic.Node {
	out := make(map[int][]symbolic.Node)
	for _, n := range a.Diagram.Nodes {
		if len(n.AttractorSeeds) == 0 {
			continue
		}
		sets := make([]symbolic.Node, 0, len(n.AttractorSeeds))
		for _, seed := range n.AttractorSeeds {
			fwd := a.Kernel.ForwardReachable(a.Kernel.FromState(seed), a.Funcs)
			sets = append(sets, fwd)
		}
		out[n.ID] = sets
	}
	return out
}

// Control enumerates driver sets steering the network into target.
func (a *Analysis) Control(target *model.Space, mode control.Mode) ([]control.DriverSet, error) {
	return control.Plan(a.Diagram, a.Kernel, a.Funcs, target, mode)
}
