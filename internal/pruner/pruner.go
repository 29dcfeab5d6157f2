package pruner

import (
	"context"
	"sort"

	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
	"github.com/sdlab/succd/pkg/parallel"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("succd/pruner")

// Config bundles the knobs of a pruning run.
type Config struct {
	// SimSteps bounds Phase 1's per-candidate random walk length.
	SimSteps int
	// Seed drives Phase 1's per-candidate RNG streams, so equal seeds
	// reproduce equal results; the final dedup pass orders seeds by
	// state key and does not use it.
	Seed uint64
	// Terminal restricts Phase 1 trajectories to a subspace (used when
	// hunting for motif-avoidant attractors within a fixed complex
	// space); nil accepts every successor.
	Terminal func(model.State) bool
	// Mode selects which reachability oracle(s) Phase 2 consults.
	Mode OracleMode
}

// OracleMode selects Phase 2's reachability backend.
type OracleMode int

const (
	// ModeSymbolic uses only the exact BDD-based oracle.
	ModeSymbolic OracleMode = iota
	// ModeUnfolding uses only the external unfolding tool.
	ModeUnfolding
	// ModeBoth runs both and requires agreement; disagreement raises a
	// non-recoverable Inconsistent error.
	ModeBoth
)

// Prune narrows candidates (all states known to lie in space) down to
// exactly one representative seed per attractor, given the children
// spaces already split off this node (empty if this is a leaf complex
// space with no further block decomposition).
//
// Zero candidates returns an empty slice; a single candidate with no
// children returns that candidate unchanged (nothing else could
// possibly be reachable from it within the space).
func Prune(ctx context.Context, pool *parallel.WorkerPool[int, simOutcome], bn *model.BooleanNetwork, candidates []model.State, children []*model.Space, symbolic *SymbolicOracle, unfolding ReachabilityOracle, cfg Config) ([]model.State, error) {
	ctx, span := tracer.Start(ctx, "pruner.Prune", trace.WithAttributes(attribute.Int("succd.candidates", len(candidates))))
	defer span.End()

	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) == 1 && len(children) == 0 {
		return candidates, nil
	}

	terminal := cfg.Terminal
	if terminal == nil && len(children) == 0 {
		terminal = func(model.State) bool { return true }
	}
	survivors := Phase1(ctx, pool, bn, candidates, terminal, cfg.SimSteps, cfg.Seed)
	if len(survivors) == 0 {
		return nil, nil
	}
	if len(survivors) == 1 && len(children) == 0 {
		// The node is a minimal trap space: it must contain an attractor,
		// and a sole survivor is its only possible representative. With
		// children present a lone survivor still needs Phase 2 — its K
		// bounded steps inside the terminal restriction prove nothing.
		return survivors, nil
	}

	seeds := make([]model.State, 0, len(survivors))
	for _, x := range survivors {
		ok, err := seedsAttractor(ctx, cfg.Mode, symbolic, unfolding, bn, x)
		if err != nil {
			return nil, err
		}
		if ok {
			seeds = append(seeds, x)
		}
	}
	if len(seeds) == 0 {
		return nil, nil
	}

	return dedupe(ctx, cfg.Mode, symbolic, unfolding, seeds)
}

func seedsAttractor(ctx context.Context, mode OracleMode, sym *SymbolicOracle, unf ReachabilityOracle, bn *model.BooleanNetwork, x model.State) (bool, error) {
	switch mode {
	case ModeSymbolic:
		return sym.SeedsAttractor(x), nil
	case ModeUnfolding:
		return SeedsAttractorViaSuccessors(ctx, unf, bn, x)
	default:
		symOK := sym.SeedsAttractor(x)
		unfOK, err := SeedsAttractorViaSuccessors(ctx, unf, bn, x)
		if err != nil {
			return false, err
		}
		if symOK != unfOK {
			return false, errors.Inconsistent("symbolic and unfolding oracles disagree on attractor membership")
		}
		return symOK, nil
	}
}

// dedupe collapses Phase 2 survivors that are mutually reachable (hence
// seeds of the same attractor) into one representative each, chosen
// deterministically by sorting candidates by key and keeping the first
// representative of each equivalence class discovered, so the choice is
// independent of slice order or goroutine scheduling for a fixed seed.
func dedupe(ctx context.Context, mode OracleMode, sym *SymbolicOracle, unf ReachabilityOracle, seeds []model.State) ([]model.State, error) {
	ordered := make([]model.State, len(seeds))
	copy(ordered, seeds)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Key() < ordered[j].Key() })

	assigned := make([]bool, len(ordered))
	var reps []model.State
	for i, x := range ordered {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		reps = append(reps, x)
		for j := i + 1; j < len(ordered); j++ {
			if assigned[j] {
				continue
			}
			same, err := mutuallyReachable(ctx, mode, sym, unf, x, ordered[j])
			if err != nil {
				return nil, err
			}
			if same {
				assigned[j] = true
			}
		}
	}
	return reps, nil
}

func mutuallyReachable(ctx context.Context, mode OracleMode, sym *SymbolicOracle, unf ReachabilityOracle, a, b model.State) (bool, error) {
	switch mode {
	case ModeSymbolic:
		return mutuallyReachableVia(ctx, sym, a, b)
	case ModeUnfolding:
		return mutuallyReachableVia(ctx, unf, a, b)
	default:
		symOK, err := mutuallyReachableVia(ctx, sym, a, b)
		if err != nil {
			return false, err
		}
		unfOK, err := mutuallyReachableVia(ctx, unf, a, b)
		if err != nil {
			return false, err
		}
		if symOK != unfOK {
			return false, errors.Inconsistent("symbolic and unfolding oracles disagree on mutual reachability")
		}
		return symOK, nil
	}
}

func mutuallyReachableVia(ctx context.Context, oracle ReachabilityOracle, a, b model.State) (bool, error) {
	v1, err := oracle.Reachable(ctx, a, b)
	if err != nil {
		return false, err
	}
	if v1 != VerdictReachable {
		return false, nil
	}
	v2, err := oracle.Reachable(ctx, b, a)
	if err != nil {
		return false, err
	}
	return v2 == VerdictReachable, nil
}
