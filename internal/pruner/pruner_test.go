package pruner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlab/succd/internal/parser/bnet"
	"github.com/sdlab/succd/internal/symbolic"
	pkgerrors "github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
	"github.com/sdlab/succd/pkg/parallel"
)

func mustOracle(t *testing.T, src string) (*model.BooleanNetwork, *SymbolicOracle) {
	t.Helper()
	bn, err := bnet.ParseString(src)
	require.NoError(t, err)
	eng, err := symbolic.NewRuddEngine(bn.N())
	require.NoError(t, err)
	k := symbolic.NewKernel(eng, bn.N())
	funcs := make([]symbolic.Node, bn.N())
	for i, f := range bn.Funcs {
		funcs[i] = k.Compile(f)
	}
	return bn, &SymbolicOracle{Kernel: k, Funcs: funcs}
}

func TestPrune_ZeroCandidatesReturnsNil(t *testing.T) {
	bn, sym := mustOracle(t, "A, A\n")
	pool := NewPool(parallel.DefaultPoolConfig())
	out, err := Prune(context.Background(), pool, bn, nil, nil, sym, nil, Config{SimSteps: 4})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestPrune_SingleCandidateNoChildrenPassesThrough(t *testing.T) {
	bn, sym := mustOracle(t, "A, A and B\nB, A and B\n")
	pool := NewPool(parallel.DefaultPoolConfig())
	x := model.State{1, 1}
	out, err := Prune(context.Background(), pool, bn, []model.State{x}, nil, sym, nil, Config{SimSteps: 4})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Equal(x))
}

func TestPrune_TwoFixedPointCandidatesBothSurvive(t *testing.T) {
	bn, sym := mustOracle(t, "A, A and B\nB, A and B\n")
	pool := NewPool(parallel.DefaultPoolConfig())
	candidates := []model.State{{0, 0}, {1, 1}}
	out, err := Prune(context.Background(), pool, bn, candidates, nil, sym, nil, Config{SimSteps: 4, Mode: ModeSymbolic})
	require.NoError(t, err)
	require.Len(t, out, 2, "neither fixed point can reach the other")
}

func TestPhase1_FixedPointCandidateSurvives(t *testing.T) {
	bn, _ := mustOracle(t, "A, A and B\nB, A and B\n")
	pool := NewPool(parallel.DefaultPoolConfig())
	x := model.State{1, 1}
	out := Phase1(context.Background(), pool, bn, []model.State{x}, nil, 8, 1)
	require.Len(t, out, 1)
}

func TestPhase1_NonAttractorCandidateIsPruned(t *testing.T) {
	// A negating self-loop oscillates between 0 and 1; neither value is
	// itself an attractor representative relative to a candidate set
	// containing both states (each reaches the other).
	bn, _ := mustOracle(t, "A, not A\n")
	pool := NewPool(parallel.DefaultPoolConfig())
	candidates := []model.State{{0}, {1}}
	out := Phase1(context.Background(), pool, bn, candidates, nil, 8, 1)
	assert.Empty(t, out, "each candidate reaches the other within the walk, so neither survives alone")
}

func TestSymbolicOracle_ReachableAcrossToggle(t *testing.T) {
	_, sym := mustOracle(t, "A, not A\n")
	verdict, err := sym.Reachable(context.Background(), model.State{0}, model.State{1})
	require.NoError(t, err)
	assert.Equal(t, VerdictReachable, verdict)
}

func TestSymbolicOracle_SeedsAttractor_FixedPoint(t *testing.T) {
	_, sym := mustOracle(t, "A, A and B\nB, A and B\n")
	assert.True(t, sym.SeedsAttractor(model.State{1, 1}))
}

func TestSymbolicOracle_SeedsAttractor_TransientStateFails(t *testing.T) {
	_, sym := mustOracle(t, "A, A and B\nB, A and B\n")
	// A=1,B=0 is not itself a fixed point and cannot return to itself.
	assert.False(t, sym.SeedsAttractor(model.State{1, 0}))
}

// bruteForceOracle stands in for the external unfolding tool with a
// ReachabilityOracle that answers by BFS over the real async transition
// graph — ground truth, so it always agrees with a correct symbolic
// oracle regardless of which fixture it is built against.
type bruteForceOracle struct {
	bn *model.BooleanNetwork
}

func (o *bruteForceOracle) Reachable(_ context.Context, source, target model.State) (Verdict, error) {
	seen := map[string]bool{source.Key(): true}
	queue := []model.State{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Equal(target) {
			return VerdictReachable, nil
		}
		for _, next := range o.bn.AsyncSuccessors(cur) {
			key := next.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			queue = append(queue, next)
		}
	}
	return VerdictNotReachable, nil
}

// disagreeingUnfoldingStub reports the opposite of ground truth on the
// "A, not A" toggle fixture's one decisive query ({1} reaching back to
// {0}), forcing the oracles-must-agree check to fire.
type disagreeingUnfoldingStub struct{}

func (disagreeingUnfoldingStub) Reachable(_ context.Context, _, _ model.State) (Verdict, error) {
	return VerdictNotReachable, nil
}

func TestSeedsAttractor_ModeBoth_AgreeingOraclesMatchSymbolicVerdict(t *testing.T) {
	bn, sym := mustOracle(t, "A, not A\n")
	ok, err := seedsAttractor(context.Background(), ModeBoth, sym, &bruteForceOracle{bn: bn}, bn, model.State{0})
	require.NoError(t, err)
	assert.True(t, ok, "the 2-state toggle is one attractor; both oracles agree {0} seeds it")
}

func TestSeedsAttractor_ModeBoth_DisagreeingOraclesReturnInconsistent(t *testing.T) {
	bn, sym := mustOracle(t, "A, not A\n")
	_, err := seedsAttractor(context.Background(), ModeBoth, sym, disagreeingUnfoldingStub{}, bn, model.State{0})
	require.Error(t, err)
	assert.False(t, pkgerrors.IsRecoverable(err), "oracle disagreement is fatal, not recoverable")
	assert.Equal(t, pkgerrors.CodeInconsistent, pkgerrors.GetErrorCode(err))
}

func TestPrune_ModeBoth_AgreeingOraclesProduceSameSeedsAsSymbolic(t *testing.T) {
	bn, sym := mustOracle(t, "A, A and B\nB, A and B\n")
	pool := NewPool(parallel.DefaultPoolConfig())
	candidates := []model.State{{0, 0}, {1, 1}}
	out, err := Prune(context.Background(), pool, bn, candidates, nil, sym, &bruteForceOracle{bn: bn}, Config{SimSteps: 4, Mode: ModeBoth})
	require.NoError(t, err)
	assert.Len(t, out, 2, "both fixed points are unreachable from one another, so both oracles agree each seeds its own attractor")
}

func TestAttractorsWithin_FindsCycleOutsideTrap(t *testing.T) {
	// The equivalence pair has the fixed point {1,1} plus a three-state
	// cycle over {00, 01, 10}; restricting the sweep to the complement of
	// the fixed point must surface exactly the cycle.
	_, sym := mustOracle(t, "A, A <-> B\nB, A <-> B\n")
	eng := sym.Kernel.Engine()
	region := eng.And(eng.One(), eng.Not(sym.Kernel.FromState(model.State{1, 1})))

	seeds := sym.AttractorsWithin(region)
	require.Len(t, seeds, 1)
	seed := seeds[0]
	assert.False(t, seed.Get(0) && seed.Get(1))
}

func TestAttractorsWithin_FullSpaceFindsEveryAttractor(t *testing.T) {
	_, sym := mustOracle(t, "A, A <-> B\nB, A <-> B\n")
	seeds := sym.AttractorsWithin(sym.Kernel.Engine().One())
	assert.Len(t, seeds, 2, "the fixed point and the cycle are the only attractors")
}

func TestAttractorsWithin_SkipsAttractorLeavingRegion(t *testing.T) {
	// Restricting the toggle's two-state cycle to a single state must
	// report nothing: the only attractor is not wholly inside the region.
	_, sym := mustOracle(t, "A, not A\n")
	region := sym.Kernel.FromState(model.State{0})
	assert.Empty(t, sym.AttractorsWithin(region))
}

func TestSeedsAttractorViaSuccessors_FullClosureNotJustDirectSuccessor(t *testing.T) {
	// f_B = not B (B always wants to toggle), f_C = B or C (C is a
	// sticky latch: once set by B it never resets).
	//
	// x=(B=0,C=0) has exactly one enabled transition, flipping B, to
	// y=(1,0). y in turn has two enabled transitions: flip B back to x
	// (satisfying a depth-1-only check), or flip C to z=(1,1) — from
	// which C can never turn back off, so {z, w=(0,1)} form a separate
	// 2-cycle that never returns to x or y. fwd(x) therefore escapes
	// forever via z even though x's one direct successor y can reach x;
	// a correct closure walk must catch this where a one-step check
	// would not.
	bn, err := bnet.ParseString("B, not B\nC, B or C\n")
	require.NoError(t, err)
	x := model.State{0, 0}
	ok, err := SeedsAttractorViaSuccessors(context.Background(), &bruteForceOracle{bn: bn}, bn, x)
	require.NoError(t, err)
	assert.False(t, ok, "C's one-way latch escapes to a disjoint 2-cycle that never returns to x")
}
