// Package pruner is the two-phase candidate pruner — random cooperative
// simulation (Phase 1) followed by an exact reachability filter (Phase
// 2) — that narrows an attractor-candidate set down to one seed per
// attractor.
package pruner

import (
	"context"
	"math/rand"

	"github.com/sdlab/succd/pkg/collections"
	"github.com/sdlab/succd/pkg/model"
	"github.com/sdlab/succd/pkg/parallel"
)

// statePool recycles the scratch state buffer each simulateOne walk
// mutates in place, so a candidate's simulation steps advance without
// reallocating; the simulation budget runs per-candidate, in parallel,
// so the pool amortizes across the whole Phase 1 sweep.
var statePool = collections.NewSlicePool[uint8](64)

const goldenRatio64 uint64 = 0x9E3779B97F4A7C15

// keysPool recycles the candidate-key lookup map Phase1 builds once per
// call and every worker goroutine reads from concurrently (never
// written to after dispatch, so concurrent reads are safe).
var keysPool = collections.NewMapPool[string, int](64)

// simOutcome is the result of simulating one candidate.
type simOutcome struct {
	index    int
	survived bool
}

// Pool is the worker-pool type Phase1/Prune require; its element type is
// package-private, so callers outside pruner obtain one through
// NewPool rather than instantiating parallel.WorkerPool directly.
type Pool = parallel.WorkerPool[int, simOutcome]

// NewPool builds the worker pool Prune's Phase 1 simulation runs on.
func NewPool(cfg parallel.PoolConfig) *Pool {
	return parallel.NewWorkerPool[int, simOutcome](cfg)
}

// Phase1 runs up to steps asynchronous simulation steps per candidate,
// independently and in parallel via pool (one deterministic RNG stream
// per candidate index, seeded from seed, so the result does not depend
// on scheduling). A candidate is pruned if its trajectory leaves
// terminal (only relevant when seeking motif-avoidant attractors) or
// revisits a different candidate (it can reach that candidate, so it is
// not itself an attractor representative).
//
// The walks are independent per candidate rather than one globally
// shared, trajectory-merged walk; that is sound (a surviving candidate
// never wrongly reaches another) though less aggressive at collapsing
// duplicates within a single attractor — Phase 2's
// reachability-equivalence dedup (pruner.go) closes that gap exactly,
// and one-seed-per-attractor relies on it, not on Phase 1 alone.
func Phase1(ctx context.Context, pool *parallel.WorkerPool[int, simOutcome], bn *model.BooleanNetwork, candidates []model.State, terminal func(model.State) bool, steps int, seed uint64) []model.State {
	if len(candidates) == 0 {
		return nil
	}
	keys := keysPool.Get()
	defer keysPool.Put(keys)
	for i, c := range candidates {
		keys[c.Key()] = i
	}

	indices := make([]int, len(candidates))
	for i := range candidates {
		indices[i] = i
	}

	results := pool.ExecuteFunc(ctx, indices, func(ctx context.Context, idx int) (simOutcome, error) {
		rng := rand.New(rand.NewSource(int64(seed) + int64(uint64(idx)*goldenRatio64)))
		survived := simulateOne(bn, candidates[idx], idx, keys, terminal, steps, rng, ctx)
		return simOutcome{index: idx, survived: survived}, nil
	})

	var out []model.State
	for _, r := range results {
		if r.Result.survived {
			out = append(out, candidates[r.Result.index])
		}
	}
	return out
}

func simulateOne(bn *model.BooleanNetwork, start model.State, selfIdx int, keys map[string]int, terminal func(model.State) bool, steps int, rng *rand.Rand, ctx context.Context) bool {
	bufPtr := statePool.Get()
	buf := *bufPtr
	if cap(buf) < len(start) {
		buf = make([]uint8, len(start))
	}
	buf = buf[:len(start)]
	copy(buf, start)
	defer func() {
		*bufPtr = buf
		statePool.Put(bufPtr)
	}()
	cur := model.State(buf)

	for step := 0; step < steps; step++ {
		select {
		case <-ctx.Done():
			return true
		default:
		}
		enabled := bn.EnabledUpdates(cur)
		if len(enabled) == 0 {
			return true // fixed point: trivially its own attractor
		}
		i := enabled[rng.Intn(len(enabled))]
		// i is enabled, meaning Funcs[i].Eval(cur) != cur.Get(i); over
		// booleans that means the update is exactly a flip, so cur can be
		// advanced in place rather than cloned.
		cur.Flip(i)
		if terminal != nil && !terminal(cur) {
			return false // left the terminal restriction space
		}
		if idx, ok := keys[cur.Key()]; ok && idx != selfIdx {
			return false // reached another candidate: not a representative
		}
	}
	return true
}
