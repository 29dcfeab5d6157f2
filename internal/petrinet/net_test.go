package petrinet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdlab/succd/internal/parser/bnet"
	"github.com/sdlab/succd/pkg/model"
)

func mustBuild(t *testing.T, src string) (*model.BooleanNetwork, *Net) {
	t.Helper()
	bn, err := bnet.ParseString(src)
	require.NoError(t, err)
	net, err := Build(bn)
	require.NoError(t, err)
	return bn, net
}

func TestIsTrapSpace_FullSpaceAlwaysTrap(t *testing.T) {
	_, net := mustBuild(t, "A, A\nB, B\n")
	full := model.NewSpace(2)
	assert.True(t, net.IsTrapSpace(full))
}

func TestIsTrapSpace_FixedPointIsTrap(t *testing.T) {
	bn, net := mustBuild(t, "A, A and B\nB, A and B\n")
	sp := model.NewSpaceFromMap(bn.N(), map[int]bool{0: true, 1: true})
	assert.True(t, net.IsTrapSpace(sp), "A=B=1 is a synchronous and asynchronous fixed point")
}

func TestIsTrapSpace_RejectsEscapingSubspace(t *testing.T) {
	// A toggle pair where fixing one variable alone does not stop its own
	// update from flipping it back out of the fixed value.
	bn, net := mustBuild(t, "A, A <-> B\nB, A <-> B\n")
	spA0 := model.NewSpaceFromMap(bn.N(), map[int]bool{0: false})
	assert.False(t, net.IsTrapSpace(spA0), "fixing A alone does not block f_A from demanding A=1 when B=0")
}

func TestIsTrapSpace_SourceVariableSubspace(t *testing.T) {
	// A is a source (its own update); any single fixing of A is stable.
	bn, net := mustBuild(t, "A, A\nB, A and B\n")
	spA0 := model.NewSpaceFromMap(bn.N(), map[int]bool{0: false})
	assert.True(t, net.IsTrapSpace(spA0))
	spA1 := model.NewSpaceFromMap(bn.N(), map[int]bool{0: true})
	assert.True(t, net.IsTrapSpace(spA1))
}

func TestRestrict_DropsEscapingTransitions(t *testing.T) {
	bn, net := mustBuild(t, "A, A\nB, A and B\n")
	sp := model.NewSpaceFromMap(bn.N(), map[int]bool{0: false})
	restricted := net.Restrict(sp)
	for _, tr := range restricted.Transitions {
		if tr.Var == 0 {
			assert.False(t, tr.Value, "only the A=0-preserving transition should survive restriction")
		}
	}
}

func TestFreeVars_UnrestrictedIsAllVars(t *testing.T) {
	bn, net := mustBuild(t, "A, A\nB, B\n")
	assert.ElementsMatch(t, []int{0, 1}, net.FreeVars())
	_ = bn
}
