package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildNetwork(funcs ...Expr) *BooleanNetwork {
	vs := NewVariableSet()
	for i := range funcs {
		vs.Intern(string(rune('A' + i)))
	}
	return NewBooleanNetwork(vs, funcs)
}

func findEdge(g *InfluenceGraph, from, to int) (InfluenceEdge, bool) {
	for _, e := range g.Edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return InfluenceEdge{}, false
}

func TestBuildInfluenceGraph_Signs(t *testing.T) {
	// A activates B, A inhibits C, and D depends on A with a
	// context-dependent direction (A when B, not-A when not-B).
	bn := buildNetwork(
		VarExpr{ID: 0},                           // f_A = A
		VarExpr{ID: 0},                           // f_B = A
		NotExpr{X: VarExpr{ID: 0}},               // f_C = not A
		EquivExpr{A: VarExpr{ID: 0}, B: VarExpr{ID: 1}}, // f_D = A <-> B
	)
	g := BuildInfluenceGraph(bn)

	e, ok := findEdge(g, 0, 1)
	require.True(t, ok)
	assert.Equal(t, SignPositive, e.Sign)

	e, ok = findEdge(g, 0, 2)
	require.True(t, ok)
	assert.Equal(t, SignNegative, e.Sign)

	e, ok = findEdge(g, 0, 3)
	require.True(t, ok)
	assert.Equal(t, SignDual, e.Sign)
}

func TestBuildInfluenceGraph_NoEdgeWithoutDependency(t *testing.T) {
	bn := buildNetwork(
		ConstExpr{Value: true}, // f_A = 1
		VarExpr{ID: 1},         // f_B = B
	)
	g := BuildInfluenceGraph(bn)
	_, ok := findEdge(g, 1, 0)
	assert.False(t, ok, "a constant function depends on nothing")
	_, ok = findEdge(g, 1, 1)
	assert.True(t, ok)
}

func TestNegativeEdges_IncludesDual(t *testing.T) {
	bn := buildNetwork(
		NotExpr{X: VarExpr{ID: 0}},                      // negative self-loop
		EquivExpr{A: VarExpr{ID: 0}, B: VarExpr{ID: 1}}, // dual edges
	)
	g := BuildInfluenceGraph(bn)
	neg := g.NegativeEdges()
	assert.NotEmpty(t, neg)
	for _, e := range neg {
		assert.NotEqual(t, SignPositive, e.Sign)
	}
}

func TestAsyncSuccessors_OnePerEnabledUpdate(t *testing.T) {
	bn := buildNetwork(
		NotExpr{X: VarExpr{ID: 0}}, // A toggles
		VarExpr{ID: 1},             // B stays
	)
	succ := bn.AsyncSuccessors(State{0, 1})
	require.Len(t, succ, 1)
	assert.True(t, succ[0].Get(0))
	assert.True(t, succ[0].Get(1))
	assert.False(t, bn.IsFixedPoint(State{0, 1}), "A's toggle is always enabled")

	latch := buildNetwork(
		AndExpr{Xs: []Expr{VarExpr{ID: 0}, VarExpr{ID: 1}}},
		AndExpr{Xs: []Expr{VarExpr{ID: 0}, VarExpr{ID: 1}}},
	)
	assert.True(t, latch.IsFixedPoint(State{1, 1}))
	assert.Empty(t, latch.EnabledUpdates(State{0, 0}))
}
