package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtures_AllParse(t *testing.T) {
	for name, src := range map[string]string{
		"scenario1":  Scenario1,
		"scenario2":  Scenario2,
		"scenario3":  Scenario3,
		"scenario4":  Scenario4,
		"dna_damage": DNADamageResponse,
	} {
		t.Run(name, func(t *testing.T) {
			bn := MustParse(t, src)
			assert.Greater(t, bn.N(), 0, "fixture %s must declare at least one variable", name)
		})
	}
}

func TestScenario4Target_FixesExactlyABC(t *testing.T) {
	bn := MustParse(t, Scenario4)
	target := Scenario4Target(bn.Vars)
	require.Equal(t, bn.N(), target.NumVars())
	for _, name := range []string{"A", "B", "C"} {
		id, ok := bn.Vars.Lookup(name)
		require.True(t, ok)
		v, fixed := target.IsFixed(id)
		require.True(t, fixed)
		assert.True(t, v)
	}
}
