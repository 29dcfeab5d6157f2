// Package testutil carries the small embedded .bnet networks the
// end-to-end tests share, each chosen to pin down one behavior of the
// pipeline.
package testutil

import (
	"testing"

	"github.com/sdlab/succd/internal/parser/bnet"
	"github.com/sdlab/succd/pkg/model"
)

// Scenario1 has two independent sources A, B each feeding a dependent
// conjunction C and a self-reinforcing OR D: four source-combination
// trap spaces.
const Scenario1 = "A, A\nB, B\nC, A and B\nD, D or A\n"

// Scenario2 is a coupled equivalence pair: one fixed-point trap space
// at A=B=1 plus a motif-avoidant cycle over the remaining three states.
const Scenario2 = "A, A <-> B\nB, A <-> B\n"

// Scenario3 is a swap pair x1/x2 crossed with an independently
// oscillating x3: two minimal trap spaces, each carrying a 2-cycle.
const Scenario3 = "x1, x2\nx2, x1\nx3, not x3\n"

// Scenario4 has one minimal trap space {A=B=C=1} and one motif-avoidant
// attractor over {000, 010, 100}.
const Scenario4 = "A, (not A and not B) or C\nB, (not A and not B) or C\nC, A and B\n"

// Scenario4Target is Scenario4's driver-set planning target
// {A=B=C=1}; forcing C=1 alone percolates into it.
func Scenario4Target(vs *model.VariableSet) *model.Space {
	sp := model.NewSpace(vs.Len())
	for _, name := range []string{"A", "B", "C"} {
		id, _ := vs.Lookup(name)
		sp.Fix(id, true)
	}
	return sp
}

// DNADamageResponse is a reduced DNA-damage-response network: a core of
// damage-sensing, checkpoint, and repair/apoptosis-decision variables
// carrying a CHKREC node with a self-inhibiting loop through REPAIR, in
// the shape of the published model's recovery checkpoint. It does not
// claim to reproduce the full 28-variable model.
const DNADamageResponse = `targets, factors
DNA_DAMAGE, DNA_DAMAGE
ATM, DNA_DAMAGE or ATM
ATR, DNA_DAMAGE and not ATM
CHK1, ATR
CHK2, ATM
P53, CHK1 or CHK2
MDM2, not P53
P21, P53 and not MDM2
REPAIR, ATM and ATR
CHKREC, not CHKREC and REPAIR
APOPTOSIS, P53 and not REPAIR
`

// MustParse parses a fixture's .bnet text, failing the test on error.
func MustParse(t *testing.T, src string) *model.BooleanNetwork {
	t.Helper()
	bn, err := bnet.ParseString(src)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return bn
}
