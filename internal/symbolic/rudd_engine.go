package symbolic

import (
	"github.com/dalzilio/rudd"

	"github.com/sdlab/succd/pkg/errors"
)

// RuddEngine implements Engine on top of github.com/dalzilio/rudd, a pure
// Go BuDDy-style BDD package. One RuddEngine owns one variable order,
// constructed once and shared read-only across an analysis.
//
// rudd hands out nodes as *int references whose pointee is the node's
// stable index in the manager's table; the engine interns every node it
// returns in refs, which both pins the node against rudd's
// finalizer-driven reclamation and lets the opaque Node handle be that
// stable index.
type RuddEngine struct {
	bdd  *rudd.BDD
	n    int
	refs map[Node]rudd.Node
}

// NewRuddEngine allocates a BDD manager for n Boolean variables.
func NewRuddEngine(n int) (*RuddEngine, error) {
	b, err := rudd.New(n)
	if err != nil {
		return nil, errors.Wrap(errors.CodeOracleFailure, "initializing BDD engine", err, false)
	}
	return &RuddEngine{bdd: b, n: n, refs: make(map[Node]rudd.Node)}, nil
}

func (e *RuddEngine) wrap(n rudd.Node) Node {
	h := Node(*n)
	if _, ok := e.refs[h]; !ok {
		e.refs[h] = n
	}
	return h
}

func (e *RuddEngine) node(f Node) rudd.Node { return e.refs[f] }

func (e *RuddEngine) NumVars() int { return e.n }

func (e *RuddEngine) Zero() Node { return e.wrap(e.bdd.False()) }
func (e *RuddEngine) One() Node  { return e.wrap(e.bdd.True()) }

func (e *RuddEngine) Ithvar(i int) Node  { return e.wrap(e.bdd.Ithvar(i)) }
func (e *RuddEngine) NIthvar(i int) Node { return e.wrap(e.bdd.NIthvar(i)) }

func (e *RuddEngine) And(f, g Node) Node { return e.wrap(e.bdd.And(e.node(f), e.node(g))) }
func (e *RuddEngine) Or(f, g Node) Node  { return e.wrap(e.bdd.Or(e.node(f), e.node(g))) }
func (e *RuddEngine) Not(f Node) Node    { return e.wrap(e.bdd.Not(e.node(f))) }

func (e *RuddEngine) Exist(f Node, vars []int) Node {
	if len(vars) == 0 {
		return f
	}
	set := e.bdd.Makeset(vars)
	return e.wrap(e.bdd.Exist(e.node(f), set))
}

// ForAll is derived from Exist by duality; rudd only ships the
// existential quantifier.
func (e *RuddEngine) ForAll(f Node, vars []int) Node {
	if len(vars) == 0 {
		return f
	}
	set := e.bdd.Makeset(vars)
	return e.wrap(e.bdd.Not(e.bdd.Exist(e.bdd.Not(e.node(f)), set)))
}

// Restrict is the cofactor f[x_i := b], computed as ∃x_i. (f ∧ lit).
func (e *RuddEngine) Restrict(f Node, i int, b bool) Node {
	lit := e.bdd.Ithvar(i)
	if !b {
		lit = e.bdd.NIthvar(i)
	}
	set := e.bdd.Makeset([]int{i})
	return e.wrap(e.bdd.Exist(e.bdd.And(e.node(f), lit), set))
}

func (e *RuddEngine) IsZero(f Node) bool { return e.bdd.Equal(e.node(f), e.bdd.False()) }
func (e *RuddEngine) IsOne(f Node) bool  { return e.bdd.Equal(e.node(f), e.bdd.True()) }
func (e *RuddEngine) Equal(f, g Node) bool {
	return e.bdd.Equal(e.node(f), e.node(g))
}

// Size reports the live node count by walking the manager's node table.
func (e *RuddEngine) Size() int {
	count := 0
	_ = e.bdd.Allnodes(func(id, level, low, high int) error {
		count++
		return nil
	})
	return count
}
