// Package symbolic is the symbolic kernel: BDD-level primitives over
// state/space sets, percolation, and saturation-based reachability.
//
// The BDD engine itself sits behind the Engine interface so it stays
// swappable; Kernel is the concrete, engine-agnostic logic built on top
// of it. RuddEngine is the shipped implementation, backed by
// github.com/dalzilio/rudd.
package symbolic

// Node is an opaque handle to a BDD node, valid only for the Engine that
// produced it.
type Node int

// Engine is the minimal BDD contract the kernel needs: boolean
// combinators, projection, restriction, and satisfying-assignment
// enumeration over a fixed global variable order.
type Engine interface {
	// NumVars returns the number of BDD variables the engine was built
	// with (one per network variable).
	NumVars() int

	Zero() Node
	One() Node
	Ithvar(i int) Node
	NIthvar(i int) Node

	And(f, g Node) Node
	Or(f, g Node) Node
	Not(f Node) Node

	// Exist projects out the variables in vars (existential
	// quantification): Exist(f, {i}) = f[x_i:=0] ∨ f[x_i:=1].
	Exist(f Node, vars []int) Node
	// ForAll projects out the variables in vars (universal
	// quantification): ForAll(f, {i}) = f[x_i:=0] ∧ f[x_i:=1].
	ForAll(f Node, vars []int) Node
	// Restrict fixes variable i to value b in f.
	Restrict(f Node, i int, b bool) Node

	// IsZero / IsOne test against the constant nodes.
	IsZero(f Node) bool
	IsOne(f Node) bool
	// Equal reports whether f and g denote the same set (BDDs are
	// canonical, so this is a pointer/index comparison).
	Equal(f, g Node) bool

	// Size reports the engine's current live node count. Nothing in the
	// pipeline compares it with the max_bdd_size setting, and no
	// symbolic operation stops when that size is exceeded.
	Size() int
}
