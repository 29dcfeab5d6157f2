package model

// Sign classifies how one variable's value influences another's update
// function.
type Sign int

const (
	// SignNone means flipping the variable never changes the function's
	// value under any setting of the other dependencies. An edge whose
	// direction depends on the other dependencies is SignDual, which the
	// NFVS solver treats as potentially negative.
	SignNone Sign = iota
	SignPositive
	SignNegative
	SignDual
)

func (s Sign) String() string {
	switch s {
	case SignPositive:
		return "+"
	case SignNegative:
		return "-"
	case SignDual:
		return "+-"
	default:
		return "?"
	}
}

// maxMonotonicityProbe bounds the brute-force enumeration used to classify
// an edge's sign: above this many co-dependencies, the edge is reported
// SignDual rather than paying for a 2^k sweep.
const maxMonotonicityProbe = 16

// InfluenceEdge is a signed edge i -> j: variable i appears in j's update
// function with the given monotonicity.
type InfluenceEdge struct {
	From, To int
	Sign     Sign
}

// InfluenceGraph is the signed dependency graph of a network: an edge i ->
// j for every j with i in Deps[j], signed by monotonicity — the signed
// influence graph feeding the NFVS solver and the SCC-based block
// decomposition.
type InfluenceGraph struct {
	N     int
	Edges []InfluenceEdge
	// Out[i] lists the indices into Edges of edges leaving i.
	Out [][]int
	// In[j] lists the indices into Edges of edges arriving at j.
	In [][]int
}

// BuildInfluenceGraph derives the signed influence graph of bn by probing
// each update function's monotonicity in each of its dependencies.
func BuildInfluenceGraph(bn *BooleanNetwork) *InfluenceGraph {
	g := &InfluenceGraph{
		N:   bn.N(),
		Out: make([][]int, bn.N()),
		In:  make([][]int, bn.N()),
	}
	for j, f := range bn.Funcs {
		for _, i := range bn.Deps[j] {
			sign := classifyEdge(f, i, bn.Deps[j])
			idx := len(g.Edges)
			g.Edges = append(g.Edges, InfluenceEdge{From: i, To: j, Sign: sign})
			g.Out[i] = append(g.Out[i], idx)
			g.In[j] = append(g.In[j], idx)
		}
	}
	return g
}

// classifyEdge determines whether f is monotone increasing, monotone
// decreasing, or dual in variable i, by enumerating every assignment of
// f's other dependencies and comparing f at x_i=0 versus x_i=1.
func classifyEdge(f Expr, i int, deps []int) Sign {
	others := make([]int, 0, len(deps))
	for _, d := range deps {
		if d != i {
			others = append(others, d)
		}
	}
	if len(others) > maxMonotonicityProbe {
		return SignDual
	}

	maxID := i
	for _, d := range others {
		if d > maxID {
			maxID = d
		}
	}
	assignment := make([]uint8, maxID+1)

	sawIncreasing := false
	sawDecreasing := false
	total := 1 << uint(len(others))
	for mask := 0; mask < total; mask++ {
		for k, d := range others {
			if mask&(1<<uint(k)) != 0 {
				assignment[d] = 1
			} else {
				assignment[d] = 0
			}
		}
		assignment[i] = 0
		v0 := f.Eval(assignment)
		assignment[i] = 1
		v1 := f.Eval(assignment)

		switch {
		case v0 == v1:
			// no effect under this context; uninformative
		case !v0 && v1:
			sawIncreasing = true
		case v0 && !v1:
			sawDecreasing = true
		}
		if sawIncreasing && sawDecreasing {
			return SignDual
		}
	}
	switch {
	case sawIncreasing:
		return SignPositive
	case sawDecreasing:
		return SignNegative
	default:
		return SignNone
	}
}

// NegativeEdges returns the indices of edges classified Negative or Dual —
// the edge set a negative feedback vertex set must hit on
// every cycle.
func (g *InfluenceGraph) NegativeEdges() []InfluenceEdge {
	var out []InfluenceEdge
	for _, e := range g.Edges {
		if e.Sign == SignNegative || e.Sign == SignDual {
			out = append(out, e)
		}
	}
	return out
}
