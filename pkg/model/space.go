package model

import (
	"fmt"
	"strings"

	"github.com/sdlab/succd/pkg/collections"
)

// Space is a partial assignment over n variables: each variable is either
// fixed to 0/1 or left free. It is the representation of a subspace /
// trap space used throughout the pipeline (percolation, the oracle, SD
// nodes).
//
// fixed[i] is set iff variable i is pinned; value[i] then holds its pinned
// value. Both bitsets always have the same declared size n.
type Space struct {
	n     int
	fixed *collections.Bitset
	value *collections.Bitset
}

// NewSpace returns the full space (no variable fixed) over n variables.
func NewSpace(n int) *Space {
	return &Space{
		n:     n,
		fixed: collections.NewBitset(n),
		value: collections.NewBitset(n),
	}
}

// NewSpaceFromMap builds a space with the given variable ids fixed to the
// given boolean values; any id absent from assignment is left free.
func NewSpaceFromMap(n int, assignment map[int]bool) *Space {
	s := NewSpace(n)
	for id, v := range assignment {
		s.Fix(id, v)
	}
	return s
}

// Dim returns the dimensionality of the space: the number of free
// variables. A state (fully fixed space) has Dim 0; the full space has
// Dim n.
func (s *Space) Dim() int {
	return s.n - s.fixed.Count()
}

// NumVars returns the total number of variables the space is defined over.
func (s *Space) NumVars() int {
	return s.n
}

// Fix pins variable id to value.
func (s *Space) Fix(id int, value bool) {
	s.fixed.Set(id)
	if value {
		s.value.Set(id)
	} else {
		s.value.Clear(id)
	}
}

// Free unpins variable id, leaving it free.
func (s *Space) Free(id int) {
	s.fixed.Clear(id)
	s.value.Clear(id)
}

// IsFixed reports whether variable id is pinned, and to what value.
func (s *Space) IsFixed(id int) (value, ok bool) {
	if !s.fixed.Test(id) {
		return false, false
	}
	return s.value.Test(id), true
}

// FixedVars returns the sorted ids of all pinned variables.
func (s *Space) FixedVars() []int {
	return s.fixed.ToSlice()
}

// FreeVars returns the sorted ids of all unpinned variables.
func (s *Space) FreeVars() []int {
	out := make([]int, 0, s.Dim())
	for i := 0; i < s.n; i++ {
		if !s.fixed.Test(i) {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns an independent copy of the space.
func (s *Space) Clone() *Space {
	return &Space{n: s.n, fixed: s.fixed.Clone(), value: s.value.Clone()}
}

// LessOrEqual reports whether s ⊑ other: every variable other pins, s pins
// to the same value. s ⊑ other means s is a (not necessarily proper)
// subspace of other — s is at least as specific.
func (s *Space) LessOrEqual(other *Space) bool {
	ok := true
	other.fixed.Iterate(func(i int) bool {
		sv, sFixed := s.IsFixed(i)
		ov, _ := other.IsFixed(i)
		if !sFixed || sv != ov {
			ok = false
			return false
		}
		return true
	})
	return ok
}

// Equal reports whether s and other pin exactly the same variables to the
// same values.
func (s *Space) Equal(other *Space) bool {
	return s.fixed.Count() == other.fixed.Count() && s.LessOrEqual(other)
}

// Intersect returns the meet of s and other: the space fixing the union of
// both sets of pinned variables. Returns ok=false if the two disagree on a
// shared variable (empty intersection).
func (s *Space) Intersect(other *Space) (result *Space, ok bool) {
	out := NewSpace(s.n)
	conflict := false
	s.fixed.Iterate(func(i int) bool {
		v, _ := s.IsFixed(i)
		out.Fix(i, v)
		return true
	})
	other.fixed.Iterate(func(i int) bool {
		ov, _ := other.IsFixed(i)
		if sv, sFixed := s.IsFixed(i); sFixed && sv != ov {
			conflict = true
			return false
		}
		out.Fix(i, ov)
		return true
	})
	if conflict {
		return nil, false
	}
	return out, true
}

// Compatible reports whether s and other agree on every variable both
// pin (their intersection is non-empty).
func (s *Space) Compatible(other *Space) bool {
	_, ok := s.Intersect(other)
	return ok
}

// ContainsState reports whether the full assignment a (one byte per
// variable, nonzero meaning true) lies within the space.
func (s *Space) ContainsState(a []uint8) bool {
	ok := true
	s.fixed.Iterate(func(i int) bool {
		v, _ := s.IsFixed(i)
		if (a[i] != 0) != v {
			ok = false
			return false
		}
		return true
	})
	return ok
}

// String renders the space as "name=0,name=1,..." using vs for display
// names, sorted by variable id; free variables are omitted.
func (s *Space) String(vs *VariableSet) string {
	var b strings.Builder
	first := true
	for _, id := range s.FixedVars() {
		if !first {
			b.WriteByte(',')
		}
		first = false
		v, _ := s.IsFixed(id)
		name := fmt.Sprintf("x%d", id)
		if vs != nil {
			name = vs.Name(id)
		}
		if v {
			fmt.Fprintf(&b, "%s=1", name)
		} else {
			fmt.Fprintf(&b, "%s=0", name)
		}
	}
	if first {
		return "*"
	}
	return b.String()
}
