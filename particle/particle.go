// Package particle implements the particle store the octree forest
// indexes into.
package particle

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uilianries/rebound/tree"
)

// Particle is one point mass. Cell is a weak handle to the leaf
// currently hosting the particle; the tree keeps it current, and
// nothing here treats it as ownership.
type Particle struct {
	Pos  r3.Vec
	Vel  r3.Vec
	Mass float64
	Cell *tree.Cell
}

// Store holds particles in a flat slice. The first NFixed slots are
// "fixed": their indices must survive eviction because external
// bookkeeping refers to them by slot. Slots at or above NFixed compact
// freely when their particles migrate.
type Store struct {
	P      []Particle
	N      int // active particle count
	NFixed int
}

// NewStore returns a store whose first nFixed slots are fixed.
func NewStore(nFixed int) *Store {
	return &Store{NFixed: nFixed}
}

// Add appends p to the active range and returns its slot.
func (s *Store) Add(p Particle) int {
	if s.N == len(s.P) {
		s.P = append(s.P, p)
	} else {
		s.P[s.N] = p
	}
	s.N++
	return s.N - 1
}

// Len returns the number of active particles.
func (s *Store) Len() int { return s.N }

// Position returns the position of particle i.
func (s *Store) Position(i int) r3.Vec { return s.P[i].Pos }

// Mass returns the mass of particle i.
func (s *Store) Mass(i int) float64 { return s.P[i].Mass }

// SetHost records the leaf currently hosting particle i.
func (s *Store) SetHost(i int, c *tree.Cell) { s.P[i].Cell = c }

// Host returns the leaf currently hosting particle i.
func (s *Store) Host(i int) *tree.Cell { return s.P[i].Cell }

// Evict removes the particle at slot i ahead of reinsertion. A fixed
// slot is retained in place. Any other slot swaps with the last active
// particle (whose host leaf is retargeted at its new slot) and the
// evicted particle lands at the tail of the active range. Returns the
// evicted particle's slot afterwards.
func (s *Store) Evict(i int) int {
	if i < s.NFixed {
		return i
	}
	last := s.N - 1
	p := s.P[i]
	s.P[i] = s.P[last]
	if c := s.P[i].Cell; c != nil {
		c.Particle = i
	}
	s.P[last] = p
	return last
}
