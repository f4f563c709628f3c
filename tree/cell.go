package tree

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Quad holds the six independent components of a cell's mass quadrupole
// tensor. The tensor is traceless: ZZ is always -(XX + YY).
type Quad struct {
	XX, XY, XZ float64
	YY, YZ, ZZ float64
}

// Cell is a cubic region of space: either a leaf hosting exactly one
// particle, or an internal cell owning up to eight children. A child's
// width is exactly half its parent's, its center offset by a quarter of
// the parent's width along each axis.
type Cell struct {
	Center r3.Vec
	Width  float64

	// Mass moments, valid after Tree.UpdateMoments. Quad is only
	// maintained when the tree's quadrupole option is on.
	M    float64
	CM   r3.Vec
	Quad Quad

	Oct [8]*Cell

	// Leaf selects the payload: the index of the hosted particle for a
	// leaf, the exact number of leaf descendants for an internal cell.
	Leaf     bool
	Particle int
	Count    int
}

// Octant returns the 3-bit octant code of a position relative to the
// cell's center: bit 0 set when x < center, bit 1 for y, bit 2 for z.
func (c *Cell) Octant(v r3.Vec) int {
	o := 0
	if v.X < c.Center.X {
		o += 1
	}
	if v.Y < c.Center.Y {
		o += 2
	}
	if v.Z < c.Center.Z {
		o += 4
	}
	return o
}

// childCenter returns the center of the child in octant o. The offset
// is positive along an axis when the octant bit is unset.
func (c *Cell) childCenter(o int) r3.Vec {
	off := c.Width / 4
	v := c.Center
	if o&1 == 0 {
		v.X += off
	} else {
		v.X -= off
	}
	if o&2 == 0 {
		v.Y += off
	} else {
		v.Y -= off
	}
	if o&4 == 0 {
		v.Z += off
	} else {
		v.Z -= off
	}
	return v
}

// Arena owns every cell a Tree creates. Retired cells go onto a free
// list and are zeroed before reuse, so a stale handle can never observe
// old payload. Foreign cells spliced in from remote processes are not
// arena-owned and are never released into it.
type Arena struct {
	free []*Cell
	live int
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

func (a *Arena) alloc() *Cell {
	a.live++
	if n := len(a.free); n > 0 {
		c := a.free[n-1]
		a.free = a.free[:n-1]
		*c = Cell{}
		return c
	}
	return &Cell{}
}

// release retires a cell. The forest must not reference it afterwards.
func (a *Arena) release(c *Cell) {
	a.live--
	a.free = append(a.free, c)
}

// Live returns the number of cells currently allocated to the forest.
func (a *Arena) Live() int { return a.live }
