/*
Package tree maintains an adaptive octree forest over point masses in a
periodic volume, one octree per root box. The forest accelerates
gravitational force evaluation: a force walk consumes the propagated
mass moments, and in distributed runs partial copies of remote trees
("essential trees") are spliced in so remote particles can be
approximated without shipping them every step.

The per-step phase order is strict: Insert for new or migrated
particles, then Update (structural maintenance), then UpdateMoments.
Moments computed on an unmaintained structure are garbage.
*/
package tree

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uilianries/rebound/geom"
)

// Store is the particle container a Tree indexes into. The tree reads
// positions and masses, keeps each particle's host-leaf handle current,
// and drives the eviction protocol; it never owns the particles.
type Store interface {
	// Len returns the number of active particles.
	Len() int
	Position(i int) r3.Vec
	Mass(i int) float64
	// SetHost records the leaf currently hosting particle i.
	SetHost(i int, c *Cell)
	// Evict removes the particle at slot i ahead of reinsertion.
	// Slots below the store's fixed-particle threshold are retained in
	// place; any other slot is swap-compacted with the last active
	// particle, whose host leaf must be retargeted at its new slot.
	// Returns the slot the evicted particle occupies afterwards.
	Evict(i int) int
}

// Partition reports which root boxes the local process owns. A nil
// Partition means a non-distributed run: every root box is local.
type Partition interface {
	Owns(root int) bool
}

// Transport receives locally owned subtrees once per step for delivery
// to peer processes. Delivery itself, including any retry or partial
// failure handling, lives outside this package.
type Transport interface {
	Send(root int, c *Cell)
}

// Options configures a Tree.
type Options struct {
	// Quadrupole turns on maintenance of cell quadrupole tensors.
	Quadrupole bool
	// Partition restricts insertion and maintenance to locally owned
	// root boxes.
	Partition Partition
}

// Tree is a forest of octrees, one per root box of the grid.
type Tree struct {
	Grid  *geom.RootGrid
	Arena *Arena

	store Store
	part  Partition
	quad  bool

	roots []*Cell
}

// New returns a Tree over the given store and root-box grid. The forest
// itself is allocated lazily on first use.
func New(store Store, grid *geom.RootGrid, opt Options) *Tree {
	return &Tree{
		Grid:  grid,
		Arena: NewArena(),
		store: store,
		part:  opt.Partition,
		quad:  opt.Quadrupole,
	}
}

// Roots returns the forest indexed by root box. Consumers treat it as
// read-only; moments are valid after UpdateMoments.
func (t *Tree) Roots() []*Cell {
	t.ensureRoots()
	return t.roots
}

func (t *Tree) ensureRoots() {
	if t.roots == nil {
		t.roots = make([]*Cell, t.Grid.Len())
	}
}

func (t *Tree) owns(root int) bool {
	return t.part == nil || t.part.Owns(root)
}

// Insert places particle pt into the forest, creating whatever cells
// the descent needs. A particle whose root box belongs to another
// process is skipped: the local forest only represents non-owned
// regions through merged essential trees.
func (t *Tree) Insert(pt int) {
	t.ensureRoots()
	root := t.Grid.Idx(t.store.Position(pt))
	if !t.owns(root) {
		return
	}
	t.roots[root] = t.insert(t.roots[root], nil, root, pt, 0)
}

func (t *Tree) insert(node, parent *Cell, root, pt, o int) *Cell {
	if node == nil {
		node = t.Arena.alloc()
		if parent == nil {
			node.Width = t.Grid.W
			node.Center = t.Grid.Center(root)
		} else {
			node.Width = parent.Width / 2
			node.Center = parent.childCenter(o)
		}
		node.Leaf = true
		node.Particle = pt
		t.store.SetHost(pt, node)
		return node
	}
	if node.Leaf {
		// Split: push the resident particle down, then the new one.
		// Both may land in the same octant, in which case the fresh
		// child leaf splits again one level deeper. Either way exactly
		// two leaves end up beneath this cell.
		resident := node.Particle
		node.Leaf = false
		ro := node.Octant(t.store.Position(resident))
		node.Oct[ro] = t.insert(node.Oct[ro], node, root, resident, ro)
		no := node.Octant(t.store.Position(pt))
		node.Oct[no] = t.insert(node.Oct[no], node, root, pt, no)
		node.Count = 2
		return node
	}
	node.Count++
	no := node.Octant(t.store.Position(pt))
	node.Oct[no] = t.insert(node.Oct[no], node, root, pt, no)
	return node
}

// Update walks the whole forest once per step: descendant counts are
// rebuilt from the (possibly changed) children, empty cells are freed,
// internal cells left with a single leaf collapse into it, and leaves
// whose particle drifted out of bounds are evicted and reinserted
// through the full insertion path. Must complete before UpdateMoments.
func (t *Tree) Update() {
	t.ensureRoots()
	for root := range t.roots {
		if !t.owns(root) {
			continue
		}
		t.roots[root] = t.updateCell(t.roots[root])
	}
}

func (t *Tree) updateCell(node *Cell) *Cell {
	if node == nil {
		return nil
	}
	if !node.Leaf {
		for o := range node.Oct {
			node.Oct[o] = t.updateCell(node.Oct[o])
		}
		count, leafOct := 0, -1
		for o, d := range node.Oct {
			if d == nil {
				continue
			}
			if d.Leaf {
				count++
				leafOct = o
			} else {
				count += d.Count
			}
		}
		switch {
		case count == 0:
			// Every child vanished.
			t.Arena.release(node)
			return nil
		case count == 1:
			// The survivor is necessarily a direct leaf child: children
			// were visited first, so a lone deeper leaf has already
			// collapsed into its own parent.
			d := node.Oct[leafOct]
			node.Leaf = true
			node.Particle = d.Particle
			node.Count = 0
			node.Oct[leafOct] = nil
			t.store.SetHost(node.Particle, node)
			t.Arena.release(d)
			return node
		default:
			node.Count = count
			return node
		}
	}
	// Leaf: enforce containment.
	if t.inside(node) {
		// Refresh the back-reference; the cell object hosting this
		// particle may have been reused since the last step.
		t.store.SetHost(node.Particle, node)
		return node
	}
	evicted := t.store.Evict(node.Particle)
	t.Insert(evicted)
	t.Arena.release(node)
	return nil
}

// inside reports whether the leaf's particle is within Width/2 of the
// cell's center on every axis.
func (t *Tree) inside(node *Cell) bool {
	p := t.store.Position(node.Particle)
	w := node.Width / 2
	return math.Abs(p.X-node.Center.X) <= w &&
		math.Abs(p.Y-node.Center.Y) <= w &&
		math.Abs(p.Z-node.Center.Z) <= w
}

// UpdateMoments annotates every owned cell with the mass moments the
// force walk approximates against: total mass and center of mass, plus
// the quadrupole tensor when that option is on. Foreign cells already
// carry moments propagated by their owner and are left alone.
func (t *Tree) UpdateMoments() {
	for root, c := range t.roots {
		if c == nil || !t.owns(root) {
			continue
		}
		t.updateMoments(c)
	}
}

func (t *Tree) updateMoments(node *Cell) {
	if t.quad {
		node.Quad = Quad{}
	}
	if node.Leaf {
		node.M = t.store.Mass(node.Particle)
		node.CM = t.store.Position(node.Particle)
		return
	}
	node.M = 0
	node.CM = r3.Vec{}
	for _, d := range node.Oct {
		if d == nil {
			continue
		}
		t.updateMoments(d)
		node.CM = r3.Add(node.CM, r3.Scale(d.M, d.CM))
		node.M += d.M
	}
	if node.M > 0 {
		node.CM = r3.Scale(1/node.M, node.CM)
	}
	if !t.quad {
		return
	}
	// Parallel-axis combination of the children's tensors about the
	// parent's center of mass (Hernquist 1987, ApJS). ZZ closes the
	// trace instead of being accumulated.
	for _, d := range node.Oct {
		if d == nil {
			continue
		}
		q := r3.Sub(d.CM, node.CM)
		r2 := q.X*q.X + q.Y*q.Y + q.Z*q.Z
		node.Quad.XX += d.Quad.XX + d.M*(3*q.X*q.X-r2)
		node.Quad.XY += d.Quad.XY + d.M*3*q.X*q.Y
		node.Quad.XZ += d.Quad.XZ + d.M*3*q.X*q.Z
		node.Quad.YY += d.Quad.YY + d.M*(3*q.Y*q.Y-r2)
		node.Quad.YZ += d.Quad.YZ + d.M*3*q.Y*q.Z
	}
	node.Quad.ZZ = -node.Quad.XX - node.Quad.YY
}
