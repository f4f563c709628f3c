// Package geom provides the periodic root-box grid that tiles the
// simulation domain. Each grid cell ("root box") owns one independent
// octree in the tree package.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// RootGrid tiles a periodic domain with Nx*Ny*Nz cubic root boxes of
// width W. Flat indices use x-major ordering: (k*Ny + j)*Nx + i.
type RootGrid struct {
	Nx, Ny, Nz int
	W          float64
	// Domain extents: Sx = W*Nx, etc. The domain is centered on the
	// origin, spanning [-Sx/2, Sx/2) along x.
	Sx, Sy, Sz float64

	n int
}

// NewRootGrid returns a grid of nx*ny*nz root boxes, each of width w.
func NewRootGrid(nx, ny, nz int, w float64) *RootGrid {
	g := &RootGrid{}
	g.Init(nx, ny, nz, w)
	return g
}

// Init initializes a RootGrid instance.
func (g *RootGrid) Init(nx, ny, nz int, w float64) {
	g.Nx, g.Ny, g.Nz = nx, ny, nz
	g.W = w

	g.Sx = w * float64(nx)
	g.Sy = w * float64(ny)
	g.Sz = w * float64(nz)

	g.n = nx * ny * nz
}

// Len returns the total number of root boxes.
func (g *RootGrid) Len() int { return g.n }

// Idx returns the flat root-box index for a position. Positions outside
// the domain wrap periodically into some root box; nothing signals that
// the caller's simulation may have diverged.
func (g *RootGrid) Idx(v r3.Vec) int {
	i := pMod(int(math.Floor((v.X+g.Sx/2)/g.W)), g.Nx)
	j := pMod(int(math.Floor((v.Y+g.Sy/2)/g.W)), g.Ny)
	k := pMod(int(math.Floor((v.Z+g.Sz/2)/g.W)), g.Nz)
	return (k*g.Ny+j)*g.Nx + i
}

// Coords returns the i, j, k grid coordinates of a root box from its
// flat index.
func (g *RootGrid) Coords(idx int) (i, j, k int) {
	i = idx % g.Nx
	j = (idx / g.Nx) % g.Ny
	k = idx / (g.Nx * g.Ny)
	return i, j, k
}

// Center returns the geometric center of the root box at idx.
func (g *RootGrid) Center(idx int) r3.Vec {
	i, j, k := g.Coords(idx)
	return r3.Vec{
		X: -g.Sx/2 + g.W*(0.5+float64(i)),
		Y: -g.Sy/2 + g.W*(0.5+float64(j)),
		Z: -g.Sz/2 + g.W*(0.5+float64(k)),
	}
}

// Wrap maps a position into the primary domain, [-Sx/2, Sx/2) along x
// and likewise for y, z. Callers that integrate particle motion apply
// this before tree maintenance; the tree itself only wraps at the
// root-box indexing level.
func (g *RootGrid) Wrap(v r3.Vec) r3.Vec {
	return r3.Vec{
		X: wrap(v.X, g.Sx),
		Y: wrap(v.Y, g.Sy),
		Z: wrap(v.Z, g.Sz),
	}
}

func wrap(x, s float64) float64 {
	x = math.Mod(x+s/2, s)
	if x < 0 {
		x += s
	}
	return x - s/2
}

// pMod computes the positive modulo x % y.
func pMod(x, y int) int {
	m := x % y
	if m < 0 {
		m += y
	}
	return m
}
