package geom

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestIdxCenterRoundTrip(t *testing.T) {
	g := NewRootGrid(4, 3, 2, 10)

	if g.Len() != 24 {
		t.Fatalf("NewRootGrid(4, 3, 2, 10).Len() = %d, not 24", g.Len())
	}

	for idx := 0; idx < g.Len(); idx++ {
		if got := g.Idx(g.Center(idx)); got != idx {
			t.Errorf("Idx(Center(%d)) = %d, not %d", idx, got, idx)
		}

		i, j, k := g.Coords(idx)
		if (k*g.Ny+j)*g.Nx+i != idx {
			t.Errorf("Coords(%d) = (%d %d %d), which doesn't round trip",
				idx, i, j, k)
		}
	}
}

func TestIdxWraps(t *testing.T) {
	g := NewRootGrid(2, 2, 2, 1)

	table := []struct {
		v   r3.Vec
		idx int
	}{
		{r3.Vec{X: -0.5, Y: -0.5, Z: -0.5}, 0},
		{r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, 7},
		// One full domain width out on each side wraps back in.
		{r3.Vec{X: -0.5 + 2, Y: -0.5, Z: -0.5}, 0},
		{r3.Vec{X: -0.5 - 2, Y: -0.5 - 4, Z: -0.5 + 6}, 0},
		// Far outside the domain still lands in *some* box, silently.
		{r3.Vec{X: 20.5, Y: 0.5, Z: 0.5}, 7},
		{r3.Vec{X: -20.5, Y: 0.5, Z: 0.5}, 6},
	}

	for i, test := range table {
		if got := g.Idx(test.v); got != test.idx {
			t.Errorf("%d) Idx(%v) = %d, not %d", i, test.v, got, test.idx)
		}
	}
}

func TestCenterPlacement(t *testing.T) {
	g := NewRootGrid(1, 1, 1, 8)
	if c := g.Center(0); c != (r3.Vec{}) {
		t.Errorf("single root box not centered on the origin: %v", c)
	}

	g = NewRootGrid(2, 1, 1, 8)
	if c := g.Center(0); c != (r3.Vec{X: -4}) {
		t.Errorf("Center(0) = %v, not (-4 0 0)", c)
	}
	if c := g.Center(1); c != (r3.Vec{X: 4}) {
		t.Errorf("Center(1) = %v, not (4 0 0)", c)
	}
}

func TestWrap(t *testing.T) {
	g := NewRootGrid(2, 2, 2, 1)

	table := []struct{ in, out r3.Vec }{
		{r3.Vec{X: 0.25, Y: 0.25, Z: 0.25}, r3.Vec{X: 0.25, Y: 0.25, Z: 0.25}},
		{r3.Vec{X: 1.25, Y: -1.75, Z: 2.25}, r3.Vec{X: -0.75, Y: 0.25, Z: 0.25}},
		{r3.Vec{X: -1, Y: 1, Z: 0}, r3.Vec{X: -1, Y: -1, Z: 0}},
	}

	for i, test := range table {
		got := g.Wrap(test.in)
		if !vecEps(got, test.out, 1e-12) {
			t.Errorf("%d) Wrap(%v) = %v, not %v", i, test.in, got, test.out)
		}
	}
}

func vecEps(a, b r3.Vec, eps float64) bool {
	return a.X-b.X < eps && b.X-a.X < eps &&
		a.Y-b.Y < eps && b.Y-a.Y < eps &&
		a.Z-b.Z < eps && b.Z-a.Z < eps
}
