package comm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uilianries/rebound/comm"
	"github.com/uilianries/rebound/geom"
	"github.com/uilianries/rebound/particle"
	"github.com/uilianries/rebound/tree"
)

func TestPartitionEvenDivision(t *testing.T) {
	p := comm.Partition{Boxes: 8, Size: 2}

	for root := 0; root < 8; root++ {
		want := 0
		if root >= 4 {
			want = 1
		}
		assert.Equal(t, want, p.Owner(root), "box %d", root)
	}
}

func TestPartitionRemainder(t *testing.T) {
	// 8 boxes over 3 ranks deal out 3+3+2; no box may be unowned.
	p := comm.Partition{Boxes: 8, Size: 3}

	owners := []int{0, 0, 0, 1, 1, 1, 2, 2}
	for root, want := range owners {
		assert.Equal(t, want, p.Owner(root), "box %d", root)

		owned := 0
		for rank := 0; rank < p.Size; rank++ {
			p.Rank = rank
			if p.Owns(root) {
				owned++
			}
		}
		assert.Equal(t, 1, owned, "box %d owned exactly once", root)
	}
}

func TestCollectPreOrder(t *testing.T) {
	leafA := &tree.Cell{Leaf: true, Width: 2}
	leafB := &tree.Cell{Leaf: true, Width: 2}
	root := &tree.Cell{Count: 2, Width: 4}
	root.Oct[0], root.Oct[7] = leafA, leafB

	cells := comm.Collect(root, nil, nil)
	require.Len(t, cells, 3)
	assert.Same(t, root, cells[0], "parents precede children")

	// A cut that closes every cell sends only the subtree root.
	cells = comm.Collect(root, func(*tree.Cell) bool { return true }, nil)
	require.Len(t, cells, 1)

	// A width cut keeps the root open but summarizes the children.
	cells = comm.Collect(root, func(c *tree.Cell) bool {
		return c.Width <= 2
	}, nil)
	assert.Len(t, cells, 3)
}

// TestEssentialExchange runs the full outbound-inbound pipeline: a
// "remote" rank builds and propagates its half of a 4x1x1 grid, its
// owned subtrees are collected, encoded, decoded, and merged into a
// local forest, which must then carry the remote moments verbatim.
func TestEssentialExchange(t *testing.T) {
	grid := geom.NewRootGrid(4, 1, 1, 8)

	remoteStore := particle.NewStore(0)
	remote := tree.New(remoteStore, grid, tree.Options{
		Quadrupole: true,
		Partition:  comm.Partition{Boxes: 4, Size: 2, Rank: 1},
	})
	for _, p := range []particle.Particle{
		{Pos: r3.Vec{X: 2, Y: 1, Z: 1}, Mass: 1},
		{Pos: r3.Vec{X: 6, Y: -1, Z: -1}, Mass: 2},
		{Pos: r3.Vec{X: 12, Y: 2, Z: -2}, Mass: 4},
	} {
		remote.Insert(remoteStore.Add(p))
	}
	remote.Update()
	remote.UpdateMoments()

	q := &comm.Queue{}
	remote.PrepareEssentialTrees(q)

	buf := &bytes.Buffer{}
	require.NoError(t, q.Encode(buf))
	cells, err := comm.Read(buf)
	require.NoError(t, err)
	require.NotEmpty(t, cells)

	localStore := particle.NewStore(0)
	local := tree.New(localStore, grid, tree.Options{
		Quadrupole: true,
		Partition:  comm.Partition{Boxes: 4, Size: 2, Rank: 0},
	})
	for _, c := range cells {
		local.AddEssentialCell(c)
	}

	remoteRoots := remote.Roots()
	localRoots := local.Roots()
	for _, box := range []int{2, 3} {
		require.NotNil(t, localRoots[box], "box %d", box)
		assert.Equal(t, remoteRoots[box].M, localRoots[box].M, "box %d", box)
		assert.Equal(t, remoteRoots[box].CM, localRoots[box].CM, "box %d", box)
		assert.Equal(t, remoteRoots[box].Quad, localRoots[box].Quad, "box %d", box)
		assert.Equal(t, remoteRoots[box].Center, localRoots[box].Center, "box %d", box)
		assert.Equal(t, remoteRoots[box].Width, localRoots[box].Width, "box %d", box)
	}

	// Box 2 held two particles, so its merged shell must have regrown
	// child structure under the grafted root.
	children := 0
	for _, d := range localRoots[2].Oct {
		if d != nil {
			children++
		}
	}
	assert.Equal(t, 2, children)

	// Next step, the foreign shells are discarded before fresh ones
	// arrive.
	local.PrepareEssentialTrees(&comm.Queue{})
	assert.Nil(t, local.Roots()[2])
	assert.Nil(t, local.Roots()[3])
}

func TestReadRejectsBadFlag(t *testing.T) {
	_, err := comm.Read(bytes.NewReader([]byte{9, 9, 9, 9}))
	assert.Error(t, err)
}
