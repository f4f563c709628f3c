package comm

import (
	"encoding/binary"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uilianries/rebound/tree"
)

// CutFunc decides whether a cell is, on its own, a sufficient summary
// of its subtree for the receiving domain. It stands in for the force
// walk's opening criterion, which this package does not define. When it
// returns true the traversal stops below the cell. A nil cut sends the
// whole subtree.
type CutFunc func(c *tree.Cell) bool

// Collect gathers an essential tree in pre-order, appending to out:
// every visited cell is included, and children are only visited beneath
// cells the cut keeps open. Pre-order matters: the merger on the
// receiving side places each cell by geometry, so parents must arrive
// before their children.
func Collect(root *tree.Cell, cut CutFunc, out []*tree.Cell) []*tree.Cell {
	if root == nil {
		return out
	}
	out = append(out, root)
	if cut != nil && cut(root) {
		return out
	}
	for _, d := range root.Oct {
		if d != nil {
			out = Collect(d, cut, out)
		}
	}
	return out
}

/*
The essential-tree stream format:

    |-- 1 --||-- 2 --||-- ... 3 ... --|

    1 - (int32) Flag indicating the endianness of the stream. 0
        indicates big endian and -1 little endian.
    2 - (int32) Number of cell records.
    3 - (n * cellRecord) Fixed-size cell records in pre-order.
*/

// DefaultEndiannessFlag is written by Write. Streams of either
// endianness can be read.
const DefaultEndiannessFlag int32 = -1

// cellRecord is the wire image of a cell: geometry and propagated
// moments only. Child links and the particle payload never cross
// process boundaries.
type cellRecord struct {
	X, Y, Z, W             float64
	M, MX, MY, MZ          float64
	XX, XY, XZ, YY, YZ, ZZ float64
}

// Write encodes a collected essential tree to w.
func Write(w io.Writer, cells []*tree.Cell) error {
	order := binary.ByteOrder(binary.LittleEndian)
	if err := binary.Write(w, order, DefaultEndiannessFlag); err != nil {
		return err
	}
	if err := binary.Write(w, order, int32(len(cells))); err != nil {
		return err
	}
	for _, c := range cells {
		rec := cellRecord{
			X: c.Center.X, Y: c.Center.Y, Z: c.Center.Z, W: c.Width,
			M: c.M, MX: c.CM.X, MY: c.CM.Y, MZ: c.CM.Z,
			XX: c.Quad.XX, XY: c.Quad.XY, XZ: c.Quad.XZ,
			YY: c.Quad.YY, YZ: c.Quad.YZ, ZZ: c.Quad.ZZ,
		}
		if err := binary.Write(w, order, rec); err != nil {
			return err
		}
	}
	return nil
}

// Read decodes a stream written by Write. The returned cells carry no
// children and no particle payload; hand them to Tree.AddEssentialCell
// in order.
func Read(r io.Reader) ([]*tree.Cell, error) {
	var flag int32
	if err := binary.Read(r, binary.LittleEndian, &flag); err != nil {
		return nil, err
	}

	var order binary.ByteOrder
	switch flag {
	case -1:
		order = binary.LittleEndian
	case 0:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("comm: unrecognized endianness flag %d", flag)
	}

	var n int32
	if err := binary.Read(r, order, &n); err != nil {
		return nil, err
	}

	cells := make([]*tree.Cell, n)
	for i := range cells {
		rec := cellRecord{}
		if err := binary.Read(r, order, &rec); err != nil {
			return nil, err
		}
		cells[i] = &tree.Cell{
			Center: r3.Vec{X: rec.X, Y: rec.Y, Z: rec.Z},
			Width:  rec.W,
			M:      rec.M,
			CM:     r3.Vec{X: rec.MX, Y: rec.MY, Z: rec.MZ},
			Quad: tree.Quad{
				XX: rec.XX, XY: rec.XY, XZ: rec.XZ,
				YY: rec.YY, YZ: rec.YZ, ZZ: rec.ZZ,
			},
		}
	}
	return cells, nil
}

// Queue is an in-memory Transport: it flattens each subtree it is
// handed and buffers the cells for delivery. It is the loopback
// stand-in for a real inter-process transport and the outbound side of
// the per-step essential exchange. Queued cells are wire-equivalent
// copies, geometry and moments only, detached from the source tree,
// so merging them can never mutate the sender's forest.
type Queue struct {
	// Cut prunes the collected subtrees. Nil sends everything.
	Cut CutFunc

	cells []*tree.Cell
}

// Send implements tree.Transport.
func (q *Queue) Send(root int, c *tree.Cell) {
	for _, d := range Collect(c, q.Cut, nil) {
		q.cells = append(q.cells, &tree.Cell{
			Center: d.Center,
			Width:  d.Width,
			M:      d.M,
			CM:     d.CM,
			Quad:   d.Quad,
		})
	}
}

// Drain returns everything queued so far and empties the queue.
func (q *Queue) Drain() []*tree.Cell {
	cells := q.cells
	q.cells = nil
	return cells
}

// Encode writes the queued cells to w and empties the queue.
func (q *Queue) Encode(w io.Writer) error {
	err := Write(w, q.cells)
	q.cells = nil
	return err
}
