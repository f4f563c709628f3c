// Package comm provides the distributed-run collaborators around the
// octree forest: the root-box partition, collection of essential cells,
// and the binary codec that ships them between processes. Actual
// delivery (and its failure modes) belongs to whatever carries the
// bytes; this package assumes each step's shells arrive complete before
// they are merged.
package comm

// Partition assigns contiguous slices of root-box indices to ranks.
// Boxes are dealt out ceil(Boxes/Size) per rank, so an uneven division
// leaves no box unowned; the last rank simply owns fewer.
type Partition struct {
	Boxes int // total number of root boxes
	Size  int // number of ranks
	Rank  int // this process's rank
}

func (p Partition) perRank() int {
	return (p.Boxes + p.Size - 1) / p.Size
}

// Owner returns the rank that owns the given root box.
func (p Partition) Owner(root int) int {
	return root / p.perRank()
}

// Owns reports whether this process owns the given root box.
func (p Partition) Owns(root int) bool {
	return p.Owner(root) == p.Rank
}
