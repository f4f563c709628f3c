package tree

// AddEssentialCell splices one cell of a remote process's essential
// tree into the local forest. Cells must arrive parents-first: each is
// routed to a root box by its geometric center and grafted at the first
// absent slot along the ordinary octant descent. The incoming child
// slots are cleared unconditionally first: whatever the transport
// payload carried there refers to memory owned by the remote side.
// Moments are trusted as propagated by the owner, never recomputed.
func (t *Tree) AddEssentialCell(node *Cell) {
	t.ensureRoots()
	for o := range node.Oct {
		node.Oct[o] = nil
	}
	root := t.Grid.Idx(node.Center)
	if t.roots[root] == nil {
		t.roots[root] = node
		return
	}
	addEssentialTo(node, t.roots[root])
}

func addEssentialTo(nnode, node *Cell) {
	o := node.Octant(nnode.Center)
	if node.Oct[o] == nil {
		node.Oct[o] = nnode
		return
	}
	addEssentialTo(nnode, node.Oct[o])
}

// PrepareEssentialTrees hands every locally owned root subtree to the
// transport for outbound delivery and clears last step's foreign shells
// out of the non-owned slots. Foreign cells are discarded, not released
// into the local arena: their lifetime belongs to whoever delivered
// them. Runs after UpdateMoments and before any AddEssentialCell calls
// for the new step.
func (t *Tree) PrepareEssentialTrees(tr Transport) {
	t.ensureRoots()
	for root, c := range t.roots {
		if t.owns(root) {
			tr.Send(root, c)
		} else {
			t.roots[root] = nil
		}
	}
}
