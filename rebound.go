/*
Package rebound ties a particle store and an octree forest together
into a process-local simulation that advances in the fixed phase order
the tree requires: build, maintain, propagate moments, and, in
distributed runs, exchange essential trees. Force evaluation, time
integration, and collision detection consume the resulting forest but
live outside this module.
*/
package rebound

import (
	"github.com/uilianries/rebound/comm"
	"github.com/uilianries/rebound/geom"
	"github.com/uilianries/rebound/io"
	"github.com/uilianries/rebound/particle"
	"github.com/uilianries/rebound/tree"
)

// Simulation owns the process-local state: the particle store, the
// root-box grid, and the forest over it.
type Simulation struct {
	Particles *particle.Store
	Grid      *geom.RootGrid
	Tree      *tree.Tree

	// Transport receives owned subtrees each step. Nil outside
	// distributed runs.
	Transport tree.Transport

	pending []int
}

// NewSimulation assembles a simulation from a validated config.
func NewSimulation(con *io.SimulationConfig) *Simulation {
	grid := geom.NewRootGrid(con.RootNx, con.RootNy, con.RootNz, con.BoxSize)
	store := particle.NewStore(con.FixedParticles)

	var part tree.Partition
	if con.Partitions > 1 {
		part = comm.Partition{
			Boxes: grid.Len(), Size: con.Partitions, Rank: con.Rank,
		}
	}

	t := tree.New(store, grid, tree.Options{
		Quadrupole: con.Quadrupole,
		Partition:  part,
	})

	return &Simulation{Particles: store, Grid: grid, Tree: t}
}

// Add queues a particle for insertion at the start of the next step and
// returns its slot in the store.
func (s *Simulation) Add(p particle.Particle) int {
	i := s.Particles.Add(p)
	s.pending = append(s.pending, i)
	return i
}

// Step runs one structural update of the forest: newly added particles
// are inserted, the structure is maintained under particle motion,
// moments are propagated, and in distributed runs owned subtrees go to
// the transport while last step's foreign shells are cleared. The
// forest Step leaves behind is what a force walk consumes, after any
// received essential cells are merged in.
func (s *Simulation) Step() {
	for _, i := range s.pending {
		s.Tree.Insert(i)
	}
	s.pending = s.pending[:0]

	s.Tree.Update()
	s.Tree.UpdateMoments()

	if s.Transport != nil {
		s.Tree.PrepareEssentialTrees(s.Transport)
	}
}

// Merge splices received essential cells, parents before children, into
// the forest. Their moments were propagated by their owner and are
// trusted as-is.
func (s *Simulation) Merge(cells []*tree.Cell) {
	for _, c := range cells {
		s.Tree.AddEssentialCell(c)
	}
}
