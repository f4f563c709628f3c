package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"gopkg.in/gcfg.v1"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/uilianries/rebound"
	rio "github.com/uilianries/rebound/io"
	"github.com/uilianries/rebound/particle"
	"github.com/uilianries/rebound/tree"
)

func main() {
	// The main function manages input sanitization and then drives the
	// per-step tree phases on a randomly seeded particle set. The tree
	// itself never validates anything, so everything user-facing is
	// checked here.

	var (
		config        string
		exampleConfig bool
		steps, count  int
		seed          int64
	)

	flag.StringVar(
		&config, "Config", "",
		"Path to a [Simulation] configuration file.",
	)
	flag.BoolVar(
		&exampleConfig, "ExampleConfig", false,
		"Prints an example configuration file to stdout and exits.",
	)
	flag.IntVar(
		&steps, "Steps", 16,
		"Number of structural update steps to run.",
	)
	flag.IntVar(
		&count, "Particles", 1024,
		"Number of randomly seeded particles.",
	)
	flag.Int64Var(
		&seed, "Seed", 42,
		"Seed for the random particle set.",
	)

	flag.Parse()

	if exampleConfig {
		fmt.Println(rio.ExampleSimulationFile)
		os.Exit(0)
	}
	if config == "" {
		log.Fatal(
			"You must supply a -Config file. Run with -ExampleConfig " +
				"to see the expected format.",
		)
	}

	wrap := rio.DefaultSimulationWrapper()
	if err := gcfg.ReadFileInto(wrap, config); err != nil {
		log.Fatal(err.Error())
	}
	con := &wrap.Simulation

	if !con.ValidRootGrid() {
		log.Fatal("Invalid/non-existent root grid dimensions.")
	} else if !con.ValidBoxSize() {
		log.Fatal("Invalid/non-existent 'BoxSize' value.")
	} else if !con.ValidPartitions() {
		log.Fatal("'Partitions' must be positive and at most the root box count.")
	} else if !con.ValidRank() {
		log.Fatal("'Rank' must be in [0, Partitions).")
	} else if !con.ValidFixedParticles() {
		log.Fatal("'FixedParticles' must be non-negative.")
	}

	if con.ValidLogFile() {
		f, err := os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer f.Close()
		log.SetOutput(f)
	}

	run(con, steps, count, seed)
}

func run(con *rio.SimulationConfig, steps, count int, seed int64) {
	sim := rebound.NewSimulation(con)
	gen := rand.New(rand.NewSource(seed))

	for i := 0; i < count; i++ {
		sim.Add(particle.Particle{
			Pos:  randVec(gen, sim.Grid.Sx, sim.Grid.Sy, sim.Grid.Sz),
			Vel:  randVec(gen, 1, 1, 1),
			Mass: gen.Float64(),
		})
	}

	// A fixed fraction of a root-box crossing per step keeps the
	// maintenance pass busy without emptying whole boxes at once.
	dt := 0.05 * con.BoxSize

	for s := 0; s < steps; s++ {
		sim.Step()

		leaves, mass := 0, 0.0
		for _, c := range sim.Tree.Roots() {
			if c == nil {
				continue
			}
			leaves += countLeaves(c)
			mass += c.M
		}
		log.Printf(
			"step %3d: %d particles, %d leaves, %d live cells, mass %.6g",
			s, sim.Particles.Len(), leaves, sim.Tree.Arena.Live(), mass,
		)

		// Drift. Periodic wrapping is the mover's job, not the tree's.
		for i := 0; i < sim.Particles.Len(); i++ {
			p := &sim.Particles.P[i]
			p.Pos = sim.Grid.Wrap(r3.Add(p.Pos, r3.Scale(dt, p.Vel)))
		}
	}
}

func randVec(gen *rand.Rand, sx, sy, sz float64) r3.Vec {
	return r3.Vec{
		X: (gen.Float64() - 0.5) * sx,
		Y: (gen.Float64() - 0.5) * sy,
		Z: (gen.Float64() - 0.5) * sz,
	}
}

func countLeaves(c *tree.Cell) int {
	if c.Leaf {
		return 1
	}
	n := 0
	for _, d := range c.Oct {
		if d != nil {
			n += countLeaves(d)
		}
	}
	return n
}
