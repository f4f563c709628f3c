// Package io handles configuration files for the tree code. Config
// files are gcfg/ini formatted, one [Simulation] section per run.
package io

import (
	"gopkg.in/gcfg.v1"
)

const ExampleSimulationFile = `[Simulation]

#######################
# Required Parameters #
#######################

# Root-box grid dimensions. The periodic domain is tiled by
# RootNx * RootNy * RootNz boxes, each owning one octree.
RootNx = 2
RootNy = 2
RootNz = 2

# Width of a single root box, in simulation units. The domain spans
# BoxSize * RootNx along x (and likewise for y, z), centered on the
# origin.
BoxSize = 10.0

#######################
# Optional Parameters #
#######################

# Maintain the quadrupole tensor of every cell in addition to the
# monopole moments. Costs six extra accumulations per cell per step and
# is only worth it for stricter force-accuracy criteria.
# Quadrupole = true

# Distributed runs only: the number of processes sharing the root boxes
# and this process's rank. Root boxes are dealt out in contiguous
# slices. Defaults to a single-process run.
# Partitions = 4
# Rank = 0

# Particles with indices below this threshold keep their slot in the
# particle store when they migrate between cells. Use it for massive
# central bodies that external bookkeeping refers to by index.
# FixedParticles = 1

# Output file which is useful for profiling and debugging. Generally,
# there isn't a reason to use it unless something goes wrong.
# LogFile = log.out`

// SimulationConfig mirrors a [Simulation] config section.
type SimulationConfig struct {
	// Required
	RootNx, RootNy, RootNz int
	BoxSize                float64

	// Optional
	Quadrupole     bool
	Partitions     int
	Rank           int
	FixedParticles int
	LogFile        string
}

// SimulationWrapper names the section for gcfg.
type SimulationWrapper struct {
	Simulation SimulationConfig
}

// DefaultSimulationWrapper returns a wrapper with the optional
// parameters at their defaults.
func DefaultSimulationWrapper() *SimulationWrapper {
	con := SimulationConfig{}
	con.Partitions = 1
	return &SimulationWrapper{con}
}

// ReadSimulationConfig reads a [Simulation] config file into a
// defaulted wrapper.
func ReadSimulationConfig(fname string) (*SimulationConfig, error) {
	wrap := DefaultSimulationWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	return &wrap.Simulation, nil
}

func (con *SimulationConfig) ValidRootGrid() bool {
	return con.RootNx > 0 && con.RootNy > 0 && con.RootNz > 0
}
func (con *SimulationConfig) ValidBoxSize() bool {
	return con.BoxSize > 0
}
func (con *SimulationConfig) ValidPartitions() bool {
	return con.Partitions > 0 &&
		con.Partitions <= con.RootNx*con.RootNy*con.RootNz
}
func (con *SimulationConfig) ValidRank() bool {
	return con.Rank >= 0 && con.Rank < con.Partitions
}
func (con *SimulationConfig) ValidFixedParticles() bool {
	return con.FixedParticles >= 0
}
func (con *SimulationConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
