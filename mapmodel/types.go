// Package mapmodel holds the sovereignty map's graph of owners,
// regions, constellations, solar systems, and jumps, along with the
// loader that builds it from raw external records.
package mapmodel

import "image/color"

// NoOwner is the sentinel owner id meaning "unowned".
const NoOwner = -1

// Owner is an alliance or corporation that may hold sovereignty over
// zero or more systems.
type Owner struct {
	ID       int
	Name     string
	Color    color.RGBA
	HasColor bool // false until assigned, either at load or by colorassign
	NPC      bool
}

// Region is a coarse grouping of constellations with an optional
// display center used for label placement.
type Region struct {
	ID        int
	Name      string
	CenterX   int
	CenterY   int
	HasCenter bool
}

// Constellation groups solar systems within a region.
type Constellation struct {
	ID       int
	RegionID int
	Name     string
}

// SolarSystem is a node in the jump graph.
type SolarSystem struct {
	ID              int
	ConstellationID int
	RegionID        int
	Name            string
	PixelX, PixelY  int
	HasStation      bool
	SovPower        float32
	OwnerID         int // NoOwner if unowned
	Influences      map[int]float32
}

// Owned reports whether the system currently belongs to an owner.
func (s *SolarSystem) Owned() bool {
	return s.OwnerID != NoOwner
}

// Jump is an undirected edge between two systems, canonicalized so
// Lo <= Hi for deduplication purposes.
type Jump struct {
	Lo, Hi int
}

func newJump(a, b int) Jump {
	if a <= b {
		return Jump{Lo: a, Hi: b}
	}
	return Jump{Lo: b, Hi: a}
}
