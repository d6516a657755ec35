package mapmodel

import (
	"fmt"
	"image/color"
	"log"
	"sort"

	"sovmap/projection"
)

// OwnerInput is a raw owner record from the external loader.
type OwnerInput struct {
	ID    int
	Name  string
	Color *color.RGBA // nil means "unassigned", filled later by colorassign
	NPC   bool
}

// SystemInput is a raw solar system record from the external loader.
// X, Y, Z are pointers because a missing coordinate (all nil, or any
// nil) makes the system invalid and it is dropped (spec.md P2).
type SystemInput struct {
	ID              int
	Name            string
	ConstellationID int
	RegionID        int
	X, Y, Z         *float64
	HasStation      bool
	SovPower        float32
	OwnerID         *int // nil means unowned
}

// JumpInput is an unordered pair of system ids.
type JumpInput struct {
	From, To int
}

// RegionInput is a raw region record. A missing coordinate means the
// region has no display center and is skipped by label placement.
type RegionInput struct {
	ID      int
	Name    string
	X, Y, Z *float64
}

// ConstellationInput is an optional raw constellation record. Systems
// referencing a constellation id absent from this list get a
// synthesized Constellation with a stringified-id name, mirroring the
// original implementation's default entity naming.
type ConstellationInput struct {
	ID       int
	RegionID int
	Name     string
}

// Graph is the loaded, validated, deduplicated jump graph: owners,
// regions, constellations, systems (already pixel-projected and
// bounds-filtered) and undirected jump adjacency.
type Graph struct {
	Owners         map[int]*Owner
	Regions        map[int]*Region
	Constellations map[int]*Constellation
	Systems        map[int]*SolarSystem
	Jumps          []Jump

	adjacency map[int][]int
}

// LoadReport summarizes recoverable problems encountered while
// building the graph (spec.md §7: InvalidInput/OutOfBounds are
// recovered by dropping the offending item).
type LoadReport struct {
	DroppedDuplicateOwners    int
	DroppedInvalidSystems     int
	DroppedOutOfBoundsSystems int
	DroppedDuplicateSystems   int
	DroppedInvalidJumps       int
	DroppedDuplicateJumps     int
	DroppedInvalidRegions     int
}

// BuildGraph validates and assembles a Graph from raw external
// records, projecting system coordinates with proj and dropping
// systems (and any jumps referencing them) that fall outside the
// raster (spec.md §2 data flow, §4.1, P2/P3).
func BuildGraph(
	owners []OwnerInput,
	systems []SystemInput,
	jumps []JumpInput,
	regions []RegionInput,
	constellations []ConstellationInput,
	proj projection.Config,
) (*Graph, LoadReport, error) {
	if err := proj.Validate(); err != nil {
		return nil, LoadReport{}, err
	}

	g := &Graph{
		Owners:         make(map[int]*Owner),
		Regions:        make(map[int]*Region),
		Constellations: make(map[int]*Constellation),
		Systems:        make(map[int]*SolarSystem),
		adjacency:      make(map[int][]int),
	}
	var report LoadReport

	for _, in := range owners {
		if _, dup := g.Owners[in.ID]; dup {
			report.DroppedDuplicateOwners++
			log.Printf("mapmodel: dropping duplicate owner id %d", in.ID)
			continue
		}
		o := &Owner{ID: in.ID, Name: in.Name, NPC: in.NPC}
		if in.Color != nil {
			o.Color = *in.Color
			o.HasColor = true
		}
		g.Owners[in.ID] = o
	}

	for _, in := range regions {
		if _, dup := g.Regions[in.ID]; dup {
			report.DroppedInvalidRegions++
			log.Printf("mapmodel: dropping duplicate region id %d", in.ID)
			continue
		}
		r := &Region{ID: in.ID, Name: in.Name}
		if in.X != nil && in.Y != nil && in.Z != nil {
			px, py, ok := proj.Project(*in.X, *in.Z)
			if ok {
				r.CenterX, r.CenterY = px, py
				r.HasCenter = true
			}
		}
		g.Regions[in.ID] = r
	}

	for _, in := range constellations {
		g.Constellations[in.ID] = &Constellation{ID: in.ID, RegionID: in.RegionID, Name: in.Name}
	}

	for _, in := range systems {
		if _, dup := g.Systems[in.ID]; dup {
			report.DroppedDuplicateSystems++
			log.Printf("mapmodel: dropping duplicate system id %d", in.ID)
			continue
		}
		if in.X == nil || in.Y == nil || in.Z == nil {
			report.DroppedInvalidSystems++
			log.Printf("mapmodel: dropping system %d: missing coordinate", in.ID)
			continue
		}
		px, py, ok := proj.Project(*in.X, *in.Z)
		if !ok {
			report.DroppedOutOfBoundsSystems++
			log.Printf("mapmodel: dropping system %d: projects to (%d,%d), outside %dx%d raster", in.ID, px, py, proj.Width, proj.Height)
			continue
		}
		if _, ok := g.Constellations[in.ConstellationID]; !ok {
			g.Constellations[in.ConstellationID] = &Constellation{
				ID:       in.ConstellationID,
				RegionID: in.RegionID,
				Name:     fmt.Sprintf("%d", in.ConstellationID),
			}
		}
		ownerID := NoOwner
		if in.OwnerID != nil {
			ownerID = *in.OwnerID
		}
		g.Systems[in.ID] = &SolarSystem{
			ID:              in.ID,
			ConstellationID: in.ConstellationID,
			RegionID:        in.RegionID,
			Name:            in.Name,
			PixelX:          px,
			PixelY:          py,
			HasStation:      in.HasStation,
			SovPower:        in.SovPower,
			OwnerID:         ownerID,
			Influences:      make(map[int]float32),
		}
	}

	seen := make(map[Jump]bool, len(jumps))
	for _, in := range jumps {
		_, fromOK := g.Systems[in.From]
		_, toOK := g.Systems[in.To]
		if !fromOK || !toOK || in.From == in.To {
			report.DroppedInvalidJumps++
			continue
		}
		j := newJump(in.From, in.To)
		if seen[j] {
			report.DroppedDuplicateJumps++
			continue
		}
		seen[j] = true
		g.Jumps = append(g.Jumps, j)
		g.adjacency[j.Lo] = append(g.adjacency[j.Lo], j.Hi)
		g.adjacency[j.Hi] = append(g.adjacency[j.Hi], j.Lo)
	}
	for _, nbs := range g.adjacency {
		sort.Ints(nbs)
	}

	return g, report, nil
}

// Neighbors returns the ids of systems directly reachable from id via
// a single jump, in ascending order.
func (g *Graph) Neighbors(id int) []int {
	return g.adjacency[id]
}
