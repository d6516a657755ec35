package influence

import (
	"math"
	"sort"

	"sovmap/mapmodel"
)

// Config tunes the two phases of diffusion. The exact defaults are not
// pinned by any authoritative reference and are documented as an open
// decision in DESIGN.md; callers with a reference dataset to match
// should override them explicitly.
type Config struct {
	// HopCap bounds how many jumps Phase A will traverse from any one
	// seed system, regardless of remaining power.
	HopCap int
	// EpsilonFraction * P0 is the per-seed cutoff: once the power
	// remaining at a hop falls below this (or EpsilonFloor, whichever
	// is larger), that branch of the traversal stops expanding.
	EpsilonFraction float32
	EpsilonFloor    float32
	// RadiusK scales a system's pixel influence radius: r = RadiusK *
	// sqrt(maxInfluence). Zero or negative means the renderer derives
	// it from its sample rate via RadiusKForSampleRate, so the radius
	// tracks the sampling grid the raster is actually walked at.
	RadiusK float64
}

// DefaultConfig returns the default tuning: an 8-hop cap, a
// 0.5% (floor 0.001) power cutoff, and a sample-rate-derived radius.
func DefaultConfig() Config {
	return Config{
		HopCap:          8,
		EpsilonFraction: 0.005,
		EpsilonFloor:    0.001,
	}
}

// RadiusKForSampleRate picks K so that a system with max influence 6
// gets a radius of about 20 sample-rate cells, matching how far a
// single owned system's sovereignty visibly reaches on screen.
func RadiusKForSampleRate(sampleRate int) float64 {
	if sampleRate <= 0 {
		sampleRate = 1
	}
	return 20 * float64(sampleRate) / math.Sqrt(6)
}

// CalculateSystemInfluence runs Phase A: for every system with an
// owner and positive sovereignty power, breadth-first traverses the
// jump graph and accumulates power into every reachable system's
// Influences map, keyed by owner id. Traversal order is deterministic
// (ascending system id within each hop level) regardless of how the
// graph's adjacency lists happen to be ordered, so repeated runs over
// the same graph always produce identical results.
func CalculateSystemInfluence(g *mapmodel.Graph, fns Functions, cfg Config) error {
	for _, s := range g.Systems {
		s.Influences = make(map[int]float32)
	}

	var seedIDs []int
	for id, s := range g.Systems {
		if s.OwnerID != mapmodel.NoOwner && s.SovPower > 0 {
			seedIDs = append(seedIDs, id)
		}
	}
	sort.Ints(seedIDs)

	for _, seedID := range seedIDs {
		seed := g.Systems[seedID]
		p0, err := fns.callSovPower(seed.SovPower, seed.ID, seed.OwnerID)
		if err != nil {
			return err
		}
		if p0 <= 0 {
			continue
		}
		epsilon := cfg.EpsilonFraction * p0
		if epsilon < cfg.EpsilonFloor {
			epsilon = cfg.EpsilonFloor
		}

		visited := map[int]bool{seedID: true}
		level := []int{seedID}
		for hop := 0; len(level) > 0 && hop <= cfg.HopCap; hop++ {
			var next []int
			for _, nodeID := range level {
				val, err := fns.callPowerFalloff(p0, hop, nodeID)
				if err != nil {
					return err
				}
				if val < epsilon {
					continue
				}
				g.Systems[nodeID].Influences[seed.OwnerID] += val
				if hop == cfg.HopCap {
					continue
				}
				for _, nb := range g.Neighbors(nodeID) {
					if !visited[nb] {
						visited[nb] = true
						next = append(next, nb)
					}
				}
			}
			sort.Ints(next)
			level = next
		}
	}
	return nil
}

// SystemRadius computes the pixel radius a system's influence should
// spread over during Phase B, based on the strongest influence value
// recorded on that system (spec.md §4.3: r(s) = K * sqrt(max_influence(s))).
func SystemRadius(s *mapmodel.SolarSystem, cfg Config) float64 {
	var max float32
	for _, v := range s.Influences {
		if v > max {
			max = v
		}
	}
	if max <= 0 {
		return 0
	}
	return cfg.RadiusK * math.Sqrt(float64(max))
}
