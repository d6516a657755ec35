// Package loader defines the JSON wire format for the external data
// source (spec.md §6's data-in contract: owners, systems, jumps,
// regions) and converts it into mapmodel's raw input types. The
// database/file loader itself is an external collaborator; this
// package only owns the shape of the data crossing that boundary.
package loader

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"

	"sovmap/mapmodel"
)

// Document is the top-level JSON shape consumed by cmd/sovmap-render.
type Document struct {
	Owners         []OwnerJSON         `json:"owners"`
	Systems        []SystemJSON        `json:"systems"`
	Jumps          []JumpJSON          `json:"jumps"`
	Regions        []RegionJSON        `json:"regions"`
	Constellations []ConstellationJSON `json:"constellations"`
}

type OwnerJSON struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color *RGBA  `json:"color"`
	NPC   bool   `json:"npc"`
}

type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

type SystemJSON struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	ConstellationID int      `json:"constellation_id"`
	RegionID        int      `json:"region_id"`
	X               *float64 `json:"x"`
	Y               *float64 `json:"y"`
	Z               *float64 `json:"z"`
	HasStation      bool     `json:"has_station"`
	SovPower        float32  `json:"sov_power"`
	OwnerID         *int     `json:"owner_id"`
}

type JumpJSON struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type RegionJSON struct {
	ID   int      `json:"id"`
	Name string   `json:"name"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Z    *float64 `json:"z"`
}

type ConstellationJSON struct {
	ID       int    `json:"id"`
	RegionID int    `json:"region_id"`
	Name     string `json:"name"`
}

// Decode reads a Document from r and converts it into mapmodel's raw
// input slices, ready for mapmodel.BuildGraph.
func Decode(r io.Reader) ([]mapmodel.OwnerInput, []mapmodel.SystemInput, []mapmodel.JumpInput, []mapmodel.RegionInput, []mapmodel.ConstellationInput, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("loader: decode: %w", err)
	}

	owners := make([]mapmodel.OwnerInput, len(doc.Owners))
	for i, o := range doc.Owners {
		owners[i] = mapmodel.OwnerInput{ID: o.ID, Name: o.Name, NPC: o.NPC, Color: toColor(o.Color)}
	}

	systems := make([]mapmodel.SystemInput, len(doc.Systems))
	for i, s := range doc.Systems {
		systems[i] = mapmodel.SystemInput{
			ID: s.ID, Name: s.Name, ConstellationID: s.ConstellationID, RegionID: s.RegionID,
			X: s.X, Y: s.Y, Z: s.Z, HasStation: s.HasStation, SovPower: s.SovPower, OwnerID: s.OwnerID,
		}
	}

	jumps := make([]mapmodel.JumpInput, len(doc.Jumps))
	for i, j := range doc.Jumps {
		jumps[i] = mapmodel.JumpInput{From: j.From, To: j.To}
	}

	regions := make([]mapmodel.RegionInput, len(doc.Regions))
	for i, r := range doc.Regions {
		regions[i] = mapmodel.RegionInput{ID: r.ID, Name: r.Name, X: r.X, Y: r.Y, Z: r.Z}
	}

	constellations := make([]mapmodel.ConstellationInput, len(doc.Constellations))
	for i, c := range doc.Constellations {
		constellations[i] = mapmodel.ConstellationInput{ID: c.ID, RegionID: c.RegionID, Name: c.Name}
	}

	return owners, systems, jumps, regions, constellations, nil
}

func toColor(c *RGBA) *color.RGBA {
	if c == nil {
		return nil
	}
	return &color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
