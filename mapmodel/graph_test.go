package mapmodel

import (
	"image/color"
	"testing"

	"sovmap/projection"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

// mockInputs mirrors original_source/test/mock_data.py: six in-bounds
// systems (100-105), one out-of-bounds (106), one with no coordinates
// (107), plus jumps that reference the invalid systems.
func mockInputs() ([]OwnerInput, []SystemInput, []JumpInput, []RegionInput) {
	owners := []OwnerInput{
		{ID: 1, Name: "Alliance Red", Color: &color.RGBA{R: 255, A: 255}},
		{ID: 2, Name: "Alliance Green", Color: &color.RGBA{G: 255, A: 255}},
		{ID: 3, Name: "Alliance Blue", Color: &color.RGBA{B: 255, A: 255}},
		{ID: 4, Name: "Alliance Yellow", Color: &color.RGBA{R: 255, G: 255, A: 255}},
	}
	systems := []SystemInput{
		{ID: 100, Name: "System A", ConstellationID: 10, RegionID: 1, X: f64(0), Y: f64(0), Z: f64(0), HasStation: true, SovPower: 5, OwnerID: intp(1)},
		{ID: 101, Name: "System B", ConstellationID: 10, RegionID: 1, X: f64(1), Y: f64(0), Z: f64(1), SovPower: 3, OwnerID: intp(2)},
		{ID: 102, Name: "System C", ConstellationID: 11, RegionID: 1, X: f64(2), Y: f64(0), Z: f64(2), HasStation: true, SovPower: 4, OwnerID: intp(3)},
		{ID: 103, Name: "System D", ConstellationID: 11, RegionID: 2, X: f64(3), Y: f64(0), Z: f64(3), SovPower: 2, OwnerID: intp(1)},
		{ID: 104, Name: "System E", ConstellationID: 12, RegionID: 2, X: f64(4), Y: f64(0), Z: f64(4), HasStation: true, SovPower: 6, OwnerID: intp(4)},
		{ID: 105, Name: "System F", ConstellationID: 12, RegionID: 2, X: f64(5), Y: f64(0), Z: f64(0), SovPower: 2, OwnerID: intp(3)},
		// System outside the raster under this projection config.
		{ID: 106, Name: "System G", ConstellationID: 12, RegionID: 2, X: f64(5000), Y: f64(0), Z: f64(0), SovPower: 2, OwnerID: intp(3)},
		{ID: 107, Name: "System H", ConstellationID: 12, RegionID: 2, X: nil, Y: nil, Z: nil, SovPower: 2, OwnerID: intp(3)},
	}
	jumps := []JumpInput{
		{100, 101}, {101, 102}, {102, 103}, {103, 104}, {104, 105}, {105, 100},
		{100, 102}, {101, 103}, {102, 104}, {103, 105}, {104, 100}, {105, 101},
		{100, 106}, {106, 107}, {107, 100},
	}
	regions := []RegionInput{
		{ID: 1, Name: "Region Alpha", X: f64(0), Y: f64(0), Z: f64(0)},
		{ID: 2, Name: "Region Beta", X: f64(4), Y: f64(0), Z: f64(4)},
		{ID: 3, Name: "Region Gamma", X: f64(5000), Y: f64(0), Z: f64(0)},
		{ID: 4, Name: "Region Delta", X: nil, Y: nil, Z: nil},
	}
	return owners, systems, jumps, regions
}

func mockProjection() projection.Config {
	return projection.Config{Width: 128, Height: 128, OffsetX: -32, OffsetY: -32, Scale: 1.0 / 16.0, SampleRate: 8}
}

func TestBuildGraphFiltersOutOfBounds(t *testing.T) {
	owners, systems, jumps, regions := mockInputs()
	g, report, err := BuildGraph(owners, systems, jumps, regions, nil, mockProjection())
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	if len(g.Systems) != 6 {
		t.Errorf("want 6 in-bounds systems, got %d", len(g.Systems))
	}
	if _, ok := g.Systems[106]; ok {
		t.Error("system 106 (out of bounds) should have been dropped")
	}
	if _, ok := g.Systems[107]; ok {
		t.Error("system 107 (no coordinates) should have been dropped")
	}
	if report.DroppedOutOfBoundsSystems != 1 {
		t.Errorf("want 1 out-of-bounds drop, got %d", report.DroppedOutOfBoundsSystems)
	}
	if report.DroppedInvalidSystems != 1 {
		t.Errorf("want 1 invalid-coordinate drop, got %d", report.DroppedInvalidSystems)
	}

	// Jumps touching 106/107 must be dropped (P3: dedup & bounds).
	for _, j := range g.Jumps {
		if j.Lo == 106 || j.Hi == 106 || j.Lo == 107 || j.Hi == 107 {
			t.Errorf("jump %+v should have been dropped, references an out-of-bounds system", j)
		}
	}
	if len(g.Jumps) != 12 {
		t.Errorf("want 12 surviving undirected jumps, got %d", len(g.Jumps))
	}

	// Region 3 projects out of bounds -> no center; region 4 has no coordinates -> no center.
	if g.Regions[3].HasCenter {
		t.Error("region 3 projects out of bounds and should have no center")
	}
	if g.Regions[4].HasCenter {
		t.Error("region 4 has no coordinates and should have no center")
	}
	if !g.Regions[1].HasCenter {
		t.Error("region 1 should have a center")
	}
}

func TestBuildGraphDedupesJumps(t *testing.T) {
	owners, systems, _, regions := mockInputs()
	jumps := []JumpInput{{100, 101}, {101, 100}, {100, 101}}
	g, report, err := BuildGraph(owners, systems, jumps, regions, nil, mockProjection())
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(g.Jumps) != 1 {
		t.Errorf("want 1 deduplicated jump, got %d", len(g.Jumps))
	}
	if report.DroppedDuplicateJumps != 2 {
		t.Errorf("want 2 duplicate jumps dropped, got %d", report.DroppedDuplicateJumps)
	}
	if len(g.Neighbors(100)) != 1 || g.Neighbors(100)[0] != 101 {
		t.Errorf("want system 100 adjacent only to 101, got %v", g.Neighbors(100))
	}
}

func TestBuildGraphInvalidProjection(t *testing.T) {
	cfg := projection.Config{Width: 127, Height: 128, SampleRate: 8}
	_, _, err := BuildGraph(nil, nil, nil, nil, nil, cfg)
	if err != projection.ErrInvalidSampleRate {
		t.Fatalf("want ErrInvalidSampleRate, got %v", err)
	}
}
