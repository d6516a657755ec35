package colorassign

import (
	"image/color"
	"testing"

	"sovmap/mapmodel"
)

func TestAssignLeavesExistingColorsUntouched(t *testing.T) {
	owners := map[int]*mapmodel.Owner{
		1: {ID: 1, Color: color.RGBA{R: 10, G: 20, B: 30, A: 255}, HasColor: true},
		2: {ID: 2},
	}
	Assign(owners)

	if owners[1].Color != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("existing color should not change, got %v", owners[1].Color)
	}
	if !owners[2].HasColor {
		t.Error("owner 2 should have been assigned a color")
	}
}

func TestAssignPicksDistinctColors(t *testing.T) {
	owners := map[int]*mapmodel.Owner{
		1: {ID: 1},
		2: {ID: 2},
		3: {ID: 3},
	}
	Assign(owners)
	for id, o := range owners {
		if !o.HasColor {
			t.Errorf("owner %d missing a color after Assign", id)
		}
	}
	if owners[1].Color == owners[2].Color || owners[2].Color == owners[3].Color || owners[1].Color == owners[3].Color {
		t.Errorf("expected distinct colors, got %v %v %v", owners[1].Color, owners[2].Color, owners[3].Color)
	}
}

func TestAssignIsDeterministic(t *testing.T) {
	build := func() map[int]*mapmodel.Owner {
		return map[int]*mapmodel.Owner{
			1: {ID: 1}, 2: {ID: 2}, 3: {ID: 3}, 4: {ID: 4},
		}
	}
	a := build()
	b := build()
	Assign(a)
	Assign(b)
	for id := range a {
		if a[id].Color != b[id].Color {
			t.Errorf("owner %d color differs across runs: %v vs %v", id, a[id].Color, b[id].Color)
		}
	}
}
