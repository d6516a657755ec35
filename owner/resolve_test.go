package owner

import (
	"image/color"
	"testing"

	"sovmap/influence"
	"sovmap/mapmodel"
)

func testOwners() map[int]*mapmodel.Owner {
	return map[int]*mapmodel.Owner{
		1: {ID: 1, Color: color.RGBA{R: 255, A: 255}},
		2: {ID: 2, Color: color.RGBA{G: 255, A: 255}},
		3: {ID: 3, Color: color.RGBA{B: 255, A: 255}, NPC: true},
	}
}

func TestResolveEmptyPixel(t *testing.T) {
	p, err := Resolve(map[int]float32{}, testOwners(), mapmodel.NoOwner, influence.DefaultFunctions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.OwnerID != mapmodel.NoOwner || p.Color != (color.RGBA{}) {
		t.Errorf("expected empty pixel, got %+v", p)
	}
}

func TestResolvePicksArgmaxBreakingTiesByID(t *testing.T) {
	infl := map[int]float32{2: 5, 1: 5}
	p, err := Resolve(infl, testOwners(), mapmodel.NoOwner, influence.DefaultFunctions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.OwnerID != 1 {
		t.Errorf("tie should break to lowest owner id, got %d", p.OwnerID)
	}
}

func TestResolveExcludesNPCUnlessSoleInfluence(t *testing.T) {
	infl := map[int]float32{3: 50, 2: 1}
	p, err := Resolve(infl, testOwners(), mapmodel.NoOwner, influence.DefaultFunctions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.OwnerID != 2 {
		t.Errorf("NPC owner should lose to a non-NPC despite lower influence, got %d", p.OwnerID)
	}

	onlyNPC := map[int]float32{3: 50}
	p2, err := Resolve(onlyNPC, testOwners(), mapmodel.NoOwner, influence.DefaultFunctions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p2.OwnerID != 3 {
		t.Errorf("NPC should win when it's the only influence present, got %d", p2.OwnerID)
	}
}

func TestResolveStripesChangedOwnership(t *testing.T) {
	infl := map[int]float32{1: 10}
	p, err := Resolve(infl, testOwners(), 2, influence.DefaultFunctions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !p.Striped {
		t.Fatal("a cell whose owner changed must be marked striped")
	}
	if p.OwnerID != 1 {
		t.Errorf("owner-id buffer must record the new owner on striped cells, got %d", p.OwnerID)
	}

	even := p.ColorAt(0, 0) // x+y=0, even
	if even.R != 255 || even.G != 0 {
		t.Errorf("even diagonal should show the new owner's color, got %+v", even)
	}
	odd := p.ColorAt(0, 1) // x+y=1, odd
	if odd.G != 255 || odd.R != 0 {
		t.Errorf("odd diagonal should show the old owner's color, got %+v", odd)
	}
	if even.A != odd.A {
		t.Errorf("both stripe colors must share the same alpha, got %d and %d", even.A, odd.A)
	}
}

func TestResolveUnchangedOwnershipIsNotStriped(t *testing.T) {
	infl := map[int]float32{1: 10}
	p, err := Resolve(infl, testOwners(), 1, influence.DefaultFunctions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Striped {
		t.Error("same old and new owner should not stripe")
	}
	if p.ColorAt(0, 1) != p.Color {
		t.Error("unstriped cells paint the owner color on every diagonal")
	}
}

func TestResolveIgnoresBelowThresholdInfluence(t *testing.T) {
	infl := map[int]float32{1: EpsilonPixel / 2}
	p, err := Resolve(infl, testOwners(), mapmodel.NoOwner, influence.DefaultFunctions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.OwnerID != mapmodel.NoOwner {
		t.Errorf("influence below epsilon should be treated as empty, got %+v", p)
	}
}
