// Package owner implements per-pixel dominant-owner selection and
// alpha mapping, including the diagonal-stripe change overlay used
// when a prior owner snapshot is loaded (spec.md §4.4).
package owner

import (
	"image/color"
	"sort"

	"sovmap/influence"
	"sovmap/mapmodel"
)

// EpsilonPixel is the threshold an owner's accumulated influence must
// exceed for that owner to be considered present at a pixel at all.
const EpsilonPixel = 0.01

// Pixel is the fully-resolved output for one sample cell: the RGBA
// color to paint, the owner id to record in the owner-id buffer, and,
// when ownership changed since a loaded snapshot, the old owner's
// color for the diagonal stripe. The renderer applies the stripe
// per-pixel while filling the cell, since within one sample cell the
// diagonal parity alternates but the dominant owner does not.
type Pixel struct {
	OwnerID  int
	Color    color.RGBA
	Striped  bool
	OldColor color.RGBA
}

// Empty is the result for a pixel with no influence from any owner.
func Empty() Pixel {
	return Pixel{OwnerID: mapmodel.NoOwner, Color: color.RGBA{}}
}

// Resolve picks the dominant owner at a sample cell from its
// accumulated per-owner influence and maps that influence to an alpha
// channel. If the cell's ownership changed since a previously loaded
// snapshot, the result carries the old owner's color and the renderer
// stripes the two colors diagonally.
//
// NPC owners are excluded from the dominant-owner vote unless every
// non-zero influence at the cell belongs to an NPC owner.
func Resolve(infl map[int]float32, owners map[int]*mapmodel.Owner, oldOwnerID int, fns influence.Functions) (Pixel, error) {
	best, bestVal, ok := pickOwner(infl, owners, false)
	if !ok {
		best, bestVal, ok = pickOwner(infl, owners, true)
	}
	if !ok {
		return Empty(), nil
	}

	alpha, err := fns.CallInfluenceToAlpha(bestVal)
	if err != nil {
		return Pixel{}, err
	}

	winner := owners[best]
	p := Pixel{
		OwnerID: best,
		Color:   color.RGBA{R: winner.Color.R, G: winner.Color.G, B: winner.Color.B, A: alpha},
	}

	if oldOwnerID != mapmodel.NoOwner && oldOwnerID != best {
		if old, present := owners[oldOwnerID]; present {
			p.Striped = true
			p.OldColor = color.RGBA{R: old.Color.R, G: old.Color.G, B: old.Color.B, A: alpha}
		}
	}

	return p, nil
}

// ColorAt returns the color to paint at raster position (x, y): the
// dominant owner's color on even diagonals, the old owner's on odd
// ones when the cell is striped.
func (p Pixel) ColorAt(x, y int) color.RGBA {
	if p.Striped && (x+y)%2 != 0 {
		return p.OldColor
	}
	return p.Color
}

// pickOwner returns the argmax owner id (ties broken ascending) among
// owners whose influence exceeds EpsilonPixel, optionally allowing NPC
// owners into consideration.
func pickOwner(infl map[int]float32, owners map[int]*mapmodel.Owner, allowNPC bool) (id int, val float32, ok bool) {
	var ids []int
	for ownerID, v := range infl {
		if v <= EpsilonPixel {
			continue
		}
		o, present := owners[ownerID]
		if present && o.NPC && !allowNPC {
			continue
		}
		ids = append(ids, ownerID)
	}
	if len(ids) == 0 {
		return 0, 0, false
	}
	sort.Ints(ids)
	best := ids[0]
	bestVal := infl[best]
	for _, candidate := range ids[1:] {
		if infl[candidate] > bestVal {
			best = candidate
			bestVal = infl[candidate]
		}
	}
	return best, bestVal, true
}
