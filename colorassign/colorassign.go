// Package colorassign synthesizes a distinct display color for each
// owner that doesn't already have one, favoring colors that are as
// different as possible from every color already in use.
package colorassign

import (
	"image/color"
	"math"
	"sort"

	"sovmap/mapmodel"
)

// Assign fills in a color for every entry in owners that has none,
// choosing each new color to maximize its minimum RGB distance to
// every color already assigned (existing and newly picked alike).
// Owners are processed in ascending id order so results are
// deterministic regardless of map iteration order.
func Assign(owners map[int]*mapmodel.Owner) {
	var ids []int
	for id, o := range owners {
		if !o.HasColor {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	if len(ids) == 0 {
		return
	}

	palette := existingColors(owners)
	if len(palette) == 0 {
		palette = append(palette, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	}

	for _, id := range ids {
		c := farthestFrom(palette)
		owners[id].Color = c
		owners[id].HasColor = true
		palette = append(palette, c)
	}
}

func existingColors(owners map[int]*mapmodel.Owner) []color.RGBA {
	var ids []int
	for id, o := range owners {
		if o.HasColor {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	cs := make([]color.RGBA, 0, len(ids))
	for _, id := range ids {
		cs = append(cs, owners[id].Color)
	}
	return cs
}

// candidateLevels defines the colors considered when looking for the
// next farthest-from-palette choice: every combination of these
// component levels, which is coarse enough to be cheap but fine
// enough to spread owners apart visibly.
var candidateLevels = [...]uint8{32, 96, 160, 224}

func farthestFrom(palette []color.RGBA) color.RGBA {
	best := color.RGBA{A: 255}
	bestDist := -1.0
	for _, r := range candidateLevels {
		for _, g := range candidateLevels {
			for _, b := range candidateLevels {
				c := color.RGBA{R: r, G: g, B: b, A: 255}
				d := minDistance(c, palette)
				if d > bestDist {
					bestDist = d
					best = c
				}
			}
		}
	}
	return best
}

func minDistance(c color.RGBA, palette []color.RGBA) float64 {
	min := math.MaxFloat64
	for _, p := range palette {
		d := rgbDistance(c, p)
		if d < min {
			min = d
		}
	}
	return min
}

func rgbDistance(a, b color.RGBA) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
