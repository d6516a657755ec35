// Package labels computes owner-region label placements: for each
// (region, owner) pair, the largest 4-connected component of pixels
// that pair controls, its pixel count, and a representative centroid
// (spec.md §4.6).
package labels

import (
	"sort"

	"sovmap/mapmodel"
)

// MinArea is the default smallest component worth labeling.
const MinArea = 10

// Label is one emitted owner/region placement.
type Label struct {
	OwnerID    int
	RegionID   int
	CentroidX  int
	CentroidY  int
	PixelCount int
}

// Compute derives labels from a rendered owner-id buffer. regionOf
// assigns every pixel to the region whose center is nearest (a small
// Voronoi over region centers; regions without a center never win).
// minArea is the smallest component size to keep; callers typically
// pass MinArea.
func Compute(ownerIDs []int32, width, height int, regions map[int]*mapmodel.Region, minArea int) []Label {
	regionRaster := voronoiRegions(width, height, regions)

	type key struct{ owner, region int }
	visited := make([]bool, width*height)
	best := make(map[key]component)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if visited[idx] {
				continue
			}
			ownerID := int(ownerIDs[idx])
			if ownerID == mapmodel.NoOwner {
				visited[idx] = true
				continue
			}
			regionID, hasRegion := regionRaster[idx]
			if !hasRegion {
				visited[idx] = true
				continue
			}
			comp := floodFill(ownerIDs, regionRaster, visited, width, height, x, y, ownerID, regionID)
			k := key{ownerID, regionID}
			if comp.count > best[k].count {
				best[k] = comp
			}
		}
	}

	var out []Label
	for k, c := range best {
		if c.count < minArea {
			continue
		}
		cx, cy := clampCentroid(c)
		out = append(out, Label{OwnerID: k.owner, RegionID: k.region, CentroidX: cx, CentroidY: cy, PixelCount: c.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PixelCount != out[j].PixelCount {
			return out[i].PixelCount > out[j].PixelCount
		}
		if out[i].RegionID != out[j].RegionID {
			return out[i].RegionID < out[j].RegionID
		}
		return out[i].OwnerID < out[j].OwnerID
	})
	return out
}

// voronoiRegions assigns every pixel to the id of its nearest region
// center, skipping regions with no center. With the small region
// counts sovereignty maps have, a per-pixel nearest-center scan is
// cheap enough.
func voronoiRegions(width, height int, regions map[int]*mapmodel.Region) map[int]int {
	var centers []*mapmodel.Region
	for _, r := range regions {
		if r.HasCenter {
			centers = append(centers, r)
		}
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i].ID < centers[j].ID })

	out := make(map[int]int, width*height)
	if len(centers) == 0 {
		return out
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			best := centers[0]
			bestDist := distSq(x, y, best.CenterX, best.CenterY)
			for _, r := range centers[1:] {
				d := distSq(x, y, r.CenterX, r.CenterY)
				if d < bestDist {
					bestDist = d
					best = r
				}
			}
			out[y*width+x] = best.ID
		}
	}
	return out
}

func distSq(x, y, cx, cy int) int {
	dx := x - cx
	dy := y - cy
	return dx*dx + dy*dy
}

type component struct {
	count int
	sumX  int
	sumY  int
	xs    []int
	ys    []int
}

func floodFill(ownerIDs []int32, regionRaster map[int]int, visited []bool, width, height, startX, startY, ownerID, regionID int) component {
	stack := [][2]int{{startX, startY}}
	var comp component
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := p[0], p[1]
		idx := y*width + x
		if visited[idx] {
			continue
		}
		if int(ownerIDs[idx]) != ownerID || regionRaster[idx] != regionID {
			continue
		}
		visited[idx] = true
		comp.count++
		comp.sumX += x
		comp.sumY += y
		comp.xs = append(comp.xs, x)
		comp.ys = append(comp.ys, y)

		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= width || ny >= height {
				continue
			}
			nidx := ny*width + nx
			if visited[nidx] {
				continue
			}
			if int(ownerIDs[nidx]) != ownerID {
				continue
			}
			if r, ok := regionRaster[nidx]; !ok || r != regionID {
				continue
			}
			stack = append(stack, [2]int{nx, ny})
		}
	}
	return comp
}

// clampCentroid returns the integer mean of a component's pixels,
// snapped to the nearest member pixel if the mean itself falls
// outside the component (possible for concave or ring-shaped
// components).
func clampCentroid(c component) (int, int) {
	meanX := c.sumX / c.count
	meanY := c.sumY / c.count
	for i := range c.xs {
		if c.xs[i] == meanX && c.ys[i] == meanY {
			return meanX, meanY
		}
	}
	bestI := 0
	bestDist := -1
	for i := range c.xs {
		dx := c.xs[i] - meanX
		dy := c.ys[i] - meanY
		d := dx*dx + dy*dy
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestI = i
		}
	}
	return c.xs[bestI], c.ys[bestI]
}
