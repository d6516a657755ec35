// Package spatial provides a uniform grid spatial index over 2D
// points with per-point radii, used to answer "which systems can
// influence this pixel cell" queries during rendering without
// scanning every system for every cell.
//
// This is the flat-grid analogue of an octree for the 2D, fixed-radius
// case: instead of recursively subdividing a volume the way an octree
// does for an unbounded 3D point cloud, every system is inserted once
// into each grid cell its influence radius overlaps, which is cheap
// because cell size equals the render's sample rate and systems don't
// move between renders.
package spatial

// Point is a system's projected pixel center and influence radius.
type Point struct {
	ID      int
	X, Y    int
	Radius  float64
}

// Grid buckets points into cells of side CellSize. It is built once
// per render from immutable inputs and is read-only afterwards, so
// concurrent Query calls from multiple render workers are safe.
type Grid struct {
	CellSize      int
	width, height int
	cols, rows    int
	cells         map[int][]Point
}

// Build constructs a grid over a raster of the given size, binning
// each point into every cell its bounding square (center +/- Radius)
// overlaps.
func Build(points []Point, width, height, cellSize int) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &Grid{
		CellSize: cellSize,
		width:    width,
		height:   height,
		cols:     ceilDiv(width, cellSize),
		rows:     ceilDiv(height, cellSize),
		cells:    make(map[int][]Point),
	}
	for _, p := range points {
		minCX, minCY := g.cellOf(p.X-int(p.Radius), p.Y-int(p.Radius))
		maxCX, maxCY := g.cellOf(p.X+int(p.Radius), p.Y+int(p.Radius))
		for cy := minCY; cy <= maxCY; cy++ {
			for cx := minCX; cx <= maxCX; cx++ {
				idx := g.index(cx, cy)
				if idx < 0 {
					continue
				}
				g.cells[idx] = append(g.cells[idx], p)
			}
		}
	}
	return g
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func (g *Grid) cellOf(px, py int) (int, int) {
	cx := px / g.CellSize
	if px < 0 {
		cx = -1
	}
	cy := py / g.CellSize
	if py < 0 {
		cy = -1
	}
	return clamp(cx, 0, g.cols-1), clamp(cy, 0, g.rows-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *Grid) index(cx, cy int) int {
	if cx < 0 || cy < 0 || cx >= g.cols || cy >= g.rows {
		return -1
	}
	return cy*g.cols + cx
}

// Query returns the candidate points whose radius may reach the pixel
// cell containing (px, py). Callers still need an exact distance
// check since a point is stored in every cell its bounding box
// touches, which is a superset of the cells its circle touches.
func (g *Grid) Query(px, py int) []Point {
	cx, cy := g.cellOf(px, py)
	return g.cells[g.index(cx, cy)]
}
