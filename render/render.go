// Package render implements the parallel column-striped renderer: it
// walks the raster one sample cell at a time, accumulates per-owner
// influence from nearby systems, resolves the dominant owner, and
// writes the RGBA and owner-id buffers. Worker stripes touch disjoint
// memory, so the result is deterministic regardless of how many
// stripes are used (spec.md §4.5, P1, P5).
package render

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"sovmap/influence"
	"sovmap/mapmodel"
	"sovmap/owner"
	"sovmap/spatial"
)

// Options configures a single render pass.
type Options struct {
	Width, Height   int
	SampleRate      int
	ThreadCount     int
	Functions       influence.Functions
	InfluenceConfig influence.Config
	// OldOwnerIDs is an optional width*height buffer from a previously
	// loaded snapshot (mapmodel.NoOwner where absent), used to drive
	// the change-overlay stripe (spec.md §4.4 step 6).
	OldOwnerIDs []int32
}

// Result holds the two buffers produced by a render: the RGBA image
// and the parallel owner-id buffer (spec.md I4).
type Result struct {
	RGBA     []byte
	OwnerIDs []int32
}

// ErrInvalidDimensions reports a raster size not evenly divisible by
// the sample rate (spec.md I5).
var ErrInvalidDimensions = fmt.Errorf("render: width and height must be positive multiples of sample_rate")

// Render partitions the raster into column stripes of whole sample
// cells, one per worker, and renders each stripe independently. The
// first error raised by any caller-supplied function (via opts.Functions)
// is returned after every worker has finished its stripe.
func Render(g *mapmodel.Graph, owners map[int]*mapmodel.Owner, opts Options) (*Result, error) {
	if opts.SampleRate <= 0 || opts.Width <= 0 || opts.Height <= 0 ||
		opts.Width%opts.SampleRate != 0 || opts.Height%opts.SampleRate != 0 {
		return nil, ErrInvalidDimensions
	}
	threadCount := opts.ThreadCount
	if threadCount <= 0 {
		threadCount = 1
	}

	grid := buildSpatialIndex(g, opts)

	res := &Result{
		RGBA:     make([]byte, opts.Width*opts.Height*4),
		OwnerIDs: make([]int32, opts.Width*opts.Height),
	}
	for i := range res.OwnerIDs {
		res.OwnerIDs[i] = mapmodel.NoOwner
	}

	cols := opts.Width / opts.SampleRate
	rows := opts.Height / opts.SampleRate
	if threadCount > cols {
		threadCount = cols
	}
	cellsPerThread := ceilDiv(cols, threadCount)

	eg, _ := errgroup.WithContext(context.Background())
	for t := 0; t < threadCount; t++ {
		startCell := t * cellsPerThread
		if startCell >= cols {
			break
		}
		endCell := startCell + cellsPerThread
		if endCell > cols {
			endCell = cols
		}
		eg.Go(func() error {
			return renderStripe(g, owners, opts, grid, res, startCell, endCell, rows)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func buildSpatialIndex(g *mapmodel.Graph, opts Options) *spatial.Grid {
	cfg := opts.InfluenceConfig
	if cfg.RadiusK <= 0 {
		cfg.RadiusK = influence.RadiusKForSampleRate(opts.SampleRate)
	}
	var points []spatial.Point
	for _, sys := range g.Systems {
		r := influence.SystemRadius(sys, cfg)
		if r <= 0 {
			continue
		}
		points = append(points, spatial.Point{ID: sys.ID, X: sys.PixelX, Y: sys.PixelY, Radius: r})
	}
	return spatial.Build(points, opts.Width, opts.Height, opts.SampleRate)
}

func renderStripe(g *mapmodel.Graph, owners map[int]*mapmodel.Owner, opts Options, grid *spatial.Grid, res *Result, startCell, endCell, rows int) error {
	for cellY := 0; cellY < rows; cellY++ {
		for cellX := startCell; cellX < endCell; cellX++ {
			px := cellX*opts.SampleRate + opts.SampleRate/2
			py := cellY*opts.SampleRate + opts.SampleRate/2

			infl := accumulateInfluence(g, grid, px, py)

			oldOwnerID := mapmodel.NoOwner
			if opts.OldOwnerIDs != nil {
				oldOwnerID = int(opts.OldOwnerIDs[py*opts.Width+px])
			}

			pixel, err := owner.Resolve(infl, owners, oldOwnerID, opts.Functions)
			if err != nil {
				return err
			}

			fillCell(res, opts, cellX, cellY, pixel)
		}
	}
	return nil
}

func accumulateInfluence(g *mapmodel.Graph, grid *spatial.Grid, px, py int) map[int]float32 {
	infl := make(map[int]float32)
	for _, cand := range grid.Query(px, py) {
		if cand.Radius <= 0 {
			continue
		}
		dx := float64(px - cand.X)
		dy := float64(py - cand.Y)
		distSq := dx*dx + dy*dy
		if distSq > cand.Radius*cand.Radius {
			continue
		}
		dist := math.Sqrt(distSq)
		fall := falloffXY(dist, cand.Radius)
		sys, ok := g.Systems[cand.ID]
		if !ok {
			continue
		}
		for ownerID, v := range sys.Influences {
			infl[ownerID] += v * float32(fall)
		}
	}
	return infl
}

// falloffXY is the quadratic spatial falloff from spec.md §4.3:
// max(0, 1 - d/r)^2.
func falloffXY(dist, radius float64) float64 {
	f := 1 - dist/radius
	if f < 0 {
		return 0
	}
	return f * f
}

// fillCell expands one resolved sample cell to full resolution. The
// owner id and alpha are uniform across the cell; the color alternates
// on the diagonal when the cell's ownership changed since a loaded
// snapshot, so the stripe stays one pixel wide no matter the sample
// rate.
func fillCell(res *Result, opts Options, cellX, cellY int, pixel owner.Pixel) {
	x0 := cellX * opts.SampleRate
	y0 := cellY * opts.SampleRate
	for y := y0; y < y0+opts.SampleRate; y++ {
		rowOff := y * opts.Width
		for x := x0; x < x0+opts.SampleRate; x++ {
			idx := rowOff + x
			res.OwnerIDs[idx] = int32(pixel.OwnerID)
			c := pixel.ColorAt(x, y)
			o := idx * 4
			res.RGBA[o] = c.R
			res.RGBA[o+1] = c.G
			res.RGBA[o+2] = c.B
			res.RGBA[o+3] = c.A
		}
	}
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
