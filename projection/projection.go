// Package projection converts 3D system coordinates into the map's 2D
// pixel raster using a simple affine scale+offset transform.
package projection

import (
	"fmt"
	"math"
)

// Config describes the affine projection from the x/z plane of a 3D
// coordinate onto the raster. y is vertical in the source data and is
// never used by the projection.
type Config struct {
	Width, Height int
	OffsetX       float64
	OffsetY       float64
	Scale         float64
	SampleRate    int
}

// ErrInvalidSampleRate is returned by Validate when SampleRate does not
// evenly divide both Width and Height (spec invariant I5).
var ErrInvalidSampleRate = fmt.Errorf("projection: sample rate must evenly divide width and height")

// Validate checks the size invariants required before rendering:
// width/height must be positive and evenly divisible by SampleRate.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("projection: width and height must be positive, got %dx%d", c.Width, c.Height)
	}
	rate := c.SampleRate
	if rate <= 0 {
		rate = 1
	}
	if c.Width%rate != 0 || c.Height%rate != 0 {
		return ErrInvalidSampleRate
	}
	return nil
}

// Project maps a system's x/z coordinate to integer pixel coordinates.
// ok is false if the projected point falls outside [0,Width)x[0,Height).
func (c Config) Project(x, z float64) (px, py int, ok bool) {
	px = int(math.Round(x*c.Scale + float64(c.Width)/2 + c.OffsetX))
	py = int(math.Round(z*c.Scale + float64(c.Height)/2 + c.OffsetY))
	ok = px >= 0 && px < c.Width && py >= 0 && py < c.Height
	return px, py, ok
}

// SampleRateOrOne returns SampleRate, defaulting to 1 when unset.
func (c Config) SampleRateOrOne() int {
	if c.SampleRate <= 0 {
		return 1
	}
	return c.SampleRate
}

// AutoScale derives Scale from a reference extent (the largest
// coordinate magnitude the caller expects to plot) so that the full
// extent just fits the shorter raster dimension. This is the "caller
// requests update_size with auto-derived scale" path from spec.md
// §4.1; callers who want an explicit scale should set Scale directly
// afterwards, since setting Scale is documented to always win if set
// last.
func (c *Config) AutoScale(referenceExtent float64) {
	if referenceExtent <= 0 {
		return
	}
	shortest := c.Width
	if c.Height < shortest {
		shortest = c.Height
	}
	c.Scale = float64(shortest) / (2 * referenceExtent)
}
