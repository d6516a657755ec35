// Package overlay draws the system-dot, jump-line, and owner-label
// layer on top of a rendered sovereignty image. It is kept separate
// from the core renderer because it draws onto its own transparent
// image.RGBA layer rather than mutating the render's output buffer
// (spec.md §1: "an overlay of system dots and jump lines" is an
// auxiliary artifact, not part of the pixel-owner core).
package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"sovmap/labels"
	"sovmap/mapmodel"
)

// FontManager loads the embedded label font once and hands out faces
// at whatever size callers need, the way the teacher's asset loader
// caches sized faces instead of reparsing the font file per draw call.
type FontManager struct {
	parsed *opentype.Font
	faces  map[float64]font.Face
}

// NewFontManager parses the embedded Go Mono font for label text.
func NewFontManager() (*FontManager, error) {
	tt, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	return &FontManager{parsed: tt, faces: make(map[float64]font.Face)}, nil
}

// FaceAt returns a cached face at the given point size, creating and
// caching it on first use.
func (fm *FontManager) FaceAt(points float64) (font.Face, error) {
	if f, ok := fm.faces[points]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	fm.faces[points] = f
	return f, nil
}

// Layer is a transparent drawing surface sized to match a render.
type Layer struct {
	Image *image.RGBA
}

// NewLayer creates a fully transparent layer of the given size.
func NewLayer(width, height int) *Layer {
	return &Layer{Image: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// DrawJumps draws every jump in the graph as a thin line between its
// two systems' pixel positions.
func (l *Layer) DrawJumps(g *mapmodel.Graph, col color.RGBA) {
	for _, j := range g.Jumps {
		a, aok := g.Systems[j.Lo]
		b, bok := g.Systems[j.Hi]
		if !aok || !bok {
			continue
		}
		drawLine(l.Image, a.PixelX, a.PixelY, b.PixelX, b.PixelY, col)
	}
}

// DrawSystems draws a small filled square at every system's pixel
// position, colored by its owner (or neutralColor if unowned).
func (l *Layer) DrawSystems(g *mapmodel.Graph, owners map[int]*mapmodel.Owner, neutralColor color.RGBA) {
	for _, s := range g.Systems {
		c := neutralColor
		if s.Owned() {
			if o, ok := owners[s.OwnerID]; ok {
				c = o.Color
			}
		}
		drawDot(l.Image, s.PixelX, s.PixelY, 2, c)
	}
}

// DrawLabels draws each label's owner name centered on its centroid.
func (l *Layer) DrawLabels(fm *FontManager, ls []labels.Label, owners map[int]*mapmodel.Owner, points float64, textColor color.RGBA) error {
	face, err := fm.FaceAt(points)
	if err != nil {
		return err
	}
	for _, lb := range ls {
		o, ok := owners[lb.OwnerID]
		if !ok {
			continue
		}
		drawText(l.Image, face, o.Name, lb.CentroidX, lb.CentroidY, textColor)
	}
	return nil
}

func drawText(dst *image.RGBA, face font.Face, s string, cx, cy int, col color.RGBA) {
	bounds, _ := font.BoundString(face, s)
	width := (bounds.Max.X - bounds.Min.X).Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(cx-width/2, cy),
	}
	d.DrawString(s)
}

func drawDot(dst *image.RGBA, cx, cy, radius int, col color.RGBA) {
	rect := image.Rect(cx-radius, cy-radius, cx+radius+1, cy+radius+1).Intersect(dst.Bounds())
	draw.Draw(dst, rect, image.NewUniform(col), image.Point{}, draw.Src)
}

// drawLine is a Bresenham rasterizer; the overlay only ever draws thin
// single-pixel jump lines so no anti-aliasing is needed.
func drawLine(dst *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	bounds := dst.Bounds()
	for {
		if (image.Point{x0, y0}).In(bounds) {
			dst.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
