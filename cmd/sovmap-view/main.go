// cmd/sovmap-view renders a sovereignty map and displays it in an
// interactive ebiten window, with the system/jump/label overlay toggled
// on top.
//
// Usage:
//
//	go run ./cmd/sovmap-view --data map.json
//	go run ./cmd/sovmap-view --data map.json --screenshot 30
//
// Controls:
//
//	O: Toggle the system/jump/label overlay
//	ESC: Exit
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"sovmap/loader"
	"sovmap/overlay"
	"sovmap/sovereignty"
)

var (
	dataPath    = flag.String("data", "", "path to the JSON map data file")
	width       = flag.Int("width", 1024, "raster width in pixels")
	height      = flag.Int("height", 1024, "raster height in pixels")
	offsetX     = flag.Float64("offset-x", 0, "projection x offset")
	offsetY     = flag.Float64("offset-y", 0, "projection y offset")
	scale       = flag.Float64("scale", 1, "projection scale")
	sampleRate  = flag.Int("sample-rate", 8, "influence sampling cell size in pixels")
	threadCount = flag.Int("threads", 4, "render worker count")
	screenshot  = flag.Int("screenshot", 0, "capture screenshot at frame N and exit (0=disabled)")
	output      = flag.String("output", "out/sovmap-view.png", "screenshot output path")
)

type viewGame struct {
	base        *ebiten.Image
	overlay     *ebiten.Image
	showOverlay bool

	frameCount int
	captured   bool
}

func newViewGame() (*viewGame, error) {
	f, err := os.Open(*dataPath)
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	owners, systems, jumps, regions, constellations, err := loader.Decode(f)
	if err != nil {
		return nil, err
	}

	m := sovereignty.New(*width, *height)
	if err := m.SetProjection(*offsetX, *offsetY, *scale, *sampleRate, 0); err != nil {
		return nil, fmt.Errorf("configuring projection: %w", err)
	}
	if err := m.SetThreadCount(*threadCount); err != nil {
		return nil, fmt.Errorf("configuring thread count: %w", err)
	}
	if _, err := m.LoadData(owners, systems, jumps, regions, constellations); err != nil {
		return nil, fmt.Errorf("loading map data: %w", err)
	}

	res, err := m.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering: %w", err)
	}
	ls, err := m.Labels()
	if err != nil {
		return nil, fmt.Errorf("computing labels: %w", err)
	}

	base := ebiten.NewImageFromImage(&image.RGBA{
		Pix: res.RGBA, Stride: *width * 4, Rect: image.Rect(0, 0, *width, *height),
	})

	fm, err := overlay.NewFontManager()
	if err != nil {
		return nil, fmt.Errorf("loading label font: %w", err)
	}
	layer := overlay.NewLayer(*width, *height)
	layer.DrawJumps(m.Graph(), color.RGBA{R: 80, G: 80, B: 80, A: 180})
	layer.DrawSystems(m.Graph(), m.Graph().Owners, color.RGBA{R: 150, G: 150, B: 150, A: 255})
	if err := layer.DrawLabels(fm, ls, m.Graph().Owners, 14, color.RGBA{R: 255, G: 255, B: 255, A: 255}); err != nil {
		return nil, fmt.Errorf("drawing labels: %w", err)
	}

	return &viewGame{
		base:        base,
		overlay:     ebiten.NewImageFromImage(layer.Image),
		showOverlay: true,
	}, nil
}

func (g *viewGame) Update() error {
	g.frameCount++
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.showOverlay = !g.showOverlay
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return errors.New("exit requested")
	}
	if *screenshot > 0 && g.frameCount >= *screenshot && !g.captured {
		g.captured = true
		if err := g.saveScreenshot(); err != nil {
			log.Printf("sovmap-view: screenshot failed: %v", err)
		} else {
			fmt.Printf("screenshot saved to %s\n", *output)
		}
		return errors.New("screenshot complete")
	}
	return nil
}

func (g *viewGame) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.base, nil)
	if g.showOverlay {
		screen.DrawImage(g.overlay, nil)
	}
}

func (g *viewGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return *width, *height
}

func (g *viewGame) saveScreenshot() error {
	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, g.base)
}

func main() {
	flag.Parse()
	if *dataPath == "" {
		log.Fatal("sovmap-view: --data is required")
	}

	game, err := newViewGame()
	if err != nil {
		log.Fatalf("sovmap-view: %v", err)
	}

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Sovereignty Map Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && err.Error() != "exit requested" && err.Error() != "screenshot complete" {
		log.Fatal(err)
	}
}
