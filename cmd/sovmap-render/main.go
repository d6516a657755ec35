// cmd/sovmap-render renders a sovereignty influence map from a JSON
// data file to a PNG image.
//
// Usage:
//
//	go run ./cmd/sovmap-render --data map.json --out sov.png
//	go run ./cmd/sovmap-render --data map.json --out sov.png --old-owners prev.snap
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"sovmap/loader"
	"sovmap/sovereignty"
)

var (
	dataPath      = flag.String("data", "", "path to the JSON map data file")
	outPath       = flag.String("out", "out/sovmap.png", "PNG output path")
	width         = flag.Int("width", 1024, "raster width in pixels")
	height        = flag.Int("height", 1024, "raster height in pixels")
	offsetX       = flag.Float64("offset-x", 0, "projection x offset")
	offsetY       = flag.Float64("offset-y", 0, "projection y offset")
	scale         = flag.Float64("scale", 1, "projection scale")
	sampleRate    = flag.Int("sample-rate", 8, "influence sampling cell size in pixels")
	threadCount   = flag.Int("threads", 4, "render worker count")
	oldOwnersPath = flag.String("old-owners", "", "optional owner snapshot to diff against (enables change striping)")
	snapshotOut   = flag.String("snapshot-out", "", "optional path to write the new owner snapshot")
	compress      = flag.Bool("compress", true, "run-length compress the written snapshot")
)

func main() {
	flag.Parse()
	if *dataPath == "" {
		log.Fatal("sovmap-render: --data is required")
	}

	if err := run(); err != nil {
		log.Fatalf("sovmap-render: %v", err)
	}
}

func run() error {
	f, err := os.Open(*dataPath)
	if err != nil {
		return fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	owners, systems, jumps, regions, constellations, err := loader.Decode(f)
	if err != nil {
		return err
	}

	m := sovereignty.New(*width, *height)
	if err := m.SetProjection(*offsetX, *offsetY, *scale, *sampleRate, 0); err != nil {
		return fmt.Errorf("configuring projection: %w", err)
	}
	if err := m.SetThreadCount(*threadCount); err != nil {
		return fmt.Errorf("configuring thread count: %w", err)
	}

	report, err := m.LoadData(owners, systems, jumps, regions, constellations)
	if err != nil {
		return fmt.Errorf("loading map data: %w", err)
	}
	log.Printf("sovmap-render: loaded data, dropped %d out-of-bounds, %d invalid, %d duplicate systems",
		report.DroppedOutOfBoundsSystems, report.DroppedInvalidSystems, report.DroppedDuplicateSystems)

	if *oldOwnersPath != "" {
		if err := m.LoadOldOwnerSnapshotFile(*oldOwnersPath); err != nil {
			return fmt.Errorf("loading old owner snapshot: %w", err)
		}
	}

	res, err := m.Render()
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	if *snapshotOut != "" {
		if err := m.SaveOwnerSnapshotFile(*snapshotOut, *compress); err != nil {
			return fmt.Errorf("saving owner snapshot: %w", err)
		}
	}

	ls, err := m.Labels()
	if err != nil {
		return fmt.Errorf("computing labels: %w", err)
	}
	for _, l := range ls {
		log.Printf("label: owner=%d region=%d centroid=(%d,%d) count=%d", l.OwnerID, l.RegionID, l.CentroidX, l.CentroidY, l.PixelCount)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	img := &image.RGBA{Pix: res.RGBA, Stride: *width * 4, Rect: image.Rect(0, 0, *width, *height)}
	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}
