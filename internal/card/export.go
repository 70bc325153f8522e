package card

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"cardforge/internal/visual"
)

// DefaultPixelRatio is the export resolution multiplier.
const DefaultPixelRatio = 2.0

// fallbackFileName is used when nothing usable is left of the card name.
const fallbackFileName = "carta"

var (
	unsafeChars = regexp.MustCompile(`(?i)[^a-z0-9\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// FileName derives the export file name from the card name.
func FileName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "")
	s = whitespace.ReplaceAllString(s, "_")
	s = strings.ToLower(s)
	if strings.Trim(s, "_") == "" {
		s = fallbackFileName
	}
	return s + ".png"
}

// Render snapshots root at the given pixel ratio, sized to its bounds
// rounded up.
func Render(ctx context.Context, snap visual.Snapshotter, root visual.Node, ratio float64) (image.Image, error) {
	if ratio <= 0 {
		ratio = DefaultPixelRatio
	}
	b := root.Bounds()
	img, err := snap.RenderToImage(ctx, root, visual.SnapshotOptions{
		PixelRatio: ratio,
		Origin:     b.TopLeft(),
		Width:      math.Ceil(b.Width),
		Height:     math.Ceil(b.Height),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render card: %w", err)
	}
	return img, nil
}

// Export renders root and writes it as a PNG named after the card into dir.
// The file only appears once it is complete.
func Export(ctx context.Context, snap visual.Snapshotter, root visual.Node, name, dir string, ratio float64) (string, error) {
	img, err := Render(ctx, snap, root, ratio)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write PNG: %w", err)
	}

	path := filepath.Join(dir, FileName(name))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to save PNG: %w", err)
	}
	return path, nil
}
