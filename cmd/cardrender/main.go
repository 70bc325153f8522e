// Command cardrender renders a saved card project to PNG without a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"cardforge/internal/card"
	imgpkg "cardforge/internal/image"
	"cardforge/internal/project"
	"cardforge/internal/scene"
	"cardforge/internal/viewport"
	"cardforge/pkg/geometry"
)

func main() {
	projectPath := flag.String("project", "", "Path to a .cardproj file")
	outDir := flag.String("out", ".", "Output directory")
	assetDir := flag.String("assets", "assets", "Asset library directory")
	ratio := flag.Float64("ratio", card.DefaultPixelRatio, "Device pixel ratio of the export")
	flag.Parse()

	if *projectPath == "" {
		fmt.Println("Usage: cardrender -project <file.cardproj> [-out dir] [-assets dir] [-ratio 2]")
		os.Exit(1)
	}

	proj, err := project.Load(*projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
		os.Exit(1)
	}
	c := proj.Card
	fmt.Printf("Project: %s (card %q)\n", proj.Name, c.Name)

	lib := imgpkg.NewLibrary(*assetDir)
	view := fittedView(c, lib)
	fmt.Printf("Image: %s at %.0f,%.0f scale %.3f\n", c.Image, view.Transform.X, view.Transform.Y, view.Transform.Scale)

	layout := card.Build(c, lib, geometry.Point2D{}, view)
	path, err := card.Export(context.Background(), scene.NewRenderer(), layout.Root, c.Name, *outDir, *ratio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}

	abs, _ := filepath.Abs(path)
	fmt.Printf("Wrote %s\n", abs)
}

// fittedView measures the character image the way the editor does, so the
// saved transform is clamped against the same cover scale.
func fittedView(c *card.Card, lib *imgpkg.Library) card.ImageView {
	iv := card.ImageView{Transform: c.Transform}
	a, err := lib.Load(c.Image)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: character image unavailable: %v\n", err)
		return iv
	}

	v := viewport.New(viewport.Options{})
	defer v.Dispose()
	area := card.ImageArea(geometry.Point2D{})
	v.OnImageLoaded(a.Size().Width, a.Size().Height, area.Width, area.Height)
	v.Restore(c.Transform)
	iv.Transform = v.Transform()
	return iv
}
