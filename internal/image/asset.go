// Package image provides asset loading, caching and blend compositing.
package image

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"cardforge/pkg/geometry"
)

// Format names the on-disk encoding of an asset.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatWebP
	FormatTIFF
	FormatBMP
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatGIF:
		return "GIF"
	case FormatWebP:
		return "WebP"
	case FormatTIFF:
		return "TIFF"
	case FormatBMP:
		return "BMP"
	default:
		return "Unknown"
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".gif":
		return FormatGIF
	case ".webp":
		return FormatWebP
	case ".tif", ".tiff":
		return FormatTIFF
	case ".bmp":
		return FormatBMP
	default:
		return FormatUnknown
	}
}

// Asset is one decoded image file.
type Asset struct {
	Path   string      // Path the asset was loaded from
	Image  image.Image // Decoded pixels, EXIF orientation applied
	Format Format
}

// Load decodes an image file, applying EXIF orientation.
func Load(path string) (*Asset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return Decode(file, path)
}

// Decode decodes an image from r. name is only used for the path and format.
func Decode(r io.Reader, name string) (*Asset, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Asset{
		Path:   name,
		Image:  img,
		Format: FormatFromPath(name),
	}, nil
}

// Width returns the image width in pixels.
func (a *Asset) Width() int {
	if a.Image == nil {
		return 0
	}
	return a.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (a *Asset) Height() int {
	if a.Image == nil {
		return 0
	}
	return a.Image.Bounds().Dy()
}

// Size returns the natural image dimensions.
func (a *Asset) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(a.Width()),
		Height: float64(a.Height()),
	}
}

// PixelAt returns the colour at the pixel, or transparent outside the image.
func (a *Asset) PixelAt(x, y int) color.NRGBA {
	if a.Image == nil {
		return color.NRGBA{}
	}
	b := a.Image.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if !p.In(b) {
		return color.NRGBA{}
	}
	return color.NRGBAModel.Convert(a.Image.At(p.X, p.Y)).(color.NRGBA)
}

// Thumbnail returns the asset scaled to fit within size×size.
func (a *Asset) Thumbnail(size int) image.Image {
	if a.Image == nil || size <= 0 {
		return a.Image
	}
	return imaging.Fit(a.Image, size, size, imaging.Lanczos)
}
