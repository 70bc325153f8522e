package eyedropper

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"cardforge/pkg/colorutil"
	"cardforge/pkg/geometry"
)

func TestLoupePlace(t *testing.T) {
	l := DefaultLoupe()
	tests := []struct {
		name    string
		pointer geometry.Point2D
		width   float64
		want    geometry.Point2D
	}{
		{"above pointer", geometry.NewPoint2D(200, 300), 400, geometry.NewPoint2D(145, 150)},
		{"left margin", geometry.NewPoint2D(10, 300), 400, geometry.NewPoint2D(8, 150)},
		{"right margin", geometry.NewPoint2D(395, 300), 400, geometry.NewPoint2D(282, 150)},
		{"flips below near the top", geometry.NewPoint2D(200, 100), 400, geometry.NewPoint2D(145, 150)},
		{"flips below at the very top", geometry.NewPoint2D(200, 20), 400, geometry.NewPoint2D(145, 70)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Place(tt.pointer, tt.width))
		})
	}
}

func TestLoupeRender(t *testing.T) {
	l := DefaultLoupe()
	colors := make([]colorutil.Hex, l.Grid*l.Grid)
	for i := range colors {
		colors[i] = "#336699"
	}
	colors[len(colors)/2] = "#ff8800"

	img := l.Render(colors)
	assert.Equal(t, l.Size, img.Bounds().Dx())
	assert.Equal(t, l.Size, img.Bounds().Dy())

	assert.Equal(t, color.NRGBA{0xff, 0x88, 0x00, 0xff}, img.NRGBAAt(55, 55))
	assert.Equal(t, color.NRGBA{0x33, 0x66, 0x99, 0xff}, img.NRGBAAt(30, 55))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0), "corners masked")

	// Centre cell ring: white just inside the edge, black just outside.
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(49, 55))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, img.NRGBAAt(47, 55))
}

func TestLoupeNormalizesGrid(t *testing.T) {
	l := Loupe{Size: 60, Grid: 4}.normalized()
	assert.Equal(t, 5, l.Grid)
	assert.Equal(t, DefaultLoupeSpacing, l.Spacing)
}
