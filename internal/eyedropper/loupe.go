package eyedropper

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"cardforge/pkg/colorutil"
	"cardforge/pkg/geometry"
)

const (
	DefaultLoupeSize    = 110
	DefaultLoupeGrid    = 9
	DefaultLoupeSpacing = 3.0

	loupeMargin = 8.0
	loupeLift   = 40.0
	loupeDrop   = 50.0
)

var (
	gridLine   = color.NRGBA{255, 255, 255, 38}
	ringInner  = color.NRGBA{255, 255, 255, 255}
	ringOuter  = color.NRGBA{0, 0, 0, 255}
	loupeClear = color.NRGBA{}
)

// Loupe is a circular magnifier showing a grid of samples around the pointer.
type Loupe struct {
	Size    int     // Canvas edge in pixels
	Grid    int     // Cells per side, odd
	Spacing float64 // Page units between sampled points
}

// DefaultLoupe returns a 110px loupe sampling 9×9 points 3 units apart.
func DefaultLoupe() Loupe {
	return Loupe{Size: DefaultLoupeSize, Grid: DefaultLoupeGrid, Spacing: DefaultLoupeSpacing}
}

// normalized fills in defaults and forces an odd grid.
func (l Loupe) normalized() Loupe {
	if l.Size <= 0 {
		l.Size = DefaultLoupeSize
	}
	if l.Grid <= 0 {
		l.Grid = DefaultLoupeGrid
	}
	if l.Grid%2 == 0 {
		l.Grid++
	}
	if l.Spacing <= 0 {
		l.Spacing = DefaultLoupeSpacing
	}
	return l
}

// LoupeView is one rendered loupe frame.
type LoupeView struct {
	Image  *image.NRGBA
	Center colorutil.Hex
	Colors []colorutil.Hex
}

// Sample fills the loupe grid from the sampler and renders it. The centre
// cell is the sample at exactly (x, y).
func (l Loupe) Sample(s *Sampler, x, y float64) LoupeView {
	l = l.normalized()
	colors := s.SampleGrid(x, y, l.Grid, l.Spacing)
	return LoupeView{
		Image:  l.Render(colors),
		Center: colors[len(colors)/2],
		Colors: colors,
	}
}

// cellRect returns the pixel rectangle of a grid cell.
func (l Loupe) cellRect(col, row int) image.Rectangle {
	cell := float64(l.Size) / float64(l.Grid)
	x0 := int(math.Round(float64(col) * cell))
	y0 := int(math.Round(float64(row) * cell))
	x1 := int(math.Round(float64(col+1) * cell))
	y1 := int(math.Round(float64(row+1) * cell))
	return image.Rect(x0, y0, x1, y1)
}

// Render draws colors (row-major, Grid×Grid) as filled cells with a faint
// grid, a double ring around the centre cell and a circular mask.
func (l Loupe) Render(colors []colorutil.Hex) *image.NRGBA {
	l = l.normalized()
	img := image.NewNRGBA(image.Rect(0, 0, l.Size, l.Size))

	for row := 0; row < l.Grid; row++ {
		for col := 0; col < l.Grid; col++ {
			i := row*l.Grid + col
			c := colorutil.White
			if i < len(colors) {
				c = colors[i].NRGBA()
			}
			draw.Draw(img, l.cellRect(col, row), image.NewUniform(c), image.Point{}, draw.Src)
		}
	}

	for i := 1; i < l.Grid; i++ {
		edge := l.cellRect(i, i).Min
		draw.Draw(img, image.Rect(edge.X, 0, edge.X+1, l.Size), image.NewUniform(gridLine), image.Point{}, draw.Over)
		draw.Draw(img, image.Rect(0, edge.Y, l.Size, edge.Y+1), image.NewUniform(gridLine), image.Point{}, draw.Over)
	}

	half := l.Grid / 2
	centre := l.cellRect(half, half)
	strokeRect(img, centre.Inset(-1), 3, ringInner)
	strokeRect(img, centre.Inset(-2), 1, ringOuter)

	maskCircle(img)
	return img
}

// strokeRect draws a border of width w inside r.
func strokeRect(img *image.NRGBA, r image.Rectangle, w int, c color.NRGBA) {
	src := image.NewUniform(c)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
		image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(img, edge.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

// maskCircle clears pixels outside the inscribed circle.
func maskCircle(img *image.NRGBA) {
	b := img.Bounds()
	cx := float64(b.Dx()) / 2
	cy := float64(b.Dy()) / 2
	r := math.Min(cx, cy)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy > r*r {
				img.SetNRGBA(x, y, loupeClear)
			}
		}
	}
}

// Place returns the top-left corner for the loupe on a view of the given
// width: centred above the pointer, kept 8 units from the sides, and flipped
// below the pointer when it would leave the top.
func (l Loupe) Place(pointer geometry.Point2D, viewWidth float64) geometry.Point2D {
	l = l.normalized()
	size := float64(l.Size)

	left := pointer.X - size/2
	if left < loupeMargin {
		left = loupeMargin
	}
	if left+size > viewWidth-loupeMargin {
		left = viewWidth - size - loupeMargin
	}

	top := pointer.Y - size - loupeLift
	if top < loupeMargin {
		top = pointer.Y + loupeDrop
	}
	return geometry.Point2D{X: left, Y: top}
}
