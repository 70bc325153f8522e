package canvas

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"

	"cardforge/pkg/geometry"
)

// scaleRect converts a page rectangle to device pixels.
func scaleRect(r geometry.Rect, ratio float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X*ratio)),
		int(math.Floor(r.Y*ratio)),
		int(math.Ceil((r.X+r.Width)*ratio)),
		int(math.Ceil((r.Y+r.Height)*ratio)),
	)
}

// drawDashedRect draws a dashed rectangle outline of the given thickness.
func drawDashedRect(output *image.NRGBA, r image.Rectangle, col color.NRGBA, thickness int) {
	bounds := output.Bounds()
	dash := 4 * thickness
	set := func(x, y int) {
		if image.Pt(x, y).In(bounds) {
			output.SetNRGBA(x, y, col)
		}
	}

	for t := 0; t < thickness; t++ {
		// Top and bottom edges
		for x := r.Min.X; x < r.Max.X; x++ {
			if (x-r.Min.X)%(2*dash) < dash {
				set(x, r.Min.Y+t)
				set(x, r.Max.Y-1-t)
			}
		}
		// Left and right edges
		for y := r.Min.Y; y < r.Max.Y; y++ {
			if (y-r.Min.Y)%(2*dash) < dash {
				set(r.Min.X+t, y)
				set(r.Max.X-1-t, y)
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.NRGBA, x1, y1, x2, y2 int, col color.NRGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if image.Pt(px, py).In(bounds) {
					output.SetNRGBA(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawCrosshair marks a point with four arms leaving a gap at the centre,
// outlined so it shows on any colour.
func drawCrosshair(output *image.NRGBA, cx, cy, arm, gap int) {
	for _, pass := range []struct {
		col       color.NRGBA
		thickness int
	}{
		{color.NRGBA{A: 0xFF}, 3},
		{color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, 1},
	} {
		drawLine(output, cx-arm, cy, cx-gap, cy, pass.col, pass.thickness)
		drawLine(output, cx+gap, cy, cx+arm, cy, pass.col, pass.thickness)
		drawLine(output, cx, cy-arm, cx, cy-gap, pass.col, pass.thickness)
		drawLine(output, cx, cy+gap, cx, cy+arm, pass.col, pass.thickness)
	}
}

// blitScaled draws src into r with nearest-neighbour scaling, keeping the
// loupe cells crisp.
func blitScaled(output *image.NRGBA, r image.Rectangle, src image.Image) {
	xdraw.NearestNeighbor.Scale(output, r, src, src.Bounds(), xdraw.Over, nil)
}
