// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Contains returns true if the point is inside the rectangle.
// The right and bottom edges are exclusive so adjacent rectangles never
// both claim a point.
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// Size returns the rectangle dimensions.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Inset shrinks the rectangle by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: math.Max(0, r.Width-2*d), Height: math.Max(0, r.Height-2*d)}
}

// Intersect returns the overlap of two rectangles (empty when disjoint).
func (r Rect) Intersect(other Rect) Rect {
	x := math.Max(r.X, other.X)
	y := math.Max(r.Y, other.Y)
	x2 := math.Min(r.X+r.Width, other.X+other.Width)
	y2 := math.Min(r.Y+r.Height, other.Y+other.Height)
	if x2 <= x || y2 <= y {
		return Rect{X: x, Y: y}
	}
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Valid reports whether both dimensions are strictly positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// ApplyRect maps an axis-aligned rectangle through a transform that has no
// rotation or shear.
func (t AffineTransform) ApplyRect(r Rect) Rect {
	p0 := t.Apply(r.TopLeft())
	p1 := t.Apply(Point2D{X: r.X + r.Width, Y: r.Y + r.Height})
	return Rect{
		X:      math.Min(p0.X, p1.X),
		Y:      math.Min(p0.Y, p1.Y),
		Width:  math.Abs(p1.X - p0.X),
		Height: math.Abs(p1.Y - p0.Y),
	}
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// MapSizeToRect returns the transform that stretches a w×h pixel space over r.
func MapSizeToRect(size Size, r Rect) AffineTransform {
	if size.Width == 0 || size.Height == 0 {
		return AffineTransform{}
	}
	return Translation(r.X, r.Y).Compose(Scale(r.Width/size.Width, r.Height/size.Height))
}

// Dense returns the transform as a 3x3 homogeneous matrix.
func (t AffineTransform) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
		0, 0, 1,
	})
}

// Inverse returns the inverse transform, if it exists.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	if math.Abs(t.A*t.D-t.B*t.C) < 1e-10 {
		return AffineTransform{}, false
	}

	var inv mat.Dense
	if err := inv.Inverse(t.Dense()); err != nil {
		return AffineTransform{}, false
	}
	return AffineTransform{
		A: inv.At(0, 0), B: inv.At(0, 1), TX: inv.At(0, 2),
		C: inv.At(1, 0), D: inv.At(1, 1), TY: inv.At(1, 2),
	}, true
}
