package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectContainsIsHalfOpen(t *testing.T) {
	r := NewRect(10, 10, 20, 20)
	assert.True(t, r.Contains(NewPoint2D(10, 10)))
	assert.True(t, r.Contains(NewPoint2D(29.9, 29.9)))
	assert.False(t, r.Contains(NewPoint2D(30, 15)))
	assert.False(t, r.Contains(NewPoint2D(15, 30)))
	assert.False(t, r.Contains(NewPoint2D(9.9, 15)))
}

func TestRectIntersect(t *testing.T) {
	a := NewRect(0, 0, 100, 50)
	b := NewRect(80, 20, 50, 50)
	assert.Equal(t, NewRect(80, 20, 20, 30), a.Intersect(b))
	assert.True(t, a.Intersect(NewRect(200, 200, 5, 5)).Empty())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 10.0, Clamp(12, 0, 10))
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := Translation(40, -12).Compose(Scale(1.5, 1.5))
	inv, ok := tr.Inverse()
	require.True(t, ok)

	p := NewPoint2D(7, 9)
	back := inv.Apply(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestAffineInverseSingular(t *testing.T) {
	_, ok := Scale(0, 1).Inverse()
	assert.False(t, ok)
}

func TestMapSizeToRect(t *testing.T) {
	tr := MapSizeToRect(NewSize(4, 2), NewRect(10, 20, 40, 20))
	assert.Equal(t, NewPoint2D(10, 20), tr.Apply(NewPoint2D(0, 0)))
	assert.Equal(t, NewPoint2D(50, 40), tr.Apply(NewPoint2D(4, 2)))

	inv, ok := tr.Inverse()
	require.True(t, ok)
	p := inv.Apply(NewPoint2D(36, 32))
	assert.InDelta(t, 2.6, p.X, 1e-9)
	assert.InDelta(t, 1.2, p.Y, 1e-9)

	_, ok = MapSizeToRect(NewSize(0, 2), NewRect(0, 0, 1, 1)).Inverse()
	assert.False(t, ok)
}

func TestApplyRect(t *testing.T) {
	tr := Translation(10, 20).Compose(Scale(2, 2))
	got := tr.ApplyRect(NewRect(0, 0, 5, 5))
	assert.Equal(t, NewRect(10, 20, 10, 10), got)
}
