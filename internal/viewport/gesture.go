package viewport

import "cardforge/pkg/geometry"

// TouchStart begins a one-finger drag. Other finger counts are ignored.
func (v *Viewport) TouchStart(points []geometry.Point2D) {
	if len(points) != 1 {
		return
	}
	v.BeginDrag(points[0].X, points[0].Y)
}

// TouchMove drags with one finger and pinches with two.
func (v *Viewport) TouchMove(points []geometry.Point2D) {
	switch len(points) {
	case 1:
		v.ContinueDrag(points[0].X, points[0].Y)
	case 2:
		v.PinchUpdate(points[0].Distance(points[1]))
	}
}

// TouchEnd ends the current touch gesture.
func (v *Viewport) TouchEnd() {
	v.EndDrag()
}
