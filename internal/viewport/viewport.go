// Package viewport implements pan and zoom for an image shown inside a
// fixed-size container. The image always covers the container edge to edge;
// once editing is enabled it can be dragged and zoomed.
package viewport

import (
	"log"
	"math"
	"sync"
	"time"

	"cardforge/pkg/geometry"
)

const (
	// DefaultZoomStep is the scale change per wheel notch.
	DefaultZoomStep = 0.1
	// DefaultPinchDivisor converts a change in finger distance to scale.
	DefaultPinchDivisor = 200.0
	// DefaultDoubleClickWindow is how long a first click waits for a second.
	DefaultDoubleClickWindow = 250 * time.Millisecond
)

// Options configures a Viewport.
type Options struct {
	ZoomStep          float64
	PinchDivisor      float64
	DoubleClickWindow time.Duration
	Clock             Clock

	// OnRequestImage is called for a confirmed single click while not
	// editing (the caller opens a file picker).
	OnRequestImage func()

	// OnChange is called after any change to the transform or edit mode.
	OnChange func(State)
}

// State is a snapshot of a Viewport.
type State struct {
	Editing       bool
	Scale         float64
	MinScale      float64
	Position      geometry.Point2D
	Dragging      bool
	LastPointer   *geometry.Point2D
	PinchDistance float64
	Pinching      bool
	Measured      bool
}

// Viewport owns the pan/zoom state of one image container.
type Viewport struct {
	mu   sync.Mutex
	opts Options

	editing     bool
	scale       float64
	minScale    float64
	position    geometry.Point2D
	dragging    bool
	lastPointer *geometry.Point2D

	pinchDistance float64
	pinching      bool

	natural   geometry.Size
	container geometry.Size
	measured  bool

	clicks *ClickResolver
}

// New creates a Viewport with scale 1 and no measurement.
func New(opts Options) *Viewport {
	if opts.ZoomStep <= 0 {
		opts.ZoomStep = DefaultZoomStep
	}
	if opts.PinchDivisor <= 0 {
		opts.PinchDivisor = DefaultPinchDivisor
	}
	if opts.DoubleClickWindow <= 0 {
		opts.DoubleClickWindow = DefaultDoubleClickWindow
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}

	v := &Viewport{
		opts:     opts,
		scale:    1,
		minScale: 1,
	}
	v.clicks = NewClickResolver(opts.Clock, opts.DoubleClickWindow, v.singleClick, v.ToggleEditing)
	return v
}

// CoverScale returns the smallest scale at which an image of the natural size
// covers the container on both axes.
func CoverScale(natural, container geometry.Size) (float64, bool) {
	if !natural.Valid() || !container.Valid() {
		return 0, false
	}
	return math.Max(container.Width/natural.Width, container.Height/natural.Height), true
}

// MaxOffset returns how far the image may be translated on each axis at the
// given scale without exposing the container background.
func MaxOffset(natural, container geometry.Size, scale float64) (maxX, maxY float64) {
	maxX = math.Max(0, (natural.Width*scale-container.Width)/2)
	maxY = math.Max(0, (natural.Height*scale-container.Height)/2)
	return maxX, maxY
}

// ClampPosition applies the centering and edge invariants to p.
func ClampPosition(p geometry.Point2D, natural, container geometry.Size, scale, minScale float64) geometry.Point2D {
	if scale <= minScale {
		return geometry.Point2D{}
	}
	maxX, maxY := MaxOffset(natural, container, scale)
	return geometry.Point2D{
		X: geometry.Clamp(p.X, -maxX, maxX),
		Y: geometry.Clamp(p.Y, -maxY, maxY),
	}
}

// OnImageLoaded resets the transform for a new image. A zero dimension leaves
// the viewport unmeasured until SetContainerSize supplies a valid container.
func (v *Viewport) OnImageLoaded(naturalWidth, naturalHeight, containerWidth, containerHeight float64) {
	v.mu.Lock()
	v.natural = geometry.NewSize(naturalWidth, naturalHeight)
	v.container = geometry.NewSize(containerWidth, containerHeight)
	v.dragging = false
	v.lastPointer = nil
	v.pinching = false
	changed := v.measureLocked(true)
	st := v.stateLocked()
	v.mu.Unlock()

	if changed {
		v.notify(st)
	}
}

// SetContainerSize records a new container measurement. The cover scale is
// recomputed immediately and the position re-clamped.
func (v *Viewport) SetContainerSize(containerWidth, containerHeight float64) {
	v.mu.Lock()
	size := geometry.NewSize(containerWidth, containerHeight)
	if size == v.container && v.measured {
		v.mu.Unlock()
		return
	}
	v.container = size
	changed := v.measureLocked(!v.measured)
	st := v.stateLocked()
	v.mu.Unlock()

	if changed {
		v.notify(st)
	}
}

// measureLocked recomputes the cover scale. With reset the scale snaps to
// the new minimum and the image is centred.
func (v *Viewport) measureLocked(reset bool) bool {
	cover, ok := CoverScale(v.natural, v.container)
	if !ok {
		if v.measured {
			log.Printf("Viewport: measurement unavailable (image %.0fx%.0f, container %.0fx%.0f), deferring",
				v.natural.Width, v.natural.Height, v.container.Width, v.container.Height)
		}
		v.measured = false
		return false
	}

	atMinimum := v.scale <= v.minScale
	v.minScale = cover
	v.measured = true
	if reset || atMinimum || v.scale < cover {
		v.scale = cover
	}
	if reset {
		v.position = geometry.Point2D{}
	}
	v.position = ClampPosition(v.position, v.natural, v.container, v.scale, v.minScale)
	return true
}

// ToggleEditing flips edit mode. Leaving edit mode ends any drag.
func (v *Viewport) ToggleEditing() {
	v.mu.Lock()
	v.editing = !v.editing
	if !v.editing {
		v.dragging = false
		v.lastPointer = nil
		v.pinching = false
	}
	st := v.stateLocked()
	v.mu.Unlock()

	v.notify(st)
}

// Editing reports whether gestures manipulate the transform.
func (v *Viewport) Editing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editing
}

// BeginDrag starts a drag at (x, y). Ignored outside edit mode.
func (v *Viewport) BeginDrag(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.editing {
		return
	}
	v.dragging = true
	v.lastPointer = &geometry.Point2D{X: x, Y: y}
}

// ContinueDrag moves the image by the pointer delta since the last call.
func (v *Viewport) ContinueDrag(x, y float64) {
	v.mu.Lock()
	if !v.editing || !v.dragging || v.lastPointer == nil {
		v.mu.Unlock()
		return
	}

	delta := geometry.Point2D{X: x - v.lastPointer.X, Y: y - v.lastPointer.Y}
	v.lastPointer = &geometry.Point2D{X: x, Y: y}
	if !v.measured {
		v.mu.Unlock()
		return
	}
	v.position = ClampPosition(v.position.Add(delta), v.natural, v.container, v.scale, v.minScale)
	st := v.stateLocked()
	v.mu.Unlock()

	v.notify(st)
}

// EndDrag finishes a drag or pinch.
func (v *Viewport) EndDrag() {
	v.mu.Lock()
	v.dragging = false
	v.lastPointer = nil
	v.pinching = false
	v.pinchDistance = 0
	v.mu.Unlock()
}

// Zoom changes the scale by notches*ZoomStep, never below the cover scale.
func (v *Viewport) Zoom(notches float64) {
	v.mu.Lock()
	if !v.editing || !v.measured {
		v.mu.Unlock()
		return
	}
	v.setScaleLocked(v.scale + notches*v.opts.ZoomStep)
	st := v.stateLocked()
	v.mu.Unlock()

	v.notify(st)
}

// PinchUpdate feeds the current two-finger distance. The first call of a
// gesture only records the baseline.
func (v *Viewport) PinchUpdate(distance float64) {
	v.mu.Lock()
	if !v.editing {
		v.mu.Unlock()
		return
	}
	if !v.pinching {
		v.pinching = true
		v.pinchDistance = distance
		v.mu.Unlock()
		return
	}

	delta := (distance - v.pinchDistance) / v.opts.PinchDivisor
	v.pinchDistance = distance
	if !v.measured {
		v.mu.Unlock()
		return
	}
	v.setScaleLocked(v.scale + delta)
	st := v.stateLocked()
	v.mu.Unlock()

	v.notify(st)
}

func (v *Viewport) setScaleLocked(scale float64) {
	v.scale = math.Max(v.minScale, scale)
	v.position = ClampPosition(v.position, v.natural, v.container, v.scale, v.minScale)
}

// Click feeds one click to the single/double click resolver.
func (v *Viewport) Click() {
	v.clicks.Click()
}

func (v *Viewport) singleClick() {
	if v.Editing() {
		return
	}
	if v.opts.OnRequestImage != nil {
		v.opts.OnRequestImage()
	}
}

// ClickPending reports whether a single click is waiting out the double-click
// window.
func (v *Viewport) ClickPending() bool {
	return v.clicks.Pending()
}

// Dispose cancels the pending click timer. The viewport must not be used
// afterwards.
func (v *Viewport) Dispose() {
	v.clicks.Dispose()
	v.EndDrag()
}

// State returns a snapshot of the current state.
func (v *Viewport) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *Viewport) stateLocked() State {
	st := State{
		Editing:       v.editing,
		Scale:         v.scale,
		MinScale:      v.minScale,
		Position:      v.position,
		Dragging:      v.dragging,
		PinchDistance: v.pinchDistance,
		Pinching:      v.pinching,
		Measured:      v.measured,
	}
	if v.lastPointer != nil {
		p := *v.lastPointer
		st.LastPointer = &p
	}
	return st
}

// Transform returns the current translate/scale pair.
func (v *Viewport) Transform() Transform {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Transform{X: v.position.X, Y: v.position.Y, Scale: v.scale}
}

// Restore applies a saved transform on top of the current measurement. The
// saved values are clamped like any gesture would be.
func (v *Viewport) Restore(t Transform) {
	v.mu.Lock()
	if !v.measured || t.Scale <= 0 {
		v.mu.Unlock()
		return
	}
	v.scale = math.Max(v.minScale, t.Scale)
	v.position = ClampPosition(geometry.Point2D{X: t.X, Y: t.Y}, v.natural, v.container, v.scale, v.minScale)
	st := v.stateLocked()
	v.mu.Unlock()

	v.notify(st)
}

func (v *Viewport) notify(st State) {
	if v.opts.OnChange != nil {
		v.opts.OnChange(st)
	}
}
