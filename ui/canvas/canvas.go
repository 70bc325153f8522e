// Package canvas provides the card preview widget and the eyedropper overlay
// drawn above it.
package canvas

import (
	"context"
	"image"
	"image/color"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"cardforge/internal/app"
	"cardforge/internal/card"
	"cardforge/internal/scene"
	"cardforge/internal/visual"
	"cardforge/internal/viewport"
	"cardforge/pkg/geometry"
)

const previewPadding = 16

var (
	previewBackground = color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 0xFF}
	editOutline       = color.NRGBA{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF}
)

// CardPreview draws the card scene and turns pointer input on the image
// container into viewport gestures. Page coordinates are widget coordinates.
type CardPreview struct {
	widget.BaseWidget

	state    *app.State
	renderer *scene.Renderer
	page     *scene.Page
	overlay  *scene.Overlay
	view     *viewport.Viewport
	raster   *fynecanvas.Raster

	mu        sync.Mutex
	layout    *card.Layout
	size      fyne.Size
	origin    geometry.Point2D
	lastImage string
	dragging  bool

	// restoring suppresses viewport callbacks while a new image is measured.
	restoring atomic.Bool

	onRequestImage func()
}

// NewCardPreview creates a preview bound to state.
func NewCardPreview(state *app.State) *CardPreview {
	cp := &CardPreview{
		state:    state,
		renderer: scene.NewRenderer(),
		size:     fyne.NewSize(card.Width+2*previewPadding, card.Height+2*previewPadding),
	}
	cp.origin = cp.cardOrigin(cp.size)

	opts := state.Config.ViewportOptions()
	opts.OnRequestImage = cp.requestImage
	opts.OnChange = cp.viewportChanged
	cp.view = viewport.New(opts)

	view := cp.viewRect()
	cp.page = scene.NewPage(scene.NewBox("preview", view), view)
	cp.overlay = scene.NewOverlay("eyedropper", view)

	cp.raster = fynecanvas.NewRaster(cp.draw)
	cp.raster.ScaleMode = fynecanvas.ImageScalePixels
	cp.raster.SetMinSize(cp.size)

	state.On(app.EventCardChanged, func(interface{}) { cp.rebuild() })
	state.On(app.EventImageLoaded, func(interface{}) {
		cp.mu.Lock()
		cp.lastImage = ""
		cp.mu.Unlock()
		cp.rebuild()
	})

	cp.ExtendBaseWidget(cp)
	cp.rebuild()
	return cp
}

// OnRequestImage sets the callback for a single click on the image while not
// editing.
func (cp *CardPreview) OnRequestImage(callback func()) {
	cp.onRequestImage = callback
}

// Viewport returns the image viewport engine.
func (cp *CardPreview) Viewport() *viewport.Viewport {
	return cp.view
}

// Page returns the hit-testable page the preview draws.
func (cp *CardPreview) Page() *scene.Page {
	return cp.page
}

// Overlay returns the scene node standing in for the eyedropper overlay.
func (cp *CardPreview) Overlay() *scene.Overlay {
	return cp.overlay
}

// Snapshotter returns the renderer used for drawing and captures.
func (cp *CardPreview) Snapshotter() visual.Snapshotter {
	return cp.renderer
}

// CardRoot returns the root node of the current card, for export.
func (cp *CardPreview) CardRoot() visual.Node {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if cp.layout == nil {
		return nil
	}
	return cp.layout.Root
}

// SetOverlayActive attaches the eyedropper overlay node to the page, or
// detaches it.
func (cp *CardPreview) SetOverlayActive(active bool) {
	if active {
		cp.mu.Lock()
		view := cp.viewRect()
		cp.mu.Unlock()
		cp.overlay.SetBounds(view)
		cp.page.SetOverlay(cp.overlay)
		return
	}
	cp.page.SetOverlay(nil)
}

// Dispose cancels a pending click so no image request fires after the
// preview is gone.
func (cp *CardPreview) Dispose() {
	cp.view.Dispose()
}

// ResetImage returns the image to the centred cover fit.
func (cp *CardPreview) ResetImage() {
	cp.view.Restore(viewport.Transform{Scale: math.SmallestNonzeroFloat64})
}

func (cp *CardPreview) requestImage() {
	if cp.onRequestImage != nil {
		cp.onRequestImage()
	}
}

func (cp *CardPreview) viewRect() geometry.Rect {
	return geometry.NewRect(0, 0, float64(cp.size.Width), float64(cp.size.Height))
}

// cardOrigin centres the card horizontally and keeps it padded from the top.
func (cp *CardPreview) cardOrigin(size fyne.Size) geometry.Point2D {
	x := math.Max(previewPadding, (float64(size.Width)-card.Width)/2)
	y := math.Max(previewPadding, (float64(size.Height)-card.Height)/2)
	return geometry.Point2D{X: math.Round(x), Y: math.Round(y)}
}

// rebuild re-measures the viewport when the card image changed, then
// rebuilds the scene.
func (cp *CardPreview) rebuild() {
	c := cp.state.Card()

	cp.mu.Lock()
	imageChanged := c.Image != cp.lastImage
	cp.lastImage = c.Image
	origin := cp.origin
	cp.mu.Unlock()

	if imageChanged {
		cp.measure(c, origin)
	}
	cp.buildScene()
}

// measure feeds the new image to the viewport and restores the saved
// transform on top of the cover fit.
func (cp *CardPreview) measure(c *card.Card, origin geometry.Point2D) {
	var natural geometry.Size
	if a, err := cp.state.Library.Load(c.Image); err == nil {
		natural = a.Size()
	} else {
		log.Printf("Preview: character image unavailable: %v", err)
	}
	area := card.ImageArea(origin)

	cp.restoring.Store(true)
	cp.view.OnImageLoaded(natural.Width, natural.Height, area.Width, area.Height)
	cp.view.Restore(c.Transform)
	cp.restoring.Store(false)

	if cp.view.State().Measured {
		cp.state.SetTransform(cp.view.Transform())
	}
}

func (cp *CardPreview) viewportChanged(st viewport.State) {
	if cp.restoring.Load() {
		return
	}
	if st.Measured {
		cp.state.SetTransform(cp.view.Transform())
	}
	cp.state.SetEditing(st.Editing)
	cp.buildScene()
}

// buildScene lays the card out with the live viewport transform.
func (cp *CardPreview) buildScene() {
	c := cp.state.Card()
	st := cp.view.State()
	iv := card.ImageView{Transform: c.Transform, Editing: st.Editing}
	if st.Measured {
		iv.Transform = cp.view.Transform()
	}

	cp.mu.Lock()
	origin := cp.origin
	view := cp.viewRect()
	cp.mu.Unlock()

	layout := card.Build(c, cp.state.Library, origin, iv)
	content := scene.NewBox("preview", view)
	content.Fill = previewBackground
	content.Add(layout.Root)

	cp.mu.Lock()
	cp.layout = layout
	cp.mu.Unlock()
	cp.page.SetContent(content)
	cp.raster.Refresh()
}

// resized tracks the widget size; the page viewport and card origin follow.
func (cp *CardPreview) resized(size fyne.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	cp.mu.Lock()
	if size == cp.size {
		cp.mu.Unlock()
		return
	}
	cp.size = size
	cp.origin = cp.cardOrigin(size)
	view := cp.viewRect()
	cp.mu.Unlock()

	cp.page.SetViewport(view)
	cp.overlay.SetBounds(view)
	cp.buildScene()
}

// inImage reports whether a widget position lies in the image container.
func (cp *CardPreview) inImage(pos fyne.Position) bool {
	cp.mu.Lock()
	origin := cp.origin
	cp.mu.Unlock()
	return card.ImageArea(origin).Contains(geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)})
}

// Dragged pans the image while editing.
func (cp *CardPreview) Dragged(ev *fyne.DragEvent) {
	x, y := float64(ev.Position.X), float64(ev.Position.Y)
	cp.mu.Lock()
	starting := !cp.dragging
	cp.mu.Unlock()

	if starting {
		if !cp.inImage(ev.Position) {
			return
		}
		cp.mu.Lock()
		cp.dragging = true
		cp.mu.Unlock()
		// The first event already carries movement
		cp.view.BeginDrag(x-float64(ev.Dragged.DX), y-float64(ev.Dragged.DY))
	}
	cp.view.ContinueDrag(x, y)
}

// DragEnd finishes a pan.
func (cp *CardPreview) DragEnd() {
	cp.mu.Lock()
	was := cp.dragging
	cp.dragging = false
	cp.mu.Unlock()
	if was {
		cp.view.EndDrag()
	}
}

// Scrolled zooms the image: wheel up zooms in.
func (cp *CardPreview) Scrolled(ev *fyne.ScrollEvent) {
	if !cp.inImage(ev.Position) {
		return
	}
	if ev.Scrolled.DY > 0 {
		cp.view.Zoom(1)
	} else if ev.Scrolled.DY < 0 {
		cp.view.Zoom(-1)
	}
}

// Tapped feeds clicks on the image to the single/double click resolver.
func (cp *CardPreview) Tapped(ev *fyne.PointEvent) {
	if cp.inImage(ev.Position) {
		cp.view.Click()
	}
}

// draw is the raster drawing function. w and h are device pixels.
func (cp *CardPreview) draw(w, h int) image.Image {
	cp.mu.Lock()
	size := cp.size
	origin := cp.origin
	cp.mu.Unlock()

	if w <= 0 || h <= 0 || size.Width <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	ratio := float64(w) / float64(size.Width)

	img, err := cp.renderer.RenderToImage(context.Background(), cp.page.Root(), visual.SnapshotOptions{
		PixelRatio: ratio,
		Width:      float64(size.Width),
		Height:     float64(size.Height),
		Exclude:    cp.overlay.IsOverlay,
	})
	if err != nil {
		log.Printf("Preview: render failed: %v", err)
		return image.NewNRGBA(image.Rect(0, 0, w, h))
	}

	if out, ok := img.(*image.NRGBA); ok && cp.view.Editing() {
		r := scaleRect(card.ImageArea(origin).Inset(-2), ratio)
		drawDashedRect(out, r, editOutline, int(math.Max(1, math.Round(ratio))))
	}
	return img
}

// MinSize keeps the whole card visible.
func (cp *CardPreview) MinSize() fyne.Size {
	return fyne.NewSize(card.Width+2*previewPadding, card.Height+2*previewPadding)
}

// Refresh redraws the raster.
func (cp *CardPreview) Refresh() {
	cp.raster.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (cp *CardPreview) CreateRenderer() fyne.WidgetRenderer {
	return &cardPreviewRenderer{preview: cp}
}

type cardPreviewRenderer struct {
	preview *CardPreview
}

func (r *cardPreviewRenderer) Layout(size fyne.Size) {
	r.preview.raster.Resize(size)
	r.preview.resized(size)
}

func (r *cardPreviewRenderer) MinSize() fyne.Size {
	return r.preview.MinSize()
}

func (r *cardPreviewRenderer) Refresh() {
	r.preview.raster.Refresh()
}

func (r *cardPreviewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.preview.raster}
}

func (r *cardPreviewRenderer) Destroy() {
	r.preview.Dispose()
}
