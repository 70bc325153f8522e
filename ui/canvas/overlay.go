package canvas

import (
	"context"
	"image"
	"image/color"
	"log"
	"math"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"cardforge/internal/eyedropper"
	"cardforge/pkg/geometry"
)

const (
	crosshairArm = 9
	crosshairGap = 3
)

var barBackground = color.NRGBA{A: 0xD9}

// EyedropperOverlay covers the preview while a colour is being picked. It
// shows a loupe above the pointer and a bar with the current colour.
type EyedropperOverlay struct {
	widget.BaseWidget

	preview *CardPreview
	picker  *eyedropper.Picker
	loupe   eyedropper.Loupe

	raster  *fynecanvas.Raster
	swatch  *fynecanvas.Rectangle
	hexText *widget.Label
	bar     *fyne.Container

	mu      sync.Mutex
	session *eyedropper.Session
	sample  *eyedropper.Sample
	// gen identifies the newest Begin; older sessions ending must not hide
	// the overlay their successor is using.
	gen uint64
}

// NewEyedropperOverlay creates a hidden overlay sampling preview.
func NewEyedropperOverlay(preview *CardPreview, loupe eyedropper.Loupe, capture bool, pixelRatio float64) *EyedropperOverlay {
	ov := &EyedropperOverlay{
		preview: preview,
		loupe:   loupe,
		picker: eyedropper.NewPicker(eyedropper.Options{
			Page:        preview.Page(),
			Overlay:     preview.Overlay(),
			Snapshotter: preview.Snapshotter(),
			Capture:     capture,
			PixelRatio:  pixelRatio,
			Loupe:       loupe,
		}),
	}

	ov.raster = fynecanvas.NewRaster(ov.draw)
	ov.raster.ScaleMode = fynecanvas.ImageScalePixels

	ov.swatch = fynecanvas.NewRectangle(color.Transparent)
	ov.swatch.StrokeColor = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0x66}
	ov.swatch.StrokeWidth = 2
	ov.swatch.CornerRadius = 6
	ov.swatch.SetMinSize(fyne.NewSize(32, 32))

	ov.hexText = widget.NewLabel("-")
	ov.hexText.TextStyle = fyne.TextStyle{Monospace: true, Bold: true}
	hint := widget.NewLabel("Drag and release")
	hint.Importance = widget.LowImportance
	cancel := widget.NewButtonWithIcon("", theme.CancelIcon(), ov.Cancel)

	bg := fynecanvas.NewRectangle(barBackground)
	row := container.NewBorder(nil, nil,
		container.NewHBox(ov.swatch, ov.hexText), cancel,
		container.NewCenter(hint))
	ov.bar = container.NewStack(bg, container.NewPadded(row))

	ov.ExtendBaseWidget(ov)
	ov.Hide()
	return ov
}

// Picker exposes the session factory, e.g. to install a native picker.
func (ov *EyedropperOverlay) Picker() *eyedropper.Picker {
	return ov.picker
}

// Begin shows the overlay and starts a session. onDone receives the result
// once the session ends; a newer Begin cancels the previous session first.
func (ov *EyedropperOverlay) Begin(onDone func(eyedropper.Result)) error {
	ov.mu.Lock()
	ov.gen++
	gen := ov.gen
	ov.sample = nil
	ov.mu.Unlock()
	ov.hexText.SetText("-")
	ov.swatch.FillColor = color.Transparent
	ov.swatch.Refresh()

	ov.preview.SetOverlayActive(true)
	ov.Show()
	ov.Refresh()

	session, err := ov.picker.Begin(context.Background(), ov.sampled, func(res eyedropper.Result) {
		ov.finished(gen, res, onDone)
	})
	if err != nil {
		ov.preview.SetOverlayActive(false)
		ov.Hide()
		return err
	}

	ov.mu.Lock()
	if ov.gen == gen {
		ov.session = session
	}
	ov.mu.Unlock()

	if c := fyne.CurrentApp().Driver().CanvasForObject(ov); c != nil {
		c.Focus(ov)
	}
	return nil
}

// Active reports whether a session is live.
func (ov *EyedropperOverlay) Active() bool {
	s := ov.current()
	if s == nil {
		return false
	}
	p := s.Phase()
	return p == eyedropper.PhaseCapturing || p == eyedropper.PhaseActive
}

// Cancel ends the session without picking.
func (ov *EyedropperOverlay) Cancel() {
	if s := ov.current(); s != nil {
		s.Cancel()
	}
}

func (ov *EyedropperOverlay) current() *eyedropper.Session {
	ov.mu.Lock()
	defer ov.mu.Unlock()
	return ov.session
}

func (ov *EyedropperOverlay) sampled(s eyedropper.Sample) {
	ov.mu.Lock()
	ov.sample = &s
	ov.mu.Unlock()

	ov.hexText.SetText(strings.ToUpper(string(s.Color)))
	ov.swatch.FillColor = s.Color.NRGBA()
	ov.swatch.Refresh()
	ov.raster.Refresh()
}

// finished runs on every session end. A session superseded by a newer one
// leaves the overlay to its successor.
func (ov *EyedropperOverlay) finished(gen uint64, res eyedropper.Result, onDone func(eyedropper.Result)) {
	ov.mu.Lock()
	superseded := gen != ov.gen
	if !superseded {
		ov.session = nil
		ov.sample = nil
	}
	ov.mu.Unlock()

	if !superseded {
		ov.preview.SetOverlayActive(false)
		ov.Hide()
	}
	if res.OK {
		log.Printf("Eyedropper: picked %s", res.Color)
	}
	if onDone != nil {
		onDone(res)
	}
}

// inBar reports whether pos is over the bottom bar, where input is not
// sampled.
func (ov *EyedropperOverlay) inBar(pos fyne.Position) bool {
	return pos.Y >= ov.Size().Height-ov.bar.MinSize().Height
}

func (ov *EyedropperOverlay) move(pos fyne.Position) {
	if ov.inBar(pos) {
		return
	}
	if s := ov.current(); s != nil {
		s.Move(float64(pos.X), float64(pos.Y))
	}
}

// MouseIn implements desktop.Hoverable.
func (ov *EyedropperOverlay) MouseIn(ev *desktop.MouseEvent) {
	ov.move(ev.Position)
}

// MouseMoved implements desktop.Hoverable.
func (ov *EyedropperOverlay) MouseMoved(ev *desktop.MouseEvent) {
	ov.move(ev.Position)
}

// MouseOut implements desktop.Hoverable.
func (ov *EyedropperOverlay) MouseOut() {}

// Cursor implements desktop.Cursorable.
func (ov *EyedropperOverlay) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

// Tapped picks the colour under the pointer.
func (ov *EyedropperOverlay) Tapped(ev *fyne.PointEvent) {
	if ov.inBar(ev.Position) {
		return
	}
	if s := ov.current(); s != nil {
		s.ConfirmAt(float64(ev.Position.X), float64(ev.Position.Y))
	}
}

// TappedSecondary cancels.
func (ov *EyedropperOverlay) TappedSecondary(*fyne.PointEvent) {
	ov.Cancel()
}

// Dragged follows a touch or held button.
func (ov *EyedropperOverlay) Dragged(ev *fyne.DragEvent) {
	ov.move(ev.Position)
}

// DragEnd picks the last sampled colour, as lifting a finger does.
func (ov *EyedropperOverlay) DragEnd() {
	if s := ov.current(); s != nil {
		s.Confirm()
	}
}

// FocusGained implements fyne.Focusable.
func (ov *EyedropperOverlay) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (ov *EyedropperOverlay) FocusLost() {}

// TypedRune implements fyne.Focusable.
func (ov *EyedropperOverlay) TypedRune(rune) {}

// TypedKey cancels on Escape.
func (ov *EyedropperOverlay) TypedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape {
		ov.Cancel()
	}
}

// draw renders the crosshair and the loupe. w and h are device pixels.
func (ov *EyedropperOverlay) draw(w, h int) image.Image {
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	ov.mu.Lock()
	sample := ov.sample
	ov.mu.Unlock()
	size := ov.Size()
	if sample == nil || sample.Loupe.Image == nil || size.Width <= 0 {
		return out
	}
	ratio := float64(w) / float64(size.Width)

	cx := int(math.Round(sample.Point.X * ratio))
	cy := int(math.Round(sample.Point.Y * ratio))
	drawCrosshair(out, cx, cy, int(crosshairArm*ratio), int(crosshairGap*ratio))

	pos := ov.loupe.Place(sample.Point, float64(size.Width))
	edge := float64(sample.Loupe.Image.Bounds().Dx())
	r := scaleRect(geometry.NewRect(pos.X, pos.Y, edge, edge), ratio)
	blitScaled(out, r, sample.Loupe.Image)
	return out
}

// CreateRenderer implements fyne.Widget.
func (ov *EyedropperOverlay) CreateRenderer() fyne.WidgetRenderer {
	return &overlayRenderer{overlay: ov}
}

type overlayRenderer struct {
	overlay *EyedropperOverlay
}

func (r *overlayRenderer) Layout(size fyne.Size) {
	r.overlay.raster.Resize(size)
	barHeight := r.overlay.bar.MinSize().Height
	r.overlay.bar.Move(fyne.NewPos(0, size.Height-barHeight))
	r.overlay.bar.Resize(fyne.NewSize(size.Width, barHeight))
}

func (r *overlayRenderer) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

func (r *overlayRenderer) Refresh() {
	r.overlay.raster.Refresh()
	r.overlay.bar.Refresh()
}

func (r *overlayRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.overlay.raster, r.overlay.bar}
}

func (r *overlayRenderer) Destroy() {
	r.overlay.picker.Close()
}
