// Package eyedropper resolves the colour under the pointer anywhere on the
// rendered page, previews it in a loupe and reports the final pick.
package eyedropper

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"

	"cardforge/internal/visual"
	"cardforge/pkg/colorutil"
	"cardforge/pkg/geometry"
)

// HexNothing is returned when no element lies under the point at all.
const HexNothing colorutil.Hex = "#f0f0f0"

// Frame is a captured raster of the visible page.
type Frame struct {
	Image image.Image
	// Origin is the page point drawn at the image's top-left pixel.
	Origin geometry.Point2D
	// Ratio is output pixels per page unit.
	Ratio float64
}

// pixelAt reads the frame pixel under the page point.
func (f *Frame) pixelAt(x, y float64) (color.NRGBA, bool) {
	if f == nil || f.Image == nil || f.Ratio <= 0 {
		return color.NRGBA{}, false
	}
	b := f.Image.Bounds()
	px := b.Min.X + int(math.Floor((x-f.Origin.X)*f.Ratio))
	py := b.Min.Y + int(math.Floor((y-f.Origin.Y)*f.Ratio))
	if !image.Pt(px, py).In(b) {
		return color.NRGBA{}, false
	}
	return color.NRGBAModel.Convert(f.Image.At(px, py)).(color.NRGBA), true
}

// Sampler resolves colours at page points. Each session owns one sampler and
// with it the per-source bitmap cache.
type Sampler struct {
	page    visual.Page
	overlay visual.Overlay

	mu      sync.Mutex
	frame   *Frame
	bitmaps map[string]*image.NRGBA
}

// NewSampler creates a sampler. overlay may be nil when nothing covers the
// page.
func NewSampler(page visual.Page, overlay visual.Overlay) *Sampler {
	return &Sampler{
		page:    page,
		overlay: overlay,
		bitmaps: make(map[string]*image.NRGBA),
	}
}

// SetFrame installs or clears the captured frame.
func (s *Sampler) SetFrame(f *Frame) {
	s.mu.Lock()
	s.frame = f
	s.mu.Unlock()
}

// HasFrame reports whether a captured frame is installed.
func (s *Sampler) HasFrame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame != nil
}

// Release drops the frame and every cached bitmap.
func (s *Sampler) Release() {
	s.mu.Lock()
	s.frame = nil
	s.bitmaps = make(map[string]*image.NRGBA)
	s.mu.Unlock()
}

// Invalidate drops the cached bitmap for one source.
func (s *Sampler) Invalidate(sourceID string) {
	s.mu.Lock()
	delete(s.bitmaps, sourceID)
	s.mu.Unlock()
}

// SampleAt returns the colour at the page point.
func (s *Sampler) SampleAt(x, y float64) colorutil.Hex {
	if c, ok := s.fromFrame(x, y); ok {
		return c
	}
	var hex colorutil.Hex
	s.withOverlayHidden(func() {
		hex = s.sampleElement(x, y)
	})
	return hex
}

// SampleGrid samples grid×grid points spaced apart around (x, y), row by row.
// The overlay is hidden once for the whole grid.
func (s *Sampler) SampleGrid(x, y float64, grid int, spacing float64) []colorutil.Hex {
	if grid <= 0 {
		return nil
	}
	half := grid / 2
	out := make([]colorutil.Hex, 0, grid*grid)
	s.withOverlayHidden(func() {
		for row := 0; row < grid; row++ {
			for col := 0; col < grid; col++ {
				sx := x + float64(col-half)*spacing
				sy := y + float64(row-half)*spacing
				c, ok := s.fromFrame(sx, sy)
				if !ok {
					c = s.sampleElement(sx, sy)
				}
				out = append(out, c)
			}
		}
	})
	return out
}

func (s *Sampler) withOverlayHidden(fn func()) {
	if s.overlay == nil {
		fn()
		return
	}
	s.overlay.SetHitTestable(false)
	defer s.overlay.SetHitTestable(true)
	fn()
}

func (s *Sampler) fromFrame(x, y float64) (colorutil.Hex, bool) {
	s.mu.Lock()
	f := s.frame
	s.mu.Unlock()

	c, ok := f.pixelAt(x, y)
	if !ok {
		return "", false
	}
	return colorutil.FromColor(c)
}

// sampleElement runs the element tiers. The overlay must already be hidden.
func (s *Sampler) sampleElement(x, y float64) colorutil.Hex {
	el := s.page.ElementAt(x, y)
	if el == nil {
		return HexNothing
	}

	switch n := el.(type) {
	case visual.Bitmap:
		if c, err := s.readBitmap(n, x, y); err == nil {
			return c
		}
	case visual.Surface:
		if c, err := readSurface(n, x, y); err == nil {
			return c
		}
	}

	return s.paintedBackground(el)
}

// errNoMatch marks a tier that produced nothing usable at the point.
var errNoMatch = errors.New("no colour at point")

func (s *Sampler) readBitmap(n visual.Bitmap, x, y float64) (hex colorutil.Hex, err error) {
	defer recoverRead(&err)

	buf, err := s.bitmap(n)
	if err != nil {
		return "", err
	}
	b := n.Bounds()
	w, h := buf.Bounds().Dx(), buf.Bounds().Dy()
	px, py, ok := pixelIndex(b, w, h, x, y)
	if !ok {
		return "", errNoMatch
	}
	c, ok := colorutil.FromColor(buf.NRGBAAt(px, py))
	if !ok {
		return "", errNoMatch
	}
	return c, nil
}

// bitmap returns the rasterised pixels of n, cached by source identity.
func (s *Sampler) bitmap(n visual.Bitmap) (*image.NRGBA, error) {
	id := n.SourceID()
	if id != "" {
		s.mu.Lock()
		buf, ok := s.bitmaps[id]
		s.mu.Unlock()
		if ok {
			return buf, nil
		}
	}

	src, err := n.Natural()
	if err != nil {
		return nil, err
	}
	sb := src.Bounds()
	buf := image.NewNRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(buf, buf.Bounds(), src, sb.Min, draw.Src)

	if id != "" {
		s.mu.Lock()
		s.bitmaps[id] = buf
		s.mu.Unlock()
	}
	return buf, nil
}

func readSurface(n visual.Surface, x, y float64) (hex colorutil.Hex, err error) {
	defer recoverRead(&err)

	buf, err := n.Buffer()
	if err != nil {
		return "", err
	}
	bb := buf.Bounds()
	px, py, ok := pixelIndex(n.Bounds(), bb.Dx(), bb.Dy(), x, y)
	if !ok {
		return "", errNoMatch
	}
	sx, sy := bb.Min.X+px, bb.Min.Y+py
	c, ok := colorutil.FromColor(buf.At(sx, sy))
	if !ok {
		return "", errNoMatch
	}
	return c, nil
}

// edgeEpsilon absorbs rounding in the inverted mapping at the left and top
// edges.
const edgeEpsilon = 1e-9

// pixelIndex maps a page point inside b to the nearest pixel of a w×h buffer
// stretched over b. Points in the last half pixel stay on the last pixel.
func pixelIndex(b geometry.Rect, w, h int, x, y float64) (px, py int, ok bool) {
	if b.Width <= 0 || b.Height <= 0 || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	toPage := geometry.MapSizeToRect(geometry.NewSize(float64(w), float64(h)), b)
	toPixels, ok := toPage.Inverse()
	if !ok {
		return 0, 0, false
	}
	p := toPixels.Apply(geometry.Point2D{X: x, Y: y})
	if p.X < -edgeEpsilon || p.Y < -edgeEpsilon || p.X >= float64(w) || p.Y >= float64(h) {
		return 0, 0, false
	}
	px = max(0, min(int(math.Round(p.X)), w-1))
	py = max(0, min(int(math.Round(p.Y)), h-1))
	return px, py, true
}

// paintedBackground walks from el to the root and returns the first painted
// background.
func (s *Sampler) paintedBackground(el visual.Node) colorutil.Hex {
	hex := colorutil.HexWhite
	visual.Ancestors(el, func(n visual.Node) bool {
		c, ok := s.page.PaintedBackground(n)
		if !ok {
			return true
		}
		if h, ok := colorutil.FromColor(c); ok {
			hex = h
			return false
		}
		return true
	})
	return hex
}

// recoverRead turns a panic inside a pixel source into ErrUnreadable.
func recoverRead(err *error) {
	if r := recover(); r != nil {
		log.Printf("Eyedropper: pixel source panicked: %v", r)
		*err = visual.ErrUnreadable
	}
}
