package scene

import (
	"image/color"
	"sync"
	"sync/atomic"

	"cardforge/internal/visual"
	"cardforge/pkg/geometry"
)

// Overlay is a layer above the page content, such as the eyedropper. It can
// be taken out of hit testing while the page beneath it is sampled. Hides
// nest, so concurrent samplers never expose it to each other.
type Overlay struct {
	Box
	hidden atomic.Int32

	mu     sync.RWMutex
	bounds geometry.Rect
}

// NewOverlay creates a hit-testable overlay covering r.
func NewOverlay(name string, r geometry.Rect) *Overlay {
	o := &Overlay{bounds: r}
	o.Name = name
	o.Rect = r
	o.self = o
	return o
}

// SetHitTestable(false) adds a hide; SetHitTestable(true) releases one.
// The overlay is hit-testable again once every hide is released.
func (o *Overlay) SetHitTestable(v bool) {
	if !v {
		o.hidden.Add(1)
		return
	}
	for {
		n := o.hidden.Load()
		if n <= 0 || o.hidden.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// HitTestable reports whether no hide is outstanding.
func (o *Overlay) HitTestable() bool { return o.hidden.Load() == 0 }

// SetBounds moves the overlay. Safe while other goroutines hit-test.
func (o *Overlay) SetBounds(r geometry.Rect) {
	o.mu.Lock()
	o.bounds = r
	o.mu.Unlock()
}

// Bounds returns the overlay rectangle.
func (o *Overlay) Bounds() geometry.Rect {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.bounds
}

// IsOverlay reports whether n is the overlay or inside it.
func (o *Overlay) IsOverlay(n visual.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		if e, ok := cur.(Element); ok && e.base() == &o.Base {
			return true
		}
	}
	return false
}

// Page is the visible document: a root node holding the content and, when
// attached, an overlay painted above it.
type Page struct {
	mu      sync.RWMutex
	view    geometry.Rect
	content Element
	overlay *Overlay
	root    *Box
}

// NewPage creates a page showing content within view.
func NewPage(content Element, view geometry.Rect) *Page {
	p := &Page{view: view, content: content}
	p.rebuildLocked()
	return p
}

// rebuildLocked builds a fresh root so trees handed out earlier stay intact.
func (p *Page) rebuildLocked() {
	root := NewBox("page", p.view)
	root.Add(p.content)
	if p.overlay != nil {
		root.Add(p.overlay)
	}
	p.root = root
}

// SetContent replaces the page content.
func (p *Page) SetContent(content Element) {
	p.mu.Lock()
	p.content = content
	p.rebuildLocked()
	p.mu.Unlock()
}

// Content returns the current content node.
func (p *Page) Content() Element {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.content
}

// SetOverlay attaches an overlay, or detaches it when o is nil.
func (p *Page) SetOverlay(o *Overlay) {
	p.mu.Lock()
	p.overlay = o
	p.rebuildLocked()
	p.mu.Unlock()
}

// SetViewport moves or resizes the visible region.
func (p *Page) SetViewport(r geometry.Rect) {
	p.mu.Lock()
	p.view = r
	p.rebuildLocked()
	p.mu.Unlock()
}

// Root returns the page root.
func (p *Page) Root() visual.Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root
}

// Viewport returns the visible region in page coordinates.
func (p *Page) Viewport() geometry.Rect {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view
}

// ElementAt returns the topmost hit-testable node under the point, or nil
// when the point lies outside the viewport.
func (p *Page) ElementAt(x, y float64) visual.Node {
	p.mu.RLock()
	root, view := p.root, p.view
	p.mu.RUnlock()

	pt := geometry.Point2D{X: x, Y: y}
	if !view.Contains(pt) {
		return nil
	}
	if hit := hitTest(root, pt); hit != nil {
		return hit
	}
	return nil
}

func hitTest(e Element, pt geometry.Point2D) Element {
	b := e.base()
	if b.Hidden {
		return nil
	}
	rect := b.Rect
	if o, ok := e.(*Overlay); ok {
		if !o.HitTestable() {
			return nil
		}
		rect = o.Bounds()
	}
	inside := rect.Contains(pt)
	if b.Clip && !inside {
		return nil
	}
	for i := len(b.children) - 1; i >= 0; i-- {
		if hit := hitTest(b.children[i], pt); hit != nil {
			return hit
		}
	}
	if inside && !b.NoHit {
		return e
	}
	return nil
}

// PaintedBackground returns the node's own background colour.
func (p *Page) PaintedBackground(n visual.Node) (color.NRGBA, bool) {
	e, ok := n.(Element)
	if !ok {
		return color.NRGBA{}, false
	}
	fill := e.base().Fill
	if fill.A == 0 {
		return color.NRGBA{}, false
	}
	return fill, true
}
