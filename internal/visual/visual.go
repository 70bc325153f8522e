// Package visual describes the rendered page as seen by pixel readers: a
// tree of nodes with page-space bounds and a few optional capabilities.
package visual

import (
	"context"
	"errors"
	"image"
	"image/color"

	"cardforge/pkg/geometry"
)

// ErrUnreadable is returned when a pixel source cannot be read.
var ErrUnreadable = errors.New("pixel source unreadable")

// Kind identifies what a node draws.
type Kind int

const (
	KindBox Kind = iota
	KindImage
	KindCanvas
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindImage:
		return "image"
	case KindCanvas:
		return "canvas"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Node is one element of the rendered page.
type Node interface {
	Kind() Kind
	// Bounds is the rendered rectangle in page coordinates.
	Bounds() geometry.Rect
	// Parent is nil for the root.
	Parent() Node
}

// Bitmap is a node that displays a decoded image scaled into its bounds.
type Bitmap interface {
	Node
	// SourceID identifies the pixel data; nodes sharing it share pixels.
	SourceID() string
	Natural() (image.Image, error)
}

// Surface is a node that owns a pixel buffer of its own.
type Surface interface {
	Node
	Buffer() (image.Image, error)
}

// Page is the hit-testable rendered document.
type Page interface {
	Root() Node
	// ElementAt returns the topmost hit-testable node at the page point, or nil.
	ElementAt(x, y float64) Node
	// PaintedBackground returns the node's own resolved background colour.
	// ok is false when the node paints no background.
	PaintedBackground(n Node) (c color.NRGBA, ok bool)
	// Viewport is the visible region in page coordinates.
	Viewport() geometry.Rect
}

// Overlay is a layer drawn above the page that can be removed from hit
// testing temporarily. SetHitTestable(false) and SetHitTestable(true) are
// used in pairs and may nest across goroutines.
type Overlay interface {
	SetHitTestable(bool)
	IsOverlay(n Node) bool
}

// SnapshotOptions controls RenderToImage.
type SnapshotOptions struct {
	PixelRatio float64
	// Width and Height crop the output to the top-left region of the
	// viewport, in page units. Zero means the root's full bounds.
	Width, Height float64
	// Origin is the page point mapped to the output's top-left corner.
	Origin geometry.Point2D
	// Exclude skips nodes (and their subtrees) when it returns true.
	Exclude func(Node) bool
}

// Snapshotter rasterises a subtree of the page.
type Snapshotter interface {
	RenderToImage(ctx context.Context, root Node, opts SnapshotOptions) (image.Image, error)
}

// Ancestors calls fn for n and each of its ancestors until fn returns false.
func Ancestors(n Node, fn func(Node) bool) {
	for cur := n; cur != nil; cur = cur.Parent() {
		if !fn(cur) {
			return
		}
	}
}
