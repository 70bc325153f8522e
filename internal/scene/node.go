// Package scene is a retained tree of drawable nodes laid out in page
// coordinates. It implements the visual interfaces for hit testing, colour
// sampling and snapshots.
package scene

import (
	"image"
	"image/color"

	"cardforge/internal/visual"
	"cardforge/pkg/geometry"
)

// Element is any node of the scene tree.
type Element interface {
	visual.Node
	base() *Base
}

// Base holds what every node has: bounds, an optional background, an
// optional border and children.
type Base struct {
	Name string
	Rect geometry.Rect

	// Fill is the node's own background. Zero alpha means none.
	Fill color.NRGBA
	// Texture is multiplied over Fill when both are set.
	Texture image.Image

	BorderWidth float64
	BorderColor color.NRGBA

	// Clip hides descendants outside Rect, for drawing and hit testing.
	Clip bool
	// Hidden removes the node and its subtree from drawing and hit testing.
	Hidden bool
	// NoHit keeps the node drawn but transparent to hit testing. Children
	// are still tested.
	NoHit bool

	self     Element
	parent   Element
	children []Element
}

func (b *Base) base() *Base { return b }

// Bounds returns the node rectangle in page coordinates.
func (b *Base) Bounds() geometry.Rect { return b.Rect }

// Parent returns the enclosing node, or nil for a root.
func (b *Base) Parent() visual.Node {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

// Children returns the child nodes in paint order.
func (b *Base) Children() []Element { return b.children }

// Add appends children, painted above existing ones.
func (b *Base) Add(children ...Element) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.base().parent = b.self
		b.children = append(b.children, c)
	}
}

// Box is a plain rectangle.
type Box struct {
	Base
}

// NewBox creates a box.
func NewBox(name string, r geometry.Rect) *Box {
	b := &Box{}
	b.Name = name
	b.Rect = r
	b.self = b
	return b
}

func (b *Box) Kind() visual.Kind { return visual.KindBox }

// Image displays decoded pixels stretched over its rectangle. The
// rectangle may extend past a clipping parent.
type Image struct {
	Base
	Source string
	Pixels image.Image
}

// NewImage creates an image node. pixels may be nil for a broken image.
func NewImage(name string, r geometry.Rect, source string, pixels image.Image) *Image {
	n := &Image{Source: source, Pixels: pixels}
	n.Name = name
	n.Rect = r
	n.self = n
	return n
}

func (n *Image) Kind() visual.Kind { return visual.KindImage }

// SourceID identifies the pixel data.
func (n *Image) SourceID() string { return n.Source }

// Natural returns the undecorated pixels.
func (n *Image) Natural() (image.Image, error) {
	if n.Pixels == nil || n.Pixels.Bounds().Empty() {
		return nil, visual.ErrUnreadable
	}
	return n.Pixels, nil
}

// Canvas owns a pixel buffer drawn over its rectangle.
type Canvas struct {
	Base
	Pixels *image.NRGBA
}

// NewCanvas creates a canvas node.
func NewCanvas(name string, r geometry.Rect, buf *image.NRGBA) *Canvas {
	n := &Canvas{Pixels: buf}
	n.Name = name
	n.Rect = r
	n.self = n
	return n
}

func (n *Canvas) Kind() visual.Kind { return visual.KindCanvas }

// Buffer returns the canvas pixels.
func (n *Canvas) Buffer() (image.Image, error) {
	if n.Pixels == nil || n.Pixels.Bounds().Empty() {
		return nil, visual.ErrUnreadable
	}
	return n.Pixels, nil
}

// Align is horizontal text alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Text draws a run of text inside its rectangle, vertically centred, or
// top-aligned and word-wrapped when Wrap is set.
type Text struct {
	Base
	Text  string
	Size  float64
	Bold  bool
	Color color.NRGBA
	Align Align
	Wrap  bool
}

// NewText creates a text node.
func NewText(name string, r geometry.Rect, text string, size float64, c color.NRGBA) *Text {
	n := &Text{Text: text, Size: size, Color: c}
	n.Name = name
	n.Rect = r
	n.self = n
	return n
}

func (n *Text) Kind() visual.Kind { return visual.KindText }

// Walk visits e and its descendants depth first in paint order. Returning
// false from fn skips the node's children.
func Walk(e Element, fn func(Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range e.base().children {
		Walk(c, fn)
	}
}

// Find returns the first node with the given name.
func Find(root Element, name string) Element {
	var found Element
	Walk(root, func(e Element) bool {
		if found != nil {
			return false
		}
		if e.base().Name == name {
			found = e
			return false
		}
		return true
	})
	return found
}

// NameOf returns the node's name, or "" for foreign nodes.
func NameOf(n visual.Node) string {
	if e, ok := n.(Element); ok {
		return e.base().Name
	}
	return ""
}
