package scene

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	imgpkg "cardforge/internal/image"
	"cardforge/internal/visual"
	"cardforge/pkg/geometry"
)

// ErrForeignNode is returned when asked to render a node from another tree
// implementation.
var ErrForeignNode = errors.New("node is not a scene element")

// Renderer rasterises scene trees. It implements visual.Snapshotter.
type Renderer struct {
	// Interpolator scales images and canvases. Defaults to bilinear.
	Interpolator xdraw.Interpolator
}

// NewRenderer creates a renderer with bilinear scaling.
func NewRenderer() *Renderer {
	return &Renderer{Interpolator: xdraw.BiLinear}
}

// renderPass carries the per-call mapping from page units to output pixels.
type renderPass struct {
	ctx     context.Context
	dst     *image.NRGBA
	origin  geometry.Point2D
	ratio   float64
	exclude func(visual.Node) bool
	faces   *faceCache
	interp  xdraw.Interpolator
}

// RenderToImage draws root and its descendants into a new NRGBA image.
func (r *Renderer) RenderToImage(ctx context.Context, root visual.Node, opts visual.SnapshotOptions) (image.Image, error) {
	e, ok := root.(Element)
	if !ok {
		return nil, ErrForeignNode
	}

	ratio := opts.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	region := e.Bounds()
	if opts.Width > 0 && opts.Height > 0 {
		region = geometry.NewRect(opts.Origin.X, opts.Origin.Y, opts.Width, opts.Height)
	}
	w := int(math.Ceil(region.Width * ratio))
	h := int(math.Ceil(region.Height * ratio))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("failed to render: empty region %.0fx%.0f", region.Width, region.Height)
	}

	interp := r.Interpolator
	if interp == nil {
		interp = xdraw.BiLinear
	}
	pass := &renderPass{
		ctx:     ctx,
		dst:     image.NewNRGBA(image.Rect(0, 0, w, h)),
		origin:  region.TopLeft(),
		ratio:   ratio,
		exclude: opts.Exclude,
		faces:   newFaceCache(),
		interp:  interp,
	}
	defer pass.faces.close()

	if err := pass.draw(e, pass.dst.Bounds()); err != nil {
		return nil, err
	}
	return pass.dst, nil
}

// toOutput maps page coordinates to output pixels.
func (p *renderPass) toOutput() geometry.AffineTransform {
	return geometry.Scale(p.ratio, p.ratio).Compose(geometry.Translation(-p.origin.X, -p.origin.Y))
}

// toPixels maps a page rectangle to output pixels.
func (p *renderPass) toPixels(r geometry.Rect) image.Rectangle {
	x0 := math.Round((r.X - p.origin.X) * p.ratio)
	y0 := math.Round((r.Y - p.origin.Y) * p.ratio)
	x1 := math.Round((r.X + r.Width - p.origin.X) * p.ratio)
	y1 := math.Round((r.Y + r.Height - p.origin.Y) * p.ratio)
	return image.Rect(int(x0), int(y0), int(x1), int(y1))
}

func (p *renderPass) draw(e Element, clip image.Rectangle) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	b := e.base()
	if b.Hidden || (p.exclude != nil && p.exclude(e)) {
		return nil
	}

	rect := p.toPixels(e.Bounds())
	p.paintBackground(b, rect, clip)

	switch n := e.(type) {
	case *Image:
		if n.Pixels != nil {
			p.paintPixels(n.Pixels, b.Rect, clip)
		}
	case *Canvas:
		if n.Pixels != nil {
			p.paintPixels(n.Pixels, b.Rect, clip)
		}
	case *Text:
		p.paintText(n, rect.Intersect(clip))
	}

	p.paintBorder(b, rect, clip)

	childClip := clip
	if b.Clip {
		childClip = clip.Intersect(rect)
	}
	if childClip.Empty() {
		return nil
	}
	for _, c := range b.children {
		if err := p.draw(c, childClip); err != nil {
			return err
		}
	}
	return nil
}

func (p *renderPass) paintBackground(b *Base, rect, clip image.Rectangle) {
	if b.Fill.A == 0 {
		return
	}
	area := rect.Intersect(clip)
	if area.Empty() {
		return
	}
	if b.Texture == nil {
		draw.Draw(p.dst, area, image.NewUniform(b.Fill), image.Point{}, draw.Over)
		return
	}
	comp := imgpkg.NewComposite(rect.Dx(), rect.Dy(), b.Fill)
	comp.AddLayer(b.Texture, imgpkg.BlendMultiply, 1)
	draw.Draw(p.dst, area, comp.Render(), area.Min.Sub(rect.Min), draw.Over)
}

func (p *renderPass) paintBorder(b *Base, rect, clip image.Rectangle) {
	if b.BorderWidth <= 0 || b.BorderColor.A == 0 {
		return
	}
	bw := int(math.Max(1, math.Round(b.BorderWidth*p.ratio)))
	src := image.NewUniform(b.BorderColor)
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+bw),
		image.Rect(rect.Min.X, rect.Max.Y-bw, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y+bw, rect.Min.X+bw, rect.Max.Y-bw),
		image.Rect(rect.Max.X-bw, rect.Min.Y+bw, rect.Max.X, rect.Max.Y-bw),
	}
	for _, edge := range edges {
		area := edge.Intersect(clip)
		if !area.Empty() {
			draw.Draw(p.dst, area, src, image.Point{}, draw.Over)
		}
	}
}

// paintPixels stretches src over the page rectangle r, clipped.
func (p *renderPass) paintPixels(src image.Image, r geometry.Rect, clip image.Rectangle) {
	sb := src.Bounds()
	if sb.Empty() || r.Width <= 0 || r.Height <= 0 {
		return
	}
	area := clip.Intersect(p.dst.Bounds())
	if area.Empty() {
		return
	}

	natural := geometry.NewSize(float64(sb.Dx()), float64(sb.Dy()))
	toPage := geometry.MapSizeToRect(natural, r).
		Compose(geometry.Translation(-float64(sb.Min.X), -float64(sb.Min.Y)))
	t := p.toOutput().Compose(toPage)
	m := f64.Aff3{t.A, t.B, t.TX, t.C, t.D, t.TY}

	sub := p.dst.SubImage(area).(*image.NRGBA)
	p.interp.Transform(sub, m, src, sb, xdraw.Over, nil)
}

func (p *renderPass) paintText(n *Text, area image.Rectangle) {
	if n.Text == "" || area.Empty() || n.Size <= 0 {
		return
	}
	face := p.faces.face(n.Bold, n.Size*p.ratio)
	if face == nil {
		return
	}
	rect := p.toPixels(n.Rect)
	metrics := face.Metrics()
	ascent := fixedToFloat(metrics.Ascent)
	descent := fixedToFloat(metrics.Descent)
	lineHeight := (ascent + descent) * 1.15

	var lines []string
	var top float64
	if n.Wrap {
		lines = wrapLines(face, n.Text, float64(rect.Dx()))
		top = float64(rect.Min.Y)
	} else {
		lines = []string{n.Text}
		top = float64(rect.Min.Y) + (float64(rect.Dy())-(ascent+descent))/2
	}

	d := &font.Drawer{
		Dst:  p.dst.SubImage(area).(*image.NRGBA),
		Src:  image.NewUniform(n.Color),
		Face: face,
	}
	for i, line := range lines {
		width := fixedToFloat(d.MeasureString(line))
		x := float64(rect.Min.X)
		switch n.Align {
		case AlignCenter:
			x += (float64(rect.Dx()) - width) / 2
		case AlignRight:
			x += float64(rect.Dx()) - width
		}
		baseline := top + ascent + float64(i)*lineHeight
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(baseline * 64)}
		d.DrawString(line)
	}
}
