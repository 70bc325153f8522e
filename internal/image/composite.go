package image

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// BlendMode specifies how layers are composited.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDifference
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	case BlendDifference:
		return "Difference"
	default:
		return "Unknown"
	}
}

// Composite stacks layers over a solid base colour.
type Composite struct {
	Width     int
	Height    int
	Layers    []*CompositeLayer
	BackColor color.Color
}

// CompositeLayer is one image stretched over the whole composite.
type CompositeLayer struct {
	Image     image.Image
	BlendMode BlendMode
	Opacity   float64
}

// NewComposite creates a new Composite with the specified dimensions.
func NewComposite(width, height int, back color.Color) *Composite {
	if back == nil {
		back = color.Transparent
	}
	return &Composite{
		Width:     width,
		Height:    height,
		BackColor: back,
	}
}

// AddLayer adds a layer scaled to the composite size.
func (c *Composite) AddLayer(img image.Image, mode BlendMode, opacity float64) {
	c.Layers = append(c.Layers, &CompositeLayer{
		Image:     img,
		BlendMode: mode,
		Opacity:   opacity,
	})
}

// Render produces the final composited image.
func (c *Composite) Render() *image.NRGBA {
	result := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(result, result.Bounds(), &image.Uniform{c.BackColor}, image.Point{}, draw.Src)

	for _, cl := range c.Layers {
		if cl.Image == nil || cl.Opacity <= 0 {
			continue
		}
		c.compositeLayer(result, cl)
	}
	return result
}

// compositeLayer blends a single layer onto the result.
func (c *Composite) compositeLayer(dst *image.NRGBA, cl *CompositeLayer) {
	src := image.NewNRGBA(dst.Bounds())
	xdraw.ApproxBiLinear.Scale(src, src.Bounds(), cl.Image, cl.Image.Bounds(), xdraw.Src, nil)

	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			blended := Blend(dst.NRGBAAt(x, y), src.NRGBAAt(x, y), cl.BlendMode, cl.Opacity)
			dst.SetNRGBA(x, y, blended)
		}
	}
}

// Blend combines src over dst with the given mode.
func Blend(dst, src color.NRGBA, mode BlendMode, opacity float64) color.NRGBA {
	sf := [4]float64{float64(src.R) / 255, float64(src.G) / 255, float64(src.B) / 255, float64(src.A) / 255}
	df := [4]float64{float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255, float64(dst.A) / 255}

	var rf [3]float64

	switch mode {
	case BlendNormal:
		rf[0] = sf[0]
		rf[1] = sf[1]
		rf[2] = sf[2]

	case BlendMultiply:
		rf[0] = sf[0] * df[0]
		rf[1] = sf[1] * df[1]
		rf[2] = sf[2] * df[2]

	case BlendScreen:
		rf[0] = 1 - (1-sf[0])*(1-df[0])
		rf[1] = 1 - (1-sf[1])*(1-df[1])
		rf[2] = 1 - (1-sf[2])*(1-df[2])

	case BlendOverlay:
		for i := 0; i < 3; i++ {
			if df[i] < 0.5 {
				rf[i] = 2 * sf[i] * df[i]
			} else {
				rf[i] = 1 - 2*(1-sf[i])*(1-df[i])
			}
		}

	case BlendDifference:
		rf[0] = math.Abs(sf[0] - df[0])
		rf[1] = math.Abs(sf[1] - df[1])
		rf[2] = math.Abs(sf[2] - df[2])
	}

	// A transparent backdrop shows the source as-is.
	if df[3] == 0 {
		rf = [3]float64{sf[0], sf[1], sf[2]}
	}

	alpha := sf[3] * clamp(opacity, 0, 1)
	outA := alpha + df[3]*(1-alpha)
	if outA == 0 {
		return color.NRGBA{}
	}
	mix := func(r, d float64) uint8 {
		v := (r*alpha + d*df[3]*(1-alpha)) / outA
		return uint8(math.Round(clamp(v, 0, 1) * 255))
	}

	return color.NRGBA{
		R: mix(rf[0], df[0]),
		G: mix(rf[1], df[1]),
		B: mix(rf[2], df[2]),
		A: uint8(math.Round(clamp(outA, 0, 1) * 255)),
	}
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
