package viewport

import "cardforge/pkg/geometry"

// Transform is translate(X, Y) followed by a uniform scale about the
// container centre.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Affine maps natural image pixels to container-local pixels. The unscaled
// image is centred in the container, so the scale origin coincides with the
// container centre.
func (t Transform) Affine(natural, container geometry.Size) geometry.AffineTransform {
	scale := t.Scale
	if scale <= 0 {
		scale = 1
	}
	return geometry.Translation(container.Width/2+t.X, container.Height/2+t.Y).
		Compose(geometry.Scale(scale, scale)).
		Compose(geometry.Translation(-natural.Width/2, -natural.Height/2))
}

// ImageRect returns where the transformed image lands, in the coordinate
// space of the container rectangle.
func (t Transform) ImageRect(natural geometry.Size, container geometry.Rect) geometry.Rect {
	local := t.Affine(natural, container.Size()).ApplyRect(geometry.NewRect(0, 0, natural.Width, natural.Height))
	return local.Translate(container.X, container.Y)
}
