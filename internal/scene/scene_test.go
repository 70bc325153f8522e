package scene

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/internal/visual"
	"cardforge/pkg/geometry"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// buildPage lays out a 100x100 card with a clipped 40x40 frame holding an
// image that overflows it.
func buildPage(t *testing.T) (*Page, *Box, *Box, *Image) {
	t.Helper()
	card := NewBox("card", geometry.NewRect(0, 0, 100, 100))
	card.Fill = red

	frame := NewBox("frame", geometry.NewRect(30, 30, 40, 40))
	frame.Clip = true
	frame.Fill = green

	img := NewImage("photo", geometry.NewRect(10, 30, 80, 40), "photo.png", solid(8, 4, blue))
	frame.Add(img)
	card.Add(frame)

	return NewPage(card, geometry.NewRect(0, 0, 200, 200)), card, frame, img
}

func TestElementAt(t *testing.T) {
	page, card, frame, img := buildPage(t)

	assert.Equal(t, visual.Node(img), page.ElementAt(50, 50))
	assert.Equal(t, visual.Node(card), page.ElementAt(15, 50), "image clipped by its frame")
	assert.Equal(t, "page", NameOf(page.ElementAt(150, 150)))
	assert.Nil(t, page.ElementAt(250, 10), "outside the viewport")

	img.NoHit = true
	assert.Equal(t, visual.Node(frame), page.ElementAt(50, 50))

	img.Hidden = true
	img.NoHit = false
	assert.Equal(t, visual.Node(frame), page.ElementAt(50, 50))
}

func TestOverlayHitTesting(t *testing.T) {
	page, _, _, img := buildPage(t)
	overlay := NewOverlay("eyedropper", geometry.NewRect(0, 0, 200, 200))
	page.SetOverlay(overlay)

	hit := page.ElementAt(50, 50)
	assert.True(t, overlay.IsOverlay(hit))

	overlay.SetHitTestable(false)
	assert.Equal(t, visual.Node(img), page.ElementAt(50, 50))
	assert.False(t, overlay.IsOverlay(img))

	overlay.SetHitTestable(true)
	page.SetOverlay(nil)
	assert.Equal(t, visual.Node(img), page.ElementAt(50, 50))
}

func TestOverlayHidesNest(t *testing.T) {
	page, _, _, img := buildPage(t)
	overlay := NewOverlay("eyedropper", geometry.NewRect(0, 0, 200, 200))
	page.SetOverlay(overlay)

	overlay.SetHitTestable(false)
	overlay.SetHitTestable(false)
	overlay.SetHitTestable(true)
	assert.False(t, overlay.HitTestable(), "one hide still outstanding")
	assert.Equal(t, visual.Node(img), page.ElementAt(50, 50))

	overlay.SetHitTestable(true)
	overlay.SetHitTestable(true)
	assert.True(t, overlay.HitTestable())

	overlay.SetHitTestable(false)
	assert.False(t, overlay.HitTestable(), "extra releases are not banked")
}

func TestOverlaySetBounds(t *testing.T) {
	page, _, _, img := buildPage(t)
	overlay := NewOverlay("eyedropper", geometry.NewRect(0, 0, 10, 10))
	page.SetOverlay(overlay)
	assert.Equal(t, visual.Node(img), page.ElementAt(50, 50))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			page.ElementAt(50, 50)
		}
	}()
	overlay.SetBounds(geometry.NewRect(0, 0, 200, 200))
	wg.Wait()

	assert.Equal(t, geometry.NewRect(0, 0, 200, 200), overlay.Bounds())
	assert.True(t, overlay.IsOverlay(page.ElementAt(50, 50)))
}

func TestParentsAndBackground(t *testing.T) {
	page, card, frame, img := buildPage(t)

	assert.Equal(t, visual.Node(frame), img.Parent())
	assert.Equal(t, visual.Node(card), frame.Parent())
	assert.Equal(t, "page", NameOf(card.Parent()))
	assert.Nil(t, page.Root().Parent())

	_, ok := page.PaintedBackground(img)
	assert.False(t, ok)
	bg, ok := page.PaintedBackground(frame)
	require.True(t, ok)
	assert.Equal(t, green, bg)

	assert.Same(t, frame, Find(card, "frame"))
	assert.Nil(t, Find(card, "missing"))
}

func TestRenderToImage(t *testing.T) {
	_, card, _, _ := buildPage(t)
	r := NewRenderer()

	out, err := r.RenderToImage(context.Background(), card, visual.SnapshotOptions{PixelRatio: 2})
	require.NoError(t, err)
	nrgba := out.(*image.NRGBA)
	assert.Equal(t, image.Rect(0, 0, 200, 200), nrgba.Bounds())

	assert.Equal(t, red, nrgba.NRGBAAt(10, 10))
	assert.Equal(t, blue, nrgba.NRGBAAt(100, 100))
	assert.Equal(t, red, nrgba.NRGBAAt(40, 100), "overflowing image is clipped")
}

func TestRenderExcludeAndCrop(t *testing.T) {
	_, card, frame, _ := buildPage(t)
	r := NewRenderer()

	out, err := r.RenderToImage(context.Background(), card, visual.SnapshotOptions{
		PixelRatio: 1,
		Origin:     geometry.NewPoint2D(40, 40),
		Width:      20,
		Height:     20,
		Exclude:    func(n visual.Node) bool { return n == visual.Node(frame) },
	})
	require.NoError(t, err)
	nrgba := out.(*image.NRGBA)
	assert.Equal(t, image.Rect(0, 0, 20, 20), nrgba.Bounds())
	assert.Equal(t, red, nrgba.NRGBAAt(10, 10))
}

func TestRenderCancelled(t *testing.T) {
	_, card, _, _ := buildPage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer().RenderToImage(ctx, card, visual.SnapshotOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderBorderAndText(t *testing.T) {
	box := NewBox("box", geometry.NewRect(0, 0, 60, 20))
	box.Fill = color.NRGBA{255, 255, 255, 255}
	box.BorderWidth = 2
	box.BorderColor = color.NRGBA{0, 0, 0, 255}
	label := NewText("label", geometry.NewRect(0, 0, 60, 20), "HP 100", 12, color.NRGBA{0, 0, 0, 255})
	label.Align = AlignCenter
	box.Add(label)

	out, err := NewRenderer().RenderToImage(context.Background(), box, visual.SnapshotOptions{PixelRatio: 1})
	require.NoError(t, err)
	nrgba := out.(*image.NRGBA)
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, nrgba.NRGBAAt(0, 10))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, nrgba.NRGBAAt(59, 10))

	dark := 0
	for x := 3; x < 57; x++ {
		for y := 3; y < 17; y++ {
			if nrgba.NRGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 0, "text should be drawn")
}

func TestWrapLines(t *testing.T) {
	faces := newFaceCache()
	defer faces.close()
	f := faces.face(false, 10)
	require.NotNil(t, f)

	lines := wrapLines(f, "one two three four", MeasureText("one two three", 10, false)+1)
	assert.Equal(t, []string{"one two three", "four"}, lines)
	assert.Equal(t, []string{"a", "", "b"}, wrapLines(f, "a\n\nb", 100))
}
