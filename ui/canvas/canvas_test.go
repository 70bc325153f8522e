package canvas

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/internal/app"
	"cardforge/internal/card"
	"cardforge/internal/eyedropper"
	"cardforge/pkg/colorutil"
	"cardforge/pkg/geometry"
)

// newTestPreview builds a preview over an asset directory holding a 600×200
// placeholder image. The preview is sized so the card sits at (16, 16) and
// the image area is (51, 89, 290×230).
func newTestPreview(t *testing.T) (*app.State, *CardPreview) {
	t.Helper()
	test.NewApp()

	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 600, 200))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	f, err := os.Create(filepath.Join(dir, card.DefaultImage))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cfg := app.DefaultConfig()
	cfg.AssetDir = dir
	state := app.NewState(cfg)
	cp := NewCardPreview(state)
	cp.Resize(cp.MinSize())
	return state, cp
}

var (
	imagePoint = fyne.NewPos(150, 200)
	// cardEdge lies on the card border, left of the image frame.
	cardEdge = fyne.NewPos(18, 300)
)

func TestPreviewFitsImageOnLoad(t *testing.T) {
	state, cp := newTestPreview(t)

	st := cp.Viewport().State()
	require.True(t, st.Measured)
	assert.InDelta(t, 1.15, st.Scale, 1e-9)
	assert.InDelta(t, 1.15, state.Card().Transform.Scale, 1e-9)
	assert.NotNil(t, cp.CardRoot())
}

func TestPreviewDoubleTapEditsAndGesturesMoveImage(t *testing.T) {
	state, cp := newTestPreview(t)

	cp.Tapped(&fyne.PointEvent{Position: imagePoint})
	cp.Tapped(&fyne.PointEvent{Position: imagePoint})
	require.True(t, state.Editing())

	cp.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: imagePoint}, Scrolled: fyne.NewDelta(0, 1)})
	assert.InDelta(t, 1.25, state.Card().Transform.Scale, 1e-9)

	cp.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: imagePoint}, Dragged: fyne.NewDelta(10, 0)})
	cp.DragEnd()
	assert.InDelta(t, 10, state.Card().Transform.X, 1e-9)
	assert.InDelta(t, 0, state.Card().Transform.Y, 1e-9)

	// Gestures outside the image are ignored.
	outside := fyne.NewPos(20, 20)
	cp.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: outside}, Scrolled: fyne.NewDelta(0, 1)})
	assert.InDelta(t, 1.25, state.Card().Transform.Scale, 1e-9)
}

func TestPreviewIgnoresGesturesWhenNotEditing(t *testing.T) {
	state, cp := newTestPreview(t)
	before := state.Card().Transform

	cp.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: imagePoint}, Scrolled: fyne.NewDelta(0, 1)})
	cp.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: imagePoint}, Dragged: fyne.NewDelta(10, 10)})
	cp.DragEnd()
	assert.Equal(t, before, state.Card().Transform)
}

func TestPreviewRendersCard(t *testing.T) {
	state, cp := newTestPreview(t)
	require.NoError(t, state.SetColor(card.FieldBorder, "#ff0000"))

	out := cp.draw(int(cp.Size().Width), int(cp.Size().Height))
	require.Equal(t, image.Rect(0, 0, int(cp.Size().Width), int(cp.Size().Height)), out.Bounds())
	r, g, b, _ := out.At(int(cardEdge.X), int(cardEdge.Y)).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b}, "card border")
	r, g, b, _ = out.At(4, 4).RGBA()
	assert.Equal(t, [3]uint32{0xe5e5, 0xe7e7, 0xebeb}, [3]uint32{r, g, b}, "preview background")
}

func TestEyedropperOverlayPicksCardColour(t *testing.T) {
	state, cp := newTestPreview(t)
	require.NoError(t, state.SetColor(card.FieldBackground, "#112233"))

	ov := NewEyedropperOverlay(cp, eyedropper.DefaultLoupe(), false, 1)
	ov.Resize(cp.Size())

	var got []eyedropper.Result
	require.NoError(t, ov.Begin(func(res eyedropper.Result) { got = append(got, res) }))
	assert.True(t, ov.Active())
	assert.True(t, ov.Visible())

	// While active the overlay node covers the page.
	hit := cp.Page().ElementAt(100, 100)
	assert.True(t, cp.Overlay().IsOverlay(hit))

	ov.Tapped(&fyne.PointEvent{Position: cardEdge})
	require.Len(t, got, 1)
	assert.Equal(t, eyedropper.Result{Color: colorutil.Hex("#112233"), OK: true}, got[0])
	assert.False(t, ov.Visible())
	assert.False(t, cp.Overlay().IsOverlay(cp.Page().ElementAt(100, 100)))
}

func TestEyedropperOverlayCancel(t *testing.T) {
	_, cp := newTestPreview(t)
	ov := NewEyedropperOverlay(cp, eyedropper.DefaultLoupe(), false, 1)
	ov.Resize(cp.Size())

	var got []eyedropper.Result
	require.NoError(t, ov.Begin(func(res eyedropper.Result) { got = append(got, res) }))
	ov.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: cardEdge}})
	ov.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})

	require.Len(t, got, 1)
	assert.False(t, got[0].OK)
	assert.False(t, ov.Active())
}

func TestEyedropperOverlayRestartKeepsOverlay(t *testing.T) {
	_, cp := newTestPreview(t)
	ov := NewEyedropperOverlay(cp, eyedropper.DefaultLoupe(), false, 1)
	ov.Resize(cp.Size())

	var first []eyedropper.Result
	require.NoError(t, ov.Begin(func(res eyedropper.Result) { first = append(first, res) }))
	require.NoError(t, ov.Begin(func(eyedropper.Result) {}))

	require.Len(t, first, 1)
	assert.False(t, first[0].OK, "previous session cancelled")
	assert.True(t, ov.Visible())
	assert.True(t, ov.Active())
}

func TestDrawingHelpers(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	red := color.NRGBA{R: 255, A: 255}

	drawDashedRect(img, image.Rect(0, 0, 40, 40), red, 1)
	assert.Equal(t, red, img.NRGBAAt(0, 0))
	assert.Equal(t, red, img.NRGBAAt(3, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(5, 0), "gap in dash")
	assert.Equal(t, red, img.NRGBAAt(39, 2))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(20, 20))

	line := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	drawLine(line, 0, 0, 9, 9, red, 1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, red, line.NRGBAAt(i, i))
	}

	cross := image.NewNRGBA(image.Rect(0, 0, 30, 30))
	drawCrosshair(cross, 15, 15, 9, 3)
	assert.Equal(t, color.NRGBA{}, cross.NRGBAAt(15, 15), "centre left clear")
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, cross.NRGBAAt(9, 15))

	assert.Equal(t, image.Rect(2, 3, 9, 11), scaleRect(geometry.NewRect(1, 1.5, 3.2, 4), 2))
}
