package eyedropper

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/internal/scene"
	"cardforge/internal/visual"
	"cardforge/pkg/colorutil"
	"cardforge/pkg/geometry"
)

// recorder collects session callbacks from any goroutine.
type recorder struct {
	mu      sync.Mutex
	samples []Sample
	results []Result
}

func (r *recorder) onSample(s Sample) {
	r.mu.Lock()
	r.samples = append(r.samples, s)
	r.mu.Unlock()
}

func (r *recorder) onDone(res Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func (r *recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sample(nil), r.samples...)
}

func (r *recorder) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}

// gateSnapshotter blocks until released, then returns img or err.
type gateSnapshotter struct {
	release chan struct{}
	img     image.Image
	err     error

	mu   sync.Mutex
	ctxs []context.Context
	opts []visual.SnapshotOptions
}

func newGate(img image.Image, err error) *gateSnapshotter {
	return &gateSnapshotter{release: make(chan struct{}), img: img, err: err}
}

func (g *gateSnapshotter) RenderToImage(ctx context.Context, root visual.Node, opts visual.SnapshotOptions) (image.Image, error) {
	g.mu.Lock()
	g.ctxs = append(g.ctxs, ctx)
	g.opts = append(g.opts, opts)
	g.mu.Unlock()

	select {
	case <-g.release:
		return g.img, g.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gateSnapshotter) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ctxs)
}

func sessionFixture(snap visual.Snapshotter, rec *recorder) (*Session, *scene.Overlay) {
	page, _ := testPage()
	overlay := scene.NewOverlay("eyedropper", geometry.NewRect(0, 0, 200, 200))
	page.SetOverlay(overlay)
	s := NewSession(Options{
		Page:        page,
		Overlay:     overlay,
		Snapshotter: snap,
		Capture:     snap != nil,
		PixelRatio:  1,
		Loupe:       DefaultLoupe(),
		OnSample:    rec.onSample,
		OnDone:      rec.onDone,
	})
	return s, overlay
}

func TestSessionMoveAndConfirm(t *testing.T) {
	rec := &recorder{}
	s, _ := sessionFixture(nil, rec)
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, PhaseActive, s.Phase())
	assert.ErrorIs(t, s.Start(context.Background()), ErrStarted)

	s.Move(50, 50)
	s.Move(150, 150)
	samples := rec.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, colorutil.Hex("#ff0000"), samples[0].Color)
	assert.Equal(t, colorutil.HexWhite, samples[1].Color)
	assert.Equal(t, colorutil.HexWhite, s.Current())
	assert.Equal(t, &geometry.Point2D{X: 150, Y: 150}, s.Pointer())

	hex, ok := s.Confirm()
	assert.True(t, ok)
	assert.Equal(t, colorutil.HexWhite, hex)
	assert.Equal(t, PhaseConfirmed, s.Phase())
	assert.Equal(t, []Result{{Color: colorutil.HexWhite, OK: true}}, rec.Results())

	// Ended sessions ignore further input.
	s.Move(50, 50)
	s.Cancel()
	_, ok = s.Confirm()
	assert.False(t, ok)
	assert.Len(t, rec.Samples(), 2)
	assert.Len(t, rec.Results(), 1)
}

func TestSessionConfirmAt(t *testing.T) {
	rec := &recorder{}
	s, overlay := sessionFixture(nil, rec)
	require.NoError(t, s.Start(context.Background()))

	hex, ok := s.ConfirmAt(20, 20)
	assert.True(t, ok)
	assert.Equal(t, colorutil.Hex("#ff0000"), hex)
	assert.True(t, overlay.HitTestable())
	assert.Equal(t, []Result{{Color: "#ff0000", OK: true}}, rec.Results())
}

func TestSessionConfirmWithoutSample(t *testing.T) {
	rec := &recorder{}
	s, _ := sessionFixture(nil, rec)
	require.NoError(t, s.Start(context.Background()))

	_, ok := s.Confirm()
	assert.False(t, ok)
	assert.Equal(t, PhaseCancelled, s.Phase())
	assert.Equal(t, []Result{{}}, rec.Results())
}

func TestSessionCancel(t *testing.T) {
	rec := &recorder{}
	s, _ := sessionFixture(nil, rec)
	require.NoError(t, s.Start(context.Background()))
	s.Move(50, 50)

	s.Cancel()
	s.Cancel()
	assert.Equal(t, PhaseCancelled, s.Phase())
	assert.Equal(t, []Result{{}}, rec.Results())
}

// halves returns a 200x200 frame, blue on the left half and green on the
// right, so captured samples are distinguishable from the red card.
func halves() *image.NRGBA {
	img := solid(200, 200, blue)
	for y := 0; y < 200; y++ {
		for x := 100; x < 200; x++ {
			img.SetNRGBA(x, y, green)
		}
	}
	return img
}

func TestCaptureUpgradesCurrentPointerOnly(t *testing.T) {
	rec := &recorder{}
	gate := newGate(halves(), nil)
	s, overlay := sessionFixture(gate, rec)
	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, PhaseCapturing, s.Phase())

	// Fallback sampling works while the capture is pending.
	s.Move(10, 10)
	s.Move(80, 80)
	require.Len(t, rec.Samples(), 2)
	assert.Equal(t, colorutil.Hex("#ff0000"), rec.Samples()[1].Color)
	assert.False(t, s.Precise())

	require.Eventually(t, func() bool { return gate.calls() == 1 }, time.Second, time.Millisecond)
	close(gate.release)

	require.Eventually(t, func() bool { return len(rec.Samples()) == 3 }, time.Second, time.Millisecond)
	last := rec.Samples()[2]
	assert.Equal(t, geometry.NewPoint2D(80, 80), last.Point, "re-sampled at the latest pointer")
	assert.Equal(t, colorutil.Hex("#0000ff"), last.Color)
	assert.Equal(t, PhaseActive, s.Phase())
	assert.True(t, s.Precise())

	s.Move(150, 20)
	assert.Equal(t, colorutil.Hex("#00ff00"), s.Current())

	opts := gate.opts[0]
	assert.Equal(t, 200.0, opts.Width)
	assert.True(t, opts.Exclude(overlay))
}

func TestCaptureFailureFallsBack(t *testing.T) {
	rec := &recorder{}
	gate := newGate(nil, errors.New("render exploded"))
	s, _ := sessionFixture(gate, rec)
	require.NoError(t, s.Start(context.Background()))
	close(gate.release)

	require.Eventually(t, func() bool { return s.Phase() == PhaseActive }, time.Second, time.Millisecond)
	assert.False(t, s.Precise())

	s.Move(50, 50)
	assert.Equal(t, colorutil.Hex("#ff0000"), s.Current())
}

func TestCaptureAfterCancelIsDropped(t *testing.T) {
	rec := &recorder{}
	gate := newGate(halves(), nil)
	s, _ := sessionFixture(gate, rec)
	require.NoError(t, s.Start(context.Background()))
	s.Move(10, 10)
	require.Eventually(t, func() bool { return gate.calls() == 1 }, time.Second, time.Millisecond)

	s.Cancel()
	assert.ErrorIs(t, gate.ctxs[0].Err(), context.Canceled)
	close(gate.release)

	assert.Never(t, func() bool { return len(rec.Samples()) > 1 || s.Precise() }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, PhaseCancelled, s.Phase())
}

func TestPickerBeginCancelsPrevious(t *testing.T) {
	page, _ := testPage()
	overlay := scene.NewOverlay("eyedropper", geometry.NewRect(0, 0, 200, 200))
	page.SetOverlay(overlay)
	gate := newGate(halves(), nil)
	p := NewPicker(Options{Page: page, Overlay: overlay, Snapshotter: gate, Capture: true, PixelRatio: 1})

	first := &recorder{}
	s1, err := p.Begin(context.Background(), first.onSample, first.onDone)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return gate.calls() == 1 }, time.Second, time.Millisecond)

	second := &recorder{}
	s2, err := p.Begin(context.Background(), second.onSample, second.onDone)
	require.NoError(t, err)

	assert.Equal(t, PhaseCancelled, s1.Phase())
	assert.Equal(t, []Result{{}}, first.Results())
	assert.ErrorIs(t, gate.ctxs[0].Err(), context.Canceled)
	assert.Same(t, s2, p.Current())

	p.Close()
	assert.Equal(t, PhaseCancelled, s2.Phase())
	assert.Nil(t, p.Current())
}

type fakeNative struct {
	hex colorutil.Hex
	ok  bool
	err error
}

func (f fakeNative) PickColor(ctx context.Context) (colorutil.Hex, bool, error) {
	return f.hex, f.ok, f.err
}

func TestNativePicker(t *testing.T) {
	t.Run("picked", func(t *testing.T) {
		rec := &recorder{}
		gate := newGate(halves(), nil)
		s, _ := sessionFixture(gate, rec)
		s.opts.Native = fakeNative{hex: "#123456", ok: true}
		require.NoError(t, s.Start(context.Background()))

		require.Eventually(t, func() bool { return s.Phase() == PhaseConfirmed }, time.Second, time.Millisecond)
		assert.Equal(t, []Result{{Color: "#123456", OK: true}}, rec.Results())
		assert.Equal(t, 0, gate.calls(), "capture skipped")
	})

	t.Run("dismissed", func(t *testing.T) {
		rec := &recorder{}
		s, _ := sessionFixture(nil, rec)
		s.opts.Native = fakeNative{}
		require.NoError(t, s.Start(context.Background()))

		require.Eventually(t, func() bool { return s.Phase() == PhaseCancelled }, time.Second, time.Millisecond)
		assert.Equal(t, []Result{{}}, rec.Results())
	})

	t.Run("failed", func(t *testing.T) {
		rec := &recorder{}
		s, _ := sessionFixture(nil, rec)
		s.opts.Native = fakeNative{err: errors.New("no portal")}
		require.NoError(t, s.Start(context.Background()))

		s.Move(50, 50)
		hex, ok := s.Confirm()
		assert.True(t, ok)
		assert.Equal(t, colorutil.Hex("#ff0000"), hex)
	})
}
