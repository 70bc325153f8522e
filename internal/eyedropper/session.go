package eyedropper

import (
	"context"
	"errors"
	"log"
	"sync"

	"cardforge/internal/visual"
	"cardforge/pkg/colorutil"
	"cardforge/pkg/geometry"
)

// ErrStarted is returned when Start is called twice on one session.
var ErrStarted = errors.New("eyedropper session already started")

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseCapturing accepts pointer input while the page capture runs.
	PhaseCapturing
	PhaseActive
	PhaseConfirmed
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCapturing:
		return "capturing"
	case PhaseActive:
		return "active"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseCancelled:
		return "cancelled"
	}
	return "unknown"
}

func (p Phase) live() bool {
	return p == PhaseCapturing || p == PhaseActive
}

// NativePicker is a platform colour picker that replaces the built-in one.
type NativePicker interface {
	// PickColor blocks until the user picks (ok true) or dismisses the
	// picker (ok false).
	PickColor(ctx context.Context) (hex colorutil.Hex, ok bool, err error)
}

// Sample is one resolved pointer position.
type Sample struct {
	Point geometry.Point2D
	Color colorutil.Hex
	Loupe LoupeView
}

// Result is the outcome of a finished session.
type Result struct {
	Color colorutil.Hex
	OK    bool
}

// Options configures a Session.
type Options struct {
	Page    visual.Page
	Overlay visual.Overlay

	// Snapshotter captures the page. Nil disables capture.
	Snapshotter visual.Snapshotter
	Capture     bool
	PixelRatio  float64

	Loupe  Loupe
	Native NativePicker

	OnSample func(Sample)
	OnDone   func(Result)
}

// Session is one eyedropper interaction, from Start to Confirm or Cancel.
type Session struct {
	opts    Options
	sampler *Sampler

	mu      sync.Mutex
	phase   Phase
	pointer *geometry.Point2D
	current colorutil.Hex

	// target is the most recently requested pointer; seq orders samples so
	// an older one never overwrites a newer one.
	target *geometry.Point2D
	seq    uint64

	capture *capture
	cancel  context.CancelFunc
}

// NewSession creates an idle session.
func NewSession(opts Options) *Session {
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = 1
	}
	opts.Loupe = opts.Loupe.normalized()
	return &Session{
		opts:    opts,
		sampler: NewSampler(opts.Page, opts.Overlay),
	}
}

// Start begins the session. Pointer input is accepted immediately; a
// capture, when enabled, upgrades precision once it lands.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return ErrStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.opts.Native != nil {
		s.phase = PhaseActive
		go s.runNative(ctx)
		return nil
	}
	s.beginCaptureLocked(ctx)
	return nil
}

// beginCaptureLocked starts a capture when possible, else goes straight to
// fallback sampling.
func (s *Session) beginCaptureLocked(ctx context.Context) {
	if !s.opts.Capture || s.opts.Snapshotter == nil {
		s.phase = PhaseActive
		return
	}
	s.phase = PhaseCapturing
	s.capture = startCapture(ctx, s.opts, s.applyCapture)
}

func (s *Session) runNative(ctx context.Context) {
	hex, ok, err := s.opts.Native.PickColor(ctx)

	s.mu.Lock()
	if !s.phase.live() {
		s.mu.Unlock()
		return
	}
	if err != nil {
		log.Printf("Eyedropper: native picker failed, using built-in sampling: %v", err)
		s.beginCaptureLocked(ctx)
		s.mu.Unlock()
		return
	}
	if !ok {
		res := s.finishLocked(PhaseCancelled)
		s.mu.Unlock()
		s.done(res)
		return
	}
	s.current = hex
	res := s.finishLocked(PhaseConfirmed)
	s.mu.Unlock()
	s.done(res)
}

// applyCapture installs a finished capture if it is still the current one,
// then re-samples the latest pointer.
func (s *Session) applyCapture(c *capture, frame *Frame, err error) {
	s.mu.Lock()
	if c != s.capture || !s.phase.live() {
		s.mu.Unlock()
		return
	}
	s.capture = nil
	s.phase = PhaseActive
	if err != nil {
		s.mu.Unlock()
		log.Printf("Eyedropper: capture failed, using fallback sampling: %v", err)
		return
	}
	s.sampler.SetFrame(frame)
	target := s.target
	s.mu.Unlock()

	if target != nil {
		s.Move(target.X, target.Y)
	}
}

// Move samples the colour under the pointer and refreshes the loupe.
func (s *Session) Move(x, y float64) {
	s.mu.Lock()
	if !s.phase.live() {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	pt := geometry.Point2D{X: x, Y: y}
	s.target = &pt
	s.mu.Unlock()

	view := s.opts.Loupe.Sample(s.sampler, x, y)
	sample := Sample{Point: pt, Color: view.Center, Loupe: view}

	s.mu.Lock()
	if seq != s.seq || !s.phase.live() {
		s.mu.Unlock()
		return
	}
	s.pointer = &pt
	s.current = sample.Color
	s.mu.Unlock()

	if s.opts.OnSample != nil {
		s.opts.OnSample(sample)
	}
}

// Confirm ends the session with the last resolved colour. ok is false when
// nothing was sampled yet or the session had already ended.
func (s *Session) Confirm() (colorutil.Hex, bool) {
	s.mu.Lock()
	if !s.phase.live() {
		s.mu.Unlock()
		return "", false
	}
	phase := PhaseConfirmed
	if s.current == "" {
		phase = PhaseCancelled
	}
	res := s.finishLocked(phase)
	s.mu.Unlock()

	s.done(res)
	return res.Color, res.OK
}

// ConfirmAt samples (x, y) and confirms it, as a click does.
func (s *Session) ConfirmAt(x, y float64) (colorutil.Hex, bool) {
	s.mu.Lock()
	if !s.phase.live() {
		s.mu.Unlock()
		return "", false
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	hex := s.sampler.SampleAt(x, y)

	s.mu.Lock()
	if seq != s.seq || !s.phase.live() {
		s.mu.Unlock()
		return "", false
	}
	pt := geometry.Point2D{X: x, Y: y}
	s.pointer = &pt
	s.current = hex
	res := s.finishLocked(PhaseConfirmed)
	s.mu.Unlock()

	s.done(res)
	return res.Color, res.OK
}

// Cancel ends the session without a pick.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.phase == PhaseConfirmed || s.phase == PhaseCancelled {
		s.mu.Unlock()
		return
	}
	wasIdle := s.phase == PhaseIdle
	res := s.finishLocked(PhaseCancelled)
	s.mu.Unlock()

	if !wasIdle {
		s.done(res)
	}
}

// finishLocked moves to a terminal phase and releases session resources.
func (s *Session) finishLocked(phase Phase) Result {
	s.phase = phase
	s.seq++
	s.capture = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.sampler.Release()

	if phase == PhaseConfirmed {
		return Result{Color: s.current, OK: true}
	}
	return Result{}
}

func (s *Session) done(res Result) {
	if s.opts.OnDone != nil {
		s.opts.OnDone(res)
	}
}

// Phase returns the lifecycle state.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Current returns the last resolved colour, empty before the first sample.
func (s *Session) Current() colorutil.Hex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pointer returns the last resolved pointer position, or nil.
func (s *Session) Pointer() *geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pointer == nil {
		return nil
	}
	p := *s.pointer
	return &p
}

// Precise reports whether samples come from a captured frame.
func (s *Session) Precise() bool {
	return s.sampler.HasFrame()
}

// Sampler exposes the session's sampler.
func (s *Session) Sampler() *Sampler {
	return s.sampler
}
