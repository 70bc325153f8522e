package eyedropper

import (
	"context"
	"sync"
)

// Picker hands out sessions, at most one live at a time.
type Picker struct {
	opts Options

	mu      sync.Mutex
	current *Session
}

// NewPicker creates a picker whose sessions use opts. OnSample and OnDone
// are supplied per session.
func NewPicker(opts Options) *Picker {
	return &Picker{opts: opts}
}

// SetNative swaps the native picker used by later sessions.
func (p *Picker) SetNative(n NativePicker) {
	p.mu.Lock()
	p.opts.Native = n
	p.mu.Unlock()
}

// SetCapture toggles page capture for later sessions.
func (p *Picker) SetCapture(on bool) {
	p.mu.Lock()
	p.opts.Capture = on
	p.mu.Unlock()
}

// Begin cancels any live session and starts a new one.
func (p *Picker) Begin(ctx context.Context, onSample func(Sample), onDone func(Result)) (*Session, error) {
	p.mu.Lock()
	prev := p.current
	opts := p.opts
	opts.OnSample = onSample
	opts.OnDone = onDone
	s := NewSession(opts)
	p.current = s
	p.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the most recent session, live or not.
func (p *Picker) Current() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Close cancels the live session, if any.
func (p *Picker) Close() {
	p.mu.Lock()
	s := p.current
	p.current = nil
	p.mu.Unlock()

	if s != nil {
		s.Cancel()
	}
}
