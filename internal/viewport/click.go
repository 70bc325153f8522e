package viewport

import (
	"sync"
	"time"
)

type clickPhase int

const (
	clickIdle clickPhase = iota
	clickAwaitingSecond
)

// ClickResolver tells single clicks from double clicks. The first click arms
// a deferred transition; a second click inside the window cancels it and
// reports a double click, otherwise the deferred transition reports a single
// click. At most one outcome fires per click sequence.
type ClickResolver struct {
	mu       sync.Mutex
	clock    Clock
	window   time.Duration
	phase    clickPhase
	timer    Timer
	gen      uint64
	disposed bool

	onSingle func()
	onDouble func()
}

// NewClickResolver creates a resolver. Either callback may be nil.
func NewClickResolver(clock Clock, window time.Duration, onSingle, onDouble func()) *ClickResolver {
	if clock == nil {
		clock = RealClock()
	}
	return &ClickResolver{
		clock:    clock,
		window:   window,
		onSingle: onSingle,
		onDouble: onDouble,
	}
}

// Click registers one click.
func (r *ClickResolver) Click() {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}

	switch r.phase {
	case clickIdle:
		r.gen++
		gen := r.gen
		r.phase = clickAwaitingSecond
		r.timer = r.clock.AfterFunc(r.window, func() { r.fire(gen) })
		r.mu.Unlock()

	case clickAwaitingSecond:
		if r.timer != nil {
			r.timer.Stop()
			r.timer = nil
		}
		r.phase = clickIdle
		r.gen++
		cb := r.onDouble
		r.mu.Unlock()
		if cb != nil {
			cb()
		}
	}
}

// fire runs when the single-click window elapses. A stale generation means
// the timer was superseded by a second click or a dispose.
func (r *ClickResolver) fire(gen uint64) {
	r.mu.Lock()
	if r.disposed || gen != r.gen || r.phase != clickAwaitingSecond {
		r.mu.Unlock()
		return
	}
	r.phase = clickIdle
	r.timer = nil
	cb := r.onSingle
	r.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Pending reports whether a single click is waiting for its window to close.
func (r *ClickResolver) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == clickAwaitingSecond
}

// Dispose cancels any pending transition. Later clicks and late timer fires
// are ignored.
func (r *ClickResolver) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = true
	r.phase = clickIdle
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
