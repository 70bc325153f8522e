package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newCountingResolver(clock Clock) (*ClickResolver, *int, *int) {
	singles, doubles := 0, 0
	r := NewClickResolver(clock, 250*time.Millisecond,
		func() { singles++ },
		func() { doubles++ },
	)
	return r, &singles, &doubles
}

func TestClickResolverSingle(t *testing.T) {
	clock := &manualClock{}
	r, singles, doubles := newCountingResolver(clock)

	r.Click()
	assert.True(t, r.Pending())
	clock.Advance(249 * time.Millisecond)
	assert.Equal(t, 0, *singles)

	clock.Advance(2 * time.Millisecond)
	assert.Equal(t, 1, *singles)
	assert.Equal(t, 0, *doubles)
	assert.False(t, r.Pending())
}

func TestClickResolverDouble(t *testing.T) {
	clock := &manualClock{}
	r, singles, doubles := newCountingResolver(clock)

	r.Click()
	clock.Advance(100 * time.Millisecond)
	r.Click()
	clock.Advance(time.Second)

	assert.Equal(t, 0, *singles)
	assert.Equal(t, 1, *doubles)
}

func TestClickResolverThreeClicks(t *testing.T) {
	clock := &manualClock{}
	r, singles, doubles := newCountingResolver(clock)

	r.Click()
	r.Click()
	r.Click()
	clock.Advance(time.Second)

	assert.Equal(t, 1, *doubles)
	assert.Equal(t, 1, *singles)
}

func TestClickResolverStaleFireIgnored(t *testing.T) {
	clock := &manualClock{}
	r, singles, doubles := newCountingResolver(clock)

	r.Click()
	r.Click()
	clock.fireStale()

	assert.Equal(t, 0, *singles)
	assert.Equal(t, 1, *doubles)
}

func TestClickResolverDispose(t *testing.T) {
	clock := &manualClock{}
	r, singles, doubles := newCountingResolver(clock)

	r.Click()
	r.Dispose()
	clock.Advance(time.Second)
	clock.fireStale()
	r.Click()
	clock.Advance(time.Second)

	assert.Equal(t, 0, *singles)
	assert.Equal(t, 0, *doubles)
}
