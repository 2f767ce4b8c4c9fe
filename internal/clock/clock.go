// Package clock provides the pausable game clock that times an attempt.
package clock

import (
	"sync"
	"time"
)

// TimeSource provides the current wall time.
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the monotonic system clock.
type SystemTime struct{}

// Now returns time.Now().
func (SystemTime) Now() time.Time { return time.Now() }

// Clock accumulates elapsed game time, excluding paused intervals.
type Clock struct {
	mu sync.Mutex

	src TimeSource

	running   bool
	paused    bool
	startedAt time.Time
	pausedAt  time.Time
	pausedFor time.Duration // cumulative, closed pauses only
	final     time.Duration // frozen value once stopped
}

// New returns a stopped clock reading src. A nil src uses SystemTime.
func New(src TimeSource) *Clock {
	if src == nil {
		src = SystemTime{}
	}
	return &Clock{src: src}
}

// Start resets the clock to zero and starts it.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.running = true
	c.paused = false
	c.startedAt = c.src.Now()
	c.pausedAt = time.Time{}
	c.pausedFor = 0
	c.final = 0
}

// Pause freezes the clock. No-op unless running.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.src.Now()
}

// Resume continues a paused clock.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || !c.paused {
		return
	}
	c.pausedFor += c.src.Now().Sub(c.pausedAt)
	c.paused = false
	c.pausedAt = time.Time{}
}

// Stop freezes the elapsed time for good.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.final = c.elapsed()
	c.running = false
	c.paused = false
}

// Elapsed returns the game time since Start.
func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return c.final
	}
	return c.elapsed()
}

// Seconds returns Elapsed in seconds.
func (c *Clock) Seconds() float64 {
	return c.Elapsed().Seconds()
}

// Running reports whether the clock was started and not stopped.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Clock) elapsed() time.Duration {
	now := c.src.Now()
	if c.paused {
		now = c.pausedAt
	}
	d := now.Sub(c.startedAt) - c.pausedFor
	if d < 0 {
		return 0
	}
	return d
}

// Manual is a TimeSource advanced by hand. It is used by tests and by
// headless simulation, where time follows the tick count.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a manual source starting at t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the manual time forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
