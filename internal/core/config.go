package core

import "time"

// DefaultTickInterval is the fixed simulation cadence.
const DefaultTickInterval = 50 * time.Millisecond

// RuntimeConfig contains configuration passed to a level attempt at start.
// The arena is sized from the screen so one arena unit is one terminal cell.
type RuntimeConfig struct {
	ScreenW      int           // Screen width in characters
	ScreenH      int           // Screen height in characters
	TickInterval time.Duration // Time between simulation ticks
	Seed         int64         // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:      80,
		ScreenH:      24,
		TickInterval: DefaultTickInterval,
		Seed:         0, // 0 means use current time in platform layer
	}
}

// HUDRows is the number of screen rows reserved above the arena.
const HUDRows = 1

// Arena returns the arena size in units for this configuration.
func (c RuntimeConfig) Arena() (w, h float64) {
	return float64(c.ScreenW), float64(c.ScreenH - HUDRows)
}

// TicksPerSecond returns the tick rate implied by TickInterval.
func (c RuntimeConfig) TicksPerSecond() int {
	if c.TickInterval <= 0 {
		return int(time.Second / DefaultTickInterval)
	}
	return int(time.Second / c.TickInterval)
}
