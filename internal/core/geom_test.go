package core

import (
	"testing"
	"time"
)

func TestBoxIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected bool
	}{
		{
			name:     "overlapping boxes",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(5, 5, 10, 10),
			expected: true,
		},
		{
			name:     "non-overlapping horizontal",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(15, 0, 10, 10),
			expected: false,
		},
		{
			name:     "touching edges",
			a:        NewBox(0, 0, 10, 10),
			b:        NewBox(10, 0, 10, 10),
			expected: false,
		},
		{
			name:     "fractional overlap",
			a:        NewBox(0, 0, 1.5, 1),
			b:        NewBox(1.25, 0.5, 1, 1),
			expected: true,
		},
		{
			name:     "contained box",
			a:        NewBox(0, 0, 20, 20),
			b:        NewBox(5, 5, 0.5, 0.5),
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Intersects(tc.b); got != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Intersects(tc.a); got != tc.expected {
				t.Errorf("Intersects() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestBoxOutside(t *testing.T) {
	const w, h = 80, 23

	tests := []struct {
		name     string
		box      Box
		expected bool
	}{
		{"inside", NewBox(10, 10, 1, 1), false},
		{"straddling right edge", NewBox(79.5, 5, 1, 1), false},
		{"past right edge", NewBox(w+50, 5, 1, 1), true},
		{"past left edge", NewBox(-3, 5, 2, 1), true},
		{"touching left edge", NewBox(-1, 5, 1, 1), false},
		{"above top", NewBox(5, -2, 1, 1), true},
		{"below bottom", NewBox(5, h+0.5, 1, 1), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.box.Outside(w, h); got != tc.expected {
				t.Errorf("Outside() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestBoxCell(t *testing.T) {
	r := NewBox(2.4, 3.6, 2, 1).Cell()
	if r.X != 2 || r.Y != 3 {
		t.Errorf("Cell() origin = (%d, %d), expected (2, 3)", r.X, r.Y)
	}
	if r.Right() != 5 || r.Bottom() != 5 {
		t.Errorf("Cell() far corner = (%d, %d), expected (5, 5)", r.Right(), r.Bottom())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
	if got := ClampF(-0.5, 0, 1); got != 0 {
		t.Errorf("ClampF(-0.5, 0, 1) = %f, expected 0", got)
	}
}

func TestRuntimeConfigArena(t *testing.T) {
	cfg := DefaultConfig()
	w, h := cfg.Arena()
	if w != 80 || h != 23 {
		t.Errorf("Arena() = (%v, %v), expected (80, 23)", w, h)
	}
	if cfg.TicksPerSecond() != 20 {
		t.Errorf("TicksPerSecond() = %d, expected 20", cfg.TicksPerSecond())
	}

	cfg.TickInterval = 100 * time.Millisecond
	if cfg.TicksPerSecond() != 10 {
		t.Errorf("TicksPerSecond() = %d, expected 10", cfg.TicksPerSecond())
	}
}
