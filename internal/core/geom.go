// Package core provides fundamental types and utilities for the sky battle
// simulation. It contains no external dependencies (especially no Bubble Tea)
// to keep simulation logic pure and testable.
package core

import "math"

// Rect is an integer rectangle in screen cells, used for drawing.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Box is an axis-aligned bounding box in continuous arena coordinates.
// Entities collide through their boxes.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewBox creates a box from a top-left corner and a size.
func NewBox(x, y, w, h float64) Box {
	return Box{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the vertical extent of the box.
func (b Box) Height() float64 {
	return b.MaxY - b.MinY
}

// Intersects reports whether two boxes overlap.
// Boxes that only share an edge do not intersect.
func (b Box) Intersects(other Box) bool {
	if b.MinX >= other.MaxX || other.MinX >= b.MaxX {
		return false
	}
	if b.MinY >= other.MaxY || other.MinY >= b.MaxY {
		return false
	}
	return true
}

// Outside reports whether the box lies fully outside an arena of the given
// size whose origin is (0, 0).
func (b Box) Outside(w, h float64) bool {
	return b.MaxX < 0 || b.MinX > w || b.MaxY < 0 || b.MinY > h
}

// Cell converts the box to the screen rectangle covering it.
func (b Box) Cell() Rect {
	x := int(math.Floor(b.MinX))
	y := int(math.Floor(b.MinY))
	w := int(math.Ceil(b.MaxX)) - x
	h := int(math.Ceil(b.MaxY)) - y
	return NewRect(x, y, Max(w, 1), Max(h, 1))
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
