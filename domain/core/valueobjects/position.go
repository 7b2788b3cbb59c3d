package valueobjects

import (
	"math"

	pkgerrors "investigation-canvas/pkg/errors"
)

// Position is a value object representing a point on the drawing surface.
// Node positions are the top-left corner of the node rectangle.
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position without validation
func NewPosition(x, y float64) Position {
	return Position{x: x, y: y}
}

// NewValidPosition creates a position, rejecting NaN and infinite coordinates
func NewValidPosition(x, y float64) (Position, error) {
	if !isValidCoordinate(x) || !isValidCoordinate(y) {
		return Position{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.x - other.x
	dy := p.y - other.y
	return math.Sqrt(dx*dx + dy*dy)
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon &&
		math.Abs(p.y-other.y) < epsilon
}

// Sub returns the offset from other to p
func (p Position) Sub(other Position) Offset {
	return Offset{dx: p.x - other.x, dy: p.y - other.y}
}

// Translate moves the position by the given offset
func (p Position) Translate(o Offset) Position {
	return Position{x: p.x + o.dx, y: p.y + o.dy}
}

// Minus moves the position against the given offset
func (p Position) Minus(o Offset) Position {
	return Position{x: p.x - o.dx, y: p.y - o.dy}
}

// Midpoint calculates the midpoint between two positions
func (p Position) Midpoint(other Position) Position {
	return Position{
		x: (p.x + other.x) / 2,
		y: (p.y + other.y) / 2,
	}
}

// Offset is a displacement between two positions
type Offset struct {
	dx float64
	dy float64
}

// NewOffset creates an offset
func NewOffset(dx, dy float64) Offset {
	return Offset{dx: dx, dy: dy}
}

// DX returns the horizontal component
func (o Offset) DX() float64 {
	return o.dx
}

// DY returns the vertical component
func (o Offset) DY() float64 {
	return o.dy
}

// Size is the fixed extent of a node
type Size struct {
	width  float64
	height float64
}

// NewSize creates a size, both dimensions must be positive
func NewSize(width, height float64) (Size, error) {
	if !isValidCoordinate(width) || !isValidCoordinate(height) || width <= 0 || height <= 0 {
		return Size{}, pkgerrors.NewValidationError("invalid size: width and height must be positive")
	}
	return Size{width: width, height: height}, nil
}

// Width returns the width
func (s Size) Width() float64 {
	return s.width
}

// Height returns the height
func (s Size) Height() float64 {
	return s.height
}

// Rect is an axis-aligned rectangle
type Rect struct {
	origin Position
	size   Size
}

// NewRect creates a rectangle from its top-left corner and size
func NewRect(origin Position, size Size) Rect {
	return Rect{origin: origin, size: size}
}

// Origin returns the top-left corner
func (r Rect) Origin() Position {
	return r.origin
}

// Size returns the rectangle extent
func (r Rect) Size() Size {
	return r.size
}

// Contains reports whether p lies inside the rectangle, edges included
func (r Rect) Contains(p Position) bool {
	return p.x >= r.origin.x && p.x <= r.origin.x+r.size.width &&
		p.y >= r.origin.y && p.y <= r.origin.y+r.size.height
}

// Center returns the rectangle center
func (r Rect) Center() Position {
	return Position{
		x: r.origin.x + r.size.width/2,
		y: r.origin.y + r.size.height/2,
	}
}

// isValidCoordinate checks if a coordinate is a valid finite number
func isValidCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
