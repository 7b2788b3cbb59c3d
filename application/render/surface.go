package render

import (
	"image/color"

	"investigation-canvas/domain/core/valueobjects"
)

// Stroke describes how a line or outline is drawn.
// An empty Dash draws a solid line.
type Stroke struct {
	Color color.Color
	Width float64
	Dash  []float64
}

// Font selects a text face
type Font struct {
	Size float64
	Bold bool
}

// Surface is the drawing target. Text is positioned by its baseline.
type Surface interface {
	Size() (width, height float64)
	Clear(c color.Color)
	FillRect(r valueobjects.Rect, c color.Color)
	StrokeRect(r valueobjects.Rect, s Stroke)
	Line(from, to valueobjects.Position, s Stroke)
	Text(text string, at valueobjects.Position, f Font, c color.Color)
	MeasureText(text string, f Font) float64
}
