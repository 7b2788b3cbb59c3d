package interaction

import (
	"fmt"

	"investigation-canvas/domain/core/valueobjects"
)

// PointerKind is the type of pointer input
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	DoubleClick
	ContextClick
)

var pointerKindNames = map[PointerKind]string{
	PointerDown:  "down",
	PointerMove:  "move",
	PointerUp:    "up",
	DoubleClick:  "dblclick",
	ContextClick: "contextmenu",
}

// String returns the wire name of the kind
func (k PointerKind) String() string {
	if name, ok := pointerKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("pointer(%d)", int(k))
}

// ParsePointerKind parses a wire name such as "down" or "dblclick"
func ParsePointerKind(s string) (PointerKind, error) {
	for kind, name := range pointerKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown pointer event %q", s)
}

// PointerEvent is one pointer input in drawing-surface coordinates.
// Modifier is only consulted on PointerDown.
type PointerEvent struct {
	Kind     PointerKind
	Position valueobjects.Position
	Modifier bool
}

// Down builds a pointer-down event
func Down(x, y float64, modifier bool) PointerEvent {
	return PointerEvent{Kind: PointerDown, Position: valueobjects.NewPosition(x, y), Modifier: modifier}
}

// Move builds a pointer-move event
func Move(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerMove, Position: valueobjects.NewPosition(x, y)}
}

// Up builds a pointer-up event
func Up(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerUp, Position: valueobjects.NewPosition(x, y)}
}

// DoubleClickAt builds a double-click event
func DoubleClickAt(x, y float64) PointerEvent {
	return PointerEvent{Kind: DoubleClick, Position: valueobjects.NewPosition(x, y)}
}

// ContextClickAt builds a secondary-click event
func ContextClickAt(x, y float64) PointerEvent {
	return PointerEvent{Kind: ContextClick, Position: valueobjects.NewPosition(x, y)}
}
