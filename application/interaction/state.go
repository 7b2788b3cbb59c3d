package interaction

import (
	"investigation-canvas/domain/core/valueobjects"
)

// State is the controller's current gesture. Exactly one of Idle, Dragging
// or Connecting is active at a time.
type State interface {
	Name() string
	isState()
}

// Idle waits for the next gesture
type Idle struct{}

// Dragging moves Node with the pointer, keeping the pointer-to-origin Offset
type Dragging struct {
	Node   valueobjects.NodeID
	Offset valueobjects.Offset
}

// Connecting waits for a second node to connect Source to.
// Hover is the node under the pointer, zero when none.
type Connecting struct {
	Source valueobjects.NodeID
	Hover  valueobjects.NodeID
}

func (Idle) Name() string       { return "idle" }
func (Dragging) Name() string   { return "dragging" }
func (Connecting) Name() string { return "connecting" }

func (Idle) isState()       {}
func (Dragging) isState()   {}
func (Connecting) isState() {}

// Selection is the highlighted node or connection. At most one is set.
type Selection struct {
	Node       valueobjects.NodeID
	Connection valueobjects.ConnectionID
}

// Snapshot is the transient state the renderer draws from
type Snapshot struct {
	State     State
	Selection Selection
}

// Preview returns the endpoints of the dashed connect preview, if one should be drawn
func (s Snapshot) Preview() (source, target valueobjects.NodeID, ok bool) {
	c, isConnecting := s.State.(Connecting)
	if !isConnecting || c.Hover.IsZero() {
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}
	return c.Source, c.Hover, true
}

// ConnectModeActive reports whether the next node click completes a connection
func (s Snapshot) ConnectModeActive() bool {
	_, ok := s.State.(Connecting)
	return ok
}
