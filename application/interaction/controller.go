package interaction

import (
	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/domain/core/valueobjects"
	"investigation-canvas/domain/services"
)

// Outcome reports what a dispatched event did
type Outcome struct {
	// SceneChanged is set when the scene was mutated
	SceneChanged bool
	// Redraw is set when anything visible changed, scene or transient state
	Redraw bool
	// EditNode is set when the user asked to edit a node
	EditNode valueobjects.NodeID
	// DeleteNode is set when the user asked to delete a node; the host confirms
	// and then calls ConfirmDelete
	DeleteNode valueobjects.NodeID
}

// WantsEdit reports whether the host should open an edit session
func (o Outcome) WantsEdit() bool {
	return !o.EditNode.IsZero()
}

// WantsDelete reports whether the host should ask for delete confirmation
func (o Outcome) WantsDelete() bool {
	return !o.DeleteNode.IsZero()
}

// Controller translates pointer events into scene mutations.
// It is not safe for concurrent use; the owning session serializes calls.
type Controller struct {
	scene     *aggregates.Scene
	hits      *services.HitTester
	state     State
	selection Selection
}

// NewController creates a controller over a scene
func NewController(scene *aggregates.Scene, hits *services.HitTester) *Controller {
	if hits == nil {
		hits = services.NewHitTester(scene.Config())
	}
	return &Controller{
		scene: scene,
		hits:  hits,
		state: Idle{},
	}
}

// State returns the current gesture state
func (c *Controller) State() State {
	return c.state
}

// Selection returns the current selection
func (c *Controller) Selection() Selection {
	return c.selection
}

// Snapshot returns the transient state for rendering
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{State: c.state, Selection: c.selection}
}

// Dispatch applies one pointer event. This is the single transition function.
func (c *Controller) Dispatch(ev PointerEvent) Outcome {
	switch ev.Kind {
	case PointerDown:
		return c.pointerDown(ev)
	case PointerMove:
		return c.pointerMove(ev)
	case PointerUp:
		return c.pointerUp()
	case DoubleClick:
		return c.doubleClick(ev)
	case ContextClick:
		return c.contextClick(ev)
	default:
		return Outcome{}
	}
}

func (c *Controller) pointerDown(ev PointerEvent) Outcome {
	// Nodes take priority over connections at the same point
	if node, ok := c.hits.NodeAt(c.scene, ev.Position); ok {
		if connecting, isConnecting := c.state.(Connecting); isConnecting {
			if node.ID().Equals(connecting.Source) {
				c.state = Idle{}
				return Outcome{Redraw: true}
			}
			_, added := c.scene.AddConnection(connecting.Source, node.ID())
			c.selection = Selection{}
			c.state = Idle{}
			return Outcome{SceneChanged: added, Redraw: true}
		}

		c.selection = Selection{Node: node.ID()}
		if ev.Modifier {
			c.state = Connecting{Source: node.ID()}
		} else {
			c.state = Dragging{Node: node.ID(), Offset: ev.Position.Sub(node.Position())}
		}
		return Outcome{Redraw: true}
	}

	if conn, ok := c.hits.ConnectionAt(c.scene, ev.Position); ok {
		c.selection = Selection{Connection: conn.ID()}
		c.state = Idle{}
		return Outcome{Redraw: true}
	}

	c.selection = Selection{}
	c.state = Idle{}
	return Outcome{Redraw: true}
}

func (c *Controller) pointerMove(ev PointerEvent) Outcome {
	switch s := c.state.(type) {
	case Dragging:
		moved := c.scene.MoveNode(s.Node, ev.Position.Minus(s.Offset))
		return Outcome{SceneChanged: moved, Redraw: moved}

	case Connecting:
		var hover valueobjects.NodeID
		if node, ok := c.hits.NodeAt(c.scene, ev.Position); ok && !node.ID().Equals(s.Source) {
			hover = node.ID()
		}
		if hover.Equals(s.Hover) {
			return Outcome{}
		}
		c.state = Connecting{Source: s.Source, Hover: hover}
		return Outcome{Redraw: true}

	default:
		return Outcome{}
	}
}

func (c *Controller) pointerUp() Outcome {
	if _, ok := c.state.(Dragging); ok {
		c.state = Idle{}
	}
	return Outcome{}
}

func (c *Controller) doubleClick(ev PointerEvent) Outcome {
	node, ok := c.hits.NodeAt(c.scene, ev.Position)
	if !ok {
		return Outcome{}
	}
	return Outcome{EditNode: node.ID()}
}

func (c *Controller) contextClick(ev PointerEvent) Outcome {
	node, ok := c.hits.NodeAt(c.scene, ev.Position)
	if !ok {
		return Outcome{}
	}
	return Outcome{DeleteNode: node.ID()}
}

// ConfirmDelete deletes a node once the user has confirmed it.
// Incident connections go with it and the controller returns to Idle.
func (c *Controller) ConfirmDelete(id valueobjects.NodeID) Outcome {
	if !c.scene.DeleteNode(id) {
		return Outcome{}
	}

	if c.selection.Node.Equals(id) {
		c.selection.Node = valueobjects.NodeID{}
	}
	if !c.selection.Connection.IsZero() {
		if _, ok := c.scene.Connection(c.selection.Connection); !ok {
			c.selection.Connection = valueobjects.ConnectionID{}
		}
	}
	c.state = Idle{}

	return Outcome{SceneChanged: true, Redraw: true}
}

// DeleteSelectedConnection removes the selected connection, if any
func (c *Controller) DeleteSelectedConnection() Outcome {
	if c.selection.Connection.IsZero() {
		return Outcome{}
	}
	removed := c.scene.RemoveConnection(c.selection.Connection)
	c.selection.Connection = valueobjects.ConnectionID{}
	return Outcome{SceneChanged: removed, Redraw: true}
}

// Select highlights a node, as done after adding one
func (c *Controller) Select(id valueobjects.NodeID) Outcome {
	if !c.scene.HasNode(id) {
		return Outcome{}
	}
	c.selection = Selection{Node: id}
	return Outcome{Redraw: true}
}

// Reset drops any gesture and selection, used after the scene is cleared
func (c *Controller) Reset() {
	c.state = Idle{}
	c.selection = Selection{}
}
