package entities

import (
	"investigation-canvas/domain/core/valueobjects"
	pkgerrors "investigation-canvas/pkg/errors"
)

// RelationType tags what a connection means
type RelationType string

const (
	RelationRelationship RelationType = "relationship"
)

// Connection is an unordered relation between two distinct nodes.
// From and To record the gesture direction and decide where the arrowhead is drawn.
type Connection struct {
	id       valueobjects.ConnectionID
	from     valueobjects.NodeID
	to       valueobjects.NodeID
	relation RelationType
}

// NewConnection creates a relationship connection with a fresh identifier
func NewConnection(from, to valueobjects.NodeID) (*Connection, error) {
	return ReconstructConnection(valueobjects.NewConnectionID(), from, to, RelationRelationship)
}

// ReconstructConnection rebuilds a connection from stored data
func ReconstructConnection(
	id valueobjects.ConnectionID,
	from, to valueobjects.NodeID,
	relation RelationType,
) (*Connection, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("connection ID cannot be empty")
	}
	if from.IsZero() || to.IsZero() {
		return nil, pkgerrors.NewValidationError("connection endpoints cannot be empty")
	}
	if from.Equals(to) {
		return nil, pkgerrors.NewValidationError("cannot connect node to itself")
	}
	if relation == "" {
		relation = RelationRelationship
	}
	return &Connection{id: id, from: from, to: to, relation: relation}, nil
}

// ID returns the connection identifier
func (c *Connection) ID() valueobjects.ConnectionID {
	return c.id
}

// From returns the node the gesture started on
func (c *Connection) From() valueobjects.NodeID {
	return c.from
}

// To returns the node the gesture ended on
func (c *Connection) To() valueobjects.NodeID {
	return c.to
}

// Relation returns the relation type tag
func (c *Connection) Relation() RelationType {
	return c.relation
}

// Touches reports whether the node is either endpoint
func (c *Connection) Touches(id valueobjects.NodeID) bool {
	return c.from.Equals(id) || c.to.Equals(id)
}

// Links reports whether the connection joins a and b, in either direction
func (c *Connection) Links(a, b valueobjects.NodeID) bool {
	return (c.from.Equals(a) && c.to.Equals(b)) || (c.from.Equals(b) && c.to.Equals(a))
}

// Other returns the endpoint opposite to id
func (c *Connection) Other(id valueobjects.NodeID) valueobjects.NodeID {
	if c.from.Equals(id) {
		return c.to
	}
	return c.from
}
