package events

import (
	"time"

	"investigation-canvas/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event type names
const (
	TypeNodeAdded         = "canvas.node_added"
	TypeNodeMoved         = "canvas.node_moved"
	TypeNodeUpdated       = "canvas.node_updated"
	TypeNodeDeleted       = "canvas.node_deleted"
	TypeNodesConnected    = "canvas.nodes_connected"
	TypeConnectionRemoved = "canvas.connection_removed"
	TypeSceneCleared      = "canvas.scene_cleared"
)

func newBase(investigationID, eventType string, version int, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: investigationID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     version,
	}
}

// NodeAdded is raised when a node is placed on the canvas
type NodeAdded struct {
	BaseEvent
	NodeID valueobjects.NodeID   `json:"node_id"`
	Kind   string                `json:"kind"`
	At     valueobjects.Position `json:"-"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(investigationID string, version int, nodeID valueobjects.NodeID, kind string, at valueobjects.Position, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(investigationID, TypeNodeAdded, version, timestamp),
		NodeID:    nodeID,
		Kind:      kind,
		At:        at,
	}
}

// NodeMoved is raised when a node is moved to a new position
type NodeMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID   `json:"node_id"`
	OldPosition valueobjects.Position `json:"-"`
	NewPosition valueobjects.Position `json:"-"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(investigationID string, version int, nodeID valueobjects.NodeID, oldPos, newPos valueobjects.Position, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent:   newBase(investigationID, TypeNodeMoved, version, timestamp),
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeUpdated is raised when an edit changes a node's fields
type NodeUpdated struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(investigationID string, version int, nodeID valueobjects.NodeID, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent: newBase(investigationID, TypeNodeUpdated, version, timestamp),
		NodeID:    nodeID,
	}
}

// NodeDeleted is raised when a node and its connections are removed
type NodeDeleted struct {
	BaseEvent
	NodeID             valueobjects.NodeID         `json:"node_id"`
	RemovedConnections []valueobjects.ConnectionID `json:"removed_connections"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(investigationID string, version int, nodeID valueobjects.NodeID, removed []valueobjects.ConnectionID, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent:          newBase(investigationID, TypeNodeDeleted, version, timestamp),
		NodeID:             nodeID,
		RemovedConnections: removed,
	}
}

// NodesConnected is raised when two nodes are connected
type NodesConnected struct {
	BaseEvent
	ConnectionID valueobjects.ConnectionID `json:"connection_id"`
	SourceID     valueobjects.NodeID       `json:"source_id"`
	TargetID     valueobjects.NodeID       `json:"target_id"`
	Relation     string                    `json:"relation"`
}

// NewNodesConnected creates a NodesConnected event
func NewNodesConnected(investigationID string, version int, connectionID valueobjects.ConnectionID, sourceID, targetID valueobjects.NodeID, relation string, timestamp time.Time) NodesConnected {
	return NodesConnected{
		BaseEvent:    newBase(investigationID, TypeNodesConnected, version, timestamp),
		ConnectionID: connectionID,
		SourceID:     sourceID,
		TargetID:     targetID,
		Relation:     relation,
	}
}

// ConnectionRemoved is raised when a single connection is deleted
type ConnectionRemoved struct {
	BaseEvent
	ConnectionID valueobjects.ConnectionID `json:"connection_id"`
	SourceID     valueobjects.NodeID       `json:"source_id"`
	TargetID     valueobjects.NodeID       `json:"target_id"`
}

// NewConnectionRemoved creates a ConnectionRemoved event
func NewConnectionRemoved(investigationID string, version int, connectionID valueobjects.ConnectionID, sourceID, targetID valueobjects.NodeID, timestamp time.Time) ConnectionRemoved {
	return ConnectionRemoved{
		BaseEvent:    newBase(investigationID, TypeConnectionRemoved, version, timestamp),
		ConnectionID: connectionID,
		SourceID:     sourceID,
		TargetID:     targetID,
	}
}

// SceneCleared is raised when every node and connection is removed
type SceneCleared struct {
	BaseEvent
	NodeCount       int `json:"node_count"`
	ConnectionCount int `json:"connection_count"`
}

// NewSceneCleared creates a SceneCleared event
func NewSceneCleared(investigationID string, version int, nodeCount, connectionCount int, timestamp time.Time) SceneCleared {
	return SceneCleared{
		BaseEvent:       newBase(investigationID, TypeSceneCleared, version, timestamp),
		NodeCount:       nodeCount,
		ConnectionCount: connectionCount,
	}
}
