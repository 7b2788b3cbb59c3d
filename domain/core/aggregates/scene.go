package aggregates

import (
	"errors"
	"fmt"
	"time"

	"investigation-canvas/domain/config"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
	"investigation-canvas/domain/events"
	pkgerrors "investigation-canvas/pkg/errors"
)

// Scene is the aggregate root for one investigation's diagram.
// Nodes are kept in insertion order: later nodes are drawn on top and win hit tests.
type Scene struct {
	investigationID string
	nodes           []*entities.Node
	connections     []*entities.Connection
	config          *config.DomainConfig
	version         int
	events          []events.DomainEvent
}

// NewScene creates an empty scene for an investigation
func NewScene(investigationID string, cfg *config.DomainConfig) (*Scene, error) {
	if investigationID == "" {
		return nil, pkgerrors.NewValidationError("investigationID required")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	return &Scene{
		investigationID: investigationID,
		nodes:           []*entities.Node{},
		connections:     []*entities.Connection{},
		config:          cfg,
		events:          []events.DomainEvent{},
	}, nil
}

// ReconstructScene recreates a scene from stored data.
// Duplicate node identifiers are rejected; connections that would break the
// connection invariants (self-loop, missing endpoint, duplicate pair) are dropped.
func ReconstructScene(
	investigationID string,
	nodes []*entities.Node,
	connections []*entities.Connection,
	cfg *config.DomainConfig,
) (*Scene, int, error) {
	scene, err := NewScene(investigationID, cfg)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[valueobjects.NodeID]bool, len(nodes))
	for _, node := range nodes {
		if node == nil {
			return nil, 0, errors.New("nil node in stored scene")
		}
		if seen[node.ID()] {
			return nil, 0, fmt.Errorf("duplicate node %s in stored scene", node.ID())
		}
		seen[node.ID()] = true
		scene.nodes = append(scene.nodes, node)
	}

	dropped := 0
	for _, conn := range connections {
		if conn == nil || !seen[conn.From()] || !seen[conn.To()] || scene.HasConnection(conn.From(), conn.To()) {
			dropped++
			continue
		}
		scene.connections = append(scene.connections, conn)
	}

	return scene, dropped, nil
}

// InvestigationID returns the owning investigation, used as the persistence key
func (s *Scene) InvestigationID() string {
	return s.investigationID
}

// Config returns the domain configuration the scene enforces
func (s *Scene) Config() *config.DomainConfig {
	return s.config
}

// Version returns a counter incremented by every mutation
func (s *Scene) Version() int {
	return s.version
}

// Nodes returns the nodes in draw order
func (s *Scene) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, len(s.nodes))
	copy(nodes, s.nodes)
	return nodes
}

// Connections returns the connections in creation order
func (s *Scene) Connections() []*entities.Connection {
	connections := make([]*entities.Connection, len(s.connections))
	copy(connections, s.connections)
	return connections
}

// NodeCount returns the number of nodes
func (s *Scene) NodeCount() int {
	return len(s.nodes)
}

// ConnectionCount returns the number of connections
func (s *Scene) ConnectionCount() int {
	return len(s.connections)
}

// IsEmpty reports whether the scene has no nodes
func (s *Scene) IsEmpty() bool {
	return len(s.nodes) == 0
}

// Node retrieves a node by ID
func (s *Scene) Node(id valueobjects.NodeID) (*entities.Node, bool) {
	if i := s.nodeIndex(id); i >= 0 {
		return s.nodes[i], true
	}
	return nil, false
}

// HasNode checks if a node exists in the scene
func (s *Scene) HasNode(id valueobjects.NodeID) bool {
	return s.nodeIndex(id) >= 0
}

// Connection retrieves a connection by ID
func (s *Scene) Connection(id valueobjects.ConnectionID) (*entities.Connection, bool) {
	if i := s.connectionIndex(id); i >= 0 {
		return s.connections[i], true
	}
	return nil, false
}

// HasConnection reports whether a and b are connected in either direction
func (s *Scene) HasConnection(a, b valueobjects.NodeID) bool {
	for _, conn := range s.connections {
		if conn.Links(a, b) {
			return true
		}
	}
	return false
}

// ConnectionsOf returns every connection touching the node
func (s *Scene) ConnectionsOf(id valueobjects.NodeID) []*entities.Connection {
	var result []*entities.Connection
	for _, conn := range s.connections {
		if conn.Touches(id) {
			result = append(result, conn)
		}
	}
	return result
}

// ConnectedNodes returns the neighbours of a node in connection order
func (s *Scene) ConnectedNodes(id valueobjects.NodeID) []*entities.Node {
	var result []*entities.Node
	for _, conn := range s.ConnectionsOf(id) {
		if node, ok := s.Node(conn.Other(id)); ok {
			result = append(result, node)
		}
	}
	return result
}

// NodesByKind returns the nodes of one kind in draw order
func (s *Scene) NodesByKind(kind entities.NodeKind) []*entities.Node {
	var result []*entities.Node
	for _, node := range s.nodes {
		if node.Kind() == kind {
			result = append(result, node)
		}
	}
	return result
}

// AddNode places a new node with a fresh identifier and the default size
func (s *Scene) AddNode(
	kind entities.NodeKind,
	content valueobjects.NodeContent,
	position valueobjects.Position,
	attrs entities.NodeAttributes,
) (*entities.Node, error) {
	if len(s.nodes) >= s.config.MaxNodesPerScene {
		return nil, pkgerrors.NewLimitError("nodes", s.config.MaxNodesPerScene)
	}

	size, err := valueobjects.NewSize(s.config.DefaultNodeWidth, s.config.DefaultNodeHeight)
	if err != nil {
		return nil, err
	}

	node, err := entities.NewNode(kind, content, position, size, attrs)
	if err != nil {
		return nil, err
	}

	s.nodes = append(s.nodes, node)
	s.version++
	s.addEvent(events.NewNodeAdded(s.investigationID, s.version, node.ID(), string(kind), position, time.Now()))

	return node, nil
}

// DeleteNode removes the node and every connection referencing it
func (s *Scene) DeleteNode(id valueobjects.NodeID) bool {
	i := s.nodeIndex(id)
	if i < 0 {
		return false
	}

	var removed []valueobjects.ConnectionID
	kept := s.connections[:0]
	for _, conn := range s.connections {
		if conn.Touches(id) {
			removed = append(removed, conn.ID())
			continue
		}
		kept = append(kept, conn)
	}
	for j := len(kept); j < len(s.connections); j++ {
		s.connections[j] = nil
	}
	s.connections = kept

	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
	s.version++
	s.addEvent(events.NewNodeDeleted(s.investigationID, s.version, id, removed, time.Now()))

	return true
}

// AddConnection joins two nodes. It is a silent no-op when the endpoints are
// equal, either endpoint is missing, the pair is already connected in either
// direction, or the connection limit is reached.
func (s *Scene) AddConnection(from, to valueobjects.NodeID) (*entities.Connection, bool) {
	if from.Equals(to) || !s.HasNode(from) || !s.HasNode(to) || s.HasConnection(from, to) {
		return nil, false
	}
	if len(s.connections) >= s.config.MaxConnectionsPerScene {
		return nil, false
	}

	conn, err := entities.NewConnection(from, to)
	if err != nil {
		return nil, false
	}

	s.connections = append(s.connections, conn)
	s.version++
	s.addEvent(events.NewNodesConnected(s.investigationID, s.version, conn.ID(), from, to, string(conn.Relation()), time.Now()))

	return conn, true
}

// RemoveConnection deletes a single connection
func (s *Scene) RemoveConnection(id valueobjects.ConnectionID) bool {
	i := s.connectionIndex(id)
	if i < 0 {
		return false
	}

	conn := s.connections[i]
	s.connections = append(s.connections[:i], s.connections[i+1:]...)
	s.version++
	s.addEvent(events.NewConnectionRemoved(s.investigationID, s.version, id, conn.From(), conn.To(), time.Now()))

	return true
}

// UpdateNodeFields merges a partial field set into a node
func (s *Scene) UpdateNodeFields(id valueobjects.NodeID, update entities.FieldUpdate) error {
	node, ok := s.Node(id)
	if !ok {
		return pkgerrors.NewNotFoundError("node")
	}

	changed, err := node.ApplyUpdate(update, s.config)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	s.version++
	s.addEvent(events.NewNodeUpdated(s.investigationID, s.version, id, time.Now()))

	return nil
}

// MoveNode sets a node's top-left position
func (s *Scene) MoveNode(id valueobjects.NodeID, position valueobjects.Position) bool {
	node, ok := s.Node(id)
	if !ok {
		return false
	}

	old := node.Position()
	if !node.MoveTo(position) {
		return false
	}

	s.version++
	s.addEvent(events.NewNodeMoved(s.investigationID, s.version, id, old, position, time.Now()))

	return true
}

// Clear empties both node and connection sets
func (s *Scene) Clear() {
	nodeCount, connectionCount := len(s.nodes), len(s.connections)
	if nodeCount == 0 && connectionCount == 0 {
		return
	}

	s.nodes = []*entities.Node{}
	s.connections = []*entities.Connection{}
	s.version++
	s.addEvent(events.NewSceneCleared(s.investigationID, s.version, nodeCount, connectionCount, time.Now()))
}

// Validate ensures scene invariants
func (s *Scene) Validate() error {
	seen := make(map[valueobjects.NodeID]bool, len(s.nodes))
	for _, node := range s.nodes {
		if seen[node.ID()] {
			return fmt.Errorf("duplicate node %s", node.ID())
		}
		seen[node.ID()] = true
	}

	for i, conn := range s.connections {
		if conn.From().Equals(conn.To()) {
			return fmt.Errorf("connection %s is a self-loop", conn.ID())
		}
		if !seen[conn.From()] {
			return fmt.Errorf("connection %s references non-existent source node", conn.ID())
		}
		if !seen[conn.To()] {
			return fmt.Errorf("connection %s references non-existent target node", conn.ID())
		}
		for _, other := range s.connections[:i] {
			if other.Links(conn.From(), conn.To()) {
				return fmt.Errorf("connection %s duplicates %s", conn.ID(), other.ID())
			}
		}
	}

	return nil
}

// Clone returns a deep copy safe to hand to another goroutine.
// Pending events are not copied.
func (s *Scene) Clone() *Scene {
	clone := &Scene{
		investigationID: s.investigationID,
		nodes:           make([]*entities.Node, len(s.nodes)),
		connections:     make([]*entities.Connection, len(s.connections)),
		config:          s.config,
		version:         s.version,
		events:          []events.DomainEvent{},
	}
	for i, node := range s.nodes {
		clone.nodes[i] = node.Clone()
	}
	// Connections are immutable once created
	copy(clone.connections, s.connections)
	return clone
}

// PullEvents returns and clears the pending domain events
func (s *Scene) PullEvents() []events.DomainEvent {
	pending := s.events
	s.events = []events.DomainEvent{}
	return pending
}

// Private helper methods

func (s *Scene) addEvent(event events.DomainEvent) {
	s.events = append(s.events, event)
}

func (s *Scene) nodeIndex(id valueobjects.NodeID) int {
	for i, node := range s.nodes {
		if node.ID().Equals(id) {
			return i
		}
	}
	return -1
}

func (s *Scene) connectionIndex(id valueobjects.ConnectionID) int {
	for i, conn := range s.connections {
		if conn.ID().Equals(id) {
			return i
		}
	}
	return -1
}
