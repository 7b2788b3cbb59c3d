package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"investigation-canvas/domain/config"
	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
	"investigation-canvas/pkg/utils"
)

// KeyPrefix is prepended to the investigation ID to form the storage key
const KeyPrefix = "canvas_"

// ErrMalformedRecord is returned when stored bytes do not decode to a usable scene
var ErrMalformedRecord = errors.New("malformed canvas record")

// StorageKey returns the key a scene is stored under
func StorageKey(investigationID string) string {
	return KeyPrefix + investigationID
}

// NodeRecord is the stored shape of a node
type NodeRecord struct {
	ID          string          `json:"id" dynamodbav:"id" validate:"required"`
	X           float64         `json:"x" dynamodbav:"x"`
	Y           float64         `json:"y" dynamodbav:"y"`
	Width       float64         `json:"width" dynamodbav:"width" validate:"gt=0"`
	Height      float64         `json:"height" dynamodbav:"height" validate:"gt=0"`
	Type        string          `json:"type" dynamodbav:"type" validate:"required,oneof=event annotation"`
	Title       string          `json:"title" dynamodbav:"title"`
	Description string          `json:"description" dynamodbav:"description"`
	EventType   string          `json:"eventType,omitempty" dynamodbav:"eventType,omitempty"`
	Author      string          `json:"author,omitempty" dynamodbav:"author,omitempty"`
	Timestamp   string          `json:"timestamp,omitempty" dynamodbav:"timestamp,omitempty"`
	Data        json.RawMessage `json:"data,omitempty" dynamodbav:"data,omitempty"`
}

// ConnectionRecord is the stored shape of a connection
type ConnectionRecord struct {
	ID   string `json:"id" dynamodbav:"id" validate:"required"`
	From string `json:"from" dynamodbav:"from" validate:"required"`
	To   string `json:"to" dynamodbav:"to" validate:"required"`
	Type string `json:"type" dynamodbav:"type"`
}

// Record is the stored shape of a whole scene
type Record struct {
	Nodes           []NodeRecord       `json:"nodes" dynamodbav:"nodes" validate:"dive"`
	Connections     []ConnectionRecord `json:"connections" dynamodbav:"connections" validate:"dive"`
	InvestigationID string             `json:"investigationId" dynamodbav:"investigationId" validate:"required"`
}

// ToRecord converts a scene to its stored shape
func ToRecord(scene *aggregates.Scene) Record {
	nodes := scene.Nodes()
	connections := scene.Connections()

	record := Record{
		Nodes:           make([]NodeRecord, 0, len(nodes)),
		Connections:     make([]ConnectionRecord, 0, len(connections)),
		InvestigationID: scene.InvestigationID(),
	}

	for _, n := range nodes {
		record.Nodes = append(record.Nodes, NodeRecord{
			ID:          n.ID().String(),
			X:           n.Position().X(),
			Y:           n.Position().Y(),
			Width:       n.Size().Width(),
			Height:      n.Size().Height(),
			Type:        string(n.Kind()),
			Title:       n.Title(),
			Description: n.Description(),
			EventType:   string(n.Source()),
			Author:      n.Author(),
			Timestamp:   utils.FormatTimestamp(n.Timestamp()),
			Data:        n.Data(),
		})
	}

	for _, c := range connections {
		record.Connections = append(record.Connections, ConnectionRecord{
			ID:   c.ID().String(),
			From: c.From().String(),
			To:   c.To().String(),
			Type: string(c.Relation()),
		})
	}

	return record
}

// FromRecord rebuilds a scene from its stored shape.
// Connections violating the scene invariants are dropped and counted.
func FromRecord(record Record, cfg *config.DomainConfig) (*aggregates.Scene, int, error) {
	if err := utils.ValidateStruct(record); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	nodes := make([]*entities.Node, 0, len(record.Nodes))
	for i, nr := range record.Nodes {
		node, err := nodeFromRecord(nr, cfg)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: node %d: %v", ErrMalformedRecord, i, err)
		}
		nodes = append(nodes, node)
	}

	connections := make([]*entities.Connection, 0, len(record.Connections))
	for i, cr := range record.Connections {
		conn, err := connectionFromRecord(cr)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: connection %d: %v", ErrMalformedRecord, i, err)
		}
		connections = append(connections, conn)
	}

	scene, dropped, err := aggregates.ReconstructScene(record.InvestigationID, nodes, connections, cfg)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return scene, dropped, nil
}

// Encode serializes a scene to JSON
func Encode(scene *aggregates.Scene) ([]byte, error) {
	data, err := json.Marshal(ToRecord(scene))
	if err != nil {
		return nil, fmt.Errorf("failed to encode scene: %w", err)
	}
	return data, nil
}

// Decode parses JSON produced by Encode. Any failure wraps ErrMalformedRecord.
func Decode(data []byte, cfg *config.DomainConfig) (*aggregates.Scene, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, 0, fmt.Errorf("%w: empty document", ErrMalformedRecord)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return FromRecord(record, cfg)
}

func nodeFromRecord(nr NodeRecord, cfg *config.DomainConfig) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(nr.ID)
	if err != nil {
		return nil, err
	}
	position, err := valueobjects.NewValidPosition(nr.X, nr.Y)
	if err != nil {
		return nil, err
	}
	size, err := valueobjects.NewSize(nr.Width, nr.Height)
	if err != nil {
		return nil, err
	}
	content, err := valueobjects.NewNodeContent(nr.Title, nr.Description, cfg)
	if err != nil {
		return nil, err
	}

	attrs := entities.NodeAttributes{
		Source:    entities.SourceCategory(nr.EventType),
		Author:    nr.Author,
		Timestamp: utils.ParseTimestamp(nr.Timestamp),
		Data:      nr.Data,
	}
	return entities.ReconstructNode(id, entities.NodeKind(nr.Type), content, position, size, attrs)
}

func connectionFromRecord(cr ConnectionRecord) (*entities.Connection, error) {
	id, err := valueobjects.NewConnectionIDFromString(cr.ID)
	if err != nil {
		return nil, err
	}
	from, err := valueobjects.NewNodeIDFromString(cr.From)
	if err != nil {
		return nil, err
	}
	to, err := valueobjects.NewNodeIDFromString(cr.To)
	if err != nil {
		return nil, err
	}
	if from.Equals(to) {
		// Self-loops are dropped by ReconstructScene rather than failing the record
		return nil, nil
	}
	return entities.ReconstructConnection(id, from, to, entities.RelationType(cr.Type))
}
