package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"investigation-canvas/domain/config"
	"investigation-canvas/domain/core/valueobjects"
	pkgerrors "investigation-canvas/pkg/errors"
)

// NodeKind distinguishes investigation events from free-form annotations
type NodeKind string

const (
	KindEvent      NodeKind = "event"
	KindAnnotation NodeKind = "annotation"
)

// IsValid reports whether the kind is one of the known kinds
func (k NodeKind) IsValid() bool {
	return k == KindEvent || k == KindAnnotation
}

// SourceCategory identifies the system an event came from
type SourceCategory string

const (
	SourceGit     SourceCategory = "git"
	SourceCI      SourceCategory = "ci"
	SourceLogs    SourceCategory = "logs"
	SourceMetrics SourceCategory = "metrics"
	SourceTraces  SourceCategory = "traces"
	SourceManual  SourceCategory = "manual"
)

// SourceCategories lists the known categories in display order
var SourceCategories = []SourceCategory{
	SourceGit, SourceCI, SourceLogs, SourceMetrics, SourceTraces, SourceManual,
}

// IsKnown reports whether the category is part of the fixed palette.
// Unknown categories are kept as-is and rendered with the default accent.
func (s SourceCategory) IsKnown() bool {
	for _, c := range SourceCategories {
		if c == s {
			return true
		}
	}
	return false
}

// NodeAttributes carries the kind-specific fields of a node
type NodeAttributes struct {
	Source    SourceCategory
	Author    string
	Timestamp time.Time
	Data      json.RawMessage
}

// FieldUpdate is a partial set of editable fields. Nil fields keep their value.
type FieldUpdate struct {
	Title       *string         `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=10000"`
	Source      *SourceCategory `json:"eventType,omitempty" validate:"omitempty,oneof=git ci logs metrics traces manual"`
	Author      *string         `json:"author,omitempty" validate:"omitempty,max=255"`
}

// IsEmpty reports whether the update changes nothing
func (u FieldUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Source == nil && u.Author == nil
}

// Fields is a snapshot of the editable fields of a node
type Fields struct {
	Kind        NodeKind       `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Source      SourceCategory `json:"eventType,omitempty"`
	Author      string         `json:"author,omitempty"`
}

// Node is a positioned, fixed-size rectangle on the canvas
type Node struct {
	id       valueobjects.NodeID
	kind     NodeKind
	position valueobjects.Position
	size     valueobjects.Size
	content  valueobjects.NodeContent
	attrs    NodeAttributes
}

// NewNode creates a node with a fresh identifier
func NewNode(
	kind NodeKind,
	content valueobjects.NodeContent,
	position valueobjects.Position,
	size valueobjects.Size,
	attrs NodeAttributes,
) (*Node, error) {
	return ReconstructNode(valueobjects.NewNodeID(), kind, content, position, size, attrs)
}

// ReconstructNode rebuilds a node from stored data, preserving its identifier
func ReconstructNode(
	id valueobjects.NodeID,
	kind NodeKind,
	content valueobjects.NodeContent,
	position valueobjects.Position,
	size valueobjects.Size,
	attrs NodeAttributes,
) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("unknown node kind %q", kind))
	}
	if size.Width() <= 0 || size.Height() <= 0 {
		return nil, pkgerrors.NewValidationError("node size must be positive")
	}

	attrs.Data = cloneRaw(attrs.Data)
	return &Node{
		id:       id,
		kind:     kind,
		position: position,
		size:     size,
		content:  content,
		attrs:    attrs,
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns whether this node is an event or an annotation
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Position returns the top-left corner
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Size returns the fixed node extent
func (n *Node) Size() valueobjects.Size {
	return n.size
}

// Bounds returns the node rectangle
func (n *Node) Bounds() valueobjects.Rect {
	return valueobjects.NewRect(n.position, n.size)
}

// Center returns the center of the node rectangle
func (n *Node) Center() valueobjects.Position {
	return n.Bounds().Center()
}

// Content returns the node's text
func (n *Node) Content() valueobjects.NodeContent {
	return n.content
}

// Title returns the node title
func (n *Node) Title() string {
	return n.content.Title()
}

// Description returns the node body text
func (n *Node) Description() string {
	return n.content.Description()
}

// Source returns the event source category, empty for annotations without one
func (n *Node) Source() SourceCategory {
	return n.attrs.Source
}

// Author returns the author
func (n *Node) Author() string {
	return n.attrs.Author
}

// Timestamp returns when the underlying record happened
func (n *Node) Timestamp() time.Time {
	return n.attrs.Timestamp
}

// Data returns a copy of the original source record
func (n *Node) Data() json.RawMessage {
	return cloneRaw(n.attrs.Data)
}

// Attributes returns a copy of the kind-specific fields
func (n *Node) Attributes() NodeAttributes {
	attrs := n.attrs
	attrs.Data = cloneRaw(n.attrs.Data)
	return attrs
}

// Fields returns the editable fields
func (n *Node) Fields() Fields {
	return Fields{
		Kind:        n.kind,
		Title:       n.content.Title(),
		Description: n.content.Description(),
		Source:      n.attrs.Source,
		Author:      n.attrs.Author,
	}
}

// MoveTo moves the node to a new position, size is unaffected
func (n *Node) MoveTo(position valueobjects.Position) bool {
	if position.Equals(n.position) {
		return false
	}
	n.position = position
	return true
}

// ApplyUpdate merges the given fields into the node.
// Events accept a source category, annotations an author.
func (n *Node) ApplyUpdate(update FieldUpdate, cfg *config.DomainConfig) (bool, error) {
	if update.Source != nil && n.kind != KindEvent {
		return false, pkgerrors.NewValidationError("source category applies to event nodes only")
	}
	if update.Author != nil && n.kind != KindAnnotation {
		return false, pkgerrors.NewValidationError("author applies to annotation nodes only")
	}

	title := n.content.Title()
	if update.Title != nil {
		title = *update.Title
	}
	description := n.content.Description()
	if update.Description != nil {
		description = *update.Description
	}

	content, err := valueobjects.NewNodeContent(title, description, cfg)
	if err != nil {
		return false, err
	}

	changed := !content.Equals(n.content)
	n.content = content

	if update.Source != nil && *update.Source != n.attrs.Source {
		n.attrs.Source = *update.Source
		changed = true
	}
	if update.Author != nil && *update.Author != n.attrs.Author {
		n.attrs.Author = *update.Author
		changed = true
	}

	return changed, nil
}

// Clone returns a deep copy of the node
func (n *Node) Clone() *Node {
	clone := *n
	clone.attrs.Data = cloneRaw(n.attrs.Data)
	return &clone
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
