package services

import (
	"encoding/json"
	"time"

	"investigation-canvas/domain/config"
	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/domain/core/entities"
	"investigation-canvas/domain/core/valueobjects"
	pkgerrors "investigation-canvas/pkg/errors"
)

// EventRecord is an investigation event supplied by the dashboard layer
type EventRecord struct {
	Source      entities.SourceCategory `json:"source" validate:"required"`
	Type        string                  `json:"type"`
	Description string                  `json:"description"`
	Timestamp   time.Time               `json:"timestamp"`
	Raw         json.RawMessage         `json:"raw,omitempty"`
}

// AnnotationRecord is a free-text note supplied by the dashboard layer
type AnnotationRecord struct {
	Content   string          `json:"content"`
	Author    string          `json:"author"`
	Timestamp time.Time       `json:"timestamp"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// Seed is the set of records a fresh scene is built from
type Seed struct {
	Events      []EventRecord      `json:"events" validate:"dive"`
	Annotations []AnnotationRecord `json:"annotations" validate:"dive"`
}

// IsEmpty reports whether the seed has no records
func (s Seed) IsEmpty() bool {
	return len(s.Events) == 0 && len(s.Annotations) == 0
}

// SeedLayoutService tiles seed records into a non-overlapping starting layout
type SeedLayoutService struct {
	config *config.DomainConfig
}

// NewSeedLayoutService creates a layout service
func NewSeedLayoutService(cfg *config.DomainConfig) *SeedLayoutService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &SeedLayoutService{config: cfg}
}

// EventPosition returns where the i-th event is placed
func (s *SeedLayoutService) EventPosition(i int) valueobjects.Position {
	cols := s.config.EventColumns
	if cols <= 0 {
		cols = 1
	}
	return valueobjects.NewPosition(
		s.config.EventOriginX+float64(i%cols)*s.config.EventSpacingX,
		s.config.EventOriginY+float64(i/cols)*s.config.EventSpacingY,
	)
}

// AnnotationPosition returns where the i-th annotation is placed.
// Annotations advance one row step per record while alternating columns.
func (s *SeedLayoutService) AnnotationPosition(i int) valueobjects.Position {
	cols := s.config.AnnotationColumns
	if cols <= 0 {
		cols = 1
	}
	return valueobjects.NewPosition(
		s.config.AnnotationOriginX+float64(i%cols)*s.config.AnnotationSpacingX,
		s.config.AnnotationOriginY+float64(i)*s.config.AnnotationSpacingY,
	)
}

// SeedScene adds one node per record to the scene: events first, then annotations
func (s *SeedLayoutService) SeedScene(scene *aggregates.Scene, seed Seed) error {
	if scene == nil {
		return pkgerrors.NewValidationError("scene cannot be nil")
	}

	for i, record := range seed.Events {
		content, err := valueobjects.NewNodeContent(record.Type, record.Description, s.config)
		if err != nil {
			return pkgerrors.Wrapf(err, "event %d", i)
		}
		attrs := entities.NodeAttributes{
			Source:    record.Source,
			Timestamp: record.Timestamp,
			Data:      record.Raw,
		}
		if _, err := scene.AddNode(entities.KindEvent, content, s.EventPosition(i), attrs); err != nil {
			return err
		}
	}

	for i, record := range seed.Annotations {
		content, err := valueobjects.NewNodeContent(s.config.SeedAnnotationTitle, record.Content, s.config)
		if err != nil {
			return pkgerrors.Wrapf(err, "annotation %d", i)
		}
		attrs := entities.NodeAttributes{
			Author:    record.Author,
			Timestamp: record.Timestamp,
			Data:      record.Raw,
		}
		if _, err := scene.AddNode(entities.KindAnnotation, content, s.AnnotationPosition(i), attrs); err != nil {
			return err
		}
	}

	return nil
}

// NewNodeDefaults returns the content and attributes for an explicitly added node
func (s *SeedLayoutService) NewNodeDefaults(kind entities.NodeKind, now time.Time) (valueobjects.NodeContent, valueobjects.Position, entities.NodeAttributes, error) {
	title := s.config.NewEventTitle
	attrs := entities.NodeAttributes{Author: s.config.DefaultAuthor, Timestamp: now}
	if kind == entities.KindEvent {
		attrs.Source = entities.SourceManual
		attrs.Author = ""
	} else {
		title = s.config.NewAnnotationTitle
	}

	content, err := valueobjects.NewNodeContent(title, s.config.NewNodeDescription, s.config)
	if err != nil {
		return valueobjects.NodeContent{}, valueobjects.Position{}, entities.NodeAttributes{}, err
	}
	return content, valueobjects.NewPosition(s.config.NewNodeX, s.config.NewNodeY), attrs, nil
}
