package ports

import (
	"context"

	"investigation-canvas/domain/core/aggregates"
)

// SceneStore defines the interface for diagram persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type SceneStore interface {
	// Save persists the whole scene under its investigation ID
	Save(ctx context.Context, scene *aggregates.Scene) error

	// Load retrieves the saved scene for an investigation.
	// It returns nil and no error when nothing usable is stored.
	Load(ctx context.Context, investigationID string) (*aggregates.Scene, error)
}

// SceneCatalog is implemented by stores that can enumerate and drop saved diagrams
type SceneCatalog interface {
	// List returns the investigation IDs that have a saved diagram
	List(ctx context.Context) ([]string, error)

	// Delete removes the saved diagram for an investigation
	Delete(ctx context.Context, investigationID string) error
}
