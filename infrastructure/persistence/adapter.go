package persistence

import (
	"context"
	"errors"
	"strings"

	"investigation-canvas/application/ports"
	"investigation-canvas/domain/config"
	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/infrastructure/persistence/codec"
	appErrors "investigation-canvas/pkg/errors"

	"go.uber.org/zap"
)

// ErrNotFound is returned by a Backend when a key has no value
var ErrNotFound = errors.New("key not found")

// Backend is a key/value store for encoded scenes
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key starting with prefix
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Adapter stores scenes as encoded records in a Backend
type Adapter struct {
	backend Backend
	config  *config.DomainConfig
	logger  *zap.Logger
}

var (
	_ ports.SceneStore   = (*Adapter)(nil)
	_ ports.SceneCatalog = (*Adapter)(nil)
)

// NewAdapter creates a scene store over a backend
func NewAdapter(backend Backend, cfg *config.DomainConfig, logger *zap.Logger) *Adapter {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		backend: backend,
		config:  cfg,
		logger:  logger,
	}
}

// Save encodes the scene and writes it under its storage key
func (a *Adapter) Save(ctx context.Context, scene *aggregates.Scene) error {
	data, err := codec.Encode(scene)
	if err != nil {
		return appErrors.NewStorageError("encode", err)
	}

	key := codec.StorageKey(scene.InvestigationID())
	if err := a.backend.Put(ctx, key, data); err != nil {
		a.logger.Error("Failed to save canvas",
			zap.String("investigationID", scene.InvestigationID()),
			zap.Error(err),
		)
		return appErrors.NewStorageError("save", err)
	}

	a.logger.Debug("Saved canvas",
		zap.String("investigationID", scene.InvestigationID()),
		zap.Int("nodeCount", scene.NodeCount()),
		zap.Int("connectionCount", scene.ConnectionCount()),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Load reads the saved scene. Absent and malformed records both yield nil.
func (a *Adapter) Load(ctx context.Context, investigationID string) (*aggregates.Scene, error) {
	data, err := a.backend.Get(ctx, codec.StorageKey(investigationID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, appErrors.NewStorageError("load", err)
	}

	scene, dropped, err := codec.Decode(data, a.config)
	if err != nil {
		a.logger.Warn("Ignoring malformed canvas record",
			zap.String("investigationID", investigationID),
			zap.Error(err),
		)
		return nil, nil
	}
	if scene.InvestigationID() != investigationID {
		a.logger.Warn("Ignoring canvas record stored for another investigation",
			zap.String("investigationID", investigationID),
			zap.String("recordInvestigationID", scene.InvestigationID()),
		)
		return nil, nil
	}
	if dropped > 0 {
		a.logger.Warn("Dropped invalid connections from canvas record",
			zap.String("investigationID", investigationID),
			zap.Int("dropped", dropped),
		)
	}
	return scene, nil
}

// List returns the investigation IDs with a saved scene
func (a *Adapter) List(ctx context.Context) ([]string, error) {
	keys, err := a.backend.Keys(ctx, codec.KeyPrefix)
	if err != nil {
		return nil, appErrors.NewStorageError("list", err)
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, codec.KeyPrefix))
	}
	return ids, nil
}

// Delete removes the saved scene for an investigation
func (a *Adapter) Delete(ctx context.Context, investigationID string) error {
	if err := a.backend.Delete(ctx, codec.StorageKey(investigationID)); err != nil {
		return appErrors.NewStorageError("delete", err)
	}
	return nil
}

// Close releases the backend
func (a *Adapter) Close() error {
	return a.backend.Close()
}
