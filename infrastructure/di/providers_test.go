package di

import (
	"context"
	"path/filepath"
	"testing"

	"investigation-canvas/application/ports"
	"investigation-canvas/application/services"
	"investigation-canvas/domain/core/aggregates"
	"investigation-canvas/infrastructure/config"
	"investigation-canvas/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Environment = "test"
	cfg.StoreBackend = config.StoreMemory
	cfg.StoreDir = filepath.Join(t.TempDir(), "canvas")
	cfg.SQLitePath = filepath.Join(t.TempDir(), "canvas.db")
	return cfg
}

func sessionOptions(investigationID string) services.SessionOptions {
	return services.SessionOptions{InvestigationID: investigationID, Width: 320, Height: 200}
}

func TestProvideLogger(t *testing.T) {
	cfg := testConfig(t)
	cfg.LogLevel = "warn"
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	cfg.LogLevel = "loud"
	_, err = ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideStorage(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "memory", backend: config.StoreMemory},
		{name: "file", backend: config.StoreFile},
		{name: "sqlite", backend: config.StoreSQLite},
		{name: "unknown", backend: "tape", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.StoreBackend = tt.backend
			ctx := context.Background()

			storage, cleanup, err := ProvideStorage(ctx, cfg, ProvideDomainConfig(cfg), zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer cleanup()

			scene, err := aggregates.NewScene("inv-1", nil)
			require.NoError(t, err)
			require.NoError(t, storage.Save(ctx, scene))

			ids, err := storage.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"inv-1"}, ids)
		})
	}
}

func TestProvideSceneStore_Tracing(t *testing.T) {
	cfg := testConfig(t)
	storage, cleanup, err := ProvideStorage(context.Background(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.Same(t, storage, ProvideSceneStore(cfg, storage, ProvideTracer()))

	cfg.EnableTracing = true
	_, traced := ProvideSceneStore(cfg, storage, ProvideTracer()).(*observability.TracingStore)
	assert.True(t, traced)
}

func TestProvideTelemetry(t *testing.T) {
	cfg := testConfig(t)
	cfg.EnableMetrics = false
	assert.Nil(t, ProvideMetrics(cfg))
	assert.Equal(t, ports.NopTelemetry{}, ProvideTelemetry(nil))

	cfg.EnableMetrics = true
	collector := ProvideMetrics(cfg)
	require.NotNil(t, collector)
	assert.Same(t, collector, ProvideTelemetry(collector))
}

func TestInitializeContainer(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	container, cleanup, err := InitializeContainer(ctx, cfg)
	require.NoError(t, err)

	assert.Same(t, cfg, container.Config)
	require.NotNil(t, container.Router)
	require.NotNil(t, container.Sessions)

	session, created, err := container.Sessions.Open(ctx, sessionOptions("inv-1"))
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, <-session.Save(ctx))

	ids, err := container.Catalog.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"inv-1"}, ids)

	cleanup()
	_, _, err = container.Sessions.Open(ctx, sessionOptions("inv-2"))
	assert.ErrorIs(t, err, ports.ErrSessionClosed)
}
