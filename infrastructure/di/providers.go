package di

import (
	"context"
	"fmt"
	"time"

	"investigation-canvas/application/ports"
	"investigation-canvas/application/render"
	"investigation-canvas/application/services"
	domainConfig "investigation-canvas/domain/config"
	"investigation-canvas/infrastructure/config"
	"investigation-canvas/infrastructure/persistence"
	"investigation-canvas/infrastructure/persistence/dynamodb"
	"investigation-canvas/infrastructure/persistence/file"
	"investigation-canvas/infrastructure/persistence/memory"
	"investigation-canvas/infrastructure/persistence/sqlite"
	"investigation-canvas/infrastructure/prompts"
	"investigation-canvas/infrastructure/render/raster"
	"investigation-canvas/interfaces/http/rest"
	"investigation-canvas/interfaces/http/rest/handlers"
	"investigation-canvas/interfaces/http/rest/middleware"
	appErrors "investigation-canvas/pkg/errors"
	"investigation-canvas/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

const (
	serviceName      = "investigation-canvas"
	metricsNamespace = "canvas"
)

// Storage is a scene store that can also enumerate saved diagrams
type Storage interface {
	ports.SceneStore
	ports.SceneCatalog
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

// ProvideDomainConfig selects canvas rules for the environment
func ProvideDomainConfig(cfg *config.Config) *domainConfig.DomainConfig {
	return domainConfig.LoadDomainConfig(cfg.Environment)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideStorage opens the configured store backend. The cleanup closes it.
func ProvideStorage(
	ctx context.Context,
	cfg *config.Config,
	domainCfg *domainConfig.DomainConfig,
	logger *zap.Logger,
) (Storage, func(), error) {
	var backend persistence.Backend
	switch cfg.StoreBackend {
	case config.StoreDynamoDB:
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		store := dynamodb.NewSceneStore(ProvideDynamoDBClient(awsCfg), cfg.DynamoDBTable, domainCfg, logger)
		logger.Info("Using DynamoDB scene store", zap.String("table", cfg.DynamoDBTable))
		return store, func() {}, nil

	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		backend = store
		logger.Info("Using SQLite scene store", zap.String("path", cfg.SQLitePath))

	case config.StoreMemory:
		backend = memory.NewStore()
		logger.Info("Using in-memory scene store")

	case config.StoreFile:
		store, err := file.Open(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		backend = store
		logger.Info("Using file scene store", zap.String("dir", store.Dir()))

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	adapter := persistence.NewAdapter(backend, domainCfg, logger)
	cleanup := func() {
		if err := adapter.Close(); err != nil {
			logger.Warn("Failed to close scene store", zap.Error(err))
		}
	}
	return adapter, cleanup, nil
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer(serviceName)
}

// ProvideSceneStore returns the store sessions save through, traced when enabled
func ProvideSceneStore(cfg *config.Config, storage Storage, tracer *observability.Tracer) ports.SceneStore {
	if cfg.EnableTracing {
		return observability.NewTracingStore(storage, tracer)
	}
	return storage
}

// ProvideSceneCatalog exposes the catalog side of the storage
func ProvideSceneCatalog(storage Storage) ports.SceneCatalog {
	return storage
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are off
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(metricsNamespace)
}

// ProvideTelemetry adapts the collector to the session telemetry port
func ProvideTelemetry(metrics *observability.Collector) ports.Telemetry {
	if metrics == nil {
		return ports.NopTelemetry{}
	}
	return metrics
}

// ProvidePromptBroker creates the broker that parks edit and confirm prompts
func ProvidePromptBroker(cfg *config.Config, logger *zap.Logger) *prompts.Broker {
	return prompts.NewBroker(time.Duration(cfg.PromptTimeoutSeconds)*time.Second, logger)
}

// ProvideRenderer creates the scene renderer
func ProvideRenderer() *render.Renderer {
	return render.NewRenderer(render.DefaultTheme())
}

// ProvideSurfaceFactory returns a factory for raster surfaces
func ProvideSurfaceFactory() services.SurfaceFactory {
	return func(width, height int) (services.Surface, error) {
		surface, err := raster.NewSurface(width, height)
		if err != nil {
			return nil, err
		}
		return surface, nil
	}
}

// ProvideSessionDeps gathers what every editor session shares
func ProvideSessionDeps(
	domainCfg *domainConfig.DomainConfig,
	store ports.SceneStore,
	broker *prompts.Broker,
	telemetry ports.Telemetry,
	renderer *render.Renderer,
	newSurface services.SurfaceFactory,
	logger *zap.Logger,
) services.SessionDeps {
	return services.SessionDeps{
		Config:     domainCfg,
		Store:      store,
		Editor:     broker,
		Confirmer:  broker,
		Notifier:   broker,
		Telemetry:  telemetry,
		Renderer:   renderer,
		NewSurface: newSurface,
		Logger:     logger,
	}
}

// ProvideSessionManager creates the session manager. The cleanup stops every session.
func ProvideSessionManager(ctx context.Context, deps services.SessionDeps, logger *zap.Logger) (*services.SessionManager, func()) {
	manager := services.NewSessionManager(ctx, deps)
	return manager, func() {
		if err := manager.Shutdown(); err != nil {
			logger.Warn("Editor sessions stopped with error", zap.Error(err))
		}
	}
}

// ProvideErrorHandler creates the HTTP error handler; stack traces are exposed in development
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *appErrors.ErrorHandler {
	return appErrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideCanvasHandler creates the session HTTP handler
func ProvideCanvasHandler(
	sessions *services.SessionManager,
	broker *prompts.Broker,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *handlers.CanvasHandler {
	return handlers.NewCanvasHandler(sessions, broker, errorHandler, logger)
}

// ProvideCatalogHandler creates the saved-diagram HTTP handler
func ProvideCatalogHandler(
	store ports.SceneStore,
	catalog ports.SceneCatalog,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *handlers.CatalogHandler {
	return handlers.NewCatalogHandler(store, catalog, errorHandler, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	canvas *handlers.CanvasHandler,
	catalog *handlers.CatalogHandler,
	metrics *observability.Collector,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	options := rest.RouterOptions{EnableCORS: cfg.EnableCORS}
	if cfg.RateLimitPerMinute > 0 {
		options.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute, errorHandler)
	}
	return rest.NewRouter(canvas, catalog, metrics, errorHandler, options, logger)
}
