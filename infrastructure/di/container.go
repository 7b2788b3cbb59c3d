package di

import (
	"investigation-canvas/application/ports"
	"investigation-canvas/application/services"
	domainConfig "investigation-canvas/domain/config"
	"investigation-canvas/infrastructure/config"
	"investigation-canvas/infrastructure/prompts"
	"investigation-canvas/interfaces/http/rest"
	"investigation-canvas/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainConfig.DomainConfig
	Logger       *zap.Logger
	Store        ports.SceneStore
	Catalog      ports.SceneCatalog
	Metrics      *observability.Collector
	Broker       *prompts.Broker
	Sessions     *services.SessionManager
	Router       *rest.Router
}
