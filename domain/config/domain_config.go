package config

// DomainConfig holds all configurable canvas rules and constraints
type DomainConfig struct {
	// Scene constraints
	MaxNodesPerScene       int
	MaxConnectionsPerScene int

	// Node geometry
	DefaultNodeWidth  float64
	DefaultNodeHeight float64

	// Content limits
	MaxTitleLength       int
	MaxDescriptionLength int

	// Hit testing
	ConnectionHitTolerance float64

	// Seed layout: events
	EventOriginX  float64
	EventOriginY  float64
	EventColumns  int
	EventSpacingX float64
	EventSpacingY float64

	// Seed layout: annotations
	AnnotationOriginX  float64
	AnnotationOriginY  float64
	AnnotationColumns  int
	AnnotationSpacingX float64
	AnnotationSpacingY float64

	// Where explicitly added nodes appear
	NewNodeX float64
	NewNodeY float64

	// Default content for explicitly added nodes
	NewEventTitle       string
	NewAnnotationTitle  string
	NewNodeDescription  string
	DefaultAuthor       string
	SeedAnnotationTitle string
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerScene:       10000,
		MaxConnectionsPerScene: 50000,

		DefaultNodeWidth:  140,
		DefaultNodeHeight: 80,

		MaxTitleLength:       255,
		MaxDescriptionLength: 10000,

		ConnectionHitTolerance: 5,

		EventOriginX:  100,
		EventOriginY:  100,
		EventColumns:  3,
		EventSpacingX: 200,
		EventSpacingY: 150,

		AnnotationOriginX:  600,
		AnnotationOriginY:  100,
		AnnotationColumns:  2,
		AnnotationSpacingX: 200,
		AnnotationSpacingY: 120,

		NewNodeX: 100,
		NewNodeY: 100,

		NewEventTitle:       "New Event",
		NewAnnotationTitle:  "New Annotation",
		NewNodeDescription:  "Click to edit",
		DefaultAuthor:       "Current User",
		SeedAnnotationTitle: "Annotation",
	}
}

// LoadDomainConfig loads domain configuration based on environment.
// Development is more permissive about scene size than production.
func LoadDomainConfig(environment string) *DomainConfig {
	config := DefaultDomainConfig()
	switch environment {
	case "production":
		config.MaxNodesPerScene = 5000
		config.MaxConnectionsPerScene = 25000
	case "development":
		config.MaxNodesPerScene = 100000
		config.MaxConnectionsPerScene = 500000
	}
	return config
}
