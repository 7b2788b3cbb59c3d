package config

import (
	"fmt"
	"os"
	"strconv"

	"investigation-canvas/pkg/utils"

	"github.com/BurntSushi/toml"
)

// Store backends
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `toml:"server_address" validate:"required"`
	Environment   string `toml:"environment" validate:"oneof=development staging production test"`

	// Persistence
	StoreBackend string `toml:"store_backend" validate:"oneof=file sqlite memory dynamodb"`
	StoreDir     string `toml:"store_dir"`
	SQLitePath   string `toml:"sqlite_path"`

	// AWS configuration
	AWSRegion     string `toml:"aws_region"`
	DynamoDBTable string `toml:"dynamodb_table"`

	// Drawing surface
	SurfaceWidth  int `toml:"surface_width" validate:"gt=0,max=16384"`
	SurfaceHeight int `toml:"surface_height" validate:"gt=0,max=16384"`

	// Prompts left unanswered are canceled after this many seconds, 0 waits forever
	PromptTimeoutSeconds int `toml:"prompt_timeout_seconds" validate:"min=0"`

	// Requests per client per minute on the API, 0 disables limiting
	RateLimitPerMinute int `toml:"rate_limit_per_minute" validate:"min=0"`

	// Logging
	LogLevel string `toml:"log_level" validate:"oneof=debug info warn error"`

	// Feature flags
	EnableMetrics bool `toml:"enable_metrics"`
	EnableTracing bool `toml:"enable_tracing"`
	EnableCORS    bool `toml:"enable_cors"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerAddress:        ":8080",
		Environment:          "development",
		StoreBackend:         StoreFile,
		StoreDir:             ".canvas",
		SQLitePath:           ".canvas/canvas.db",
		AWSRegion:            "us-west-2",
		DynamoDBTable:        "investigation-canvas",
		SurfaceWidth:         1200,
		SurfaceHeight:        800,
		PromptTimeoutSeconds: 0,
		LogLevel:             "info",
		EnableMetrics:        true,
		EnableTracing:        false,
		EnableCORS:           true,
	}
}

// LoadConfig builds the configuration from defaults, then the TOML file named
// by CANVAS_CONFIG if set, then environment variables
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CANVAS_CONFIG"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// MergeFile overlays the keys present in a TOML file
func (c *Config) MergeFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)

	c.StoreBackend = getEnv("CANVAS_STORE", c.StoreBackend)
	c.StoreDir = getEnv("CANVAS_STORE_DIR", c.StoreDir)
	c.SQLitePath = getEnv("CANVAS_SQLITE_PATH", c.SQLitePath)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))

	c.SurfaceWidth = getEnvInt("CANVAS_WIDTH", c.SurfaceWidth)
	c.SurfaceHeight = getEnvInt("CANVAS_HEIGHT", c.SurfaceHeight)
	c.PromptTimeoutSeconds = getEnvInt("PROMPT_TIMEOUT_SECONDS", c.PromptTimeoutSeconds)

	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.StoreBackend {
	case StoreFile:
		if c.StoreDir == "" {
			return fmt.Errorf("CANVAS_STORE_DIR is required for the file store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("CANVAS_SQLITE_PATH is required for the sqlite store")
		}
	case StoreDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb store")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
