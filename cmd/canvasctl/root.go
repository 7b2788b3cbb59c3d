package main

import (
	"context"
	"time"

	"investigation-canvas/application/services"
	"investigation-canvas/infrastructure/config"
	"investigation-canvas/infrastructure/di"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// promptWait bounds how long a scripted step waits for a prompt or its result
const promptWait = 5 * time.Second

type rootFlags struct {
	configPath string
	store      string
	storeDir   string
	sqlitePath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "canvasctl",
		Short: "Inspect, render and script investigation canvases",
		Long: "canvasctl works with saved investigation diagrams directly in the store:\n" +
			"render them to PNG, replay scripted gestures against them, or summarise them.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "TOML config file (overrides CANVAS_CONFIG)")
	pf.StringVar(&flags.store, "store", "", "store backend: file, sqlite, memory or dynamodb")
	pf.StringVar(&flags.storeDir, "store-dir", "", "directory for the file store")
	pf.StringVar(&flags.sqlitePath, "sqlite-path", "", "database path for the sqlite store")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(newRenderCmd(flags))
	root.AddCommand(newReplayCmd(flags))
	root.AddCommand(newShowCmd(flags))
	root.AddCommand(newDeleteCmd(flags))
	return root
}

// env is what every subcommand works with
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	storage di.Storage
	close   func()
}

func (f *rootFlags) open(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if f.configPath != "" {
		if err := cfg.MergeFile(f.configPath); err != nil {
			return nil, err
		}
	}
	if f.store != "" {
		cfg.StoreBackend = f.store
	}
	if f.storeDir != "" {
		cfg.StoreDir = f.storeDir
	}
	if f.sqlitePath != "" {
		cfg.SQLitePath = f.sqlitePath
	}
	cfg.LogLevel = "warn"
	if f.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	storage, cleanup, err := di.ProvideStorage(ctx, cfg, di.ProvideDomainConfig(cfg), logger)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
		close: func() {
			cleanup()
			_ = logger.Sync()
		},
	}, nil
}

// sessionDeps builds session collaborators around the env's store
func (e *env) sessionDeps() services.SessionDeps {
	return services.SessionDeps{
		Config:     di.ProvideDomainConfig(e.cfg),
		Store:      e.storage,
		Renderer:   di.ProvideRenderer(),
		NewSurface: di.ProvideSurfaceFactory(),
		Logger:     e.logger,
	}
}

// startSession creates a session and runs its loop until stop is called
func startSession(ctx context.Context, opts services.SessionOptions, deps services.SessionDeps) (*services.Session, func(), error) {
	session, err := services.NewSession(ctx, opts, deps)
	if err != nil {
		return nil, nil, err
	}
	go func() {
		_ = session.Run(ctx)
	}()
	stop := func() {
		session.Close()
		<-session.Done()
	}
	return session, stop, nil
}
