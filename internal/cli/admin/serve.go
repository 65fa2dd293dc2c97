package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/khub/internal/api/handlers"
	"github.com/cloo-solutions/khub/internal/backend"
	"github.com/cloo-solutions/khub/internal/config"
	"github.com/cloo-solutions/khub/internal/database"
	"github.com/cloo-solutions/khub/internal/dispatch"
	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/liveness"
	"github.com/cloo-solutions/khub/internal/logging"
	"github.com/cloo-solutions/khub/internal/normalize"
	"github.com/cloo-solutions/khub/internal/repository"
	"github.com/cloo-solutions/khub/internal/server"
	"github.com/cloo-solutions/khub/internal/service"
	"github.com/cloo-solutions/khub/internal/session"
	"github.com/cloo-solutions/khub/internal/telemetry"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the explorer API server",
		Long:  "Start the khub explorer API with the liveness monitor and, when a database is configured, the telemetry collector",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stderr, cfg.Debug)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		flush, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		}, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("sentry init failed, continuing without tracing")
		} else {
			defer flush()
		}
	}

	if portFlag, _ := cmd.Flags().GetString("port"); cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}

	httpClient := backend.NewHTTPClient(cfg.HTTPTimeout)
	normalizer := normalize.New(normalize.Config{
		GraphSnippetLength:    cfg.GraphSnippetLength,
		DocumentSnippetLength: cfg.DocumentSnippetLength,
		Location:              time.Local,
	})

	searchers := []backend.Searcher{
		backend.NewGraphClient(cfg.GraphQueryURL(), cfg.GraphQueryTemplate, httpClient, normalizer),
	}
	if cfg.HasDocumentSource() {
		searchers = append(searchers, backend.NewDocumentClient(backend.DocumentConfig{
			BaseURL:    cfg.DocumentEndpoint,
			SearchPath: cfg.DocumentSearchPath,
			Email:      cfg.DocumentEmail,
			Token:      cfg.DocumentToken,
			Limit:      cfg.DocumentLimit,
		}, httpClient, normalizer))
	} else {
		logger.Info().Msg("document source not configured, compare mode disabled")
	}
	dispatcher := dispatch.New(logging.Component(logger, "dispatch"), searchers...)

	reach := &domain.ReachabilityState{}
	monitor := liveness.NewMonitor(backend.NewProbe(cfg.GraphProbeURL(), httpClient), cfg.ProbeInterval, reach, logger)
	go monitor.Start(ctx)

	store, err := session.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()
	logger.Info().Str("store", cfg.SessionStore).Msg("session store ready")

	emitter := telemetry.NewEmitter(cfg.LoggingEndpoint, httpClient, logging.Component(logger, "telemetry"))

	explorer, err := service.NewExplorerService(dispatcher, emitter, store, reach, service.ExplorerOptions{
		PageSize:         cfg.PageSize,
		RequireReachable: cfg.RequireReachable,
		ErrorClearDelay:  cfg.ErrorClearDelay,
		CacheSize:        cfg.SessionCacheSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create explorer: %w", err)
	}

	routerCfg := server.RouterConfig{
		Logger:          logger,
		NewSessionID:    explorer.NewSessionID,
		ExplorerHandler: handlers.NewExplorerHandler(explorer),
	}

	if cfg.HasDatabase() {
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		collector, closeDB, err := openCollector(ctx, cfg, !noMigrate, logger)
		if err != nil {
			return err
		}
		defer closeDB()
		routerCfg.TelemetryHandler = handlers.NewTelemetryHandler(collector)
		logger.Info().Msg("telemetry collector enabled on /logs")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info().Msg("shutting down")

	monitor.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if waiter, ok := emitter.(*telemetry.HTTPEmitter); ok {
		waiter.Wait()
	}

	logger.Info().Msg("server exited")
	return nil
}

func openCollector(ctx context.Context, cfg *config.Config, migrate bool, logger zerolog.Logger) (*service.CollectorService, func(), error) {
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info().Msg("connected to database")

	if migrate {
		if err := database.Migrate(cfg.DatabaseURL, database.DefaultMigrationsDir, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return service.NewCollectorService(repository.NewEventRepository(pool)), pool.Close, nil
}
