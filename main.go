package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"portal-cms/cache"
	"portal-cms/config"
	"portal-cms/handlers"
	"portal-cms/helper"
	"portal-cms/logger"
	"portal-cms/repositories"
	"portal-cms/routes"
	"portal-cms/scheduler"
	"portal-cms/services"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		logger.Get().Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	// Load environment variables
	loaded := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = fmt.Sprintf("configs/config.%s.yaml", env)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Env != env {
		logger.Init(cfg.Env)
	}
	log := logger.Get()
	log.Info().Strs("env_files", loaded).Str("config", configPath).Str("env", cfg.Env).Msg("configuration loaded")

	if cfg.Env != "development" && cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := config.InitDB(cfg.Database, cfg.Env)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Draft cache, falling back to memory when Redis is off or down
	drafts := cache.NewMemoryDraftCache(cfg.Redis.DraftTTL)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, drafts are kept in memory")
		} else {
			defer client.Close()
			drafts = cache.NewRedisDraftCache(client, cfg.Redis.DraftTTL)
		}
	}

	// Initialize repositories
	contentRepo := repositories.NewContentRepository(db)
	versionRepo := repositories.NewContentVersionRepository(db)

	// Initialize services
	contentService := services.NewContentService(contentRepo, versionRepo)
	historyService := services.NewHistoryService(contentRepo, versionRepo)
	autosaveService := services.NewAutosaveService(contentService, drafts)

	// Initialize handlers
	httpHelper := helper.NewHTTPHelper()
	router := routes.SetupRouter(routes.Handlers{
		Content:  handlers.NewContentHandler(contentService, httpHelper),
		History:  handlers.NewHistoryHandler(historyService, httpHelper),
		Autosave: handlers.NewAutosaveHandler(autosaveService, httpHelper),
		Health:   handlers.NewHealthHandler(db, httpHelper),
	}, cfg.CORS.AllowOrigins)

	// Background publishing
	publisher := scheduler.New(contentService, scheduler.WithInterval(cfg.Scheduler.Interval))
	if cfg.Scheduler.Enabled {
		publisher.Start(ctx)
		defer publisher.Stop()
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
