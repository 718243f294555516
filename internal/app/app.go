package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/config"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/database"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/handlers"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/messaging"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/middleware"
	"github.com/KmSasikumar/EcommProductRecommender2/internal/services"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	bus      *messaging.MessageBus
	services *services.Services
	router   *gin.Engine
	server   *http.Server
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg)

	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	bus := messaging.NewMessageBus(cfg, logger)
	svcs := services.New(cfg, logger, db, bus)

	h, err := handlers.New(cfg, svcs, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	app := &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		bus:      bus,
		services: svcs,
	}
	app.setupRouter(h)

	return app, nil
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func (a *App) setupRouter(h *handlers.Handlers) {
	gin.SetMode(a.config.Server.Mode)

	router := gin.New()
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		// Tenant creation is the one unauthenticated domain endpoint: the
		// API key does not exist before training succeeds.
		v1.POST("/train", h.TrainModel)

		tenant := v1.Group("")
		tenant.Use(middleware.APIKeyAuth(a.services.Tenants, a.logger))
		{
			tenant.POST("/recommendations", h.GetRecommendations)
			tenant.POST("/interactions", h.RecordInteraction)
			tenant.POST("/search", h.SearchProducts)
			tenant.POST("/retrain", h.RequestRetrain)
			tenant.GET("/retrain/status", h.RetrainStatus)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuth(a.services.Auth, a.logger))
		{
			admin.POST("/products", h.UpsertProduct)
			admin.POST("/products/bulk", h.BulkImportProducts)
		}
	}

	// Legacy unversioned routes kept for older clients.
	legacy := router.Group("")
	legacy.Use(middleware.APIKeyAuth(a.services.Tenants, a.logger))
	{
		legacy.POST("/recommend", h.GetRecommendations)
		legacy.POST("/interactions", h.RecordInteraction)
		legacy.POST("/search", h.SearchProducts)
		legacy.POST("/retrain", h.RequestRetrain)
	}

	a.router = router
}

func (a *App) Start() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	a.logger.WithField("port", a.config.Server.Port).Info("Starting HTTP server")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains the HTTP server, waits for in-flight retrains, and closes the
// external connections.
func (a *App) Stop(ctx context.Context) error {
	a.logger.Info("Shutting down")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.WithError(err).Error("HTTP server shutdown failed")
		}
	}

	a.services.Scheduler.Stop()

	if err := a.bus.Close(); err != nil {
		a.logger.WithError(err).Error("Failed to close message bus")
	}
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Failed to close database connections")
	}

	a.logger.Info("Shutdown complete")
	return nil
}
