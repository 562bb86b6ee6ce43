package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rankforge/rankforge/internal/config"
	"github.com/rankforge/rankforge/internal/orchestrator"
	"github.com/rankforge/rankforge/internal/publisher"
	"github.com/rankforge/rankforge/internal/publisher/hubspot"
	"github.com/rankforge/rankforge/internal/publisher/shopify"
	"github.com/rankforge/rankforge/internal/publisher/wordpress"
	"github.com/rankforge/rankforge/internal/service"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Registry     *publisher.Registry
	Orchestrator *orchestrator.Orchestrator
	Archive      *service.ArchiveService
	StatsUpdater *service.StatsUpdater
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize platform adapters
	registry := publisher.NewRegistry(logger)
	if err := registerPublishers(registry, cfg, logger); err != nil {
		return nil, err
	}

	// Initialize orchestrator
	retryDelay, err := cfg.Orchestrator.RetryDelayDuration()
	if err != nil {
		return nil, err
	}
	tickInterval, err := cfg.Orchestrator.TickIntervalDuration()
	if err != nil {
		return nil, err
	}
	statsInterval, err := cfg.Orchestrator.StatsIntervalDuration()
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(orchestrator.Config{
		MaxConcurrentJobs: cfg.Orchestrator.MaxConcurrentJobs,
		RetryDelay:        retryDelay,
		TickInterval:      tickInterval,
		MaxRetries:        cfg.Orchestrator.MaxRetries,
		EventBuffer:       cfg.Orchestrator.EventBuffer,
	}, registry, logger)

	archive := service.NewArchiveService(db, logger)
	statsUpdater := service.NewStatsUpdater(archive, orch, logger, statsInterval)

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:       cfg,
		DB:           db,
		Router:       router,
		Logger:       logger,
		Registry:     registry,
		Orchestrator: orch,
		Archive:      archive,
		StatsUpdater: statsUpdater,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func registerPublishers(registry *publisher.Registry, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Platforms.WordPress.Enabled {
		if err := registry.Register(wordpress.NewPublisher(logger)); err != nil {
			return fmt.Errorf("failed to register wordpress publisher: %w", err)
		}
	}
	if cfg.Platforms.Shopify.Enabled {
		if err := registry.Register(shopify.NewPublisher(logger, cfg.Platforms.Shopify.APIVersion)); err != nil {
			return fmt.Errorf("failed to register shopify publisher: %w", err)
		}
	}
	if cfg.Platforms.HubSpot.Enabled {
		if err := registry.Register(hubspot.NewPublisher(logger)); err != nil {
			return fmt.Errorf("failed to register hubspot publisher: %w", err)
		}
	}
	return nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		publish := api.Group("/publish")
		{
			publish.POST("", s.handleCreateJob)
			publish.GET("/jobs", s.handleListJobs)
			publish.GET("/stats", s.handleStats)
			publish.GET("/:id/progress", s.handleGetProgress)
			publish.GET("/:id/history", s.handleHistory)
			publish.POST("/:id/pause", s.handlePause)
			publish.POST("/:id/resume", s.handleResume)
			publish.DELETE("/:id", s.handleCancel)
		}

		api.GET("/platforms", s.handlePlatforms)
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start background services
	s.Orchestrator.Start(ctx)
	s.Archive.Run(ctx, s.Orchestrator)
	s.Archive.SyncPlatformCatalogue(s.Registry.Names())
	s.StatsUpdater.Start(ctx)

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop background services first
	s.Orchestrator.Stop()
	s.StatsUpdater.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
