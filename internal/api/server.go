package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shadowsync/internal/api/handlers"
	"shadowsync/internal/api/middleware"
	"shadowsync/internal/config"
	"shadowsync/internal/logger"
	"shadowsync/internal/store"
	"shadowsync/internal/syncer"
	"shadowsync/internal/webhooks"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

// New wires the HTTP surface: read APIs, the batch sync trigger, the health
// probe and one webhook route per subscribed topic. All collaborators come in
// as explicit instances so tests can substitute fakes.
func New(cfg *config.Config, logger *logger.Logger, st *store.ShadowStore, orchestrator *syncer.Orchestrator, verifier *webhooks.Verifier, dispatcher *webhooks.Dispatcher) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(st, logger)
	syncHandler := handlers.NewSyncHandler(orchestrator, st, logger)
	webhookHandler := handlers.NewWebhookHandler(verifier, dispatcher, logger)
	healthHandler := handlers.NewHealthHandler(cfg)

	router.GET("/health", healthHandler.Status)

	// Routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
		}

		sync := v1.Group("/sync")
		{
			sync.POST("/run", syncHandler.Run)
			sync.GET("/logs", syncHandler.Logs)
		}
	}

	// One endpoint per resource/action, all funneled through the same
	// verify-then-dispatch handler.
	hooks := router.Group("/webhooks")
	{
		hooks.POST("/products/create", webhookHandler.Handle(webhooks.TopicProductCreate))
		hooks.POST("/products/update", webhookHandler.Handle(webhooks.TopicProductUpdate))
		hooks.POST("/products/delete", webhookHandler.Handle(webhooks.TopicProductDelete))
		hooks.POST("/inventory_levels/update", webhookHandler.Handle(webhooks.TopicInventoryUpdate))
		hooks.POST("/orders/create", webhookHandler.Handle(webhooks.TopicOrderCreate))
		hooks.POST("/orders/updated", webhookHandler.Handle(webhooks.TopicOrderUpdated))
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
