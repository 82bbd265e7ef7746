package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/termlab/termlab/internal/api/http"
	"github.com/termlab/termlab/internal/api/middleware"
	"github.com/termlab/termlab/internal/api/ws"
	"github.com/termlab/termlab/internal/infrastructure/config"
	"github.com/termlab/termlab/internal/infrastructure/logging"
	"github.com/termlab/termlab/internal/infrastructure/monitoring"
	"github.com/termlab/termlab/internal/session"
	"github.com/termlab/termlab/internal/storage"
)

// Server wraps the HTTP server and dependencies.
type Server struct {
	router   *gin.Engine
	store    storage.Store
	sessions *session.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing terminal server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
	)

	metrics := monitoring.NewMetrics()

	var store storage.Store
	if cfg.Store.URL != "" {
		store = storage.NewPostgREST(storage.PostgRESTConfig{
			BaseURL: cfg.Store.URL,
			APIKey:  cfg.Store.APIKey,
			Timeout: cfg.Store.Timeout,
		})
		logger.Info("Using remote record store", zap.String("url", cfg.Store.URL))
	} else {
		store = storage.NewMemory()
		logger.Info("Using in-memory store")
	}

	sessions := session.NewManager(store, logger).WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(sessions, logger)
	wsHandler := ws.NewHandler(sessions, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	router.POST("/terminal/enter", handlers.Enter)
	router.POST("/terminal/input", handlers.Input)
	router.GET("/terminal/sessions", handlers.Sessions)

	router.GET("/stream", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		store:    store,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.logger.Sync()
	return nil
}
