package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	applog "expensedash/internal/log"
	"expensedash/internal/services"
)

// Options configures the HTTP server.
type Options struct {
	Addr               string
	AllowOrigins       []string
	RateLimitPerMinute int
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *applog.Logger
}

// Server exposes the dashboard API over HTTP.
type Server struct {
	http.Server
	engine      *gin.Engine
	expenses    *services.ExpenseService
	dashboard   *services.Dashboard
	ready       func(ctx context.Context) error
	logger      *applog.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, expenses *services.ExpenseService, dashboard *services.Dashboard) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	engine := gin.New()
	// Client IPs come from extractClientIP, so gin trusts no forwarding headers.
	if err := engine.SetTrustedProxies(nil); err != nil {
		logger.Warn("Failed to disable gin trusted proxies", applog.FieldError, err.Error())
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		engine:      engine,
		expenses:    expenses,
		dashboard:   dashboard,
		ready:       opts.Ready,
		logger:      logger,
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		metrics:     &securityMetrics{},
	}
	go s.rateLimiter.startCleanup()

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", headerRequestID},
		ExposeHeaders: []string{"Content-Length", headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}

	engine.Use(
		gin.Recovery(),
		s.requestContext(),
		s.requestLogger(),
		s.securityHeaders(),
		cors.New(corsConfig),
	)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", handleHealth)
	s.engine.GET("/readyz", s.handleReady)

	api := s.engine.Group("/api")
	api.GET("/filters", s.handleFilters)
	api.GET("/expenses", s.handleListExpenses)
	api.POST("/expenses", s.rateLimit(), s.handleCreateExpense)
	api.GET("/kpis", s.handleKPIs)
	api.GET("/charts", s.handleCharts)
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/catalogs", handleCatalogs)
	api.GET("/catalogs/:catalog", s.handleRunCatalog)
	api.GET("/catalogs/:catalog/queries/:id", s.handleRunQuery)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	})
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
