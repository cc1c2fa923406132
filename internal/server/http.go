package server

import (
	"context"
	"log/slog"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelgate/config"
	"modelgate/internal/observability"
	"modelgate/internal/relay"
	"modelgate/internal/selector"
)

// defaultBodyLimit caps inbound request bodies.
const defaultBodyLimit = "10M"

// Options holds optional server wiring.
type Options struct {
	Metrics *observability.Metrics
	// HeartbeatHandler, when set, is exposed on HeartbeatPath and skips auth.
	HeartbeatHandler http.HandlerFunc
	HeartbeatPath    string
}

// Server wraps the Echo server.
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// New creates the HTTP server with the full middleware stack and routes.
func New(cfg *config.Config, sel *selector.Selector, rl *relay.Client, opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	handler := NewHandler(cfg, sel, rl, opts.Metrics)

	authSkipPaths := []string{"/health"}

	metricsPath := "/metrics"
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Endpoint != "" {
			// Normalize to prevent traversal in configured paths.
			metricsPath = path.Clean(cfg.Metrics.Endpoint)
		}
		authSkipPaths = append(authSkipPaths, metricsPath)
	}

	heartbeatPath := opts.HeartbeatPath
	if opts.HeartbeatHandler != nil {
		if heartbeatPath == "" {
			heartbeatPath = "/__heartbeat"
		}
		authSkipPaths = append(authSkipPaths, heartbeatPath)
	}

	// Global middleware stack (order matters)
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(defaultBodyLimit))
	e.Use(AuthMiddleware(cfg, authSkipPaths))

	// Public routes
	e.GET("/health", handler.Health)
	if cfg.Metrics.Enabled {
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}
	if opts.HeartbeatHandler != nil {
		e.GET(heartbeatPath, echo.WrapHandler(opts.HeartbeatHandler))
	}

	// API routes
	e.GET("/v1/models", handler.ListModels)
	e.POST("/v1/chat/completions", handler.ChatCompletion)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// requestLogger emits one slog line per completed request.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			)
			return nil
		},
	})
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements http.Handler, allowing Server to be used with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
