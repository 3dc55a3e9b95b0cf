package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/pullhook/pkg/domain/interfaces"
	"github.com/m-mizutani/pullhook/pkg/infra/metrics"
)

// DefaultMaxBodyBytes matches the largest payload GitHub delivers
const DefaultMaxBodyBytes = 25 << 20

// config holds internal HTTP server configuration
type config struct {
	addr         string
	maxBodyBytes int64
	recorder     *metrics.Recorder
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithMaxBodyBytes limits the webhook request body size
func WithMaxBodyBytes(n int64) Option {
	return func(c *config) {
		c.maxBodyBytes = n
	}
}

// WithMetrics enables request metrics and the /metrics endpoint
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:         "localhost:8080",
		maxBodyBytes: DefaultMaxBodyBytes,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(RecoveryMiddleware)

	// Health check
	router.Get("/health", handleHealth)

	if cfg.recorder != nil {
		router.Method(http.MethodGet, "/metrics", cfg.recorder.Handler())
	}

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(webhookUC,
		WithHandlerMaxBodyBytes(cfg.maxBodyBytes),
		WithHandlerMetrics(cfg.recorder),
	)
	router.Post("/webhook", webhookHandler.Handle)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
