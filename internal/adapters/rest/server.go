package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"section8-underwriter/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// ServerConfig - параметры HTTP-сервера
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// NewRouter собирает роутер отдельно от сервера, чтобы его можно было гонять в тестах
func NewRouter(cfg ServerConfig, handlers *UnderwriteHandlers, metrics http.Handler, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders: []string{"X-Trace-ID", "X-Run-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", handlers.HandleHealth)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/underwrite", func(r chi.Router) {
			r.Use(middleware.Timeout(10 * time.Minute))

			r.Post("/", handlers.HandleUnderwrite)
			r.Post("/sheet", handlers.HandleUnderwriteSheet)
		})
		r.Get("/rent", handlers.HandleQuoteRent)
	})

	return r
}

func NewServer(cfg ServerConfig, handlers *UnderwriteHandlers, metrics http.Handler, baseLogger port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, handlers, metrics, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// Start запускает HTTP-сервер
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
