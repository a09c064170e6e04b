package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Brownie44l1/partscan/internal/handlers"
)

type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Routes struct {
	Model   *handlers.Handler
	Catalog *handlers.CatalogHandler
	Pages   *handlers.Pages
}

// NewRouter registers every endpoint and wraps the mux in the middleware
// chain.
func NewRouter(routes Routes, origins []string, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", routes.Model.Health)
	mux.HandleFunc("POST /api/identify-part", routes.Model.IdentifyPart)
	mux.HandleFunc("POST /api/predict", routes.Model.Predict)

	mux.HandleFunc("GET /api/products", routes.Catalog.HandleListProducts)
	mux.HandleFunc("GET /api/products/{id}", routes.Catalog.HandleGetProduct)
	mux.HandleFunc("GET /api/categories", routes.Catalog.HandleListCategories)

	if routes.Pages != nil {
		for _, prefix := range routes.Pages.Register(mux) {
			logger.Info("static assets mounted", zap.String("prefix", prefix))
		}
	}

	chain := Chain(
		RequestIDMiddleware,
		RecoveryMiddleware(logger),
		LoggerMiddleware(logger),
		CORSMiddleware(origins),
	)
	return chain(mux)
}

type Server struct {
	server *http.Server
	logger *zap.Logger
}

func New(cfg Config, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}
