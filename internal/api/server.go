package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/algopool-labs/staking-pool-engine/internal/config"
	"github.com/algopool-labs/staking-pool-engine/internal/services"
)

// Server exposes the HTTP surface: a health check, read-only pool and
// account endpoints, and the operation submission endpoint.
type Server struct {
	cfg        *config.ApiConfig
	service    *services.Service
	httpServer *http.Server
}

func New(cfg *config.ApiConfig, service *services.Service) *Server {
	srv := &Server{
		cfg:     cfg,
		service: service,
	}
	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           srv.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthcheck", s.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/pools", s.listPools)
		r.Get("/pools/{poolID}", s.getPool)
		r.Get("/pools/{poolID}/accounts/{address}", s.getAccount)
		r.Post("/operations", s.submitOperation)
	})
	return r
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("Starting api server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
