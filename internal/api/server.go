package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"deltaoption/internal/api/health"
	"deltaoption/internal/metrics"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/logger"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port        int
	ServiceName string
	Version     string
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	hub        *PriceHub
	log        *logger.Logger
}

// NewServer creates and configures the HTTP server with all routes
func NewServer(
	cfg ServerConfig,
	options *OptionHandler,
	prices *PriceHandler,
	hub *PriceHub,
	healthHandler *health.Handler,
	log *logger.Logger,
) *Server {
	mux := http.NewServeMux()

	// Option lifecycle
	mux.HandleFunc("POST /options", instrument("options.write", options.HandleWrite))
	mux.HandleFunc("GET /options/{symbol}", instrument("options.list", options.HandleList))
	mux.HandleFunc("GET /options/{symbol}/{id}", instrument("options.get", options.HandleGet))
	mux.HandleFunc("GET /options/{symbol}/{id}/cost", instrument("options.cost", options.HandleQuote))
	mux.HandleFunc("POST /options/{symbol}/{id}/buy", instrument("options.buy", options.HandleBuy))
	mux.HandleFunc("POST /options/{symbol}/{id}/cancel", instrument("options.cancel", options.HandleCancel))
	mux.HandleFunc("POST /options/{symbol}/{id}/exercise", instrument("options.exercise", options.HandleExercise))
	mux.HandleFunc("POST /options/{symbol}/{id}/reclaim", instrument("options.reclaim", options.HandleReclaim))

	// Oracle prices
	mux.HandleFunc("GET /prices/{symbol}", instrument("prices.latest", prices.HandlePrice))
	mux.HandleFunc("GET /prices/{symbol}/history", instrument("prices.history", prices.HandleHistory))
	mux.HandleFunc("GET /ws/prices", hub.HandleWS)

	// Health check endpoints (Kubernetes probes)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReadiness)
	mux.HandleFunc("/live", healthHandler.HandleLiveness)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Root endpoint (service info)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"service":"%s","version":"%s","status":"running"}`,
			cfg.ServiceName, cfg.Version)
	})

	port := 8080
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		hub:        hub,
		log:        log,
	}
}

// Start begins listening for HTTP requests.
// Blocks until the server is stopped or encounters an error.
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server.
// Waits for active connections to complete within timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	s.hub.Close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("HTTP server stopped")
	return nil
}
