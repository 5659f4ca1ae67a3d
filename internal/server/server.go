// Package server exposes the calculators and the admin rate store over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/rates"
	"github.com/sirupsen/logrus"
)

// Config wires the server's dependencies
type Config struct {
	Registry  *calculator.Registry
	Rates     rates.Store
	JWTSecret string
	Logger    *logrus.Logger
}

// Server routes API requests to the calculator registry and the rate store
type Server struct {
	registry *calculator.Registry
	rates    rates.Store
	secret   []byte
	logger   *logrus.Logger
	router   *mux.Router
}

// New builds the router
func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("server: calculator registry is required")
	}
	if cfg.Rates == nil {
		return nil, errors.New("server: rate store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.JWTSecret == "" {
		logger.Warn("no JWT secret configured: rate updates are disabled")
	}

	s := &Server{
		registry: cfg.Registry,
		rates:    cfg.Rates,
		secret:   []byte(cfg.JWTSecret),
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestIDMiddleware, accessLogMiddleware(s.logger))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found", "", "")
	})

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/calculators", s.listCalculators).Methods(http.MethodGet)
	api.HandleFunc("/calculators/{name}", s.describeCalculator).Methods(http.MethodGet)
	api.HandleFunc("/calculators/{name}", s.runCalculator).Methods(http.MethodPost)
	api.HandleFunc("/compare", s.compare).Methods(http.MethodPost)
	api.HandleFunc("/rates", s.listRates).Methods(http.MethodGet)
	api.HandleFunc("/rates/{key}", s.getRate).Methods(http.MethodGet)

	admin := api.PathPrefix("/rates").Subrouter()
	admin.Use(AuthMiddleware(s.secret))
	admin.HandleFunc("/{key}", s.setRate).Methods(http.MethodPut)
	admin.HandleFunc("/{key}", s.deleteRate).Methods(http.MethodDelete)
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
