// Package api exposes the candle engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tradelens/chartdata/internal/logger"
	"github.com/tradelens/chartdata/pkg/chartdata"
	"github.com/tradelens/chartdata/pkg/chartdata/provider"
)

// BarResolver resolves one fetch window into a bar sequence. Satisfied by
// *chartdata.Resolver.
type BarResolver interface {
	Resolve(ctx context.Context, req provider.Request) (chartdata.Result, error)
}

// Config holds the HTTP server configuration.
type Config struct {
	Listen string `validate:"required"`
}

// Server serves the candle endpoint.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	resolver   BarResolver
	log        *logger.Logger
	validate   *validator.Validate
}

// NewServer creates the HTTP server around a resolver.
func NewServer(config Config, resolver BarResolver, log *logger.Logger) (*Server, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		resolver: resolver,
		log:      log,
		validate: validate,
	}

	router := mux.NewRouter()
	router.Use(s.requestMiddleware)
	router.HandleFunc("/api/ohlc", s.handleOHLC).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Handler:           router,
		Addr:              config.Listen,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Start begins listening. It returns once the listener is bound; serving
// continues on a background goroutine until Stop.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server stopped", zap.Error(err))
		}
	}()

	s.log.Info("candle service listening", zap.String("addr", s.URL()))

	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}

	return "http://" + s.listener.Addr().String()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
