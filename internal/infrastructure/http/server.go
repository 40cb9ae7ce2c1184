// Package http provides the HTTP server infrastructure.
// Framework/driver layer - outermost circle.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/helpwise/faqdesk-go/internal/domain/ports"
	"github.com/helpwise/faqdesk-go/internal/domain/usecases"
)

// Config holds the server timeouts and listen address.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server exposes the ask and history operations over HTTP.
type Server struct {
	cfg     Config
	answer  *usecases.AnswerUseCase
	history *usecases.HistoryUseCase
	corpus  ports.CorpusProvider
	model   string
	logger  *zap.Logger
}

// NewServer creates an HTTP server around the usecases.
func NewServer(
	cfg Config,
	answer *usecases.AnswerUseCase,
	history *usecases.HistoryUseCase,
	corpus ports.CorpusProvider,
	model string,
	logger *zap.Logger,
) *Server {
	return &Server{
		cfg:     cfg,
		answer:  answer,
		history: history,
		corpus:  corpus,
		model:   model,
		logger:  logger,
	}
}

// Router builds the route table. Split out from Start so tests can exercise
// handlers without a listener.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware(s.logger), metricsMiddleware, corsMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/ask", s.handleAsk).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Start runs the HTTP server until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info("server starting", zap.String("addr", s.cfg.Addr))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
