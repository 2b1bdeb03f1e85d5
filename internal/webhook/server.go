package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/ecsbot/internal/command"
	"github.com/mattjoyce/ecsbot/internal/format"
	"github.com/mattjoyce/ecsbot/internal/metrics"
	"github.com/mattjoyce/ecsbot/internal/slack"
)

// Server represents the slash-command HTTP server.
type Server struct {
	config     Config
	auth       Authenticator
	dispatcher CommandDispatcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	server     *http.Server

	started time.Time
	now     func() time.Time
}

// New creates a new server instance. m may be nil.
func New(config Config, auth Authenticator, dispatcher CommandDispatcher, m *metrics.Metrics, logger *slog.Logger) *Server {
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:     config,
		auth:       auth,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
		started:    time.Now(),
		now:        time.Now,
	}
}

// Start starts the HTTP server (blocking) until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting", "listen", s.config.Listen, "path", s.config.Path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path, s.handleCommand)
	r.Get("/healthz", s.handleHealth)
	if s.config.MetricsEnabled && s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}

// loggingMiddleware logs and counts HTTP requests (excludes payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.HTTPRequest(route, strconv.Itoa(ww.Status()))

		s.logger.Info("webhook request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleCommand runs verify, parse, dispatch and format for one delivery.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("request_id", middleware.GetReqID(ctx))

	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodySize+1))
	if err != nil {
		logger.Warn("failed to read request body", "error", err)
		s.respondError(w, http.StatusUnauthorized, invalidSignature)
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		logger.Warn("request body too large", "limit", s.config.MaxBodySize)
		s.respondError(w, http.StatusUnauthorized, invalidSignature)
		return
	}

	req := slack.InboundRequest{
		Headers:    slack.HeadersFrom(r.Header),
		Body:       body,
		ReceivedAt: s.now(),
	}
	if err := s.auth.Check(ctx, req); err != nil {
		s.respondError(w, http.StatusUnauthorized, invalidSignature)
		return
	}

	sc := slack.ParseSlashCommand(body)
	f := s.formatter(sc)

	cmd, err := command.Parse(sc.Text, sc.UserName)
	var usage *command.UsageError
	switch {
	case errors.Is(err, command.ErrHelp):
		s.respondJSON(w, http.StatusOK, slack.Ephemeral(f.Help()))
		return
	case errors.As(err, &usage):
		logger.Info("incomplete command", "missing", usage.Missing, "user", sc.UserName)
		s.respondJSON(w, http.StatusOK, slack.Ephemeral(f.Usage(err)))
		return
	case err != nil:
		s.respondJSON(w, http.StatusOK, slack.Ephemeral(f.Error(err.Error())))
		return
	}

	logger.Info("slash command received",
		"cluster", cmd.Cluster,
		"service", cmd.Service,
		"action", string(cmd.Action),
		"user", cmd.Requester,
	)

	out := s.dispatcher.Dispatch(ctx, cmd)
	s.respondJSON(w, http.StatusOK, slack.Ephemeral(f.Outcome(out)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(s.now().Sub(s.started).Seconds()),
	})
}

func (s *Server) formatter(sc slack.SlashCommand) format.Formatter {
	if s.config.SlashCommand != "" {
		return format.New(s.config.SlashCommand)
	}
	return format.New(sc.Command)
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, slack.ErrorResponse{Error: message})
}
