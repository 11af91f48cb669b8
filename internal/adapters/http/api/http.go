// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	service "github.com/okian/gradebook/internal/app"
	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/internal/domain/stats"
	"github.com/okian/gradebook/internal/domain/validation"
	"github.com/okian/gradebook/pkg/logger"
	"github.com/okian/gradebook/pkg/metrics"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Evaluate(ctx context.Context, sub validation.Submission) (service.Outcome, error)
	History(ctx context.Context) []model.Evaluation
	Get(ctx context.Context, id string) (model.Evaluation, error)
	Stats(ctx context.Context) stats.Summary
	ClearHistory(ctx context.Context) service.ClearResult
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scaleHandler       *ScaleHandler
	evaluationsHandler *EvaluationsHandler

	allowedOrigins []string
	requestTimeout time.Duration
	logger         logger.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins. Empty keeps "*".
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		scaleHandler:       NewScaleHandler(),
		evaluationsHandler: NewEvaluationsHandler(deps),
		allowedOrigins:     []string{"*"},
		requestTimeout:     5 * time.Second,
		logger:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds a chi router with global middleware and every API route.
// extra callbacks mount additional routes such as API docs.
func (s *Server) Router(ctx context.Context, extra ...func(chi.Router)) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Timeout(s.requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.Register(ctx, r)
	for _, mount := range extra {
		mount(r)
	}
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluations", MetricsMiddleware(s.evaluationsHandler.HandleCreate, "evaluations_create"))
		r.Get("/evaluations", MetricsMiddleware(s.evaluationsHandler.HandleList, "evaluations_list"))
		r.Delete("/evaluations", MetricsMiddleware(s.evaluationsHandler.HandleClear, "evaluations_clear"))
		r.Get("/evaluations/{id}", MetricsMiddleware(s.evaluationsHandler.HandleGet, "evaluations_get"))
		r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
		r.Get("/scale", MetricsMiddleware(s.scaleHandler.HandleScale, "scale"))
	})
}

type errorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
