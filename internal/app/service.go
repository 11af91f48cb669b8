// Package service orchestrates validation, evaluation and history persistence
// for the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/gradebook/internal/adapters/repository"
	"github.com/okian/gradebook/internal/domain/evaluation"
	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/internal/domain/stats"
	"github.com/okian/gradebook/internal/domain/validation"
	"github.com/okian/gradebook/pkg/logger"
	"github.com/okian/gradebook/pkg/metrics"
)

// Outcome is the result of an accepted submission. A failed history write is
// reported here and never as the Evaluate error.
type Outcome struct {
	Evaluation   model.Evaluation
	Persisted    bool
	PersistError error
}

// ClearResult reports whether the history was cleared.
type ClearResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service evaluates submissions and exposes the evaluation history.
type Service struct {
	// writeMu orders appends and clears so history order matches evaluation order.
	writeMu sync.Mutex

	store  repository.Store
	engine *evaluation.Engine
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the history store. The default keeps history in memory.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEngine sets the evaluation engine.
func WithEngine(engine *evaluation.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		store:  repository.NewMemoryStore(),
		engine: evaluation.New(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate validates sub, computes its evaluation and appends it to the
// history. A validation failure returns validation.FieldErrors and runs nothing.
func (s *Service) Evaluate(ctx context.Context, sub validation.Submission) (Outcome, error) {
	start := time.Now()
	in, err := validation.ParseSubmission(sub)
	if err != nil {
		var fe validation.FieldErrors
		if errors.As(err, &fe) {
			for _, field := range fe.Fields() {
				metrics.RecordValidationError(field)
			}
		}
		s.logger.Debug(ctx, "submission rejected", logger.Error(err))
		return Outcome{}, err
	}

	s.writeMu.Lock()
	e := s.engine.Evaluate(in.Subjects, in.AttendanceGradePoint, in.AttendancePercent)
	perr := s.store.Append(ctx, e)
	s.writeMu.Unlock()

	metrics.RecordEvaluation(string(e.Status), e.FinalGrade, e.GraduationProbability, e.NeedsRetake)
	metrics.RecordEvaluationLatency(float64(time.Since(start).Microseconds()) / 1000)

	out := Outcome{Evaluation: e, Persisted: perr == nil}
	if perr != nil {
		out.PersistError = fmt.Errorf("save evaluation %s: %w", e.ID, perr)
		s.logger.Error(ctx, "evaluation not saved", logger.String("id", e.ID), logger.Error(perr))
	} else {
		s.logger.Info(ctx, "evaluation recorded",
			logger.String("id", e.ID),
			logger.String("status", string(e.Status)),
			logger.Float64("final_grade", e.FinalGrade),
			logger.Bool("needs_retake", e.NeedsRetake),
		)
	}
	return out, nil
}

// History returns the stored evaluations newest first. Unreadable storage
// yields an empty history.
func (s *Service) History(ctx context.Context) []model.Evaluation {
	history, err := s.store.LoadAll(ctx)
	if err != nil {
		s.logger.Warn(ctx, "history unavailable, treating as empty", logger.Error(err))
		return []model.Evaluation{}
	}
	if history == nil {
		return []model.Evaluation{}
	}
	return history
}

// Get returns the stored evaluation with id.
func (s *Service) Get(ctx context.Context, id string) (model.Evaluation, error) {
	for _, e := range s.History(ctx) {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Evaluation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Stats aggregates the current history.
func (s *Service) Stats(ctx context.Context) stats.Summary {
	return stats.Aggregate(s.History(ctx))
}

// ClearHistory removes every stored evaluation.
func (s *Service) ClearHistory(ctx context.Context) ClearResult {
	s.writeMu.Lock()
	err := s.store.Clear(ctx)
	s.writeMu.Unlock()

	if err != nil {
		s.logger.Error(ctx, "clear history failed", logger.Error(err))
		return ClearResult{Success: false, Message: "Failed to clear evaluation history"}
	}
	return ClearResult{Success: true, Message: "Evaluation history cleared"}
}

// Close releases the history store.
func (s *Service) Close() error {
	return s.store.Close()
}
