package repository

import (
	"context"
	"time"

	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/pkg/logger"
	"github.com/okian/gradebook/pkg/metrics"
)

// Instrumented decorates a Store with latency/error metrics and logging.
type Instrumented struct {
	next    Store
	backend string
	logger  logger.Logger
}

// Instrument wraps next. backend labels the metrics.
func Instrument(next Store, backend string, l logger.Logger) *Instrumented {
	if l == nil {
		l = logger.Nop()
	}
	return &Instrumented{next: next, backend: backend, logger: l}
}

// Backend returns the backend label.
func (s *Instrumented) Backend() string { return s.backend }

func (s *Instrumented) Append(ctx context.Context, e model.Evaluation) error {
	start := time.Now()
	err := s.next.Append(ctx, e)
	s.observe(ctx, "append", start, err)
	if err == nil {
		metrics.UpdateHistorySize(s.next.Count(ctx))
		s.logger.Debug(ctx, "evaluation appended", logger.String("id", e.ID), logger.String("status", string(e.Status)))
	}
	return err
}

func (s *Instrumented) LoadAll(ctx context.Context) ([]model.Evaluation, error) {
	start := time.Now()
	history, err := s.next.LoadAll(ctx)
	s.observe(ctx, "load", start, err)
	return history, err
}

func (s *Instrumented) Clear(ctx context.Context) error {
	start := time.Now()
	err := s.next.Clear(ctx)
	s.observe(ctx, "clear", start, err)
	if err == nil {
		metrics.UpdateHistorySize(0)
		s.logger.Info(ctx, "history cleared")
	}
	return err
}

func (s *Instrumented) Count(ctx context.Context) int {
	start := time.Now()
	n := s.next.Count(ctx)
	s.observe(ctx, "count", start, nil)
	return n
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}

func (s *Instrumented) observe(ctx context.Context, op string, start time.Time, err error) {
	elapsed := time.Since(start)
	metrics.RecordHistoryOperation(op, s.backend, float64(elapsed.Microseconds())/1000, err)
	if err != nil {
		s.logger.Error(ctx, "history operation failed",
			logger.String("op", op),
			logger.String("backend", s.backend),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
	}
}
