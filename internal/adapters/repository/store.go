// Package repository defines the evaluation history store and its backends.
package repository

import (
	"context"

	"github.com/okian/gradebook/internal/domain/model"
)

// Capacity is the maximum number of evaluations retained. Older records are
// discarded when a new one is appended to a full history.
const Capacity = 100

// Backend names used for configuration and metric labels.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Store persists the evaluation history, newest first.
type Store interface {
	// Append puts e at the front of the history and drops anything past Capacity.
	Append(ctx context.Context, e model.Evaluation) error

	// LoadAll returns the history newest first. A store that holds nothing yet
	// yields an empty slice and nil. Unreadable data yields an empty slice and an
	// error wrapping ErrCorrupt or ErrUnavailable.
	LoadAll(ctx context.Context) ([]model.Evaluation, error)

	// Clear removes every record. Clearing an empty store succeeds.
	Clear(ctx context.Context) error

	// Count returns the number of retained records, 0 when unreadable.
	Count(ctx context.Context) int

	// Close releases backend resources.
	Close() error
}

// prepend returns a new slice with e first, truncated to Capacity.
func prepend(history []model.Evaluation, e model.Evaluation) []model.Evaluation {
	n := len(history) + 1
	if n > Capacity {
		n = Capacity
	}
	out := make([]model.Evaluation, 0, n)
	out = append(out, e)
	out = append(out, history[:n-1]...)
	return out
}
