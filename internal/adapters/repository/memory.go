package repository

import (
	"context"
	"sync"

	"github.com/okian/gradebook/internal/domain/model"
)

// MemoryStore keeps the history in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	history []model.Evaluation
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = prepend(s.history, e)
	return nil
}

func (s *MemoryStore) LoadAll(_ context.Context) ([]model.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Evaluation, len(s.history))
	copy(out, s.history)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

func (s *MemoryStore) Close() error { return nil }
