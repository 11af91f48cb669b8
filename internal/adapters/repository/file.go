package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/pkg/logger"
)

// FileStore keeps the history as one JSON array in a file.
//
// Every operation loads, mutates and rewrites the whole document under a
// mutex. Only one process may write a given path at a time.
type FileStore struct {
	mu     sync.Mutex
	path   string
	perm   fs.FileMode
	logger logger.Logger
}

// NewFileStore returns a store backed by path. The file is created on first append.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	const op = "repository.NewFileStore"
	if path == "" {
		return nil, fmt.Errorf("%s: empty path: %w", op, ErrUnavailable)
	}
	o := applyOptions(opts)
	return &FileStore{
		path:   path,
		perm:   fs.FileMode(o.filePerms),
		logger: o.logger,
	}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Append(ctx context.Context, e model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.read()
	if err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return err
		}
		s.logger.Warn(ctx, "discarding corrupt history file", logger.String("path", s.path), logger.Error(err))
		history = nil
	}
	return s.write(prepend(history, e))
}

func (s *FileStore) LoadAll(_ context.Context) ([]model.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.read()
	if err != nil {
		return []model.Evaluation{}, err
	}
	return history, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	const op = "repository.FileStore.Clear"
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return nil
}

func (s *FileStore) Count(ctx context.Context) int {
	history, _ := s.LoadAll(ctx)
	return len(history)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() ([]model.Evaluation, error) {
	const op = "repository.FileStore.read"
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Evaluation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if len(data) == 0 {
		return []model.Evaluation{}, nil
	}
	var history []model.Evaluation
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrCorrupt, err)
	}
	if len(history) > Capacity {
		history = history[:Capacity]
	}
	return history, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *FileStore) write(history []model.Evaluation) error {
	const op = "repository.FileStore.write"
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if err := tmp.Chmod(s.perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return nil
}
