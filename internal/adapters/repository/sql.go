package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite

	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/pkg/logger"
)

const (
	defaultSQLiteDSN   = "file:gradebook.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	defaultPostgresDSN = "postgres://localhost:5432/gradebook?sslmode=disable"
)

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS evaluations (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  payload TEXT NOT NULL
)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS evaluations (
  seq BIGSERIAL PRIMARY KEY,
  id TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  payload TEXT NOT NULL
)`,
}

// SQLStore keeps the history in a relational table. Each append inserts one
// row and trims rows past Capacity inside the same transaction.
type SQLStore struct {
	db      *sql.DB
	backend string
	logger  logger.Logger
}

// OpenSQL opens a database for backend (BackendSQLite or BackendPostgres),
// pings it and ensures the schema exists. An empty dsn selects a local default.
func OpenSQL(ctx context.Context, backend, dsn string, opts ...Option) (*SQLStore, error) {
	const op = "repository.OpenSQL"
	var drvName string
	var schema []string
	switch backend {
	case BackendSQLite:
		drvName = "sqlite" // modernc driver
		schema = schemaSQLite
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
	case BackendPostgres:
		drvName = "pgx" // pgx stdlib driver
		schema = schemaPostgres
		if dsn == "" {
			dsn = defaultPostgresDSN
		}
	default:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnsupportedDriver, backend)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if backend == BackendSQLite {
		// A single connection serialises writers on the sqlite file.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: ensure schema: %w: %v", op, ErrUnavailable, err)
		}
	}

	o := applyOptions(opts)
	return &SQLStore{db: db, backend: backend, logger: o.logger}, nil
}

func (s *SQLStore) Append(ctx context.Context, e model.Evaluation) (err error) {
	const op = "repository.SQLStore.Append"
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO evaluations (id, created_at, payload) VALUES ($1, $2, $3)`,
		e.ID, e.Timestamp.UnixMilli(), string(payload)); err != nil {
		return fmt.Errorf("%s: insert: %w: %v", op, ErrUnavailable, err)
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM evaluations WHERE seq NOT IN (SELECT seq FROM evaluations ORDER BY seq DESC LIMIT $1)`,
		Capacity); err != nil {
		return fmt.Errorf("%s: trim: %w: %v", op, ErrUnavailable, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w: %v", op, ErrUnavailable, err)
	}
	return nil
}

func (s *SQLStore) LoadAll(ctx context.Context) ([]model.Evaluation, error) {
	const op = "repository.SQLStore.LoadAll"
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM evaluations ORDER BY seq DESC LIMIT $1`, Capacity)
	if err != nil {
		return []model.Evaluation{}, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	defer rows.Close()

	history := make([]model.Evaluation, 0, Capacity)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return []model.Evaluation{}, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
		}
		var e model.Evaluation
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return []model.Evaluation{}, fmt.Errorf("%s: %w: %v", op, ErrCorrupt, err)
		}
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return []model.Evaluation{}, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return history, nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	const op = "repository.SQLStore.Clear"
	if _, err := s.db.ExecContext(ctx, `DELETE FROM evaluations`); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return nil
}

func (s *SQLStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&n); err != nil {
		s.logger.Warn(ctx, "count failed", logger.String("backend", s.backend), logger.Error(err))
		return 0
	}
	if n > Capacity {
		n = Capacity
	}
	return n
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
