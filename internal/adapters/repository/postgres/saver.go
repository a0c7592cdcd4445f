// Package postgres persists checkpoints in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskflow/taskflow/internal/core/checkpoint"
	"github.com/taskflow/taskflow/pkg/serialization"
)

// Saver implements checkpoint.Saver for PostgreSQL.
type Saver struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// New creates a PostgreSQL checkpoint saver.
func New(pool *pgxpool.Pool, serializer *serialization.Serializer) *Saver {
	if serializer == nil {
		serializer = serialization.Default()
	}
	return &Saver{pool: pool, serializer: serializer, tableName: "checkpoints"}
}

// CreateSchema creates the checkpoint table when absent.
func (s *Saver) CreateSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			run_id     TEXT NOT NULL DEFAULT '',
			body       BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, s.tableName)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create checkpoint schema: %w", err)
	}
	return nil
}

// Save stores a checkpoint.
func (s *Saver) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if cp == nil {
		return checkpoint.ErrInvalidCheckpointID
	}
	if err := cp.Validate(); err != nil {
		return err
	}
	body, err := s.serializer.Serialize(cp)
	if err != nil {
		return fmt.Errorf("%w: %v", checkpoint.ErrSaveFailed, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, run_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			run_id = EXCLUDED.run_id,
			body = EXCLUDED.body,
			created_at = EXCLUDED.created_at`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, cp.ID, cp.Name, cp.RunID, body, cp.CreatedAt); err != nil {
		return fmt.Errorf("%w: %v", checkpoint.ErrSaveFailed, err)
	}
	return nil
}

// Load retrieves a checkpoint by ID.
func (s *Saver) Load(ctx context.Context, id string) (*checkpoint.Checkpoint, error) {
	if id == "" {
		return nil, checkpoint.ErrInvalidCheckpointID
	}
	query := fmt.Sprintf(`SELECT body FROM %s WHERE id = $1`, s.tableName)

	var body []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &checkpoint.NotFoundError{Name: id}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", checkpoint.ErrLoadFailed, err)
	}

	var cp checkpoint.Checkpoint
	if err := s.serializer.Deserialize(body, &cp); err != nil {
		return nil, fmt.Errorf("%w: %v", checkpoint.ErrLoadFailed, err)
	}
	return &cp, nil
}

// List returns matching checkpoints, newest first.
func (s *Saver) List(ctx context.Context, filter checkpoint.Filter) ([]*checkpoint.Checkpoint, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Name != "" {
		conds = append(conds, "name = "+arg(filter.Name))
	}
	if filter.RunID != "" {
		conds = append(conds, "run_id = "+arg(filter.RunID))
	}
	if filter.Since != nil {
		conds = append(conds, "created_at >= "+arg(*filter.Since))
	}

	query := fmt.Sprintf(`SELECT body FROM %s`, s.tableName)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", checkpoint.ErrLoadFailed, err)
	}
	defer rows.Close()

	var out []*checkpoint.Checkpoint
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: %v", checkpoint.ErrLoadFailed, err)
		}
		var cp checkpoint.Checkpoint
		if err := s.serializer.Deserialize(body, &cp); err != nil {
			return nil, fmt.Errorf("%w: %v", checkpoint.ErrLoadFailed, err)
		}
		out = append(out, &cp)
	}
	return out, rows.Err()
}

// Delete removes a checkpoint by ID.
func (s *Saver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return checkpoint.ErrInvalidCheckpointID
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &checkpoint.NotFoundError{Name: id}
	}
	return nil
}

var _ checkpoint.Saver = (*Saver)(nil)
