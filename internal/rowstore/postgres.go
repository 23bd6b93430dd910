package rowstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/yourorg/inventario/internal/domain"
)

// PostgresStore keeps every logical table in one relation, each row a JSONB
// document ordered by an append-only position sequence. Every keyed mutation
// runs inside a transaction holding a per-table advisory lock, with the match
// resolved by the same statement that mutates, so two sessions mutating the
// same table cannot hit each other's rows.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a Postgres-backed row store
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{db: db, logger: logger}
}

// Migrate creates the backing relation if it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS store_rows (
			table_name TEXT   NOT NULL,
			position   BIGSERIAL,
			data       JSONB  NOT NULL,
			PRIMARY KEY (table_name, position)
		)
	`)
	if err != nil {
		return s.wrap("migrate", err)
	}
	return nil
}

// ReadAll returns every row of the table in storage order
func (s *PostgresStore) ReadAll(ctx context.Context, table string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM store_rows
		WHERE table_name = $1
		ORDER BY position
	`, table)
	if err != nil {
		return nil, s.wrap("read all", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, s.wrap("scan row", err)
		}
		row := Row{}
		if err := json.Unmarshal(raw, &row); err != nil {
			// Malformed rows are quarantined by skipping, not coerced.
			s.logger.Warn("skipping malformed row",
				slog.String("table", table),
				slog.String("error", err.Error()),
			)
			continue
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("read all", err)
	}
	return out, nil
}

// Append adds a row at the end of the table
func (s *PostgresStore) Append(ctx context.Context, table string, row Row) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("rowstore: marshal row: %w", err)
	}
	return s.withTableLock(ctx, table, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO store_rows (table_name, data) VALUES ($1, $2)
		`, table, data)
		return err
	})
}

// FindFirst returns the first row matching match. Containment on the JSONB
// document gives the exact per-field text equality the Row contract asks for.
func (s *PostgresStore) FindFirst(ctx context.Context, table string, match Row) (Row, error) {
	cond, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("rowstore: marshal match: %w", err)
	}
	var raw []byte
	err = s.db.QueryRowContext(ctx, `
		SELECT data FROM store_rows
		WHERE table_name = $1 AND data @> $2::jsonb
		ORDER BY position
		LIMIT 1
	`, table, cond).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRowNotFound
		}
		return nil, s.wrap("find first", err)
	}
	row := Row{}
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("rowstore: unmarshal row: %w", err)
	}
	return row, nil
}

// DeleteWhere removes the first row matching match
func (s *PostgresStore) DeleteWhere(ctx context.Context, table string, match Row) error {
	cond, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("rowstore: marshal match: %w", err)
	}
	return s.withTableLock(ctx, table, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM store_rows
			WHERE table_name = $1 AND position = (
				SELECT position FROM store_rows
				WHERE table_name = $1 AND data @> $2::jsonb
				ORDER BY position
				LIMIT 1
			)
		`, table, cond)
		if err != nil {
			return err
		}
		return requireOneRow(res)
	})
}

// ReplaceWhere overwrites the first row matching match, keeping its position
func (s *PostgresStore) ReplaceWhere(ctx context.Context, table string, match Row, row Row) error {
	cond, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("rowstore: marshal match: %w", err)
	}
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("rowstore: marshal row: %w", err)
	}
	return s.withTableLock(ctx, table, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE store_rows SET data = $3
			WHERE table_name = $1 AND position = (
				SELECT position FROM store_rows
				WHERE table_name = $1 AND data @> $2::jsonb
				ORDER BY position
				LIMIT 1
			)
		`, table, cond, data)
		if err != nil {
			return err
		}
		return requireOneRow(res)
	})
}

// UpdateFieldWhere overwrites a single field of the first row matching match
func (s *PostgresStore) UpdateFieldWhere(ctx context.Context, table string, match Row, field, value string) error {
	cond, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("rowstore: marshal match: %w", err)
	}
	return s.withTableLock(ctx, table, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE store_rows
			SET data = jsonb_set(data, ARRAY[$3], to_jsonb($4::text))
			WHERE table_name = $1 AND position = (
				SELECT position FROM store_rows
				WHERE table_name = $1 AND data @> $2::jsonb
				ORDER BY position
				LIMIT 1
			)
		`, table, cond, field, value)
		if err != nil {
			return err
		}
		return requireOneRow(res)
	})
}

// withTableLock runs fn inside a transaction holding the table's advisory
// lock. The lock is released at commit/rollback.
func (s *PostgresStore) withTableLock(ctx context.Context, table string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.wrap("begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, table); err != nil {
		return s.wrap("lock table", err)
	}
	if err := fn(tx); err != nil {
		if errors.Is(err, ErrRowNotFound) {
			return err
		}
		return s.wrap("mutate", err)
	}
	if err := tx.Commit(); err != nil {
		return s.wrap("commit", err)
	}
	return nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRowNotFound
	}
	return nil
}

func (s *PostgresStore) wrap(op string, err error) error {
	s.logger.Error("rowstore operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("rowstore: %s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
