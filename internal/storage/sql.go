package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pathshala/pathshala/internal/conditions"
	"github.com/pathshala/pathshala/internal/config"
	"github.com/pathshala/pathshala/internal/models"
)

// dialect captures the SQL differences between SQLite and PostgreSQL.
type dialect struct {
	name   string
	schema string
	upsert string
	// bind returns the placeholder for the n-th (1-based) argument.
	bind func(n int) string
	// contains returns a predicate testing whether the JSON field contains
	// the lower-cased argument at placeholder.
	contains func(field, placeholder string) string
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT NOT NULL,
		category TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		data TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (category, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_category_created ON records(category, created_at);
	CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
	`,
	upsert: `INSERT INTO records (id, category, source, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(category, id) DO UPDATE SET source = excluded.source, data = excluded.data`,
	bind: func(int) string { return "?" },
	contains: func(field, ph string) string {
		return fmt.Sprintf("instr(lower(coalesce(json_extract(data, '$.%s'), '')), %s) > 0", field, ph)
	},
}

var postgresDialect = dialect{
	name: "postgres",
	schema: `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT NOT NULL,
		category TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (category, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_category_created ON records(category, created_at);
	CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
	`,
	upsert: `INSERT INTO records (id, category, source, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (category, id) DO UPDATE SET source = EXCLUDED.source, data = EXCLUDED.data`,
	bind: func(n int) string { return fmt.Sprintf("$%d", n) },
	contains: func(field, ph string) string {
		return fmt.Sprintf("strpos(lower(coalesce(data->>'%s', '')), %s) > 0", field, ph)
	},
}

// SQLStore implements Store on database/sql, with one JSON document per record.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(sqliteDialect.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLStore{db: db, dialect: sqliteDialect}, nil
}

// NewPostgresStore connects to PostgreSQL with cfg.DSN, applies pool
// settings and initializes the schema.
func NewPostgresStore(ctx context.Context, cfg config.StorageConfig) (*SQLStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresDialect.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLStore{db: db, dialect: postgresDialect}, nil
}

// Put inserts or replaces rec. A zero CreatedAt is set to now.
func (s *SQLStore) Put(ctx context.Context, rec models.Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	meta := rec.Meta()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.dialect.upsert,
		meta.ID, string(rec.Category()), meta.Source, string(data), meta.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store record %s/%s: %w", rec.Category(), meta.ID, err)
	}
	return nil
}

// Get returns a record by category and ID.
func (s *SQLStore) Get(ctx context.Context, category models.Category, id string) (models.Record, error) {
	var data string
	query := fmt.Sprintf("SELECT data FROM records WHERE category = %s AND id = %s", s.dialect.bind(1), s.dialect.bind(2))
	err := s.db.QueryRowContext(ctx, query, string(category), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, category, id)
	}
	if err != nil {
		return nil, err
	}
	return models.DecodeRecord(category, []byte(data))
}

// Delete removes a record by category and ID.
func (s *SQLStore) Delete(ctx context.Context, category models.Category, id string) error {
	query := fmt.Sprintf("DELETE FROM records WHERE category = %s AND id = %s", s.dialect.bind(1), s.dialect.bind(2))
	res, err := s.db.ExecContext(ctx, query, string(category), id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, category, id)
	}
	return nil
}

// DeleteBySource removes every record whose source is source, except keep.
// Stale records are found and deleted in one transaction.
func (s *SQLStore) DeleteBySource(ctx context.Context, source string, keep ...Key) (int64, error) {
	if source == "" {
		return 0, nil
	}
	if len(keep) == 0 {
		query := fmt.Sprintf("DELETE FROM records WHERE source = %s", s.dialect.bind(1))
		res, err := s.db.ExecContext(ctx, query, source)
		if err != nil {
			return 0, fmt.Errorf("failed to delete records by source: %w", err)
		}
		return res.RowsAffected()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stale, err := s.staleKeys(ctx, tx, source, keySet(keep))
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf("DELETE FROM records WHERE category = %s AND id = %s", s.dialect.bind(1), s.dialect.bind(2))
	for _, k := range stale {
		if _, err := tx.ExecContext(ctx, query, string(k.Category), k.ID); err != nil {
			return 0, fmt.Errorf("failed to delete stale record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return int64(len(stale)), nil
}

func (s *SQLStore) staleKeys(ctx context.Context, tx *sql.Tx, source string, keep map[Key]bool) ([]Key, error) {
	query := fmt.Sprintf("SELECT category, id FROM records WHERE source = %s", s.dialect.bind(1))
	rows, err := tx.QueryContext(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to list records by source: %w", err)
	}
	defer rows.Close()

	var stale []Key
	for rows.Next() {
		var category, id string
		if err := rows.Scan(&category, &id); err != nil {
			return nil, fmt.Errorf("failed to scan record key: %w", err)
		}
		k := Key{Category: models.Category(category), ID: id}
		if !keep[k] {
			stale = append(stale, k)
		}
	}
	return stale, rows.Err()
}

// Select returns up to limit records of category matching any condition, newest first.
func (s *SQLStore) Select(ctx context.Context, category models.Category, conds conditions.List, limit int) ([]models.Record, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	if err := checkConditions(category, conds); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSelectLimit
	}

	args := []any{string(category)}
	preds := make([]string, 0, len(conds))
	for _, c := range conds {
		args = append(args, strings.ToLower(c.Pattern))
		preds = append(preds, s.dialect.contains(c.Field, s.dialect.bind(len(args))))
	}
	args = append(args, limit)
	query := fmt.Sprintf(
		"SELECT data FROM records WHERE category = %s AND (%s) ORDER BY created_at DESC, id ASC LIMIT %s",
		s.dialect.bind(1), strings.Join(preds, " OR "), s.dialect.bind(len(args)),
	)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s records: %w", category, err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		rec, err := models.DecodeRecord(category, []byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of records in category.
func (s *SQLStore) Count(ctx context.Context, category models.Category) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM records WHERE category = %s", s.dialect.bind(1))
	err := s.db.QueryRowContext(ctx, query, string(category)).Scan(&n)
	return n, err
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
