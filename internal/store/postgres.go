package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS kv_sequences (
	name  TEXT PRIMARY KEY,
	value BIGINT NOT NULL
);`

// PostgresBackend stores each blob as one text row.
type PostgresBackend struct {
	db *sqlx.DB
}

// NewPostgresBackend connects to Postgres and creates the kv tables
func NewPostgresBackend(databaseURL string) (*PostgresBackend, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to create kv schema: %w", err)
	}

	return &PostgresBackend{db: db}, nil
}

// GetDB returns the underlying database connection
func (p *PostgresBackend) GetDB() *sqlx.DB {
	return p.db
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.db.GetContext(ctx, &value, "SELECT value FROM kv_store WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, string(value))
	return err
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = $1", key)
	return err
}

func (p *PostgresBackend) NextID(ctx context.Context, name string, floor int64) (int64, error) {
	var id int64
	err := p.db.GetContext(ctx, &id, `
		INSERT INTO kv_sequences (name, value)
		VALUES ($1, $2 + 1)
		ON CONFLICT (name) DO UPDATE SET value = GREATEST(kv_sequences.value, $2) + 1
		RETURNING value`,
		name, floor)
	return id, err
}

// Close closes the database connection
func (p *PostgresBackend) Close() error {
	return p.db.Close()
}
