package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sangkips/storefront-api/internal/domain/repository"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteMirror keeps cart mirrors in a local SQLite file, one row per session
type SQLiteMirror struct {
	db *sql.DB
}

// OpenSQLiteMirror creates or opens the mirror database at path
func OpenSQLiteMirror(path string) (*SQLiteMirror, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart mirror: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cart mirror: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply cart mirror schema: %w", err)
	}

	return &SQLiteMirror{db: db}, nil
}

func (m *SQLiteMirror) Load(ctx context.Context, session string) ([]byte, error) {
	var payload string
	err := m.db.QueryRowContext(ctx,
		"SELECT payload FROM cart_mirror WHERE name = ?", cacheKey(session)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrMirrorMiss
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load failed: %w", err)
	}
	return []byte(payload), nil
}

func (m *SQLiteMirror) Save(ctx context.Context, session string, payload []byte) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cart_mirror (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		cacheKey(session), string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite save failed: %w", err)
	}
	return nil
}

func (m *SQLiteMirror) Delete(ctx context.Context, session string) error {
	if _, err := m.db.ExecContext(ctx, "DELETE FROM cart_mirror WHERE name = ?", cacheKey(session)); err != nil {
		return fmt.Errorf("sqlite delete failed: %w", err)
	}
	return nil
}

func (m *SQLiteMirror) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
