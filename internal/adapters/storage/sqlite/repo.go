package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/evanschultz/achiever/internal/app"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores whole JSON documents keyed by namespace.
type Repository struct {
	db    *sql.DB
	clock func() time.Time
}

// Open opens the database at path, creating its directory and schema as needed.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a private in-memory database. Each call gets its own named database.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:achiever-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Each pooled connection would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, clock: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the schema.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			body_json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadDocument returns the body stored under key, or app.ErrNotFound.
func (r *Repository) LoadDocument(ctx context.Context, key string) ([]byte, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body_json FROM documents WHERE key = ?`, key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, app.ErrNotFound
		}
		return nil, fmt.Errorf("load document %q: %w", key, err)
	}
	return []byte(body), nil
}

// SaveDocument inserts or replaces the body stored under key.
func (r *Repository) SaveDocument(ctx context.Context, key string, body []byte) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("document key is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents(key, body_json, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			body_json = excluded.body_json,
			updated_at = excluded.updated_at
	`, key, string(body), ts(r.clock()))
	if err != nil {
		return fmt.Errorf("save document %q: %w", key, err)
	}
	return nil
}

// DocumentUpdatedAt returns when key was last written.
func (r *Repository) DocumentUpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM documents WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, app.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("stat document %q: %w", key, err)
	}
	return parseTS(raw), nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
