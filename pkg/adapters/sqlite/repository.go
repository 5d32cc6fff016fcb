// Package sqlite stores records in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/loamcal/pkg/core"
)

// Config holds the configuration for the SQLite repository.
type Config struct {
	// Path is the database file.
	Path     string
	ReadOnly bool
	Logger   *slog.Logger
}

// Repository implements core.Repository on a records table.
type Repository struct {
	config Config

	mu     sync.RWMutex
	db     *sql.DB
	writes int
}

// NewRepository creates a repository. The database is opened by Initialize.
func NewRepository(config Config) *Repository {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{config: config}
}

// Initialize opens the database and applies migrations.
func (r *Repository) Initialize(ctx context.Context) error {
	if strings.TrimSpace(r.config.Path) == "" {
		return errors.New("sqlite path is required")
	}
	if !r.config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(r.config.Path), 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	dsn := filepath.Clean(r.config.Path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if r.config.ReadOnly {
		dsn = "file:" + filepath.Clean(r.config.Path) + "?mode=ro&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping sqlite db: %w", err)
	}
	if !r.config.ReadOnly {
		if err := applyMigrations(ctx, db); err != nil {
			_ = db.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	r.mu.Lock()
	r.db = db
	r.mu.Unlock()
	return nil
}

// Close releases the database.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Repository) conn() (*sql.DB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.db == nil {
		return nil, errors.New("sqlite repository is not initialized")
	}
	return r.db, nil
}

// Save upserts a document.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if doc.ID == "" {
		return core.ErrEmptyTitle
	}
	db, err := r.conn()
	if err != nil {
		return err
	}

	meta := make(core.Metadata, len(doc.Metadata))
	for k, v := range doc.Metadata {
		if k == core.FieldSkinny || k == core.FieldTitle || k == core.FieldText {
			continue
		}
		meta[k] = v
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata of %s: %w", doc.ID, err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO records (id, content, metadata, modified) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    content = excluded.content,
		    metadata = excluded.metadata,
		    modified = excluded.modified`,
		doc.ID, doc.Content, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save record %s: %w", doc.ID, err)
	}
	r.mu.Lock()
	r.writes++
	r.mu.Unlock()
	r.config.Logger.Debug("document saved", "id", doc.ID)
	return nil
}

// Get reads a document.
func (r *Repository) Get(ctx context.Context, id string) (core.Document, error) {
	db, err := r.conn()
	if err != nil {
		return core.Document{}, err
	}
	var content, metadata string
	err = db.QueryRowContext(ctx, `SELECT content, metadata FROM records WHERE id = ?`, id).Scan(&content, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("get record %s: %w", id, err)
	}
	return decode(id, content, metadata)
}

// List returns every document, ordered by title.
func (r *Repository) List(ctx context.Context) ([]core.Document, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, content, metadata FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []core.Document
	for rows.Next() {
		var id, content, metadata string
		if err := rows.Scan(&id, &content, &metadata); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		doc, err := decode(id, content, metadata)
		if err != nil {
			r.config.Logger.Warn("skipping record with invalid metadata", "id", id, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return docs, nil
}

// Delete removes a document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	db, err := r.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	return nil
}

func decode(id, content, metadata string) (core.Document, error) {
	meta := make(core.Metadata)
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &meta); err != nil {
			return core.Document{}, fmt.Errorf("decode metadata of %s: %w", id, err)
		}
	}
	return core.Document{ID: id, Content: content, Metadata: meta}, nil
}

var _ core.Repository = (*Repository)(nil)
