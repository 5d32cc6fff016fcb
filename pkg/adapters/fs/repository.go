package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/loamcal/pkg/core"
)

const recordExt = ".md"

// Repository implements core.Repository on a directory of Markdown files.
type Repository struct {
	Path       string
	config     Config
	cache      *cache
	serializer Serializer

	mu            sync.RWMutex
	readOnly      bool
	watcherActive bool
	lastReconcile *time.Time
	listed        int
	skinny        int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	AutoInit     bool
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	SystemDir    string      // e.g. ".loam"
	ErrorHandler func(error) // Receives watcher failures.
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".loam"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Path:       config.Path,
		config:     config,
		cache:      newCache(config.Path, config.SystemDir),
		serializer: NewMarkdownSerializer(),
		readOnly:   config.ReadOnly,
	}
}

// Initialize prepares the vault directory.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.readOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
		return nil
	}
	if !r.config.AutoInit {
		if _, err := os.Stat(r.Path); err != nil {
			return fmt.Errorf("vault path is not available: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(r.Path, 0755); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}
	return nil
}

func (r *Repository) filename(id string) (rel string, full string, err error) {
	p, err := titleToPath(id)
	if err != nil {
		return "", "", err
	}
	rel = p + recordExt
	return rel, filepath.Join(r.Path, filepath.FromSlash(rel)), nil
}

// Save writes a document atomically.
func (r *Repository) Save(ctx context.Context, doc core.Document) error {
	if r.isReadOnly() {
		return core.ErrReadOnly
	}
	rel, full, err := r.filename(doc.ID)
	if err != nil {
		return err
	}

	data, err := r.serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", doc.ID, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := writeFileAtomic(full, data, 0644); err != nil {
		return err
	}

	if info, err := os.Stat(full); err == nil {
		r.cache.Set(rel, &indexEntry{ID: doc.ID, Metadata: stripReserved(doc.Metadata), LastModified: info.ModTime()})
		if err := r.cache.Save(); err != nil {
			r.config.Logger.Warn("failed to save index cache", "error", err)
		}
	}
	r.config.Logger.Debug("document saved", "id", doc.ID, "path", rel)
	return nil
}

// Get reads a full document.
func (r *Repository) Get(ctx context.Context, id string) (core.Document, error) {
	_, full, err := r.filename(id)
	if err != nil {
		return core.Document{}, err
	}
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Document{}, fmt.Errorf("%s: %w", id, core.ErrNotFound)
		}
		return core.Document{}, err
	}
	defer f.Close()

	doc, err := r.serializer.Parse(f)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to parse document %s: %w", id, err)
	}
	doc.ID = id
	return *doc, nil
}

// List walks the vault. Files whose cached index entry is fresh are returned
// as skinny documents; the rest are parsed and indexed.
func (r *Repository) List(ctx context.Context) ([]core.Document, error) {
	if err := r.cache.Load(); err != nil {
		r.config.Logger.Warn("index cache unreadable", "error", err)
	}

	var docs []core.Document
	seen := make(map[string]bool)
	skinny := 0

	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != r.Path && (d.Name() == r.config.SystemDir || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != recordExt || strings.HasPrefix(d.Name(), TempFilePrefix) {
			return nil
		}

		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		id, err := pathToTitle(strings.TrimSuffix(relPath, recordExt))
		if err != nil {
			r.config.Logger.Debug("skipping file with invalid name", "path", relPath, "error", err)
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		seen[relPath] = true

		if entry, hit := r.cache.Get(relPath, info.ModTime()); hit {
			meta := make(core.Metadata, len(entry.Metadata)+1)
			for k, v := range entry.Metadata {
				meta[k] = v
			}
			meta[core.FieldSkinny] = true
			docs = append(docs, core.Document{ID: id, Metadata: meta})
			skinny++
			return nil
		}

		doc, err := r.Get(ctx, id)
		if err != nil {
			r.config.Logger.Debug("skipping unparseable document", "path", relPath, "error", err)
			return nil
		}
		r.cache.Set(relPath, &indexEntry{ID: id, Metadata: stripReserved(doc.Metadata), LastModified: info.ModTime()})
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.cache.Prune(seen)
	if !r.isReadOnly() {
		if err := r.cache.Save(); err != nil {
			r.config.Logger.Warn("failed to save index cache", "error", err)
		}
	}
	r.recordReconcile(len(docs), skinny)
	return docs, nil
}

// Delete removes a document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.isReadOnly() {
		return core.ErrReadOnly
	}
	rel, full, err := r.filename(id)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", id, core.ErrNotFound)
		}
		return fmt.Errorf("failed to remove file: %w", err)
	}
	r.cache.Delete(rel)
	if err := r.cache.Save(); err != nil {
		r.config.Logger.Warn("failed to save index cache", "error", err)
	}
	return nil
}

// resolveID maps an absolute file path inside the vault back to its title.
func (r *Repository) resolveID(path string) (string, error) {
	rel, err := filepath.Rel(r.Path, path)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return "", errors.New("path outside vault")
	}
	if filepath.Ext(rel) != recordExt {
		return "", fmt.Errorf("not a record file: %s", rel)
	}
	return pathToTitle(strings.TrimSuffix(rel, recordExt))
}

func (r *Repository) isReadOnly() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.readOnly
}

func stripReserved(meta core.Metadata) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if k == core.FieldSkinny {
			continue
		}
		out[k] = v
	}
	return out
}
