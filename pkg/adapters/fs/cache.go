package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// indexVersion is bumped whenever indexEntry changes shape. Files written by
// another version are discarded and rebuilt by the next List.
const indexVersion = 2

// indexEntry is the cached frontmatter of one record file.
type indexEntry struct {
	ID           string         `json:"id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	LastModified time.Time      `json:"lastModified"`
}

// indexFile is the on-disk layout of {systemDir}/index.json.
type indexFile struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // keyed by slash separated relative path
}

// cache keeps record frontmatter so unchanged files load as skinny records
// without being parsed.
type cache struct {
	Path string

	mu      sync.RWMutex
	entries map[string]*indexEntry
	dirty   bool
}

func newCache(vaultPath, systemDir string) *cache {
	return &cache{
		Path:    filepath.Join(vaultPath, systemDir, "index.json"),
		entries: make(map[string]*indexEntry),
	}
}

// Load reads the index. A missing, corrupted or outdated file leaves the cache empty.
func (c *cache) Load() error {
	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil || f.Version != indexVersion || f.Entries == nil {
		f.Entries = make(map[string]*indexEntry)
	}

	c.mu.Lock()
	c.entries = f.Entries
	c.dirty = false
	c.mu.Unlock()
	return nil
}

// Save writes the index when it changed since the last Load or Save.
func (c *cache) Save() error {
	c.mu.RLock()
	if !c.dirty {
		c.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(indexFile{Version: indexVersion, Entries: c.entries}, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0755); err != nil {
		return err
	}
	if err := writeFileAtomic(c.Path, data, 0644); err != nil {
		return err
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}

// Get returns the entry for relPath if it was indexed at modTime.
func (c *cache) Get(relPath string, modTime time.Time) (*indexEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[relPath]
	if !ok || !entry.LastModified.Equal(modTime) {
		return nil, false
	}
	return entry, true
}

func (c *cache) Set(relPath string, entry *indexEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[relPath] = entry
	c.dirty = true
}

// Prune drops entries whose files were not seen by the last walk.
func (c *cache) Prune(seen map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path := range c.entries {
		if !seen[path] {
			delete(c.entries, path)
			c.dirty = true
		}
	}
}

func (c *cache) Delete(relPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[relPath]; ok {
		delete(c.entries, relPath)
		c.dirty = true
	}
}

func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
