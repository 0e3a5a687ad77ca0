package store

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"feedtrans/internal/logger"
)

// ContentCache maps the MD5 of a chunk's exact text to its translation. It
// holds the chunks of the entry currently being translated so an interrupted
// run can resume without paying for them again.
type ContentCache struct {
	path    string
	mu      sync.Mutex
	entries map[string]string
}

// NewContentCache loads the cache persisted at path. A missing or corrupt
// file yields an empty cache.
func NewContentCache(path string) *ContentCache {
	c := &ContentCache{path: path, entries: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("content cache not found", "module", "store", "action", "load", "resource", "content_cache", "result", "skipped", "path", path)
		} else {
			logger.Warn("content cache read failed", "module", "store", "action", "load", "resource", "content_cache", "result", "failed", "path", path, "error", err)
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil || c.entries == nil {
		logger.Warn("content cache corrupt", "module", "store", "action", "load", "resource", "content_cache", "result", "failed", "path", path, "error", err)
		c.entries = map[string]string{}
		return c
	}
	logger.Debug("content cache loaded", "module", "store", "action", "load", "resource", "content_cache", "result", "ok", "path", path, "count", len(c.entries))
	return c
}

// HashKey returns the cache key for text.
func HashKey(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *ContentCache) Lookup(text string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[HashKey(text)]
	return v, ok
}

// Store records the translation of text and persists the whole cache before
// returning.
func (c *ContentCache) Store(text, translated string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[HashKey(text)] = translated
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode content cache: %w", err)
	}
	if err := WriteFile(c.path, data); err != nil {
		return fmt.Errorf("save content cache: %w", err)
	}
	return nil
}

// Clear drops every record and removes the persisted file.
func (c *ContentCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string]string{}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove content cache: %w", err)
	}
	return nil
}

func (c *ContentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
