package artwork

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	cacheMaxAge   = 30 * 24 * time.Hour // 30 days
	pruneInterval = 24 * time.Hour
)

// Cache provides disk-based caching for resized artwork thumbnails.
type Cache struct {
	dir        string
	maxBytes   int64
	lastPruned time.Time
}

// NewCache creates a disk cache rooted at dir. maxBytes bounds the total
// size kept by Prune; 0 disables the size bound.
func NewCache(dir string, maxBytes int64) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, maxBytes: maxBytes}, nil
}

// cacheKey generates a unique key for a source url at specific dimensions.
func cacheKey(url string, width, height uint) string {
	data := fmt.Sprintf("%s:%d:%d", url, width, height)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

func (c *Cache) path(url string, width, height uint) string {
	return filepath.Join(c.dir, cacheKey(url, width, height)+".png")
}

// Get retrieves cached PNG data for url at specific dimensions.
// Returns nil if not cached.
func (c *Cache) Get(url string, width, height uint) []byte {
	if c == nil {
		return nil
	}

	path := c.path(url, width, height)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	// Touch the file to update mtime (keeps frequently used entries fresh)
	now := time.Now()
	_ = os.Chtimes(path, now, now) //nolint:errcheck // best-effort

	return data
}

// Put stores PNG data for url at specific dimensions.
func (c *Cache) Put(url string, width, height uint, data []byte) error {
	if c == nil {
		return nil
	}
	return os.WriteFile(c.path(url, width, height), data, 0o600)
}

// Prune removes entries older than cacheMaxAge, then the least recently
// used entries until the cache fits maxBytes. It returns the bytes freed
// and the bytes kept. Calls within pruneInterval of the last one are no-ops.
func (c *Cache) Prune(now time.Time) (freed, kept int64) {
	if c == nil {
		return 0, 0
	}

	// Don't prune too frequently
	if !c.lastPruned.IsZero() && now.Sub(c.lastPruned) < pruneInterval {
		return 0, 0
	}
	c.lastPruned = now

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0
	}

	type file struct {
		path  string
		size  int64
		mtime time.Time
	}
	var files []file
	cutoff := now.Add(-cacheMaxAge)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		if info.ModTime().Before(cutoff) {
			if os.Remove(path) == nil {
				freed += info.Size()
			}
			continue
		}
		files = append(files, file{path: path, size: info.Size(), mtime: info.ModTime()})
		kept += info.Size()
	}

	if c.maxBytes <= 0 || kept <= c.maxBytes {
		return freed, kept
	}

	// Oldest first.
	slices.SortFunc(files, func(a, b file) int { return a.mtime.Compare(b.mtime) })
	for _, f := range files {
		if kept <= c.maxBytes {
			break
		}
		if os.Remove(f.path) == nil {
			freed += f.size
			kept -= f.size
		}
	}
	return freed, kept
}
