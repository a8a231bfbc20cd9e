package cache

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FileCache stores chunks as files in a scratch directory.
// Each file starts with a header line holding the expiry as Unix seconds
// (0 for none), followed by the raw chunk bytes.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache in the given directory.
// The directory is created if it doesn't exist and must be writable.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("scratch dir not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	_ = os.Remove(name)
	return &FileCache{dir: dir}, nil
}

// Dir returns the scratch directory.
func (c *FileCache) Dir() string {
	return c.dir
}

// Get retrieves a value from the cache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	expires, data, ok := splitEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value in the cache. The file is written to a temporary name
// and renamed so readers never observe a partial chunk.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = time.Now().Add(ttl).Unix()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	w := bufio.NewWriter(tmp)
	w.WriteString(strconv.FormatInt(expires, 10))
	w.WriteByte('\n')
	w.Write(data)
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Purge removes every entry, expired or not, and returns how many files
// were deleted. Empty shard directories are removed as well.
func (c *FileCache) Purge(ctx context.Context) (int, error) {
	count := 0
	err := filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || path == c.dir {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			if os.Remove(path) == nil {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	entries, _ := os.ReadDir(c.dir)
	for _, e := range entries {
		if e.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return count, nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// path converts a cache key to a file path, sharded by the first two hash
// characters to keep directories small.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".chunk")
}

func splitEntry(raw []byte) (time.Time, []byte, bool) {
	i := bytes.IndexByte(raw, '\n')
	if i < 0 {
		return time.Time{}, nil, false
	}
	secs, err := strconv.ParseInt(string(raw[:i]), 10, 64)
	if err != nil {
		return time.Time{}, nil, false
	}
	var expires time.Time
	if secs > 0 {
		expires = time.Unix(secs, 0)
	}
	return expires, raw[i+1:], true
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
