package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if !IsNull(c) || !IsNull(nil) {
		t.Error("IsNull should recognize NullCache and nil")
	}
	if IsNull(NewMemoryCache()) {
		t.Error("IsNull(MemoryCache) = true")
	}
}

// exercise runs the behavior every backend must share.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("fragment"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v", hit, err)
	}
	if string(data) != "fragment" {
		t.Errorf("Get(k) = %q, want fragment", data)
	}

	if err := c.Set(ctx, "empty", nil, 0); err != nil {
		t.Fatalf("Set(empty) error: %v", err)
	}
	if data, hit, _ := c.Get(ctx, "empty"); !hit || len(data) != 0 {
		t.Errorf("Get(empty) = %q, hit %v", data, hit)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	exercise(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	// Write an entry that expired in the past.
	path := c.path("old")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("1\nstale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	// Corrupt entries are treated as misses.
	if err := os.WriteFile(c.path("bad"), []byte("no header"), 0o644); err == nil {
		if _, hit, _ := c.Get(ctx, "bad"); hit {
			t.Error("corrupt entry should miss")
		}
	}
}

func TestFileCachePurge(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 3 {
		t.Errorf("Purge() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("scratch dir should be empty, has %d entries", len(entries))
	}
}

func TestFileCacheUnwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileCache(filepath.Join(file, "sub")); err == nil {
		t.Error("NewFileCache under a regular file should fail")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	exercise(t, c)

	ctx := context.Background()
	buf := []byte("abc")
	_ = c.Set(ctx, "copy", buf, 0)
	buf[0] = 'x'
	if data, _, _ := c.Get(ctx, "copy"); string(data) != "abc" {
		t.Errorf("MemoryCache should copy on Set, got %q", data)
	}

	c.Close()
	if err := c.Set(ctx, "k", nil, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("SPYGLASS_REDIS_ADDR")
	if addr == "" {
		t.Skip("SPYGLASS_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("SPYGLASS_MONGO_URI")
	if uri == "" {
		t.Skip("SPYGLASS_MONGO_URI not set")
	}
	c, err := NewMongoCache(context.Background(), MongoConfig{URI: uri, Collection: "chunks_test"})
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
	if got := ShortHash([]byte("hello"), 12); got != h1[:12] {
		t.Errorf("ShortHash = %q, want %q", got, h1[:12])
	}
	if got := ShortHash([]byte("hello"), 0); got != h1 {
		t.Error("ShortHash(0) should return the full hash")
	}
}

func TestKeyers(t *testing.T) {
	k := NewDefaultKeyer()
	if got := k.ChunkKey("d1", "k9.3"); got != "chunk:d1:k9.3" {
		t.Errorf("ChunkKey = %q", got)
	}

	scoped := NewScopedKeyer(nil, "host:web-1:")
	if got := scoped.ChunkKey("d1", "c"); got != "host:web-1:chunk:d1:c" {
		t.Errorf("scoped ChunkKey = %q", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound || calls != 1 {
		t.Errorf("non-retryable: err %v after %d calls", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err %v after %d calls", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
