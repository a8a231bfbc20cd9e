package chunk

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spyglass/pkg/cache"
	"github.com/matzehuels/spyglass/pkg/config"
	spyerrors "github.com/matzehuels/spyglass/pkg/errors"
)

func newTestStore(t *testing.T, backend cache.Cache) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return NewStore(context.Background(), backend, nil, logger), &buf
}

func TestPutAndResolveNested(t *testing.T) {
	mem := cache.NewMemoryCache()
	s, _ := newTestStore(t, mem)

	inner, err := s.Put("a.1", "inner")
	if err != nil {
		t.Fatal(err)
	}
	if inner != s.Handle("a.1") {
		t.Errorf("Put returned %q, want handle", inner)
	}
	outer, _ := s.Put("b.2", "outer("+inner+")")
	doc := "root[" + outer + "]"

	if got := s.Resolve(doc); got != "root[outer(inner)]" {
		t.Errorf("Resolve = %q", got)
	}
	if s.Len() != 2 || mem.Len() != 2 {
		t.Errorf("Len = %d, backend = %d", s.Len(), mem.Len())
	}
	if !strings.HasPrefix(inner, "@@@") || !strings.HasSuffix(inner, "@@@") {
		t.Errorf("handle format %q", inner)
	}
}

func TestPutWriteOnce(t *testing.T) {
	for _, backend := range []cache.Cache{cache.NewMemoryCache(), nil} {
		s, _ := newTestStore(t, backend)
		if _, err := s.Put("x", "1"); err != nil {
			t.Fatal(err)
		}
		_, err := s.Put("x", "2")
		if !spyerrors.Is(err, spyerrors.ErrCodeChunkExists) {
			t.Errorf("second Put = %v, want CHUNK_EXISTS", err)
		}
	}
}

func TestResolveEachHandleOnce(t *testing.T) {
	s, _ := newTestStore(t, cache.NewMemoryCache())
	h, _ := s.Put("x", "X")
	got := s.Resolve(h + h)
	if got != "X[chunk x already resolved]" {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveLeavesForeignHandles(t *testing.T) {
	s, _ := newTestStore(t, cache.NewMemoryCache())
	h, _ := s.Put("x", "X")
	spoof := "@@@" + s.token + ":nope@@@ and @@@other:x@@@ "
	if got := s.Resolve(spoof + h); got != spoof+"X" {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveMissingChunk(t *testing.T) {
	mem := cache.NewMemoryCache()
	s, logs := newTestStore(t, mem)
	h, _ := s.Put("gone", "data")
	_ = mem.Delete(context.Background(), s.written["gone"])

	if got := s.Resolve(h); got != "[chunk gone missing]" {
		t.Errorf("Resolve = %q", got)
	}
	if !strings.Contains(logs.String(), "chunk missing") {
		t.Error("missing chunk should be logged")
	}
}

func TestPassThrough(t *testing.T) {
	for name, backend := range map[string]cache.Cache{"nil": nil, "null": cache.NewNullCache()} {
		t.Run(name, func(t *testing.T) {
			s, _ := newTestStore(t, backend)
			if s.Enabled() {
				t.Fatal("store should start in pass-through mode")
			}
			got, err := s.Put("x", "content")
			if err != nil || got != "content" {
				t.Errorf("Put = %q, %v", got, err)
			}
			if s.Resolve(got) != "content" {
				t.Error("Resolve should be the identity")
			}
			if err := s.Close(); err != nil {
				t.Error(err)
			}
		})
	}
}

type brokenCache struct {
	cache.NullCache
	sets int
}

func (b *brokenCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	b.sets++
	return errors.New("disk full")
}

func TestDegradeLogsOnce(t *testing.T) {
	backend := &brokenCache{}
	s, logs := newTestStore(t, backend)
	if !s.Enabled() {
		t.Fatal("store should start enabled")
	}

	for _, id := range []string{"a", "b", "c"} {
		got, err := s.Put(id, "content-"+id)
		if err != nil {
			t.Fatalf("Put(%s) = %v; backend failures must not surface", id, err)
		}
		if got != "content-"+id {
			t.Errorf("Put(%s) = %q, want inline content", id, got)
		}
	}
	if s.Enabled() {
		t.Error("store should have degraded")
	}
	if backend.sets != 1 {
		t.Errorf("backend Set called %d times, want 1", backend.sets)
	}
	if n := strings.Count(logs.String(), "scratch storage unavailable"); n != 1 {
		t.Errorf("degradation logged %d times, want once", n)
	}
}

func TestCloseDeletesChunks(t *testing.T) {
	mem := cache.NewMemoryCache()
	s, _ := newTestStore(t, mem)
	_, _ = s.Put("a", "1")
	_, _ = s.Put("b", "2")

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if mem.Len() != 0 {
		t.Errorf("backend still holds %d entries", mem.Len())
	}
}

func TestKeysScopedPerDump(t *testing.T) {
	mem := cache.NewMemoryCache()
	a, _ := newTestStore(t, mem)
	b, _ := newTestStore(t, mem)
	if a.DumpID() == b.DumpID() {
		t.Fatal("dump ids should be unique")
	}
	ha, _ := a.Put("same", "from a")
	hb, _ := b.Put("same", "from b")
	if a.Resolve(ha) != "from a" || b.Resolve(hb) != "from b" {
		t.Error("stores sharing a backend must not see each other's chunks")
	}
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.Chunks
		null bool
	}{
		{"disabled", config.Chunks{Enabled: false, Backend: config.BackendFile}, true},
		{"none", config.Chunks{Enabled: true, Backend: config.BackendNone}, true},
		{"memory", config.Chunks{Enabled: true, Backend: config.BackendMemory}, false},
		{"file", config.Chunks{Enabled: true, Backend: config.BackendFile, Dir: dir}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := OpenBackend(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("OpenBackend() error: %v", err)
			}
			defer c.Close()
			if got := cache.IsNull(c); got != tt.null {
				t.Errorf("IsNull() = %v, want %v", got, tt.null)
			}
		})
	}
}

func TestOpenBackendErrors(t *testing.T) {
	ctx := context.Background()

	_, err := OpenBackend(ctx, config.Chunks{Enabled: true, Backend: "tape"})
	if !spyerrors.Is(err, spyerrors.ErrCodeInvalidConfig) {
		t.Errorf("unknown backend error = %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = OpenBackend(ctx, config.Chunks{Enabled: true, Backend: config.BackendRedis, RedisAddr: "127.0.0.1:1"})
	if !spyerrors.Is(err, spyerrors.ErrCodeScratchUnavailable) {
		t.Errorf("unreachable redis error = %v", err)
	}
}
