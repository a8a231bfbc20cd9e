// Package chunk stores rendered fragments of one dump outside the process
// heap and reinjects them at final assembly.
//
// A [Store] writes each fragment once to a [cache.Cache] backend and hands
// back a short handle of the form "@@@token:id@@@". The renderer keeps only
// handles while the tree is assembled; [Store.Resolve] replaces every handle
// by its content, recursively, when the dump completes.
//
// When chunking is disabled, or the backend fails, the store degrades to
// pass-through: Put returns the content itself and nothing leaves memory.
// The failure is logged once per store, never returned to the caller.
package chunk

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/spyglass/pkg/cache"
	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/observability"
)

const (
	handleOpen  = "@@@"
	handleClose = "@@@"

	// hookKey labels chunk traffic in cache observability hooks.
	hookKey = "chunk"
)

// Store is the chunk store of one dump. It is not safe for concurrent use.
type Store struct {
	ctx     context.Context
	backend cache.Cache
	keyer   cache.Keyer
	logger  *log.Logger

	dumpID  string
	token   string
	seen    map[string]bool
	written map[string]string // chunk id -> backend key
	order   []string

	degraded bool
	failed   bool
}

// NewStore creates a store for one dump. A nil or null backend disables
// chunking. If keyer is nil, a DefaultKeyer is used; if logger is nil,
// log.Default() is used.
func NewStore(ctx context.Context, backend cache.Cache, keyer cache.Keyer, logger *log.Logger) *Store {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	id := uuid.NewString()
	s := &Store{
		ctx:     ctx,
		backend: backend,
		keyer:   keyer,
		logger:  logger,
		dumpID:  id,
		token:   cache.ShortHash([]byte(id), 8),
		seen:    make(map[string]bool),
		written: make(map[string]string),
	}
	if backend == nil || cache.IsNull(backend) {
		s.degraded = true
	}
	return s
}

// DumpID returns the per-dump id scoping backend keys.
func (s *Store) DumpID() string { return s.dumpID }

// Enabled reports whether fragments currently leave memory.
func (s *Store) Enabled() bool { return !s.degraded }

// Failed reports whether the backend failed during the dump and the store
// fell back to pass-through.
func (s *Store) Failed() bool { return s.failed }

// Len returns the number of chunks written to the backend.
func (s *Store) Len() int { return len(s.order) }

// Put stores content under id and returns the fragment to keep in its place:
// a handle, or the content itself when the store runs in pass-through mode.
// Ids are write-once; a second Put for the same id fails with
// CHUNK_EXISTS and stores nothing.
func (s *Store) Put(id, content string) (string, error) {
	if s.seen[id] {
		return "", errors.New(errors.ErrCodeChunkExists, "chunk %s already stored", id)
	}
	s.seen[id] = true
	if s.degraded {
		return content, nil
	}

	key := s.keyer.ChunkKey(s.dumpID, id)
	err := cache.RetryWithBackoff(s.ctx, func() error {
		return s.backend.Set(s.ctx, key, []byte(content), cache.TTLChunk)
	})
	if err != nil {
		s.degrade(err)
		return content, nil
	}
	observability.Cache().OnCacheSet(s.ctx, hookKey, len(content))
	s.written[id] = key
	s.order = append(s.order, id)
	return s.Handle(id), nil
}

// Handle returns the handle text for id.
func (s *Store) Handle(id string) string {
	return handleOpen + s.token + ":" + id + handleClose
}

// Resolve replaces every handle in frag by its chunk content, resolving
// handles inside chunks as well. Each chunk is expanded exactly once; a
// second occurrence of a handle, or a chunk the backend lost, is replaced
// by a visible marker. Text that only looks like a handle is left alone.
func (s *Store) Resolve(frag string) string {
	if len(s.written) == 0 {
		return frag
	}
	var b strings.Builder
	b.Grow(len(frag))
	s.resolveInto(&b, frag, make(map[string]bool, len(s.written)))
	return b.String()
}

func (s *Store) resolveInto(b *strings.Builder, frag string, done map[string]bool) {
	prefix := handleOpen + s.token + ":"
	for {
		i := strings.Index(frag, prefix)
		if i < 0 {
			b.WriteString(frag)
			return
		}
		rest := frag[i+len(prefix):]
		j := strings.Index(rest, handleClose)
		if j < 0 {
			b.WriteString(frag)
			return
		}
		id := rest[:j]
		key, ok := s.written[id]
		if !ok {
			b.WriteString(frag[:i+len(prefix)])
			frag = rest
			continue
		}
		b.WriteString(frag[:i])
		frag = rest[j+len(handleClose):]

		if done[id] {
			b.WriteString("[chunk " + id + " already resolved]")
			continue
		}
		done[id] = true
		content, err := s.fetch(key)
		if err != nil {
			s.logger.Warn("chunk missing", "id", id, "err", err)
			b.WriteString("[chunk " + id + " missing]")
			continue
		}
		s.resolveInto(b, content, done)
	}
}

func (s *Store) fetch(key string) (string, error) {
	var data []byte
	var found bool
	err := cache.RetryWithBackoff(s.ctx, func() error {
		var err error
		data, found, err = s.backend.Get(s.ctx, key)
		return err
	})
	if err != nil {
		return "", err
	}
	if !found {
		observability.Cache().OnCacheMiss(s.ctx, hookKey)
		return "", errors.New(errors.ErrCodeChunkMissing, "chunk %s not found", key)
	}
	observability.Cache().OnCacheHit(s.ctx, hookKey)
	return string(data), nil
}

// Close deletes the dump's chunks from the backend. Deletion failures are
// logged; entries expire on their own after cache.TTLChunk.
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	var failed int
	for _, id := range s.order {
		if err := s.backend.Delete(s.ctx, s.written[id]); err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.logger.Debug("chunk cleanup incomplete", "dump", s.dumpID, "failed", failed)
	}
	s.order = nil
	clear(s.written)
	return nil
}

func (s *Store) degrade(err error) {
	if s.degraded {
		return
	}
	s.degraded = true
	s.failed = true
	s.logger.Warn("chunk scratch storage unavailable, keeping fragments in memory",
		"err", errors.Wrap(errors.ErrCodeScratchUnavailable, err, "store chunk"))
}
