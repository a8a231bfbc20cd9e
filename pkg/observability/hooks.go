// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks at
// startup to receive events about dumps and chunk storage.
//
// These hooks are process-wide and observational only. They are distinct from
// the per-dump model hooks in package dump, which may replace nodes and are
// registered on a single Dumper.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDumpHooks(&myDumpHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Dump().OnDumpStart(ctx, dumpID, name)
//	// ... traverse ...
//	observability.Dump().OnDumpComplete(ctx, dumpID, stats)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Dump Hooks
// =============================================================================

// DumpStats summarizes one finished dump.
type DumpStats struct {
	Nodes      int
	Recursions int
	Limits     int
	Failures   int
	Chunks     int
	Duration   time.Duration
}

// DumpHooks receives events from the dump engine.
type DumpHooks interface {
	OnDumpStart(ctx context.Context, dumpID, name string)
	OnDumpComplete(ctx context.Context, dumpID string, stats DumpStats)

	// OnLimitReached records a subtree cut by the resource governor.
	OnLimitReached(ctx context.Context, dumpID, reason string, level int)

	// OnRecursion records a recursion marker.
	OnRecursion(ctx context.Context, dumpID, domID string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from chunk storage.
type CacheHooks interface {
	// OnCacheHit records a chunk read back at assembly time.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a chunk that could not be read back.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a chunk write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDumpHooks is a no-op implementation of DumpHooks.
type NoopDumpHooks struct{}

func (NoopDumpHooks) OnDumpStart(context.Context, string, string)         {}
func (NoopDumpHooks) OnDumpComplete(context.Context, string, DumpStats)   {}
func (NoopDumpHooks) OnLimitReached(context.Context, string, string, int) {}
func (NoopDumpHooks) OnRecursion(context.Context, string, string)         {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	dumpHooks  DumpHooks  = NoopDumpHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetDumpHooks registers custom dump hooks.
// This should be called once at application startup before any dumps run.
func SetDumpHooks(h DumpHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		dumpHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any dumps run.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Dump returns the registered dump hooks.
func Dump() DumpHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return dumpHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	dumpHooks = NoopDumpHooks{}
	cacheHooks = NoopCacheHooks{}
}
