package chunk

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/spyglass/pkg/cache"
	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/errors"
)

// DefaultDir returns the default scratch directory of the file backend,
// "$XDG_CACHE_HOME/spyglass/chunks" or its platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeScratchUnavailable, err, "locate user cache directory")
	}
	return filepath.Join(base, "spyglass", "chunks"), nil
}

// OpenBackend opens the scratch storage described by cfg. Disabled chunking
// and the "none" backend yield a [cache.NullCache], which makes stores
// pass-through. Connection failures are returned as SCRATCH_UNAVAILABLE;
// callers that prefer to degrade can fall back to a null cache themselves.
func OpenBackend(ctx context.Context, cfg config.Chunks) (cache.Cache, error) {
	if !cfg.Enabled {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case "", config.BackendMemory:
		return cache.NewMemoryCache(), nil
	case config.BackendFile:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		c, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeScratchUnavailable, err, "open file backend")
		}
		return c, nil
	case config.BackendRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeScratchUnavailable, err, "open redis backend")
		}
		return c, nil
	case config.BackendMongo:
		c, err := cache.NewMongoCache(ctx, cache.MongoConfig{URI: cfg.MongoURI})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeScratchUnavailable, err, "open mongo backend")
		}
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown chunk backend %q", cfg.Backend)
}
