// Package config holds the settings the dump engine reads and loads them from
// TOML files.
//
// A configuration file looks like:
//
//	[limits]
//	max_depth = 10
//	timeout = "5s"
//	max_memory_mb = 256
//	min_headroom_mb = 64
//
//	[codegen]
//	enabled = true
//	max_param_chars = 60
//
//	[chunks]
//	enabled = true
//	backend = "file"
//
//	[analysis]
//	getters = false
//	methods = true
//
// Missing keys keep their [Default] values; unknown keys are rejected.
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spyglass/pkg/errors"
)

// Chunk backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the accepted chunk backend names.
var Backends = []string{BackendNone, BackendMemory, BackendFile, BackendRedis, BackendMongo}

// Config is the complete engine configuration.
type Config struct {
	Limits   Limits   `toml:"limits"`
	Codegen  Codegen  `toml:"codegen"`
	Chunks   Chunks   `toml:"chunks"`
	Analysis Analysis `toml:"analysis"`
}

// Limits configures the resource governor.
type Limits struct {
	// MaxDepth is the composite nesting ceiling below the root. Negative
	// leaves only the governor's hard ceiling in force.
	MaxDepth int `toml:"max_depth"`

	// Timeout bounds the wall-clock time of one dump. Zero disables it.
	Timeout Duration `toml:"timeout"`

	// MaxMemoryMB bounds heap growth during one dump. Zero disables it.
	MaxMemoryMB int `toml:"max_memory_mb"`

	// MinHeadroomMB is the free memory floor. Zero disables it.
	MinHeadroomMB int `toml:"min_headroom_mb"`
}

// Codegen configures the code generator.
type Codegen struct {
	Enabled       bool `toml:"enabled"`
	MaxParamChars int  `toml:"max_param_chars"`
}

// Chunks configures the chunk store.
type Chunks struct {
	Enabled   bool   `toml:"enabled"`
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	MongoURI  string `toml:"mongo_uri"`
}

// Analysis configures what analyzers enumerate.
type Analysis struct {
	// Getters calls exported zero-argument Get*/Is*/Has* methods.
	Getters bool `toml:"getters"`

	// Methods lists the exported method set of objects.
	Methods bool `toml:"methods"`

	// Unexported includes unexported struct fields.
	Unexported bool `toml:"unexported"`

	// MaxChildren caps the entries shown per container. Zero means no cap.
	MaxChildren int `toml:"max_children"`

	// MaxStringLen truncates displayed strings. Zero means no truncation.
	MaxStringLen int `toml:"max_string_len"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Limits: Limits{
			MaxDepth:      10,
			Timeout:       Duration{5 * time.Second},
			MaxMemoryMB:   256,
			MinHeadroomMB: 32,
		},
		Codegen: Codegen{
			Enabled:       true,
			MaxParamChars: 60,
		},
		Chunks: Chunks{
			Enabled: true,
			Backend: BackendMemory,
		},
		Analysis: Analysis{
			Methods:      true,
			Unexported:   true,
			MaxChildren:  1000,
			MaxStringLen: 2000,
		},
	}
}

// Load reads a TOML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r on top of Default and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Limits.Timeout.Duration < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "limits.timeout must not be negative")
	case c.Limits.MaxMemoryMB < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "limits.max_memory_mb must not be negative")
	case c.Limits.MinHeadroomMB < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "limits.min_headroom_mb must not be negative")
	case c.Codegen.MaxParamChars < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "codegen.max_param_chars must not be negative")
	case c.Analysis.MaxChildren < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "analysis.max_children must not be negative")
	case c.Analysis.MaxStringLen < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "analysis.max_string_len must not be negative")
	}
	if c.Chunks.Backend != "" && !slices.Contains(Backends, c.Chunks.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "chunks.backend %q is not one of %v", c.Chunks.Backend, Backends)
	}
	if c.Chunks.Backend == BackendRedis && c.Chunks.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "chunks.redis_addr is required for the redis backend")
	}
	if c.Chunks.Backend == BackendMongo && c.Chunks.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "chunks.mongo_uri is required for the mongo backend")
	}
	return nil
}

// MaxMemory returns the heap growth budget in bytes.
func (l Limits) MaxMemory() uint64 {
	return uint64(l.MaxMemoryMB) << 20
}

// MinHeadroom returns the free memory floor in bytes.
func (l Limits) MinHeadroom() uint64 {
	return uint64(l.MinHeadroomMB) << 20
}

// DefaultPath returns $XDG_CONFIG_HOME/spyglass/config.toml, falling back to
// ~/.config/spyglass/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "spyglass", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "spyglass", "config.toml"), nil
}
