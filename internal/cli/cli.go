// Package cli implements the spyglass command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spyglass/pkg/buildinfo"
	"github.com/matzehuels/spyglass/pkg/cache"
	"github.com/matzehuels/spyglass/pkg/chunk"
	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "spyglass"

	// chunkSubdir holds file backend chunks below the cache directory.
	chunkSubdir = "chunks"
)

// Output streams. Tests replace them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag. Empty means the default path, which
	// may be absent.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Spyglass dumps Go values as annotated trees",
		Long:         `Spyglass walks arbitrary values, including cyclic ones, and renders them as text, JSON or Graphviz diagrams with a Go access expression for every node.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			hooks := logHooks{logger: c.Logger}
			observability.SetDumpHooks(hooks)
			observability.SetCacheHooks(hooks)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/spyglass/config.toml)")

	root.AddCommand(c.dumpCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the --config file, or the default file when it exists,
// on top of the built-in defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// openBackend opens the chunk backend named in cfg. An unreachable backend
// is logged and replaced by a null cache, which makes dumps assemble in
// memory.
func (c *CLI) openBackend(ctx context.Context, cfg config.Chunks) cache.Cache {
	if cfg.Backend == config.BackendFile && cfg.Dir == "" {
		if dir, err := cacheDir(); err == nil {
			cfg.Dir = filepath.Join(dir, chunkSubdir)
		}
	}
	backend, err := chunk.OpenBackend(ctx, cfg)
	if err != nil {
		c.Logger.Warn("chunk backend unavailable, assembling in memory", "backend", cfg.Backend, "err", err)
		return cache.NewNullCache()
	}
	return backend
}

// newDumper builds a dumper for r over a freshly opened chunk backend. The
// returned function releases the backend.
func (c *CLI) newDumper(ctx context.Context, cfg config.Config, r dump.Renderer) (*dump.Dumper, func(), error) {
	backend := c.openBackend(ctx, cfg.Chunks)
	d, err := dump.New(cfg, r, dump.WithLogger(c.Logger), dump.WithCache(backend))
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return d, func() { backend.Close() }, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spyglass/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
