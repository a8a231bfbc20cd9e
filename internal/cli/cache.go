package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spyglass/pkg/cache"
	"github.com/matzehuels/spyglass/pkg/errors"
)

// chunkDir returns the scratch directory of the file chunk backend: the
// configured one, or the default below the cache directory.
func (c *CLI) chunkDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Chunks.Dir != "" {
		return cfg.Chunks.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeScratchUnavailable, err, "get cache dir")
	}
	return filepath.Join(dir, chunkSubdir), nil
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the chunk scratch directory",
		Long: `Dumps using the file chunk backend write rendered fragments to a scratch
directory and delete them when the dump completes. Interrupted dumps can
leave chunks behind; "cache clear" removes them.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove leftover chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.chunkDir()
			if err != nil {
				return err
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			count, err := fc.Purge(cmd.Context())
			if err != nil {
				return err
			}

			printSuccess("Cleared %d chunks", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the chunk scratch directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.chunkDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
