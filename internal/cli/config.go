package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/errors"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration file",
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configInitCommand())
	return cmd
}

// configShowCommand prints the effective configuration as TOML.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(stdout)
		},
	}
}

func (c *CLI) configFile() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "locate config directory")
	}
	return path, nil
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}
			printKeyValue("Config", path)
			return nil
		},
	}
}

// configInitCommand writes the defaults to the configuration file.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configFile()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidPath, "%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", filepath.Dir(path))
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := config.Default().Encode(f); err != nil {
				return err
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
