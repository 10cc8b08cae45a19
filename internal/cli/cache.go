package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached routes and artifacts",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached route and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ch, err := openCache(cmd.Context(), cfg.Cache, false)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared cache")
			printDetail("%s", describeCache(cfg.Cache.Config))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(describeCache(cfg.Cache.Config))
			return nil
		},
	}
}

// describeCache names the backend location: a directory or a Redis
// address with key prefix.
func describeCache(cfg cache.Config) string {
	switch cfg.Backend {
	case cache.BackendRedis:
		prefix := cfg.Prefix
		if prefix == "" {
			prefix = cache.DefaultRedisPrefix
		}
		return fmt.Sprintf("redis://%s (prefix %s)", cfg.Addr, prefix)
	case cache.BackendFile:
		if cfg.Dir != "" {
			return cfg.Dir
		}
		dir, err := cacheDir()
		if err != nil {
			return "unavailable: " + err.Error()
		}
		return dir
	default:
		return "disabled"
	}
}
