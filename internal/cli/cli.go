// Package cli implements the qroute command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qroute/pkg/buildinfo"
	"github.com/matzehuels/qroute/pkg/cache"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "qroute"

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

	// configPath is the --config flag; empty means built-in defaults.
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
		Use:   "qroute",
		Short: "qroute maps quantum circuits onto device connectivity",
		Long: `qroute routes OpenQASM circuits onto a device's coupling graph by inserting
SWAP and BRIDGE operations, and inspects and renders device topologies.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML config file ([router], [cache], [render])")

	root.AddCommand(c.routeCommand())
	root.AddCommand(c.topologyCommand())
	root.AddCommand(c.deviceCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads --config, or returns the defaults when it is unset.
func (c *CLI) loadConfig() (pipeline.Config, error) {
	if c.configPath == "" {
		return pipeline.DefaultConfig(), nil
	}
	return pipeline.LoadConfig(c.configPath)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg pipeline.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := openCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(ch, cfg.Cache.Keyer(), c.Logger)
	runner.TTL, _ = cfg.Cache.Lifetime() // validated by LoadConfig
	return runner, nil
}

// openCache opens the configured backend. A file backend without a
// directory uses the XDG cache directory.
func openCache(ctx context.Context, cfg pipeline.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := cfg.Config
	if cc.Backend == cache.BackendFile && cc.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		cc.Dir = dir
	}
	return cache.Open(ctx, cc)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/qroute/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// splitList parses a comma-separated flag value. Empty yields nil so the
// pipeline defaults apply.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseAssignments parses repeated key=value flags.
func parseAssignments(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, qerrors.New(qerrors.ErrCodeInvalidInput, "expected key=value, got %q", p)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
