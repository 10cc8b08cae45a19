package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/qroute/pkg/cache"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
)

// Config is the qroute.toml file shared by the CLI and the server.
//
//	[router]
//	methods = ["lexi_labelling", "lexi_route"]
//	depth = 10
//	bridge_depth = 2
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "72h"
//
//	[render]
//	formats = ["qasm", "svg"]
type Config struct {
	Router RouterConfig `toml:"router"`
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
}

// RouterConfig holds routing defaults. Zero values keep the built-in
// defaults.
type RouterConfig struct {
	Methods       []string `toml:"methods"`
	Depth         int      `toml:"depth"`
	BridgeDepth   *int     `toml:"bridge_depth"`
	MaxAdvance    int      `toml:"max_advance"`
	MaxIterations int      `toml:"max_iterations"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	cache.Config
	TTL string `toml:"ttl"`
	// Scope prefixes every cache key, keeping deployments that share a
	// backend apart.
	Scope string `toml:"scope"`
}

// Keyer returns the cache keyer for the configured scope.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Scope)
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	Formats []string `toml:"formats"`
	Title   string   `toml:"title"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{Cache: CacheConfig{Config: cache.Config{Backend: cache.BackendFile}}}
}

// LoadConfig reads a TOML config file. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, qerrors.New(qerrors.ErrCodeInvalidInput,
			"config %s: unknown keys %s", path, strings.Join(keys, ", ")).WithSubjects(keys...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks methods, formats and the cache TTL.
func (c Config) Validate() error {
	if err := ValidateMethods(c.Router.Methods); err != nil {
		return err
	}
	if err := ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	_, err := c.Cache.Lifetime()
	return err
}

// Lifetime parses TTL. An empty TTL yields zero, meaning the stage
// defaults apply.
func (c CacheConfig) Lifetime() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, qerrors.New(qerrors.ErrCodeInvalidInput, "invalid cache ttl %q", c.TTL)
	}
	return d, nil
}

// Apply fills the unset fields of opts from the config. Values already in
// opts win.
func (c Config) Apply(opts *Options) {
	if len(opts.Methods) == 0 {
		opts.Methods = c.Router.Methods
	}
	if opts.Depth == 0 {
		opts.Depth = c.Router.Depth
	}
	if opts.BridgeDepth == nil && c.Router.BridgeDepth != nil {
		d := *c.Router.BridgeDepth
		opts.BridgeDepth = &d
	}
	if opts.MaxAdvance == 0 {
		opts.MaxAdvance = c.Router.MaxAdvance
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = c.Router.MaxIterations
	}
	if len(opts.Formats) == 0 {
		opts.Formats = c.Render.Formats
	}
	if opts.Title == "" {
		opts.Title = c.Render.Title
	}
}
