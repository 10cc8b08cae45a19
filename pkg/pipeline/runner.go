package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/qroute/pkg/cache"
	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/router"
	"github.com/matzehuels/qroute/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage entry lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// routeRecord is the cached form of a routed result. The circuit is stored
// as QASM and re-parsed on a hit.
type routeRecord struct {
	QASM   string        `json:"qasm"`
	Result router.Result `json:"result"`
}

// Execute runs the complete parse → route → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID)

	// Stage 1: Parse
	parseStart := time.Now()
	d, t, err := LoadDevice(opts)
	if err != nil {
		return nil, fmt.Errorf("device: %w", err)
	}
	c, err := Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Device, result.Topology, result.Circuit = d, t, c
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Qubits = c.NumQubits()
	result.Stats.Ops = len(c.Ops)
	result.Stats.Nodes = t.NodeCount()
	result.Stats.Edges = t.EdgeCount()

	logger.Info("parsed circuit",
		"device", d.Name,
		"qubits", result.Stats.Qubits,
		"ops", result.Stats.Ops,
		"nodes", result.Stats.Nodes,
		"duration", result.Stats.ParseTime)

	// Stage 2: Route
	routeStart := time.Now()
	res, routeKey, routeHit, err := r.RouteWithCacheInfo(ctx, c, d, t, opts)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	result.Route = res
	result.Stats.RouteTime = time.Since(routeStart)
	result.CacheInfo.RouteHit = routeHit

	logger.Info("routed circuit",
		"swaps", res.Stats.Swaps,
		"bridges", res.Stats.Bridges,
		"iterations", res.Stats.Iterations,
		"cached", routeHit,
		"duration", result.Stats.RouteTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, t, d.Name, routeKey, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RouteWithCacheInfo routes c with caching. It returns the route cache key,
// which scopes the artifact keys, and whether the result came from cache.
func (r *Runner) RouteWithCacheInfo(ctx context.Context, c *circuit.Circuit, d *device.Device, t *topology.Topology, opts Options) (*router.Result, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRoute(); err != nil {
		return nil, "", false, err
	}

	deviceHash, err := cache.HashJSON(d)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash device: %w", err)
	}
	key := r.Keyer.RouteKey(cache.Hash([]byte(c.QASM())), deviceHash, opts.RouteKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if res, ok := r.cachedRoute(ctx, key); ok {
			return res, key, true, nil
		}
	}

	res, err := Route(ctx, c, t, d.Name, opts)
	if err != nil {
		return nil, "", false, err
	}

	if res.Circuit != nil {
		data, err := json.Marshal(routeRecord{QASM: res.Circuit.QASM(), Result: *res})
		if err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLRoute)); err != nil {
				r.Logger.Warn("cache write failed", "key", key, "err", err)
			}
		}
	}
	return res, key, false, nil
}

// cachedRoute loads a routed result. Entries that fail to decode count as
// misses and are recomputed.
func (r *Runner) cachedRoute(ctx context.Context, key string) (*router.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	var rec routeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.Logger.Debug("discarding cached route", "key", key, "err", err)
		return nil, false
	}
	routed, err := circuit.ParseQASM(rec.QASM)
	if err != nil {
		r.Logger.Debug("discarding cached route", "key", key, "err", err)
		return nil, false
	}
	res := rec.Result
	res.Circuit = routed
	return &res, true
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every artifact came from cache. routeKey scopes the artifact keys; an
// empty routeKey disables artifact caching.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *router.Result, t *topology.Topology, deviceName, routeKey string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	if routeKey != "" {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(routeKey, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := RenderArtifacts(ctx, res, t, deviceName, opts)
	if err != nil {
		return nil, false, err
	}

	if routeKey != "" {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(routeKey, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
