// Package observability provides hooks for metrics, tracing, and logging.
//
// Library packages emit events through the hooks registered here instead of
// depending on a metrics backend. The defaults do nothing; main registers
// real implementations (see the prometheus subpackage) at startup.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    prometheus.New(reg).Install()
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRouteStart(ctx, device, nodes)
//	// ... route ...
//	observability.Pipeline().OnRouteComplete(ctx, device, duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the routing pipeline stages.
type PipelineHooks interface {
	// Parse events
	OnParseStart(ctx context.Context, source string)
	OnParseComplete(ctx context.Context, source string, qubits, ops int, duration time.Duration, err error)

	// Route events
	OnRouteStart(ctx context.Context, device string, nodes int)
	OnRouteComplete(ctx context.Context, device string, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// =============================================================================
// Routing Hooks
// =============================================================================

// RoutingHooks receives events from inside a routing pass.
type RoutingHooks interface {
	// OnAction records one committed action: a swap, bridge or relabel.
	OnAction(ctx context.Context, method, kind string)

	// OnPassComplete records a finished pass.
	OnPassComplete(ctx context.Context, iterations, swaps, bridges int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response to a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string) {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnRouteStart(context.Context, string, int)                        {}
func (NoopPipelineHooks) OnRouteComplete(context.Context, string, time.Duration, error)    {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopRoutingHooks is a no-op implementation of RoutingHooks.
type NoopRoutingHooks struct{}

func (NoopRoutingHooks) OnAction(context.Context, string, string)                      {}
func (NoopRoutingHooks) OnPassComplete(context.Context, int, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

// slot holds the hooks registered for one category. Loads are lock-free so
// the router can report every action without contention.
type slot[H any] struct {
	def H
	cur atomic.Pointer[H]
}

func newSlot[H any](def H) *slot[H] {
	s := &slot[H]{def: def}
	s.reset()
	return s
}

func (s *slot[H]) load() H   { return *s.cur.Load() }
func (s *slot[H]) store(h H) { s.cur.Store(&h) }
func (s *slot[H]) reset()    { s.store(s.def) }

var (
	pipelineSlot = newSlot[PipelineHooks](NoopPipelineHooks{})
	routingSlot  = newSlot[RoutingHooks](NoopRoutingHooks{})
	cacheSlot    = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot     = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.store(h)
	}
}

// SetRoutingHooks registers routing hooks. nil is ignored.
func SetRoutingHooks(h RoutingHooks) {
	if h != nil {
		routingSlot.store(h)
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.store(h)
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.store(h)
	}
}

// Pipeline, Routing, Cache and HTTP return the registered hooks.
func Pipeline() PipelineHooks { return pipelineSlot.load() }
func Routing() RoutingHooks   { return routingSlot.load() }
func Cache() CacheHooks       { return cacheSlot.load() }
func HTTP() HTTPHooks         { return httpSlot.load() }

// Reset restores the no-op defaults. Tests that install hooks defer it.
func Reset() {
	pipelineSlot.reset()
	routingSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
