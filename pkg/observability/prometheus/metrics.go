// Package prometheus implements the observability hooks with Prometheus
// collectors.
//
//	reg := prometheus.NewRegistry()
//	qprom.New(reg).Install()
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prometheus

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/observability"
)

const namespace = "qroute"

// Metrics collects pipeline, routing, cache and HTTP events.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageTotal    *prometheus.CounterVec

	actions    *prometheus.CounterVec
	passes     prometheus.Counter
	iterations prometheus.Histogram
	swaps      prometheus.Histogram
	bridges    prometheus.Histogram

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		stageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Pipeline stages run, by outcome code.",
		}, []string{"stage", "outcome"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_actions_total",
			Help:      "Actions committed by routing methods.",
		}, []string{"method", "kind"}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routing_passes_total",
			Help:      "Completed routing passes.",
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "routing_iterations",
			Help:      "Router iterations per pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		swaps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "routing_swaps",
			Help:      "SWAP operations inserted per pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		bridges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "routing_bridges",
			Help:      "BRIDGE operations inserted per pass.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.stageDuration, m.stageTotal,
		m.actions, m.passes, m.iterations, m.swaps, m.bridges,
		m.cacheOps, m.cacheBytes,
		m.requests, m.requestDuration,
	)
	return m
}

// Install registers m as every observability hook.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetRoutingHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := qerrors.GetCode(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "error"
}

func (m *Metrics) stage(name string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(name).Observe(d.Seconds())
	m.stageTotal.WithLabelValues(name, outcome(err)).Inc()
}

func (m *Metrics) OnParseStart(context.Context, string) {}

func (m *Metrics) OnParseComplete(_ context.Context, _ string, _, _ int, d time.Duration, err error) {
	m.stage("parse", d, err)
}

func (m *Metrics) OnRouteStart(context.Context, string, int) {}

func (m *Metrics) OnRouteComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.stage("route", d, err)
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.stage("render", d, err)
}

func (m *Metrics) OnAction(_ context.Context, method, kind string) {
	m.actions.WithLabelValues(method, kind).Inc()
}

func (m *Metrics) OnPassComplete(_ context.Context, iterations, swaps, bridges int, _ time.Duration) {
	m.passes.Inc()
	m.iterations.Observe(float64(iterations))
	m.swaps.Observe(float64(swaps))
	m.bridges.Observe(float64(bridges))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.RoutingHooks  = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
