package prometheus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/observability"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.OnRouteComplete(ctx, "ring-8", time.Millisecond, nil)
	m.OnRouteComplete(ctx, "ring-8", time.Millisecond, qerrors.New(qerrors.ErrCodeUnroutable, "full"))
	m.OnParseComplete(ctx, "bell.qasm", 2, 3, time.Millisecond, errors.New("plain"))
	m.OnAction(ctx, "lexi_route", "swap")
	m.OnAction(ctx, "lexi_route", "swap")
	m.OnPassComplete(ctx, 4, 2, 0, time.Millisecond)
	m.OnCacheHit(ctx, "route")
	m.OnCacheSet(ctx, "route", 128)
	m.OnResponse(ctx, "POST", "/v1/route", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageTotal.WithLabelValues("route", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageTotal.WithLabelValues("route", "unroutable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stageTotal.WithLabelValues("parse", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.actions.WithLabelValues("lexi_route", "swap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheOps.WithLabelValues("route", "hit")))
	assert.Equal(t, 128.0, testutil.ToFloat64(m.cacheBytes.WithLabelValues("route")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/v1/route", "200")))
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	m := New(prometheus.NewRegistry())
	m.Install()

	assert.Same(t, m, observability.Routing())
	assert.Same(t, m, observability.Cache())

	observability.Routing().OnAction(context.Background(), "shortest_path", "swap")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.actions.WithLabelValues("shortest_path", "swap")))
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
