// Package metrics holds the console's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the console counters. A nil *Metrics is a valid no-op
// receiver so the rendering core stays usable without instrumentation.
type Metrics struct {
	RendersTotal        *prometheus.CounterVec
	TemplateCacheHits   prometheus.Counter
	TemplateCacheMisses prometheus.Counter
	DiffMarksTotal      *prometheus.CounterVec
	WSMessagesTotal     *prometheus.CounterVec
	RenderDuration      prometheus.Histogram
}

// New creates and registers the console metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowdeck_renders_total",
			Help: "Semantic values rendered, by type tag.",
		}, []string{"type"}),
		TemplateCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowdeck_template_cache_hits_total",
			Help: "Compiled renderer templates served from cache.",
		}),
		TemplateCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowdeck_template_cache_misses_total",
			Help: "Renderer templates compiled on first encounter.",
		}),
		DiffMarksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowdeck_diff_marks_total",
			Help: "Diff annotations applied, by mark.",
		}, []string{"mark"}),
		WSMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowdeck_ws_messages_total",
			Help: "Console WebSocket messages handled, by type.",
		}, []string{"type"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowdeck_render_duration_seconds",
			Help:    "Wall time of a full render dispatch.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.RendersTotal,
		m.TemplateCacheHits,
		m.TemplateCacheMisses,
		m.DiffMarksTotal,
		m.WSMessagesTotal,
		m.RenderDuration,
	)
	return m
}

// IncRender counts one rendered value. Nil-safe.
func (m *Metrics) IncRender(typeName string) {
	if m == nil {
		return
	}
	if typeName == "" {
		typeName = "(untyped)"
	}
	m.RendersTotal.WithLabelValues(typeName).Inc()
}

// CacheHit counts a template cache hit. Nil-safe.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.TemplateCacheHits.Inc()
}

// CacheMiss counts a template compilation. Nil-safe.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.TemplateCacheMisses.Inc()
}

// IncDiffMark counts one applied diff annotation. Nil-safe.
func (m *Metrics) IncDiffMark(mark string) {
	if m == nil {
		return
	}
	m.DiffMarksTotal.WithLabelValues(mark).Inc()
}

// IncWSMessage counts one console channel message. Nil-safe.
func (m *Metrics) IncWSMessage(msgType string) {
	if m == nil {
		return
	}
	m.WSMessagesTotal.WithLabelValues(msgType).Inc()
}

// ObserveRender records the duration of one render dispatch. Nil-safe.
func (m *Metrics) ObserveRender(seconds float64) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(seconds)
}
