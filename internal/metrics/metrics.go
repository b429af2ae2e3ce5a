// Package metrics exposes Prometheus instrumentation for the tracking pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for handfusion.
type Metrics struct {
	registry        *prometheus.Registry
	ticksTotal      prometheus.Counter
	tickErrorsTotal *prometheus.CounterVec
	tickDuration    prometheus.Histogram
	handsPresent    *prometheus.GaugeVec
	skinArea        *prometheus.GaugeVec
	objectsTotal    *prometheus.CounterVec
	skinModelLoaded prometheus.Gauge
	requestsTotal   prometheus.Counter
	errorsTotal     prometheus.Counter
}

// New creates and registers Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "handfusion_ticks_total",
			Help: "Total number of sensor ticks processed",
		}),
		tickErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "handfusion_tick_errors_total",
			Help: "Total number of ticks that could not be processed, by stage",
		}, []string{"stage"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "handfusion_tick_duration_seconds",
			Help:    "Time spent processing one tick",
			Buckets: []float64{.001, .0025, .005, .01, .02, .033, .05, .1, .25},
		}),
		handsPresent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "handfusion_hand_present",
			Help: "Whether the hand was tracked in the last tick (1) or not (0)",
		}, []string{"side"}),
		skinArea: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "handfusion_skin_area_pixels",
			Help: "Skin pixels classified in the hand region in the last tick",
		}, []string{"side"}),
		objectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "handfusion_object_ticks_total",
			Help: "Total number of ticks with a held object detected",
		}, []string{"side"}),
		skinModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "handfusion_skin_model_loaded",
			Help: "Whether the skin likelihood table is loaded (1) or classification is disabled (0)",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "handfusion_http_requests_total",
			Help: "Total number of HTTP requests received",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "handfusion_http_errors_total",
			Help: "Total number of HTTP responses with error status (4xx or 5xx)",
		}),
	}

	registry.MustRegister(
		m.ticksTotal,
		m.tickErrorsTotal,
		m.tickDuration,
		m.handsPresent,
		m.skinArea,
		m.objectsTotal,
		m.skinModelLoaded,
		m.requestsTotal,
		m.errorsTotal,
	)

	return m
}

// ObserveTick records one processed tick and how long it took.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.ticksTotal.Inc()
	m.tickDuration.Observe(d.Seconds())
}

// IncTickErrors counts a tick that failed at stage ("read" or "process").
func (m *Metrics) IncTickErrors(stage string) {
	m.tickErrorsTotal.WithLabelValues(stage).Inc()
}

// SetHand records the state of one hand after a tick.
func (m *Metrics) SetHand(side string, present bool, skinArea int, objectFound bool) {
	v := 0.0
	if present {
		v = 1
	}
	m.handsPresent.WithLabelValues(side).Set(v)
	m.skinArea.WithLabelValues(side).Set(float64(skinArea))
	if objectFound {
		m.objectsTotal.WithLabelValues(side).Inc()
	}
}

// SetSkinModelLoaded sets the skin model gauge.
func (m *Metrics) SetSkinModelLoaded(loaded bool) {
	if loaded {
		m.skinModelLoaded.Set(1)
	} else {
		m.skinModelLoaded.Set(0)
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the HTTP error counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
