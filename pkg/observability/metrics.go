package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface the HTTP layer, the renderer and the
// storage decorators write to.
type Recorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordSectionSkipped(kind, sectionType string)
	RecordRender(planKind string, fragments int, duration time.Duration)
	RecordStorageOperation(operation string, err error, duration time.Duration)
}

// Noop discards all metrics.
type Noop struct{}

func (Noop) RecordHTTPRequest(string, string, int, time.Duration)   {}
func (Noop) RecordSectionSkipped(string, string)                    {}
func (Noop) RecordRender(string, int, time.Duration)                {}
func (Noop) RecordStorageOperation(string, error, time.Duration)    {}

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rendering metrics
	SectionsSkipped   *prometheus.CounterVec
	RenderDuration    *prometheus.HistogramVec
	RenderedFragments *prometheus.HistogramVec

	// Storage metrics
	StorageOperations *prometheus.CounterVec
	StorageDuration   *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, so several can
// coexist in one process (tests, CLI).
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		SectionsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sections_skipped_total",
				Help:      "Sections dropped from a render, by diagnostic kind and section type",
			},
			[]string{"kind", "type"},
		),
		RenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Time to resolve and render a page",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"plan"},
		),
		RenderedFragments: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rendered_fragments",
				Help:      "Fragments produced per page render",
				Buckets:   prometheus.LinearBuckets(0, 2, 10),
			},
			[]string{"plan"},
		),
		StorageOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Total number of content storage operations",
			},
			[]string{"operation", "status"},
		),
		StorageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_operation_duration_seconds",
				Help:      "Content storage operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.SectionsSkipped,
		c.RenderDuration,
		c.RenderedFragments,
		c.StorageOperations,
		c.StorageDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the registry all metrics are registered with
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordSectionSkipped(kind, sectionType string) {
	c.SectionsSkipped.WithLabelValues(kind, sectionType).Inc()
}

func (c *Collector) RecordRender(planKind string, fragments int, duration time.Duration) {
	c.RenderDuration.WithLabelValues(planKind).Observe(duration.Seconds())
	c.RenderedFragments.WithLabelValues(planKind).Observe(float64(fragments))
}

func (c *Collector) RecordStorageOperation(operation string, err error, duration time.Duration) {
	c.StorageOperations.WithLabelValues(operation, statusLabel(err)).Inc()
	c.StorageDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
