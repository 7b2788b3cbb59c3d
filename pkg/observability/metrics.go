package observability

import (
	"net/http"
	"strconv"
	"time"

	"investigation-canvas/application/ports"
	"investigation-canvas/domain/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the editor and its HTTP host
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Editor metrics
	PointerEvents  *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	Saves          *prometheus.CounterVec
	SaveDuration   prometheus.Histogram
	SceneChanges   *prometheus.CounterVec
}

var _ ports.Telemetry = (*Collector)(nil)

// NewCollector creates a collector with its own registry
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
		PointerEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pointer_events_total",
				Help:      "Pointer events dispatched to editor sessions",
			},
			[]string{"kind"},
		),
		RenderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_render_duration_seconds",
				Help:      "Time spent rendering one frame",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
			},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Scene saves by outcome",
			},
			[]string{"status"},
		),
		SaveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "save_duration_seconds",
				Help:      "Scene save duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		SceneChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scene_changes_total",
				Help:      "Scene mutations by domain event type",
			},
			[]string{"event"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.PointerEvents,
		c.RenderDuration,
		c.Saves,
		c.SaveDuration,
		c.SceneChanges,
	)
	return c
}

// Registry returns the registry the metrics are registered with
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// PointerEvent counts one dispatched pointer event
func (c *Collector) PointerEvent(kind string) {
	c.PointerEvents.WithLabelValues(kind).Inc()
}

// FrameRendered records how long a frame took
func (c *Collector) FrameRendered(d time.Duration) {
	c.RenderDuration.Observe(d.Seconds())
}

// SaveCompleted records a save and its outcome
func (c *Collector) SaveCompleted(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.Saves.WithLabelValues(status).Inc()
	c.SaveDuration.Observe(d.Seconds())
}

// DomainEvents counts scene mutations by event type
func (c *Collector) DomainEvents(evs []events.DomainEvent) {
	for _, ev := range evs {
		c.SceneChanges.WithLabelValues(ev.GetEventType()).Inc()
	}
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
