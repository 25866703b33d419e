// Package metrics exposes the Prometheus instruments of the catalog API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	readFailures    *prometheus.CounterVec
	uploadedBytes   prometheus.Counter
	orphansRemoved  prometheus.Counter
}

// New registers the collectors on registerer (the default registerer when nil)
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolshelf_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolshelf_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		readFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolshelf_read_failures_total",
				Help: "Reads that failed and were answered with an empty result",
			},
			[]string{"operation"},
		),
		uploadedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "toolshelf_uploaded_bytes_total",
				Help: "Total number of bytes written to the bucket",
			},
		),
		orphansRemoved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "toolshelf_orphan_objects_removed_total",
				Help: "Bucket objects removed by the orphan sweep",
			},
		),
	}
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// IncReadFailure counts a swallowed read failure
func (m *Metrics) IncReadFailure(operation string) {
	if m == nil {
		return
	}
	m.readFailures.WithLabelValues(operation).Inc()
}

// AddUploadedBytes counts bytes stored by an upload
func (m *Metrics) AddUploadedBytes(n int64) {
	if m == nil {
		return
	}
	m.uploadedBytes.Add(float64(n))
}

// AddOrphansRemoved counts objects removed by the sweep
func (m *Metrics) AddOrphansRemoved(n int) {
	if m == nil {
		return
	}
	m.orphansRemoved.Add(float64(n))
}
