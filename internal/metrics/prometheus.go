package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the idioViet service
type Metrics struct {
	registry *prometheus.Registry

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// TTS metrics
	TTSUpstreamRequests *prometheus.CounterVec
	TTSUpstreamDuration prometheus.Histogram
	TTSCacheHits        prometheus.Counter
	TTSCacheMisses      prometheus.Counter
	TTSCacheEntries     prometheus.Gauge
	TTSCircuitOpen      prometheus.Counter

	// Recording metrics
	RecordingsSaved  *prometheus.CounterVec
	ActiveRecordings prometheus.Gauge
	RecordingSize    prometheus.Histogram
}

// NewMetrics creates all metrics on a dedicated registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idioviet_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idioviet_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),

		TTSUpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idioviet_tts_upstream_requests_total",
			Help: "Total number of upstream TTS requests by outcome",
		}, []string{"outcome"}),
		TTSUpstreamDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "idioviet_tts_upstream_duration_seconds",
			Help:    "Duration of upstream TTS requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		TTSCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "idioviet_tts_cache_hits_total",
			Help: "Total number of TTS cache hits",
		}),
		TTSCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "idioviet_tts_cache_misses_total",
			Help: "Total number of TTS cache misses",
		}),
		TTSCacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "idioviet_tts_cache_entries",
			Help: "Current number of cached TTS clips",
		}),
		TTSCircuitOpen: f.NewCounter(prometheus.CounterOpts{
			Name: "idioviet_tts_circuit_open_total",
			Help: "Total number of TTS requests rejected by the open circuit",
		}),

		RecordingsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "idioviet_recordings_saved_total",
			Help: "Total number of stored pronunciation attempts",
		}, []string{"source"}),
		ActiveRecordings: f.NewGauge(prometheus.GaugeOpts{
			Name: "idioviet_active_recordings",
			Help: "Current number of open recording sessions",
		}),
		RecordingSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "idioviet_recording_size_bytes",
			Help:    "Size of stored pronunciation attempts",
			Buckets: prometheus.ExponentialBuckets(4096, 4, 8),
		}),
	}
}

// Registry returns the registry all metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a served HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTTSUpstream records an upstream TTS call outcome
func (m *Metrics) RecordTTSUpstream(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.TTSUpstreamRequests.WithLabelValues(outcome).Inc()
	m.TTSUpstreamDuration.Observe(duration.Seconds())
}

// RecordTTSCacheHit increments the cache hit counter
func (m *Metrics) RecordTTSCacheHit() {
	if m == nil {
		return
	}
	m.TTSCacheHits.Inc()
}

// RecordTTSCacheMiss increments the cache miss counter
func (m *Metrics) RecordTTSCacheMiss() {
	if m == nil {
		return
	}
	m.TTSCacheMisses.Inc()
}

// SetTTSCacheEntries sets the current cache size
func (m *Metrics) SetTTSCacheEntries(n int) {
	if m == nil {
		return
	}
	m.TTSCacheEntries.Set(float64(n))
}

// RecordTTSCircuitOpen increments the rejected-by-breaker counter
func (m *Metrics) RecordTTSCircuitOpen() {
	if m == nil {
		return
	}
	m.TTSCircuitOpen.Inc()
}

// RecordRecordingSaved records a stored attempt from the given source (web, telegram)
func (m *Metrics) RecordRecordingSaved(source string, size int) {
	if m == nil {
		return
	}
	m.RecordingsSaved.WithLabelValues(source).Inc()
	m.RecordingSize.Observe(float64(size))
}

// SetActiveRecordings sets the current number of open recording sessions
func (m *Metrics) SetActiveRecordings(n int) {
	if m == nil {
		return
	}
	m.ActiveRecordings.Set(float64(n))
}
