package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache levels used as label values.
const (
	LevelField        = "field"
	LevelList         = "list"
	LevelDetail       = "detail"
	LevelTranslations = "translations"
)

// Result label values.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultError   = "error"
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder owns the Prometheus collectors for the translation cache subsystem.
type Recorder struct {
	registry *prometheus.Registry

	cacheLookups    *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
	providerLatency prometheus.Histogram
	invalidations   *prometheus.CounterVec
	purgedKeys      prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// New builds a Recorder backed by a private registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faq",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by level and result",
		}, []string{"level", "result"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faq",
			Subsystem: "translation",
			Name:      "provider_calls_total",
			Help:      "Translation provider calls by result",
		}, []string{"result"}),
		providerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "faq",
			Subsystem: "translation",
			Name:      "provider_duration_seconds",
			Help:      "Translation provider call latency",
			Buckets:   prometheus.DefBuckets,
		}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faq",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Namespace-wide cache purges by result",
		}, []string{"result"}),
		purgedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "faq",
			Subsystem: "cache",
			Name:      "purged_keys_total",
			Help:      "Keys removed by namespace-wide purges",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "faq",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "faq",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(
		r.cacheLookups,
		r.providerCalls,
		r.providerLatency,
		r.invalidations,
		r.purgedKeys,
		r.httpRequests,
		r.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// CacheLookup records the outcome of a cache read at the given level.
func (r *Recorder) CacheLookup(level, result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(level, result).Inc()
}

// ProviderCall records a translation provider call.
func (r *Recorder) ProviderCall(result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.providerCalls.WithLabelValues(result).Inc()
	r.providerLatency.Observe(elapsed.Seconds())
}

// Invalidation records a namespace-wide purge.
func (r *Recorder) Invalidation(result string, purged int64) {
	if r == nil {
		return
	}
	r.invalidations.WithLabelValues(result).Inc()
	if purged > 0 {
		r.purgedKeys.Add(float64(purged))
	}
}

// HTTPRequest records a served request. Unmatched routes share one label.
func (r *Recorder) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
