// Package metrics exposes Prometheus collectors for the HTTP API and the
// analysis pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiranshivaraju/studentpulse/pkg/models"
)

const namespace = "studentpulse"

// Analysis sources and outcomes used as label values.
const (
	SourceAPI     = "api"
	SourceStudent = "student"

	OutcomeOK        = "ok"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Recorder holds every collector. A nil *Recorder records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	analyses         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	skippedRecords   *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses run, by input source and outcome.",
		}, []string{"source", "outcome"}),
		analysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent normalizing and analyzing records.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"source"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_lookups_total",
			Help:      "Analysis cache lookups by result.",
		}, []string{"result"}),
		skippedRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_records_total",
			Help:      "Malformed input rows skipped during normalization, by category.",
		}, []string{"category"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveAnalysis(source, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(source, outcome).Inc()
	r.analysisDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (r *Recorder) CacheLookup(result string) {
	if r == nil {
		return
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) Skipped(records []models.SkippedRecord) {
	if r == nil {
		return
	}
	for _, s := range records {
		r.skippedRecords.WithLabelValues(s.Category).Inc()
	}
}

// Middleware records request counts and latency. Routes are labelled by their
// chi pattern so path parameters do not explode cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r == nil {
			next.ServeHTTP(w, req)
			return
		}
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.httpRequests.WithLabelValues(route, req.Method, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
	})
}
