package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	BracketsCreated  *prometheus.CounterVec
	RoundsCreated    *prometheus.CounterVec
	MatchesCompleted *prometheus.CounterVec
	DocumentSaves    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		BracketsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket",
			Name:      "brackets_created_total",
			Help:      "Brackets created, by format.",
		}, []string{"format"}),
		RoundsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket",
			Name:      "rounds_created_total",
			Help:      "Rounds appended after initialization, by format.",
		}, []string{"format"}),
		MatchesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket",
			Name:      "matches_completed_total",
			Help:      "Score entries that completed a match, by format.",
		}, []string{"format"}),
		DocumentSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket",
			Name:      "document_saves_total",
			Help:      "Bracket document saves, by target and result.",
		}, []string{"target", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bracket",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.BracketsCreated,
		m.RoundsCreated,
		m.MatchesCompleted,
		m.DocumentSaves,
		m.RequestDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) BracketCreated(format string) {
	if m == nil {
		return
	}
	m.BracketsCreated.WithLabelValues(format).Inc()
}

func (m *Metrics) RoundCreated(format string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RoundsCreated.WithLabelValues(format).Add(float64(n))
}

func (m *Metrics) MatchCompleted(format string) {
	if m == nil {
		return
	}
	m.MatchesCompleted.WithLabelValues(format).Inc()
}

func (m *Metrics) DocumentSaved(target string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DocumentSaves.WithLabelValues(target, result).Inc()
}

// Middleware records request latency labelled by the matched chi route.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
