package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.BracketCreated("swiss")
	m.BracketCreated("swiss")
	m.RoundCreated("single_elimination", 2)
	m.RoundCreated("single_elimination", 0)
	m.MatchCompleted("gauntlet")
	m.DocumentSaved("sqlite", nil)
	m.DocumentSaved("remote", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BracketsCreated.WithLabelValues("swiss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoundsCreated.WithLabelValues("single_elimination")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MatchesCompleted.WithLabelValues("gauntlet")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentSaves.WithLabelValues("sqlite", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentSaves.WithLabelValues("remote", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BracketCreated("swiss")
		m.RoundCreated("swiss", 1)
		m.MatchCompleted("swiss")
		m.DocumentSaved("sqlite", nil)
	})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(h))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/brackets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brackets/abc", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration, "bracket_http_request_duration_seconds"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `route="/brackets/{id}"`), body)
	assert.Contains(t, body, `status="418"`)
}
