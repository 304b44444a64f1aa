package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-test"))
	r.Delete("/api/v1/cart/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"li_1", "li_2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+id, nil))
	}

	counter := httpRequestsTotal.WithLabelValues("metrics-test", http.MethodDelete, "/api/v1/cart/items/{id}", "204")
	assert.Equal(t, float64(2), testutil.ToFloat64(counter))
}

func TestPrometheusMetrics_DefaultStatusAndUnmatched(t *testing.T) {
	h := PrometheusMetrics("metrics-unmatched")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	counter := httpRequestsTotal.WithLabelValues("metrics-unmatched", http.MethodGet, "unmatched", "200")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}

func TestPrometheusMetrics_InFlightReturnsToZero(t *testing.T) {
	var during float64
	h := PrometheusMetrics("metrics-inflight")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics-inflight"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, float64(1), during)
	assert.Equal(t, float64(0), testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics-inflight")))
}
