package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveMovementCounts(t *testing.T) {
	m := NewMetrics()
	m.ObserveMovement("DISPATCH")
	m.ObserveMovement("DISPATCH")
	m.ObserveMovement("RECOVERY")

	body := scrape(t, m)
	require.Contains(t, body, `wareline_stock_movements_total{movement_type="DISPATCH"} 2`)
	require.Contains(t, body, `wareline_stock_movements_total{movement_type="RECOVERY"} 1`)
}

func TestMiddlewareRecordsRequests(t *testing.T) {
	m := NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	body := scrape(t, m)
	require.Contains(t, body, `wareline_http_requests_total{code="204",route="/ping"} 1`)
	require.Contains(t, body, `wareline_http_request_duration_seconds_count{route="/ping"} 1`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveMovement("DISPATCH")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
