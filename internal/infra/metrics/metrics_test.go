package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordCompute("monthly", "ok", false)
	m.RecordCompute("monthly", "ok", false)
	m.RecordCompute("weekly", "invalid", false)
	m.RecordHolidayLookup("hit")
	m.SetDaysUntilPayday("salary", 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.computations.WithLabelValues("monthly", "ok", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.holidayLookups.WithLabelValues("hit")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.daysUntilPayday.WithLabelValues("salary")))

	m.ForgetProfile("salary")
	assert.Equal(t, 0, testutil.CollectAndCount(m.daysUntilPayday))
}

func TestHandlerAndMiddleware(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/payday/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/payday/7", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	for _, path := range []string{"/wp-login.php", "/.env", "/admin/config.php"} {
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `isitpayday_http_request_duration_seconds_count{method="GET",route="/api/payday/{id}",status="404"} 1`)
	assert.Contains(t, string(body), `isitpayday_http_request_duration_seconds_count{method="GET",route="unmatched",status="404"} 3`)
	assert.NotContains(t, string(body), "wp-login")
}
