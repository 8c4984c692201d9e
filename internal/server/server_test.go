package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teaching-load-api/pkg/config"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		Env:       env,
		Port:      0,
		APIPrefix: "/api/v1",
		Lookup:    config.LookupConfig{CacheDriver: config.CacheDriverNone},
		Booking:   config.BookingConfig{RateLimit: 5, RateBurst: 10},
	}
}

func newTestServer(t *testing.T, env string) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srv, err := New(testConfig(env), sqlx.NewDb(db, "sqlmock"), nil)
	require.NoError(t, err)
	return srv, mock
}

func TestRouterHealthAndReady(t *testing.T) {
	srv, mock := newTestServer(t, config.EnvDevelopment)
	mock.ExpectPing()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterRejectsMalformedBooking(t *testing.T) {
	srv, mock := newTestServer(t, config.EnvDevelopment)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(`{"schedules":`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterRejectsIncompleteBookingBeforeStorage(t *testing.T) {
	srv, mock := newTestServer(t, config.EnvDevelopment)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewBufferString(`{"course_code":"CS101","credit_hours":3,"year_level":"1","schedules":[]}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"MISSING_FIELD"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRouterMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, config.EnvDevelopment)

	srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRouterHidesDocsInProduction(t *testing.T) {
	srv, _ := newTestServer(t, config.EnvProduction)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterRejectsMalformedIDsWithoutQuerying(t *testing.T) {
	srv, mock := newTestServer(t, config.EnvDevelopment)

	for _, path := range []string{"/api/v1/bookings/abc", "/api/v1/courses/42"} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, w.Body.String(), `"VALIDATION_ERROR"`, path)
		assert.Contains(t, w.Body.String(), `"field":"id"`, path)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
