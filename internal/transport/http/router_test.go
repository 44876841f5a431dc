package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landregistry/internal/platform/metrics"
	"landregistry/pkg/platform/httputil"
	"landregistry/pkg/testutil"
)

type pingModule struct{}

func (pingModule) Register(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"pong": "yes"})
	})
	r.Post("/echo", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func newTestRouter(checks map[string]HealthCheck) (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewRouter(Config{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		AllowedOrigins: []string{"http://localhost:3000"},
		Health:         checks,
		Modules:        []Module{pingModule{}},
	}), reg
}

func TestModulesAreMounted(t *testing.T) {
	router, _ := newTestRouter(nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ping"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestNonJSONBodyIsRejected(t *testing.T) {
	router, _ := newTestRouter(nil)
	req := testutil.NewRequest(t, http.MethodPost, "/echo")
	req.Body = io.NopCloser(strings.NewReader("a=b"))
	req.ContentLength = 3
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusUnsupportedMediaType)
}

func TestHealth(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.Decode[healthResponse](t, rr)
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "ok", body.Checks["postgres"])
	})

	t.Run("failing dependency degrades", func(t *testing.T) {
		router, _ := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		body := testutil.Decode[healthResponse](t, rr)
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "connection refused", body.Checks["redis"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(nil)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ping"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	require.Contains(t, rr.Body.String(), "landregistry_http_request_duration_seconds")
	assert.Contains(t, rr.Body.String(), `route="/ping"`)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(nil)
	req := testutil.NewRequest(t, http.MethodOptions, "/ping")
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := testutil.DoRequest(router, req)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}
