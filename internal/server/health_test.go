package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/gcal-mcp/internal/google"
)

func getHealth(t *testing.T, handler http.Handler, path string, v any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
	return rec.Code
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)
	h.SetReady(false)

	var resp HealthResponse
	assert.Equal(t, http.StatusOK, getHealth(t, h.LivenessHandler(), "/healthz", &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthChecker_Readiness(t *testing.T) {
	isolateCredentials(t)
	sc, err := NewServerContext(t.Context())
	require.NoError(t, err)
	h := NewHealthChecker(sc)
	assert.True(t, h.IsReady())

	var resp HealthResponse
	assert.Equal(t, http.StatusOK, getHealth(t, h.ReadinessHandler(), "/readyz", &resp))
	assert.Equal(t, "ok", resp.Status)

	h.SetReady(false)
	resp = HealthResponse{}
	assert.Equal(t, http.StatusServiceUnavailable, getHealth(t, h.ReadinessHandler(), "/readyz", &resp))
	assert.Equal(t, "not ready", resp.Status)
	assert.Equal(t, "not ready", resp.Checks["ready"])

	h.SetReady(true)
	require.NoError(t, sc.Shutdown())
	resp = HealthResponse{}
	assert.Equal(t, http.StatusServiceUnavailable, getHealth(t, h.ReadinessHandler(), "/readyz", &resp))
	assert.Equal(t, "shutting down", resp.Checks["shutdown"])
}

func TestHealthChecker_Detailed(t *testing.T) {
	tests := []struct {
		name        string
		integration *google.Integration
		want        string
	}{
		{"access token", &google.Integration{AccessToken: "ya29.x", APIKey: "key"}, "access_token"},
		{"api key", &google.Integration{APIKey: "key"}, "api_key"},
		{"per account", nil, "per_account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateCredentials(t)
			sc := newTestServerContext(t, WithIntegration(tt.integration), WithReadOnly(true))
			h := NewHealthChecker(sc)

			var resp DetailedHealthResponse
			assert.Equal(t, http.StatusOK, getHealth(t, h.DetailedHealthHandler(), "/healthz/detailed", &resp))
			assert.Equal(t, "ok", resp.Status)
			assert.Equal(t, tt.want, resp.Credentials)
			assert.True(t, resp.ReadOnly)
			assert.Equal(t, 0, resp.CachedAccounts)
			assert.NotEmpty(t, resp.Uptime)
		})
	}
}

func TestHealthChecker_DetailedWithoutContext(t *testing.T) {
	h := NewHealthChecker(nil)

	var resp DetailedHealthResponse
	assert.Equal(t, http.StatusOK, getHealth(t, h.DetailedHealthHandler(), "/healthz/detailed", &resp))
	assert.Equal(t, "none", resp.Credentials)

	h.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, getHealth(t, h.DetailedHealthHandler(), "/healthz/detailed", &resp))
}

func TestHealthChecker_RegisterHealthEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthChecker(nil).RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
