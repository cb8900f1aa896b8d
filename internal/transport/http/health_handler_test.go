package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"chunkdash/internal/services"
	"chunkdash/internal/shared/testutil"
)

func newHealthRouter(t *testing.T, svc *MockHealthService) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	r := chi.NewRouter()
	NewHealthHandler(svc, logger).Mount(r)
	return r
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantStatus int
	}{
		{"ready", "ready", http.StatusOK},
		{"not ready", "not_ready", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockHealthService)
			svc.On("ReadinessCheck", mock.Anything).Return(services.HealthStatus{
				Status:   tt.status,
				Services: map[string]services.ServiceHealth{"database": {Status: tt.status}},
			})

			rec := do(newHealthRouter(t, svc), http.MethodGet, "/health/ready", "", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.status, decodeBody(t, rec)["status"])
		})
	}
}

func TestHealthHandler_LivenessAndVersion(t *testing.T) {
	svc := new(MockHealthService)
	svc.On("HealthCheck", mock.Anything).Return(services.HealthStatus{Status: "healthy"})
	svc.On("LivenessCheck", mock.Anything).Return(services.HealthStatus{Status: "alive"})
	svc.On("Version").Return(map[string]interface{}{"version": "1.0.0"})
	r := newHealthRouter(t, svc)

	assert.Equal(t, "healthy", decodeBody(t, do(r, http.MethodGet, "/health", "", ""))["status"])
	assert.Equal(t, "alive", decodeBody(t, do(r, http.MethodGet, "/health/live", "", ""))["status"])
	assert.Equal(t, "1.0.0", decodeBody(t, do(r, http.MethodGet, "/version", "", ""))["version"])
	svc.AssertExpectations(t)
}

func TestMetricsHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "disabled", decodeBody(t, rec)["status"])

	prom := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("chunkdash_report_runs_total 1\n"))
	})
	rec = httptest.NewRecorder()
	NewMetricsHandler(prom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "report_runs_total")
}
