package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetHealth tests health aggregation across components
func TestGetHealth(t *testing.T) {
	ResetHealth()

	RegisterComponent("kube", true, "connected")
	RegisterComponent("scheduler", true, "running")

	health := GetHealth()
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["kube"])

	UpdateComponent("kube", false, "connection lost")
	health = GetHealth()
	assert.Equal(t, "unhealthy", health.Status)
	assert.Contains(t, health.Components["kube"], "connection lost")
}

// TestGetReadiness tests that readiness requires the critical components
func TestGetReadiness(t *testing.T) {
	ResetHealth()

	// Nothing registered yet
	readiness := GetReadiness()
	assert.Equal(t, "not_ready", readiness.Status)

	RegisterComponent("kube", true, "connected")
	readiness = GetReadiness()
	assert.Equal(t, "not_ready", readiness.Status)
	assert.Contains(t, readiness.Message, "scheduler")

	RegisterComponent("scheduler", true, "running")
	readiness = GetReadiness()
	assert.Equal(t, "ready", readiness.Status)
}

// TestHealthHandler tests the /healthz endpoint
func TestHealthHandler(t *testing.T) {
	ResetHealth()
	RegisterComponent("kube", true, "connected")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	HealthHandler()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var health HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
}

// TestHealthHandlerUnhealthy tests the 503 path
func TestHealthHandlerUnhealthy(t *testing.T) {
	ResetHealth()
	RegisterComponent("kube", false, "credentials rejected")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	HealthHandler()(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestReadinessHandler tests the /readyz endpoint
func TestReadinessHandler(t *testing.T) {
	ResetHealth()
	RegisterComponent("kube", true, "connected")
	RegisterComponent("scheduler", true, "running")

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	ReadinessHandler()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
