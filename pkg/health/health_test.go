package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	h := NewHandler()

	rec := httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusUp, report.Status)
	assert.Empty(t, report.Checks, "liveness must not probe dependencies")
}

func TestReadiness_AllUp(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusUp, report.Checks["postgres"].Status)
	assert.NotEmpty(t, report.Checks["postgres"].Latency)
}

func TestReadiness_DependencyDown(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", func(ctx context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, "connection refused", report.Checks["postgres"].Error)
}

func TestReadiness_ProbeSeesCancellation(t *testing.T) {
	h := NewHandler()
	h.Register("postgres", func(ctx context.Context) error { return ctx.Err() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
