package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areaforecast/areaforecast/internal/api/handler"
	"github.com/areaforecast/areaforecast/internal/api/models"
	"github.com/areaforecast/areaforecast/internal/provider/resilience"
)

type fixedBreaker gobreaker.State

func (b fixedBreaker) CircuitBreakerState() gobreaker.State { return gobreaker.State(b) }
func (b fixedBreaker) CircuitBreakerCounts() gobreaker.Counts { return gobreaker.Counts{} }

func TestOpsHandler_SystemStatusReportsCircuitState(t *testing.T) {
	tests := []struct {
		name    string
		state   gobreaker.State
		want    models.HealthStatus
		circuit string
	}{
		{"closed", gobreaker.StateClosed, models.HealthStatusOK, "closed"},
		{"half open", gobreaker.StateHalfOpen, models.HealthStatusDegraded, "half-open"},
		{"open", gobreaker.StateOpen, models.HealthStatusFail, "open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := resilience.NewRegistry()
			registry.Register("weatherapi", fixedBreaker(tt.state))
			registry.RecordFailure("weatherapi", errors.New("upstream returned 502"))

			h := handler.NewOpsHandler("test", "now", registry)

			w := httptest.NewRecorder()
			h.SystemStatus(w, httptest.NewRequest(http.MethodGet, "/ops/status", http.NoBody))

			require.Equal(t, http.StatusOK, w.Code)

			var status models.SystemStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))

			assert.Equal(t, tt.want, status.Status)
			require.Len(t, status.Providers, 1)
			p := status.Providers[0]
			assert.Equal(t, "weatherapi", p.Provider)
			assert.Equal(t, tt.want, p.Status)
			assert.Equal(t, tt.circuit, p.CircuitState)
			require.NotNil(t, p.Message)
			assert.Equal(t, "upstream returned 502", *p.Message)
			assert.NotNil(t, p.LastFailureAt)
			assert.Nil(t, p.LastSuccessAt)
		})
	}
}

func TestOpsHandler_NilRegistry(t *testing.T) {
	h := handler.NewOpsHandler("test", "now", nil)

	w := httptest.NewRecorder()
	h.SystemStatus(w, httptest.NewRequest(http.MethodGet, "/ops/status", http.NoBody))

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.Empty(t, status.Providers)
	assert.Empty(t, status.Subsystems)
}
