package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/scamdunk/internal/external/alerts"
	"github.com/wonny/scamdunk/internal/external/inference"
)

// HealthHandler reports service and dependency status
type HealthHandler struct {
	inference *inference.Client
	alerts    *alerts.List
	version   string
}

// NewHealthHandler creates a health handler. inference may be nil.
func NewHealthHandler(client *inference.Client, alertList *alerts.List, version string) *HealthHandler {
	return &HealthHandler{inference: client, alerts: alertList, version: version}
}

// InferenceStatus describes the remote backend
type InferenceStatus struct {
	Enabled      bool   `json:"enabled"`
	Healthy      bool   `json:"healthy"`
	ModelsLoaded bool   `json:"modelsLoaded"`
	Breaker      string `json:"breaker,omitempty"`
}

// HealthResponse is the GET /health payload. Status is "degraded" when a
// configured inference backend is unreachable; scans still succeed.
type HealthResponse struct {
	Status        string          `json:"status"`
	Service       string          `json:"service"`
	Version       string          `json:"version"`
	Inference     InferenceStatus `json:"inference"`
	AlertTickers  int             `json:"alertTickers"`
	AlertsUpdated *time.Time      `json:"alertsUpdated,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "healthy",
		Service:      "scamdunk-api",
		Version:      h.version,
		AlertTickers: h.alerts.Len(),
	}
	if updated := h.alerts.UpdatedAt(); !updated.IsZero() {
		resp.AlertsUpdated = &updated
	}

	if h.inference.Enabled() {
		resp.Inference.Enabled = true
		resp.Inference.Breaker = h.inference.BreakerState().String()

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if health, err := h.inference.Health(ctx); err == nil {
			resp.Inference.Healthy = health.Healthy()
			resp.Inference.ModelsLoaded = health.ModelsLoaded
		}
		if !resp.Inference.Healthy {
			resp.Status = "degraded"
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
