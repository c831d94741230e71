package handlers

import (
	"context"
	"net/http"

	"github.com/ramonehamilton/DeckOps/internal/api/response"
	"github.com/ramonehamilton/DeckOps/internal/app"
	"github.com/ramonehamilton/DeckOps/internal/version"
)

// SystemService is the system facade used by SystemHandler.
type SystemService interface {
	GetMetrics(ctx context.Context) (*app.SystemMetrics, error)
}

// SystemHandler handles system-related API requests.
type SystemHandler struct {
	facade SystemService
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(facade SystemService) *SystemHandler {
	return &SystemHandler{facade: facade}
}

// GetMetrics returns service counters and latencies.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.facade.GetMetrics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, m)
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": version.String(),
		"service": "deckops-api",
	})
}
