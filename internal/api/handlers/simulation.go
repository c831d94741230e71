package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/DeckOps/internal/api/response"
	"github.com/ramonehamilton/DeckOps/internal/app"
	"github.com/ramonehamilton/DeckOps/internal/storage/models"
)

// SimulationService is the simulation facade used by SimulationHandler.
type SimulationService interface {
	Simulate(ctx context.Context, req *app.SimulateRequest) (*app.SimulationReport, error)
	History(ctx context.Context, deckID string, limit int) ([]*models.SimulationRun, error)
	RenderHistory(ctx context.Context, deckID string, w io.Writer) error
}

// SimulationHandler handles simulation API requests.
type SimulationHandler struct {
	facade SimulationService
}

// NewSimulationHandler creates a new SimulationHandler.
func NewSimulationHandler(facade SimulationService) *SimulationHandler {
	return &SimulationHandler{facade: facade}
}

// Simulate runs a simulation. With ?format=html the result is returned as a chart page.
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req app.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	report, err := h.facade.Simulate(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := app.RenderReport(&buf, report); err != nil {
			response.InternalError(w, err)
			return
		}
		response.HTML(w, buf.Bytes())
		return
	}

	response.Success(w, report)
}

// GetHistory returns a deck's recorded simulations, newest first.
func (h *SimulationHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			response.BadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		limit = l
	}

	runs, err := h.facade.History(r.Context(), chi.URLParam(r, "deckID"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, runs)
}

// GetHistoryChart renders a deck's simulation history as a chart page.
func (h *SimulationHandler) GetHistoryChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.facade.RenderHistory(r.Context(), chi.URLParam(r, "deckID"), &buf); err != nil {
		writeError(w, err)
		return
	}

	response.HTML(w, buf.Bytes())
}
