package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/DeckOps/internal/api/response"
	"github.com/ramonehamilton/DeckOps/internal/app"
	"github.com/ramonehamilton/DeckOps/internal/ygo/cards/ygoprodeck"
)

// CardService is the card facade used by CardHandler.
type CardService interface {
	SearchCards(ctx context.Context, query string) ([]ygoprodeck.Card, error)
	GetCard(ctx context.Context, id int) (*ygoprodeck.Card, error)
	GetBanList(ctx context.Context, filter app.BanListFilter) ([]ygoprodeck.BanListCard, error)
}

// CardHandler handles card-related API requests.
type CardHandler struct {
	facade CardService
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(facade CardService) *CardHandler {
	return &CardHandler{facade: facade}
}

// SearchCards searches the catalog by name.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.facade.SearchCards(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, cards)
}

// GetCard returns a card by its passcode.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := strconv.Atoi(chi.URLParam(r, "cardID"))
	if err != nil || cardID <= 0 {
		response.BadRequest(w, errors.New("card ID must be a positive integer"))
		return
	}

	card, err := h.facade.GetCard(r.Context(), cardID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, card)
}

// GetBanList returns the TCG ban list, filtered by ?status= and ?q=.
func (h *CardHandler) GetBanList(w http.ResponseWriter, r *http.Request) {
	cards, err := h.facade.GetBanList(r.Context(), app.BanListFilter{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, cards)
}
