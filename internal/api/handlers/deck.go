package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/DeckOps/internal/api/response"
	"github.com/ramonehamilton/DeckOps/internal/app"
	"github.com/ramonehamilton/DeckOps/internal/storage"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/ydk"
)

// maxDeckFileSize bounds uploaded YDK documents.
const maxDeckFileSize = 1 << 20

// DeckService is the deck facade used by DeckHandler.
type DeckService interface {
	ImportDeck(ctx context.Context, req *app.ImportDeckRequest) (*app.ImportDeckResponse, error)
	CreateDeck(ctx context.Context, d *deck.Deck) (*storage.SavedDeck, error)
	ListDecks(ctx context.Context) ([]*storage.SavedDeck, error)
	GetDeck(ctx context.Context, deckID string) (*storage.SavedDeck, error)
	UpdateDeck(ctx context.Context, deckID string, d *deck.Deck) (*storage.SavedDeck, error)
	DeleteDeck(ctx context.Context, deckID string) error
	AddCard(ctx context.Context, deckID string, req *app.AddCardRequest) (*storage.SavedDeck, error)
	RemoveCard(ctx context.Context, deckID string, cardID int) (*storage.SavedDeck, error)
	SetCardRole(ctx context.Context, deckID string, cardID int, role deck.Role) (*storage.SavedDeck, error)
	ExportDeck(ctx context.Context, deckID string) (*ydk.DeckExport, error)
	GetComposition(ctx context.Context, deckID string) (*deck.Composition, error)
}

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	facade DeckService
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(facade DeckService) *DeckHandler {
	return &DeckHandler{facade: facade}
}

// ImportDeck imports a YDK document. The body is either the raw file
// (text/plain, name from ?name=) or JSON {"name", "content"}.
func (h *DeckHandler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxDeckFileSize)

	var req app.ImportDeckRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		content, err := io.ReadAll(body)
		if err != nil {
			response.BadRequest(w, errors.New("failed to read deck file"))
			return
		}
		req.Name = r.URL.Query().Get("name")
		req.Content = string(content)
	} else if err := json.NewDecoder(body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.Content == "" {
		response.BadRequest(w, errors.New("deck content is required"))
		return
	}

	result, err := h.facade.ImportDeck(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, result)
}

// GetDecks returns all saved decks.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.facade.ListDecks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, decks)
}

// CreateDeck saves a deck built by hand.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req deck.Deck
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	saved, err := h.facade.CreateDeck(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, saved)
}

// GetDeck returns a single deck by ID.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	saved, err := h.facade.GetDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saved)
}

// UpdateDeck replaces a deck's name and cards.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	var req deck.Deck
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	saved, err := h.facade.UpdateDeck(r.Context(), chi.URLParam(r, "deckID"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saved)
}

// DeleteDeck deletes a deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := h.facade.DeleteDeck(r.Context(), chi.URLParam(r, "deckID")); err != nil {
		writeError(w, err)
		return
	}

	response.NoContent(w)
}

// AddCard adds copies of a catalog card to a deck.
func (h *DeckHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req app.AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	saved, err := h.facade.AddCard(r.Context(), chi.URLParam(r, "deckID"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saved)
}

// RemoveCard removes a card from a deck.
func (h *DeckHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	saved, err := h.facade.RemoveCard(r.Context(), chi.URLParam(r, "deckID"), cardID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saved)
}

// SetCardRoleRequest represents a request to change a card's role.
type SetCardRoleRequest struct {
	Role deck.Role `json:"role"`
}

// SetCardRole overrides the role of a card in a deck.
func (h *DeckHandler) SetCardRole(w http.ResponseWriter, r *http.Request) {
	cardID, ok := cardIDParam(w, r)
	if !ok {
		return
	}

	var req SetCardRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	saved, err := h.facade.SetCardRole(r.Context(), chi.URLParam(r, "deckID"), cardID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, saved)
}

// ExportDeck downloads a deck as a YDK file.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	export, err := h.facade.ExportDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Attachment(w, export.Filename, export.MIMEType, export.Content)
}

// GetComposition returns a deck's role, category and price summary.
func (h *DeckHandler) GetComposition(w http.ResponseWriter, r *http.Request) {
	comp, err := h.facade.GetComposition(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, comp)
}

// cardIDParam parses the cardID URL parameter, writing a 400 when it is invalid.
func cardIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	cardID, err := strconv.Atoi(chi.URLParam(r, "cardID"))
	if err != nil || cardID <= 0 {
		response.BadRequest(w, errors.New("card ID must be a positive integer"))
		return 0, false
	}
	return cardID, true
}
