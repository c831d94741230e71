package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/DeckOps/internal/api/response"
	"github.com/ramonehamilton/DeckOps/internal/app"
	"github.com/ramonehamilton/DeckOps/internal/storage"
	"github.com/ramonehamilton/DeckOps/internal/ygo/cards/ygoprodeck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/enrich"
	"github.com/ramonehamilton/DeckOps/internal/ygo/simulator"
	"github.com/ramonehamilton/DeckOps/internal/ygo/ydk"
)

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	var catalogErr *ygoprodeck.APIError

	switch {
	case errors.Is(err, ydk.ErrInvalidDeckFile),
		errors.Is(err, simulator.ErrInvalidInput),
		errors.Is(err, app.ErrInvalidRequest),
		errors.Is(err, deck.ErrInvalidDeck):
		return http.StatusBadRequest
	// An enrichment error wraps the per-card lookup errors, so it is matched before not-found.
	case enrich.IsEnrichmentError(err):
		return http.StatusBadGateway
	case errors.Is(err, storage.ErrNotFound), ygoprodeck.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &catalogErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with the status StatusFor assigns it.
func writeError(w http.ResponseWriter, err error) {
	response.Error(w, StatusFor(err), err)
}
