package app

import (
	"context"
	"strings"

	"github.com/ramonehamilton/DeckOps/internal/ygo/cards/ygoprodeck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

// CardFacade handles card search and ban list queries.
type CardFacade struct {
	services *Services
}

// NewCardFacade creates a new CardFacade with the given services.
func NewCardFacade(services *Services) *CardFacade {
	return &CardFacade{services: services}
}

// SearchCards returns up to ten catalog cards whose name contains query.
// Queries shorter than three characters return no results.
func (c *CardFacade) SearchCards(ctx context.Context, query string) ([]ygoprodeck.Card, error) {
	return c.services.Cards.Search(ctx, strings.TrimSpace(query), ygoprodeck.DefaultSearchLimit)
}

// GetCard returns a catalog card by id.
func (c *CardFacade) GetCard(ctx context.Context, id int) (*ygoprodeck.Card, error) {
	return c.services.Cards.GetCard(ctx, id)
}

// BanListFilter narrows the TCG ban list.
type BanListFilter struct {
	Status string // Forbidden, Limited or Semi-Limited; "Banned" is accepted
	Query  string // Case-insensitive name substring
}

// GetBanList returns the TCG ban list, filtered by status and name.
func (c *CardFacade) GetBanList(ctx context.Context, filter BanListFilter) ([]ygoprodeck.BanListCard, error) {
	cards, err := c.services.Cards.BanList(ctx, "tcg")
	if err != nil {
		return nil, err
	}

	var status deck.BanStatus
	if filter.Status != "" {
		status = normalizeStatusFilter(filter.Status)
	}
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	filtered := make([]ygoprodeck.BanListCard, 0, len(cards))
	for _, card := range cards {
		if status != "" && !strings.EqualFold(string(card.BanStatus), string(status)) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(card.Name), query) {
			continue
		}
		filtered = append(filtered, card)
	}

	return filtered, nil
}

// normalizeStatusFilter accepts "banned" in any case as Forbidden.
func normalizeStatusFilter(status string) deck.BanStatus {
	if strings.EqualFold(status, "banned") {
		return deck.BanForbidden
	}
	return deck.BanStatus(status)
}
