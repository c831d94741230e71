// Package enrich resolves parsed deck entries into card records via the card catalog.
package enrich

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ramonehamilton/DeckOps/internal/ygo/cards/ygoprodeck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/ydk"
)

// Lookup resolves a card id to its catalog record.
type Lookup interface {
	GetCard(ctx context.Context, id int) (*ygoprodeck.Card, error)
}

// Options configures an Enricher. Nil rule lists use the defaults.
type Options struct {
	RoleRules     []RoleRule
	CategoryRules []CategoryRule
	Logger        *slog.Logger
}

// Enricher maps deck entries to card records.
type Enricher struct {
	lookup        Lookup
	roleRules     []RoleRule
	categoryRules []CategoryRule
	logger        *slog.Logger
}

// New creates an Enricher.
func New(lookup Lookup, opts Options) *Enricher {
	if opts.RoleRules == nil {
		opts.RoleRules = DefaultRoleRules()
	}
	if opts.CategoryRules == nil {
		opts.CategoryRules = DefaultCategoryRules()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Enricher{
		lookup:        lookup,
		roleRules:     opts.RoleRules,
		categoryRules: opts.CategoryRules,
		logger:        opts.Logger,
	}
}

// Result holds the resolved cards, in entry order, and the ids that failed.
type Result struct {
	Cards    []deck.Card
	Failures []LookupFailure
}

// Enrich resolves every entry and returns the cards that could be resolved.
func (e *Enricher) Enrich(ctx context.Context, entries []ydk.Entry) ([]deck.Card, error) {
	res, err := e.Resolve(ctx, entries)
	if err != nil {
		return nil, err
	}
	return res.Cards, nil
}

// Resolve looks up every entry concurrently. A failed lookup never cancels the
// others; only a batch in which nothing resolves returns an error.
func (e *Enricher) Resolve(ctx context.Context, entries []ydk.Entry) (*Result, error) {
	if len(entries) == 0 {
		return nil, &EnrichmentError{}
	}

	type outcome struct {
		card *ygoprodeck.Card
		err  error
	}
	outcomes := make([]outcome, len(entries))

	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			card, err := e.lookup.GetCard(ctx, id)
			outcomes[i] = outcome{card: card, err: err}
		}(i, entry.ID)
	}
	wg.Wait()

	res := &Result{Cards: make([]deck.Card, 0, len(entries))}
	for i, o := range outcomes {
		id := entries[i].ID
		if o.err == nil && o.card == nil {
			o.err = &ygoprodeck.NotFoundError{URL: "cardinfo"}
		}
		if o.err != nil {
			e.logger.Debug("Card lookup failed", "id", id, "error", o.err)
			res.Failures = append(res.Failures, LookupFailure{ID: id, Err: o.err})
			continue
		}
		card := e.CardFromCatalog(o.card, entries[i].Count, "")
		// Keep the id from the deck file; alternate artworks resolve to the base card.
		card.YugiohID = id
		res.Cards = append(res.Cards, card)
	}

	if len(res.Cards) == 0 {
		return nil, &EnrichmentError{Attempted: len(entries), Failures: res.Failures}
	}

	if len(res.Failures) > 0 {
		e.logger.Info("Some cards could not be resolved",
			"resolved", len(res.Cards), "failed", len(res.Failures))
	}

	return res, nil
}

// CardFromCatalog builds a deck card from a catalog record. An empty role is inferred.
func (e *Enricher) CardFromCatalog(c *ygoprodeck.Card, quantity int, role deck.Role) deck.Card {
	if role == "" {
		role = InferRole(e.roleRules, c.Name, c.Desc)
	}

	return deck.Card{
		YugiohID:    c.ID,
		Category:    InferCategory(e.categoryRules, c.Type),
		Role:        role,
		Quantity:    quantity,
		Name:        c.Name,
		Description: c.Desc,
		Type:        c.Type,
		FrameType:   c.FrameType,
		Race:        c.Race,
		Attribute:   c.Attribute,
		Atk:         c.Atk,
		Def:         c.Def,
		Level:       c.Level,
		ImageURL:    c.ImageURL(),
		Price:       c.Price(),
		CardSets:    c.Sets(),
		BanStatus:   c.TCGBanStatus(),
	}
}
