package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ramonehamilton/DeckOps/internal/storage"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
	"github.com/ramonehamilton/DeckOps/internal/ygo/ydk"
)

// DefaultDeckName names imported decks that arrive without one.
const DefaultDeckName = "Imported Deck"

// DeckFacade handles deck import, export and saved-deck operations.
type DeckFacade struct {
	services *Services
}

// NewDeckFacade creates a new DeckFacade with the given services.
func NewDeckFacade(services *Services) *DeckFacade {
	return &DeckFacade{services: services}
}

// ImportDeckRequest is a YDK document to import.
type ImportDeckRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ImportDeckResponse is a saved import plus the ids that could not be resolved.
type ImportDeckResponse struct {
	Deck       *storage.SavedDeck `json:"deck"`
	Unresolved []int              `json:"unresolved,omitempty"`
}

// LoadDeck parses and enriches a YDK document without saving it.
// It returns the deck and the ids that could not be resolved.
func (d *DeckFacade) LoadDeck(ctx context.Context, name, content string) (*deck.Deck, []int, error) {
	start := time.Now()
	parsed, err := ydk.Parse(content)
	if err != nil {
		d.recordParseFailure()
		return nil, nil, err
	}
	return d.resolve(ctx, name, parsed, start)
}

// LoadDeckFile reads, parses and enriches a YDK file without saving it.
// The deck is named after the file.
func (d *DeckFacade) LoadDeckFile(ctx context.Context, path string) (*deck.Deck, []int, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open deck file: %w", err)
	}
	defer func() { _ = f.Close() }()

	parsed, err := ydk.ParseReader(f)
	if err != nil {
		d.recordParseFailure()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Base(path)
	return d.resolve(ctx, strings.TrimSuffix(base, filepath.Ext(base)), parsed, start)
}

func (d *DeckFacade) recordParseFailure() {
	if d.services.Metrics != nil {
		d.services.Metrics.RecordParseFailure()
	}
}

func (d *DeckFacade) resolve(ctx context.Context, name string, parsed *ydk.ParsedDeck, start time.Time) (*deck.Deck, []int, error) {
	res, err := d.services.Enricher.Resolve(ctx, parsed.Entries)
	if err != nil {
		if d.services.Metrics != nil {
			d.services.Metrics.RecordImport(time.Since(start), 0, len(parsed.Entries))
		}
		return nil, nil, err
	}

	unresolved := make([]int, 0, len(res.Failures))
	for _, f := range res.Failures {
		unresolved = append(unresolved, f.ID)
	}

	if d.services.Metrics != nil {
		d.services.Metrics.RecordImport(time.Since(start), len(res.Cards), len(unresolved))
	}

	if strings.TrimSpace(name) == "" {
		name = DefaultDeckName
	}

	d.services.logger().InfoContext(ctx, "Deck loaded",
		"name", name, "cards", parsed.Total, "resolved", len(res.Cards), "unresolved", len(unresolved))

	return deck.New(name, res.Cards), unresolved, nil
}

// ImportDeck parses, enriches and saves a YDK document.
func (d *DeckFacade) ImportDeck(ctx context.Context, req *ImportDeckRequest) (*ImportDeckResponse, error) {
	if err := d.requireStorage(); err != nil {
		return nil, err
	}

	loaded, unresolved, err := d.LoadDeck(ctx, req.Name, req.Content)
	if err != nil {
		return nil, err
	}

	saved, err := d.services.Storage.CreateDeck(ctx, loaded, storage.SourceImport)
	if err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}

	return &ImportDeckResponse{Deck: saved, Unresolved: unresolved}, nil
}

// CreateDeck saves a deck built by hand.
func (d *DeckFacade) CreateDeck(ctx context.Context, dk *deck.Deck) (*storage.SavedDeck, error) {
	if err := d.requireStorage(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(dk.Name) == "" {
		return nil, invalidRequest("deck name is required")
	}
	return d.services.Storage.CreateDeck(ctx, dk, storage.SourceManual)
}

// ListDecks returns all saved decks.
func (d *DeckFacade) ListDecks(ctx context.Context) ([]*storage.SavedDeck, error) {
	if err := d.requireStorage(); err != nil {
		return nil, err
	}
	return d.services.Storage.ListDecks(ctx)
}

// GetDeck returns a saved deck.
func (d *DeckFacade) GetDeck(ctx context.Context, deckID string) (*storage.SavedDeck, error) {
	if err := d.requireStorage(); err != nil {
		return nil, err
	}
	return d.services.Storage.GetDeck(ctx, deckID)
}

// UpdateDeck replaces a saved deck's name and cards.
func (d *DeckFacade) UpdateDeck(ctx context.Context, deckID string, dk *deck.Deck) (*storage.SavedDeck, error) {
	if err := d.requireStorage(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(dk.Name) == "" {
		return nil, invalidRequest("deck name is required")
	}
	return d.services.Storage.UpdateDeck(ctx, deckID, dk)
}

// DeleteDeck removes a saved deck.
func (d *DeckFacade) DeleteDeck(ctx context.Context, deckID string) error {
	if err := d.requireStorage(); err != nil {
		return err
	}
	return d.services.Storage.DeleteDeck(ctx, deckID)
}

// AddCardRequest adds copies of a catalog card to a saved deck.
type AddCardRequest struct {
	CardID   int       `json:"card_id"`
	Quantity int       `json:"quantity"`
	Role     deck.Role `json:"role,omitempty"` // Inferred when empty
}

// AddCard resolves a catalog card and merges it into a saved deck.
func (d *DeckFacade) AddCard(ctx context.Context, deckID string, req *AddCardRequest) (*storage.SavedDeck, error) {
	if req.CardID <= 0 {
		return nil, invalidRequest("card_id must be positive")
	}
	if req.Role != "" && !req.Role.Valid() {
		return nil, invalidRequest(fmt.Sprintf("unknown role %q", req.Role))
	}

	saved, err := d.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	catalogCard, err := d.services.Cards.GetCard(ctx, req.CardID)
	if err != nil {
		return nil, err
	}

	card := d.services.Enricher.CardFromCatalog(catalogCard, req.Quantity, req.Role)
	card.YugiohID = req.CardID
	saved.AddCard(card)

	return d.services.Storage.UpdateDeck(ctx, deckID, saved.Deck)
}

// RemoveCard removes a card from a saved deck.
func (d *DeckFacade) RemoveCard(ctx context.Context, deckID string, cardID int) (*storage.SavedDeck, error) {
	saved, err := d.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if !saved.RemoveCard(cardID) {
		return nil, fmt.Errorf("card %d in deck %s: %w", cardID, deckID, storage.ErrNotFound)
	}
	return d.services.Storage.UpdateDeck(ctx, deckID, saved.Deck)
}

// SetCardRole overrides the inferred role of a card in a saved deck.
func (d *DeckFacade) SetCardRole(ctx context.Context, deckID string, cardID int, role deck.Role) (*storage.SavedDeck, error) {
	if !role.Valid() {
		return nil, invalidRequest(fmt.Sprintf("unknown role %q", role))
	}

	saved, err := d.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if err := saved.SetRole(cardID, role); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrNotFound, err)
	}
	return d.services.Storage.UpdateDeck(ctx, deckID, saved.Deck)
}

// ExportDeck renders a saved deck as a YDK document.
func (d *DeckFacade) ExportDeck(ctx context.Context, deckID string) (*ydk.DeckExport, error) {
	saved, err := d.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return ydk.ExportDeck(saved.Deck), nil
}

// GetComposition summarizes a saved deck by role, category and price.
func (d *DeckFacade) GetComposition(ctx context.Context, deckID string) (*deck.Composition, error) {
	saved, err := d.GetDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return saved.Composition(), nil
}

func (d *DeckFacade) requireStorage() error {
	if d.services.Storage == nil {
		return &AppError{Message: "Database not initialized"}
	}
	return nil
}
