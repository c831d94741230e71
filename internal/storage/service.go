package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/DeckOps/internal/storage/models"
	"github.com/ramonehamilton/DeckOps/internal/storage/repository"
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

// ErrNotFound is returned when a saved deck does not exist.
var ErrNotFound = errors.New("not found")

// Deck sources.
const (
	SourceManual = "manual"
	SourceImport = "import"
)

// SavedDeck is a persisted deck with its metadata.
type SavedDeck struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	*deck.Deck
}

// Service provides high-level operations for the card cache and saved decks.
type Service struct {
	db          *DB
	cards       repository.CardRepository
	decks       repository.DeckRepository
	simulations repository.SimulationRepository
	now         func() time.Time
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:          db,
		cards:       repository.NewCardRepository(db.Conn()),
		decks:       repository.NewDeckRepository(db.Conn()),
		simulations: repository.NewSimulationRepository(db.Conn()),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetCachedCard returns a cached card, or nil when it has never been cached.
func (s *Service) GetCachedCard(ctx context.Context, id int) (*models.CachedCard, error) {
	return s.cards.GetByID(ctx, id)
}

// CacheCard stores a catalog document for a card, replacing any previous entry.
func (s *Service) CacheCard(ctx context.Context, id int, name string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode card %d: %w", id, err)
	}

	return s.cards.Upsert(ctx, &models.CachedCard{
		ID:          id,
		Name:        name,
		Data:        string(raw),
		LastUpdated: s.now(),
	})
}

// SearchCachedCards returns cached cards whose name contains query.
func (s *Service) SearchCachedCards(ctx context.Context, query string, limit int) ([]*models.CachedCard, error) {
	return s.cards.SearchByName(ctx, query, limit)
}

// CachedCardCount returns the number of cards in the local cache.
func (s *Service) CachedCardCount(ctx context.Context) (int, error) {
	return s.cards.Count(ctx)
}

// CreateDeck saves a new deck under a fresh id.
func (s *Service) CreateDeck(ctx context.Context, d *deck.Deck, source string) (*SavedDeck, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if source == "" {
		source = SourceManual
	}

	now := s.now()
	row := &models.Deck{
		ID:         uuid.New().String(),
		Name:       d.Name,
		Source:     source,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	err := s.withDeckTx(ctx, func(decks repository.DeckRepository) error {
		if err := decks.Create(ctx, row); err != nil {
			return err
		}
		return storeCards(ctx, decks, row.ID, d.Cards)
	})
	if err != nil {
		return nil, err
	}

	return savedDeck(row, d.Cards), nil
}

// GetDeck loads a saved deck with its cards.
func (s *Service) GetDeck(ctx context.Context, id string) (*SavedDeck, error) {
	row, err := s.decks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("deck %s: %w", id, ErrNotFound)
	}

	cards, err := s.loadCards(ctx, id)
	if err != nil {
		return nil, err
	}

	return savedDeck(row, cards), nil
}

// ListDecks returns every saved deck, most recently modified first.
func (s *Service) ListDecks(ctx context.Context) ([]*SavedDeck, error) {
	rows, err := s.decks.List(ctx)
	if err != nil {
		return nil, err
	}

	decks := make([]*SavedDeck, 0, len(rows))
	for _, row := range rows {
		cards, err := s.loadCards(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		decks = append(decks, savedDeck(row, cards))
	}

	return decks, nil
}

// UpdateDeck replaces a saved deck's name and cards.
func (s *Service) UpdateDeck(ctx context.Context, id string, d *deck.Deck) (*SavedDeck, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var row *models.Deck
	err := s.withDeckTx(ctx, func(decks repository.DeckRepository) error {
		var err error
		row, err = decks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("deck %s: %w", id, ErrNotFound)
		}

		row.Name = d.Name
		row.ModifiedAt = s.now()
		if err := decks.Update(ctx, row); err != nil {
			return err
		}
		if err := decks.ClearCards(ctx, id); err != nil {
			return err
		}
		return storeCards(ctx, decks, id, d.Cards)
	})
	if err != nil {
		return nil, err
	}

	return savedDeck(row, d.Cards), nil
}

// DeleteDeck removes a saved deck and its history.
func (s *Service) DeleteDeck(ctx context.Context, id string) error {
	return s.withDeckTx(ctx, func(decks repository.DeckRepository) error {
		row, err := decks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return fmt.Errorf("deck %s: %w", id, ErrNotFound)
		}
		return decks.Delete(ctx, id)
	})
}

// RecordSimulation stores a simulation summary for a saved deck.
func (s *Service) RecordSimulation(ctx context.Context, run *models.SimulationRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	return s.simulations.Create(ctx, run)
}

// ListSimulations returns a saved deck's recent simulation summaries, newest first.
func (s *Service) ListSimulations(ctx context.Context, deckID string, limit int) ([]*models.SimulationRun, error) {
	return s.simulations.ListByDeck(ctx, deckID, limit)
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

func storeCards(ctx context.Context, decks repository.DeckRepository, deckID string, cards []deck.Card) error {
	for i, c := range cards {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode card %d: %w", c.YugiohID, err)
		}

		err = decks.AddCard(ctx, &models.DeckCard{
			DeckID:   deckID,
			CardID:   c.YugiohID,
			Position: i,
			Quantity: c.Quantity,
			Category: string(c.Category),
			Role:     string(c.Role),
			Data:     string(data),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) loadCards(ctx context.Context, deckID string) ([]deck.Card, error) {
	rows, err := s.decks.GetCards(ctx, deckID)
	if err != nil {
		return nil, err
	}

	cards := make([]deck.Card, 0, len(rows))
	for _, row := range rows {
		var c deck.Card
		if err := json.Unmarshal([]byte(row.Data), &c); err != nil {
			return nil, fmt.Errorf("failed to decode card %d of deck %s: %w", row.CardID, deckID, err)
		}
		// Columns are authoritative over the stored document.
		c.YugiohID = row.CardID
		c.Quantity = row.Quantity
		c.Category = deck.Category(row.Category)
		c.Role = deck.Role(row.Role)
		cards = append(cards, c)
	}

	return cards, nil
}

func savedDeck(row *models.Deck, cards []deck.Card) *SavedDeck {
	return &SavedDeck{
		ID:         row.ID,
		Source:     row.Source,
		CreatedAt:  row.CreatedAt,
		ModifiedAt: row.ModifiedAt,
		Deck:       deck.New(row.Name, cards),
	}
}
