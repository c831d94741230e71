package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ramonehamilton/DeckOps/internal/storage/models"
)

// DeckRepository handles database operations for saved decks.
type DeckRepository interface {
	// Create inserts a new deck into the database.
	Create(ctx context.Context, deck *models.Deck) error

	// Update updates an existing deck.
	Update(ctx context.Context, deck *models.Deck) error

	// GetByID retrieves a deck by its ID. Returns nil, nil when absent.
	GetByID(ctx context.Context, id string) (*models.Deck, error)

	// List retrieves all decks, most recently modified first.
	List(ctx context.Context) ([]*models.Deck, error)

	// Delete deletes a deck by its ID. Its cards are removed by cascade.
	Delete(ctx context.Context, id string) error

	// AddCard adds a card to a deck.
	AddCard(ctx context.Context, card *models.DeckCard) error

	// GetCards retrieves all cards in a deck in position order.
	GetCards(ctx context.Context, deckID string) ([]*models.DeckCard, error)

	// ClearCards removes all cards from a deck.
	ClearCards(ctx context.Context, deckID string) error
}

// deckRepository is the concrete implementation of DeckRepository.
type deckRepository struct {
	db DBTX
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db DBTX) DeckRepository {
	return &deckRepository{db: db}
}

// Create inserts a new deck into the database.
func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	query := `
		INSERT INTO decks (id, name, source, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		deck.ID,
		deck.Name,
		deck.Source,
		deck.CreatedAt,
		deck.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	return nil
}

// Update updates an existing deck.
func (r *deckRepository) Update(ctx context.Context, deck *models.Deck) error {
	query := `
		UPDATE decks
		SET name = ?, source = ?, modified_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		deck.Name,
		deck.Source,
		deck.ModifiedAt,
		deck.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}

	return nil
}

// GetByID retrieves a deck by its ID.
func (r *deckRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	query := `
		SELECT id, name, source, created_at, modified_at
		FROM decks
		WHERE id = ?
	`

	deck := &models.Deck{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&deck.ID,
		&deck.Name,
		&deck.Source,
		&deck.CreatedAt,
		&deck.ModifiedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck by id: %w", err)
	}

	return deck, nil
}

// List retrieves all decks.
func (r *deckRepository) List(ctx context.Context) ([]*models.Deck, error) {
	query := `
		SELECT id, name, source, created_at, modified_at
		FROM decks
		ORDER BY modified_at DESC, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*models.Deck
	for rows.Next() {
		deck := &models.Deck{}
		err := rows.Scan(
			&deck.ID,
			&deck.Name,
			&deck.Source,
			&deck.CreatedAt,
			&deck.ModifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}

	return decks, nil
}

// Delete deletes a deck by its ID.
func (r *deckRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}

	return nil
}

// AddCard adds a card to a deck.
func (r *deckRepository) AddCard(ctx context.Context, card *models.DeckCard) error {
	query := `
		INSERT INTO deck_cards (deck_id, card_id, position, quantity, category, role, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		card.DeckID,
		card.CardID,
		card.Position,
		card.Quantity,
		card.Category,
		card.Role,
		card.Data,
	)
	if err != nil {
		return fmt.Errorf("failed to add card %d to deck: %w", card.CardID, err)
	}

	return nil
}

// GetCards retrieves all cards in a deck.
func (r *deckRepository) GetCards(ctx context.Context, deckID string) ([]*models.DeckCard, error) {
	query := `
		SELECT deck_id, card_id, position, quantity, category, role, data
		FROM deck_cards
		WHERE deck_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.DeckCard
	for rows.Next() {
		card := &models.DeckCard{}
		err := rows.Scan(
			&card.DeckID,
			&card.CardID,
			&card.Position,
			&card.Quantity,
			&card.Category,
			&card.Role,
			&card.Data,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		cards = append(cards, card)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deck cards: %w", err)
	}

	return cards, nil
}

// ClearCards removes all cards from a deck.
func (r *deckRepository) ClearCards(ctx context.Context, deckID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, deckID)
	if err != nil {
		return fmt.Errorf("failed to clear deck cards: %w", err)
	}

	return nil
}
