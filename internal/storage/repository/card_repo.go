// Package repository implements table-level persistence for the storage service.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ramonehamilton/DeckOps/internal/storage/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CardRepository handles the local card cache.
type CardRepository interface {
	// Upsert inserts or replaces a cached card.
	Upsert(ctx context.Context, card *models.CachedCard) error

	// GetByID retrieves a cached card. Returns nil, nil when absent.
	GetByID(ctx context.Context, id int) (*models.CachedCard, error)

	// SearchByName returns cached cards whose name contains query, ordered by name.
	SearchByName(ctx context.Context, query string, limit int) ([]*models.CachedCard, error)

	// Count returns the number of cached cards.
	Count(ctx context.Context) (int, error)

	// Delete removes a cached card.
	Delete(ctx context.Context, id int) error
}

// cardRepository is the concrete implementation of CardRepository.
type cardRepository struct {
	db DBTX
}

// NewCardRepository creates a new card cache repository.
func NewCardRepository(db DBTX) CardRepository {
	return &cardRepository{db: db}
}

// Upsert inserts or replaces a cached card.
func (r *cardRepository) Upsert(ctx context.Context, card *models.CachedCard) error {
	query := `
		INSERT INTO cards (id, name, data, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			data = excluded.data,
			last_updated = excluded.last_updated
	`

	_, err := r.db.ExecContext(ctx, query, card.ID, card.Name, card.Data, card.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to upsert card %d: %w", card.ID, err)
	}

	return nil
}

// GetByID retrieves a cached card.
func (r *cardRepository) GetByID(ctx context.Context, id int) (*models.CachedCard, error) {
	query := `SELECT id, name, data, last_updated FROM cards WHERE id = ?`

	card := &models.CachedCard{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&card.ID, &card.Name, &card.Data, &card.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %d: %w", id, err)
	}

	return card, nil
}

// SearchByName returns cached cards whose name contains query.
func (r *cardRepository) SearchByName(ctx context.Context, query string, limit int) ([]*models.CachedCard, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, data, last_updated
		FROM cards
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY name
		LIMIT ?
	`, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.CachedCard
	for rows.Next() {
		card := &models.CachedCard{}
		if err := rows.Scan(&card.ID, &card.Name, &card.Data, &card.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// Count returns the number of cached cards.
func (r *cardRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

// Delete removes a cached card.
func (r *cardRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
