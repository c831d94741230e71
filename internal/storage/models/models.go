// Package models holds the row types persisted by the storage layer.
package models

import "time"

// CachedCard is a catalog card document cached locally.
type CachedCard struct {
	ID          int
	Name        string
	Data        string // Catalog JSON document
	LastUpdated time.Time
}

// IsStale reports whether the cached entry is older than threshold.
// A zero threshold never expires.
func (c *CachedCard) IsStale(threshold time.Duration, now time.Time) bool {
	if threshold <= 0 {
		return false
	}
	return now.Sub(c.LastUpdated) > threshold
}

// Deck represents a saved deck.
type Deck struct {
	ID         string
	Name       string
	Source     string // "manual" or "import"
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// DeckCard represents a card in a saved deck.
type DeckCard struct {
	DeckID   string
	CardID   int
	Position int // Order of the card within the deck
	Quantity int
	Category string
	Role     string
	Data     string // Card record JSON
}

// SimulationRun is a summary of one simulation run against a saved deck.
type SimulationRun struct {
	ID           int       `json:"id"`
	DeckID       string    `json:"deck_id"`
	DrawCount    int       `json:"draw_count"`
	Runs         int       `json:"runs"`
	AvgStarters  float64   `json:"avg_starters"`
	AvgBricks    float64   `json:"avg_bricks"`
	AvgHandTraps float64   `json:"avg_hand_traps"`
	AvgNeutral   float64   `json:"avg_neutral"`
	CreatedAt    time.Time `json:"created_at"`
}
