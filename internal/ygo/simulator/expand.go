// Package simulator samples opening hands from a compressed deck and aggregates
// per-role and per-category statistics over many runs.
package simulator

import (
	"github.com/ramonehamilton/DeckOps/internal/ygo/deck"
)

// Instance is a single physical copy of a card.
// Copy only distinguishes copies of the same card from each other.
type Instance struct {
	deck.Card
	Copy int `json:"copy"`
}

// Expand flattens a compressed deck into one instance per physical copy,
// preserving deck order.
func Expand(d *deck.Deck) ([]Instance, error) {
	instances := make([]Instance, 0, d.TotalCards())
	for _, card := range d.Cards {
		if card.Quantity < 1 || card.Quantity > deck.MaxCopies {
			return nil, &deck.InvalidQuantityError{YugiohID: card.YugiohID, Quantity: card.Quantity}
		}
		for i := 0; i < card.Quantity; i++ {
			instances = append(instances, Instance{Card: card, Copy: i})
		}
	}
	return instances, nil
}
