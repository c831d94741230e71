package simulator

import "github.com/ramonehamilton/DeckOps/internal/ygo/deck"

// Summary counts the cards of one hand by role and by category.
// Every role and category is present, with zero for those not drawn.
type Summary struct {
	ByRole     map[deck.Role]int     `json:"by_role"`
	ByCategory map[deck.Category]int `json:"by_category"`
}

// Tally classifies a drawn hand.
func Tally(cards []Instance) Summary {
	s := Summary{
		ByRole:     make(map[deck.Role]int, len(deck.Roles)),
		ByCategory: make(map[deck.Category]int, len(deck.Categories)),
	}
	for _, r := range deck.Roles {
		s.ByRole[r] = 0
	}
	for _, c := range deck.Categories {
		s.ByCategory[c] = 0
	}

	for _, card := range cards {
		s.ByRole[card.Role]++
		s.ByCategory[card.Category]++
	}

	return s
}
