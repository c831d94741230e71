// Package deck defines the compressed deck model shared by the parser, enricher and simulator.
package deck

import (
	"fmt"
	"strconv"
)

// MaxCopies is the maximum number of copies of a single card allowed in a deck.
const MaxCopies = 3

// Category is the card frame classification.
type Category string

const (
	CategoryMonster Category = "monster"
	CategorySpell   Category = "spell"
	CategoryTrap    Category = "trap"
)

// Categories lists every category in reporting order.
var Categories = []Category{CategoryMonster, CategorySpell, CategoryTrap}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMonster, CategorySpell, CategoryTrap:
		return true
	}
	return false
}

// Role is the user-assigned purpose of a card in the deck's game plan.
type Role string

const (
	RoleStarter  Role = "starter"
	RoleBrick    Role = "brick"
	RoleNeutral  Role = "neutral"
	RoleHandTrap Role = "handTrap"
)

// Roles lists every role in reporting order.
var Roles = []Role{RoleStarter, RoleBrick, RoleNeutral, RoleHandTrap}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStarter, RoleBrick, RoleNeutral, RoleHandTrap:
		return true
	}
	return false
}

// BanStatus is a card's status on a format's limited list.
type BanStatus string

const (
	BanForbidden    BanStatus = "Forbidden"
	BanLimited      BanStatus = "Limited"
	BanSemiLimited  BanStatus = "Semi-Limited"
	BanUnlimited    BanStatus = "Unlimited"
	banStatusBanned           = "Banned"
)

// NormalizeBanStatus maps a catalog ban status to a BanStatus.
// The catalog reports forbidden cards as "Banned"; an empty status means unlimited.
func NormalizeBanStatus(status string) BanStatus {
	switch status {
	case "":
		return BanUnlimited
	case banStatusBanned:
		return BanForbidden
	}
	return BanStatus(status)
}

// Price holds the per-vendor prices reported by the card catalog, as decimal strings.
type Price struct {
	Cardmarket string `json:"cardmarket_price"`
	TCGPlayer  string `json:"tcgplayer_price"`
	Ebay       string `json:"ebay_price"`
	Amazon     string `json:"amazon_price"`
	CoolStuff  string `json:"coolstuff_price"`
}

// CardSet is a printing of a card.
type CardSet struct {
	Name   string `json:"set_name"`
	Code   string `json:"set_code"`
	Rarity string `json:"set_rarity"`
	Price  string `json:"set_price"`
}

// Card is a distinct card in a deck together with the number of copies held.
// Everything except YugiohID, Category, Role and Quantity is display metadata
// and is carried through the simulator unchanged.
type Card struct {
	YugiohID int      `json:"yugioh_id"`
	Category Category `json:"category"`
	Role     Role     `json:"role"`
	Quantity int      `json:"quantity"`

	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type,omitempty"`
	FrameType   string    `json:"frame_type,omitempty"`
	Race        string    `json:"race,omitempty"`
	Attribute   string    `json:"attribute,omitempty"`
	Atk         *int      `json:"atk,omitempty"`
	Def         *int      `json:"def,omitempty"`
	Level       *int      `json:"level,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Price       Price     `json:"price"`
	CardSets    []CardSet `json:"card_sets,omitempty"`
	BanStatus   BanStatus `json:"ban_status,omitempty"`
}

// Deck is a compressed deck: distinct cards, each with a copy count.
type Deck struct {
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// New creates a deck from the given cards.
func New(name string, cards []Card) *Deck {
	return &Deck{Name: name, Cards: cards}
}

// TotalCards returns the number of physical cards in the deck.
func (d *Deck) TotalCards() int {
	total := 0
	for _, c := range d.Cards {
		total += c.Quantity
	}
	return total
}

// Validate checks the compressed deck invariants: ids are positive and unique,
// every quantity lies in [1, MaxCopies], and every role and category is known.
func (d *Deck) Validate() error {
	seen := make(map[int]bool, len(d.Cards))
	for _, c := range d.Cards {
		if c.Quantity < 1 || c.Quantity > MaxCopies {
			return &InvalidQuantityError{YugiohID: c.YugiohID, Quantity: c.Quantity}
		}
		if c.YugiohID <= 0 {
			return &InvalidCardError{YugiohID: c.YugiohID, Field: "id", Value: strconv.Itoa(c.YugiohID)}
		}
		if seen[c.YugiohID] {
			return &DuplicateCardError{YugiohID: c.YugiohID}
		}
		seen[c.YugiohID] = true
		if !c.Role.Valid() {
			return &InvalidCardError{YugiohID: c.YugiohID, Field: "role", Value: string(c.Role)}
		}
		if !c.Category.Valid() {
			return &InvalidCardError{YugiohID: c.YugiohID, Field: "category", Value: string(c.Category)}
		}
	}
	return nil
}

// Find returns the index of the card with the given id, or -1.
func (d *Deck) Find(yugiohID int) int {
	for i, c := range d.Cards {
		if c.YugiohID == yugiohID {
			return i
		}
	}
	return -1
}

// AddCard adds a card to the deck. If the card is already present its quantity
// is increased, capped at MaxCopies. New cards have their quantity clamped to [1, MaxCopies].
func (d *Deck) AddCard(card Card) {
	if i := d.Find(card.YugiohID); i >= 0 {
		d.Cards[i].Quantity = clampQuantity(d.Cards[i].Quantity + card.Quantity)
		return
	}
	card.Quantity = clampQuantity(card.Quantity)
	d.Cards = append(d.Cards, card)
}

// RemoveCard removes the card with the given id. It reports whether a card was removed.
func (d *Deck) RemoveCard(yugiohID int) bool {
	i := d.Find(yugiohID)
	if i < 0 {
		return false
	}
	d.Cards = append(d.Cards[:i], d.Cards[i+1:]...)
	return true
}

// SetRole overrides the role of a card.
func (d *Deck) SetRole(yugiohID int, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	i := d.Find(yugiohID)
	if i < 0 {
		return fmt.Errorf("card %d not in deck", yugiohID)
	}
	d.Cards[i].Role = role
	return nil
}

// Clear removes every card from the deck.
func (d *Deck) Clear() {
	d.Cards = d.Cards[:0]
}

func clampQuantity(q int) int {
	return min(max(q, 1), MaxCopies)
}
