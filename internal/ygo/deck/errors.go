package deck

import (
	"errors"
	"fmt"
)

// ErrInvalidDeck is the base error for decks that break the compressed deck invariants.
var ErrInvalidDeck = errors.New("invalid deck")

// InvalidQuantityError is returned when a card's copy count is outside [1, MaxCopies].
type InvalidQuantityError struct {
	YugiohID int
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("card %d has invalid quantity %d (must be between 1 and %d)", e.YugiohID, e.Quantity, MaxCopies)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidDeck }

// DuplicateCardError is returned when a compressed deck lists the same card twice.
type DuplicateCardError struct {
	YugiohID int
}

func (e *DuplicateCardError) Error() string {
	return fmt.Sprintf("card %d appears more than once in the deck list", e.YugiohID)
}

func (e *DuplicateCardError) Unwrap() error { return ErrInvalidDeck }

// InvalidCardError is returned when a card has a non-positive id or an unknown role or category.
type InvalidCardError struct {
	YugiohID int
	Field    string
	Value    string
}

func (e *InvalidCardError) Error() string {
	return fmt.Sprintf("card %d has invalid %s %q", e.YugiohID, e.Field, e.Value)
}

func (e *InvalidCardError) Unwrap() error { return ErrInvalidDeck }
