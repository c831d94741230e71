package ydk

import (
	"errors"
	"fmt"
)

// ErrInvalidDeckFile is wrapped by every parse failure.
var ErrInvalidDeckFile = errors.New("invalid YDK file")

// MissingSectionError is returned when a required section marker is absent.
type MissingSectionError struct {
	Section string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("invalid YDK file format: missing %s section", e.Section)
}

func (e *MissingSectionError) Unwrap() error { return ErrInvalidDeckFile }

// EmptyDeckError is returned when the main section holds no card ids.
type EmptyDeckError struct{}

func (e *EmptyDeckError) Error() string {
	return "no valid cards found in the main deck section"
}

func (e *EmptyDeckError) Unwrap() error { return ErrInvalidDeckFile }

// DeckSizeError is returned when the main deck is too small or too large.
type DeckSizeError struct {
	Count int
	Min   int
	Max   int
}

func (e *DeckSizeError) Error() string {
	if e.Count < e.Min {
		return fmt.Sprintf("main deck must contain at least %d cards (found %d)", e.Min, e.Count)
	}
	return fmt.Sprintf("main deck cannot contain more than %d cards (found %d)", e.Max, e.Count)
}

func (e *DeckSizeError) Unwrap() error { return ErrInvalidDeckFile }

// CopyLimitError is returned when a card id is listed more times than allowed.
type CopyLimitError struct {
	ID    int
	Count int
	Max   int
}

func (e *CopyLimitError) Error() string {
	return fmt.Sprintf("card ID %d appears more than %d times (%d copies found)", e.ID, e.Max, e.Count)
}

func (e *CopyLimitError) Unwrap() error { return ErrInvalidDeckFile }
