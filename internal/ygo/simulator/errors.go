package simulator

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every error caused by bad simulation parameters.
var ErrInvalidInput = errors.New("invalid simulation input")

// InsufficientCardsError is returned when more cards are requested than the deck holds.
type InsufficientCardsError struct {
	Requested int
	Available int
}

func (e *InsufficientCardsError) Error() string {
	return fmt.Sprintf("cannot draw %d cards from a deck of %d", e.Requested, e.Available)
}

func (e *InsufficientCardsError) Unwrap() error { return ErrInvalidInput }

// InvalidDrawCountError is returned for a draw count below one.
type InvalidDrawCountError struct {
	DrawCount int
}

func (e *InvalidDrawCountError) Error() string {
	return fmt.Sprintf("draw count must be at least 1, got %d", e.DrawCount)
}

func (e *InvalidDrawCountError) Unwrap() error { return ErrInvalidInput }

// InvalidRunCountError is returned for a run count outside the allowed range.
type InvalidRunCountError struct {
	Runs    int
	MaxRuns int
}

func (e *InvalidRunCountError) Error() string {
	if e.MaxRuns > 0 && e.Runs > e.MaxRuns {
		return fmt.Sprintf("run count %d exceeds the maximum of %d", e.Runs, e.MaxRuns)
	}
	return fmt.Sprintf("run count must be at least 1, got %d", e.Runs)
}

func (e *InvalidRunCountError) Unwrap() error { return ErrInvalidInput }
