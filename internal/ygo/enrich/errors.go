package enrich

import (
	"errors"
	"fmt"
)

// LookupFailure records a card id that could not be resolved.
type LookupFailure struct {
	ID  int   `json:"id"`
	Err error `json:"-"`
}

// EnrichmentError is returned when no card id could be resolved.
type EnrichmentError struct {
	Attempted int
	Failures  []LookupFailure
}

func (e *EnrichmentError) Error() string {
	if e.Attempted == 0 {
		return "failed to import any valid cards: no card ids to resolve"
	}
	return fmt.Sprintf("failed to import any valid cards: all %d lookups failed", e.Attempted)
}

// Unwrap exposes the individual lookup errors.
func (e *EnrichmentError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// IsEnrichmentError reports whether err is or wraps an EnrichmentError.
func IsEnrichmentError(err error) bool {
	var e *EnrichmentError
	return errors.As(err, &e)
}
