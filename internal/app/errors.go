package app

import "errors"

// ErrInvalidRequest is returned for requests that are missing required input.
var ErrInvalidRequest = errors.New("invalid request")

// AppError represents an application error with a user-friendly message.
type AppError struct {
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped error for errors.Is/As chain
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func invalidRequest(message string) error {
	return &AppError{Message: message, Err: ErrInvalidRequest}
}
