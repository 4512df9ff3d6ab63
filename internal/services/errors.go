package services

import "errors"

// Deterministic operation outcomes surfaced to handlers. They are never
// retried; handlers translate them to HTTP status codes.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)
