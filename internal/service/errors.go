package service

import "errors"

// The error taxonomy handlers map onto HTTP statuses: validation 400,
// unauthorized 401, not found 404, conflict 409. Anything else is a 500.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)
