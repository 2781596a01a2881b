package domain

import "errors"

// Sentinel errors for the domain layer. ErrNotFound and ErrForbidden are
// deliberately collapsed into a single 403 answer on task routes so the API
// never reveals whether a foreign id exists.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")
	ErrForbidden    = errors.New("domain: forbidden")
)
