package board

import "github.com/google/uuid"

// Session identifies the authenticated user for one board lifetime. It is
// created after login, handed explicitly to the store and the persistence
// gateway, and discarded on logout; nothing board-related lives in package
// globals.
type Session struct {
	UserID uuid.UUID
	Token  string
}

// Valid reports whether the session carries an authenticated user.
func (s Session) Valid() bool {
	return s.UserID != uuid.Nil && s.Token != ""
}
