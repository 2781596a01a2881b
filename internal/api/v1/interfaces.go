package v1

import (
	"context"

	"github.com/weekplan/weekplan/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tasks() domain.TaskRepository
	Users() domain.UserRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// EventPublisher pushes board events to a user's live update channel.
// *ws.Hub satisfies this interface.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
