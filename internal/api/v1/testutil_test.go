package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/weekplan/weekplan/internal/domain"
	"github.com/weekplan/weekplan/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helper: inject the session user into context for *Ctx requests
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tasks domain.TaskRepository
	users domain.UserRepository
}

func (m *mockDataStore) Tasks() domain.TaskRepository { return m.tasks }
func (m *mockDataStore) Users() domain.UserRepository { return m.users }

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc     func(ctx context.Context, t *domain.Task) error
	getByIDFunc    func(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error)
	listByUserFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	updateFunc     func(ctx context.Context, userID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)
	deleteFunc     func(ctx context.Context, userID, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, userID, id)
}

func (m *mockTaskRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockTaskRepo) Update(ctx context.Context, userID, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error) {
	return m.updateFunc(ctx, userID, id, patch)
}

func (m *mockTaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.deleteFunc(ctx, userID, id)
}

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc        func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock EventPublisher
// ---------------------------------------------------------------------------

type publishedEvent struct {
	channel string
	payload []byte
}

type mockEventPublisher struct {
	published  []publishedEvent
	publishErr error
}

func (m *mockEventPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	m.published = append(m.published, publishedEvent{channel: channel, payload: payload})
	return m.publishErr
}
