package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/weekplan/weekplan/internal/api/v1"
	"github.com/weekplan/weekplan/internal/auth"
	"github.com/weekplan/weekplan/internal/domain"
)

// ---------------------------------------------------------------------------
// TestRegisterEndpoint
// ---------------------------------------------------------------------------

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		_, api := humatest.New(t)
		svc := &mockAuthService{
			registerFunc: func(_ context.Context, email, password, name string) (*domain.User, error) {
				assert.Equal(t, "alice@example.com", email)
				assert.Equal(t, "hunter2hunter2", password)
				assert.Equal(t, "Alice", name)
				return &domain.User{ID: userID, Email: email, Name: name, PasswordHash: "sealed"}, nil
			},
			loginFunc: func(context.Context, string, string) (string, string, error) {
				return "access-token", "refresh-token", nil
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
			"name":     "Alice",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			User         *domain.User `json:"user"`
			AccessToken  string       `json:"access_token"`
			RefreshToken string       `json:"refresh_token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.NotNil(t, body.User)
		assert.Equal(t, userID, body.User.ID)
		assert.Equal(t, "access-token", body.AccessToken)
		assert.Equal(t, "refresh-token", body.RefreshToken)
		assert.NotContains(t, resp.Body.String(), "sealed", "password hash must never leave the server")
	})

	t.Run("duplicate_email_conflicts", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			registerFunc: func(context.Context, string, string, string) (*domain.User, error) {
				return nil, auth.ErrUserAlreadyExists
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
			"name":     "Alice",
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("short_password_rejected_by_schema", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{})

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "short",
			"name":     "Alice",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestLoginEndpoint
// ---------------------------------------------------------------------------

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			loginFunc: func(_ context.Context, email, password string) (string, string, error) {
				assert.Equal(t, "alice@example.com", email)
				assert.Equal(t, "hunter2hunter2", password)
				return "access-token", "refresh-token", nil
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "access-token", body.AccessToken)
		assert.Equal(t, "refresh-token", body.RefreshToken)
	})

	t.Run("bad_credentials_answer_401", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			loginFunc: func(context.Context, string, string) (string, string, error) {
				return "", "", auth.ErrInvalidCredentials
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// TestRefreshEndpoint
// ---------------------------------------------------------------------------

func TestRefreshEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			refreshTokenFunc: func(_ context.Context, refreshToken string) (string, error) {
				assert.Equal(t, "refresh-token", refreshToken)
				return "fresh-access-token", nil
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/refresh", map[string]any{
			"refresh_token": "refresh-token",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			AccessToken string `json:"access_token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "fresh-access-token", body.AccessToken)
	})

	t.Run("invalid_token_answers_401", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			refreshTokenFunc: func(context.Context, string) (string, error) {
				return "", auth.ErrInvalidToken
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/refresh", map[string]any{
			"refresh_token": "expired-or-garbage",
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
