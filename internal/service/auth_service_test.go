package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
)

var testUser = map[string]any{
	"id":            7,
	"email":         "ana@example.com",
	"name":          "ana lopez",
	"emailVerified": true,
	"createdAt":     "2024-03-01T10:00:00Z",
}

func TestAuthServiceLoginStoresToken(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("POST /auth/login", http.StatusOK, map[string]any{"user": testUser, "token": "tok-123"})
	backend.handle("GET /auth/me", http.StatusOK, testUser)

	client := backend.client()
	svc := NewAuthService(client, zerolog.Nop())
	ctx := context.Background()

	user, err := svc.Login(ctx, dto.LoginRequest{Email: " ana@example.com ", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, uint(7), user.ID)
	require.True(t, svc.IsAuthenticated(ctx))

	login := backend.last()
	require.Equal(t, "ana@example.com", login.Body["email"])

	me, err := svc.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", me.Email)
	require.Equal(t, "Bearer tok-123", backend.last().Authorization)
}

func TestAuthServiceLoginValidatesBeforeSending(t *testing.T) {
	backend := newFakeBackend(t)
	svc := NewAuthService(backend.client(), zerolog.Nop())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "not-an-email", Password: "123"})
	require.Error(t, err)
	require.Equal(t, api.KindValidation, api.KindOf(err))
	require.Empty(t, backend.recorded())
}

func TestAuthServiceRegisterRejectsMismatchedConfirmation(t *testing.T) {
	backend := newFakeBackend(t)
	svc := NewAuthService(backend.client(), zerolog.Nop())

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "Secret1",
		ConfirmPassword: "Secret2",
	})
	require.Error(t, err)
	require.Equal(t, api.KindValidation, api.KindOf(err))
	require.Empty(t, backend.recorded())
}

func TestAuthServiceRegisterNeverSendsConfirmation(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("POST /auth/register", http.StatusCreated, envelope(map[string]any{"user": testUser, "token": "tok-456"}))

	svc := NewAuthService(backend.client(), zerolog.Nop())
	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:            "Ana",
		Email:           "ana@example.com",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
		University:      "UNAL",
	})
	require.NoError(t, err)

	body := backend.last().Body
	assert.Equal(t, "UNAL", body["university"])
	assert.NotContains(t, body, "confirmPassword")
	assert.NotContains(t, body, "ConfirmPassword")
}

func TestAuthServiceLoginWithoutTokenFails(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("POST /auth/login", http.StatusOK, map[string]any{"user": testUser})

	svc := NewAuthService(backend.client(), zerolog.Nop())
	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.Error(t, err)
	require.False(t, svc.IsAuthenticated(context.Background()))
}

func TestAuthServiceInvalidCredentials(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("POST /auth/login", http.StatusUnauthorized, failure("Invalid credentials"))

	svc := NewAuthService(backend.client(), zerolog.Nop())
	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.Error(t, err)
	require.True(t, api.IsUnauthorized(err))
	require.Equal(t, "Not authenticated. Please log in.", err.Error())
}

func TestAuthServiceCompleteOAuth(t *testing.T) {
	backend := newFakeBackend(t)
	backend.handle("GET /auth/me", http.StatusOK, envelope(testUser))

	svc := NewAuthService(backend.client(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.CompleteOAuth(ctx, "  ")
	require.Error(t, err)
	require.Empty(t, backend.recorded())

	user, err := svc.CompleteOAuth(ctx, "google-token")
	require.NoError(t, err)
	require.Equal(t, "ana lopez", user.Name)
	require.Equal(t, "Bearer google-token", backend.last().Authorization)
}

func TestAuthServiceProfileAndLogout(t *testing.T) {
	backend := newFakeBackend(t)
	profile := map[string]any{
		"id":               7,
		"email":            "ana@example.com",
		"name":             "Ana",
		"totalAnalyses":    4,
		"averageScore":     81.5,
		"totalIssuesFound": 12,
		"recentAnalyses":   []any{map[string]any{"id": 1, "student": "ana", "status": "completed"}},
	}
	backend.handle("GET /auth/profile", http.StatusOK, profile)
	backend.handleFunc("PATCH /auth/profile", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "ana@example.com", "name": "Ana María"})
	})

	client := backend.client()
	ctx := context.Background()
	require.NoError(t, client.Session().SetToken(ctx, "tok"))

	svc := NewAuthService(client, zerolog.Nop())
	got, err := svc.Profile(ctx)
	require.NoError(t, err)
	require.NotNil(t, got.TotalAnalyses)
	require.Equal(t, 4, *got.TotalAnalyses)
	require.Len(t, got.RecentAnalyses, 1)

	name := "Ana María"
	updated, err := svc.UpdateProfile(ctx, dto.ProfileUpdateRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Ana María", updated.Name)
	require.Equal(t, map[string]any{"name": "Ana María"}, backend.last().Body)

	require.NoError(t, svc.Logout(ctx))
	require.False(t, svc.IsAuthenticated(ctx))
}

func TestAuthServiceGoogleAuthURL(t *testing.T) {
	backend := newFakeBackend(t)
	client := backend.client()
	svc := NewAuthService(client, zerolog.Nop())
	require.Equal(t, client.BaseURL()+"/auth/google", svc.GoogleAuthURL())
}
