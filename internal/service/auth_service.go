package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
	"github.com/noah-isme/codemission/internal/validation"
)

// AuthService manages the session against the auth endpoints.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (models.User, error)
	Register(ctx context.Context, req dto.RegisterRequest) (models.User, error)
	CompleteOAuth(ctx context.Context, token string) (models.User, error)
	Me(ctx context.Context) (models.User, error)
	Profile(ctx context.Context) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (models.User, error)
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	GoogleAuthURL() string
}

type authService struct {
	client *api.Client
	logger zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(client *api.Client, logger zerolog.Logger) AuthService {
	return &authService{
		client: client,
		logger: logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Form(req); err != nil {
		return models.User{}, err
	}

	resp, err := api.Post[dto.AuthResponse](ctx, s.client, "/auth/login", req).Result()
	if err != nil {
		return models.User{}, err
	}
	return s.storeSession(ctx, resp)
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Form(req); err != nil {
		return models.User{}, err
	}

	resp, err := api.Post[dto.AuthResponse](ctx, s.client, "/auth/register", req).Result()
	if err != nil {
		return models.User{}, err
	}
	return s.storeSession(ctx, resp)
}

// CompleteOAuth stores a token handed over by the OAuth redirect and resolves its user.
func (s *authService) CompleteOAuth(ctx context.Context, token string) (models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.User{}, api.NewValidationError("Missing authentication token.")
	}
	if err := s.client.Session().SetToken(ctx, token); err != nil {
		return models.User{}, sessionError(err)
	}

	user, err := s.Me(ctx)
	if err != nil {
		return models.User{}, err
	}
	s.logger.Info().Uint("user_id", user.ID).Msg("oauth login completed")
	return user, nil
}

func (s *authService) Me(ctx context.Context) (models.User, error) {
	return api.Get[models.User](ctx, s.client, "/auth/me", nil).Result()
}

func (s *authService) Profile(ctx context.Context) (models.UserProfile, error) {
	return api.Get[models.UserProfile](ctx, s.client, "/auth/profile", nil).Result()
}

func (s *authService) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (models.User, error) {
	if err := validation.Form(req); err != nil {
		return models.User{}, err
	}
	return api.Patch[models.User](ctx, s.client, "/auth/profile", req).Result()
}

// Logout forgets the local session. The backend keeps no server-side session to revoke.
func (s *authService) Logout(ctx context.Context) error {
	if err := s.client.Session().Clear(ctx); err != nil {
		return sessionError(err)
	}
	s.logger.Info().Msg("logged out")
	return nil
}

func (s *authService) IsAuthenticated(ctx context.Context) bool {
	return s.client.Session().IsAuthenticated(ctx)
}

func (s *authService) GoogleAuthURL() string {
	return s.client.GoogleAuthURL()
}

func (s *authService) storeSession(ctx context.Context, resp dto.AuthResponse) (models.User, error) {
	if strings.TrimSpace(resp.Token) == "" {
		return models.User{}, &api.Error{Kind: api.KindDecode, Message: "The server did not return a session token."}
	}
	if err := s.client.Session().SetToken(ctx, resp.Token); err != nil {
		return models.User{}, sessionError(err)
	}
	s.logger.Info().Uint("user_id", resp.User.ID).Msg("session stored")
	return resp.User, nil
}

func sessionError(err error) error {
	return &api.Error{Kind: api.KindApplication, Message: "Could not store the session.", Err: fmt.Errorf("session store: %w", err)}
}
