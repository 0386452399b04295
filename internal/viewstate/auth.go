package viewstate

import (
	"context"
	"errors"
	"net/http"

	"github.com/noah-isme/codemission/internal/api"
	"github.com/noah-isme/codemission/internal/dto"
	"github.com/noah-isme/codemission/internal/models"
)

// MessageEmailTaken replaces the backend message when registration hits an existing account.
const MessageEmailTaken = "This email is already registered"

// Authenticator is the part of the auth service the session state needs.
type Authenticator interface {
	Login(ctx context.Context, req dto.LoginRequest) (models.User, error)
	Register(ctx context.Context, req dto.RegisterRequest) (models.User, error)
	Me(ctx context.Context) (models.User, error)
	UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (models.User, error)
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
}

// AuthState holds the signed-in user.
type AuthState struct {
	auth Authenticator
	user Resource[*models.User]
}

// NewAuthState wraps auth. Call Restore to pick up a stored session.
func NewAuthState(auth Authenticator) *AuthState {
	return &AuthState{auth: auth}
}

// Restore resolves the user of a stored session. A session the backend rejects is discarded.
func (s *AuthState) Restore(ctx context.Context) error {
	if !s.auth.IsAuthenticated(ctx) {
		s.user.Set(nil)
		return nil
	}
	_, err := s.user.Load(ctx, s.me)
	if err != nil {
		_ = s.auth.Logout(ctx)
		s.user.Set(nil)
	}
	return err
}

// Login signs in and reports whether a user came back.
func (s *AuthState) Login(ctx context.Context, req dto.LoginRequest) (bool, error) {
	user, err := s.user.Load(ctx, func(ctx context.Context) (*models.User, error) {
		user, err := s.auth.Login(ctx, req)
		if err != nil {
			return nil, err
		}
		return &user, nil
	})
	return err == nil && user != nil, err
}

// Register creates an account and signs in.
func (s *AuthState) Register(ctx context.Context, req dto.RegisterRequest) (bool, error) {
	user, err := s.user.Load(ctx, func(ctx context.Context) (*models.User, error) {
		user, err := s.auth.Register(ctx, req)
		if err != nil {
			return nil, registrationError(err)
		}
		return &user, nil
	})
	return err == nil && user != nil, err
}

// Logout forgets the session and the user.
func (s *AuthState) Logout(ctx context.Context) error {
	s.user.Reset()
	s.user.Set(nil)
	return s.auth.Logout(ctx)
}

// UpdateProfile saves profile changes and replaces the user with the server copy. The previous user
// is kept when the update fails.
func (s *AuthState) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) error {
	user, err := s.auth.UpdateProfile(ctx, req)
	if err != nil {
		s.user.Fail(err)
		return err
	}
	s.user.Set(&user)
	return nil
}

// Refresh reloads the user. Failures are recorded and the current user is kept.
func (s *AuthState) Refresh(ctx context.Context) error {
	if !s.auth.IsAuthenticated(ctx) {
		return nil
	}
	_, err := s.user.Load(ctx, s.me)
	return err
}

// User returns the signed-in user, or nil.
func (s *AuthState) User() *models.User {
	return s.user.Snapshot().Data
}

// IsAuthenticated reports whether a user is loaded and the session still holds a token.
func (s *AuthState) IsAuthenticated(ctx context.Context) bool {
	return s.User() != nil && s.auth.IsAuthenticated(ctx)
}

// Snapshot returns the current state.
func (s *AuthState) Snapshot() Snapshot[*models.User] {
	return s.user.Snapshot()
}

func (s *AuthState) me(ctx context.Context) (*models.User, error) {
	user, err := s.auth.Me(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func registrationError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		taken := *apiErr
		taken.Message = MessageEmailTaken
		return &taken
	}
	return err
}
