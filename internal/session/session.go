package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL matches the lifetime of the browser auth cookie.
const DefaultTTL = 7 * 24 * time.Hour

// Session is the authenticated identity handed to the API client. It is safe for concurrent use.
type Session struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu     sync.RWMutex
	loaded bool
	record Record
}

// New wraps store. A non-positive ttl falls back to DefaultTTL.
func New(store Store, ttl time.Duration) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Session{store: store, ttl: ttl, now: time.Now}
}

// Token returns the bearer token, or "" when none is stored or it has expired.
func (s *Session) Token(ctx context.Context) (string, error) {
	record, err := s.current(ctx)
	if err != nil {
		return "", err
	}
	return record.Token, nil
}

// ExpiresAt returns when the stored token stops being sent.
func (s *Session) ExpiresAt(ctx context.Context) (time.Time, bool) {
	record, err := s.current(ctx)
	if err != nil || record.Token == "" {
		return time.Time{}, false
	}
	return record.ExpiresAt, true
}

// IsAuthenticated reports whether a usable token is stored.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// SetToken stores token. The expiry is the session TTL or the token's own exp claim, whichever is sooner.
func (s *Session) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear(ctx)
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	if exp, ok := tokenExpiry(token); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}

	record := Record{Token: token, ExpiresAt: expiresAt}
	if err := s.store.Save(ctx, record); err != nil {
		return err
	}

	s.mu.Lock()
	s.record = record
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Clear removes the stored token.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.record = Record{}
	s.loaded = true
	s.mu.Unlock()

	return s.store.Clear(ctx)
}

func (s *Session) current(ctx context.Context) (Record, error) {
	s.mu.RLock()
	loaded, record := s.loaded, s.record
	s.mu.RUnlock()

	if !loaded {
		stored, err := s.store.Load(ctx)
		switch {
		case errors.Is(err, ErrNoSession):
			stored = Record{}
		case err != nil:
			return Record{}, err
		}

		s.mu.Lock()
		s.record = stored
		s.loaded = true
		s.mu.Unlock()
		record = stored
	}

	if record.Token != "" && record.Expired(s.now()) {
		if err := s.Clear(ctx); err != nil {
			return Record{}, err
		}
		return Record{}, nil
	}

	return record, nil
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
