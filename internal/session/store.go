package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned by stores that hold no token.
var ErrNoSession = errors.New("no stored session")

// Record is the persisted form of a session.
type Record struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the record is no longer usable at now.
func (r Record) Expired(now time.Time) bool {
	return r.Token == "" || (!r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt))
}

// Store persists a single session record.
type Store interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, record Record) error
	Clear(ctx context.Context) error
}
