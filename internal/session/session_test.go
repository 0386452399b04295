package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionUsesTTLForOpaqueTokens(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sess := New(NewMemoryStore(), 0)
	sess.now = func() time.Time { return now }

	ctx := context.Background()
	require.False(t, sess.IsAuthenticated(ctx))
	require.NoError(t, sess.SetToken(ctx, "opaque-token"))

	token, err := sess.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "opaque-token", token)

	expiresAt, ok := sess.ExpiresAt(ctx)
	require.True(t, ok)
	require.Equal(t, now.Add(DefaultTTL), expiresAt)
}

func TestSessionHonoursEarlierJWTExpiry(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	sess := New(NewMemoryStore(), time.Hour*24)
	sess.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, sess.SetToken(ctx, signedToken(t, now.Add(time.Hour))))

	expiresAt, ok := sess.ExpiresAt(ctx)
	require.True(t, ok)
	require.True(t, expiresAt.Equal(now.Add(time.Hour)))

	sess.now = func() time.Time { return now.Add(2 * time.Hour) }
	token, err := sess.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
	require.False(t, sess.IsAuthenticated(ctx))
}

func TestSessionClear(t *testing.T) {
	store := NewMemoryStore()
	sess := New(store, time.Hour)
	ctx := context.Background()

	require.NoError(t, sess.SetToken(ctx, "abc"))
	require.NoError(t, sess.Clear(ctx))

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
	require.False(t, sess.IsAuthenticated(ctx))
}

func TestSessionBlankTokenClears(t *testing.T) {
	sess := New(NewMemoryStore(), time.Hour)
	ctx := context.Background()

	require.NoError(t, sess.SetToken(ctx, "abc"))
	require.NoError(t, sess.SetToken(ctx, "   "))
	require.False(t, sess.IsAuthenticated(ctx))
}

func TestSQLStoreRoundTrip(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	store, err := NewSQLStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, store.Save(ctx, Record{Token: "first", ExpiresAt: expiresAt}))
	require.NoError(t, store.Save(ctx, Record{Token: "second", ExpiresAt: expiresAt}))

	record, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", record.Token)
	require.True(t, record.ExpiresAt.Equal(expiresAt))

	// A fresh session over the same store sees the persisted token.
	reopened := New(store, time.Hour)
	require.True(t, reopened.IsAuthenticated(ctx))

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRedisStoreExpiresWithToken(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	store := NewRedisStore(client, "")

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, Record{Token: "abc", ExpiresAt: time.Now().Add(time.Minute)}))

	record, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "abc", record.Token)
	require.True(t, mini.TTL(DefaultRedisKey) > 0)

	mini.FastForward(2 * time.Minute)
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNoSession)
}
