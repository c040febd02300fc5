package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confer/internal/apperr"
	"confer/internal/auth"
	"confer/internal/models"
	"confer/internal/store"
)

func seedUser(t *testing.T, users *store.MemoryStore, email string, now time.Time) *models.User {
	t.Helper()
	u := models.NewUser("id-"+email, "Alice", email, "hash", now)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestResetTokens_GenerateStoresHashOnly(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	users := store.NewMemoryStore()
	u := seedUser(t, users, "alice@x.com", clock.Now())
	resets := auth.NewResetTokens(users, 0, clock.Now)

	token, expires, err := resets.Generate(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, token, 2*auth.ResetTokenBytes)
	assert.Equal(t, clock.Now().Add(auth.DefaultResetTTL), expires)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)
	require.NotNil(t, stored.ResetPasswordExpire)
	assert.NotEqual(t, token, *stored.ResetPasswordToken)
	assert.Equal(t, auth.HashResetToken(token), *stored.ResetPasswordToken)
	assert.Equal(t, expires, *stored.ResetPasswordExpire)
}

func TestResetTokens_Consume(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	users := store.NewMemoryStore()
	u := seedUser(t, users, "alice@x.com", clock.Now())
	resets := auth.NewResetTokens(users, 10*time.Minute, clock.Now)

	token, _, err := resets.Generate(ctx, u.ID)
	require.NoError(t, err)

	got, err := resets.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = resets.Consume(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredResetToken)
	_, err = resets.Consume(ctx, token+"0")
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredResetToken)

	clock.Advance(10 * time.Minute)
	_, err = resets.Consume(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredResetToken, "expiry must be strictly in the future")
}

func TestResetTokens_NewTokenReplacesOld(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	users := store.NewMemoryStore()
	u := seedUser(t, users, "alice@x.com", clock.Now())
	resets := auth.NewResetTokens(users, time.Minute, clock.Now)

	first, _, err := resets.Generate(ctx, u.ID)
	require.NoError(t, err)
	second, _, err := resets.Generate(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = resets.Consume(ctx, first)
	assert.ErrorIs(t, err, apperr.ErrInvalidOrExpiredResetToken)
	_, err = resets.Consume(ctx, second)
	assert.NoError(t, err)
}

func TestResetTokens_GenerateForMissingUser(t *testing.T) {
	resets := auth.NewResetTokens(store.NewMemoryStore(), time.Minute, nil)
	_, _, err := resets.Generate(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHashResetToken_Deterministic(t *testing.T) {
	assert.Equal(t, auth.HashResetToken("abc"), auth.HashResetToken("abc"))
	assert.NotEqual(t, auth.HashResetToken("abc"), auth.HashResetToken("abd"))
	assert.Len(t, auth.HashResetToken("abc"), 64)
}
