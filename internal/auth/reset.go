package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/samber/oops"

	"confer/internal/apperr"
	"confer/internal/models"
	"confer/internal/store"
	"confer/internal/utils"
)

const (
	ResetTokenBytes = 32
	DefaultResetTTL = 15 * time.Minute
)

// ResetTokens issues and redeems single-use password reset tokens. Only the
// SHA-256 of a token is stored; the plaintext leaves through Generate once.
type ResetTokens struct {
	users UserStore
	ttl   time.Duration
	now   Clock
}

func NewResetTokens(users UserStore, ttl time.Duration, now Clock) *ResetTokens {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ResetTokens{users: users, ttl: ttl, now: now}
}

// Generate stores a fresh token hash and expiry on the user, replacing any
// earlier pair, and returns the plaintext token.
func (r *ResetTokens) Generate(ctx context.Context, userID string) (string, time.Time, error) {
	token, err := utils.RandomTokenHex(ResetTokenBytes)
	if err != nil {
		return "", time.Time{}, err
	}
	now := r.now()
	expires := now.Add(r.ttl)
	if err := r.users.SetResetToken(ctx, userID, HashResetToken(token), expires, now); err != nil {
		return "", time.Time{}, oops.Code("RESET_TOKEN_GENERATE_FAILED").
			With("operation", "SetResetToken").
			Wrap(err)
	}
	return token, expires, nil
}

// Consume resolves token to its user. Unknown, expired and empty tokens all
// yield apperr.ErrInvalidOrExpiredResetToken. Clearing the stored pair is
// left to the password update that follows.
func (r *ResetTokens) Consume(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.ErrInvalidOrExpiredResetToken
	}
	u, err := r.users.FindByResetTokenHash(ctx, HashResetToken(token), r.now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrInvalidOrExpiredResetToken
	}
	if err != nil {
		return nil, oops.Code("RESET_TOKEN_LOOKUP_FAILED").Wrap(err)
	}
	return u, nil
}

// HashResetToken is deterministic so a presented token can be looked up.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
