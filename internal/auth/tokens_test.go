package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confer/internal/auth"
)

// fakeClock is a settable clock pinned to whole seconds, matching the
// resolution of JWT NumericDate.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newIssuer(t *testing.T, clock *fakeClock, cfg auth.TokenConfig) *auth.TokenIssuer {
	t.Helper()
	if cfg.AccessSecret == "" {
		cfg.AccessSecret = "access-secret"
	}
	issuer, err := auth.NewTokenIssuer(cfg, clock.Now)
	require.NoError(t, err)
	return issuer
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	clock := newFakeClock()
	issuer := newIssuer(t, clock, auth.TokenConfig{RefreshSecret: "refresh-secret"})

	access, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)
	id, err := issuer.Verify(access, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	refresh, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)
	id, err = issuer.Verify(refresh, auth.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	issuer := newIssuer(t, clock, auth.TokenConfig{AccessTTL: 15 * time.Minute})

	token, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)

	clock.Advance(15*time.Minute - time.Second)
	_, err = issuer.Verify(token, auth.AccessToken)
	require.NoError(t, err, "valid one second before expiry")

	clock.Advance(time.Second)
	_, err = issuer.Verify(token, auth.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired, "expired at exactly issued+ttl")

	clock.Advance(time.Second)
	_, err = issuer.Verify(token, auth.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestTokenIssuer_RefreshLifetime(t *testing.T) {
	clock := newFakeClock()
	issuer := newIssuer(t, clock, auth.TokenConfig{})
	assert.Equal(t, 7*24*time.Hour, issuer.RefreshTTL())

	token, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)

	clock.Advance(6 * 24 * time.Hour)
	_, err = issuer.Verify(token, auth.RefreshToken)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	_, err = issuer.Verify(token, auth.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestTokenIssuer_IssuePairSharesOneInstant(t *testing.T) {
	clock := newFakeClock()
	issuer := newIssuer(t, clock, auth.TokenConfig{RefreshSecret: "refresh-secret"})
	start := clock.Now()

	access, refresh, issuedAt, err := issuer.IssuePair("user-1")
	require.NoError(t, err)
	assert.Equal(t, start, issuedAt)

	var claims auth.Claims
	_, _, err = jwt.NewParser().ParseUnverified(refresh, &claims)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(issuedAt.Add(issuer.RefreshTTL())))
	assert.True(t, claims.IssuedAt.Time.Equal(issuedAt))

	id, err := issuer.Verify(access, auth.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
	_, err = issuer.Verify(refresh, auth.RefreshToken)
	require.NoError(t, err)
}

func TestTokenIssuer_Rejections(t *testing.T) {
	clock := newFakeClock()
	issuer := newIssuer(t, clock, auth.TokenConfig{RefreshSecret: "refresh-secret"})
	other := newIssuer(t, clock, auth.TokenConfig{AccessSecret: "someone-else"})
	shared := newIssuer(t, clock, auth.TokenConfig{})

	access, err := issuer.IssueAccess("user-1")
	require.NoError(t, err)
	foreign, err := other.IssueAccess("user-1")
	require.NoError(t, err)
	sharedRefresh, err := shared.IssueRefresh("user-1")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{ID: "user-1", Kind: auth.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour))}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{ID: "user-1", Kind: auth.AccessToken})
	eternal, err := noExpiry.SignedString([]byte("access-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		issuer  *auth.TokenIssuer
		token   string
		kind    auth.TokenKind
		wantErr error
	}{
		{"wrong secret", issuer, foreign, auth.AccessToken, auth.ErrTokenInvalid},
		{"access presented as refresh", issuer, access, auth.RefreshToken, auth.ErrTokenInvalid},
		{"refresh presented as access with shared secret", shared, sharedRefresh, auth.AccessToken, auth.ErrTokenInvalid},
		{"alg none", issuer, unsigned, auth.AccessToken, auth.ErrTokenInvalid},
		{"missing exp", issuer, eternal, auth.AccessToken, auth.ErrTokenInvalid},
		{"garbage", issuer, "not.a.jwt", auth.AccessToken, auth.ErrTokenMalformed},
		{"truncated", issuer, access[:strings.LastIndex(access, ".")], auth.AccessToken, auth.ErrTokenMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.issuer.Verify(tt.token, tt.kind)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, id)
		})
	}
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := auth.NewTokenIssuer(auth.TokenConfig{}, nil)
	assert.Error(t, err)
}
