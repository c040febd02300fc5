package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

var (
	ErrTokenInvalid   = errors.New("token signature is invalid")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("token is malformed")
)

// Clock returns the current time. Tests pin it to check expiry boundaries.
type Clock func() time.Time

type Claims struct {
	ID   string    `json:"id"`
	Kind TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	AccessSecret string
	// RefreshSecret falls back to AccessSecret when empty.
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           Clock
}

func NewTokenIssuer(cfg TokenConfig, now Clock) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("access token secret is required")
	}
	if cfg.RefreshSecret == "" {
		cfg.RefreshSecret = cfg.AccessSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           now,
	}, nil
}

func (i *TokenIssuer) IssueAccess(userID string) (string, error) {
	return i.issue(userID, AccessToken, i.now())
}

func (i *TokenIssuer) IssueRefresh(userID string) (string, error) {
	return i.issue(userID, RefreshToken, i.now())
}

// IssuePair signs an access and a refresh token from one clock reading and
// returns that instant, so a cookie built from it expires with the token.
func (i *TokenIssuer) IssuePair(userID string) (access, refresh string, issuedAt time.Time, err error) {
	issuedAt = i.now()
	if access, err = i.issue(userID, AccessToken, issuedAt); err != nil {
		return "", "", time.Time{}, err
	}
	if refresh, err = i.issue(userID, RefreshToken, issuedAt); err != nil {
		return "", "", time.Time{}, err
	}
	return access, refresh, issuedAt, nil
}

func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }

func (i *TokenIssuer) issue(userID string, kind TokenKind, now time.Time) (string, error) {
	secret, ttl := i.params(kind)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:   userID,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	s, err := token.SignedString(secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").With("kind", string(kind)).Wrap(err)
	}
	return s, nil
}

// Verify checks signature and expiry for the given kind and returns the
// user id carried by the token. Failures are ErrTokenInvalid,
// ErrTokenExpired or ErrTokenMalformed.
func (i *TokenIssuer) Verify(tokenString string, kind TokenKind) (string, error) {
	secret, _ := i.params(kind)
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", ErrTokenMalformed
	default:
		return "", ErrTokenInvalid
	}
	if claims.Kind != kind {
		return "", ErrTokenInvalid
	}
	if claims.ID == "" {
		return "", ErrTokenMalformed
	}
	return claims.ID, nil
}

func (i *TokenIssuer) params(kind TokenKind) ([]byte, time.Duration) {
	if kind == RefreshToken {
		return i.refreshSecret, i.refreshTTL
	}
	return i.accessSecret, i.accessTTL
}
