package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"confer/internal/apperr"
	"confer/internal/mailer"
	"confer/internal/models"
	"confer/internal/store"
)

const mailTimeout = 30 * time.Second

// UserStore is the persistence the account service needs. Implementations
// must reject a second Create for an existing email with
// store.ErrDuplicateEmail and report missing rows as store.ErrNotFound.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	// UpdatePassword replaces the hash and clears any outstanding reset pair.
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
	SetResetToken(ctx context.Context, id, hash string, expire, at time.Time) error
	// ResetPassword replaces the hash only while the stored reset pair still
	// matches hash and is unexpired at now, clearing the pair in the same write.
	ResetPassword(ctx context.Context, id, hash, passwordHash string, now time.Time) error
}

type Config struct {
	ResetTTL time.Duration
	// ResetURLBase is joined with the plaintext token to form the emailed link.
	ResetURLBase string
	Now          Clock
}

// Session is what register and login hand back. RefreshToken is for the
// cookie only and must never be rendered into a response body.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	// IssuedAt is the instant both tokens were signed at.
	IssuedAt time.Time
}

type Service struct {
	users  UserStore
	hasher PasswordHasher
	tokens *TokenIssuer
	resets *ResetTokens
	mail   mailer.Sender
	log    logrus.FieldLogger
	cfg    Config

	// dummyHash is verified against when an email is unknown so that login
	// takes the same time whether or not the account exists.
	dummyHash string
}

func NewService(users UserStore, hasher PasswordHasher, tokens *TokenIssuer, mail mailer.Sender, log logrus.FieldLogger, cfg Config) (*Service, error) {
	if users == nil || hasher == nil || tokens == nil {
		return nil, oops.Code("SERVICE_CONFIG_INVALID").Errorf("store, hasher and token issuer are required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		resets:    NewResetTokens(users, cfg.ResetTTL, cfg.Now),
		mail:      mail,
		log:       log,
		cfg:       cfg,
		dummyHash: dummy,
	}, nil
}

func (s *Service) RefreshTTL() time.Duration { return s.tokens.RefreshTTL() }

func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, apperr.ErrValidation
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := models.NewUser(uuid.NewString(), name, email, hash, s.cfg.Now())
	if err := u.Validate(); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, apperr.ErrEmailInUse
		}
		return nil, err
	}
	s.log.WithField("user_id", u.ID).Info("user registered")
	return s.session(u)
}

// Login answers apperr.ErrInvalidCredentials for both an unknown email and a
// wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.ErrValidation
	}

	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.hasher.Verify(password, s.dummyHash)
		return nil, apperr.ErrInvalidCredentials
	case err != nil:
		return nil, err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	now := s.cfg.Now()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin, u.UpdatedAt = now, now
	return s.session(u)
}

func (s *Service) CurrentUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	return u, err
}

// Authenticate resolves a bearer access token to its user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, apperr.ErrNoToken
	}
	id, err := s.tokens.Verify(accessToken, AccessToken)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}
	return s.CurrentUser(ctx, id)
}

// Refresh mints a new access token. The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperr.ErrNoRefreshToken
	}
	id, err := s.tokens.Verify(refreshToken, RefreshToken)
	if err != nil {
		return "", apperr.ErrInvalidRefreshToken
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", apperr.ErrInvalidRefreshToken
		}
		return "", err
	}
	return s.tokens.IssueAccess(id)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return apperr.ErrValidation
	}
	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, u.PasswordHash) {
		return apperr.ErrWrongPassword
	}
	hash, err := s.hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash, s.cfg.Now()); err != nil {
		return err
	}
	s.log.WithField("user_id", u.ID).Info("password changed")
	return nil
}

// ForgotPassword issues a reset token when email belongs to an account and
// mails the link in the background. It returns the plaintext token, or ""
// for an unknown email; callers must answer both cases identically.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperr.Validation("Please provide an email")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	token, _, err := s.resets.Generate(ctx, u.ID)
	if err != nil {
		return "", err
	}
	log := s.log.WithField("user_id", u.ID)
	log.Info("password reset requested")

	if s.mail != nil {
		link := strings.TrimRight(s.cfg.ResetURLBase, "/") + "/" + token
		go func() {
			mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
			defer cancel()
			if err := s.mail.SendPasswordReset(mctx, u.Email, u.Name, link); err != nil {
				log.WithError(err).Error("failed to send password reset email")
			}
		}()
	}
	return token, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if password == "" {
		return apperr.Validation("Please provide a new password")
	}
	u, err := s.resets.Consume(ctx, token)
	if err != nil {
		return err
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	err = s.users.ResetPassword(ctx, u.ID, HashResetToken(token), hash, s.cfg.Now())
	if errors.Is(err, store.ErrNotFound) {
		// Redeemed or replaced between lookup and write.
		return apperr.ErrInvalidOrExpiredResetToken
	}
	if err != nil {
		return err
	}
	s.log.WithField("user_id", u.ID).Info("password reset completed")
	return nil
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	switch {
	case errors.Is(err, ErrPasswordTooLong):
		return "", apperr.Validation("Password must be at most 72 bytes")
	case errors.Is(err, ErrEmptyPassword):
		return "", apperr.ErrValidation
	}
	return hash, err
}

func (s *Service) session(u *models.User) (*Session, error) {
	access, refresh, issuedAt, err := s.tokens.IssuePair(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: access, RefreshToken: refresh, IssuedAt: issuedAt}, nil
}
