package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/samber/oops"

	"confer/internal/models"
)

const mysqlDuplicateEntry = 1062

const userColumns = `id, name, email, password_hash, role, photo_url,
	mic_muted, camera_on, preferred_layout, virtual_background,
	total_meetings_hosted, total_meetings_joined,
	reset_password_token, reset_password_expire,
	last_login, created_at, updated_at`

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Create inserts u. The UNIQUE index on email makes the second of two
// concurrent registrations fail with ErrDuplicateEmail.
func (s *MySQLStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.PhotoURL,
		u.Preferences.MicMuted, u.Preferences.CameraOn, u.Preferences.PreferredLayout, u.Preferences.VirtualBackground,
		u.TotalMeetingsHosted, u.TotalMeetingsJoined,
		nullString(u.ResetPasswordToken), nullTime(u.ResetPasswordExpire),
		u.LastLogin, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateEmail
		}
		return oops.Code("STORE_FAILED").With("operation", "Create").Wrap(err)
	}
	return nil
}

func (s *MySQLStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row, "FindByID")
}

func (s *MySQLStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row, "FindByEmail")
}

// FindByResetTokenHash only matches a token whose expiry is after now.
func (s *MySQLStore) FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users
		WHERE reset_password_token = ? AND reset_password_expire > ?`, hash, now)
	return scanUser(row, "FindByResetTokenHash")
}

func (s *MySQLStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return s.exec(ctx, "UpdateLastLogin",
		`UPDATE users SET last_login = ?, updated_at = ? WHERE id = ?`, at, at, id)
}

// UpdatePassword also drops any outstanding reset token.
func (s *MySQLStore) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	return s.exec(ctx, "UpdatePassword",
		`UPDATE users SET password_hash = ?, reset_password_token = NULL, reset_password_expire = NULL,
		updated_at = ? WHERE id = ?`, passwordHash, at, id)
}

// SetResetToken replaces any previous pair, so only the newest token works.
func (s *MySQLStore) SetResetToken(ctx context.Context, id, hash string, expire, at time.Time) error {
	return s.exec(ctx, "SetResetToken",
		`UPDATE users SET reset_password_token = ?, reset_password_expire = ?, updated_at = ? WHERE id = ?`,
		hash, expire, at, id)
}

// ResetPassword swaps the password only while the given token hash is still
// stored and unexpired, and clears it in the same statement. Of two
// concurrent attempts with one token, exactly one sees a matched row.
func (s *MySQLStore) ResetPassword(ctx context.Context, id, hash, passwordHash string, now time.Time) error {
	return s.exec(ctx, "ResetPassword",
		`UPDATE users SET password_hash = ?, reset_password_token = NULL, reset_password_expire = NULL,
		updated_at = ? WHERE id = ? AND reset_password_token = ? AND reset_password_expire > ?`,
		passwordHash, now, id, hash, now)
}

// exec runs an update expected to touch exactly one row. The DSN sets
// clientFoundRows, so RowsAffected counts matched rows.
func (s *MySQLStore) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return oops.Code("STORE_FAILED").With("operation", op).Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.Code("STORE_FAILED").With("operation", op).Wrap(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, op string) (*models.User, error) {
	var (
		u       models.User
		role    string
		token   sql.NullString
		expires sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.PhotoURL,
		&u.Preferences.MicMuted, &u.Preferences.CameraOn, &u.Preferences.PreferredLayout, &u.Preferences.VirtualBackground,
		&u.TotalMeetingsHosted, &u.TotalMeetingsJoined,
		&token, &expires,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("STORE_FAILED").With("operation", op).Wrap(err)
	}
	u.Role = models.Role(role)
	if token.Valid && expires.Valid {
		u.ResetPasswordToken = &token.String
		u.ResetPasswordExpire = &expires.Time
	}
	return &u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
