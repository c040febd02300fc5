package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

const (
	LayoutGrid    = "grid"
	LayoutSpeaker = "speaker"
)

// Column widths of the users table, in characters.
const (
	MaxNameLength  = 100
	MaxEmailLength = 255
)

var EmailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// MeetingPreferences is stored with the account; nothing in the account
// service reads or changes it after creation.
type MeetingPreferences struct {
	MicMuted          bool   `json:"micMuted"`
	CameraOn          bool   `json:"cameraOn"`
	PreferredLayout   string `json:"preferredLayout"`
	VirtualBackground string `json:"virtualBackground"`
}

func DefaultMeetingPreferences() MeetingPreferences {
	return MeetingPreferences{MicMuted: true, PreferredLayout: LayoutGrid}
}

type User struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Email               string             `json:"email"`
	PasswordHash        string             `json:"-"`
	Role                Role               `json:"role"`
	PhotoURL            string             `json:"photoURL"`
	Preferences         MeetingPreferences `json:"meetingPreferences"`
	TotalMeetingsHosted int                `json:"totalMeetingsHosted"`
	TotalMeetingsJoined int                `json:"totalMeetingsJoined"`
	ResetPasswordToken  *string            `json:"-"`
	ResetPasswordExpire *time.Time         `json:"-"`
	LastLogin           time.Time          `json:"lastLogin"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

// NewUser applies the creation defaults. passwordHash must already be hashed.
func NewUser(id, name, email, passwordHash string, now time.Time) *User {
	return &User{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Preferences:  DefaultMeetingPreferences(),
		LastLogin:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks the fields a stored user must always satisfy.
func (u *User) Validate() error {
	switch {
	case u.Name == "":
		return errors.New("Please add a name")
	case utf8.RuneCountInString(u.Name) > MaxNameLength:
		return errors.New("Name must be at most 100 characters")
	case u.Email == "":
		return errors.New("Please add an email")
	case utf8.RuneCountInString(u.Email) > MaxEmailLength:
		return errors.New("Email must be at most 255 characters")
	case !EmailPattern.MatchString(u.Email):
		return errors.New("Please enter a valid email")
	case u.PasswordHash == "":
		return errors.New("password is required")
	case !u.Role.Valid():
		return errors.New("invalid role")
	case (u.ResetPasswordToken == nil) != (u.ResetPasswordExpire == nil):
		return errors.New("reset token and expiry must be set together")
	}
	switch u.Preferences.PreferredLayout {
	case LayoutGrid, LayoutSpeaker:
	default:
		return errors.New("invalid preferred layout")
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias stored state.
func (u *User) Clone() *User {
	c := *u
	if u.ResetPasswordToken != nil {
		tok := *u.ResetPasswordToken
		c.ResetPasswordToken = &tok
	}
	if u.ResetPasswordExpire != nil {
		exp := *u.ResetPasswordExpire
		c.ResetPasswordExpire = &exp
	}
	return &c
}
