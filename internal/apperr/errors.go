// Package apperr defines the errors the HTTP layer knows how to render.
// Anything that is not an *Error is treated as an internal failure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation               = "VALIDATION_ERROR"
	CodeEmailInUse               = "EMAIL_IN_USE"
	CodeInvalidCredentials       = "INVALID_CREDENTIALS"
	CodeNoToken                  = "NO_TOKEN"
	CodeInvalidToken             = "INVALID_TOKEN"
	CodeUserNotFound             = "USER_NOT_FOUND"
	CodeNoRefreshToken           = "NO_REFRESH_TOKEN"
	CodeInvalidRefreshToken      = "INVALID_REFRESH_TOKEN"
	CodeWrongPassword            = "WRONG_PASSWORD"
	CodeInvalidOrExpiredResetTok = "INVALID_OR_EXPIRED_RESET_TOKEN"
	CodeInternal                 = "INTERNAL_ERROR"
)

type Error struct {
	Code    string
	Message string
	Status  int
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code, so an error built by Validation still satisfies
// errors.Is(err, ErrValidation).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Validation returns a 400 carrying a field specific message.
func Validation(message string) *Error {
	return New(CodeValidation, message, http.StatusBadRequest)
}

var (
	ErrValidation                 = New(CodeValidation, "Please provide all required fields", http.StatusBadRequest)
	ErrEmailInUse                 = New(CodeEmailInUse, "Email already registered", http.StatusConflict)
	ErrInvalidCredentials         = New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized)
	ErrNoToken                    = New(CodeNoToken, "Not authorized, no token", http.StatusUnauthorized)
	ErrInvalidToken               = New(CodeInvalidToken, "Not authorized, invalid token", http.StatusUnauthorized)
	ErrUserNotFound               = New(CodeUserNotFound, "User not found", http.StatusUnauthorized)
	ErrNoRefreshToken             = New(CodeNoRefreshToken, "No refresh token", http.StatusUnauthorized)
	ErrInvalidRefreshToken        = New(CodeInvalidRefreshToken, "Invalid refresh token", http.StatusUnauthorized)
	ErrWrongPassword              = New(CodeWrongPassword, "Current password is incorrect", http.StatusBadRequest)
	ErrInvalidOrExpiredResetToken = New(CodeInvalidOrExpiredResetTok, "Invalid or expired reset token", http.StatusBadRequest)
	ErrInternal                   = New(CodeInternal, "Internal server error", http.StatusInternalServerError)
)

// From resolves err to the *Error that should be shown to a client.
// The second result is false when err carried no *Error and ErrInternal
// was substituted.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return ErrInternal, false
}
