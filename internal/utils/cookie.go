package utils

import (
	"net/http"
	"time"
)

const RefreshCookieName = "refreshToken"

// RefreshCookie carries the attributes shared by setting and clearing the
// refresh token cookie; browsers only drop a cookie whose attributes match.
type RefreshCookie struct {
	MaxAge time.Duration
	Secure bool
}

func (c RefreshCookie) Set(w http.ResponseWriter, token string, now time.Time) {
	http.SetCookie(w, c.cookie(token, int(c.MaxAge/time.Second), now.Add(c.MaxAge)))
}

func (c RefreshCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1, time.Unix(0, 0)))
}

func (c RefreshCookie) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ReadRefreshCookie returns the refresh token or "" when none was sent.
func ReadRefreshCookie(r *http.Request) string {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
