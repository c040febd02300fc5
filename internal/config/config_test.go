package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv(env(map[string]string{"JWT_SECRET": "s"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, ":8080", c.Addr())
	assert.Equal(t, "s", c.JWTRefreshSecret, "refresh secret falls back to access secret")
	assert.Equal(t, 15*time.Minute, c.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, c.RefreshTTL)
	assert.Equal(t, 7*24*time.Hour, c.CookieMaxAge)
	assert.Equal(t, 15*time.Minute, c.ResetTTL)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, []string{"http://localhost:5173"}, c.CORSOrigins)
	assert.False(t, c.ExposeResetToken)
	assert.False(t, c.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		"JWT_SECRET":                 "a",
		"JWT_REFRESH_SECRET":         "b",
		"JWT_EXPIRE":                 "30m",
		"JWT_REFRESH_EXPIRE":         "2d",
		"JWT_COOKIE_EXPIRE":          "2",
		"RESET_TOKEN_EXPIRE_MINUTES": "5",
		"EXPOSE_RESET_TOKEN":         "true",
		"CORS_ORIGINS":               "https://a.example, https://b.example ,",
		"RESET_URL_BASE":             "https://app.example/reset/",
	}))
	require.NoError(t, err)

	assert.Equal(t, "b", c.JWTRefreshSecret)
	assert.Equal(t, 30*time.Minute, c.AccessTTL)
	assert.Equal(t, 48*time.Hour, c.RefreshTTL)
	assert.Equal(t, 48*time.Hour, c.CookieMaxAge)
	assert.Equal(t, 5*time.Minute, c.ResetTTL)
	assert.True(t, c.ExposeResetToken)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	assert.Equal(t, "https://app.example/reset", c.ResetURLBase)
}

func TestFromEnv_ProductionNeverExposesResetToken(t *testing.T) {
	c, err := FromEnv(env(map[string]string{
		"JWT_SECRET":         "a",
		"ENV":                "production",
		"DB_DSN":             "u:p@tcp(db:3306)/confer",
		"EXPOSE_RESET_TOKEN": "true",
	}))
	require.NoError(t, err)
	assert.True(t, c.IsProduction())
	assert.False(t, c.ExposeResetToken)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"bad access ttl", map[string]string{"JWT_SECRET": "s", "JWT_EXPIRE": "soon"}, "JWT_EXPIRE"},
		{"zero reset ttl", map[string]string{"JWT_SECRET": "s", "RESET_TOKEN_EXPIRE_MINUTES": "0"}, "reset token ttl"},
		{"bcrypt cost too low", map[string]string{"JWT_SECRET": "s", "BCRYPT_COST": "2"}, "bcrypt cost"},
		{"production without dsn", map[string]string{"JWT_SECRET": "s", "ENV": "production"}, "DB_DSN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"0.5d", 12 * time.Hour},
		{"900", 900 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "xd", "forever"} {
		_, err := ParseTTL(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
