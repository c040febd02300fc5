package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const EnvProduction = "production"

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Config struct {
	Port     string
	Env      string
	DSN      string
	LogLevel string

	JWTSecret        string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	CookieMaxAge     time.Duration
	ResetTTL         time.Duration

	// ExposeResetToken is already gated on Env; it is never true in production.
	ExposeResetToken bool
	ResetURLBase     string
	CORSOrigins      []string
	BcryptCost       int

	SMTP SMTPConfig
}

// Load reads the process environment, after merging an optional .env file,
// and returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests need not touch the
// process environment.
func FromEnv(lookup func(string) string) (*Config, error) {
	get := func(k, def string) string {
		if v := strings.TrimSpace(lookup(k)); v != "" {
			return v
		}
		return def
	}

	var errs []error
	c := &Config{
		Port:         get("PORT", "8080"),
		Env:          get("ENV", "development"),
		DSN:          get("DB_DSN", ""),
		LogLevel:     get("LOG_LEVEL", "info"),
		JWTSecret:    get("JWT_SECRET", ""),
		ResetURLBase: strings.TrimRight(get("RESET_URL_BASE", "http://localhost:5173/reset-password"), "/"),
		CORSOrigins:  splitList(get("CORS_ORIGINS", "http://localhost:5173")),
	}
	c.JWTRefreshSecret = get("JWT_REFRESH_SECRET", c.JWTSecret)

	var err error
	if c.AccessTTL, err = ParseTTL(get("JWT_EXPIRE", "15m")); err != nil {
		errs = append(errs, fmt.Errorf("JWT_EXPIRE: %w", err))
	}
	if c.RefreshTTL, err = ParseTTL(get("JWT_REFRESH_EXPIRE", "7d")); err != nil {
		errs = append(errs, fmt.Errorf("JWT_REFRESH_EXPIRE: %w", err))
	}
	days, err := strconv.Atoi(get("JWT_COOKIE_EXPIRE", "7"))
	if err != nil {
		errs = append(errs, fmt.Errorf("JWT_COOKIE_EXPIRE: %w", err))
	}
	c.CookieMaxAge = time.Duration(days) * 24 * time.Hour

	minutes, err := strconv.Atoi(get("RESET_TOKEN_EXPIRE_MINUTES", "15"))
	if err != nil {
		errs = append(errs, fmt.Errorf("RESET_TOKEN_EXPIRE_MINUTES: %w", err))
	}
	c.ResetTTL = time.Duration(minutes) * time.Minute

	if c.BcryptCost, err = strconv.Atoi(get("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost))); err != nil {
		errs = append(errs, fmt.Errorf("BCRYPT_COST: %w", err))
	}

	expose, err := strconv.ParseBool(get("EXPOSE_RESET_TOKEN", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("EXPOSE_RESET_TOKEN: %w", err))
	}
	c.ExposeResetToken = expose && !c.IsProduction()

	c.SMTP = SMTPConfig{
		Host:     get("SMTP_HOST", ""),
		Username: get("SMTP_USER", ""),
		Password: get("SMTP_PASSWORD", ""),
		From:     get("SMTP_FROM", "no-reply@confer.local"),
	}
	if c.SMTP.Port, err = strconv.Atoi(get("SMTP_PORT", "587")); err != nil {
		errs = append(errs, fmt.Errorf("SMTP_PORT: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing env: JWT_SECRET"))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("access token ttl must be positive"))
	}
	if c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("refresh token ttl must be positive"))
	}
	if c.CookieMaxAge <= 0 {
		errs = append(errs, errors.New("refresh cookie max-age must be positive"))
	}
	if c.ResetTTL <= 0 {
		errs = append(errs, errors.New("reset token ttl must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.IsProduction() && c.DSN == "" {
		errs = append(errs, errors.New("missing env: DB_DSN (in-memory store is not allowed in production)"))
	}
	return errors.Join(errs...)
}

// ParseTTL accepts Go durations ("15m", "1h30m"), whole days ("7d") and bare
// numbers, which are read as seconds.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(days * float64(24*time.Hour)), nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
