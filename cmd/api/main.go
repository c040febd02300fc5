package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"confer/internal/auth"
	"confer/internal/config"
	"confer/internal/database"
	"confer/internal/logging"
	"confer/internal/mailer"
	"confer/internal/server"
	"confer/internal/store"
	"confer/internal/utils"
	"confer/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config error")
	}
	log := logging.New(cfg.Env, cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server error")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	users, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}, nil)
	if err != nil {
		return err
	}

	svc, err := auth.NewService(users, auth.NewBcryptHasher(cfg.BcryptCost), tokens, newMailer(cfg, log), log, auth.Config{
		ResetTTL:     cfg.ResetTTL,
		ResetURLBase: cfg.ResetURLBase,
	})
	if err != nil {
		return err
	}

	srv := server.NewServer(server.Options{
		Addr:             cfg.Addr(),
		CORSOrigins:      cfg.CORSOrigins,
		Cookie:           utils.RefreshCookie{MaxAge: cfg.CookieMaxAge, Secure: cfg.IsProduction()},
		ExposeResetToken: cfg.ExposeResetToken,
	}, svc, validation.New(), log)
	return srv.Run(ctx)
}

// openStore connects to MySQL and applies migrations, or falls back to the
// in-memory store when no DSN is configured outside production.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (auth.UserStore, func(), error) {
	if cfg.DSN == "" {
		log.Warn("DB_DSN not set, using in-memory user store")
		return store.NewMemoryStore(), func() {}, nil
	}

	db, err := database.Connect(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	log.Info("MySQL connected")

	if err := database.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store.NewMySQLStore(db), func() { _ = db.Close() }, nil
}

func newMailer(cfg *config.Config, log logrus.FieldLogger) mailer.Sender {
	if cfg.SMTP.Host == "" {
		log.Warn("SMTP_HOST not set, password reset mails will not be delivered")
		return mailer.NewLogSender(log)
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}
