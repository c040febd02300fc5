package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	authsvc "confer/internal/auth"
	"confer/internal/handlers"
	"confer/internal/handlers/auth"
	"confer/internal/handlers/user"
	"confer/internal/middleware"
	"confer/internal/utils"
	"confer/internal/validation"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Addr             string
	CORSOrigins      []string
	Cookie           utils.RefreshCookie
	ExposeResetToken bool
}

type Server struct {
	opts     Options
	service  *authsvc.Service
	validate *validation.Validator
	log      logrus.FieldLogger
}

func NewServer(opts Options, service *authsvc.Service, validate *validation.Validator, log logrus.FieldLogger) *Server {
	return &Server{
		opts:     opts,
		service:  service,
		validate: validate,
		log:      log,
	}
}

func HandlerFunc(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// middlewares
	r.Use(middleware.RequestID(s.log))
	r.Use(middleware.Logger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "Welcome to confer API! Server is running....")
	})
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/users", func(r chi.Router) {
		// public
		r.Post("/register", HandlerFunc(&auth.RegisterHandler{Service: s.service, Validate: s.validate, Cookie: s.opts.Cookie}))
		r.Post("/login", HandlerFunc(&auth.LoginHandler{Service: s.service, Validate: s.validate, Cookie: s.opts.Cookie}))
		r.Post("/refresh", HandlerFunc(&auth.RefreshHandler{Service: s.service}))
		r.Post("/logout", HandlerFunc(&auth.LogoutHandler{Cookie: s.opts.Cookie}))
		r.Post("/forgot-password", HandlerFunc(&auth.ForgotPasswordHandler{
			Service:          s.service,
			Validate:         s.validate,
			ExposeResetToken: s.opts.ExposeResetToken,
		}))
		r.Post("/reset-password/{token}", HandlerFunc(&auth.ResetPasswordHandler{Service: s.service, Validate: s.validate}))

		// authenticated
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(s.service))
			r.Get("/me", HandlerFunc(&user.MeHandler{}))
			r.Post("/change-password", HandlerFunc(&auth.ChangePasswordHandler{Service: s.service, Validate: s.validate}))
		})
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.opts.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
