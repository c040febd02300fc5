package middleware

import (
	"context"
	"net/http"
	"strings"

	"confer/internal/apperr"
	"confer/internal/models"
	"confer/internal/utils"
)

type ctxKey string

const UserKey ctxKey = "user"

// Authenticator resolves a bearer access token to the account it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthJWT rejects requests without a valid "Authorization: Bearer" access
// token and stores the resolved user in the request context.
func AuthJWT(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				utils.WriteError(w, r, apperr.ErrNoToken)
				return
			}
			u, err := a.Authenticate(r.Context(), token)
			if err != nil {
				utils.WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(UserKey).(*models.User)
	return u, ok && u != nil
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
