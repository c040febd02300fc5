package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"confer/internal/utils"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, echoed in the response header,
// and stores a logger carrying that id in the request context.
func RequestID(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			entry := log.WithField("request_id", id)
			next.ServeHTTP(w, r.WithContext(utils.WithLogger(r.Context(), entry)))
		})
	}
}
