package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/oops"

	"confer/internal/apperr"
)

const maxBodyBytes = 1 << 20

type MessageResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Message: msg})
}

// WriteError renders err as {message}. Errors that are not *apperr.Error are
// logged and answered with a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e, known := apperr.From(err)
	if !known || e.Status >= http.StatusInternalServerError {
		entry := Logger(r.Context()).WithError(err)
		if oopsErr, ok := oops.AsOops(err); ok {
			if code := oopsErr.Code(); code != nil {
				entry = entry.WithField("code", code)
			}
			for k, v := range oopsErr.Context() {
				entry = entry.WithField(k, v)
			}
		}
		entry.Error("request failed")
	}
	Message(w, e.Status, e.Message)
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst at its
// zero value so that field validation reports what is missing.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Validation("Invalid request body")
}
