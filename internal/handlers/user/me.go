package user

import (
	"net/http"

	"confer/internal/apperr"
	"confer/internal/middleware"
	"confer/internal/models"
	"confer/internal/utils"
)

type MeHandler struct{}

type MeResponse struct {
	User *models.User `json:"user"`
}

// ServeHTTP handles GET /api/users/me. The user was loaded by AuthJWT.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.WriteError(w, r, apperr.ErrNoToken)
		return
	}
	utils.JSON(w, http.StatusOK, MeResponse{User: u})
}
