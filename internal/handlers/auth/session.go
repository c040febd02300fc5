package auth

import (
	"net/http"

	authsvc "confer/internal/auth"
	"confer/internal/utils"
)

type RefreshHandler struct {
	Service *authsvc.Service
}

type TokenResponse struct {
	Token string `json:"token"`
}

// ServeHTTP handles POST /api/users/refresh
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, err := h.Service.Refresh(r.Context(), utils.ReadRefreshCookie(r))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, TokenResponse{Token: token})
}

type LogoutHandler struct {
	Cookie utils.RefreshCookie
}

// ServeHTTP handles POST /api/users/logout. It always succeeds.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Cookie.Clear(w)
	utils.Message(w, http.StatusOK, "Logged out successfully")
}
