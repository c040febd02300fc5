package auth

import (
	"net/http"

	authsvc "confer/internal/auth"
	"confer/internal/utils"
	"confer/internal/validation"
)

type LoginHandler struct {
	Service  *authsvc.Service
	Validate *validation.Validator
	Cookie   utils.RefreshCookie
}

type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// ServeHTTP handles POST /api/users/login
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	sess, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	h.Cookie.Set(w, sess.RefreshToken, sess.IssuedAt)
	utils.JSON(w, http.StatusOK, SessionResponse{
		Message: "Login successful",
		User:    sess.User,
		Token:   sess.AccessToken,
	})
}
