package auth

import (
	"net/http"

	authsvc "confer/internal/auth"
	"confer/internal/models"
	"confer/internal/utils"
	"confer/internal/validation"
)

type RegisterHandler struct {
	Service  *authsvc.Service
	Validate *validation.Validator
	Cookie   utils.RefreshCookie
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"notblank,max=255,account_email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is the body of a successful register or login. The
// refresh token travels only in the cookie.
type SessionResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

// ServeHTTP handles POST /api/users/register
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	sess, err := h.Service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	h.Cookie.Set(w, sess.RefreshToken, sess.IssuedAt)
	utils.JSON(w, http.StatusCreated, SessionResponse{
		Message: "User registered successfully",
		User:    sess.User,
		Token:   sess.AccessToken,
	})
}
