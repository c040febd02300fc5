package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"confer/internal/apperr"
	authsvc "confer/internal/auth"
	"confer/internal/middleware"
	"confer/internal/utils"
	"confer/internal/validation"
)

type ChangePasswordHandler struct {
	Service  *authsvc.Service
	Validate *validation.Validator
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// ServeHTTP handles POST /api/users/change-password
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.WriteError(w, r, apperr.ErrNoToken)
		return
	}

	var req ChangePasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Message(w, http.StatusOK, "Password updated successfully")
}

type ForgotPasswordHandler struct {
	Service  *authsvc.Service
	Validate *validation.Validator
	// ExposeResetToken echoes the token in the body for local development.
	ExposeResetToken bool
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"notblank"`
}

type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent"

// ServeHTTP handles POST /api/users/forgot-password. Known and unknown
// emails get the same answer.
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	token, err := h.Service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	resp := ForgotPasswordResponse{Message: forgotPasswordMessage}
	if h.ExposeResetToken {
		resp.ResetToken = token
	}
	utils.JSON(w, http.StatusOK, resp)
}

type ResetPasswordHandler struct {
	Service  *authsvc.Service
	Validate *validation.Validator
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// ServeHTTP handles POST /api/users/reset-password/{token}
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Message(w, http.StatusOK, "Password reset successful")
}
