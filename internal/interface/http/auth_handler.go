package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mosamir/blogging-api/internal/application"
	"github.com/mosamir/blogging-api/pkg/response"
	"github.com/mosamir/blogging-api/pkg/validation"
)

// AuthHandler covers the out-of-band auth flows: email verification and
// password reset. Login and refresh live on UserHandler.
type AuthHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type verifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// VerifyEmail consumes a verification token from the emailed link.
// Expired and already-used tokens both come back as 400.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// accept ?token= as well so the emailed link can hit this directly
		if q := c.Query("token"); q != "" {
			req.Token = q
		} else {
			response.Error[any](c, http.StatusBadRequest, "token required", validation.ToDetails(err))
			return
		}
	}
	if err := h.Svc.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, application.ErrInvalidToken) {
			response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"verified": true}, "email verified", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("password reset request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "request failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"sent": true}, "if the email exists, a reset link was sent", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, application.ErrInvalidToken) {
			response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "reset failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"reset": true}, "password updated", nil)
}
