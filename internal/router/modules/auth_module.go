package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosamir/blogging-api/internal/container"
	handlers "github.com/mosamir/blogging-api/internal/interface/http"
	"github.com/mosamir/blogging-api/internal/interface/middleware"
)

// AuthModule exposes the token-driven flows that run without a session:
// email verification and password reset.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/verify", verifyLimiter, m.Handler.VerifyEmail)
	rg.GET("/auth/verify", verifyLimiter, m.Handler.VerifyEmail)
	rg.POST("/auth/password/forgot", forgotLimiter, m.Handler.ForgotPassword)
	rg.POST("/auth/password/reset", resetLimiter, m.Handler.ResetPassword)
}
