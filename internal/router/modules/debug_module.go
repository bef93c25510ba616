package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosamir/blogging-api/internal/container"
	"github.com/mosamir/blogging-api/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// internal callers on private networks bypass the limiter
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
