package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosamir/blogging-api/internal/container"
	handlers "github.com/mosamir/blogging-api/internal/interface/http"
	"github.com/mosamir/blogging-api/internal/interface/middleware"
	"github.com/mosamir/blogging-api/pkg/helpers"
)

type FollowModule struct {
	Handler *handlers.FollowHandler
	JWT     *helpers.JWTManager
}

func NewFollowModule(h *handlers.FollowHandler, jwt *helpers.JWTManager) *FollowModule {
	return &FollowModule{Handler: h, JWT: jwt}
}

func (m *FollowModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/users/:id", m.Handler.GetUser)
		auth.POST("/users/:id/follow", m.Handler.Follow)
		auth.DELETE("/users/:id/follow", m.Handler.Unfollow)
		auth.GET("/users/:id/followers", m.Handler.Followers)
		auth.GET("/users/:id/following", m.Handler.Following)
	}
}
