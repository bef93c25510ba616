package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mosamir/blogging-api/internal/container"
	handlers "github.com/mosamir/blogging-api/internal/interface/http"
	"github.com/mosamir/blogging-api/internal/interface/middleware"
	"github.com/mosamir/blogging-api/pkg/helpers"
)

// PostModule wires the content routes: posts, comments, likes and tags.
// Reads are public, writes require a session.
type PostModule struct {
	Handler *handlers.PostHandler
	JWT     *helpers.JWTManager
}

func NewPostModule(h *handlers.PostHandler, jwt *helpers.JWTManager) *PostModule {
	return &PostModule{Handler: h, JWT: jwt}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/posts/search", readLimiter, m.Handler.Search)
	rg.GET("/posts/:id", readLimiter, m.Handler.Get)
	rg.GET("/posts/:id/comments", readLimiter, m.Handler.ListComments)
	rg.GET("/posts/:id/likes", readLimiter, m.Handler.ListLikes)
	rg.GET("/users/:id/posts", readLimiter, m.Handler.ListByUser)
	rg.GET("/tags/:name", readLimiter, m.Handler.GetTag)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/posts", m.Handler.Create)
		auth.PUT("/posts/:id", m.Handler.Update)
		auth.DELETE("/posts/:id", m.Handler.Delete)

		auth.POST("/posts/:id/comments", m.Handler.AddComment)
		auth.PUT("/posts/:id/comments/:commentId", m.Handler.UpdateComment)
		auth.DELETE("/posts/:id/comments/:commentId", m.Handler.DeleteComment)

		auth.POST("/posts/:id/likes", m.Handler.AddLike)
		auth.DELETE("/posts/:id/likes", m.Handler.RemoveLike)

		auth.POST("/tags", m.Handler.CreateTag)
		auth.POST("/posts/:id/tags/:tagId", m.Handler.AttachTag)
		auth.DELETE("/posts/:id/tags/:tagId", m.Handler.DetachTag)
	}
}
