package router

import (
	"github.com/mosamir/blogging-api/internal/application"
	"github.com/mosamir/blogging-api/internal/container"
	"github.com/mosamir/blogging-api/internal/infrastructure/postgres"
	handlers "github.com/mosamir/blogging-api/internal/interface/http"
	"github.com/mosamir/blogging-api/internal/router/modules"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	pool := container.GetPGPool()
	cfg := container.GetConfig()
	logger := container.GetLogger()
	jwt := container.GetJWT()

	users := postgres.NewUserRepository(pool)
	follows := postgres.NewFollowRepository(pool)
	posts := postgres.NewPostRepository(pool)
	comments := postgres.NewCommentRepository(pool)
	likes := postgres.NewLikeRepository(pool)
	tags := postgres.NewTagRepository(pool)
	tokens := postgres.NewTokenRepository(pool)

	var postIndex application.PostIndex
	if es := container.GetES(); es != nil {
		postIndex = application.NewESPostIndex(es, cfg.ESPostsIndex, logger)
	}

	userSvc := application.NewUserService(users, tokens, jwt, container.GetRedis(), logger,
		container.GetRabbitPub(), cfg, container.GetGCS(), cfg.GCSBucket, postIndex)
	followSvc := application.NewFollowService(users, follows, logger)
	postSvc := application.NewPostService(posts, comments, likes, tags, logger, postIndex)

	userHandler := handlers.NewUserHandler(userSvc, jwt, logger, cfg.CookieDomain, cfg.CookieSecure)
	authHandler := handlers.NewAuthHandler(userSvc, logger)
	followHandler := handlers.NewFollowHandler(followSvc, logger)
	postHandler := handlers.NewPostHandler(postSvc, logger)
	emailHandler := handlers.NewEmailHandler(container.GetRabbitPub(), logger)

	r.Add(modules.NewUserModule(userHandler, jwt))
	r.Add(modules.NewAuthModule(authHandler))
	r.Add(modules.NewFollowModule(followHandler, jwt))
	r.Add(modules.NewPostModule(postHandler, jwt))
	r.Add(modules.NewEmailModule(emailHandler, jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
