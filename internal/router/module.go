package router

import "github.com/gin-gonic/gin"

// Module is one routable feature area; each implementation mounts its own
// endpoints on the shared API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
