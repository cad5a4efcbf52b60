package v1

import (
	"github.com/gin-gonic/gin"
)

// ResourceRouteHandler defines the interface for record collection
// handlers. All resource handlers must implement these methods.
type ResourceRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterResourceRoutes registers standard CRUD routes for a record
// collection. This eliminates the need to manually wire up routes for each
// resource.
func RegisterResourceRoutes(group *gin.RouterGroup, handler ResourceRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PATCH("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
