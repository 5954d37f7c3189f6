package spaces

import (
	"spacehub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSpaceRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse listings and availability
	publicSpaces := router.Group("/spaces")
	{
		publicSpaces.GET("", controller.ListSpaces)
		publicSpaces.GET("/:id", controller.GetSpace)
		publicSpaces.GET("/:id/rooms/:roomId", controller.GetRoom)
		publicSpaces.GET("/:id/rooms/:roomId/availability", controller.GetRoomAvailability)
	}

	// Owner routes - space owners manage their listings
	ownerSpaces := router.Group("/spaces")
	ownerSpaces.Use(middleware.JWTAuth(), middleware.RequireRoles("OWNER", "ADMIN"))
	{
		ownerSpaces.POST("", controller.CreateSpace)
		ownerSpaces.POST("/:id/rooms", controller.CreateRoom)
	}

	// Admin routes - listing moderation
	adminSpaces := router.Group("/admin/spaces")
	adminSpaces.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminSpaces.POST("/:id/approve", controller.ApproveSpace)
	}
}
