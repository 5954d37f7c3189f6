package reviews

import (
	"spacehub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReviewRoutes(router *gin.RouterGroup, controller Controller) {
	// Anyone can read a space's reviews; leaving one requires a login.
	reviews := router.Group("/spaces/:id/reviews")
	{
		reviews.GET("", controller.ListReviews)
		reviews.POST("", middleware.JWTAuth(), controller.AddReview)
	}
}
