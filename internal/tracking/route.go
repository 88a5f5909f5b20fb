package tracking

import (
	"location-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *TrackingHandler, secret string) {
	trackingGroup := r.Group("api/v1/tracking", middleware.Secured(secret))
	{
		trackingGroup.POST("/:mobile", handler.StartTracking)
		trackingGroup.DELETE("", handler.StopTracking)
		trackingGroup.GET("", handler.GetTracking)
	}
}
