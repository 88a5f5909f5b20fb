package location

import (
	"location-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *LocationHandler, secret string) {
	locationGroup := r.Group("api/v1/locations", middleware.Secured(secret))
	{
		locationGroup.POST("/:mobile", handler.SubmitLocation)
		locationGroup.GET("", handler.GetLiveView)
		locationGroup.GET("/stream", handler.StreamLocations)
		locationGroup.GET("/:mobile/history", handler.GetHistory)
		locationGroup.GET("/:mobile/history/dates", handler.GetHistoryDates)
	}
}
