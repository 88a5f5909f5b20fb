package geocode

import (
	"location-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *GeocodeHandler, secret string) {
	geocodeGroup := r.Group("api/v1/geocode", middleware.Secured(secret))
	{
		geocodeGroup.GET("", handler.ReverseGeocode)
	}
}
