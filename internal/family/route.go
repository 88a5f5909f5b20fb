package family

import (
	"location-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *FamilyHandler, secret string) {
	familyGroup := r.Group("api/v1/families", middleware.Secured(secret))
	{
		familyGroup.GET("", handler.GetFamilies)
	}

	memberGroup := r.Group("api/v1/members", middleware.Secured(secret))
	{
		memberGroup.GET("", handler.GetMembers)
	}

	adminFamilies := r.Group("api/v1/families", middleware.Secured(secret), middleware.RequireAdmin())
	{
		adminFamilies.POST("", handler.CreateFamily)
		adminFamilies.DELETE("/:familyId", handler.DeleteFamily)
	}

	adminMembers := r.Group("api/v1/members", middleware.Secured(secret), middleware.RequireAdmin())
	{
		adminMembers.POST("", handler.CreateMember)
		adminMembers.PUT("/:memberId", handler.UpdateMember)
		adminMembers.DELETE("/:memberId", handler.DeleteMember)
	}
}
