package auth

import (
	"location-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, handler *AuthHandler, secret string) {
	authGroup := r.Group("api/v1/auth")
	{
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/password", handler.SetPassword)
	}

	sessionGroup := r.Group("api/v1/auth", middleware.Secured(secret))
	{
		sessionGroup.GET("/session", handler.GetSession)
		sessionGroup.DELETE("/logout", handler.Logout)
	}
}
