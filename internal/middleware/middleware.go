package middleware

import (
	"errors"
	"net/http"
	"strings"

	"location-service/helper"
	"location-service/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload carried by a session token.
type SessionClaims struct {
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	FamilyName  string `json:"family_name"`
	jwt.RegisteredClaims
}

// Secured validates the bearer token and stores the raw token and decoded
// claims on the request context. Websocket clients cannot set headers from a
// browser, so the token is also accepted as a "token" query parameter.
func Secured(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if !strings.HasPrefix(header, "Bearer ") {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			helper.SendError(c, http.StatusUnauthorized, errors.New("missing bearer token"), helper.ErrUnauthorized)
			c.Abort()
			return
		}

		claims := &SessionClaims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			helper.SendError(c, http.StatusUnauthorized, errors.New("invalid or expired token"), helper.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(constants.Token, tokenString)
		c.Set(constants.Claims, claims)
		c.Next()
	}
}

// RequireAdmin must run after Secured.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(constants.Claims)
		claims, ok := value.(*SessionClaims)
		if !exists || !ok || claims.Role != "admin" {
			helper.SendError(c, http.StatusForbidden, errors.New("administrator privileges required"), helper.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the decoded session claims for the request, if any.
func ClaimsFrom(c *gin.Context) (*SessionClaims, bool) {
	value, exists := c.Get(constants.Claims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*SessionClaims)
	return claims, ok
}
