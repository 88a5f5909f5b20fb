package helper

import (
	"github.com/gin-gonic/gin"
)

const (
	ErrInvalidRequest   = "INVALID_REQUEST"
	ErrInvalidOperation = "INVALID_OPERATION"
	ErrUnauthorized     = "UNAUTHORIZED"
	ErrForbidden        = "FORBIDDEN"
	ErrNotFound         = "NOT_FOUND"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SendSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SendError(c *gin.Context, status int, err error, code string) {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Code:    code,
	})
}
