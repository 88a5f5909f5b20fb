package auth

import (
	"errors"
	"net/http"

	"location-service/helper"
	"location-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	result, err := h.authService.Login(c, req.PhoneNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMemberNotFound):
			helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
		case errors.Is(err, ErrPasswordNotSet):
			// The client redirects to the create-password step on this code.
			helper.SendError(c, http.StatusPreconditionRequired, err, helper.ErrInvalidOperation)
		case errors.Is(err, ErrWrongPassword):
			helper.SendError(c, http.StatusUnauthorized, err, helper.ErrUnauthorized)
		default:
			helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		}
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", result)
}

func (h *AuthHandler) SetPassword(c *gin.Context) {

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	result, err := h.authService.SetPassword(c, req.PhoneNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrMemberNotFound):
			helper.SendError(c, http.StatusNotFound, err, helper.ErrNotFound)
		case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordExists):
			helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		default:
			helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		}
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", result)
}

func (h *AuthHandler) GetSession(c *gin.Context) {

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		helper.SendError(c, http.StatusUnauthorized, errors.New("missing session claims"), helper.ErrUnauthorized)
		return
	}

	session, err := h.authService.Restore(c, claims.PhoneNumber)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			helper.SendError(c, http.StatusUnauthorized, err, helper.ErrUnauthorized)
			return
		}
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", session)
}

func (h *AuthHandler) Logout(c *gin.Context) {

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		helper.SendError(c, http.StatusUnauthorized, errors.New("missing session claims"), helper.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(c, claims.PhoneNumber); err != nil {
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", nil)
}
