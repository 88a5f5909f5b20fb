package tracking

import (
	"errors"
	"net/http"

	"location-service/helper"

	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	manager *Manager
}

func NewTrackingHandler(manager *Manager) *TrackingHandler {
	return &TrackingHandler{
		manager: manager,
	}
}

func (h *TrackingHandler) StartTracking(c *gin.Context) {

	mobile := c.Param("mobile")
	if mobile == "" {
		helper.SendError(c, http.StatusBadRequest, errors.New("mobile number is required"), helper.ErrInvalidRequest)
		return
	}

	h.manager.Start(mobile)
	helper.SendSuccess(c, http.StatusOK, "success", h.manager.Status())
}

func (h *TrackingHandler) StopTracking(c *gin.Context) {
	h.manager.Stop()
	helper.SendSuccess(c, http.StatusOK, "success", nil)
}

func (h *TrackingHandler) GetTracking(c *gin.Context) {
	helper.SendSuccess(c, http.StatusOK, "success", gin.H{
		"status": h.manager.Status(),
		"path":   h.manager.Path(),
	})
}
