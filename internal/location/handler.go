package location

import (
	"errors"
	"net/http"

	"location-service/helper"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locationService LocationService
	hub             *Hub
}

func NewLocationHandler(locationService LocationService, hub *Hub) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		hub:             hub,
	}
}

func (h *LocationHandler) SubmitLocation(c *gin.Context) {

	var req SubmitLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidRequest)
		return
	}

	if err := h.locationService.Submit(c, c.Param("mobile"), &req); err != nil {
		helper.SendError(c, http.StatusBadRequest, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusCreated, "success", nil)
}

func (h *LocationHandler) GetLiveView(c *gin.Context) {
	helper.SendSuccess(c, http.StatusOK, "success", h.locationService.View(c.Query("family")))
}

func (h *LocationHandler) GetHistory(c *gin.Context) {

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		helper.SendError(c, http.StatusBadRequest, errors.New("start_date and end_date are required"), helper.ErrInvalidRequest)
		return
	}

	entries, err := h.locationService.HistoryRange(c, c.Param("mobile"), startDate, endDate)
	if err != nil {
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", entries)
}

func (h *LocationHandler) GetHistoryDates(c *gin.Context) {

	dates, err := h.locationService.AvailableDates(c, c.Param("mobile"))
	if err != nil {
		helper.SendError(c, http.StatusInternalServerError, err, helper.ErrInvalidOperation)
		return
	}

	helper.SendSuccess(c, http.StatusOK, "success", dates)
}

func (h *LocationHandler) StreamLocations(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
