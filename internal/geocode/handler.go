package geocode

import (
	"fmt"
	"net/http"
	"strconv"

	"location-service/helper"

	"github.com/gin-gonic/gin"
)

type GeocodeHandler struct {
	geocodeService GeocodeService
}

func NewGeocodeHandler(geocodeService GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeService: geocodeService,
	}
}

func (h *GeocodeHandler) ReverseGeocode(c *gin.Context) {

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		helper.SendError(c, http.StatusBadRequest, fmt.Errorf("invalid lat: %q", c.Query("lat")), helper.ErrInvalidRequest)
		return
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		helper.SendError(c, http.StatusBadRequest, fmt.Errorf("invalid lon: %q", c.Query("lon")), helper.ErrInvalidRequest)
		return
	}

	short := c.Query("short") == "true"

	address := h.geocodeService.CachedAddress(c, lat, lon, short)

	helper.SendSuccess(c, http.StatusOK, "success", gin.H{"address": address})
}
