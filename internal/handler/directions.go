package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/directions"
	"roadtrip/internal/service"
)

// DirectionsHandler relays route requests to the directions provider.
type DirectionsHandler struct {
	directionsService *service.DirectionsService
}

// NewDirectionsHandler creates a new DirectionsHandler.
func NewDirectionsHandler(directionsService *service.DirectionsService) *DirectionsHandler {
	return &DirectionsHandler{directionsService: directionsService}
}

// Route handles POST /v1/directions
func (h *DirectionsHandler) Route(c *gin.Context) {
	var req directions.RelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	route, err := h.directionsService.Route(c.Request.Context(), req.Points())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, directions.NewRelayRoute(route))
}
