package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/api"
	"roadtrip/internal/domain"
	"roadtrip/internal/places"
	"roadtrip/internal/service"
)

// MapsHandler handles geocoding requests.
type MapsHandler struct {
	geocoding *service.GeocodingService
}

// NewMapsHandler creates a new MapsHandler.
func NewMapsHandler(geocoding *service.GeocodingService) *MapsHandler {
	return &MapsHandler{geocoding: geocoding}
}

// Geocode handles POST /v1/maps/geocode
func (h *MapsHandler) Geocode(c *gin.Context) {
	var req api.GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	place, err := h.geocoding.Geocode(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPlaceResponse(place))
}

// ReverseGeocode handles POST /v1/maps/reverse-geocode
func (h *MapsHandler) ReverseGeocode(c *gin.Context) {
	var req api.ReverseGeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		respondBadRequest(c, "latitude and longitude are required")
		return
	}

	pos := domain.Coordinates{Lat: *req.Latitude, Lng: *req.Longitude}
	place, err := h.geocoding.ReverseGeocode(c.Request.Context(), pos)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPlaceResponse(place))
}

func toPlaceResponse(p *places.Place) api.PlaceResponse {
	return api.PlaceResponse{
		Name:      p.Name,
		Address:   p.Address,
		Latitude:  p.Position.Lat,
		Longitude: p.Position.Lng,
		Category:  string(p.Category),
	}
}
