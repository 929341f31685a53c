package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/api"
	"roadtrip/internal/domain"
	"roadtrip/internal/service"
)

// TripHandler handles HTTP requests for trips and stops.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// Create handles POST /v1/trips
func (h *TripHandler) Create(c *gin.Context) {
	var req api.SaveTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.tripService.SaveTrip(c.Request.Context(), toSaveRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, api.SaveTripResponse{
		TripID:  result.TripID,
		StopIDs: result.StopIDs,
	})
}

// Update handles PUT /v1/trips/:id
func (h *TripHandler) Update(c *gin.Context) {
	var req api.SaveTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.tripService.UpdateTrip(c.Request.Context(), c.Param("id"), toSaveRequest(req))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, api.SaveTripResponse{
		TripID:  result.TripID,
		StopIDs: result.StopIDs,
	})
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// ListByUser handles GET /v1/users/:id/trips
func (h *TripHandler) ListByUser(c *gin.Context) {
	trips, err := h.tripService.ListUserTrips(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := api.TripListResponse{Trips: make([]api.TripSummaryResponse, 0, len(trips))}
	for _, t := range trips {
		response.Trips = append(response.Trips, api.TripSummaryResponse{
			ID:          t.ID,
			UserID:      t.UserID,
			Name:        t.Name,
			Description: t.Description,
			ImageURL:    t.ImageURL,
			StopCount:   t.StopCount,
			CreatedAt:   t.CreatedAt,
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// Delete handles DELETE /v1/trips/:id
func (h *TripHandler) Delete(c *gin.Context) {
	if err := h.tripService.DeleteTrip(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteStop handles DELETE /v1/stops/:id
func (h *TripHandler) DeleteStop(c *gin.Context) {
	if err := h.tripService.DeleteStop(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toSaveRequest(req api.SaveTripRequest) service.SaveTripRequest {
	out := service.SaveTripRequest{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Stops:       make([]service.StopInput, 0, len(req.Stops)),
	}
	for _, s := range req.Stops {
		out.Stops = append(out.Stops, service.StopInput{
			ID:          s.ID,
			Position:    domain.Coordinates{Lat: s.Location[0], Lng: s.Location[1]},
			Type:        s.Type,
			Cost:        s.Cost,
			TimeMinutes: s.Time,
		})
	}
	return out
}

func toTripResponse(trip *domain.Trip) api.TripResponse {
	response := api.TripResponse{
		ID:          trip.ID,
		UserID:      trip.UserID,
		Name:        trip.Name,
		Description: trip.Description,
		ImageURL:    trip.ImageURL,
		Stops:       make([]api.StopResponse, 0, len(trip.Stops)),
		TotalCost:   trip.TotalCost(),
		TotalTime:   trip.TotalTimeMinutes(),
		CreatedAt:   trip.CreatedAt,
		UpdatedAt:   trip.UpdatedAt,
	}
	for _, s := range trip.Stops {
		response.Stops = append(response.Stops, api.StopResponse{
			ID:        s.ID,
			Latitude:  s.Position.Lat,
			Longitude: s.Position.Lng,
			Type:      string(s.Type),
			Cost:      s.Cost,
			Time:      s.TimeMinutes,
		})
	}
	return response
}
