// Package api holds the JSON shapes exchanged between the backend and its clients.
package api

import "time"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StopInput is one stop in a save request. ID is set for stops that were saved before.
type StopInput struct {
	ID       string     `json:"id,omitempty"`
	Location [2]float64 `json:"location"` // [lat, lng]
	Type     string     `json:"type"`
	Time     int        `json:"time"`
	Cost     float64    `json:"cost"`
}

// SaveTripRequest is the body of POST /v1/trips and PUT /v1/trips/:id.
type SaveTripRequest struct {
	UserID      string      `json:"user_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
	Stops       []StopInput `json:"stops"`
}

// SaveTripResponse returns the trip id and one stop id per submitted stop.
type SaveTripResponse struct {
	TripID  string   `json:"trip_id"`
	StopIDs []string `json:"stop_ids"`
}

// StopResponse is a persisted stop.
type StopResponse struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Type      string  `json:"type"`
	Cost      float64 `json:"cost"`
	Time      int     `json:"time"`
}

// TripResponse is a persisted trip with its stops in visit order.
type TripResponse struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ImageURL    string         `json:"image_url"`
	Stops       []StopResponse `json:"stops"`
	TotalCost   float64        `json:"total_cost"`
	TotalTime   int            `json:"total_time"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TripSummaryResponse is one entry of a user's trip list.
type TripSummaryResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	StopCount   int       `json:"stop_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// TripListResponse is the body of GET /v1/users/:id/trips.
type TripListResponse struct {
	Trips []TripSummaryResponse `json:"trips"`
}

// StopPriceRequest is the body of POST /v1/budget/stop-price. Location
// enables the nearby-place price lookup.
type StopPriceRequest struct {
	Type       string      `json:"type"`
	Location   *[2]float64 `json:"location,omitempty"` // [lat, lng]
	DistanceKm float64     `json:"distance_km"`
}

// StopPriceResponse is the estimated price of one stop.
type StopPriceResponse struct {
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

// BudgetStop is one stop in a budget calculation.
type BudgetStop struct {
	Type       string      `json:"type"`
	Location   *[2]float64 `json:"location,omitempty"`
	Cost       *float64    `json:"cost,omitempty"` // a user-entered cost overrides the estimate
	DistanceKm float64     `json:"distance_km"`
}

// BudgetRequest is the body of POST /v1/budget/calculate.
type BudgetRequest struct {
	Stops []BudgetStop `json:"stops"`
}

// BudgetResponse is the per-stop and total cost of a trip.
type BudgetResponse struct {
	PerStop []float64 `json:"per_stop"`
	Total   float64   `json:"total"`
}

// GeocodeRequest is the body of POST /v1/maps/geocode.
type GeocodeRequest struct {
	Address string `json:"address"`
}

// ReverseGeocodeRequest is the body of POST /v1/maps/reverse-geocode.
type ReverseGeocodeRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// PlaceResponse is a geocoded place. Category is the stop type it maps to.
type PlaceResponse struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Category  string  `json:"category"`
}
