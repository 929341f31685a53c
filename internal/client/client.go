// Package client talks to the roadtrip backend over HTTP. It is the TripStore
// and CostSource used by planner sessions outside the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadtrip/internal/api"
	"roadtrip/internal/domain"
	"roadtrip/internal/middleware"
	"roadtrip/internal/planner"
)

// APIError is a backend error response that has no planner equivalent.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// Client is an HTTP client for the backend API.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetTrip fetches a trip with its stops.
func (c *Client) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	var resp api.TripResponse
	if err := c.do(ctx, http.MethodGet, "/v1/trips/"+url.PathEscape(tripID), nil, &resp); err != nil {
		return nil, err
	}

	trip := &domain.Trip{
		ID:          resp.ID,
		UserID:      resp.UserID,
		Name:        resp.Name,
		Description: resp.Description,
		ImageURL:    resp.ImageURL,
		Stops:       make([]domain.Stop, 0, len(resp.Stops)),
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}
	for i, s := range resp.Stops {
		trip.Stops = append(trip.Stops, domain.Stop{
			ID:          s.ID,
			TripID:      resp.ID,
			Position:    domain.Coordinates{Lat: s.Latitude, Lng: s.Longitude},
			Type:        domain.ParseStopType(s.Type),
			Cost:        s.Cost,
			TimeMinutes: s.Time,
			Order:       i,
		})
	}
	return trip, nil
}

// SaveTrip creates the trip when it has no ID and replaces it otherwise.
// Every call carries a fresh Idempotency-Key.
func (c *Client) SaveTrip(ctx context.Context, trip *domain.Trip) (planner.SaveResult, error) {
	req := api.SaveTripRequest{
		UserID:      trip.UserID,
		Name:        trip.Name,
		Description: trip.Description,
		ImageURL:    trip.ImageURL,
		Stops:       make([]api.StopInput, 0, len(trip.Stops)),
	}
	for _, s := range trip.Stops {
		req.Stops = append(req.Stops, api.StopInput{
			ID:       s.ID,
			Location: [2]float64{s.Position.Lat, s.Position.Lng},
			Type:     string(s.Type),
			Time:     s.TimeMinutes,
			Cost:     s.Cost,
		})
	}

	method, path := http.MethodPost, "/v1/trips"
	if trip.ID != "" {
		method, path = http.MethodPut, "/v1/trips/"+url.PathEscape(trip.ID)
	}

	var resp api.SaveTripResponse
	if err := c.do(ctx, method, path, req, &resp); err != nil {
		return planner.SaveResult{}, err
	}
	return planner.SaveResult{TripID: resp.TripID, StopIDs: resp.StopIDs}, nil
}

// DeleteStop removes a saved stop.
func (c *Client) DeleteStop(ctx context.Context, stopID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/stops/"+url.PathEscape(stopID), nil, nil)
}

// DeleteTrip removes a saved trip.
func (c *Client) DeleteTrip(ctx context.Context, tripID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/trips/"+url.PathEscape(tripID), nil, nil)
}

// ListTrips lists a user's trips.
func (c *Client) ListTrips(ctx context.Context, userID string) ([]domain.TripSummary, error) {
	var resp api.TripListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/trips", nil, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.TripSummary, 0, len(resp.Trips))
	for _, t := range resp.Trips {
		out = append(out, domain.TripSummary{
			ID:          t.ID,
			UserID:      t.UserID,
			Name:        t.Name,
			Description: t.Description,
			ImageURL:    t.ImageURL,
			StopCount:   t.StopCount,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out, nil
}

// StopPrice asks the backend for the price of stop, reached after distanceKm
// of driving from the first stop.
func (c *Client) StopPrice(ctx context.Context, stop planner.StopRecord, distanceKm float64) (float64, error) {
	var resp api.StopPriceResponse
	req := api.StopPriceRequest{
		Type:       string(stop.Type),
		Location:   &[2]float64{stop.Position.Lat, stop.Position.Lng},
		DistanceKm: distanceKm,
	}
	if err := c.do(ctx, http.MethodPost, "/v1/budget/stop-price", req, &resp); err != nil {
		return 0, err
	}
	return resp.Price, nil
}

// Geocode resolves address into a place that can be added as a stop.
func (c *Client) Geocode(ctx context.Context, address string) (planner.Place, error) {
	var resp api.PlaceResponse
	if err := c.do(ctx, http.MethodPost, "/v1/maps/geocode", api.GeocodeRequest{Address: address}, &resp); err != nil {
		return planner.Place{}, err
	}
	return planner.Place{
		Name:     resp.Name,
		Position: domain.Coordinates{Lat: resp.Latitude, Lng: resp.Longitude},
		Category: resp.Category,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set(middleware.IdempotencyHeader, uuid.New().String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	msg := strings.TrimSpace(string(data))
	var body api.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", planner.ErrNotFound, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", planner.ErrValidation, msg)
	default:
		return &APIError{StatusCode: status, Message: msg}
	}
}

var (
	_ planner.TripStore  = (*Client)(nil)
	_ planner.CostSource = (*Client)(nil)
)
