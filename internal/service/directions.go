package service

import (
	"context"

	"roadtrip/internal/directions"
	"roadtrip/internal/domain"
)

// DirectionsService relays route requests to the configured provider so the
// provider key stays on the server.
type DirectionsService struct {
	routes *directions.Service
}

// NewDirectionsService creates a new DirectionsService. routes is nil when no
// provider is configured.
func NewDirectionsService(routes *directions.Service) *DirectionsService {
	return &DirectionsService{routes: routes}
}

// Route fetches the route through coords in order, using the server's travel mode.
func (s *DirectionsService) Route(ctx context.Context, coords []domain.Coordinates) (*directions.Route, error) {
	if s.routes == nil {
		return nil, ErrDirectionsUnavailable
	}
	return s.routes.FetchRoute(ctx, coords)
}
