package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roadtrip/internal/domain"
	"roadtrip/internal/places"
)

// Geocoder resolves addresses and positions.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*places.Place, error)
	ReverseGeocode(ctx context.Context, pos domain.Coordinates) (*places.Place, error)
}

// GeocodingService turns search text into stop candidates and positions into
// addresses.
type GeocodingService struct {
	geocoder Geocoder
}

// NewGeocodingService creates a new GeocodingService. geocoder is nil when no
// maps key is configured.
func NewGeocodingService(geocoder Geocoder) *GeocodingService {
	return &GeocodingService{geocoder: geocoder}
}

// Geocode resolves address to its best match.
func (s *GeocodingService) Geocode(ctx context.Context, address string) (*places.Place, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	if s.geocoder == nil {
		return nil, ErrGeocodingUnavailable
	}

	place, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, geocodingError(err)
	}
	return place, nil
}

// ReverseGeocode returns the address closest to pos.
func (s *GeocodingService) ReverseGeocode(ctx context.Context, pos domain.Coordinates) (*places.Place, error) {
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	if s.geocoder == nil {
		return nil, ErrGeocodingUnavailable
	}

	place, err := s.geocoder.ReverseGeocode(ctx, pos)
	if err != nil {
		return nil, geocodingError(err)
	}
	return place, nil
}

func geocodingError(err error) error {
	if errors.Is(err, places.ErrNoResult) {
		return ErrPlaceNotFound
	}
	return fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
}
