package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidCoordinates is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Coordinates is a point on the map in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Validate checks that the coordinates are finite and within range.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinates, c.Lat, c.Lng)
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinates, c.Lat, c.Lng)
	}
	return nil
}

// String formats the coordinates as "lat,lng", the form directions providers accept.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// StopType classifies a stop for price estimation.
type StopType string

const (
	StopTypeFood          StopType = "FOOD"
	StopTypeRest          StopType = "REST"
	StopTypeFuel          StopType = "FUEL"
	StopTypeEntertainment StopType = "ENTERTAINMENT"
	StopTypeMisc          StopType = "MISC"
)

// ParseStopType normalizes a free-form category. Unknown values fall back to MISC.
func ParseStopType(s string) StopType {
	switch t := StopType(strings.ToUpper(strings.TrimSpace(s))); t {
	case StopTypeFood, StopTypeRest, StopTypeFuel, StopTypeEntertainment, StopTypeMisc:
		return t
	default:
		return StopTypeMisc
	}
}

// StopTypes lists every known stop type.
func StopTypes() []StopType {
	return []StopType{StopTypeFood, StopTypeRest, StopTypeFuel, StopTypeEntertainment, StopTypeMisc}
}

// DefaultStopPrice returns the typical spend for a stop type in dollars.
func DefaultStopPrice(t StopType) float64 {
	switch t {
	case StopTypeFood:
		return 20 // Average meal
	case StopTypeRest:
		return 100 // Average hotel night
	case StopTypeFuel:
		return 60 // Average fill-up
	case StopTypeEntertainment:
		return 35
	default:
		return 15
	}
}

// Stop is a persisted stop belonging to a trip.
type Stop struct {
	ID          string
	TripID      string
	Position    Coordinates
	Type        StopType
	Cost        float64
	TimeMinutes int
	Order       int
}
