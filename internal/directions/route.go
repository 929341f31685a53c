package directions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twpayne/go-polyline"

	"roadtrip/internal/domain"
)

// DefaultMode is the travel mode used when none is configured.
const DefaultMode = "driving"

// Request is an ordered list of stops to route through.
type Request struct {
	Coordinates []domain.Coordinates
	Mode        string
}

// Leg is the stretch between two consecutive stops.
type Leg struct {
	DistanceMeters  int
	DurationSeconds int
}

// Route is a provider result decoded into provider-neutral fields.
type Route struct {
	EncodedPath     string
	DurationSeconds int
	DistanceMeters  int
	Legs            []Leg
}

// Path decodes the encoded polyline into coordinates.
func (r *Route) Path() ([]domain.Coordinates, error) {
	if r.EncodedPath == "" {
		return nil, nil
	}

	coords, rest, err := polyline.DecodeCoords([]byte(r.EncodedPath))
	if err != nil {
		return nil, fmt.Errorf("decode route polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("decode route polyline: %d trailing bytes", len(rest))
	}

	points := make([]domain.Coordinates, 0, len(coords))
	for _, c := range coords {
		points = append(points, domain.Coordinates{Lat: c[0], Lng: c[1]})
	}
	return points, nil
}

// EncodePath encodes points with the Google polyline algorithm.
func EncodePath(points []domain.Coordinates) string {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}
	return string(polyline.EncodeCoords(coords))
}

// CacheKey identifies a request by travel mode and exact stop sequence.
func CacheKey(req Request) string {
	parts := make([]string, 0, len(req.Coordinates))
	for _, c := range req.Coordinates {
		parts = append(parts, strconv.FormatFloat(c.Lat, 'f', -1, 64)+","+strconv.FormatFloat(c.Lng, 'f', -1, 64))
	}
	mode := req.Mode
	if mode == "" {
		mode = DefaultMode
	}
	return mode + "|" + strings.Join(parts, ";")
}
