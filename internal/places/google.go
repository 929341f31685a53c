// Package places looks up places near a stop and geocodes addresses with
// the Google Maps Places and Geocoding APIs.
package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"

	"roadtrip/internal/domain"
)

// ErrNoResult is returned when the provider knows no matching place or the
// matching place has no price level.
var ErrNoResult = errors.New("no matching place")

// DefaultRadiusMeters is the nearby-search radius used when none is configured.
const DefaultRadiusMeters = 1000

// Place is a geocoded location.
type Place struct {
	Name     string
	Address  string
	Position domain.Coordinates
	Category domain.StopType
}

// searchTypes maps stop types to the Places type searched near a stop.
var searchTypes = map[domain.StopType]maps.PlaceType{
	domain.StopTypeFood:          maps.PlaceType("restaurant"),
	domain.StopTypeRest:          maps.PlaceType("lodging"),
	domain.StopTypeFuel:          maps.PlaceType("gas_station"),
	domain.StopTypeEntertainment: maps.PlaceType("amusement_park"),
	domain.StopTypeMisc:          maps.PlaceType("point_of_interest"),
}

// GoogleClient is safe for concurrent use.
type GoogleClient struct {
	client *maps.Client
	radius uint
}

// NewGoogleClient creates a client. An empty baseURL selects the public endpoint.
func NewGoogleClient(apiKey, baseURL string, timeout time.Duration, radiusMeters int) (*GoogleClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google places api key is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleClient{client: client, radius: uint(radiusMeters)}, nil
}

// PriceLevel returns the 1-4 price level of the first place of the stop's
// kind near pos. The maps client decodes a missing price level as 0, so 0
// is reported as ErrNoResult.
func (g *GoogleClient) PriceLevel(ctx context.Context, pos domain.Coordinates, stopType domain.StopType) (int, error) {
	placeType, ok := searchTypes[stopType]
	if !ok {
		placeType = searchTypes[domain.StopTypeMisc]
	}

	resp, err := g.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: pos.Lat, Lng: pos.Lng},
		Radius:   g.radius,
		Type:     placeType,
	})
	if err != nil {
		return 0, lookupError("nearby search", err)
	}
	if len(resp.Results) == 0 || resp.Results[0].PriceLevel <= 0 {
		return 0, ErrNoResult
	}
	return resp.Results[0].PriceLevel, nil
}

// Geocode resolves an address to its best match.
func (g *GoogleClient) Geocode(ctx context.Context, address string) (*Place, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, lookupError("geocode", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}
	return toPlace(results[0]), nil
}

// ReverseGeocode returns the address closest to pos.
func (g *GoogleClient) ReverseGeocode(ctx context.Context, pos domain.Coordinates) (*Place, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: pos.Lat, Lng: pos.Lng},
	})
	if err != nil {
		return nil, lookupError("reverse geocode", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}
	return toPlace(results[0]), nil
}

func toPlace(r maps.GeocodingResult) *Place {
	name := r.FormattedAddress
	if i := strings.Index(name, ","); i > 0 {
		name = name[:i]
	}
	return &Place{
		Name:     name,
		Address:  r.FormattedAddress,
		Position: domain.Coordinates{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Category: CategoryFor(r.Types),
	}
}

// CategoryFor picks the stop type matching a list of Google place types.
func CategoryFor(types []string) domain.StopType {
	for _, t := range types {
		switch t {
		case "restaurant", "food", "cafe", "bakery", "bar", "meal_takeaway":
			return domain.StopTypeFood
		case "lodging", "campground", "rv_park":
			return domain.StopTypeRest
		case "gas_station":
			return domain.StopTypeFuel
		case "amusement_park", "tourist_attraction", "museum", "zoo", "aquarium", "park", "stadium":
			return domain.StopTypeEntertainment
		}
	}
	return domain.StopTypeMisc
}

func lookupError(op string, err error) error {
	if strings.Contains(err.Error(), "ZERO_RESULTS") {
		return ErrNoResult
	}
	return fmt.Errorf("%s: %w", op, err)
}
