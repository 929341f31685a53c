package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"roadtrip/internal/domain"
)

// RelayRequest is the body of POST /v1/directions.
type RelayRequest struct {
	Coordinates [][2]float64 `json:"coordinates"` // [lat, lng] pairs
	Mode        string       `json:"mode,omitempty"`
}

// RelayLeg is one leg in a RelayRoute.
type RelayLeg struct {
	DistanceMeters  int `json:"distance_meters"`
	DurationSeconds int `json:"duration_seconds"`
}

// RelayRoute is the success body of POST /v1/directions.
type RelayRoute struct {
	EncodedPath     string     `json:"encoded_path"`
	DurationSeconds int        `json:"duration_seconds"`
	DistanceMeters  int        `json:"distance_meters"`
	Legs            []RelayLeg `json:"legs"`
}

// RelayError is the failure body of POST /v1/directions.
type RelayError struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Points []int  `json:"points,omitempty"`
}

// NewRelayRequest converts coordinates into the relay wire shape.
func NewRelayRequest(coords []domain.Coordinates, mode string) RelayRequest {
	out := RelayRequest{Coordinates: make([][2]float64, 0, len(coords)), Mode: mode}
	for _, c := range coords {
		out.Coordinates = append(out.Coordinates, [2]float64{c.Lat, c.Lng})
	}
	return out
}

// Points converts the wire coordinates back into domain coordinates.
func (r RelayRequest) Points() []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(r.Coordinates))
	for _, c := range r.Coordinates {
		out = append(out, domain.Coordinates{Lat: c[0], Lng: c[1]})
	}
	return out
}

// NewRelayRoute converts a Route into the relay wire shape.
func NewRelayRoute(r *Route) RelayRoute {
	out := RelayRoute{
		EncodedPath:     r.EncodedPath,
		DurationSeconds: r.DurationSeconds,
		DistanceMeters:  r.DistanceMeters,
		Legs:            make([]RelayLeg, 0, len(r.Legs)),
	}
	for _, l := range r.Legs {
		out.Legs = append(out.Legs, RelayLeg{DistanceMeters: l.DistanceMeters, DurationSeconds: l.DurationSeconds})
	}
	return out
}

// RelayProvider implements Provider by calling the trip backend, which holds the provider key.
type RelayProvider struct {
	client  *http.Client
	baseURL string
}

// NewRelayProvider creates a provider for the backend at baseURL.
func NewRelayProvider(baseURL string, timeout time.Duration) *RelayProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RelayProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Directions posts the stops to the backend relay.
func (p *RelayProvider) Directions(ctx context.Context, req Request) (*Route, error) {
	payload, err := json.Marshal(NewRelayRequest(req.Coordinates, req.Mode))
	if err != nil {
		return nil, &Failure{Kind: KindProvider, Message: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/directions", bytes.NewReader(payload))
	if err != nil {
		return nil, &Failure{Kind: KindProvider, Message: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &Failure{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Failure{Kind: KindNetwork, Message: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var relayErr RelayError
		if err := json.Unmarshal(body, &relayErr); err != nil || relayErr.Code == "" {
			return nil, &Failure{
				Kind:       KindProvider,
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(body)),
			}
		}
		return nil, &Failure{
			Kind:       ParseKind(relayErr.Code),
			StatusCode: resp.StatusCode,
			Message:    relayErr.Error,
			Points:     relayErr.Points,
		}
	}

	var decoded RelayRoute
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &Failure{Kind: KindProvider, Message: "malformed response", Err: err}
	}

	route := &Route{
		EncodedPath:     decoded.EncodedPath,
		DurationSeconds: decoded.DurationSeconds,
		DistanceMeters:  decoded.DistanceMeters,
		Legs:            make([]Leg, 0, len(decoded.Legs)),
	}
	for _, l := range decoded.Legs {
		route.Legs = append(route.Legs, Leg{DistanceMeters: l.DistanceMeters, DurationSeconds: l.DurationSeconds})
	}
	return route, nil
}

var _ Provider = (*RelayProvider)(nil)
