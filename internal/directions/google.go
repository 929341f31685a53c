package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// GoogleProvider implements Provider using the Google Directions API.
// It is safe for concurrent use.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider. An empty baseURL selects the public endpoint.
func NewGoogleProvider(apiKey, baseURL string, timeout time.Duration) (*GoogleProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google directions api key is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{
			Timeout:   timeout,
			Transport: recordingTransport{base: http.DefaultTransport},
		}),
	}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// Directions routes origin -> waypoints -> destination in request order.
func (g *GoogleProvider) Directions(ctx context.Context, req Request) (*Route, error) {
	if len(req.Coordinates) < 2 {
		return nil, &Failure{Kind: KindNotEnoughStops}
	}

	coords := req.Coordinates
	mode := req.Mode
	if mode == "" {
		mode = DefaultMode
	}
	dr := &maps.DirectionsRequest{
		Origin:      coords[0].String(),
		Destination: coords[len(coords)-1].String(),
		Mode:        maps.Mode(strings.ToLower(mode)),
	}
	for _, c := range coords[1 : len(coords)-1] {
		dr.Waypoints = append(dr.Waypoints, c.String())
	}

	ex := &exchange{}
	routes, _, err := g.client.Directions(context.WithValue(ctx, exchangeKey{}, ex), dr)
	if err != nil {
		return nil, classify(err, ex)
	}
	if len(routes) == 0 {
		return nil, &Failure{Kind: KindUnroutable, Message: "provider returned no routes"}
	}

	best := routes[0]
	route := &Route{
		EncodedPath: best.OverviewPolyline.Points,
		Legs:        make([]Leg, 0, len(best.Legs)),
	}
	for _, leg := range best.Legs {
		seconds := int(leg.Duration / time.Second)
		route.Legs = append(route.Legs, Leg{
			DistanceMeters:  leg.Meters,
			DurationSeconds: seconds,
		})
		route.DistanceMeters += leg.Meters
		route.DurationSeconds += seconds
	}

	if len(route.Legs) != len(coords)-1 {
		return nil, &Failure{
			Kind:    KindProvider,
			Message: fmt.Sprintf("expected %d legs, got %d", len(coords)-1, len(route.Legs)),
		}
	}
	return route, nil
}

// googleStatus is the part of a Directions response the maps client drops
// when the status is not OK.
type googleStatus struct {
	Status            string `json:"status"`
	ErrorMessage      string `json:"error_message"`
	GeocodedWaypoints []struct {
		GeocoderStatus string `json:"geocoder_status"`
	} `json:"geocoded_waypoints"`
}

func classify(err error, ex *exchange) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: KindNetwork, Err: err}
	}

	if ex.statusCode != 0 && (ex.statusCode < 200 || ex.statusCode > 299) {
		return &Failure{
			Kind:       KindProvider,
			StatusCode: ex.statusCode,
			Message:    strings.TrimSpace(string(ex.body)),
		}
	}

	var status googleStatus
	if len(ex.body) == 0 || json.Unmarshal(ex.body, &status) != nil {
		return &Failure{Kind: KindProvider, StatusCode: ex.statusCode, Message: "malformed response", Err: err}
	}

	switch status.Status {
	case "NOT_FOUND":
		return &Failure{
			Kind:    KindUnroutable,
			Message: "one or more stops could not be located",
			Points:  status.failedWaypoints(),
		}
	case "ZERO_RESULTS":
		return &Failure{
			Kind:    KindUnroutable,
			Message: "no drivable route connects the stops",
			Points:  status.failedWaypoints(),
		}
	case "MAX_ROUTE_LENGTH_EXCEEDED":
		return &Failure{Kind: KindUnroutable, Message: "route is too long"}
	}

	msg := status.Status
	if status.ErrorMessage != "" {
		msg += ": " + status.ErrorMessage
	}
	if msg == "" {
		msg = strings.TrimPrefix(err.Error(), "maps: ")
	}
	return &Failure{Kind: KindProvider, StatusCode: ex.statusCode, Message: msg}
}

func (s *googleStatus) failedWaypoints() []int {
	var failed []int
	for i, w := range s.GeocodedWaypoints {
		if w.GeocoderStatus != "" && w.GeocoderStatus != "OK" {
			failed = append(failed, i)
		}
	}
	return failed
}

const maxRecordedBody = 1 << 20

type exchangeKey struct{}

// exchange captures the raw response of one provider call.
type exchange struct {
	statusCode int
	body       []byte
}

// recordingTransport copies the response status and body into the exchange
// carried by the request context, so failures can be classified from the
// raw provider answer.
type recordingTransport struct {
	base http.RoundTripper
}

func (t recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	ex, ok := req.Context().Value(exchangeKey{}).(*exchange)
	if !ok {
		return resp, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordedBody))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	ex.statusCode = resp.StatusCode
	ex.body = body
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

var _ Provider = (*GoogleProvider)(nil)
