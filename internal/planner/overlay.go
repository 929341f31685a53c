package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"roadtrip/internal/directions"
	"roadtrip/internal/domain"
)

// Marker is a placed stop marker.
type Marker interface {
	Remove()
}

// Path is a drawn route line.
type Path interface {
	Remove()
}

// Canvas is the map rendering capability the overlay draws on.
type Canvas interface {
	PlaceMarker(pos domain.Coordinates, label string) Marker
	DrawPath(points []domain.Coordinates) Path
	FitBounds(b domain.Bounds)
	OnClick(fn func(pos domain.Coordinates))
}

// RouteFetcher produces a route through ordered coordinates.
// *directions.Service satisfies it.
type RouteFetcher interface {
	FetchRoute(ctx context.Context, coords []domain.Coordinates) (*directions.Route, error)
}

// RouteOverlay keeps one path and one marker per stop on a Canvas.
type RouteOverlay struct {
	mu       sync.Mutex
	canvas   Canvas
	routes   RouteFetcher
	state    *TripState
	notifier Notifier
	logger   *slog.Logger

	synced     uint64
	markers    []Marker
	markerKeys []uint64
	path       Path
}

// NewRouteOverlay creates an overlay drawing state on canvas.
func NewRouteOverlay(canvas Canvas, routes RouteFetcher, state *TripState, notifier Notifier, logger *slog.Logger) *RouteOverlay {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RouteOverlay{
		canvas:   canvas,
		routes:   routes,
		state:    state,
		notifier: notifier,
		logger:   logger,
	}
}

// Sync removes the path and re-places markers when the stop set changed.
// Snapshots older than the last synced one are ignored.
func (o *RouteOverlay) Sync(snap Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if snap.Version < o.synced {
		return
	}
	o.synced = snap.Version

	o.clearPathLocked()

	if sameKeys(o.markerKeys, snap.Stops) {
		return
	}
	o.clearMarkersLocked()
	for i, s := range snap.Stops {
		o.markers = append(o.markers, o.canvas.PlaceMarker(s.Position, s.Label(i)))
		o.markerKeys = append(o.markerKeys, s.key)
	}
}

// DrawRoute fetches the route for snap and draws it if snap is still current.
// Failures are reported to the notifier; the markers stay in place.
func (o *RouteOverlay) DrawRoute(ctx context.Context, snap Snapshot) (*directions.Route, error) {
	if len(snap.Stops) < 2 {
		return nil, nil
	}

	route, err := o.routes.FetchRoute(ctx, snap.Coordinates())
	if err != nil {
		return nil, o.fail(snap, err)
	}

	points, err := route.Path()
	if err != nil {
		return nil, o.fail(snap, &directions.Failure{Kind: directions.KindProvider, Message: "undecodable route path", Err: err})
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if current := o.state.Version(); current != snap.Version {
		o.logger.Debug("discarding stale route",
			slog.Uint64("requested_version", snap.Version),
			slog.Uint64("current_version", current))
		return nil, ErrStale
	}

	o.clearPathLocked()
	o.path = o.canvas.DrawPath(points)
	if bounds, ok := domain.BoundsOf(points); ok {
		o.canvas.FitBounds(bounds)
	}
	return route, nil
}

// Render syncs markers and draws the route for snap.
func (o *RouteOverlay) Render(ctx context.Context, snap Snapshot) (*directions.Route, error) {
	o.Sync(snap)
	return o.DrawRoute(ctx, snap)
}

// Clear removes every marker and the path.
func (o *RouteOverlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clearPathLocked()
	o.clearMarkersLocked()
}

func (o *RouteOverlay) fail(snap Snapshot, err error) error {
	if o.state.Version() != snap.Version {
		o.logger.Debug("dropping route failure for stale version",
			slog.Uint64("requested_version", snap.Version),
			slog.Any("error", err))
		return ErrStale
	}

	var f *directions.Failure
	if !errors.As(err, &f) {
		f = &directions.Failure{Kind: directions.KindProvider, Err: err}
	}
	o.logger.Warn("route unavailable",
		slog.String("kind", string(f.Kind)),
		slog.Any("error", err))
	o.notifier.Notify(Notice{
		Source:  SourceRoute,
		Kind:    string(f.Kind),
		Message: f.Error(),
		Points:  f.Points,
	})
	return err
}

func (o *RouteOverlay) clearPathLocked() {
	if o.path != nil {
		o.path.Remove()
		o.path = nil
	}
}

func (o *RouteOverlay) clearMarkersLocked() {
	for _, m := range o.markers {
		m.Remove()
	}
	o.markers = nil
	o.markerKeys = nil
}

func sameKeys(keys []uint64, stops []StopRecord) bool {
	if len(keys) != len(stops) {
		return false
	}
	for i, s := range stops {
		if keys[i] != s.key {
			return false
		}
	}
	return true
}
