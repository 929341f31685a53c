package planner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"roadtrip/internal/directions"
	"roadtrip/internal/domain"
)

// ==================== Canvas ====================

type fakeMarker struct {
	c     *fakeCanvas
	pos   domain.Coordinates
	label string
}

func (m *fakeMarker) Remove() {
	m.c.mu.Lock()
	defer m.c.mu.Unlock()
	delete(m.c.markers, m)
}

type fakePath struct {
	c      *fakeCanvas
	points []domain.Coordinates
}

func (p *fakePath) Remove() {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	delete(p.c.paths, p)
}

type fakeCanvas struct {
	mu           sync.Mutex
	markers      map[*fakeMarker]bool
	paths        map[*fakePath]bool
	placed       int
	fitted       []domain.Bounds
	clickHandler func(domain.Coordinates)
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{markers: map[*fakeMarker]bool{}, paths: map[*fakePath]bool{}}
}

func (c *fakeCanvas) PlaceMarker(pos domain.Coordinates, label string) Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := &fakeMarker{c: c, pos: pos, label: label}
	c.markers[m] = true
	c.placed++
	return m
}

func (c *fakeCanvas) DrawPath(points []domain.Coordinates) Path {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := &fakePath{c: c, points: points}
	c.paths[p] = true
	return p
}

func (c *fakeCanvas) FitBounds(b domain.Bounds) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fitted = append(c.fitted, b)
}

func (c *fakeCanvas) OnClick(fn func(domain.Coordinates)) {
	c.clickHandler = fn
}

func (c *fakeCanvas) click(pos domain.Coordinates) {
	c.clickHandler(pos)
}

func (c *fakeCanvas) markerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.markers)
}

func (c *fakeCanvas) placedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.placed
}

func (c *fakeCanvas) visiblePaths() [][]domain.Coordinates {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out [][]domain.Coordinates
	for p := range c.paths {
		out = append(out, p.points)
	}
	return out
}

// ==================== Routes ====================

// fakeRoutes answers with a straight-line route whose distance encodes the
// number of stops. Requests can be held until released.
type fakeRoutes struct {
	mu    sync.Mutex
	calls [][]domain.Coordinates
	err   error
	gates []chan struct{}
	hold  bool
}

func (r *fakeRoutes) FetchRoute(ctx context.Context, coords []domain.Coordinates) (*directions.Route, error) {
	if len(coords) < 2 {
		return nil, &directions.Failure{Kind: directions.KindNotEnoughStops}
	}

	r.mu.Lock()
	r.calls = append(r.calls, coords)
	err := r.err
	var gate chan struct{}
	if r.hold {
		gate = make(chan struct{})
		r.gates = append(r.gates, gate)
	}
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return routeFor(coords), nil
}

func (r *fakeRoutes) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// release lets the i-th held request complete.
func (r *fakeRoutes) release(i int) {
	r.mu.Lock()
	gate := r.gates[i]
	r.mu.Unlock()
	close(gate)
}

func (r *fakeRoutes) waitForCalls(n int) {
	for r.callCount() < n {
		runtime.Gosched()
	}
}

func routeFor(coords []domain.Coordinates) *directions.Route {
	legs := make([]directions.Leg, 0, len(coords)-1)
	route := &directions.Route{EncodedPath: directions.EncodePath(coords)}
	for range coords[1:] {
		legs = append(legs, directions.Leg{DistanceMeters: 32000, DurationSeconds: 1800})
		route.DistanceMeters += 32000
		route.DurationSeconds += 1800
	}
	route.Legs = legs
	return route
}

// ==================== Costs ====================

type fakeCosts struct {
	mu        sync.Mutex
	calls     int
	fail      map[domain.StopType]bool
	distances []float64
}

func (c *fakeCosts) StopPrice(ctx context.Context, stop StopRecord, distanceKm float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.distances = append(c.distances, distanceKm)
	if c.fail[stop.Type] {
		return 0, fmt.Errorf("price service unavailable")
	}
	return domain.DefaultStopPrice(stop.Type), nil
}

// ==================== Store ====================

type fakeStore struct {
	mu          sync.Mutex
	trips       map[string]*domain.Trip
	nextID      int
	saveCalls   int
	deleteStops []string
	saveErr     error
	deleteErr   error
	deleteGate  chan struct{}

	// When set, SaveTrip signals saveStarted and blocks until saveGate closes.
	saveStarted chan struct{}
	saveGate    chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{trips: map[string]*domain.Trip{}}
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *trip
	cp.Stops = append([]domain.Stop(nil), trip.Stops...)
	return &cp, nil
}

func (s *fakeStore) SaveTrip(ctx context.Context, trip *domain.Trip) (SaveResult, error) {
	if s.saveGate != nil {
		s.saveStarted <- struct{}{}
		<-s.saveGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return SaveResult{}, s.saveErr
	}

	cp := *trip
	if cp.ID == "" {
		cp.ID = s.id("trip")
	} else if _, ok := s.trips[cp.ID]; !ok {
		return SaveResult{}, ErrNotFound
	}

	result := SaveResult{TripID: cp.ID}
	cp.Stops = nil
	for _, st := range trip.Stops {
		if st.ID == "" {
			st.ID = s.id("stop")
		}
		st.TripID = cp.ID
		cp.Stops = append(cp.Stops, st)
		result.StopIDs = append(result.StopIDs, st.ID)
	}
	s.trips[cp.ID] = &cp
	return result, nil
}

func (s *fakeStore) DeleteStop(ctx context.Context, stopID string) error {
	if s.deleteGate != nil {
		<-s.deleteGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteStops = append(s.deleteStops, stopID)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for _, trip := range s.trips {
		for i, st := range trip.Stops {
			if st.ID == stopID {
				trip.Stops = append(trip.Stops[:i], trip.Stops[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

func (s *fakeStore) DeleteTrip(ctx context.Context, tripID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[tripID]; !ok {
		return ErrNotFound
	}
	delete(s.trips, tripID)
	return nil
}

func (s *fakeStore) ListTrips(ctx context.Context, userID string) ([]domain.TripSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TripSummary
	for _, trip := range s.trips {
		if trip.UserID == userID {
			out = append(out, domain.TripSummary{ID: trip.ID, UserID: trip.UserID, Name: trip.Name, StopCount: len(trip.Stops)})
		}
	}
	return out, nil
}

func (s *fakeStore) deletedStops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleteStops...)
}

var (
	washington = domain.Coordinates{Lat: 38.90, Lng: -77.03}
	baltimore  = domain.Coordinates{Lat: 39.29, Lng: -76.61}
	annapolis  = domain.Coordinates{Lat: 38.98, Lng: -76.49}
	richmond   = domain.Coordinates{Lat: 37.54, Lng: -77.44}
)
