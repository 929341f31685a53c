package directions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadtrip/internal/domain"
)

type stubProvider struct {
	mu    sync.Mutex
	calls int
	route *Route
	err   error
}

func (p *stubProvider) Directions(ctx context.Context, req Request) (*Route, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.route, nil
}

type mapCache struct {
	mu     sync.Mutex
	routes map[string]*Route
}

func (c *mapCache) GetRoute(ctx context.Context, key string) (*Route, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.routes[key], nil
}

func (c *mapCache) SetRoute(ctx context.Context, key string, r *Route) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[key] = r
	return nil
}

type countingObserver struct {
	outcomes []Kind
	cached   int
}

func (o *countingObserver) ObserveRoute(outcome Kind, cached bool) {
	o.outcomes = append(o.outcomes, outcome)
	if cached {
		o.cached++
	}
}

var (
	washington = domain.Coordinates{Lat: 38.90, Lng: -77.03}
	baltimore  = domain.Coordinates{Lat: 39.29, Lng: -76.61}
)

func TestFetchRouteNotEnoughStopsSkipsProvider(t *testing.T) {
	provider := &stubProvider{route: &Route{}}
	svc := NewService(provider, ServiceConfig{})

	for _, coords := range [][]domain.Coordinates{nil, {washington}} {
		route, err := svc.FetchRoute(context.Background(), coords)
		assert.Nil(t, route)
		assert.ErrorIs(t, err, ErrNotEnoughStops)
		assert.Equal(t, KindNotEnoughStops, KindOf(err))
	}
	assert.Equal(t, 0, provider.calls)
}

func TestFetchRouteRejectsInvalidCoordinates(t *testing.T) {
	provider := &stubProvider{route: &Route{}}
	svc := NewService(provider, ServiceConfig{})

	_, err := svc.FetchRoute(context.Background(), []domain.Coordinates{washington, {Lat: 91, Lng: 0}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinates)
	assert.Equal(t, 0, provider.calls)
}

func TestFetchRouteSuccess(t *testing.T) {
	want := &Route{EncodedPath: "abc", DurationSeconds: 3600, DistanceMeters: 64000, Legs: []Leg{{64000, 3600}}}
	provider := &stubProvider{route: want}
	observer := &countingObserver{}
	svc := NewService(provider, ServiceConfig{Observer: observer})

	got, err := svc.FetchRoute(context.Background(), []domain.Coordinates{washington, baltimore})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []Kind{KindOK}, observer.outcomes)
}

func TestFetchRouteWrapsUnknownErrorsAsNetwork(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection reset")}
	svc := NewService(provider, ServiceConfig{})

	_, err := svc.FetchRoute(context.Background(), []domain.Coordinates{washington, baltimore})
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrUnroutable)
}

func TestFetchRoutePassesFailuresThrough(t *testing.T) {
	provider := &stubProvider{err: &Failure{Kind: KindUnroutable, Points: []int{1}}}
	svc := NewService(provider, ServiceConfig{})

	_, err := svc.FetchRoute(context.Background(), []domain.Coordinates{washington, baltimore})
	assert.ErrorIs(t, err, ErrUnroutable)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, []int{1}, f.Points)
}

func TestFetchRouteUsesCache(t *testing.T) {
	provider := &stubProvider{route: &Route{EncodedPath: "abc", DistanceMeters: 10}}
	cache := &mapCache{routes: map[string]*Route{}}
	observer := &countingObserver{}
	svc := NewService(provider, ServiceConfig{Cache: cache, Observer: observer})

	coords := []domain.Coordinates{washington, baltimore}
	_, err := svc.FetchRoute(context.Background(), coords)
	require.NoError(t, err)
	_, err = svc.FetchRoute(context.Background(), coords)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, 1, observer.cached)

	// Reversed order is a different route.
	_, err = svc.FetchRoute(context.Background(), []domain.Coordinates{baltimore, washington})
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestFetchRouteFailuresAreNotCached(t *testing.T) {
	provider := &stubProvider{err: &Failure{Kind: KindProvider, StatusCode: 500}}
	cache := &mapCache{routes: map[string]*Route{}}
	svc := NewService(provider, ServiceConfig{Cache: cache})

	coords := []domain.Coordinates{washington, baltimore}
	_, _ = svc.FetchRoute(context.Background(), coords)
	_, _ = svc.FetchRoute(context.Background(), coords)

	assert.Equal(t, 2, provider.calls)
	assert.Empty(t, cache.routes)
}

func TestFetchRouteRateLimitHonoursContext(t *testing.T) {
	provider := &stubProvider{route: &Route{}}
	svc := NewService(provider, ServiceConfig{RatePerSecond: 0.001, Burst: 1})
	coords := []domain.Coordinates{washington, baltimore}

	_, err := svc.FetchRoute(context.Background(), coords)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.FetchRoute(ctx, coords)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 1, provider.calls)
}

func TestRoutePathRoundTrip(t *testing.T) {
	points := []domain.Coordinates{washington, {Lat: 39.10, Lng: -76.80}, baltimore}
	r := &Route{EncodedPath: EncodePath(points)}

	decoded, err := r.Path()
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range points {
		assert.InDelta(t, points[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, points[i].Lng, decoded[i].Lng, 1e-5)
	}
}

func TestCacheKeyIsOrderSensitive(t *testing.T) {
	a := CacheKey(Request{Coordinates: []domain.Coordinates{washington, baltimore}})
	b := CacheKey(Request{Coordinates: []domain.Coordinates{baltimore, washington}})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, CacheKey(Request{Coordinates: []domain.Coordinates{washington, baltimore}, Mode: DefaultMode}))
}

func TestCacheKeyDistinguishesNearbyStops(t *testing.T) {
	// Two stops well under a metre apart are still different requests.
	near := domain.Coordinates{Lat: washington.Lat + 0.000004, Lng: washington.Lng}
	a := CacheKey(Request{Coordinates: []domain.Coordinates{washington, baltimore}})
	b := CacheKey(Request{Coordinates: []domain.Coordinates{near, baltimore}})
	assert.NotEqual(t, a, b)
}
