package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"roadtrip/internal/domain"
	"roadtrip/internal/places"
	"roadtrip/internal/redis"
	"roadtrip/internal/repository"
	"roadtrip/internal/service"
)

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
	GetError    error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TRIP AND STOP REPOSITORIES
// ──────────────────────────────────────────────

// MockStore holds trips and stops together so that trip deletion cascades
// and transactions can roll back both.
type MockStore struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip
	stops map[string]*domain.Stop
	seq   int

	// Counters for verification
	TxCallCount         int32
	TripCreateCallCount int32
	StopCreateCallCount int32
	StopUpdateCallCount int32

	// Error injection
	TripCreateError error
	StopCreateError error
	// FailStopCreateAfter fails the nth and later stop creations (1-based) when > 0.
	FailStopCreateAfter int32
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		trips: make(map[string]*domain.Trip),
		stops: make(map[string]*domain.Stop),
	}
}

// Trips returns the trip repository view of the store.
func (m *MockStore) Trips() *MockTripRepository {
	return &MockTripRepository{store: m}
}

// Stops returns the stop repository view of the store.
func (m *MockStore) Stops() *MockStopRepository {
	return &MockStopRepository{store: m}
}

// RunTx implements service.TxRunner. Changes made by fn are discarded when it fails.
func (m *MockStore) RunTx(ctx context.Context, fn func(tx service.TripTx) error) error {
	atomic.AddInt32(&m.TxCallCount, 1)

	m.mu.Lock()
	trips := make(map[string]domain.Trip, len(m.trips))
	for id, t := range m.trips {
		trips[id] = *t
	}
	stops := make(map[string]domain.Stop, len(m.stops))
	for id, s := range m.stops {
		stops[id] = *s
	}
	m.mu.Unlock()

	err := fn(service.TripTx{Trips: m.Trips(), Stops: m.Stops()})
	if err == nil {
		return nil
	}

	// Rollback.
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips = make(map[string]*domain.Trip, len(trips))
	for id, t := range trips {
		m.trips[id] = &t
	}
	m.stops = make(map[string]*domain.Stop, len(stops))
	for id, s := range stops {
		m.stops[id] = &s
	}
	return err
}

// AddTrip adds a trip and its stops to the store.
func (m *MockStore) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *trip
	copy.Stops = nil
	m.trips[trip.ID] = &copy
	for i, s := range trip.Stops {
		s.TripID = trip.ID
		s.Order = i
		m.stops[s.ID] = &s
	}
}

// CountTrips returns the number of stored trips.
func (m *MockStore) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// CountStops returns the number of stored stops.
func (m *MockStore) CountStops() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stops)
}

// GetStop returns a stored stop for assertions.
func (m *MockStore) GetStop(id string) *domain.Stop {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stops[id]
}

func (m *MockStore) stopsOf(tripID string) []domain.Stop {
	var out []domain.Stop
	for _, s := range m.stops {
		if s.TripID == tripID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// MockTripRepository is a mock implementation of TripRepository backed by a MockStore.
type MockTripRepository struct {
	store *MockStore
}

func (r *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	m := r.store
	atomic.AddInt32(&m.TripCreateCallCount, 1)
	if m.TripCreateError != nil {
		return m.TripCreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	trip.CreatedAt = time.Unix(int64(1_700_000_000+m.seq), 0)
	trip.UpdatedAt = trip.CreatedAt
	copy := *trip
	copy.Stops = nil
	m.trips[trip.ID] = &copy
	return nil
}

func (r *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m := r.store
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (r *MockTripRepository) ListByUser(ctx context.Context, userID string) ([]*domain.TripSummary, error) {
	m := r.store
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.TripSummary
	for _, t := range m.trips {
		if t.UserID != userID {
			continue
		}
		result = append(result, &domain.TripSummary{
			ID:          t.ID,
			UserID:      t.UserID,
			Name:        t.Name,
			Description: t.Description,
			ImageURL:    t.ImageURL,
			StopCount:   len(m.stopsOf(t.ID)),
			CreatedAt:   t.CreatedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name = trip.Name
	stored.Description = trip.Description
	stored.ImageURL = trip.ImageURL
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	return nil
}

func (r *MockTripRepository) Delete(ctx context.Context, id string) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.trips, id)
	for sid, s := range m.stops {
		if s.TripID == id {
			delete(m.stops, sid)
		}
	}
	return nil
}

// MockStopRepository is a mock implementation of StopRepository backed by a MockStore.
type MockStopRepository struct {
	store *MockStore
}

func (r *MockStopRepository) Create(ctx context.Context, stop *domain.Stop) error {
	m := r.store
	n := atomic.AddInt32(&m.StopCreateCallCount, 1)
	if m.StopCreateError != nil && (m.FailStopCreateAfter == 0 || n >= m.FailStopCreateAfter) {
		return m.StopCreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *stop
	m.stops[stop.ID] = &copy
	return nil
}

func (r *MockStopRepository) Update(ctx context.Context, stop *domain.Stop) error {
	m := r.store
	atomic.AddInt32(&m.StopUpdateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.stops[stop.ID]
	if !ok || stored.TripID != stop.TripID {
		return repository.ErrNotFound
	}
	copy := *stop
	m.stops[stop.ID] = &copy
	return nil
}

func (r *MockStopRepository) ListByTrip(ctx context.Context, tripID string) ([]domain.Stop, error) {
	m := r.store
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopsOf(tripID), nil
}

func (r *MockStopRepository) DeleteByTripExcept(ctx context.Context, tripID string, keep []string) error {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make(map[string]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	for id, s := range m.stops {
		if s.TripID == tripID && !kept[id] {
			delete(m.stops, id)
		}
	}
	return nil
}

func (r *MockStopRepository) Delete(ctx context.Context, id string) (string, error) {
	m := r.store
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stops[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(m.stops, id)
	return s.TripID, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:trip:" + tripID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:trip:"+tripID)
	return nil
}

// IsLocked checks if a trip is locked (for test assertions).
func (m *MockLockStore) IsLocked(tripID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:trip:"+tripID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK TRIP CACHE
// ──────────────────────────────────────────────

// MockTripCache is a mock implementation of TripCacheInterface.
type MockTripCache struct {
	mu    sync.Mutex
	trips map[string]redis.CachedTrip

	// Counters
	GetCallCount        int32
	HitCount            int32
	SetCallCount        int32
	InvalidateCallCount int32

	// Error injection
	GetError error
}

// NewMockTripCache creates a new mock trip cache.
func NewMockTripCache() *MockTripCache {
	return &MockTripCache{
		trips: make(map[string]redis.CachedTrip),
	}
}

func (m *MockTripCache) GetTrip(ctx context.Context, tripID string) (*redis.CachedTrip, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[tripID]
	if !ok {
		return nil, nil
	}
	atomic.AddInt32(&m.HitCount, 1)
	return &trip, nil
}

func (m *MockTripCache) SetTrip(ctx context.Context, trip *redis.CachedTrip) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = *trip
	return nil
}

func (m *MockTripCache) InvalidateTrip(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trips, tripID)
	return nil
}

// Has reports whether a trip is cached.
func (m *MockTripCache) Has(tripID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.trips[tripID]
	return ok
}

// ──────────────────────────────────────────────
// MAPS MOCKS
// ──────────────────────────────────────────────

// MockPriceLevelSource returns fixed price levels per stop type.
type MockPriceLevelSource struct {
	mu        sync.Mutex
	Levels    map[domain.StopType]int
	Err       error
	CallCount int
}

func (m *MockPriceLevelSource) PriceLevel(ctx context.Context, pos domain.Coordinates, stopType domain.StopType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	if m.Err != nil {
		return 0, m.Err
	}
	level, ok := m.Levels[stopType]
	if !ok {
		return 0, places.ErrNoResult
	}
	return level, nil
}

// MockGeocoder resolves addresses from a fixed table.
type MockGeocoder struct {
	Places map[string]*places.Place
	Err    error
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*places.Place, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Places[address]
	if !ok {
		return nil, places.ErrNoResult
	}
	return p, nil
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, pos domain.Coordinates) (*places.Place, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Places {
		if p.Position == pos {
			return p, nil
		}
	}
	return nil, places.ErrNoResult
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)

var (
	_ repository.UserRepository = (*MockUserRepository)(nil)
	_ repository.TripRepository = (*MockTripRepository)(nil)
	_ repository.StopRepository = (*MockStopRepository)(nil)
	_ redis.LockStoreInterface  = (*MockLockStore)(nil)
	_ redis.TripCacheInterface  = (*MockTripCache)(nil)

	_ service.PriceLevelSource = (*MockPriceLevelSource)(nil)
	_ service.Geocoder         = (*MockGeocoder)(nil)
)
