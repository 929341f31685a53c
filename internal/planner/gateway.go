package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"roadtrip/internal/domain"
)

// TripMeta is the descriptive part of a trip.
type TripMeta struct {
	UserID      string
	Name        string
	Description string
	ImageURL    string
}

// LoadedTrip is a persisted trip converted into planner records.
type LoadedTrip struct {
	ID    string
	Meta  TripMeta
	Stops []StopRecord
}

// SaveResult carries the ids the backend assigned, one stop id per saved stop in order.
type SaveResult struct {
	TripID  string
	StopIDs []string
}

// TripStore is the backend that persists trips.
// Implementations wrap ErrNotFound for missing trips and stops.
type TripStore interface {
	GetTrip(ctx context.Context, tripID string) (*domain.Trip, error)
	SaveTrip(ctx context.Context, trip *domain.Trip) (SaveResult, error)
	DeleteStop(ctx context.Context, stopID string) error
	DeleteTrip(ctx context.Context, tripID string) error
	ListTrips(ctx context.Context, userID string) ([]domain.TripSummary, error)
}

// PersistenceGateway validates trips and serialises saves against a TripStore.
type PersistenceGateway struct {
	store  TripStore
	saveMu sync.Mutex
}

// NewPersistenceGateway creates a gateway over store.
func NewPersistenceGateway(store TripStore) *PersistenceGateway {
	return &PersistenceGateway{store: store}
}

// Load returns the trip's stops in persisted order.
func (g *PersistenceGateway) Load(ctx context.Context, tripID string) (*LoadedTrip, error) {
	if strings.TrimSpace(tripID) == "" {
		return nil, fmt.Errorf("%w: empty trip id", ErrNotFound)
	}

	trip, err := g.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load trip %s: %w", tripID, err)
	}

	loaded := &LoadedTrip{
		ID: trip.ID,
		Meta: TripMeta{
			UserID:      trip.UserID,
			Name:        trip.Name,
			Description: trip.Description,
			ImageURL:    trip.ImageURL,
		},
		Stops: make([]StopRecord, 0, len(trip.Stops)),
	}
	for _, s := range trip.Stops {
		origin := CostUnset
		if s.Cost > 0 {
			origin = CostUser
		}
		loaded.Stops = append(loaded.Stops, StopRecord{
			ID:          s.ID,
			Position:    s.Position,
			Type:        domain.ParseStopType(string(s.Type)),
			Cost:        s.Cost,
			CostOrigin:  origin,
			TimeMinutes: s.TimeMinutes,
		})
	}
	return loaded, nil
}

// Save creates the trip when tripID is NewTripID and replaces it otherwise.
// It returns ErrValidation without contacting the store when the name is
// blank or there are no stops.
func (g *PersistenceGateway) Save(ctx context.Context, tripID string, meta TripMeta, stops []StopRecord) (SaveResult, error) {
	if err := ValidateTrip(meta, stops); err != nil {
		return SaveResult{}, err
	}

	g.saveMu.Lock()
	defer g.saveMu.Unlock()

	trip := &domain.Trip{
		ID:          tripID,
		UserID:      meta.UserID,
		Name:        strings.TrimSpace(meta.Name),
		Description: meta.Description,
		ImageURL:    meta.ImageURL,
		Stops:       make([]domain.Stop, 0, len(stops)),
	}
	for i, s := range stops {
		trip.Stops = append(trip.Stops, domain.Stop{
			ID:          s.ID,
			TripID:      tripID,
			Position:    s.Position,
			Type:        s.Type,
			Cost:        s.Cost,
			TimeMinutes: s.TimeMinutes,
			Order:       i,
		})
	}

	result, err := g.store.SaveTrip(ctx, trip)
	if err != nil {
		return SaveResult{}, fmt.Errorf("save trip: %w", err)
	}
	if result.TripID == "" || len(result.StopIDs) != len(stops) {
		return SaveResult{}, fmt.Errorf("save trip: backend returned %d stop ids for %d stops", len(result.StopIDs), len(stops))
	}
	return result, nil
}

// DeleteStop removes a persisted stop.
func (g *PersistenceGateway) DeleteStop(ctx context.Context, stopID string) error {
	if stopID == "" {
		return fmt.Errorf("%w: stop was never saved", ErrNotFound)
	}
	if err := g.store.DeleteStop(ctx, stopID); err != nil {
		return fmt.Errorf("delete stop %s: %w", stopID, err)
	}
	return nil
}

// DeleteTrip removes a persisted trip and its stops.
func (g *PersistenceGateway) DeleteTrip(ctx context.Context, tripID string) error {
	if tripID == NewTripID {
		return fmt.Errorf("%w: trip was never saved", ErrNotFound)
	}
	if err := g.store.DeleteTrip(ctx, tripID); err != nil {
		return fmt.Errorf("delete trip %s: %w", tripID, err)
	}
	return nil
}

// ListTrips returns the user's trip summaries.
func (g *PersistenceGateway) ListTrips(ctx context.Context, userID string) ([]domain.TripSummary, error) {
	trips, err := g.store.ListTrips(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

// ValidateTrip checks the rules a trip must meet before it can be saved.
func ValidateTrip(meta TripMeta, stops []StopRecord) error {
	var errs []error
	if strings.TrimSpace(meta.Name) == "" {
		errs = append(errs, errors.New("trip name is required"))
	}
	if len(stops) == 0 {
		errs = append(errs, errors.New("at least one stop is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errors.Join(errs...))
	}
	return nil
}
