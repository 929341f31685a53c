package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"roadtrip/internal/domain"
	"roadtrip/internal/redis"
	"roadtrip/internal/repository"
)

const tripLockTTL = 10 * time.Second

// TripService handles trip persistence.
type TripService struct {
	runTx     TxRunner
	tripRepo  repository.TripRepository
	stopRepo  repository.StopRepository
	userRepo  repository.UserRepository
	lockStore redis.LockStoreInterface
	tripCache redis.TripCacheInterface
}

// NewTripService creates a new TripService. lockStore and tripCache may be nil.
func NewTripService(
	runTx TxRunner,
	tripRepo repository.TripRepository,
	stopRepo repository.StopRepository,
	userRepo repository.UserRepository,
	lockStore redis.LockStoreInterface,
	tripCache redis.TripCacheInterface,
) *TripService {
	return &TripService{
		runTx:     runTx,
		tripRepo:  tripRepo,
		stopRepo:  stopRepo,
		userRepo:  userRepo,
		lockStore: lockStore,
		tripCache: tripCache,
	}
}

// StopInput is one stop of a save request.
type StopInput struct {
	ID          string // Set for stops saved before
	Position    domain.Coordinates
	Type        string
	Cost        float64
	TimeMinutes int
}

// SaveTripRequest contains the parameters for saving a trip.
type SaveTripRequest struct {
	UserID      string
	Name        string
	Description string
	ImageURL    string
	Stops       []StopInput
}

// SaveTripResult contains the trip ID and one stop ID per submitted stop, in order.
type SaveTripResult struct {
	TripID  string
	StopIDs []string
}

// SaveTrip persists a new trip with its stops.
func (s *TripService) SaveTrip(ctx context.Context, req SaveTripRequest) (*SaveTripResult, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrInvalidUserID
	}

	stops, err := validateTrip(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("user %s: %w", req.UserID, err)
	}

	trip := &domain.Trip{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	result := &SaveTripResult{TripID: trip.ID, StopIDs: make([]string, 0, len(stops))}
	err = s.runTx(ctx, func(tx TripTx) error {
		if err := tx.Trips.Create(ctx, trip); err != nil {
			return err
		}
		for i := range stops {
			stops[i].ID = uuid.New().String()
			stops[i].TripID = trip.ID
			if err := tx.Stops.Create(ctx, &stops[i]); err != nil {
				return err
			}
			result.StopIDs = append(result.StopIDs, stops[i].ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateTrip replaces a trip's metadata and stops. Stops that carry an ID of
// this trip are updated in place; the rest get new IDs; stops left out are deleted.
func (s *TripService) UpdateTrip(ctx context.Context, tripID string, req SaveTripRequest) (*SaveTripResult, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	stops, err := validateTrip(req)
	if err != nil {
		return nil, err
	}

	// Serialize saves of the same trip.
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireTripLock(ctx, tripID, tripLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrTripSaveInProgress
		}
		defer s.lockStore.ReleaseTripLock(ctx, tripID)
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	trip.Name = strings.TrimSpace(req.Name)
	trip.Description = req.Description
	trip.ImageURL = req.ImageURL

	result := &SaveTripResult{TripID: trip.ID, StopIDs: make([]string, 0, len(stops))}
	err = s.runTx(ctx, func(tx TripTx) error {
		if err := tx.Trips.Update(ctx, trip); err != nil {
			return err
		}

		for i := range stops {
			stops[i].TripID = trip.ID
			if stops[i].ID != "" {
				err := tx.Stops.Update(ctx, &stops[i])
				if err == nil {
					result.StopIDs = append(result.StopIDs, stops[i].ID)
					continue
				}
				if !errors.Is(err, repository.ErrNotFound) {
					return err
				}
				// Deleted meanwhile or owned by another trip.
			}
			stops[i].ID = uuid.New().String()
			if err := tx.Stops.Create(ctx, &stops[i]); err != nil {
				return err
			}
			result.StopIDs = append(result.StopIDs, stops[i].ID)
		}

		return tx.Stops.DeleteByTripExcept(ctx, trip.ID, result.StopIDs)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, trip.ID)
	return result, nil
}

// GetTrip retrieves a trip with its stops in visit order.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if s.tripCache != nil {
		cached, err := s.tripCache.GetTrip(ctx, tripID)
		if err != nil {
			log.Printf("trip cache read failed for %s: %v", tripID, err)
		} else if cached != nil {
			return tripFromCache(cached), nil
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	trip.Stops, err = s.stopRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if s.tripCache != nil {
		if err := s.tripCache.SetTrip(ctx, tripToCache(trip)); err != nil {
			log.Printf("trip cache write failed for %s: %v", tripID, err)
		}
	}

	return trip, nil
}

// ListUserTrips retrieves summaries of a user's trips.
func (s *TripService) ListUserTrips(ctx context.Context, userID string) ([]*domain.TripSummary, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.tripRepo.ListByUser(ctx, userID)
}

// DeleteTrip removes a trip and its stops.
func (s *TripService) DeleteTrip(ctx context.Context, tripID string) error {
	if tripID == "" {
		return ErrInvalidTripID
	}

	if err := s.tripRepo.Delete(ctx, tripID); err != nil {
		return err
	}

	s.invalidate(ctx, tripID)
	return nil
}

// DeleteStop removes a single stop.
func (s *TripService) DeleteStop(ctx context.Context, stopID string) error {
	if stopID == "" {
		return ErrInvalidStopID
	}

	tripID, err := s.stopRepo.Delete(ctx, stopID)
	if err != nil {
		return err
	}

	s.invalidate(ctx, tripID)
	return nil
}

func (s *TripService) invalidate(ctx context.Context, tripID string) {
	if s.tripCache == nil {
		return
	}
	if err := s.tripCache.InvalidateTrip(ctx, tripID); err != nil {
		log.Printf("trip cache invalidation failed for %s: %v", tripID, err)
	}
}

// validateTrip checks a save request and converts its stops.
func validateTrip(req SaveTripRequest) ([]domain.Stop, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidTripName
	}

	if len(req.Stops) == 0 {
		return nil, ErrNoStops
	}

	stops := make([]domain.Stop, 0, len(req.Stops))
	for i, in := range req.Stops {
		if err := in.Position.Validate(); err != nil {
			return nil, fmt.Errorf("%w: stop %d: %v", ErrInvalidLocation, i, err)
		}
		if in.Cost < 0 || math.IsNaN(in.Cost) || math.IsInf(in.Cost, 0) {
			return nil, fmt.Errorf("%w: stop %d: %v", ErrInvalidCost, i, in.Cost)
		}
		if in.TimeMinutes < 0 {
			return nil, fmt.Errorf("%w: stop %d: %d", ErrInvalidStopTime, i, in.TimeMinutes)
		}

		stops = append(stops, domain.Stop{
			ID:          in.ID,
			Position:    in.Position,
			Type:        domain.ParseStopType(in.Type),
			Cost:        in.Cost,
			TimeMinutes: in.TimeMinutes,
			Order:       i,
		})
	}

	return stops, nil
}

func tripToCache(trip *domain.Trip) *redis.CachedTrip {
	cached := &redis.CachedTrip{
		ID:          trip.ID,
		UserID:      trip.UserID,
		Name:        trip.Name,
		Description: trip.Description,
		ImageURL:    trip.ImageURL,
		Stops:       make([]redis.CachedStop, 0, len(trip.Stops)),
		CreatedAt:   trip.CreatedAt,
		UpdatedAt:   trip.UpdatedAt,
	}
	for _, st := range trip.Stops {
		cached.Stops = append(cached.Stops, redis.CachedStop{
			ID:          st.ID,
			Lat:         st.Position.Lat,
			Lng:         st.Position.Lng,
			Type:        string(st.Type),
			Cost:        st.Cost,
			TimeMinutes: st.TimeMinutes,
		})
	}
	return cached
}

func tripFromCache(cached *redis.CachedTrip) *domain.Trip {
	trip := &domain.Trip{
		ID:          cached.ID,
		UserID:      cached.UserID,
		Name:        cached.Name,
		Description: cached.Description,
		ImageURL:    cached.ImageURL,
		Stops:       make([]domain.Stop, 0, len(cached.Stops)),
		CreatedAt:   cached.CreatedAt,
		UpdatedAt:   cached.UpdatedAt,
	}
	for i, st := range cached.Stops {
		trip.Stops = append(trip.Stops, domain.Stop{
			ID:          st.ID,
			TripID:      cached.ID,
			Position:    domain.Coordinates{Lat: st.Lat, Lng: st.Lng},
			Type:        domain.ParseStopType(st.Type),
			Cost:        st.Cost,
			TimeMinutes: st.TimeMinutes,
			Order:       i,
		})
	}
	return trip
}
