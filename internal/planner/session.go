package planner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"roadtrip/internal/domain"
)

// Place is a place-search result that can become a stop.
type Place struct {
	Name     string
	Position domain.Coordinates
	Category string
}

// SessionConfig configures a Session.
type SessionConfig struct {
	Notifier Notifier
	Logger   *slog.Logger
}

// Session owns one trip-edit session: the trip state, its overlay, budget
// estimation and persistence. Marker placement happens synchronously with
// each event; routing and estimation run in the background and are dropped
// when the stop sequence has moved on.
type Session struct {
	state    *TripState
	overlay  *RouteOverlay
	budget   *BudgetEstimator
	gateway  *PersistenceGateway
	notifier Notifier
	logger   *slog.Logger

	saveMu sync.Mutex
	metaMu sync.Mutex
	meta   TripMeta

	wg sync.WaitGroup
}

// NewSession wires a session and registers it for clicks on canvas.
func NewSession(canvas Canvas, routes RouteFetcher, costs CostSource, gateway *PersistenceGateway, cfg SessionConfig) *Session {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	state := NewTripState()
	s := &Session{
		state:    state,
		overlay:  NewRouteOverlay(canvas, routes, state, notifier, logger),
		budget:   NewBudgetEstimator(costs, notifier, logger),
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
	}
	canvas.OnClick(func(pos domain.Coordinates) {
		if _, err := s.HandleClick(context.Background(), pos); err != nil {
			s.notifier.Notify(Notice{Source: SourceInput, Kind: "INVALID_COORDINATES", Message: err.Error()})
		}
	})
	return s
}

// Open starts a blank trip for NewTripMarker (or an empty marker) and loads
// the trip with that id otherwise. It waits for an in-flight save.
func (s *Session) Open(ctx context.Context, marker string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if marker == NewTripMarker || marker == NewTripID {
		s.setMeta(TripMeta{})
		s.state.Reset()
		s.refresh(ctx)
		return nil
	}

	trip, err := s.gateway.Load(ctx, marker)
	if err != nil {
		return err
	}
	s.setMeta(trip.Meta)
	s.state.Replace(trip.ID, trip.Stops)
	s.refresh(ctx)
	return nil
}

// HandleClick adds a MISC stop at the clicked position.
func (s *Session) HandleClick(ctx context.Context, pos domain.Coordinates) (StopRecord, error) {
	return s.AddStop(ctx, pos, domain.StopTypeMisc)
}

// AddStop appends a stop without a cost.
func (s *Session) AddStop(ctx context.Context, pos domain.Coordinates, typ domain.StopType) (StopRecord, error) {
	rec, err := s.state.AddStop(pos, typ)
	if err != nil {
		return StopRecord{}, err
	}
	s.refresh(ctx)
	return rec, nil
}

// AddStopWithCost appends a stop with a user-entered cost.
func (s *Session) AddStopWithCost(ctx context.Context, pos domain.Coordinates, typ domain.StopType, cost float64) (StopRecord, error) {
	rec, err := s.state.AddStopWithCost(pos, typ, cost)
	if err != nil {
		return StopRecord{}, err
	}
	s.refresh(ctx)
	return rec, nil
}

// AddSearchResult appends a place-search result as a stop.
func (s *Session) AddSearchResult(ctx context.Context, place Place) (StopRecord, error) {
	return s.AddStop(ctx, place.Position, domain.ParseStopType(place.Category))
}

// RemoveStop removes the stop at index locally and, if it was saved,
// deletes it on the backend without waiting. A failed backend delete is
// reported but the local removal stands.
func (s *Session) RemoveStop(ctx context.Context, index int) (StopRecord, error) {
	removed, err := s.state.RemoveStop(index)
	if err != nil {
		return StopRecord{}, err
	}
	s.refresh(ctx)

	if removed.Saved() {
		bg := context.WithoutCancel(ctx)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.gateway.DeleteStop(bg, removed.ID); err != nil {
				s.logger.Warn("backend stop delete failed",
					slog.String("stop_id", removed.ID),
					slog.Any("error", err))
				s.notifier.Notify(Notice{Source: SourceDeleteStop, Kind: deleteKind(err), Message: err.Error()})
			}
		}()
	}
	return removed, nil
}

// SetStopCost records a user-entered cost for the stop at index.
func (s *Session) SetStopCost(index int, cost float64) error {
	return s.state.SetStopCost(index, cost)
}

// SetStopTime records the minutes spent at the stop at index.
func (s *Session) SetStopTime(index, minutes int) error {
	return s.state.SetStopTime(index, minutes)
}

// Save persists the current stops. A failed save leaves local state untouched.
func (s *Session) Save(ctx context.Context, meta TripMeta) (SaveResult, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snap := s.state.Snapshot()
	result, err := s.gateway.Save(ctx, snap.TripID, meta, snap.Stops)
	if err != nil {
		return SaveResult{}, err
	}
	if !s.state.MarkSaved(snap, result) {
		s.logger.Info("trip changed during save, result not applied",
			slog.String("trip_id", result.TripID))
		return result, nil
	}
	s.setMeta(meta)
	return result, nil
}

// DeleteTrip deletes the trip on the backend, if saved, and starts a blank trip.
func (s *Session) DeleteTrip(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if id := s.state.TripID(); id != NewTripID {
		if err := s.gateway.DeleteTrip(ctx, id); err != nil {
			return err
		}
	}
	s.setMeta(TripMeta{})
	s.state.Reset()
	s.overlay.Clear()
	s.state.RecomputeAggregates(nil)
	return nil
}

// Wait blocks until background route, budget and delete work has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Totals returns the last computed aggregates.
func (s *Session) Totals() Totals {
	return s.state.Totals()
}

// Stops returns the stops in visit order.
func (s *Session) Stops() []StopRecord {
	return s.state.Stops()
}

func (s *Session) Status() Status {
	return s.state.Status()
}

func (s *Session) TripID() string {
	return s.state.TripID()
}

func (s *Session) Version() uint64 {
	return s.state.Version()
}

// Overlay returns the session's route overlay.
func (s *Session) Overlay() *RouteOverlay {
	return s.overlay
}

// Meta returns the trip metadata last loaded or saved.
func (s *Session) Meta() TripMeta {
	s.metaMu.Lock()
	defer s.metaMu.Unlock()
	return s.meta
}

func (s *Session) setMeta(m TripMeta) {
	s.metaMu.Lock()
	defer s.metaMu.Unlock()
	s.meta = m
}

// refresh re-syncs markers now and starts route and budget work for the
// current snapshot.
func (s *Session) refresh(ctx context.Context) {
	snap := s.state.Snapshot()
	s.overlay.Sync(snap)
	s.state.RecomputeAggregates(nil)

	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		route, err := s.overlay.DrawRoute(bg, snap)
		if err != nil {
			route = nil
		}
		if route != nil {
			s.state.RecomputeAggregates(&TaggedRoute{Version: snap.Version, Route: route})
		}

		// Estimation waits for the route so leg distances can price remote
		// stops; without a route every stop is priced at distance zero.
		result := s.budget.Estimate(bg, snap.Stops, CumulativeKm(route, len(snap.Stops)))
		if !s.state.ApplyEstimates(snap.Version, result) {
			s.logger.Debug("discarding stale budget estimate", slog.Uint64("requested_version", snap.Version))
		}
	}()
}

func deleteKind(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "NOT_FOUND"
	}
	return "NETWORK_ERROR"
}
