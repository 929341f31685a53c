package tests

import (
	"context"
	"errors"
	"testing"

	"roadtrip/internal/domain"
	"roadtrip/internal/repository"
	"roadtrip/internal/service"
)

func seedTrip(t *testing.T, f *tripFixture) *service.SaveTripResult {
	t.Helper()
	result, err := f.svc.SaveTrip(context.Background(), validSaveRequest())
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return result
}

// ──────────────────────────────────────────────
// 3. UPDATE RECONCILES STOPS
// ──────────────────────────────────────────────

func TestUpdateTrip_KeepsReplacesAndDeletesStops(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	ctx := context.Background()
	seeded := seedTrip(t, f)

	// Drop stop 2, keep 1 and 3 swapped, append a new one.
	req := validSaveRequest()
	req.Name = "Renamed"
	req.Stops = []service.StopInput{
		{ID: seeded.StopIDs[2], Position: annapolis, Type: "MISC", Cost: 5},
		{ID: seeded.StopIDs[0], Position: washington, Type: "FOOD", Cost: 18.5},
		{Position: baltimore, Type: "FUEL", Cost: 60},
	}

	result, err := f.svc.UpdateTrip(ctx, seeded.TripID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.StopIDs[0] != seeded.StopIDs[2] || result.StopIDs[1] != seeded.StopIDs[0] {
		t.Errorf("expected kept ids in new order, got %v", result.StopIDs)
	}
	if result.StopIDs[2] == "" || result.StopIDs[2] == seeded.StopIDs[1] {
		t.Errorf("expected a fresh id for the new stop, got %q", result.StopIDs[2])
	}
	if f.store.GetStop(seeded.StopIDs[1]) != nil {
		t.Error("expected omitted stop to be deleted")
	}

	trip, err := f.svc.GetTrip(ctx, seeded.TripID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.Name != "Renamed" {
		t.Errorf("expected name Renamed, got %s", trip.Name)
	}
	if len(trip.Stops) != 3 || trip.Stops[0].Position != annapolis {
		t.Errorf("expected annapolis first of 3 stops, got %+v", trip.Stops)
	}
	if trip.Stops[2].Type != domain.StopTypeFuel {
		t.Errorf("expected FUEL last, got %s", trip.Stops[2].Type)
	}
}

func TestUpdateTrip_ForeignStopIDGetsNewID(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	ctx := context.Background()
	first := seedTrip(t, f)
	second := seedTrip(t, f)

	req := validSaveRequest()
	req.Stops = []service.StopInput{{ID: first.StopIDs[0], Position: washington, Type: "FOOD"}}

	result, err := f.svc.UpdateTrip(ctx, second.TripID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StopIDs[0] == first.StopIDs[0] {
		t.Error("stop of another trip must not be taken over")
	}
	if s := f.store.GetStop(first.StopIDs[0]); s == nil || s.TripID != first.TripID {
		t.Error("other trip's stop must be untouched")
	}
}

// ──────────────────────────────────────────────
// 4. UPDATE LOCKING
// ──────────────────────────────────────────────

func TestUpdateTrip_ConflictWhenLockHeld(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	seeded := seedTrip(t, f)
	f.locks.ForceAcquireFailure = true

	_, err := f.svc.UpdateTrip(context.Background(), seeded.TripID, validSaveRequest())
	if !errors.Is(err, service.ErrTripSaveInProgress) {
		t.Fatalf("expected ErrTripSaveInProgress, got %v", err)
	}
	if f.store.StopUpdateCallCount != 0 {
		t.Errorf("expected no stop writes, got %d", f.store.StopUpdateCallCount)
	}
}

func TestUpdateTrip_ReleasesLockAndInvalidatesCache(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	ctx := context.Background()
	seeded := seedTrip(t, f)

	if _, err := f.svc.GetTrip(ctx, seeded.TripID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.cache.Has(seeded.TripID) {
		t.Fatal("expected trip cached after read")
	}

	if _, err := f.svc.UpdateTrip(ctx, seeded.TripID, validSaveRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.locks.IsLocked(seeded.TripID) {
		t.Error("expected lock released")
	}
	if f.locks.ReleaseCallCount != 1 {
		t.Errorf("expected 1 release, got %d", f.locks.ReleaseCallCount)
	}
	if f.cache.Has(seeded.TripID) {
		t.Error("expected cache invalidated after update")
	}
}

func TestUpdateTrip_MissingTrip(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	_, err := f.svc.UpdateTrip(context.Background(), "nope", validSaveRequest())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if f.locks.IsLocked("nope") {
		t.Error("expected lock released after failure")
	}
}
