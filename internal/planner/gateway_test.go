package planner

import (
	"context"
	"errors"
	"testing"

	"roadtrip/internal/domain"
)

func TestPersistenceGateway_Save_Validation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	gateway := NewPersistenceGateway(store)
	stops := []StopRecord{{Position: washington, Type: domain.StopTypeMisc}}

	tests := []struct {
		name  string
		meta  TripMeta
		stops []StopRecord
	}{
		{"empty name", TripMeta{Name: ""}, stops},
		{"blank name", TripMeta{Name: "   "}, stops},
		{"no stops", TripMeta{Name: "Coast"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gateway.Save(context.Background(), NewTripID, tt.meta, tt.stops)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}

	if store.saveCalls != 0 {
		t.Errorf("validation failures must not reach the store, got %d calls", store.saveCalls)
	}
}

func TestPersistenceGateway_SaveAndLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	gateway := NewPersistenceGateway(store)
	ctx := context.Background()

	stops := []StopRecord{
		{Position: washington, Type: domain.StopTypeFood, Cost: 20, CostOrigin: CostUser},
		{Position: baltimore, Type: domain.StopTypeRest, TimeMinutes: 30},
	}
	result, err := gateway.Save(ctx, NewTripID, TripMeta{UserID: "u1", Name: "Chesapeake"}, stops)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TripID == "" || len(result.StopIDs) != 2 {
		t.Fatalf("unexpected save result: %+v", result)
	}

	loaded, err := gateway.Load(ctx, result.TripID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Meta.Name != "Chesapeake" || len(loaded.Stops) != 2 {
		t.Fatalf("unexpected trip: %+v", loaded)
	}
	if loaded.Stops[0].Position != washington || loaded.Stops[1].Position != baltimore {
		t.Error("stops must come back in persisted order")
	}
	if loaded.Stops[0].ID != result.StopIDs[0] || loaded.Stops[1].TimeMinutes != 30 {
		t.Errorf("unexpected stops: %+v", loaded.Stops)
	}
}

func TestPersistenceGateway_NotFound(t *testing.T) {
	t.Parallel()

	gateway := NewPersistenceGateway(newFakeStore())
	ctx := context.Background()

	if _, err := gateway.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load: expected ErrNotFound, got %v", err)
	}
	if err := gateway.DeleteTrip(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTrip: expected ErrNotFound, got %v", err)
	}
	if err := gateway.DeleteStop(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteStop: expected ErrNotFound, got %v", err)
	}
}

func TestPersistenceGateway_DeleteUnsavedStop_NoStoreCall(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	gateway := NewPersistenceGateway(store)

	if err := gateway.DeleteStop(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(store.deletedStops()) != 0 {
		t.Error("unsaved stop must not reach the store")
	}
}
