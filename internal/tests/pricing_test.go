package tests

import (
	"context"
	"errors"
	"math"
	"testing"

	"roadtrip/internal/domain"
	"roadtrip/internal/service"
)

// ──────────────────────────────────────────────
// 7. PRICING
// ──────────────────────────────────────────────

func TestPricing_DefaultPrices(t *testing.T) {
	t.Parallel()

	prices := service.NewPricingService(service.DefaultPricingConfig(), nil).DefaultPrices()
	want := map[domain.StopType]float64{
		domain.StopTypeFood:          20,
		domain.StopTypeRest:          100,
		domain.StopTypeFuel:          60,
		domain.StopTypeEntertainment: 35,
		domain.StopTypeMisc:          15,
	}
	for typ, price := range want {
		if prices[typ] != price {
			t.Errorf("%s: got %v, want %v", typ, prices[typ], price)
		}
	}
}

func TestPricing_StopPriceSurcharge(t *testing.T) {
	t.Parallel()

	svc := service.NewPricingService(service.DefaultPricingConfig(), nil)
	tests := []struct {
		typ  domain.StopType
		km   float64
		want float64
	}{
		{domain.StopTypeFood, 0, 20},
		{domain.StopTypeFood, 100, 20},
		{domain.StopTypeFood, 150, 22.5},
		{domain.StopTypeFuel, 333.33, 71.67},
		{domain.StopTypeMisc, 100.2, 15.01},
	}
	for _, tt := range tests {
		got, err := svc.StopPrice(context.Background(), tt.typ, nil, tt.km)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("StopPrice(%s, %v) = %v, want %v", tt.typ, tt.km, got, tt.want)
		}
	}

	for _, km := range []float64{-1, math.NaN(), math.Inf(1)} {
		if _, err := svc.StopPrice(context.Background(), domain.StopTypeFood, nil, km); !errors.Is(err, service.ErrInvalidDistance) {
			t.Errorf("StopPrice(%v) expected ErrInvalidDistance, got %v", km, err)
		}
	}
}

func TestPricing_CalculateBudgetUserCostWins(t *testing.T) {
	t.Parallel()

	svc := service.NewPricingService(service.DefaultPricingConfig(), nil)
	zero, fixed := 0.0, 42.25

	budget, err := svc.CalculateBudget(context.Background(), []service.BudgetItem{
		{Type: domain.StopTypeRest},
		{Type: domain.StopTypeFood, Cost: &fixed, DistanceKm: 500},
		{Type: domain.StopTypeFuel, Cost: &zero},
		{Type: domain.StopTypeEntertainment, DistanceKm: 120},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{100, 42.25, 0, 36}
	for i := range want {
		if budget.PerStop[i] != want[i] {
			t.Errorf("stop %d: got %v, want %v", i, budget.PerStop[i], want[i])
		}
	}
	if budget.Total != 178.25 {
		t.Errorf("total = %v, want 178.25", budget.Total)
	}
}

func TestPricing_CalculateBudgetErrors(t *testing.T) {
	t.Parallel()

	svc := service.NewPricingService(service.DefaultPricingConfig(), nil)
	if _, err := svc.CalculateBudget(context.Background(), nil); !errors.Is(err, service.ErrNoStops) {
		t.Errorf("expected ErrNoStops, got %v", err)
	}

	neg := -3.0
	if _, err := svc.CalculateBudget(context.Background(), []service.BudgetItem{{Cost: &neg}}); !errors.Is(err, service.ErrInvalidCost) {
		t.Errorf("expected ErrInvalidCost, got %v", err)
	}
}

func TestPricing_StopPriceUsesNearbyPriceLevel(t *testing.T) {
	t.Parallel()

	levels := &MockPriceLevelSource{Levels: map[domain.StopType]int{
		domain.StopTypeFood: 3,
		domain.StopTypeRest: 1,
	}}
	svc := service.NewPricingService(service.DefaultPricingConfig(), levels)
	pos := washington

	tests := []struct {
		typ  domain.StopType
		km   float64
		want float64
	}{
		{domain.StopTypeFood, 0, 50},   // level 3
		{domain.StopTypeRest, 0, 15},   // level 1
		{domain.StopTypeRest, 200, 20}, // level 1 plus surcharge
		{domain.StopTypeFuel, 0, 60},   // no place known: category default
	}
	for _, tt := range tests {
		got, err := svc.StopPrice(context.Background(), tt.typ, &pos, tt.km)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("StopPrice(%s, %v) = %v, want %v", tt.typ, tt.km, got, tt.want)
		}
	}
}

func TestPricing_StopPriceFallsBackWhenLookupFails(t *testing.T) {
	t.Parallel()

	levels := &MockPriceLevelSource{Err: ErrMockTimeout}
	svc := service.NewPricingService(service.DefaultPricingConfig(), levels)
	pos := baltimore

	got, err := svc.StopPrice(context.Background(), domain.StopTypeEntertainment, &pos, 0)
	if err != nil {
		t.Fatalf("a failed lookup must not fail the price: %v", err)
	}
	if got != 35 {
		t.Errorf("expected ENTERTAINMENT default 35, got %v", got)
	}
	if levels.CallCount != 1 {
		t.Errorf("expected 1 lookup, got %d", levels.CallCount)
	}
}

func TestPricing_StopPriceWithoutPositionSkipsLookup(t *testing.T) {
	t.Parallel()

	levels := &MockPriceLevelSource{Levels: map[domain.StopType]int{domain.StopTypeFood: 4}}
	svc := service.NewPricingService(service.DefaultPricingConfig(), levels)

	got, err := svc.StopPrice(context.Background(), domain.StopTypeFood, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 20 || levels.CallCount != 0 {
		t.Errorf("expected default 20 without a lookup, got %v after %d lookups", got, levels.CallCount)
	}

	bad := domain.Coordinates{Lat: 91, Lng: 0}
	if _, err := svc.StopPrice(context.Background(), domain.StopTypeFood, &bad, 0); !errors.Is(err, service.ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}
