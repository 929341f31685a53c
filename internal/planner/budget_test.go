package planner

import (
	"context"
	"testing"

	"roadtrip/internal/domain"
)

func TestBudgetEstimator_UserCostWins(t *testing.T) {
	t.Parallel()

	state := NewTripState()
	state.AddStop(washington, domain.StopTypeFood)
	state.AddStop(baltimore, domain.StopTypeRest)
	state.SetStopCost(0, 50)

	costs := &fakeCosts{}
	estimator := NewBudgetEstimator(costs, nil, nil)
	result := estimator.Estimate(context.Background(), state.Stops(), nil)

	if result.PerStop[0] != 50 {
		t.Errorf("user cost must win, got %v", result.PerStop[0])
	}
	if result.PerStop[1] != 100 {
		t.Errorf("expected REST default 100, got %v", result.PerStop[1])
	}
	if result.Total != 150 {
		t.Errorf("expected total 150, got %v", result.Total)
	}
	if costs.calls != 1 {
		t.Errorf("user-priced stop must not be estimated, %d source calls", costs.calls)
	}

	state.ApplyEstimates(state.Version(), result)
	if got := state.Stops()[0].Cost; got != 50 {
		t.Errorf("stop cost changed to %v", got)
	}
}

func TestBudgetEstimator_Idempotent(t *testing.T) {
	t.Parallel()

	state := NewTripState()
	state.AddStop(washington, domain.StopTypeFood)
	state.AddStop(baltimore, domain.StopTypeFuel)
	state.AddStop(annapolis, domain.StopTypeEntertainment)

	estimator := NewBudgetEstimator(HeuristicCosts{}, nil, nil)

	first := estimator.Estimate(context.Background(), state.Stops(), nil)
	state.ApplyEstimates(state.Version(), first)
	second := estimator.Estimate(context.Background(), state.Stops(), nil)
	state.ApplyEstimates(state.Version(), second)

	if first.Total != second.Total {
		t.Errorf("expected identical totals, got %v and %v", first.Total, second.Total)
	}
	if first.Total != 115 {
		t.Errorf("expected 20+60+35=115, got %v", first.Total)
	}
	if got := state.Totals().CostTotal; got != 115 {
		t.Errorf("expected trip cost 115 without double counting, got %v", got)
	}
}

func TestBudgetEstimator_SourceFailureKeepsLastKnownCost(t *testing.T) {
	t.Parallel()

	state := NewTripState()
	state.AddStop(washington, domain.StopTypeFood)
	state.AddStop(baltimore, domain.StopTypeFuel)
	state.ApplyEstimates(state.Version(), BudgetResult{PerStop: []float64{18, 55}})

	notices := &NoticeLog{}
	estimator := NewBudgetEstimator(&fakeCosts{fail: map[domain.StopType]bool{domain.StopTypeFuel: true}}, notices, nil)
	result := estimator.Estimate(context.Background(), state.Stops(), nil)

	if result.PerStop[0] != 20 {
		t.Errorf("expected FOOD 20, got %v", result.PerStop[0])
	}
	if result.PerStop[1] != 55 {
		t.Errorf("failed stop must keep its last cost 55, got %v", result.PerStop[1])
	}
	if len(result.Failed) != 1 || result.Failed[0] != 1 {
		t.Errorf("expected failed [1], got %v", result.Failed)
	}
	if len(notices.Notices()) != 1 {
		t.Errorf("expected 1 notice, got %d", len(notices.Notices()))
	}

	state.ApplyEstimates(state.Version(), result)
	stops := state.Stops()
	if stops[1].Cost != 55 {
		t.Errorf("expected cost 55 to be kept, got %v", stops[1].Cost)
	}
}

func TestBudgetEstimator_PassesCumulativeDistance(t *testing.T) {
	t.Parallel()

	state := NewTripState()
	state.AddStop(washington, domain.StopTypeFood)
	state.AddStop(baltimore, domain.StopTypeRest)
	state.AddStop(annapolis, domain.StopTypeFuel)

	route := routeFor([]domain.Coordinates{washington, baltimore, annapolis})
	km := CumulativeKm(route, 3)
	if len(km) != 3 || km[0] != 0 || km[1] != 32 || km[2] != 64 {
		t.Fatalf("unexpected cumulative distances: %v", km)
	}

	costs := &fakeCosts{}
	NewBudgetEstimator(costs, nil, nil).Estimate(context.Background(), state.Stops(), km)
	if len(costs.distances) != 3 || costs.distances[2] != 64 {
		t.Errorf("expected distances [0 32 64], got %v", costs.distances)
	}

	// A distance list that does not line up with the stops is ignored.
	costs = &fakeCosts{}
	NewBudgetEstimator(costs, nil, nil).Estimate(context.Background(), state.Stops(), []float64{0, 5})
	for _, d := range costs.distances {
		if d != 0 {
			t.Errorf("mismatched distances must not be used, got %v", costs.distances)
			break
		}
	}
}

func TestCumulativeKm_RequiresOneLegPerHop(t *testing.T) {
	t.Parallel()

	route := routeFor([]domain.Coordinates{washington, baltimore})
	if km := CumulativeKm(route, 3); km != nil {
		t.Errorf("expected nil for a route with too few legs, got %v", km)
	}
	if km := CumulativeKm(nil, 2); km != nil {
		t.Errorf("expected nil without a route, got %v", km)
	}
}
