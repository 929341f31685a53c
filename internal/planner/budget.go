package planner

import (
	"context"
	"log/slog"
	"math"

	"roadtrip/internal/directions"
	"roadtrip/internal/domain"
)

// CostSource prices a single stop reached after distanceKm of driving from
// the first stop.
type CostSource interface {
	StopPrice(ctx context.Context, stop StopRecord, distanceKm float64) (float64, error)
}

// HeuristicCosts prices stops from the category defaults without a network call.
type HeuristicCosts struct{}

func (HeuristicCosts) StopPrice(_ context.Context, stop StopRecord, _ float64) (float64, error) {
	return domain.DefaultStopPrice(stop.Type), nil
}

// CumulativeKm returns, per stop, the driving distance from the first stop
// along route. It returns nil unless route has one leg between each pair of
// consecutive stops.
func CumulativeKm(route *directions.Route, stops int) []float64 {
	if route == nil || stops < 2 || len(route.Legs) != stops-1 {
		return nil
	}
	out := make([]float64, stops)
	for i, leg := range route.Legs {
		out[i+1] = out[i] + float64(leg.DistanceMeters)/1000
	}
	return out
}

// BudgetResult is the outcome of one estimation pass.
type BudgetResult struct {
	PerStop []float64
	Total   float64
	Failed  []int // indexes whose source call failed; their last known cost is kept
}

// BudgetEstimator fills in costs for stops the user has not priced.
type BudgetEstimator struct {
	source   CostSource
	notifier Notifier
	logger   *slog.Logger
}

// NewBudgetEstimator creates an estimator. A nil source uses HeuristicCosts.
func NewBudgetEstimator(source CostSource, notifier Notifier, logger *slog.Logger) *BudgetEstimator {
	if source == nil {
		source = HeuristicCosts{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BudgetEstimator{source: source, notifier: notifier, logger: logger}
}

// Estimate prices every stop. User-entered costs are returned unchanged.
// distancesKm, when it has one entry per stop, is passed to the source so
// remote stops can be priced higher.
func (e *BudgetEstimator) Estimate(ctx context.Context, stops []StopRecord, distancesKm []float64) BudgetResult {
	result := BudgetResult{PerStop: make([]float64, len(stops))}

	for i, s := range stops {
		if s.CostOrigin == CostUser {
			result.PerStop[i] = s.Cost
			continue
		}

		var km float64
		if len(distancesKm) == len(stops) {
			km = distancesKm[i]
		}
		price, err := e.source.StopPrice(ctx, s, km)
		if err == nil {
			err = validateCost(price)
		}
		if err != nil {
			e.logger.Warn("stop price estimation failed",
				slog.Int("index", i),
				slog.String("type", string(s.Type)),
				slog.Any("error", err))
			result.PerStop[i] = s.Cost
			result.Failed = append(result.Failed, i)
			continue
		}
		result.PerStop[i] = price
	}

	for _, c := range result.PerStop {
		result.Total += c
	}
	result.Total = math.Round(result.Total*100) / 100

	if len(result.Failed) > 0 {
		e.notifier.Notify(Notice{
			Source:  SourceBudget,
			Kind:    "ESTIMATE_FAILED",
			Message: "some stop prices could not be estimated; their last known cost is kept",
			Points:  result.Failed,
		})
	}
	return result
}
