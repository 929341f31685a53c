package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"roadtrip/internal/domain"
	"roadtrip/internal/places"
)

// PriceLevelSource looks up the 1-4 price level of a place of the stop's kind
// near pos. It returns places.ErrNoResult when nothing is known.
type PriceLevelSource interface {
	PriceLevel(ctx context.Context, pos domain.Coordinates, stopType domain.StopType) (int, error)
}

// priceLevelPrices are the dollars charged per Places price level.
var priceLevelPrices = map[int]float64{
	0: 0,
	1: 15,
	2: 25,
	3: 50,
	4: 100,
}

// PricingConfig contains stop pricing configuration.
type PricingConfig struct {
	SurchargeFreeKm float64 // Distance covered before the remote surcharge applies
	SurchargePerKm  float64 // Dollars added per km beyond SurchargeFreeKm
}

// DefaultPricingConfig returns the default pricing configuration.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		SurchargeFreeKm: 100,
		SurchargePerKm:  0.05,
	}
}

// PricingService estimates stop prices and trip budgets.
type PricingService struct {
	config PricingConfig
	levels PriceLevelSource
}

// NewPricingService creates a new PricingService. A nil levels source prices
// every stop from the category defaults.
func NewPricingService(config PricingConfig, levels PriceLevelSource) *PricingService {
	return &PricingService{config: config, levels: levels}
}

// BudgetItem is one stop of a budget calculation. A non-nil Cost overrides the estimate.
type BudgetItem struct {
	Type       domain.StopType
	Position   *domain.Coordinates
	Cost       *float64
	DistanceKm float64
}

// Budget is the per-stop and total cost of a trip.
type Budget struct {
	PerStop []float64
	Total   float64
}

// DefaultPrices returns the base price of every stop type.
func (s *PricingService) DefaultPrices() map[domain.StopType]float64 {
	prices := make(map[domain.StopType]float64, len(domain.StopTypes()))
	for _, t := range domain.StopTypes() {
		prices[t] = domain.DefaultStopPrice(t)
	}
	return prices
}

// StopPrice estimates the price of a stop reached after distanceKm of driving.
// With a position the base price comes from the nearest place's price level;
// without one, or when the lookup finds nothing, the category default is used.
// Remote stops get a surcharge.
func (s *PricingService) StopPrice(ctx context.Context, stopType domain.StopType, pos *domain.Coordinates, distanceKm float64) (float64, error) {
	if distanceKm < 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return 0, ErrInvalidDistance
	}
	if pos != nil {
		if err := pos.Validate(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
		}
	}

	base := s.basePrice(ctx, stopType, pos)
	surcharge := math.Max(0, (distanceKm-s.config.SurchargeFreeKm)*s.config.SurchargePerKm)

	return roundCents(base + surcharge), nil
}

func (s *PricingService) basePrice(ctx context.Context, stopType domain.StopType, pos *domain.Coordinates) float64 {
	if s.levels == nil || pos == nil {
		return domain.DefaultStopPrice(stopType)
	}

	level, err := s.levels.PriceLevel(ctx, *pos, stopType)
	if err != nil {
		if !errors.Is(err, places.ErrNoResult) {
			log.Printf("price level lookup failed for %s at %s: %v", stopType, pos, err)
		}
		return domain.DefaultStopPrice(stopType)
	}
	price, ok := priceLevelPrices[level]
	if !ok {
		return domain.DefaultStopPrice(stopType)
	}
	return price
}

// CalculateBudget prices every stop and sums the result.
func (s *PricingService) CalculateBudget(ctx context.Context, items []BudgetItem) (*Budget, error) {
	if len(items) == 0 {
		return nil, ErrNoStops
	}

	budget := &Budget{PerStop: make([]float64, 0, len(items))}
	for _, item := range items {
		var price float64
		if item.Cost != nil {
			if *item.Cost < 0 || math.IsNaN(*item.Cost) || math.IsInf(*item.Cost, 0) {
				return nil, ErrInvalidCost
			}
			price = *item.Cost
		} else {
			var err error
			price, err = s.StopPrice(ctx, item.Type, item.Position, item.DistanceKm)
			if err != nil {
				return nil, err
			}
		}
		budget.PerStop = append(budget.PerStop, price)
		budget.Total += price
	}
	budget.Total = roundCents(budget.Total)

	return budget, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
