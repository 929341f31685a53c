package planner

import (
	"fmt"
	"math"

	"roadtrip/internal/domain"
)

// CostOrigin records who set a stop's cost.
type CostOrigin int

const (
	CostUnset CostOrigin = iota
	CostUser
	CostEstimated
)

func (o CostOrigin) String() string {
	switch o {
	case CostUser:
		return "user"
	case CostEstimated:
		return "estimated"
	default:
		return "unset"
	}
}

// StopRecord is one stop in the planner's working trip.
type StopRecord struct {
	ID          string // empty until the first successful save
	Position    domain.Coordinates
	Type        domain.StopType
	Cost        float64
	CostOrigin  CostOrigin
	TimeMinutes int

	key uint64 // local identity, stable across removals of other stops
}

// Saved reports whether the backend knows this stop.
func (s StopRecord) Saved() bool {
	return s.ID != ""
}

// Label is the marker caption for the stop at position index.
func (s StopRecord) Label(index int) string {
	return fmt.Sprintf("%d. %s", index+1, s.Type)
}

func validateCost(cost float64) error {
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidCost, cost)
	}
	return nil
}
