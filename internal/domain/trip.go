package domain

import "time"

// Trip represents a saved road trip with its ordered stops.
type Trip struct {
	ID          string
	UserID      string
	Name        string
	Description string
	ImageURL    string
	Stops       []Stop
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TotalCost sums the cost of every stop.
func (t *Trip) TotalCost() float64 {
	var total float64
	for _, s := range t.Stops {
		total += s.Cost
	}
	return total
}

// TotalTimeMinutes sums the time allocated to every stop.
func (t *Trip) TotalTimeMinutes() int {
	total := 0
	for _, s := range t.Stops {
		total += s.TimeMinutes
	}
	return total
}

// TripSummary is the list view of a trip, without stops.
type TripSummary struct {
	ID          string
	UserID      string
	Name        string
	Description string
	ImageURL    string
	StopCount   int
	CreatedAt   time.Time
}
