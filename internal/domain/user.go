package domain

import "time"

// User represents a trip planner account.
type User struct {
	ID        string
	Email     string
	TripCount int // Populated by listings only
	CreatedAt time.Time
}
