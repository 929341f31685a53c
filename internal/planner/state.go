package planner

import (
	"fmt"
	"math"
	"sync"

	"roadtrip/internal/directions"
	"roadtrip/internal/domain"
)

// NewTripID is the trip id of a trip that has never been saved.
const NewTripID = ""

// NewTripMarker is the current-trip marker value that opens a blank trip.
const NewTripMarker = "new"

// Status is the save state of the working trip.
type Status string

const (
	StatusNew   Status = "NEW"
	StatusDirty Status = "DIRTY"
	StatusSaved Status = "SAVED"
)

// Totals are the derived trip aggregates.
type Totals struct {
	CostTotal      float64
	TimeMinutes    int // route minutes plus per-stop minutes
	DistanceMeters int
	Provisional    bool // route-derived values belong to an older stop sequence
}

// TaggedRoute is a route together with the state version it was requested for.
type TaggedRoute struct {
	Version uint64
	Route   *directions.Route
}

// Snapshot is an immutable copy of the trip for asynchronous consumers.
type Snapshot struct {
	TripID   string
	Epoch    uint64
	Version  uint64
	Revision uint64
	Stops    []StopRecord
}

// Coordinates returns the stop positions in visit order.
func (s Snapshot) Coordinates() []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(s.Stops))
	for _, st := range s.Stops {
		out = append(out, st.Position)
	}
	return out
}

// TripState is the single source of truth for one trip-edit session.
//
// Version increments on every structural change (add, remove, replace) and
// is the only staleness check for asynchronous results. Revision increments
// on every change, including cost edits, and decides whether a finished save
// still reflects the local trip. Epoch increments whenever a different trip
// is swapped in, so results for a trip that is no longer loaded are ignored.
type TripState struct {
	mu sync.Mutex

	tripID   string
	stops    []StopRecord
	epoch    uint64
	version  uint64
	revision uint64
	nextKey  uint64
	status   Status

	totals         Totals
	routeVersion   uint64
	routeSeconds   int
	routeMeters    int
	routeAvailable bool
}

// NewTripState creates an empty, unsaved trip.
func NewTripState() *TripState {
	return &TripState{status: StatusNew}
}

// AddStop appends a stop with no cost.
func (t *TripState) AddStop(pos domain.Coordinates, typ domain.StopType) (StopRecord, error) {
	return t.addStop(pos, typ, 0, CostUnset)
}

// AddStopWithCost appends a stop with a user-entered cost.
func (t *TripState) AddStopWithCost(pos domain.Coordinates, typ domain.StopType, cost float64) (StopRecord, error) {
	if err := validateCost(cost); err != nil {
		return StopRecord{}, err
	}
	return t.addStop(pos, typ, cost, CostUser)
}

func (t *TripState) addStop(pos domain.Coordinates, typ domain.StopType, cost float64, origin CostOrigin) (StopRecord, error) {
	if err := pos.Validate(); err != nil {
		return StopRecord{}, err
	}
	if typ == "" {
		typ = domain.StopTypeMisc
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextKey++
	rec := StopRecord{
		Position:   pos,
		Type:       domain.ParseStopType(string(typ)),
		Cost:       cost,
		CostOrigin: origin,
		key:        t.nextKey,
	}
	t.stops = append(t.stops, rec)
	t.structuralChangeLocked()
	return rec, nil
}

// RemoveStop deletes the stop at index and returns it.
func (t *TripState) RemoveStop(index int) (StopRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.stops) {
		return StopRecord{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(t.stops))
	}

	removed := t.stops[index]
	stops := make([]StopRecord, 0, len(t.stops)-1)
	stops = append(stops, t.stops[:index]...)
	stops = append(stops, t.stops[index+1:]...)
	t.stops = stops
	t.structuralChangeLocked()
	return removed, nil
}

// SetStopCost records a user-entered cost. It does not change the version.
func (t *TripState) SetStopCost(index int, cost float64) error {
	if err := validateCost(cost); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.stops) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(t.stops))
	}
	t.stops[index].Cost = cost
	t.stops[index].CostOrigin = CostUser
	t.revision++
	t.status = StatusDirty
	t.recomputeLocked(nil)
	return nil
}

// SetStopTime records the minutes spent at the stop at index.
func (t *TripState) SetStopTime(index, minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("stop time must be non-negative, got %d", minutes)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.stops) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(t.stops))
	}
	t.stops[index].TimeMinutes = minutes
	t.revision++
	t.status = StatusDirty
	t.recomputeLocked(nil)
	return nil
}

// ApplyEstimates writes estimated costs for stops without a user cost.
// It returns false and changes nothing when version is no longer current.
func (t *TripState) ApplyEstimates(version uint64, result BudgetResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if version != t.version || len(result.PerStop) != len(t.stops) {
		return false
	}

	failed := make(map[int]bool, len(result.Failed))
	for _, i := range result.Failed {
		failed[i] = true
	}
	for i := range t.stops {
		if t.stops[i].CostOrigin == CostUser || failed[i] {
			continue
		}
		t.stops[i].Cost = result.PerStop[i]
		t.stops[i].CostOrigin = CostEstimated
	}
	t.recomputeLocked(nil)
	return true
}

// RecomputeAggregates refreshes Totals. Route-derived values are taken from
// route only when it was requested for the current version.
func (t *TripState) RecomputeAggregates(route *TaggedRoute) Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recomputeLocked(route)
}

func (t *TripState) recomputeLocked(route *TaggedRoute) Totals {
	var cost float64
	var stopMinutes int
	for _, s := range t.stops {
		cost += s.Cost
		stopMinutes += s.TimeMinutes
	}

	if len(t.stops) < 2 {
		t.routeVersion = t.version
		t.routeSeconds = 0
		t.routeMeters = 0
		t.routeAvailable = true
	} else if route != nil && route.Route != nil && route.Version == t.version {
		t.routeVersion = t.version
		t.routeSeconds = route.Route.DurationSeconds
		t.routeMeters = route.Route.DistanceMeters
		t.routeAvailable = true
	}

	t.totals = Totals{
		CostTotal:      math.Round(cost*100) / 100,
		TimeMinutes:    int(math.Round(float64(t.routeSeconds)/60)) + stopMinutes,
		DistanceMeters: t.routeMeters,
		Provisional:    !t.routeAvailable || t.routeVersion != t.version,
	}
	return t.totals
}

// Replace swaps in a persisted trip. The state is SAVED afterwards.
func (t *TripState) Replace(tripID string, stops []StopRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tripID = tripID
	t.epoch++
	t.stops = make([]StopRecord, 0, len(stops))
	for _, s := range stops {
		t.nextKey++
		s.key = t.nextKey
		t.stops = append(t.stops, s)
	}
	t.structuralChangeLocked()
	t.status = StatusSaved
	if tripID == NewTripID {
		t.status = StatusNew
	}
}

// Reset discards every stop and starts a new, unsaved trip.
func (t *TripState) Reset() {
	t.Replace(NewTripID, nil)
}

// MarkSaved records a successful save of snap. Stop ids are matched to the
// stops that were saved even if other stops were added or removed meanwhile.
// It returns false and changes nothing when another trip has been loaded or
// reset since snap was taken.
func (t *TripState) MarkSaved(snap Snapshot, result SaveResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if snap.Epoch != t.epoch || snap.TripID != t.tripID {
		return false
	}

	ids := make(map[uint64]string, len(snap.Stops))
	for i, s := range snap.Stops {
		if i < len(result.StopIDs) {
			ids[s.key] = result.StopIDs[i]
		}
	}
	for i := range t.stops {
		if id, ok := ids[t.stops[i].key]; ok {
			t.stops[i].ID = id
		}
	}

	t.tripID = result.TripID
	if t.revision == snap.Revision {
		t.status = StatusSaved
	} else {
		t.status = StatusDirty
	}
	return true
}

// Snapshot copies the current trip.
func (t *TripState) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	stops := make([]StopRecord, len(t.stops))
	copy(stops, t.stops)
	return Snapshot{TripID: t.tripID, Epoch: t.epoch, Version: t.version, Revision: t.revision, Stops: stops}
}

// Stops returns a copy of the stops in visit order.
func (t *TripState) Stops() []StopRecord {
	return t.Snapshot().Stops
}

// Len returns the number of stops.
func (t *TripState) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stops)
}

// Version returns the structural version.
func (t *TripState) Version() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.version
}

// TripID returns the persisted trip id, or NewTripID.
func (t *TripState) TripID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tripID
}

// Status returns the save state.
func (t *TripState) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Totals returns the last computed aggregates.
func (t *TripState) Totals() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totals
}

func (t *TripState) structuralChangeLocked() {
	t.version++
	t.revision++
	t.status = StatusDirty
	t.recomputeLocked(nil)
}
