package planner

import (
	"context"
	"errors"
	"testing"

	"roadtrip/internal/directions"
	"roadtrip/internal/domain"
)

func newOverlayFixture() (*TripState, *fakeCanvas, *fakeRoutes, *NoticeLog, *RouteOverlay) {
	state := NewTripState()
	canvas := newFakeCanvas()
	routes := &fakeRoutes{}
	notices := &NoticeLog{}
	return state, canvas, routes, notices, NewRouteOverlay(canvas, routes, state, notices, nil)
}

// ──────────────────────────────────────────────
// 1. RENDERING
// ──────────────────────────────────────────────

func TestRouteOverlay_Render_MarkersAndPath(t *testing.T) {
	t.Parallel()

	state, canvas, routes, _, overlay := newOverlayFixture()
	state.AddStop(washington, domain.StopTypeFood)
	state.AddStop(baltimore, domain.StopTypeFuel)

	route, err := overlay.Render(context.Background(), state.Snapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route == nil || route.DistanceMeters != 32000 {
		t.Errorf("unexpected route: %+v", route)
	}
	if canvas.markerCount() != 2 {
		t.Errorf("expected 2 markers, got %d", canvas.markerCount())
	}
	if len(canvas.visiblePaths()) != 1 {
		t.Errorf("expected 1 path, got %d", len(canvas.visiblePaths()))
	}
	if len(canvas.fitted) != 1 {
		t.Errorf("expected viewport fit once, got %d", len(canvas.fitted))
	}
	if routes.callCount() != 1 {
		t.Errorf("expected 1 route call, got %d", routes.callCount())
	}
}

func TestRouteOverlay_Render_Idempotent(t *testing.T) {
	t.Parallel()

	state, canvas, _, _, overlay := newOverlayFixture()
	state.AddStop(washington, domain.StopTypeMisc)
	state.AddStop(baltimore, domain.StopTypeMisc)
	state.AddStop(annapolis, domain.StopTypeMisc)

	snap := state.Snapshot()
	overlay.Render(context.Background(), snap)
	overlay.Render(context.Background(), snap)

	if canvas.markerCount() != 3 {
		t.Errorf("expected 3 markers, got %d", canvas.markerCount())
	}
	if canvas.placedCount() != 3 {
		t.Errorf("unchanged stop set must not re-place markers, placed %d", canvas.placedCount())
	}
	if len(canvas.visiblePaths()) != 1 {
		t.Errorf("expected 1 path, got %d", len(canvas.visiblePaths()))
	}
}

func TestRouteOverlay_StopSetChange_RecreatesMarkers(t *testing.T) {
	t.Parallel()

	state, canvas, _, _, overlay := newOverlayFixture()
	state.AddStop(washington, domain.StopTypeMisc)
	state.AddStop(baltimore, domain.StopTypeMisc)
	overlay.Sync(state.Snapshot())

	// Same count, different set.
	state.RemoveStop(0)
	state.AddStop(annapolis, domain.StopTypeMisc)
	overlay.Sync(state.Snapshot())

	if canvas.markerCount() != 2 {
		t.Errorf("expected 2 markers, got %d", canvas.markerCount())
	}
	if canvas.placedCount() != 4 {
		t.Errorf("expected markers to be recreated, placed %d", canvas.placedCount())
	}
}

func TestRouteOverlay_SingleStop_NoRouteRequest(t *testing.T) {
	t.Parallel()

	state, canvas, routes, _, overlay := newOverlayFixture()
	state.AddStop(washington, domain.StopTypeMisc)

	route, err := overlay.Render(context.Background(), state.Snapshot())
	if route != nil || err != nil {
		t.Errorf("expected no route and no error, got %v %v", route, err)
	}
	if routes.callCount() != 0 {
		t.Errorf("expected no route call, got %d", routes.callCount())
	}
	if canvas.markerCount() != 1 || len(canvas.visiblePaths()) != 0 {
		t.Errorf("expected 1 marker and no path, got %d / %d", canvas.markerCount(), len(canvas.visiblePaths()))
	}
}

// ──────────────────────────────────────────────
// 2. FAILURES
// ──────────────────────────────────────────────

func TestRouteOverlay_Unroutable_MarkersOnlyAndNotified(t *testing.T) {
	t.Parallel()

	state, canvas, routes, notices, overlay := newOverlayFixture()
	routes.err = &directions.Failure{Kind: directions.KindUnroutable, Message: "ocean", Points: []int{1}}
	state.AddStop(washington, domain.StopTypeMisc)
	state.AddStop(domain.Coordinates{Lat: 40, Lng: -40}, domain.StopTypeMisc)

	_, err := overlay.Render(context.Background(), state.Snapshot())
	if !errors.Is(err, directions.ErrUnroutable) {
		t.Fatalf("expected ErrUnroutable, got %v", err)
	}
	if canvas.markerCount() != 2 || len(canvas.visiblePaths()) != 0 {
		t.Errorf("expected markers without path, got %d / %d", canvas.markerCount(), len(canvas.visiblePaths()))
	}

	got := notices.Notices()
	if len(got) != 1 {
		t.Fatalf("expected 1 notice, got %d", len(got))
	}
	if got[0].Kind != string(directions.KindUnroutable) || len(got[0].Points) != 1 || got[0].Points[0] != 1 {
		t.Errorf("unexpected notice: %+v", got[0])
	}
}

func TestRouteOverlay_FailureClearsPreviousPath(t *testing.T) {
	t.Parallel()

	state, canvas, routes, _, overlay := newOverlayFixture()
	state.AddStop(washington, domain.StopTypeMisc)
	state.AddStop(baltimore, domain.StopTypeMisc)
	overlay.Render(context.Background(), state.Snapshot())

	routes.mu.Lock()
	routes.err = &directions.Failure{Kind: directions.KindNetwork}
	routes.mu.Unlock()
	state.AddStop(annapolis, domain.StopTypeMisc)
	overlay.Render(context.Background(), state.Snapshot())

	if len(canvas.visiblePaths()) != 0 {
		t.Error("path for the old stop sequence must not remain visible")
	}
}

// ──────────────────────────────────────────────
// 3. STALENESS
// ──────────────────────────────────────────────

func TestRouteOverlay_StaleRouteNeverDrawn(t *testing.T) {
	t.Parallel()

	state, canvas, routes, _, overlay := newOverlayFixture()
	routes.hold = true
	state.AddStop(washington, domain.StopTypeMisc)
	state.AddStop(baltimore, domain.StopTypeMisc)

	oldSnap := state.Snapshot()
	overlay.Sync(oldSnap)
	oldDone := make(chan error, 1)
	go func() {
		_, err := overlay.DrawRoute(context.Background(), oldSnap)
		oldDone <- err
	}()
	routes.waitForCalls(1)

	state.AddStop(annapolis, domain.StopTypeMisc)
	newSnap := state.Snapshot()
	overlay.Sync(newSnap)
	newDone := make(chan error, 1)
	go func() {
		_, err := overlay.DrawRoute(context.Background(), newSnap)
		newDone <- err
	}()
	routes.waitForCalls(2)

	// The newer request finishes first, then the stale one arrives.
	routes.release(1)
	if err := <-newDone; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	routes.release(0)
	if err := <-oldDone; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	paths := canvas.visiblePaths()
	if len(paths) != 1 {
		t.Fatalf("expected exactly 1 path, got %d", len(paths))
	}
	if len(paths[0]) != 3 {
		t.Errorf("visible path must belong to the 3-stop sequence, has %d points", len(paths[0]))
	}
}

func TestRouteOverlay_StaleFailureNotSurfaced(t *testing.T) {
	t.Parallel()

	state, _, routes, notices, overlay := newOverlayFixture()
	routes.hold = true
	routes.err = &directions.Failure{Kind: directions.KindProvider}
	state.AddStop(washington, domain.StopTypeMisc)
	state.AddStop(baltimore, domain.StopTypeMisc)

	snap := state.Snapshot()
	done := make(chan error, 1)
	go func() {
		_, err := overlay.DrawRoute(context.Background(), snap)
		done <- err
	}()
	routes.waitForCalls(1)
	state.RemoveStop(1)
	routes.release(0)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if len(notices.Notices()) != 0 {
		t.Error("failures for superseded sequences must not be surfaced")
	}
}

func TestRouteOverlay_Clear(t *testing.T) {
	t.Parallel()

	state, canvas, _, _, overlay := newOverlayFixture()
	state.AddStop(washington, domain.StopTypeMisc)
	state.AddStop(baltimore, domain.StopTypeMisc)
	overlay.Render(context.Background(), state.Snapshot())

	overlay.Clear()
	if canvas.markerCount() != 0 || len(canvas.visiblePaths()) != 0 {
		t.Error("expected empty canvas after Clear")
	}
}
