// Package canvas provides map canvases for hosts without a browser map.
package canvas

import (
	"slices"
	"sync"

	geojson "github.com/paulmach/go.geojson"

	"roadtrip/internal/domain"
	"roadtrip/internal/planner"
)

// Recorder is an in-memory planner.Canvas. It keeps whatever is currently
// visible and can export it as GeoJSON.
type Recorder struct {
	mu       sync.Mutex
	nextID   int
	markers  map[int]*recordedMarker
	paths    map[int]*recordedPath
	viewport *domain.Bounds
	onClick  []func(domain.Coordinates)
	draws    int
}

type recordedMarker struct {
	r     *Recorder
	id    int
	pos   domain.Coordinates
	label string
}

func (m *recordedMarker) Remove() {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	delete(m.r.markers, m.id)
}

type recordedPath struct {
	r      *Recorder
	id     int
	points []domain.Coordinates
}

func (p *recordedPath) Remove() {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	delete(p.r.paths, p.id)
}

// NewRecorder creates an empty canvas.
func NewRecorder() *Recorder {
	return &Recorder{
		markers: make(map[int]*recordedMarker),
		paths:   make(map[int]*recordedPath),
	}
}

func (r *Recorder) PlaceMarker(pos domain.Coordinates, label string) planner.Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m := &recordedMarker{r: r, id: r.nextID, pos: pos, label: label}
	r.markers[m.id] = m
	return m
}

func (r *Recorder) DrawPath(points []domain.Coordinates) planner.Path {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.draws++
	p := &recordedPath{r: r, id: r.nextID, points: append([]domain.Coordinates(nil), points...)}
	r.paths[p.id] = p
	return p
}

func (r *Recorder) FitBounds(b domain.Bounds) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = &b
}

func (r *Recorder) OnClick(fn func(domain.Coordinates)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onClick = append(r.onClick, fn)
}

// Click delivers a map click to every registered listener.
func (r *Recorder) Click(pos domain.Coordinates) {
	r.mu.Lock()
	listeners := slices.Clone(r.onClick)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(pos)
	}
}

// MarkerView is a visible marker.
type MarkerView struct {
	Position domain.Coordinates
	Label    string
}

// Markers returns the visible markers in placement order.
func (r *Recorder) Markers() []MarkerView {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]MarkerView, 0, len(r.markers))
	for _, id := range sortedKeys(r.markers) {
		m := r.markers[id]
		out = append(out, MarkerView{Position: m.pos, Label: m.label})
	}
	return out
}

// Paths returns the visible paths in drawing order.
func (r *Recorder) Paths() [][]domain.Coordinates {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]domain.Coordinates, 0, len(r.paths))
	for _, id := range sortedKeys(r.paths) {
		out = append(out, r.paths[id].points)
	}
	return out
}

// Viewport returns the last fitted bounds.
func (r *Recorder) Viewport() (domain.Bounds, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewport == nil {
		return domain.Bounds{}, false
	}
	return *r.viewport, true
}

// PathDraws counts every DrawPath call, including paths removed since.
func (r *Recorder) PathDraws() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws
}

// FeatureCollection exports the visible markers as Point features and the
// visible paths as LineString features. GeoJSON positions are [lng, lat].
func (r *Recorder) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, m := range r.Markers() {
		f := geojson.NewPointFeature([]float64{m.Position.Lng, m.Position.Lat})
		f.SetProperty("kind", "stop")
		f.SetProperty("index", i)
		f.SetProperty("label", m.Label)
		fc.AddFeature(f)
	}

	for _, path := range r.Paths() {
		line := make([][]float64, 0, len(path))
		for _, p := range path {
			line = append(line, []float64{p.Lng, p.Lat})
		}
		f := geojson.NewLineStringFeature(line)
		f.SetProperty("kind", "route")
		fc.AddFeature(f)
	}

	if vp, ok := r.Viewport(); ok {
		fc.BoundingBox = []float64{vp.SouthWest.Lng, vp.SouthWest.Lat, vp.NorthEast.Lng, vp.NorthEast.Lat}
	}
	return fc
}

// GeoJSON returns FeatureCollection encoded as JSON.
func (r *Recorder) GeoJSON() ([]byte, error) {
	return r.FeatureCollection().MarshalJSON()
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var _ planner.Canvas = (*Recorder)(nil)
