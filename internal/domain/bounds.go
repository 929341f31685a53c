package domain

// Bounds is the smallest box containing a set of coordinates.
type Bounds struct {
	SouthWest Coordinates
	NorthEast Coordinates
}

// BoundsOf returns the bounding box of points. ok is false for an empty slice.
func BoundsOf(points []Coordinates) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}

	b = Bounds{SouthWest: points[0], NorthEast: points[0]}
	for _, p := range points[1:] {
		if p.Lat < b.SouthWest.Lat {
			b.SouthWest.Lat = p.Lat
		}
		if p.Lng < b.SouthWest.Lng {
			b.SouthWest.Lng = p.Lng
		}
		if p.Lat > b.NorthEast.Lat {
			b.NorthEast.Lat = p.Lat
		}
		if p.Lng > b.NorthEast.Lng {
			b.NorthEast.Lng = p.Lng
		}
	}
	return b, true
}
