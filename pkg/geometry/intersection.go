package geometry

import (
	"cmp"
	"slices"
)

// Intersection records one ray crossing: the ray parameter, the primitive
// that was hit and, for triangles, the barycentric coordinates of the hit
type Intersection struct {
	T      float64
	Object ShapeID
	U, V   float64
}

// Intersections is a list of crossings, normally sorted by T
type Intersections []Intersection

// Sort orders the crossings by T, keeping the original order on ties
func (xs Intersections) Sort() {
	slices.SortStableFunc(xs, func(a, b Intersection) int {
		return cmp.Compare(a.T, b.T)
	})
}

// Hit returns the crossing with the lowest positive T
func (xs Intersections) Hit() (Intersection, bool) {
	best, found := Intersection{}, false
	for _, x := range xs {
		if x.T > 0 && (!found || x.T < best.T) {
			best, found = x, true
		}
	}
	return best, found
}
