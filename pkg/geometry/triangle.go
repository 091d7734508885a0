package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Triangle is a flat triangle. Edges and normal are derived at construction.
type Triangle struct {
	P1, P2, P3 core.Tuple
	E1, E2     core.Tuple // P2-P1 and P3-P1
	Normal     core.Tuple
}

// NewTriangle creates a flat triangle shape from three points
func NewTriangle(p1, p2, p3 core.Tuple) *Shape {
	e1 := p2.Subtract(p1)
	e2 := p3.Subtract(p1)
	return newShape(&Triangle{
		P1: p1, P2: p2, P3: p3,
		E1: e1, E2: e2,
		Normal: e2.Cross(e1).Normalize(),
	})
}

func (*Triangle) Name() string { return "triangle" }

func (t *Triangle) localIntersect(_ Resolver, s *Shape, ray core.Ray) Intersections {
	hit, ok := mollerTrumbore(ray, t.P1, t.E1, t.E2)
	if !ok {
		return nil
	}
	hit.Object = s.ID
	return Intersections{hit}
}

func (t *Triangle) localNormal(core.Tuple, Intersection) core.Tuple {
	return t.Normal
}

func (t *Triangle) localBounds(Resolver, *Shape) core.AABB {
	return core.NewAABBFromPoints(t.P1, t.P2, t.P3)
}

// SmoothTriangle interpolates per-vertex normals across its face using the
// barycentric coordinates of each hit
type SmoothTriangle struct {
	P1, P2, P3 core.Tuple
	E1, E2     core.Tuple
	N1, N2, N3 core.Tuple
}

// NewSmoothTriangle creates a triangle with vertex normals n1, n2, n3
func NewSmoothTriangle(p1, p2, p3, n1, n2, n3 core.Tuple) *Shape {
	return newShape(&SmoothTriangle{
		P1: p1, P2: p2, P3: p3,
		E1: p2.Subtract(p1), E2: p3.Subtract(p1),
		N1: n1, N2: n2, N3: n3,
	})
}

func (*SmoothTriangle) Name() string { return "smooth-triangle" }

func (t *SmoothTriangle) localIntersect(_ Resolver, s *Shape, ray core.Ray) Intersections {
	hit, ok := mollerTrumbore(ray, t.P1, t.E1, t.E2)
	if !ok {
		return nil
	}
	hit.Object = s.ID
	return Intersections{hit}
}

func (t *SmoothTriangle) localNormal(_ core.Tuple, hit Intersection) core.Tuple {
	return t.N2.Multiply(hit.U).
		Add(t.N3.Multiply(hit.V)).
		Add(t.N1.Multiply(1 - hit.U - hit.V))
}

func (t *SmoothTriangle) localBounds(Resolver, *Shape) core.AABB {
	return core.NewAABBFromPoints(t.P1, t.P2, t.P3)
}

// mollerTrumbore intersects a ray with the triangle p1, p1+e1, p1+e2 and
// returns t with the barycentric u, v of the hit
func mollerTrumbore(ray core.Ray, p1, e1, e2 core.Tuple) (Intersection, bool) {
	dirCrossE2 := ray.Direction.Cross(e2)
	det := e1.Dot(dirCrossE2)

	// Ray lies in, or runs parallel to, the triangle's plane
	if math.Abs(det) < core.Epsilon {
		return Intersection{}, false
	}

	f := 1.0 / det
	p1ToOrigin := ray.Origin.Subtract(p1)
	u := f * p1ToOrigin.Dot(dirCrossE2)
	if u < 0 || u > 1 {
		return Intersection{}, false
	}

	originCrossE1 := p1ToOrigin.Cross(e1)
	v := f * ray.Direction.Dot(originCrossE1)
	if v < 0 || u+v > 1 {
		return Intersection{}, false
	}

	return Intersection{T: f * e2.Dot(originCrossE1), U: u, V: v}, true
}
