package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Plane is the infinite xz plane through the object-space origin
type Plane struct{}

// NewPlane creates an xz plane shape
func NewPlane() *Shape {
	return newShape(&Plane{})
}

func (*Plane) Name() string { return "plane" }

func (*Plane) localIntersect(_ Resolver, s *Shape, ray core.Ray) Intersections {
	// Parallel or coplanar rays never cross the plane
	if math.Abs(ray.Direction.Y) < core.Epsilon {
		return nil
	}
	t := -ray.Origin.Y / ray.Direction.Y
	return Intersections{{T: t, Object: s.ID}}
}

func (*Plane) localNormal(core.Tuple, Intersection) core.Tuple {
	return core.Vector(0, 1, 0)
}

func (*Plane) localBounds(Resolver, *Shape) core.AABB {
	inf := math.Inf(1)
	return core.NewAABB(core.Point(-inf, 0, -inf), core.Point(inf, 0, inf))
}
