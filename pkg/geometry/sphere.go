package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Sphere is the unit sphere centered at the object-space origin
type Sphere struct{}

// NewSphere creates a unit sphere shape
func NewSphere() *Shape {
	return newShape(&Sphere{})
}

// NewGlassSphere creates a unit sphere with a glass material
func NewGlassSphere() *Shape {
	s := NewSphere()
	s.Material.Transparency = 1.0
	s.Material.RefractiveIndex = 1.5
	return s
}

func (*Sphere) Name() string { return "sphere" }

func (*Sphere) localIntersect(_ Resolver, s *Shape, ray core.Ray) Intersections {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(core.Point(0, 0, 0))

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := 2 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - 1

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return nil
	}

	// A tangent ray yields the same t twice
	sqrtD := math.Sqrt(discriminant)
	return Intersections{
		{T: (-b - sqrtD) / (2 * a), Object: s.ID},
		{T: (-b + sqrtD) / (2 * a), Object: s.ID},
	}
}

func (*Sphere) localNormal(point core.Tuple, _ Intersection) core.Tuple {
	return point.Subtract(core.Point(0, 0, 0)).Normalize()
}

func (*Sphere) localBounds(Resolver, *Shape) core.AABB {
	return core.NewAABB(core.Point(-1, -1, -1), core.Point(1, 1, 1))
}
