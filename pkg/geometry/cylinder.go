package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Cylinder is a unit-radius cylinder around the y axis, truncated to
// Min < y < Max. Closed cylinders have flat caps at both ends.
type Cylinder struct {
	Min, Max float64
	Closed   bool
}

// NewCylinder creates an infinite open cylinder
func NewCylinder() *Shape {
	return NewTruncatedCylinder(math.Inf(-1), math.Inf(1), false)
}

// NewTruncatedCylinder creates a cylinder bounded on y
func NewTruncatedCylinder(minY, maxY float64, closed bool) *Shape {
	return newShape(&Cylinder{Min: minY, Max: maxY, Closed: closed})
}

func (*Cylinder) Name() string { return "cylinder" }

func (c *Cylinder) localIntersect(_ Resolver, s *Shape, ray core.Ray) Intersections {
	var xs Intersections

	// Quadratic in x and z only: at² + bt + cc = 0
	a := ray.Direction.X*ray.Direction.X + ray.Direction.Z*ray.Direction.Z

	// Rays parallel to the y axis can only hit the caps
	if math.Abs(a) >= core.Epsilon {
		b := 2*ray.Origin.X*ray.Direction.X + 2*ray.Origin.Z*ray.Direction.Z
		cc := ray.Origin.X*ray.Origin.X + ray.Origin.Z*ray.Origin.Z - 1

		discriminant := b*b - 4*a*cc
		if discriminant < 0 {
			return nil
		}

		sqrtD := math.Sqrt(discriminant)
		t0 := (-b - sqrtD) / (2 * a)
		t1 := (-b + sqrtD) / (2 * a)
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		xs = appendWithinHeight(xs, ray, t0, c.Min, c.Max, s.ID)
		xs = appendWithinHeight(xs, ray, t1, c.Min, c.Max, s.ID)
	}

	if c.Closed {
		xs = appendCaps(xs, ray, c.Min, c.Max, 1, 1, s.ID)
	}
	xs.Sort()
	return xs
}

// appendWithinHeight keeps a side hit only when it lies strictly between the
// truncation planes
func appendWithinHeight(xs Intersections, ray core.Ray, t, minY, maxY float64, id ShapeID) Intersections {
	if y := ray.Origin.Y + t*ray.Direction.Y; minY < y && y < maxY {
		xs = append(xs, Intersection{T: t, Object: id})
	}
	return xs
}

// appendCaps adds hits on the Min and Max caps. A cap hit counts when the
// point lies within the cap radius at that height.
func appendCaps(xs Intersections, ray core.Ray, minY, maxY, minRadius, maxRadius float64, id ShapeID) Intersections {
	if math.Abs(ray.Direction.Y) < core.Epsilon {
		return xs
	}
	for _, end := range [2]struct{ y, radius float64 }{{minY, minRadius}, {maxY, maxRadius}} {
		t := (end.y - ray.Origin.Y) / ray.Direction.Y
		if withinCap(ray, t, end.radius) {
			xs = append(xs, Intersection{T: t, Object: id})
		}
	}
	return xs
}

func withinCap(ray core.Ray, t, radius float64) bool {
	x := ray.Origin.X + t*ray.Direction.X
	z := ray.Origin.Z + t*ray.Direction.Z
	return x*x+z*z <= radius*radius
}

func (c *Cylinder) localNormal(point core.Tuple, _ Intersection) core.Tuple {
	dist := point.X*point.X + point.Z*point.Z
	if c.Closed && dist < 1 {
		if point.Y >= c.Max-core.Epsilon {
			return core.Vector(0, 1, 0)
		}
		if point.Y <= c.Min+core.Epsilon {
			return core.Vector(0, -1, 0)
		}
	}
	return core.Vector(point.X, 0, point.Z).Normalize()
}

func (c *Cylinder) localBounds(Resolver, *Shape) core.AABB {
	return core.NewAABB(core.Point(-1, c.Min, -1), core.Point(1, c.Max, 1))
}
