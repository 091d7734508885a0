package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Cone is the double-napped cone x² + z² = y², truncated to Min < y < Max.
// Closed cones have caps whose radius is |y| at each end.
type Cone struct {
	Min, Max float64
	Closed   bool
}

// NewCone creates an infinite open double cone
func NewCone() *Shape {
	return NewTruncatedCone(math.Inf(-1), math.Inf(1), false)
}

// NewTruncatedCone creates a cone bounded on y
func NewTruncatedCone(minY, maxY float64, closed bool) *Shape {
	return newShape(&Cone{Min: minY, Max: maxY, Closed: closed})
}

func (*Cone) Name() string { return "cone" }

func (c *Cone) localIntersect(_ Resolver, s *Shape, ray core.Ray) Intersections {
	var xs Intersections
	o, d := ray.Origin, ray.Direction

	a := d.X*d.X - d.Y*d.Y + d.Z*d.Z
	b := 2*o.X*d.X - 2*o.Y*d.Y + 2*o.Z*d.Z
	cc := o.X*o.X - o.Y*o.Y + o.Z*o.Z

	switch {
	case math.Abs(a) < core.Epsilon:
		// Parallel to one half of the cone: a single crossing, if any
		if math.Abs(b) >= core.Epsilon {
			xs = appendWithinHeight(xs, ray, -cc/(2*b), c.Min, c.Max, s.ID)
		}
	default:
		discriminant := b*b - 4*a*cc
		if discriminant >= 0 {
			sqrtD := math.Sqrt(discriminant)
			t0 := (-b - sqrtD) / (2 * a)
			t1 := (-b + sqrtD) / (2 * a)
			if t0 > t1 {
				t0, t1 = t1, t0
			}
			xs = appendWithinHeight(xs, ray, t0, c.Min, c.Max, s.ID)
			xs = appendWithinHeight(xs, ray, t1, c.Min, c.Max, s.ID)
		}
	}

	if c.Closed {
		xs = appendCaps(xs, ray, c.Min, c.Max, math.Abs(c.Min), math.Abs(c.Max), s.ID)
	}
	xs.Sort()
	return xs
}

// localNormal is undefined at the apex, where the generic formula yields the
// zero vector
func (c *Cone) localNormal(point core.Tuple, _ Intersection) core.Tuple {
	dist := point.X*point.X + point.Z*point.Z
	if c.Closed {
		if point.Y >= c.Max-core.Epsilon && dist <= c.Max*c.Max {
			return core.Vector(0, 1, 0)
		}
		if point.Y <= c.Min+core.Epsilon && dist <= c.Min*c.Min {
			return core.Vector(0, -1, 0)
		}
	}

	y := math.Sqrt(dist)
	if point.Y > 0 {
		y = -y
	}
	return core.Vector(point.X, y, point.Z).Normalize()
}

func (c *Cone) localBounds(Resolver, *Shape) core.AABB {
	limit := max(math.Abs(c.Min), math.Abs(c.Max))
	return core.NewAABB(core.Point(-limit, c.Min, -limit), core.Point(limit, c.Max, limit))
}
