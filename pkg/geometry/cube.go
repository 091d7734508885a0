package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Cube is the axis-aligned cube spanning -1..1 on every object-space axis
type Cube struct{}

// NewCube creates a cube shape
func NewCube() *Shape {
	return newShape(&Cube{})
}

func (*Cube) Name() string { return "cube" }

func (*Cube) localIntersect(_ Resolver, s *Shape, ray core.Ray) Intersections {
	xMin, xMax := checkAxis(ray.Origin.X, ray.Direction.X, -1, 1)
	yMin, yMax := checkAxis(ray.Origin.Y, ray.Direction.Y, -1, 1)
	zMin, zMax := checkAxis(ray.Origin.Z, ray.Direction.Z, -1, 1)

	tMin := max(xMin, yMin, zMin)
	tMax := min(xMax, yMax, zMax)
	if tMin > tMax {
		return nil
	}
	return Intersections{{T: tMin, Object: s.ID}, {T: tMax, Object: s.ID}}
}

// checkAxis returns the ray parameters where it enters and leaves the slab
// between lo and hi on one axis
func checkAxis(origin, direction, lo, hi float64) (float64, float64) {
	loNumerator := lo - origin
	hiNumerator := hi - origin

	var tMin, tMax float64
	if math.Abs(direction) >= core.Epsilon {
		tMin = loNumerator / direction
		tMax = hiNumerator / direction
	} else {
		tMin = math.Copysign(math.Inf(1), loNumerator)
		tMax = math.Copysign(math.Inf(1), hiNumerator)
	}

	if tMin > tMax {
		tMin, tMax = tMax, tMin
	}
	return tMin, tMax
}

func (*Cube) localNormal(point core.Tuple, _ Intersection) core.Tuple {
	ax, ay, az := math.Abs(point.X), math.Abs(point.Y), math.Abs(point.Z)
	switch max(ax, ay, az) {
	case ax:
		return core.Vector(math.Copysign(1, point.X), 0, 0)
	case ay:
		return core.Vector(0, math.Copysign(1, point.Y), 0)
	default:
		return core.Vector(0, 0, math.Copysign(1, point.Z))
	}
}

func (*Cube) localBounds(Resolver, *Shape) core.AABB {
	return core.NewAABB(core.Point(-1, -1, -1), core.Point(1, 1, 1))
}
