package core

import "math"

// AABB represents an axis-aligned bounding box in some local space
type AABB struct {
	Min Tuple // Minimum corner (point)
	Max Tuple // Maximum corner (point)
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Tuple) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the identity box for Union: min at +inf, max at -inf
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Point(inf, inf, inf),
		Max: Point(-inf, -inf, -inf),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Tuple) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.AddPoint(p)
	}
	return box
}

// AddPoint grows the box to include p
func (aabb AABB) AddPoint(p Tuple) AABB {
	return AABB{
		Min: Point(math.Min(aabb.Min.X, p.X), math.Min(aabb.Min.Y, p.Y), math.Min(aabb.Min.Z, p.Z)),
		Max: Point(math.Max(aabb.Max.X, p.X), math.Max(aabb.Max.Y, p.Y), math.Max(aabb.Max.Z, p.Z)),
	}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return aabb.AddPoint(other.Min).AddPoint(other.Max)
}

// IsEmpty reports whether the box bounds nothing
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z
}

// Contains reports whether p lies inside the box, boundary included
func (aabb AABB) Contains(p Tuple) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}

// Transform returns the axis-aligned box around the eight transformed corners.
// Infinite extents stay infinite: a zero matrix entry never multiplies an
// infinite coordinate into NaN.
func (aabb AABB) Transform(m Matrix) AABB {
	if aabb.IsEmpty() {
		return aabb
	}
	out := EmptyAABB()
	var unbounded [3]bool
	for _, x := range [2]float64{aabb.Min.X, aabb.Max.X} {
		for _, y := range [2]float64{aabb.Min.Y, aabb.Max.Y} {
			for _, z := range [2]float64{aabb.Min.Z, aabb.Max.Z} {
				c := transformCorner(m, x, y, z)
				// opposite infinities met on one axis: the axis is unbounded
				for axis, v := range [3]*float64{&c.X, &c.Y, &c.Z} {
					if math.IsNaN(*v) {
						unbounded[axis] = true
						*v = 0
					}
				}
				out = out.AddPoint(c)
			}
		}
	}
	inf := math.Inf(1)
	if unbounded[0] {
		out.Min.X, out.Max.X = -inf, inf
	}
	if unbounded[1] {
		out.Min.Y, out.Max.Y = -inf, inf
	}
	if unbounded[2] {
		out.Min.Z, out.Max.Z = -inf, inf
	}
	return out
}

func transformCorner(m Matrix, x, y, z float64) Tuple {
	in := [4]float64{x, y, z, 1}
	var res [3]float64
	for row := range 3 {
		sum := 0.0
		for col := range 4 {
			if e := m.At(row, col); e != 0 {
				sum += e * in[col]
			}
		}
		res[row] = sum
	}
	return Point(res[0], res[1], res[2])
}

// Hit tests if a ray intersects with this AABB anywhere along its line,
// including behind the origin. Uses the slab method.
func (aabb AABB) Hit(ray Ray) bool {
	if aabb.IsEmpty() {
		return false
	}
	tMin, tMax := math.Inf(-1), math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		var min, max, origin, direction float64

		switch axis {
		case 0: // X axis
			min, max = aabb.Min.X, aabb.Max.X
			origin, direction = ray.Origin.X, ray.Direction.X
		case 1: // Y axis
			min, max = aabb.Min.Y, aabb.Max.Y
			origin, direction = ray.Origin.Y, ray.Direction.Y
		case 2: // Z axis
			min, max = aabb.Min.Z, aabb.Max.Z
			origin, direction = ray.Origin.Z, ray.Direction.Z
		}

		// Parallel to this slab: only a hit if the origin is inside it
		if math.Abs(direction) < 1e-12 {
			if origin < min || origin > max {
				return false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (min - origin) * invDirection
		t2 := (max - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	return true
}

// LongestAxis returns the axis with the largest extent: 0 for x, 1 for y, 2 for z
func (aabb AABB) LongestAxis() int {
	dx := aabb.Max.X - aabb.Min.X
	dy := aabb.Max.Y - aabb.Min.Y
	dz := aabb.Max.Z - aabb.Min.Z
	switch {
	case dx >= dy && dx >= dz:
		return 0
	case dy >= dz:
		return 1
	default:
		return 2
	}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Tuple {
	return Point(
		(aabb.Min.X+aabb.Max.X)/2,
		(aabb.Min.Y+aabb.Max.Y)/2,
		(aabb.Min.Z+aabb.Max.Z)/2,
	)
}
