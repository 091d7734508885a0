package core

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for float comparisons and surface offsets
const Epsilon = 1e-4

// Equal reports whether two floats are within Epsilon of each other
func Equal(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Tuple is a homogeneous 4-vector. W is 1 for points and 0 for vectors.
type Tuple struct {
	X, Y, Z, W float64
}

// Point creates a tuple with W=1
func Point(x, y, z float64) Tuple {
	return Tuple{X: x, Y: y, Z: z, W: 1}
}

// Vector creates a tuple with W=0
func Vector(x, y, z float64) Tuple {
	return Tuple{X: x, Y: y, Z: z, W: 0}
}

// IsPoint reports whether the tuple is a point
func (t Tuple) IsPoint() bool {
	return t.W == 1
}

// IsVector reports whether the tuple is a vector
func (t Tuple) IsVector() bool {
	return t.W == 0
}

// Add returns the component-wise sum of two tuples
func (t Tuple) Add(other Tuple) Tuple {
	return Tuple{t.X + other.X, t.Y + other.Y, t.Z + other.Z, t.W + other.W}
}

// Subtract returns the component-wise difference of two tuples
func (t Tuple) Subtract(other Tuple) Tuple {
	return Tuple{t.X - other.X, t.Y - other.Y, t.Z - other.Z, t.W - other.W}
}

// Negate returns the tuple with every component negated
func (t Tuple) Negate() Tuple {
	return Tuple{-t.X, -t.Y, -t.Z, -t.W}
}

// Multiply scales every component by a scalar
func (t Tuple) Multiply(scalar float64) Tuple {
	return Tuple{t.X * scalar, t.Y * scalar, t.Z * scalar, t.W * scalar}
}

// Divide divides every component by a scalar
func (t Tuple) Divide(scalar float64) Tuple {
	return Tuple{t.X / scalar, t.Y / scalar, t.Z / scalar, t.W / scalar}
}

// Length returns the magnitude of the tuple
func (t Tuple) Length() float64 {
	return math.Sqrt(t.X*t.X + t.Y*t.Y + t.Z*t.Z + t.W*t.W)
}

// Normalize returns a unit tuple in the same direction.
// The zero vector normalizes to itself.
func (t Tuple) Normalize() Tuple {
	length := t.Length()
	if length == 0 {
		return t
	}
	return t.Divide(length)
}

// Dot returns the dot product of two vectors
func (t Tuple) Dot(other Tuple) float64 {
	mustBeVectors("dot", t, other)
	return t.X*other.X + t.Y*other.Y + t.Z*other.Z
}

// Cross returns the cross product of two vectors
func (t Tuple) Cross(other Tuple) Tuple {
	mustBeVectors("cross", t, other)
	return Vector(
		t.Y*other.Z-t.Z*other.Y,
		t.Z*other.X-t.X*other.Z,
		t.X*other.Y-t.Y*other.X,
	)
}

// Reflect reflects the vector around the given normal
func (t Tuple) Reflect(normal Tuple) Tuple {
	return t.Subtract(normal.Multiply(2 * t.Dot(normal)))
}

// Equals compares two tuples component-wise within Epsilon
func (t Tuple) Equals(other Tuple) bool {
	return Equal(t.X, other.X) && Equal(t.Y, other.Y) &&
		Equal(t.Z, other.Z) && Equal(t.W, other.W)
}

func (t Tuple) String() string {
	kind := "tuple"
	switch {
	case t.IsPoint():
		kind = "point"
	case t.IsVector():
		kind = "vector"
	}
	return fmt.Sprintf("%s(%g, %g, %g)", kind, t.X, t.Y, t.Z)
}

func mustBeVectors(op string, a, b Tuple) {
	if !a.IsVector() || !b.IsVector() {
		panic(fmt.Sprintf("core: %s requires vectors, got %v and %v", op, a, b))
	}
}
