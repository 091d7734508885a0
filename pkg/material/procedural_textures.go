package material

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Stripe alternates between A and B along the x axis
type Stripe struct {
	patternTransform
	A, B core.Color
}

// NewStripe creates a stripe pattern
func NewStripe(a, b core.Color) *Stripe {
	return &Stripe{patternTransform: identityTransform(), A: a, B: b}
}

// Evaluate returns A on even unit slabs of x and B on odd ones
func (s *Stripe) Evaluate(point core.Tuple) core.Color {
	if isEven(math.Floor(point.X)) {
		return s.A
	}
	return s.B
}

// Gradient linearly interpolates from A to B over each unit of x
type Gradient struct {
	patternTransform
	A, B core.Color
}

// NewGradient creates a gradient pattern
func NewGradient(a, b core.Color) *Gradient {
	return &Gradient{patternTransform: identityTransform(), A: a, B: b}
}

// Evaluate blends by the fractional part of x
func (g *Gradient) Evaluate(point core.Tuple) core.Color {
	fraction := point.X - math.Floor(point.X)
	return g.A.Add(g.B.Subtract(g.A).Multiply(fraction))
}

// Ring draws concentric rings around the y axis
type Ring struct {
	patternTransform
	A, B core.Color
}

// NewRing creates a ring pattern
func NewRing(a, b core.Color) *Ring {
	return &Ring{patternTransform: identityTransform(), A: a, B: b}
}

// Evaluate alternates on the floor of the distance from the y axis
func (r *Ring) Evaluate(point core.Tuple) core.Color {
	if isEven(math.Floor(math.Hypot(point.X, point.Z))) {
		return r.A
	}
	return r.B
}

// Checkers is a 3D checkerboard of unit cubes
type Checkers struct {
	patternTransform
	A, B core.Color
}

// NewCheckers creates a checkers pattern
func NewCheckers(a, b core.Color) *Checkers {
	return &Checkers{patternTransform: identityTransform(), A: a, B: b}
}

// Evaluate alternates on the sum of the floors of all three coordinates
func (c *Checkers) Evaluate(point core.Tuple) core.Color {
	if isEven(math.Floor(point.X) + math.Floor(point.Y) + math.Floor(point.Z)) {
		return c.A
	}
	return c.B
}

// Blend averages two patterns, each evaluated through its own transform
type Blend struct {
	patternTransform
	A, B Pattern
}

// NewBlend creates a blended pattern
func NewBlend(a, b Pattern) *Blend {
	return &Blend{patternTransform: identityTransform(), A: a, B: b}
}

// Evaluate returns the mean of both component patterns at point
func (b *Blend) Evaluate(point core.Tuple) core.Color {
	return PatternAt(b.A, point).Add(PatternAt(b.B, point)).Multiply(0.5)
}

func isEven(f float64) bool {
	return math.Mod(math.Abs(f), 2) == 0
}
