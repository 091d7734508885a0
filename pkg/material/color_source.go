package material

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// SolidColor is a pattern with the same color everywhere. Useful as a
// component of blended or nested patterns.
type SolidColor struct {
	patternTransform
	Color core.Color
}

// NewSolidColor creates a new solid color pattern
func NewSolidColor(color core.Color) *SolidColor {
	return &SolidColor{patternTransform: identityTransform(), Color: color}
}

// Evaluate returns the solid color regardless of position
func (s *SolidColor) Evaluate(point core.Tuple) core.Color {
	return s.Color
}
