package material

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Pattern provides spatially-varying colors for materials
type Pattern interface {
	// Evaluate returns the color at a point already in pattern space
	Evaluate(point core.Tuple) core.Color

	// Inverse returns the inverse of the pattern's own transform
	Inverse() core.Matrix
}

// patternTransform is embedded by every pattern to carry its transform
type patternTransform struct {
	transform core.Matrix
	inverse   core.Matrix
}

func identityTransform() patternTransform {
	return patternTransform{transform: core.Identity(), inverse: core.Identity()}
}

// SetTransform replaces the pattern transform. Panics if m is singular.
func (p *patternTransform) SetTransform(m core.Matrix) {
	p.transform = m
	p.inverse = m.Inverse()
}

// Transform returns the pattern transform
func (p *patternTransform) Transform() core.Matrix {
	return p.transform
}

// Inverse returns the inverse pattern transform
func (p *patternTransform) Inverse() core.Matrix {
	return p.inverse
}

// PatternAt maps an object-space point into pattern space and evaluates it
func PatternAt(p Pattern, objectPoint core.Tuple) core.Color {
	return p.Evaluate(p.Inverse().MultiplyTuple(objectPoint))
}
