package material

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// PointLight is a light source with no size at a single position
type PointLight struct {
	Position  core.Tuple
	Intensity core.Color
}

// NewPointLight creates a point light
func NewPointLight(position core.Tuple, intensity core.Color) PointLight {
	return PointLight{Position: position, Intensity: intensity}
}
