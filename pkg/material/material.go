package material

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Material holds the Phong surface parameters plus the coefficients the
// recursive tracer reads for reflection and refraction
type Material struct {
	Color           core.Color
	Pattern         Pattern // optional; overrides Color when set
	Ambient         float64
	Diffuse         float64
	Specular        float64
	Shininess       float64
	Reflective      float64
	Transparency    float64
	RefractiveIndex float64
}

// Refractive indices of common media
const (
	Vacuum  = 1.0
	Air     = 1.00029
	Water   = 1.333
	Glass   = 1.52
	Diamond = 2.417
)

// DefaultMaterial returns a white, matte-ish material with no reflection or refraction
func DefaultMaterial() Material {
	return Material{
		Color:           core.White,
		Ambient:         0.1,
		Diffuse:         0.9,
		Specular:        0.9,
		Shininess:       200,
		Reflective:      0,
		Transparency:    0,
		RefractiveIndex: Vacuum,
	}
}

// GlassMaterial returns the default material made fully transparent with index 1.5
func GlassMaterial() Material {
	m := DefaultMaterial()
	m.Transparency = 1.0
	m.RefractiveIndex = 1.5
	return m
}

// ColorAt returns the surface color at an object-space point
func (m Material) ColorAt(objectPoint core.Tuple) core.Color {
	if m.Pattern == nil {
		return m.Color
	}
	return PatternAt(m.Pattern, objectPoint)
}

// Lighting computes the Phong ambient, diffuse and specular contribution of
// light at point. A shadowed point receives ambient light only.
func Lighting(m Material, light PointLight, point, objectPoint, eyev, normalv core.Tuple, inShadow bool) core.Color {
	effective := m.ColorAt(objectPoint).Blend(light.Intensity)
	ambient := effective.Multiply(m.Ambient)
	if inShadow {
		return ambient
	}

	lightv := light.Position.Subtract(point).Normalize()
	lightDotNormal := lightv.Dot(normalv)
	if lightDotNormal < 0 {
		// light is on the other side of the surface
		return ambient
	}

	diffuse := effective.Multiply(m.Diffuse * lightDotNormal)

	specular := core.Black
	reflectv := lightv.Negate().Reflect(normalv)
	if reflectDotEye := reflectv.Dot(eyev); reflectDotEye > 0 {
		factor := math.Pow(reflectDotEye, m.Shininess)
		specular = light.Intensity.Multiply(m.Specular * factor)
	}

	return ambient.Add(diffuse).Add(specular)
}
