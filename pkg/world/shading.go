package world

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// ColorAt traces ray into the world. remaining bounds the depth of reflection
// and refraction rays; a miss is black.
func (w *World) ColorAt(ray core.Ray, remaining int) core.Color {
	xs := w.IntersectWorld(ray)
	hit, ok := xs.Hit()
	if !ok {
		return core.Black
	}
	return w.ShadeHit(w.PrepareComputations(hit, ray, xs), remaining)
}

// ShadeHit combines the local Phong color with the reflected and refracted
// contributions. Surfaces that both reflect and transmit are blended with the
// Schlick reflectance.
func (w *World) ShadeHit(comps Computations, remaining int) core.Color {
	m := comps.Object.Material
	shadowed := w.IsShadowed(comps.OverPoint)
	objectPoint := geometry.WorldToObject(w, comps.Object, comps.OverPoint)

	surface := material.Lighting(m, w.Light, comps.OverPoint, objectPoint, comps.EyeV, comps.NormalV, shadowed)
	reflected := w.ReflectedColor(comps, remaining)
	refracted := w.RefractedColor(comps, remaining)

	if m.Reflective > 0 && m.Transparency > 0 {
		reflectance := Schlick(comps)
		return surface.
			Add(reflected.Multiply(reflectance)).
			Add(refracted.Multiply(1 - reflectance))
	}
	return surface.Add(reflected).Add(refracted)
}

// ReflectedColor follows the mirror ray from the hit
func (w *World) ReflectedColor(comps Computations, remaining int) core.Color {
	reflective := comps.Object.Material.Reflective
	if remaining <= 0 || core.Equal(reflective, 0) {
		return core.Black
	}
	ray := core.NewRay(comps.OverPoint, comps.ReflectV)
	return w.ColorAt(ray, remaining-1).Multiply(reflective)
}

// RefractedColor follows the transmitted ray given by Snell's law. Total
// internal reflection transmits nothing.
func (w *World) RefractedColor(comps Computations, remaining int) core.Color {
	transparency := comps.Object.Material.Transparency
	if remaining <= 0 || core.Equal(transparency, 0) {
		return core.Black
	}

	ratio := comps.N1 / comps.N2
	cosI := comps.EyeV.Dot(comps.NormalV)
	sin2t := ratio * ratio * (1 - cosI*cosI)
	if sin2t > 1 {
		return core.Black
	}

	cosT := math.Sqrt(1 - sin2t)
	direction := comps.NormalV.Multiply(ratio*cosI - cosT).Subtract(comps.EyeV.Multiply(ratio))
	ray := core.NewRay(comps.UnderPoint, direction)
	return w.ColorAt(ray, remaining-1).Multiply(transparency)
}
