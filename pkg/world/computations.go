package world

import (
	"math"
	"slices"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// Computations is the shading geometry derived from one hit
type Computations struct {
	T      float64
	Object *geometry.Shape

	Point      core.Tuple
	OverPoint  core.Tuple // nudged out along the normal; origin for shadow and reflection rays
	UnderPoint core.Tuple // nudged in; origin for refraction rays
	EyeV       core.Tuple
	NormalV    core.Tuple
	ReflectV   core.Tuple
	Inside     bool

	// Refractive indices on the incoming and outgoing side of the surface
	N1, N2 float64
}

// PrepareComputations derives shading geometry for hit. xs is the full sorted
// intersection list the hit came from; it determines n1 and n2.
func (w *World) PrepareComputations(hit geometry.Intersection, ray core.Ray, xs geometry.Intersections) Computations {
	obj := w.GetShape(hit.Object)
	point := ray.At(hit.T)
	eyev := ray.Direction.Negate()
	normalv := geometry.NormalAt(w, obj, point, hit)

	inside := false
	if normalv.Dot(eyev) < 0 {
		inside = true
		normalv = normalv.Negate()
	}

	offset := normalv.Multiply(core.Epsilon)
	comps := Computations{
		T:          hit.T,
		Object:     obj,
		Point:      point,
		OverPoint:  point.Add(offset),
		UnderPoint: point.Subtract(offset),
		EyeV:       eyev,
		NormalV:    normalv,
		ReflectV:   ray.Direction.Reflect(normalv),
		Inside:     inside,
	}
	comps.N1, comps.N2 = w.refractiveIndices(hit, xs)
	return comps
}

// refractiveIndices walks the crossings in order, keeping a stack of the
// shapes the ray is currently inside. n1 is read before the hit's own entry
// toggles the stack and n2 right after.
func (w *World) refractiveIndices(hit geometry.Intersection, xs geometry.Intersections) (n1, n2 float64) {
	n1, n2 = 1.0, 1.0
	var containers []geometry.ShapeID

	for _, x := range xs {
		if x == hit {
			n1 = w.indexOfTop(containers)
		}

		if i := slices.Index(containers, x.Object); i >= 0 {
			containers = slices.Delete(containers, i, i+1)
		} else {
			containers = append(containers, x.Object)
		}

		if x == hit {
			n2 = w.indexOfTop(containers)
			break
		}
	}
	return n1, n2
}

func (w *World) indexOfTop(containers []geometry.ShapeID) float64 {
	if len(containers) == 0 {
		return 1.0
	}
	return w.GetShape(containers[len(containers)-1]).Material.RefractiveIndex
}

// Schlick approximates the Fresnel reflectance at the hit
func Schlick(comps Computations) float64 {
	cos := comps.EyeV.Dot(comps.NormalV)

	// Total internal reflection is only possible leaving a denser medium
	if comps.N1 > comps.N2 {
		ratio := comps.N1 / comps.N2
		sin2t := ratio * ratio * (1 - cos*cos)
		if sin2t > 1 {
			return 1.0
		}
		cos = math.Sqrt(1 - sin2t)
	}

	r0 := (comps.N1 - comps.N2) / (comps.N1 + comps.N2)
	r0 *= r0
	return r0 + (1-r0)*math.Pow(1-cos, 5)
}
