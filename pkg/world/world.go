// Package world holds a scene's shape arena and light and resolves rays into
// colors by Whitted-style recursive ray tracing.
package world

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// DefaultRemaining is the default bounce budget for reflection and refraction
const DefaultRemaining = 5

// World is an arena of shapes lit by a single point light. It is built by one
// goroutine and then shared read-only by any number of tracing goroutines.
type World struct {
	geometry.Arena
	Light material.PointLight
}

// NewWorld creates an empty world lit by light
func NewWorld(light material.PointLight) *World {
	return &World{Light: light}
}

// DefaultWorld returns the two concentric spheres lit from the upper left
// that most shading behavior is checked against
func DefaultWorld() *World {
	w := NewWorld(material.NewPointLight(core.Point(-10, 10, -10), core.White))

	outer := geometry.NewSphere()
	outer.Material.Color = core.NewColor(0.8, 1.0, 0.6)
	outer.Material.Diffuse = 0.7
	outer.Material.Specular = 0.2
	w.AddShape(outer)

	inner := geometry.NewSphere().SetTransform(core.Scaling(0.5, 0.5, 0.5))
	w.AddShape(inner)

	return w
}

// IntersectWorld intersects ray with every top-level shape and returns all
// crossings sorted by t
func (w *World) IntersectWorld(ray core.Ray) geometry.Intersections {
	var xs geometry.Intersections
	for id := range w.Len() {
		s := w.GetShape(geometry.ShapeID(id))
		if s.Parent != geometry.NoShape {
			continue
		}
		xs = append(xs, geometry.Intersect(w, s, ray)...)
	}
	xs.Sort()
	return xs
}

// IsShadowed reports whether any surface lies between point and the light
func (w *World) IsShadowed(point core.Tuple) bool {
	toLight := w.Light.Position.Subtract(point)
	distance := toLight.Length()

	ray := core.NewRay(point, toLight.Normalize())
	hit, ok := w.IntersectWorld(ray).Hit()
	return ok && hit.T < distance
}
