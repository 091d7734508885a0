// Package scene describes what to render: a world, a camera viewpoint and the
// render settings. Scenes come from the built-in constructors or from Lisp
// scene scripts.
package scene

import (
	"context"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/world"
)

// View positions the camera
type View struct {
	From core.Tuple // Eye position
	To   core.Tuple // Point looked at
	Up   core.Tuple // Approximate up direction
}

// DefaultView looks at the origin from slightly above and behind
func DefaultView() View {
	return View{
		From: core.Point(0, 1.5, -5),
		To:   core.Point(0, 1, 0),
		Up:   core.Vector(0, 1, 0),
	}
}

// Orbit returns the view rotated by angle radians about the vertical axis
// through To
func (v View) Orbit(angle float64) View {
	offset := v.From.Subtract(v.To)
	sin, cos := math.Sincos(angle)
	rotated := core.Vector(offset.X*cos+offset.Z*sin, offset.Y, -offset.X*sin+offset.Z*cos)
	v.From = v.To.Add(rotated)
	return v
}

// Scene contains all the elements needed for rendering
type Scene struct {
	Name   string
	World  *world.World
	View   View
	Config renderer.Config
}

// New wraps a world with the default view and render config
func New(name string, w *world.World) *Scene {
	return &Scene{Name: name, World: w, View: DefaultView(), Config: renderer.DefaultConfig()}
}

// Camera builds a camera for the scene's view and config
func (s *Scene) Camera() *renderer.Camera {
	return s.Config.NewCamera(s.View.From, s.View.To, s.View.Up)
}

// CameraFor builds a camera for an alternative view, used by animated previews
func (s *Scene) CameraFor(v View) *renderer.Camera {
	return s.Config.NewCamera(v.From, v.To, v.Up)
}

// SetSize overrides the output dimensions. Non-positive values keep the
// current setting.
func (s *Scene) SetSize(width, height int) {
	if width > 0 {
		s.Config.Width = width
	}
	if height > 0 {
		s.Config.Height = height
	}
}

// Render traces the scene
func (s *Scene) Render(ctx context.Context, logger core.Logger) (*renderer.Canvas, renderer.RenderStats, error) {
	return renderer.Render(ctx, s.World, s.Camera(), s.Config, logger)
}

// GetShapeCount returns the number of registered shapes, including group and
// CSG children
func (s *Scene) GetShapeCount() int {
	return s.World.Len()
}
