package geometry

import (
	"fmt"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Shape is one node of the scene graph: a geometric kind placed by an affine
// transform and carrying a material. ID and Parent are assigned by the arena.
type Shape struct {
	ID       ShapeID
	Parent   ShapeID
	Kind     Kind
	Material material.Material

	transform        core.Matrix
	inverse          core.Matrix
	inverseTranspose core.Matrix

	// cached object-space bounds of groups and CSG nodes
	bounds core.AABB
}

func newShape(kind Kind) *Shape {
	return &Shape{
		ID:               NoShape,
		Parent:           NoShape,
		Kind:             kind,
		Material:         material.DefaultMaterial(),
		transform:        core.Identity(),
		inverse:          core.Identity(),
		inverseTranspose: core.Identity(),
		bounds:           core.EmptyAABB(),
	}
}

// Transform returns the object-to-parent transform
func (s *Shape) Transform() core.Matrix {
	return s.transform
}

// Inverse returns the cached parent-to-object transform
func (s *Shape) Inverse() core.Matrix {
	return s.inverse
}

// SetTransform replaces the transform and recomputes its inverse. A singular
// matrix cannot place a shape and panics. Once a shape has a parent, its
// transform feeds the parent's cached bounds and must be changed through
// Arena.SetTransform instead; calling this panics.
func (s *Shape) SetTransform(m core.Matrix) *Shape {
	if s.Parent != NoShape {
		panic(fmt.Sprintf("geometry: %v belongs to shape %d; use Arena.SetTransform", s, s.Parent))
	}
	s.setTransform(m)
	return s
}

func (s *Shape) setTransform(m core.Matrix) {
	if !m.Invertible() {
		panic(fmt.Sprintf("geometry: shape transform is not invertible: %v", m))
	}
	s.transform = m
	s.inverse = m.Inverse()
	s.inverseTranspose = s.inverse.Transpose()
}

// SetMaterial replaces the material
func (s *Shape) SetMaterial(m material.Material) *Shape {
	s.Material = m
	return s
}

// IsContainer reports whether the shape is a group or CSG node
func (s *Shape) IsContainer() bool {
	switch s.Kind.(type) {
	case *Group, *CSG:
		return true
	}
	return false
}

func (s *Shape) String() string {
	return fmt.Sprintf("%s#%d", s.Kind.Name(), s.ID)
}

// Intersect maps a world- or parent-space ray into the shape's object space and
// returns every crossing sorted by t. Groups and CSG nodes return the hits of
// their descendants, each tagged with the id of the primitive that was hit.
func Intersect(r Resolver, s *Shape, ray core.Ray) Intersections {
	return s.Kind.localIntersect(r, s, ray.Transform(s.inverse))
}

// NormalAt returns the world-space unit normal at a world-space point on s.
// hit supplies the barycentric coordinates smooth triangles interpolate with.
func NormalAt(r Resolver, s *Shape, worldPoint core.Tuple, hit Intersection) core.Tuple {
	local := WorldToObject(r, s, worldPoint)
	return NormalToWorld(r, s, s.Kind.localNormal(local, hit))
}

// WorldToObject converts a world-space point into s's object space by way of
// every ancestor's inverse transform
func WorldToObject(r Resolver, s *Shape, point core.Tuple) core.Tuple {
	if s.Parent != NoShape {
		point = WorldToObject(r, r.GetShape(s.Parent), point)
	}
	return s.inverse.MultiplyTuple(point)
}

// NormalToWorld converts an object-space normal to world space, walking up the
// parent chain
func NormalToWorld(r Resolver, s *Shape, normal core.Tuple) core.Tuple {
	normal = s.inverseTranspose.MultiplyTuple(normal)
	normal.W = 0
	normal = normal.Normalize()
	if s.Parent != NoShape {
		normal = NormalToWorld(r, r.GetShape(s.Parent), normal)
	}
	return normal
}

// Bounds returns the object-space bounding box of s. Container bounds come
// from the cache maintained by RefreshBounds.
func Bounds(r Resolver, s *Shape) core.AABB {
	if s.IsContainer() {
		return s.bounds
	}
	return s.Kind.localBounds(r, s)
}

// ParentSpaceBounds returns the bounds of s after its own transform
func ParentSpaceBounds(r Resolver, s *Shape) core.AABB {
	return Bounds(r, s).Transform(s.transform)
}

// RefreshBounds recomputes the cached bounds of a container from its children.
// It is a no-op for primitives.
func RefreshBounds(r Resolver, s *Shape) {
	if s.IsContainer() {
		s.bounds = s.Kind.localBounds(r, s)
	}
}
