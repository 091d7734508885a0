package loaders

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Registry is the part of a world that mesh import writes into.
// *world.World satisfies it.
type Registry interface {
	AddShape(s *geometry.Shape) geometry.ShapeID
	AddShapeToGroup(group geometry.ShapeID, child *geometry.Shape) geometry.ShapeID
	Divide(group geometry.ShapeID, threshold int)
}

// MeshStats summarises an imported mesh
type MeshStats struct {
	Triangles       int // Flat and smooth triangles created
	SmoothTriangles int // Triangles that carry vertex normals
	Groups          int // Child groups under the returned root
	Skipped         int // Degenerate faces dropped
}

// meshBuilder adds triangles under a root group, one child group per named
// part of the source file
type meshBuilder struct {
	reg      Registry
	material material.Material
	root     geometry.ShapeID
	current  geometry.ShapeID
	stats    MeshStats
}

func newMeshBuilder(reg Registry, m material.Material) *meshBuilder {
	root := reg.AddShape(geometry.NewGroup())
	return &meshBuilder{reg: reg, material: m, root: root, current: geometry.NoShape}
}

// beginPart starts a new child group for the following triangles
func (b *meshBuilder) beginPart() {
	b.current = b.reg.AddShapeToGroup(b.root, geometry.NewGroup())
	b.stats.Groups++
}

// addTriangle adds a flat triangle, or a smooth one when normals are given.
// Faces whose vertices are collinear are skipped.
func (b *meshBuilder) addTriangle(p [3]core.Tuple, n *[3]core.Tuple) {
	if b.current == geometry.NoShape {
		b.beginPart()
	}
	if p[1].Subtract(p[0]).Cross(p[2].Subtract(p[0])).Length() < core.Epsilon*core.Epsilon {
		b.stats.Skipped++
		return
	}

	var s *geometry.Shape
	if n != nil {
		s = geometry.NewSmoothTriangle(p[0], p[1], p[2], n[0], n[1], n[2])
		b.stats.SmoothTriangles++
	} else {
		s = geometry.NewTriangle(p[0], p[1], p[2])
	}
	s.SetMaterial(b.material)
	b.reg.AddShapeToGroup(b.current, s)
	b.stats.Triangles++
}

// finish splits large parts into nested groups and returns the root
func (b *meshBuilder) finish() geometry.ShapeID {
	b.reg.Divide(b.root, geometry.DefaultDivideThreshold)
	return b.root
}
