package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
	"github.com/df07/go-whitted-raytracer/pkg/world"
)

// builtin pairs a scene's metadata with its constructor
type builtin struct {
	info SceneInfo
	new  func() *Scene
}

var builtins = []builtin{
	{builtinInfo("default", "Default Scene", "Two concentric spheres lit from the upper left"), NewDefaultScene},
	{builtinInfo("csg", "CSG Solids", "Difference, intersection and union of primitives on a checkered floor"), NewCSGScene},
	{builtinInfo("glass", "Glass and Mirrors", "Hollow glass sphere in front of a striped wall, with a mirror sphere"), NewGlassScene},
	{builtinInfo("groups", "Groups", "Hexagon of grouped spheres and cylinders next to a triangle pyramid"), NewGroupsScene},
	{builtinInfo("cylinders", "Cylinders and Cones", "Closed and open cylinders and a cone"), NewCylindersScene},
}

func builtinInfo(id, name, description string) SceneInfo {
	return SceneInfo{
		ID:          id,
		Name:        name,
		DisplayName: name,
		Description: description,
		Group:       BuiltinGroup,
		Type:        "builtin",
	}
}

// ListBuiltins returns the metadata of every built-in scene in display order
func ListBuiltins() []SceneInfo {
	infos := make([]SceneInfo, len(builtins))
	for i, b := range builtins {
		infos[i] = b.info
	}
	return infos
}

// NewBuiltin constructs the built-in scene with the given id
func NewBuiltin(id string) (*Scene, error) {
	for _, b := range builtins {
		if b.info.ID == id {
			return b.new(), nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q", id)
}

func matte(c core.Color) material.Material {
	m := material.DefaultMaterial()
	m.Color = c
	m.Specular = 0.3
	return m
}

// checkeredFloor adds a slightly reflective checkered plane at y = 0
func checkeredFloor(w *world.World) geometry.ShapeID {
	floor := geometry.NewPlane()
	floor.Material.Pattern = material.NewCheckers(core.NewColor(0.9, 0.9, 0.9), core.NewColor(0.15, 0.15, 0.15))
	floor.Material.Specular = 0
	floor.Material.Reflective = 0.1
	return w.AddShape(floor)
}

func upperLeftLight() material.PointLight {
	return material.NewPointLight(core.Point(-10, 10, -10), core.White)
}

// NewDefaultScene renders the default world from straight ahead
func NewDefaultScene() *Scene {
	s := New("default", world.DefaultWorld())
	s.View = View{From: core.Point(0, 0, -5), To: core.Point(0, 0, 0), Up: core.Vector(0, 1, 0)}
	return s
}

// NewCSGScene shows one solid per boolean operation
func NewCSGScene() *Scene {
	w := world.NewWorld(upperLeftLight())
	checkeredFloor(w)

	// cube with a spherical bite taken out of every face
	cube := geometry.NewCube()
	cube.Material = matte(core.NewColor(0.2, 0.5, 0.9))
	ball := geometry.NewSphere().SetTransform(core.Scaling(1.3, 1.3, 1.3))
	ball.Material = matte(core.NewColor(0.9, 0.8, 0.2))
	carved := w.CreateCSG(geometry.CSGDifference, w.AddShape(cube), w.AddShape(ball))
	w.SetTransform(carved, core.Identity().
		Then(core.RotationY(math.Pi/5)).
		Then(core.Translation(-2.6, 1, 0)))

	// rounded cube
	box := geometry.NewCube()
	box.Material = matte(core.NewColor(0.9, 0.3, 0.3))
	hull := geometry.NewSphere().SetTransform(core.Scaling(1.4, 1.4, 1.4))
	hull.Material = box.Material
	rounded := w.CreateCSG(geometry.CSGIntersection, w.AddShape(box), w.AddShape(hull))
	w.SetTransform(rounded, core.Identity().
		Then(core.RotationY(-math.Pi/6)).
		Then(core.Translation(0, 1, 0)))

	// capsule-like union of a cylinder and two spheres
	rod := geometry.NewTruncatedCylinder(-1, 1, true)
	rod.Material = matte(core.NewColor(0.3, 0.8, 0.4))
	rod.Material.Reflective = 0.2
	rod.SetTransform(core.Scaling(0.5, 1, 0.5))
	top := geometry.NewSphere().SetTransform(core.Identity().
		Then(core.Scaling(0.5, 0.5, 0.5)).
		Then(core.Translation(0, 1, 0)))
	top.Material = rod.Material
	bottom := geometry.NewSphere().SetTransform(core.Identity().
		Then(core.Scaling(0.5, 0.5, 0.5)).
		Then(core.Translation(0, -1, 0)))
	bottom.Material = rod.Material
	ends := w.CreateCSG(geometry.CSGUnion, w.AddShape(top), w.AddShape(bottom))
	capsule := w.CreateCSG(geometry.CSGUnion, w.AddShape(rod), ends)
	w.SetTransform(capsule, core.Identity().
		Then(core.RotationZ(math.Pi/2)).
		Then(core.Translation(2.4, 0.5, -0.5)))

	s := New("csg", w)
	s.View = View{From: core.Point(0, 3.5, -7), To: core.Point(0, 0.8, 0), Up: core.Vector(0, 1, 0)}
	return s
}

// NewGlassScene exercises refraction, total internal reflection and Fresnel
func NewGlassScene() *Scene {
	w := world.NewWorld(upperLeftLight())
	checkeredFloor(w)

	wall := geometry.NewPlane().SetTransform(core.Identity().
		Then(core.RotationX(math.Pi / 2)).
		Then(core.Translation(0, 0, 6)))
	stripes := material.NewStripe(core.NewColor(0.85, 0.85, 0.95), core.NewColor(0.35, 0.35, 0.6))
	stripes.SetTransform(core.Scaling(0.5, 0.5, 0.5))
	wall.Material.Pattern = stripes
	wall.Material.Specular = 0
	w.AddShape(wall)

	glass := geometry.NewSphere().SetTransform(core.Translation(0, 1, 0))
	glass.Material = material.Material{
		Color:           core.White,
		Ambient:         0,
		Diffuse:         0.1,
		Specular:        1,
		Shininess:       300,
		Reflective:      0.9,
		Transparency:    0.9,
		RefractiveIndex: 1.5,
	}
	w.AddShape(glass)

	bubble := geometry.NewSphere().SetTransform(core.Identity().
		Then(core.Scaling(0.5, 0.5, 0.5)).
		Then(core.Translation(0, 1, 0)))
	bubble.Material = glass.Material
	bubble.Material.RefractiveIndex = material.Air
	w.AddShape(bubble)

	mirror := geometry.NewSphere().SetTransform(core.Identity().
		Then(core.Scaling(0.7, 0.7, 0.7)).
		Then(core.Translation(2, 0.7, 1.5)))
	mirror.Material = matte(core.NewColor(0.1, 0.1, 0.1))
	mirror.Material.Specular = 1
	mirror.Material.Shininess = 300
	mirror.Material.Reflective = 0.9
	w.AddShape(mirror)

	red := geometry.NewSphere().SetTransform(core.Identity().
		Then(core.Scaling(0.5, 0.5, 0.5)).
		Then(core.Translation(-2, 0.5, 2)))
	red.Material = matte(core.NewColor(0.9, 0.2, 0.1))
	w.AddShape(red)

	s := New("glass", w)
	s.View = View{From: core.Point(0, 1.5, -5), To: core.Point(0, 1, 0), Up: core.Vector(0, 1, 0)}
	return s
}

// NewGroupsScene builds a hexagon out of nested groups and a pyramid out of
// triangles
func NewGroupsScene() *Scene {
	w := world.NewWorld(upperLeftLight())
	checkeredFloor(w)

	hexagon := w.AddShape(geometry.NewGroup())
	metal := matte(core.NewColor(0.8, 0.6, 0.3))
	metal.Reflective = 0.3
	for n := range 6 {
		side := w.AddShapeToGroup(hexagon, geometry.NewGroup().SetTransform(core.RotationY(float64(n)*math.Pi/3)))

		corner := geometry.NewSphere().SetTransform(core.Identity().
			Then(core.Scaling(0.25, 0.25, 0.25)).
			Then(core.Translation(0, 0, -1)))
		corner.Material = metal
		w.AddShapeToGroup(side, corner)

		edge := geometry.NewTruncatedCylinder(0, 1, false).SetTransform(core.Identity().
			Then(core.Scaling(0.25, 1, 0.25)).
			Then(core.RotationZ(-math.Pi / 2)).
			Then(core.RotationY(-math.Pi / 6)).
			Then(core.Translation(0, 0, -1)))
		edge.Material = metal
		w.AddShapeToGroup(side, edge)
	}
	w.SetTransform(hexagon, core.Identity().
		Then(core.RotationX(-math.Pi/6)).
		Then(core.Translation(-1.5, 1.2, 0)))

	pyramid := w.AddShape(geometry.NewGroup())
	apex := core.Point(0, 1.5, 0)
	base := []core.Tuple{
		core.Point(-1, 0, -1),
		core.Point(1, 0, -1),
		core.Point(1, 0, 1),
		core.Point(-1, 0, 1),
	}
	faceColor := matte(core.NewColor(0.3, 0.7, 0.9))
	for i := range base {
		face := geometry.NewTriangle(apex, base[(i+1)%len(base)], base[i])
		face.Material = faceColor
		w.AddShapeToGroup(pyramid, face)
	}
	w.SetTransform(pyramid, core.Identity().
		Then(core.RotationY(math.Pi/8)).
		Then(core.Translation(1.8, 0, 0.5)))

	s := New("groups", w)
	s.View = View{From: core.Point(0, 3, -6), To: core.Point(0, 0.8, 0), Up: core.Vector(0, 1, 0)}
	return s
}

// NewCylindersScene shows closed, open and conical quadrics
func NewCylindersScene() *Scene {
	w := world.NewWorld(upperLeftLight())
	checkeredFloor(w)

	closed := geometry.NewTruncatedCylinder(0, 1.5, true).SetTransform(core.Identity().
		Then(core.Scaling(0.6, 1, 0.6)).
		Then(core.Translation(-2, 0, 0.5)))
	closed.Material = matte(core.NewColor(0.85, 0.25, 0.2))
	w.AddShape(closed)

	tube := geometry.NewTruncatedCylinder(0, 1, false).SetTransform(core.Identity().
		Then(core.Scaling(0.7, 1, 0.7)).
		Then(core.Translation(0, 0, 1)))
	tube.Material = matte(core.NewColor(0.25, 0.75, 0.35))
	tube.Material.Reflective = 0.2
	w.AddShape(tube)

	// apex up, base resting on the floor
	cone := geometry.NewTruncatedCone(-1, 0, true).SetTransform(core.Identity().
		Then(core.Scaling(0.7, 1.5, 0.7)).
		Then(core.Translation(2, 1.5, 0.5)))
	cone.Material = matte(core.NewColor(0.3, 0.4, 0.9))
	w.AddShape(cone)

	s := New("cylinders", w)
	s.View = View{From: core.Point(0, 2.5, -5), To: core.Point(0, 0.7, 0), Up: core.Vector(0, 1, 0)}
	return s
}
