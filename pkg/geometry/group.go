package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Group is an ordered collection of child shapes sharing one transform
type Group struct {
	Children []ShapeID
}

// NewGroup creates an empty group. Children are attached through the arena
// so that their parent links and the cached bounds stay consistent.
func NewGroup() *Shape {
	return newShape(&Group{})
}

func (*Group) Name() string { return "group" }

func (g *Group) localIntersect(r Resolver, s *Shape, ray core.Ray) Intersections {
	// Pre-reject with the cached bounds; this never changes the result
	if !s.bounds.Hit(ray) {
		return nil
	}
	var xs Intersections
	for _, child := range g.Children {
		xs = append(xs, Intersect(r, r.GetShape(child), ray)...)
	}
	xs.Sort()
	return xs
}

func (*Group) localNormal(core.Tuple, Intersection) core.Tuple {
	panic("geometry: groups have no surface normal; ask the child that was hit")
}

func (g *Group) localBounds(r Resolver, _ *Shape) core.AABB {
	box := core.EmptyAABB()
	for _, child := range g.Children {
		box = box.Union(ParentSpaceBounds(r, r.GetShape(child)))
	}
	return box
}
