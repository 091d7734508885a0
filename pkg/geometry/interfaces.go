package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ShapeID is a shape's stable index in the arena that owns it
type ShapeID int

// NoShape marks an unregistered shape or a missing parent
const NoShape ShapeID = -1

// Resolver looks up shapes by id. Groups and CSG nodes store child ids, so
// every operation that walks the graph takes a Resolver explicitly.
type Resolver interface {
	GetShape(id ShapeID) *Shape
}

// Kind is the closed set of geometric variants a Shape can hold.
// Implemented only by the types in this package.
type Kind interface {
	// localIntersect intersects a ray already in the shape's object space
	localIntersect(r Resolver, s *Shape, ray core.Ray) Intersections

	// localNormal returns the outward normal at an object-space point
	localNormal(point core.Tuple, hit Intersection) core.Tuple

	// localBounds returns the object-space bounding box
	localBounds(r Resolver, s *Shape) core.AABB

	// Name is the lower-case kind name
	Name() string
}
