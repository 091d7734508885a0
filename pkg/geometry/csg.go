package geometry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Operation is a boolean combination of two solids
type Operation int

const (
	CSGUnion Operation = iota
	CSGIntersection
	CSGDifference
)

func (op Operation) String() string {
	switch op {
	case CSGUnion:
		return "union"
	case CSGIntersection:
		return "intersection"
	case CSGDifference:
		return "difference"
	}
	return fmt.Sprintf("Operation(%d)", int(op))
}

// ParseOperation maps "union", "intersection" or "difference" to an Operation
func ParseOperation(name string) (Operation, error) {
	for _, op := range []Operation{CSGUnion, CSGIntersection, CSGDifference} {
		if op.String() == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown csg operation %q", name)
}

// CSG combines a left and right operand under a boolean operation. Operands
// may be primitives, groups or other CSG nodes.
type CSG struct {
	Op          Operation
	Left, Right ShapeID
}

// NewCSG creates an unattached CSG node. The arena attaches the operands and
// computes the bounds when the node is registered.
func NewCSG(op Operation, left, right ShapeID) *Shape {
	return newShape(&CSG{Op: op, Left: left, Right: right})
}

func (*CSG) Name() string { return "csg" }

// sidedHit is a crossing tagged with the operand it came from
type sidedHit struct {
	Intersection
	left bool
}

func (c *CSG) localIntersect(r Resolver, s *Shape, ray core.Ray) Intersections {
	if !s.bounds.Hit(ray) {
		return nil
	}

	leftHits := Intersect(r, r.GetShape(c.Left), ray)
	rightHits := Intersect(r, r.GetShape(c.Right), ray)

	merged := make([]sidedHit, 0, len(leftHits)+len(rightHits))
	for _, x := range leftHits {
		merged = append(merged, sidedHit{Intersection: x, left: true})
	}
	for _, x := range rightHits {
		merged = append(merged, sidedHit{Intersection: x, left: false})
	}
	slices.SortStableFunc(merged, func(a, b sidedHit) int {
		return cmp.Compare(a.T, b.T)
	})

	return c.filter(merged)
}

// filter sweeps the sorted crossings, tracking whether the ray is inside each
// operand, and keeps the ones that lie on the combined surface
func (c *CSG) filter(merged []sidedHit) Intersections {
	var xs Intersections
	insideLeft, insideRight := false, false
	for _, hit := range merged {
		if Allowed(c.Op, hit.left, insideLeft, insideRight) {
			xs = append(xs, hit.Intersection)
		}
		if hit.left {
			insideLeft = !insideLeft
		} else {
			insideRight = !insideRight
		}
	}
	return xs
}

// Allowed reports whether a crossing belongs to the combined surface.
// lhit is true when the crossing is on the left operand; insideLeft and
// insideRight describe the ray's state just before the crossing.
func Allowed(op Operation, lhit, insideLeft, insideRight bool) bool {
	switch op {
	case CSGUnion:
		return (lhit && !insideRight) || (!lhit && !insideLeft)
	case CSGIntersection:
		return (lhit && insideRight) || (!lhit && insideLeft)
	case CSGDifference:
		return (lhit && !insideRight) || (!lhit && insideLeft)
	}
	return false
}

func (*CSG) localNormal(core.Tuple, Intersection) core.Tuple {
	panic("geometry: csg nodes have no surface normal; ask the operand that was hit")
}

func (c *CSG) localBounds(r Resolver, _ *Shape) core.AABB {
	return ParentSpaceBounds(r, r.GetShape(c.Left)).
		Union(ParentSpaceBounds(r, r.GetShape(c.Right)))
}
