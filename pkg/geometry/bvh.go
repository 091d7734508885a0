package geometry

import (
	"math"
	"slices"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// DefaultDivideThreshold is the largest child count Divide leaves in one group
const DefaultDivideThreshold = 8

// Divide turns a wide group into a hierarchy of nested groups so that each
// group's cached bounds can reject rays for a smaller set of children. When a
// group has more than threshold bounded children, they are split in two at the
// spatial median of their longest axis and the halves become new sub-groups,
// which are divided again. Unbounded children such as planes stay attached to
// the group itself. Child groups are divided as well. Non-group shapes are left
// untouched.
//
// Divide reorders children, so hits at equal t from different children may
// come back in a different order. It is meant for imported meshes and must run
// during construction, before tracing starts.
func (a *Arena) Divide(id ShapeID, threshold int) {
	g, ok := a.GetShape(id).Kind.(*Group)
	if !ok {
		return
	}
	if threshold < 1 {
		threshold = 1
	}

	var bounded, unbounded []ShapeID
	for _, child := range g.Children {
		if isBounded(ParentSpaceBounds(a, a.GetShape(child))) {
			bounded = append(bounded, child)
		} else {
			unbounded = append(unbounded, child)
		}
	}

	if len(bounded) > threshold {
		left, right := a.partitionChildren(bounded)
		// Overlapping centers give no useful split
		if len(left) > 0 && len(right) > 0 {
			for _, child := range g.Children {
				a.GetShape(child).Parent = NoShape
			}
			g.Children = nil
			for _, child := range unbounded {
				a.Attach(id, child)
			}
			a.addSubgroup(id, left)
			a.addSubgroup(id, right)
		}
	}

	for _, child := range slices.Clone(g.Children) {
		a.Divide(child, threshold)
	}
}

func isBounded(b core.AABB) bool {
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func (a *Arena) addSubgroup(parent ShapeID, children []ShapeID) {
	if len(children) == 1 {
		a.Attach(parent, children[0])
		return
	}
	sub := a.AddShapeToGroup(parent, NewGroup())
	for _, child := range children {
		a.Attach(sub, child)
	}
}

// partitionChildren splits children by their bounds center against the
// midpoint of the longest axis of their combined bounds
func (a *Arena) partitionChildren(children []ShapeID) (left, right []ShapeID) {
	box := core.EmptyAABB()
	centers := make([]core.Tuple, len(children))
	for i, child := range children {
		b := ParentSpaceBounds(a, a.GetShape(child))
		box = box.Union(b)
		centers[i] = b.Center()
	}

	axis := box.LongestAxis()
	lo, hi := axisValue(box.Min, axis), axisValue(box.Max, axis)
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || hi <= lo {
		return nil, children
	}
	split := (lo + hi) * 0.5

	for i, child := range children {
		if axisValue(centers[i], axis) < split {
			left = append(left, child)
		} else {
			right = append(right, child)
		}
	}
	return left, right
}

func axisValue(p core.Tuple, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}
