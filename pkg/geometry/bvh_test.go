package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// rowOfSpheres registers a group of n unit spheres spaced along the x axis
func rowOfSpheres(arena *Arena, n int) ShapeID {
	gid := arena.AddShape(NewGroup())
	for i := range n {
		arena.AddShapeToGroup(gid, NewSphere().SetTransform(core.Translation(float64(3*i), 0, 0)))
	}
	return gid
}

// countLeaves walks the hierarchy below id, checking the child limit of every group
func countLeaves(t *testing.T, arena *Arena, id ShapeID, threshold int) int {
	t.Helper()
	children := arena.GetChildren(id)
	if len(children) > threshold {
		t.Errorf("Group %d has %d children, limit %d", id, len(children), threshold)
	}
	n := 0
	for _, child := range children {
		if c := arena.GetShape(child); c.Parent != id {
			t.Errorf("Shape %d has parent %d, expected %d", child, c.Parent, id)
		}
		if arena.GetShape(child).IsContainer() {
			n += countLeaves(t, arena, child, threshold)
		} else {
			n++
		}
	}
	return n
}

func TestArena_Divide(t *testing.T) {
	var arena Arena
	gid := rowOfSpheres(&arena, 20)
	ray := core.NewRay(core.Point(-5, 0, 0), core.Vector(1, 0, 0))
	before := Intersect(&arena, arena.GetShape(gid), ray)

	arena.Divide(gid, 4)

	if n := countLeaves(t, &arena, gid, 4); n != 20 {
		t.Errorf("Expected 20 spheres after dividing, got %d", n)
	}
	if len(arena.GetChildren(gid)) != 2 {
		t.Errorf("Expected the root split in two, got %d children", len(arena.GetChildren(gid)))
	}
	if len(arena.TopLevel()) != 1 {
		t.Errorf("Expected a single top-level shape, got %d", len(arena.TopLevel()))
	}

	after := Intersect(&arena, arena.GetShape(gid), ray)
	if len(after) != len(before) {
		t.Fatalf("Expected %d intersections, got %d", len(before), len(after))
	}
	for i := range before {
		if math.Abs(before[i].T-after[i].T) > core.Epsilon || before[i].Object != after[i].Object {
			t.Errorf("Intersection %d: expected %+v, got %+v", i, before[i], after[i])
		}
	}

	b := Bounds(&arena, arena.GetShape(gid))
	if !b.Min.Equals(core.Point(-1, -1, -1)) || !b.Max.Equals(core.Point(58, 1, 1)) {
		t.Errorf("Bounds changed after dividing: %v", b)
	}
}

func TestArena_DivideLeavesSmallGroups(t *testing.T) {
	var arena Arena
	gid := rowOfSpheres(&arena, 3)
	children := append([]ShapeID(nil), arena.GetChildren(gid)...)

	arena.Divide(gid, DefaultDivideThreshold)

	got := arena.GetChildren(gid)
	if len(got) != len(children) {
		t.Fatalf("Expected %d children, got %d", len(children), len(got))
	}
	for i := range children {
		if got[i] != children[i] {
			t.Errorf("Child %d: expected %d, got %d", i, children[i], got[i])
		}
	}
}

func TestArena_DivideSkipsUnboundedChildren(t *testing.T) {
	var arena Arena
	gid := arena.AddShape(NewGroup())
	for range 3 {
		arena.AddShapeToGroup(gid, NewPlane())
	}

	arena.Divide(gid, 1)

	if n := len(arena.GetChildren(gid)); n != 3 {
		t.Errorf("Expected planes to stay in place, got %d children", n)
	}
}

func TestArena_DivideKeepsUnboundedChildrenInPlace(t *testing.T) {
	var arena Arena
	gid := rowOfSpheres(&arena, 20)
	floor := arena.AddShapeToGroup(gid, NewPlane().SetTransform(core.Translation(0, -1, 0)))
	ray := core.NewRay(core.Point(-5, 5, 0), core.Vector(1, -0.2, 0).Normalize())
	before := Intersect(&arena, arena.GetShape(gid), ray)

	arena.Divide(gid, 4)

	children := arena.GetChildren(gid)
	if len(children) != 3 || children[0] != floor {
		t.Fatalf("Expected the plane plus two sub-groups, got %v", children)
	}
	for _, child := range children[1:] {
		if !arena.GetShape(child).IsContainer() {
			t.Errorf("Expected shape %d to be a sub-group", child)
		}
		if n := countLeaves(t, &arena, child, 4); n != 10 {
			t.Errorf("Expected 10 spheres below shape %d, got %d", child, n)
		}
	}

	after := Intersect(&arena, arena.GetShape(gid), ray)
	if len(after) != len(before) {
		t.Fatalf("Expected %d intersections, got %d", len(before), len(after))
	}
	for i := range before {
		if math.Abs(before[i].T-after[i].T) > core.Epsilon || before[i].Object != after[i].Object {
			t.Errorf("Intersection %d: expected %+v, got %+v", i, before[i], after[i])
		}
	}
}

func TestArena_DivideIgnoresPrimitives(t *testing.T) {
	var arena Arena
	id := arena.AddShape(NewSphere())
	arena.Divide(id, 1)
	if arena.Len() != 1 {
		t.Errorf("Expected no new shapes, got %d", arena.Len())
	}
}

func TestAABB_LongestAxis(t *testing.T) {
	tests := []struct {
		box      core.AABB
		expected int
	}{
		{core.NewAABB(core.Point(0, 0, 0), core.Point(5, 1, 1)), 0},
		{core.NewAABB(core.Point(0, -4, 0), core.Point(1, 1, 1)), 1},
		{core.NewAABB(core.Point(0, 0, 0), core.Point(1, 1, 9)), 2},
	}
	for _, tt := range tests {
		if got := tt.box.LongestAxis(); got != tt.expected {
			t.Errorf("LongestAxis(%v) = %d, want %d", tt.box, got, tt.expected)
		}
	}
}
