package geometry

import (
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func unitTriangle() *Shape {
	return NewTriangle(core.Point(0, 1, 0), core.Point(-1, 0, 0), core.Point(1, 0, 0))
}

func TestTriangle_DerivedFields(t *testing.T) {
	tri := unitTriangle().Kind.(*Triangle)
	if !tri.E1.Equals(core.Vector(-1, -1, 0)) || !tri.E2.Equals(core.Vector(1, -1, 0)) {
		t.Errorf("Unexpected edges %v %v", tri.E1, tri.E2)
	}
	if !tri.Normal.Equals(core.Vector(0, 0, -1)) {
		t.Errorf("Expected normal (0, 0, -1), got %v", tri.Normal)
	}
	for _, p := range []core.Tuple{core.Point(0, 0.5, 0), core.Point(-0.5, 0.75, 0), core.Point(0.5, 0.25, 0)} {
		if n := NormalAt(&Arena{}, unitTriangle(), p, Intersection{}); !n.Equals(tri.Normal) {
			t.Errorf("Expected constant normal at %v, got %v", p, n)
		}
	}
}

func TestTriangle_Intersect(t *testing.T) {
	tests := []struct {
		name      string
		origin    core.Tuple
		direction core.Tuple
		expected  []float64
	}{
		{"parallel", core.Point(0, -1, -2), core.Vector(0, 1, 0), nil},
		{"misses p1-p3 edge", core.Point(1, 1, -2), core.Vector(0, 0, 1), nil},
		{"misses p1-p2 edge", core.Point(-1, 1, -2), core.Vector(0, 0, 1), nil},
		{"misses p2-p3 edge", core.Point(0, -1, -2), core.Vector(0, 0, 1), nil},
		{"strikes", core.Point(0, 0.5, -2), core.Vector(0, 0, 1), []float64{2}},
	}
	tri := unitTriangle()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectTs(t, Intersect(&Arena{}, tri, core.NewRay(tt.origin, tt.direction)), tt.expected...)
		})
	}
}

func smoothTriangle() *Shape {
	return NewSmoothTriangle(
		core.Point(0, 1, 0), core.Point(-1, 0, 0), core.Point(1, 0, 0),
		core.Vector(0, 1, 0), core.Vector(-1, 0, 0), core.Vector(1, 0, 0))
}

func TestSmoothTriangle_StoresBarycentrics(t *testing.T) {
	ray := core.NewRay(core.Point(-0.2, 0.3, -2), core.Vector(0, 0, 1))
	xs := Intersect(&Arena{}, smoothTriangle(), ray)
	if len(xs) != 1 {
		t.Fatalf("Expected one intersection, got %d", len(xs))
	}
	if !core.Equal(xs[0].U, 0.45) || !core.Equal(xs[0].V, 0.25) {
		t.Errorf("Expected u=0.45 v=0.25, got u=%f v=%f", xs[0].U, xs[0].V)
	}
}

func TestSmoothTriangle_InterpolatesNormal(t *testing.T) {
	hit := Intersection{T: 1, U: 0.45, V: 0.25}
	n := NormalAt(&Arena{}, smoothTriangle(), core.Point(0, 0, 0), hit)
	expected := core.Vector(-0.5547, 0.83205, 0)
	if !n.Equals(expected) {
		t.Errorf("Expected %v, got %v", expected, n)
	}
}
