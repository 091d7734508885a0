package core

import (
	"math"
	"testing"
)

func TestTuple_PointAndVector(t *testing.T) {
	p := Point(4, -4, 3)
	if !p.IsPoint() || p.IsVector() {
		t.Errorf("Expected %v to be a point", p)
	}
	v := Vector(4, -4, 3)
	if !v.IsVector() || v.IsPoint() {
		t.Errorf("Expected %v to be a vector", v)
	}
}

func TestTuple_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		got      Tuple
		expected Tuple
	}{
		{"point plus vector", Point(3, -2, 5).Add(Vector(-2, 3, 1)), Point(1, 1, 6)},
		{"point minus point", Point(3, 2, 1).Subtract(Point(5, 6, 7)), Vector(-2, -4, -6)},
		{"point minus vector", Point(3, 2, 1).Subtract(Vector(5, 6, 7)), Point(-2, -4, -6)},
		{"negate", Vector(1, -2, 3).Negate(), Vector(-1, 2, -3)},
		{"scale", Vector(1, -2, 3).Multiply(3.5), Vector(3.5, -7, 10.5)},
		{"divide", Vector(1, -2, 3).Divide(2), Vector(0.5, -1, 1.5)},
		{"cross", Vector(1, 2, 3).Cross(Vector(2, 3, 4)), Vector(-1, 2, -1)},
		{"reverse cross", Vector(2, 3, 4).Cross(Vector(1, 2, 3)), Vector(1, -2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestTuple_LengthAndNormalize(t *testing.T) {
	v := Vector(1, 2, 3)
	if math.Abs(v.Length()-math.Sqrt(14)) > 1e-9 {
		t.Errorf("Expected length sqrt(14), got %f", v.Length())
	}
	n := v.Normalize()
	if math.Abs(n.Length()-1) > 1e-9 {
		t.Errorf("Expected unit length, got %f", n.Length())
	}
	if zero := Vector(0, 0, 0).Normalize(); !zero.Equals(Vector(0, 0, 0)) {
		t.Errorf("Expected zero vector to normalize to itself, got %v", zero)
	}
}

func TestTuple_Dot(t *testing.T) {
	if d := Vector(1, 2, 3).Dot(Vector(2, 3, 4)); d != 20 {
		t.Errorf("Expected dot product 20, got %f", d)
	}
}

func TestTuple_DotPanicsOnPoints(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic when dotting a point")
		}
	}()
	Point(1, 2, 3).Dot(Vector(1, 0, 0))
}

func TestTuple_CrossPanicsOnPoints(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic when crossing a point")
		}
	}()
	Vector(1, 2, 3).Cross(Point(1, 0, 0))
}

func TestTuple_Reflect(t *testing.T) {
	tests := []struct {
		name     string
		v        Tuple
		normal   Tuple
		expected Tuple
	}{
		{"45 degrees", Vector(1, -1, 0), Vector(0, 1, 0), Vector(1, 1, 0)},
		{"slanted surface", Vector(0, -1, 0), Vector(math.Sqrt2/2, math.Sqrt2/2, 0), Vector(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if r := tt.v.Reflect(tt.normal); !r.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, r)
			}
		})
	}
}

func TestRay_At(t *testing.T) {
	r := NewRay(Point(2, 3, 4), Vector(1, 0, 0))
	cases := map[float64]Tuple{
		0:   Point(2, 3, 4),
		1:   Point(3, 3, 4),
		-1:  Point(1, 3, 4),
		2.5: Point(4.5, 3, 4),
	}
	for tv, expected := range cases {
		if got := r.At(tv); !got.Equals(expected) {
			t.Errorf("At(%v): expected %v, got %v", tv, expected, got)
		}
	}
}

func TestRay_RejectsWrongTupleKinds(t *testing.T) {
	tests := []struct {
		name      string
		origin    Tuple
		direction Tuple
	}{
		{"vector origin", Vector(0, 0, 0), Vector(0, 0, 1)},
		{"point direction", Point(0, 0, 0), Point(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected NewRay to panic")
				}
			}()
			NewRay(tt.origin, tt.direction)
		})
	}
}

func TestRay_Transform(t *testing.T) {
	r := NewRay(Point(1, 2, 3), Vector(0, 1, 0))

	moved := r.Transform(Translation(3, 4, 5))
	if !moved.Origin.Equals(Point(4, 6, 8)) || !moved.Direction.Equals(Vector(0, 1, 0)) {
		t.Errorf("Unexpected translated ray %v", moved)
	}

	scaled := r.Transform(Scaling(2, 3, 4))
	if !scaled.Origin.Equals(Point(2, 6, 12)) || !scaled.Direction.Equals(Vector(0, 3, 0)) {
		t.Errorf("Unexpected scaled ray %v", scaled)
	}
}

func TestColor_Operations(t *testing.T) {
	a := NewColor(0.9, 0.6, 0.75)
	b := NewColor(0.7, 0.1, 0.25)
	if got := a.Add(b); !got.Equals(NewColor(1.6, 0.7, 1.0)) {
		t.Errorf("Add: got %v", got)
	}
	if got := a.Subtract(b); !got.Equals(NewColor(0.2, 0.5, 0.5)) {
		t.Errorf("Subtract: got %v", got)
	}
	if got := NewColor(1, 0.2, 0.4).Blend(NewColor(0.9, 1, 0.1)); !got.Equals(NewColor(0.9, 0.2, 0.04)) {
		t.Errorf("Blend: got %v", got)
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#ff0000")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !c.Equals(NewColor(1, 0, 0)) {
		t.Errorf("Expected red, got %v", c)
	}
	if _, err := ParseHexColor("not-a-color"); err == nil {
		t.Error("Expected error for malformed color")
	}
}

func TestColor_Hex(t *testing.T) {
	tests := []struct {
		c        Color
		expected string
	}{
		{NewColor(1, 0, 0), "#ff0000"},
		{NewColor(0, 0.5, 1), "#0080ff"},
		{NewColor(2, -1, 1), "#ff00ff"},
	}
	for _, tt := range tests {
		if got := tt.c.Hex(); got != tt.expected {
			t.Errorf("%v.Hex() = %q, want %q", tt.c, got, tt.expected)
		}
	}
}
