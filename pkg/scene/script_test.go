package scene

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// mustEvaluate evaluates source and fails the test on any error
func mustEvaluate(t *testing.T, source string) *Scene {
	t.Helper()
	s, evalErrs, err := Evaluate(context.Background(), source, ScriptOptions{})
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected a scene")
	}
	return s
}

// expectEvalError evaluates source and returns the first script error
func expectEvalError(t *testing.T, source string) EvalError {
	t.Helper()
	s, evalErrs, err := Evaluate(context.Background(), source, ScriptOptions{})
	if err != nil {
		t.Fatalf("expected a script error, got fatal: %v", err)
	}
	if s != nil {
		t.Error("expected no scene on error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
	return evalErrs[0]
}

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"keyword", `(sphere :material m)`, `(sphere "__kw_material" m)`},
		{"kebab keyword", `(material :refractive-index 1.5)`, `(material "__kw_refractive-index" 1.5)`},
		{"kebab identifier", `(rotate-x 1)`, `(rotate_x 1)`},
		{"negative numbers", `(translate 0 -1 -2.5)`, `(translate 0 -1 -2.5)`},
		{"subtraction", `(- 3 1)`, `(- 3 1)`},
		{"comment", "; Scene: x\n(cube)", "// Scene: x\n(cube)"},
		{"double comment", ";; note\n(cube)", "// note\n(cube)"},
		{"string untouched", `(hex "#ff-00:aa")`, `(hex "#ff-00:aa")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.input); got != tt.expected {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	args := []zygo.Sexp{
		&zygo.SexpInt{Val: 1},
		&zygo.SexpStr{S: kwPrefix + "min"},
		&zygo.SexpFloat{Val: 0.5},
		&zygo.SexpInt{Val: 2},
		&zygo.SexpStr{S: kwPrefix + "closed"},
	}
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		t.Fatalf("Expected 2 positional args, got %d", len(pa.positional))
	}
	if lo, err := pa.float("min", 0); err != nil || lo != 0.5 {
		t.Errorf("Expected :min 0.5, got %v (%v)", lo, err)
	}
	if closed, err := pa.bool("closed"); err != nil || !closed {
		t.Errorf("Expected trailing :closed to read as true, got %v (%v)", closed, err)
	}
	if hi, err := pa.float("max", 7); err != nil || hi != 7 {
		t.Errorf("Expected default :max 7, got %v (%v)", hi, err)
	}
	if err := pa.checkKeywords("min"); err == nil {
		t.Error("Expected :closed to be rejected")
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"short form", "line 12: missing paren", 12, "missing paren"},
		{"no line info", "some generic error", 0, "some generic error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errors.New(tt.msg))
			if len(errs) != 1 {
				t.Fatalf("Expected one error, got %d", len(errs))
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestEvalError_Error(t *testing.T) {
	if s := (EvalError{Line: 5, Message: "bad"}).Error(); s != "line 5: bad" {
		t.Errorf("Unexpected message %q", s)
	}
	if s := (EvalError{Message: "no location"}).Error(); strings.Contains(s, "line") {
		t.Errorf("Expected no line prefix, got %q", s)
	}
}

func TestWaitForResult_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, err := waitForResult(ctx, make(chan evalResult))
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Expected a timeout error, got %v", err)
	}

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	_, _, err = waitForResult(ctx, make(chan evalResult))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestEvaluate_EmptySource(t *testing.T) {
	s := mustEvaluate(t, "  \n")
	if s.GetShapeCount() != 0 {
		t.Errorf("Expected an empty world, got %d shapes", s.GetShapeCount())
	}
	if !s.World.Light.Position.Equals(core.Point(-10, 10, -10)) {
		t.Errorf("Expected the default light, got %v", s.World.Light.Position)
	}
}

func TestEvaluate_Primitives(t *testing.T) {
	s := mustEvaluate(t, `
(sphere)
(plane)
(cube)
(cylinder :min 0 :max 2 :closed true)
(cone :min -1 :max 0)
(triangle (point 0 1 0) (point -1 0 0) (point 1 0 0))
(smooth-triangle (point 0 1 0) (point -1 0 0) (point 1 0 0)
                 (vector 0 1 0) (vector -1 0 0) (vector 1 0 0))
`)
	shapes := s.World.TopLevel()
	expected := []string{"sphere", "plane", "cube", "cylinder", "cone", "triangle", "smooth-triangle"}
	if len(shapes) != len(expected) {
		t.Fatalf("Expected %d shapes, got %d", len(expected), len(shapes))
	}
	for i, name := range expected {
		if got := shapes[i].Kind.Name(); got != name {
			t.Errorf("shape %d: expected %s, got %s", i, name, got)
		}
	}

	cyl := shapes[3].Kind.(*geometry.Cylinder)
	if cyl.Min != 0 || cyl.Max != 2 || !cyl.Closed {
		t.Errorf("Unexpected cylinder %+v", cyl)
	}
	cone := shapes[4].Kind.(*geometry.Cone)
	if cone.Min != -1 || cone.Max != 0 || cone.Closed {
		t.Errorf("Unexpected cone %+v", cone)
	}
}

func TestEvaluate_QuadricDefaultsAreInfinite(t *testing.T) {
	s := mustEvaluate(t, "(cylinder)")
	cyl := s.World.TopLevel()[0].Kind.(*geometry.Cylinder)
	if !math.IsInf(cyl.Min, -1) || !math.IsInf(cyl.Max, 1) || cyl.Closed {
		t.Errorf("Expected an infinite open cylinder, got %+v", cyl)
	}
}

func TestEvaluate_MaterialAndTransform(t *testing.T) {
	s := mustEvaluate(t, `
(def glass (material :glass true :color (hex "#ff0000") :reflective 0.5))
(def stripes (pattern :stripe (color 1 1 1) (color 0 0 0) :transform (scale 0.5)))
(sphere :material glass :transform (transform (scale 2) (translate 0 1 0)))
(plane :material (material :pattern stripes :ambient 0.3))
`)
	shapes := s.World.TopLevel()
	if len(shapes) != 2 {
		t.Fatalf("Expected 2 shapes, got %d", len(shapes))
	}

	m := shapes[0].Material
	if m.Transparency != 1 || m.RefractiveIndex != 1.5 || m.Reflective != 0.5 {
		t.Errorf("Unexpected glass material %+v", m)
	}
	if !m.Color.Equals(core.NewColor(1, 0, 0)) {
		t.Errorf("Expected red, got %v", m.Color)
	}
	expectedTransform := core.Translation(0, 1, 0).Multiply(core.Scaling(2, 2, 2))
	if !shapes[0].Transform().Equals(expectedTransform) {
		t.Errorf("Expected scale then translate, got %v", shapes[0].Transform())
	}

	floor := shapes[1].Material
	if floor.Ambient != 0.3 {
		t.Errorf("Expected ambient 0.3, got %v", floor.Ambient)
	}
	stripe, ok := floor.Pattern.(*material.Stripe)
	if !ok {
		t.Fatalf("Expected a stripe pattern, got %T", floor.Pattern)
	}
	// scaled by 0.5, so x = 0.75 lands in the second stripe
	if got := material.PatternAt(stripe, core.Point(0.75, 0, 0)); !got.Equals(core.Black) {
		t.Errorf("Expected black at x=0.75, got %v", got)
	}
}

func TestEvaluate_GroupAndCSG(t *testing.T) {
	s := mustEvaluate(t, `
(def a (sphere))
(def b (cube :transform (translate 3 0 0)))
(group a b :transform (translate 0 2 0))
(csg :difference (cube) (sphere :transform (scale 1.3)))
`)
	w := s.World
	top := w.TopLevel()
	if len(top) != 2 {
		t.Fatalf("Expected a group and a csg at top level, got %d shapes", len(top))
	}
	if _, ok := top[0].Kind.(*geometry.Group); !ok {
		t.Fatalf("Expected a group, got %T", top[0].Kind)
	}
	if n := len(w.GetChildren(top[0].ID)); n != 2 {
		t.Errorf("Expected 2 group children, got %d", n)
	}
	c, ok := top[1].Kind.(*geometry.CSG)
	if !ok {
		t.Fatalf("Expected a csg, got %T", top[1].Kind)
	}
	if c.Op != geometry.CSGDifference {
		t.Errorf("Expected difference, got %v", c.Op)
	}

	// the group's transform reaches its children
	xs := w.IntersectWorld(core.NewRay(core.Point(0, 2, -5), core.Vector(0, 0, 1)))
	if len(xs) != 2 || math.Abs(xs[0].T-4) > 1e-9 {
		t.Errorf("Expected the translated sphere at t=4, got %v", xs)
	}
}

func TestEvaluate_LightAndCamera(t *testing.T) {
	s := mustEvaluate(t, `
(light :at (point 5 5 5) :intensity (color 0.5 0.5 0.5))
(camera :from (point 1 2 3) :to (point 0 0 0) :up (vector 0 1 0) :fov 0.8 :width 32 :height 24 :depth 2)
`)
	if !s.World.Light.Position.Equals(core.Point(5, 5, 5)) || !s.World.Light.Intensity.Equals(core.NewColor(0.5, 0.5, 0.5)) {
		t.Errorf("Unexpected light %+v", s.World.Light)
	}
	if !s.View.From.Equals(core.Point(1, 2, 3)) || !s.View.To.Equals(core.Point(0, 0, 0)) {
		t.Errorf("Unexpected view %+v", s.View)
	}
	if s.Config.FieldOfView != 0.8 || s.Config.Width != 32 || s.Config.Height != 24 || s.Config.MaxDepth != 2 {
		t.Errorf("Unexpected config %+v", s.Config)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{"syntax", "(sphere", ""},
		{"undefined symbol", "(sphere :material undefined-thing)", ""},
		{"unknown keyword", "(sphere :colour 1)", "unknown keyword :colour"},
		{"wrong type", "(sphere :material 3)", "expected material"},
		{"singular transform", "(cube :transform (scale 0 1 1))", "not invertible"},
		{"shared child", "(def a (sphere))\n(group a)\n(group a)", "already belongs"},
		{"same operands", "(def a (sphere))\n(csg :union a a)", "different shapes"},
		{"bad csg op", "(csg :xor (sphere) (cube))", "unknown csg operation"},
		{"bad pattern", "(pattern :plaid (color 1 1 1) (color 0 0 0))", "unknown pattern"},
		{"bad color", `(hex "not a color")`, "parse color"},
		{"camera looks at itself", "(camera :from (point 0 0 0) :to (point 0 0 0))", "must differ"},
		{"point expected", "(light :at (vector 1 1 1))", "expected point"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := expectEvalError(t, tt.source)
			if tt.wantMsg != "" && !strings.Contains(e.Error(), tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.wantMsg, e.Error())
			}
		})
	}
}

func TestEvaluate_OBJMesh(t *testing.T) {
	dir := t.TempDir()
	obj := "v 0 1 0\nv -1 0 0\nv 1 0 0\nf 1 2 3\n"
	if err := os.WriteFile(filepath.Join(dir, "tri.obj"), []byte(obj), 0o644); err != nil {
		t.Fatalf("Failed to write obj: %v", err)
	}

	s, evalErrs, err := Evaluate(context.Background(),
		`(obj "tri.obj" :material (material :color (color 0 1 0)) :transform (translate 0 0 1))`,
		ScriptOptions{BaseDir: dir})
	if err != nil || len(evalErrs) > 0 {
		t.Fatalf("Evaluate failed: %v %v", err, evalErrs)
	}
	xs := s.World.IntersectWorld(core.NewRay(core.Point(0, 0.5, -2), core.Vector(0, 0, 1)))
	if len(xs) != 1 || math.Abs(xs[0].T-3) > 1e-9 {
		t.Fatalf("Expected one hit at t=3, got %v", xs)
	}
	if c := s.World.GetShape(xs[0].Object).Material.Color; !c.Equals(core.NewColor(0, 1, 0)) {
		t.Errorf("Expected green triangle, got %v", c)
	}
}

func TestLoadFile_Examples(t *testing.T) {
	tests := []struct {
		file     string
		topLevel int
		from     core.Tuple
	}{
		{"glass-spheres.zy", 4, core.Point(0, 1.5, -5)},
		{"csg-dice.zy", 2, core.Point(2, 3, -4)},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			s, err := LoadFile(filepath.Join("..", "..", "scenes", tt.file), nil)
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if n := len(s.World.TopLevel()); n != tt.topLevel {
				t.Errorf("Expected %d top-level shapes, got %d", tt.topLevel, n)
			}
			if !s.View.From.Equals(tt.from) {
				t.Errorf("Expected camera at %v, got %v", tt.from, s.View.From)
			}
		})
	}
}

func TestLoadFile_ReportsScriptErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zy")
	if err := os.WriteFile(path, []byte("(sphere :material 3)"), 0o644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	_, err := LoadFile(path, nil)
	var evalErr EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("Expected an EvalError, got %v", err)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.zy"), nil); err == nil {
		t.Error("Expected an error for a missing script")
	}
}
