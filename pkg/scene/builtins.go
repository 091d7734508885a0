package scene

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene script syntax into what zygomys accepts:
//
//  1. Keywords become marker strings: :refractive-index -> "__kw_refractive-index"
//  2. Kebab-case identifiers become underscores: rotate-x -> rotate_x.
//     A hyphen followed by a digit is left alone so (translate 0 -1 0) keeps
//     its negative number.
//  3. ; line comments become // comments.
//
// String literals are copied unchanged.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		}
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Go values carried through the interpreter
// ---------------------------------------------------------------------------

type sexpTuple struct{ t core.Tuple }

func (v *sexpTuple) SexpString(ps *zygo.PrintState) string {
	if v.t.IsPoint() {
		return fmt.Sprintf("(point %g %g %g)", v.t.X, v.t.Y, v.t.Z)
	}
	return fmt.Sprintf("(vector %g %g %g)", v.t.X, v.t.Y, v.t.Z)
}
func (v *sexpTuple) Type() *zygo.RegisteredType { return nil }

type sexpColor struct{ c core.Color }

func (v *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(color %g %g %g)", v.c.R, v.c.G, v.c.B)
}
func (v *sexpColor) Type() *zygo.RegisteredType { return nil }

type sexpMatrix struct{ m core.Matrix }

func (v *sexpMatrix) SexpString(ps *zygo.PrintState) string { return "(transform ...)" }
func (v *sexpMatrix) Type() *zygo.RegisteredType            { return nil }

type sexpMaterial struct{ m material.Material }

func (v *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :color (color %g %g %g))", v.m.Color.R, v.m.Color.G, v.m.Color.B)
}
func (v *sexpMaterial) Type() *zygo.RegisteredType { return nil }

type sexpPattern struct {
	kind string
	p    material.Pattern
}

func (v *sexpPattern) SexpString(ps *zygo.PrintState) string { return fmt.Sprintf("(pattern :%s ...)", v.kind) }
func (v *sexpPattern) Type() *zygo.RegisteredType            { return nil }

// sexpShape refers to a shape registered in the world being built
type sexpShape struct {
	id   geometry.ShapeID
	kind string
}

func (v *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("#<%s %d>", v.kind, v.id)
}
func (v *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword strings produced by preprocessSource
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates keyword and positional arguments. A trailing keyword
// with no value is stored as SexpNull and reads as a true flag.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i++
			} else {
				result.kw[name] = zygo.SexpNull
			}
			continue
		}
		result.positional = append(result.positional, args[i])
	}
	return result
}

// checkKeywords rejects keywords a builtin does not understand
func (a kwArgs) checkKeywords(allowed ...string) error {
	for name := range a.kw {
		found := false
		for _, ok := range allowed {
			if name == ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown keyword :%s", name)
		}
	}
	return nil
}

func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf(":%s: %w", name, err)
	}
	return f, nil
}

func (a kwArgs) bool(name string) (bool, error) {
	v, ok := a.kw[name]
	if !ok {
		return false, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, fmt.Errorf(":%s: %w", name, err)
	}
	return b, nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpInt:
		return v.Val != 0, nil
	}
	if s == zygo.SexpNull {
		return true, nil
	}
	return false, fmt.Errorf("expected boolean, got %s", describe(s))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// toKeywordString accepts :name or "name"
func toKeywordString(s zygo.Sexp) (string, error) {
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword or string, got %s", describe(s))
	}
	return strings.TrimPrefix(str, kwPrefix), nil
}

func toTuple(s zygo.Sexp, wantPoint bool) (core.Tuple, error) {
	if v, ok := s.(*sexpTuple); ok && v.t.IsPoint() == wantPoint {
		return v.t, nil
	}
	if wantPoint {
		return core.Tuple{}, fmt.Errorf("expected point, got %s", describe(s))
	}
	return core.Tuple{}, fmt.Errorf("expected vector, got %s", describe(s))
}

func toColor(s zygo.Sexp) (core.Color, error) {
	switch v := s.(type) {
	case *sexpColor:
		return v.c, nil
	case *zygo.SexpStr:
		return core.ParseHexColor(v.S)
	}
	return core.Black, fmt.Errorf("expected color, got %s", describe(s))
}

func toMatrix(s zygo.Sexp) (core.Matrix, error) {
	if v, ok := s.(*sexpMatrix); ok {
		return v.m, nil
	}
	return core.Matrix{}, fmt.Errorf("expected transform, got %s", describe(s))
}

func toMaterial(s zygo.Sexp) (material.Material, error) {
	if v, ok := s.(*sexpMaterial); ok {
		return v.m, nil
	}
	return material.Material{}, fmt.Errorf("expected material, got %s", describe(s))
}

func toPattern(s zygo.Sexp) (material.Pattern, error) {
	if v, ok := s.(*sexpPattern); ok {
		return v.p, nil
	}
	return nil, fmt.Errorf("expected pattern, got %s", describe(s))
}

func toShape(s zygo.Sexp) (geometry.ShapeID, error) {
	if v, ok := s.(*sexpShape); ok {
		return v.id, nil
	}
	return geometry.NoShape, fmt.Errorf("expected shape, got %s", describe(s))
}

// sexpListToSlice converts a list or array to a Go slice
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, bool) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		items, err := zygo.ListToArray(v)
		return items, err == nil
	case *zygo.SexpArray:
		return v.Val, true
	}
	return nil, false
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	return s.SexpString(nil)
}

func floats(args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d arguments", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

// builder collects the scene a script describes
type builder struct {
	scene   *Scene
	baseDir string
	logger  core.Logger
}

// userFunc is the signature zygomys calls builtins with, minus the
// environment and name
type userFunc func(args []zygo.Sexp) (zygo.Sexp, error)

func addBuiltin(env *zygo.Zlisp, name string, fn userFunc) {
	env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		result, err := fn(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return result, nil
	})
}

// registerBuiltins installs the scene vocabulary. Names use underscores
// because preprocessSource rewrites kebab-case before zygomys sees it.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	// values
	addBuiltin(env, "point", func(args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floats(args, 3)
		if err != nil {
			return nil, err
		}
		return &sexpTuple{core.Point(f[0], f[1], f[2])}, nil
	})
	addBuiltin(env, "vector", func(args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floats(args, 3)
		if err != nil {
			return nil, err
		}
		return &sexpTuple{core.Vector(f[0], f[1], f[2])}, nil
	})
	addBuiltin(env, "color", func(args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floats(args, 3)
		if err != nil {
			return nil, err
		}
		return &sexpColor{core.NewColor(f[0], f[1], f[2])}, nil
	})
	addBuiltin(env, "hex", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected one color string")
		}
		s, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		c, err := core.ParseHexColor(s)
		if err != nil {
			return nil, err
		}
		return &sexpColor{c}, nil
	})

	// transforms
	addBuiltin(env, "translate", func(args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floats(args, 3)
		if err != nil {
			return nil, err
		}
		return &sexpMatrix{core.Translation(f[0], f[1], f[2])}, nil
	})
	addBuiltin(env, "scale", func(args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 1 {
			s, err := toFloat64(args[0])
			if err != nil {
				return nil, err
			}
			return &sexpMatrix{core.Scaling(s, s, s)}, nil
		}
		f, err := floats(args, 3)
		if err != nil {
			return nil, err
		}
		return &sexpMatrix{core.Scaling(f[0], f[1], f[2])}, nil
	})
	for name, rotate := range map[string]func(float64) core.Matrix{
		"rotate_x": core.RotationX,
		"rotate_y": core.RotationY,
		"rotate_z": core.RotationZ,
	} {
		addBuiltin(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
			f, err := floats(args, 1)
			if err != nil {
				return nil, err
			}
			return &sexpMatrix{rotate(f[0])}, nil
		})
	}
	addBuiltin(env, "shear", func(args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := floats(args, 6)
		if err != nil {
			return nil, err
		}
		return &sexpMatrix{core.Shearing(f[0], f[1], f[2], f[3], f[4], f[5])}, nil
	})
	// (transform a b c) applies a first, then b, then c
	addBuiltin(env, "transform", func(args []zygo.Sexp) (zygo.Sexp, error) {
		m := core.Identity()
		for i, a := range args {
			next, err := toMatrix(a)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			m = m.Then(next)
		}
		return &sexpMatrix{m}, nil
	})

	// surfaces
	addBuiltin(env, "pattern", func(args []zygo.Sexp) (zygo.Sexp, error) {
		return b.pattern(args)
	})
	addBuiltin(env, "material", func(args []zygo.Sexp) (zygo.Sexp, error) {
		return b.material(args)
	})

	// scene setup
	addBuiltin(env, "light", func(args []zygo.Sexp) (zygo.Sexp, error) {
		return b.light(args)
	})
	addBuiltin(env, "camera", func(args []zygo.Sexp) (zygo.Sexp, error) {
		return b.camera(args)
	})

	// shapes
	primitives := map[string]func(kwArgs) (*geometry.Shape, error){
		"sphere": func(kwArgs) (*geometry.Shape, error) { return geometry.NewSphere(), nil },
		"plane":  func(kwArgs) (*geometry.Shape, error) { return geometry.NewPlane(), nil },
		"cube":   func(kwArgs) (*geometry.Shape, error) { return geometry.NewCube(), nil },
		"cylinder": func(pa kwArgs) (*geometry.Shape, error) {
			lo, hi, closed, err := quadricArgs(pa)
			if err != nil {
				return nil, err
			}
			return geometry.NewTruncatedCylinder(lo, hi, closed), nil
		},
		"cone": func(pa kwArgs) (*geometry.Shape, error) {
			lo, hi, closed, err := quadricArgs(pa)
			if err != nil {
				return nil, err
			}
			return geometry.NewTruncatedCone(lo, hi, closed), nil
		},
		"triangle": func(pa kwArgs) (*geometry.Shape, error) {
			p, err := points(pa.positional, 3, true)
			if err != nil {
				return nil, err
			}
			return geometry.NewTriangle(p[0], p[1], p[2]), nil
		},
		"smooth_triangle": func(pa kwArgs) (*geometry.Shape, error) {
			if len(pa.positional) != 6 {
				return nil, fmt.Errorf("expected 3 points and 3 normals, got %d arguments", len(pa.positional))
			}
			p, err := points(pa.positional[:3], 3, true)
			if err != nil {
				return nil, err
			}
			n, err := points(pa.positional[3:], 3, false)
			if err != nil {
				return nil, err
			}
			return geometry.NewSmoothTriangle(p[0], p[1], p[2], n[0], n[1], n[2]), nil
		},
	}
	for name, build := range primitives {
		addBuiltin(env, name, func(args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if err := pa.checkKeywords("material", "transform", "min", "max", "closed"); err != nil {
				return nil, err
			}
			s, err := build(pa)
			if err != nil {
				return nil, err
			}
			return b.register(s, pa)
		})
	}
	addBuiltin(env, "group", func(args []zygo.Sexp) (zygo.Sexp, error) {
		return b.group(args)
	})
	addBuiltin(env, "csg", func(args []zygo.Sexp) (zygo.Sexp, error) {
		return b.csg(args)
	})
	addBuiltin(env, "obj", func(args []zygo.Sexp) (zygo.Sexp, error) {
		return b.mesh("obj", args)
	})
	addBuiltin(env, "gltf", func(args []zygo.Sexp) (zygo.Sexp, error) {
		return b.mesh("gltf", args)
	})
}

// quadricArgs reads :min, :max and :closed; the default is infinite and open
func quadricArgs(pa kwArgs) (lo, hi float64, closed bool, err error) {
	if lo, err = pa.float("min", math.Inf(-1)); err != nil {
		return
	}
	if hi, err = pa.float("max", math.Inf(1)); err != nil {
		return
	}
	closed, err = pa.bool("closed")
	return
}

func points(args []zygo.Sexp, n int, wantPoint bool) ([]core.Tuple, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d tuples, got %d arguments", n, len(args))
	}
	out := make([]core.Tuple, n)
	for i, a := range args {
		t, err := toTuple(a, wantPoint)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = t
	}
	return out, nil
}

// applyTransform sets :transform on a registered shape
func (b *builder) applyTransform(id geometry.ShapeID, pa kwArgs) error {
	v, ok := pa.kw["transform"]
	if !ok {
		return nil
	}
	m, err := toMatrix(v)
	if err != nil {
		return fmt.Errorf(":transform: %w", err)
	}
	if !m.Invertible() {
		return fmt.Errorf(":transform: matrix is not invertible")
	}
	b.scene.World.SetTransform(id, m)
	return nil
}

// register adds a primitive to the world with its :material and :transform
func (b *builder) register(s *geometry.Shape, pa kwArgs) (zygo.Sexp, error) {
	if v, ok := pa.kw["material"]; ok {
		m, err := toMaterial(v)
		if err != nil {
			return nil, fmt.Errorf(":material: %w", err)
		}
		s.SetMaterial(m)
	}
	id := b.scene.World.AddShape(s)
	if err := b.applyTransform(id, pa); err != nil {
		return nil, err
	}
	return &sexpShape{id: id, kind: s.Kind.Name()}, nil
}

// claim checks that a shape can still be given a parent
func (b *builder) claim(v zygo.Sexp) (geometry.ShapeID, error) {
	id, err := toShape(v)
	if err != nil {
		return geometry.NoShape, err
	}
	if p := b.scene.World.GetShape(id).Parent; p != geometry.NoShape {
		return geometry.NoShape, fmt.Errorf("shape %d already belongs to shape %d", id, p)
	}
	return id, nil
}

// (group :transform m child...) where children may also be given as lists
func (b *builder) group(args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.checkKeywords("transform"); err != nil {
		return nil, err
	}

	var children []geometry.ShapeID
	var collect func(v zygo.Sexp) error
	collect = func(v zygo.Sexp) error {
		if items, ok := sexpListToSlice(v); ok {
			for _, item := range items {
				if err := collect(item); err != nil {
					return err
				}
			}
			return nil
		}
		id, err := b.claim(v)
		if err != nil {
			return err
		}
		children = append(children, id)
		return nil
	}
	for _, v := range pa.positional {
		if err := collect(v); err != nil {
			return nil, err
		}
	}

	w := b.scene.World
	id := w.AddShape(geometry.NewGroup())
	for _, child := range children {
		w.Attach(id, child)
	}
	if err := b.applyTransform(id, pa); err != nil {
		return nil, err
	}
	return &sexpShape{id: id, kind: "group"}, nil
}

// (csg :difference left right :transform m)
func (b *builder) csg(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected an operation")
	}
	opName, err := toKeywordString(args[0])
	if err != nil {
		return nil, err
	}
	op, err := geometry.ParseOperation(opName)
	if err != nil {
		return nil, err
	}

	pa := parseArgs(args[1:])
	if err := pa.checkKeywords("transform"); err != nil {
		return nil, err
	}
	if len(pa.positional) != 2 {
		return nil, fmt.Errorf("expected 2 operands, got %d", len(pa.positional))
	}
	left, err := b.claim(pa.positional[0])
	if err != nil {
		return nil, fmt.Errorf("left operand: %w", err)
	}
	right, err := b.claim(pa.positional[1])
	if err != nil {
		return nil, fmt.Errorf("right operand: %w", err)
	}
	if left == right {
		return nil, fmt.Errorf("operands must be different shapes")
	}

	id := b.scene.World.CreateCSG(op, left, right)
	if err := b.applyTransform(id, pa); err != nil {
		return nil, err
	}
	return &sexpShape{id: id, kind: "csg"}, nil
}

// (obj "teapot.obj" :material m :transform t :ignore-normals true)
// (gltf "model.glb" :material m :transform t)
func (b *builder) mesh(format string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.checkKeywords("material", "transform", "ignore-normals"); err != nil {
		return nil, err
	}
	if len(pa.positional) != 1 {
		return nil, fmt.Errorf("expected one file path")
	}
	path, err := toString(pa.positional[0])
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) && b.baseDir != "" {
		path = filepath.Join(b.baseDir, path)
	}

	m := material.DefaultMaterial()
	if v, ok := pa.kw["material"]; ok {
		if m, err = toMaterial(v); err != nil {
			return nil, fmt.Errorf(":material: %w", err)
		}
	}

	var id geometry.ShapeID
	switch format {
	case "obj":
		opts := loaders.DefaultOBJOptions()
		opts.Material = m
		opts.Logger = b.logger
		if opts.IgnoreNormals, err = pa.bool("ignore-normals"); err != nil {
			return nil, err
		}
		id, _, err = loaders.LoadOBJ(b.scene.World, path, opts)
	default:
		id, _, err = loaders.LoadGLTF(b.scene.World, path, m, b.logger)
	}
	if err != nil {
		return nil, err
	}
	if err := b.applyTransform(id, pa); err != nil {
		return nil, err
	}
	return &sexpShape{id: id, kind: "group"}, nil
}

// (pattern :stripe a b :transform m), also :gradient :ring :checkers,
// (pattern :solid c) and (pattern :blend p q)
func (b *builder) pattern(args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected a pattern kind")
	}
	kind, err := toKeywordString(args[0])
	if err != nil {
		return nil, err
	}
	pa := parseArgs(args[1:])
	if err := pa.checkKeywords("transform"); err != nil {
		return nil, err
	}

	var p interface {
		material.Pattern
		SetTransform(core.Matrix)
	}
	switch kind {
	case "solid":
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("%s: expected one color", kind)
		}
		c, err := toColor(pa.positional[0])
		if err != nil {
			return nil, err
		}
		p = material.NewSolidColor(c)
	case "stripe", "gradient", "ring", "checkers":
		if len(pa.positional) != 2 {
			return nil, fmt.Errorf("%s: expected two colors", kind)
		}
		a, err := toColor(pa.positional[0])
		if err != nil {
			return nil, err
		}
		c, err := toColor(pa.positional[1])
		if err != nil {
			return nil, err
		}
		switch kind {
		case "stripe":
			p = material.NewStripe(a, c)
		case "gradient":
			p = material.NewGradient(a, c)
		case "ring":
			p = material.NewRing(a, c)
		default:
			p = material.NewCheckers(a, c)
		}
	case "blend":
		if len(pa.positional) != 2 {
			return nil, fmt.Errorf("blend: expected two patterns")
		}
		first, err := toPattern(pa.positional[0])
		if err != nil {
			return nil, err
		}
		second, err := toPattern(pa.positional[1])
		if err != nil {
			return nil, err
		}
		p = material.NewBlend(first, second)
	default:
		return nil, fmt.Errorf("unknown pattern %q", kind)
	}

	if v, ok := pa.kw["transform"]; ok {
		m, err := toMatrix(v)
		if err != nil {
			return nil, fmt.Errorf(":transform: %w", err)
		}
		if !m.Invertible() {
			return nil, fmt.Errorf(":transform: matrix is not invertible")
		}
		p.SetTransform(m)
	}
	return &sexpPattern{kind: kind, p: p}, nil
}

// (material :color c :ambient a ... :pattern p), optionally starting from
// another material given positionally or from :glass
func (b *builder) material(args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.checkKeywords("color", "pattern", "ambient", "diffuse", "specular", "shininess",
		"reflective", "transparency", "refractive-index", "glass"); err != nil {
		return nil, err
	}

	m := material.DefaultMaterial()
	glass, err := pa.bool("glass")
	if err != nil {
		return nil, err
	}
	if glass {
		m = material.GlassMaterial()
	}
	switch len(pa.positional) {
	case 0:
	case 1:
		if m, err = toMaterial(pa.positional[0]); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("expected at most one base material")
	}

	if v, ok := pa.kw["color"]; ok {
		if m.Color, err = toColor(v); err != nil {
			return nil, fmt.Errorf(":color: %w", err)
		}
	}
	if v, ok := pa.kw["pattern"]; ok {
		if m.Pattern, err = toPattern(v); err != nil {
			return nil, fmt.Errorf(":pattern: %w", err)
		}
	}
	for _, field := range []struct {
		name string
		dst  *float64
	}{
		{"ambient", &m.Ambient},
		{"diffuse", &m.Diffuse},
		{"specular", &m.Specular},
		{"shininess", &m.Shininess},
		{"reflective", &m.Reflective},
		{"transparency", &m.Transparency},
		{"refractive-index", &m.RefractiveIndex},
	} {
		if *field.dst, err = pa.float(field.name, *field.dst); err != nil {
			return nil, err
		}
	}
	return &sexpMaterial{m}, nil
}

// (light :at p :intensity c) or (light p c)
func (b *builder) light(args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.checkKeywords("at", "intensity"); err != nil {
		return nil, err
	}
	light := b.scene.World.Light
	var err error

	at, ok := pa.kw["at"]
	if !ok && len(pa.positional) > 0 {
		at, ok = pa.positional[0], true
	}
	if ok {
		if light.Position, err = toTuple(at, true); err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
	}

	intensity, ok := pa.kw["intensity"]
	if !ok && len(pa.positional) > 1 {
		intensity, ok = pa.positional[1], true
	}
	if ok {
		if light.Intensity, err = toColor(intensity); err != nil {
			return nil, fmt.Errorf("intensity: %w", err)
		}
	}

	b.scene.World.Light = light
	return zygo.SexpNull, nil
}

// (camera :from p :to p :up v :fov radians :width w :height h :depth n)
func (b *builder) camera(args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.checkKeywords("from", "to", "up", "fov", "width", "height", "depth"); err != nil {
		return nil, err
	}
	view := b.scene.View
	cfg := b.scene.Config
	var err error

	for _, field := range []struct {
		name  string
		dst   *core.Tuple
		point bool
	}{
		{"from", &view.From, true},
		{"to", &view.To, true},
		{"up", &view.Up, false},
	} {
		if v, ok := pa.kw[field.name]; ok {
			if *field.dst, err = toTuple(v, field.point); err != nil {
				return nil, fmt.Errorf(":%s: %w", field.name, err)
			}
		}
	}
	if view.From.Equals(view.To) {
		return nil, fmt.Errorf(":from and :to must differ")
	}

	if cfg.FieldOfView, err = pa.float("fov", cfg.FieldOfView); err != nil {
		return nil, err
	}
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"width", &cfg.Width},
		{"height", &cfg.Height},
		{"depth", &cfg.MaxDepth},
	} {
		f, err := pa.float(field.name, float64(*field.dst))
		if err != nil {
			return nil, err
		}
		*field.dst = int(f)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf(":depth must not be negative")
	}

	b.scene.View = view
	b.scene.Config = cfg
	return zygo.SexpNull, nil
}
