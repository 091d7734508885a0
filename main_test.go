package main

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

func TestLoadScene(t *testing.T) {
	tests := []struct {
		name        string
		ref         string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", false},
		{"csg scene", "csg", false},
		{"glass scene", "glass", false},
		{"groups scene", "groups", false},
		{"cylinders scene", "cylinders", false},

		// Scene scripts by name and by path
		{"script by name", "glass-spheres", false},
		{"script by path", "scenes/csg-dice.zy", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", true},
		{"missing script path", "scenes/nonexistent.zy", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := loadScene(tt.ref, defaultScenesDir, core.DiscardLogger{})
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene '%s', but got none", tt.ref)
				}
				if s != nil {
					t.Errorf("Expected nil scene for '%s'", tt.ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for scene '%s': %v", tt.ref, err)
			}
			if s.Config.Width <= 0 || s.Config.Height <= 0 {
				t.Errorf("Scene size should be positive, got %dx%d", s.Config.Width, s.Config.Height)
			}
			if s.GetShapeCount() == 0 {
				t.Error("Expected shapes in the scene")
			}
		})
	}
}

func TestCreateOutputDir(t *testing.T) {
	tests := []struct {
		ref      string
		expected string
	}{
		{"default", filepath.Join("output", "default")},
		{"scenes/csg-dice.zy", filepath.Join("output", "csg-dice")},
		{"nested/dir/my-scene.zy", filepath.Join("output", "my-scene")},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := createOutputDir(tt.ref); got != tt.expected {
				t.Errorf("createOutputDir(%q) = %q, want %q", tt.ref, got, tt.expected)
			}
		})
	}
}

func TestWriteImage(t *testing.T) {
	canvas := renderer.NewCanvas(4, 2)
	canvas.WritePixel(0, 0, core.NewColor(1, 0, 0))
	dir := t.TempDir()

	ppmPath := filepath.Join(dir, "out.ppm")
	if err := writeImage(ppmPath, canvas); err != nil {
		t.Fatalf("writeImage(ppm) failed: %v", err)
	}
	data, err := os.ReadFile(ppmPath)
	if err != nil {
		t.Fatalf("Failed to read PPM: %v", err)
	}
	if !strings.HasPrefix(string(data), "P3\n4 2\n255\n255 0 0") {
		t.Errorf("Unexpected PPM content %q", data)
	}

	pngPath := filepath.Join(dir, "out.png")
	if err := writeImage(pngPath, canvas); err != nil {
		t.Fatalf("writeImage(png) failed: %v", err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("Failed to open PNG: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("Expected 4x2 image, got %v", b)
	}
	if r, g, _, _ := img.At(0, 0).RGBA(); r>>8 != 255 || g != 0 {
		t.Errorf("Expected a red first pixel, got r=%d g=%d", r>>8, g)
	}

	if err := writeImage(filepath.Join(dir, "missing", "out.png"), canvas); err == nil {
		t.Error("Expected an error writing into a missing directory")
	}
}

func TestRenderCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "default.ppm")
	cmd := newRootCmd()
	cmd.SetArgs([]string{"render", "default", "--width", "8", "--height", "6", "--depth", "2", "-q", "-o", out})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.HasPrefix(string(data), "P3\n8 6\n255\n") {
		t.Errorf("Unexpected header in %q", data[:min(len(data), 20)])
	}
}

func TestRenderCommand_UnknownScene(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"render", "nonexistent", "-q"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error for an unknown scene")
	}
}

func TestScenesCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"scenes"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("scenes failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Built-in Scenes:", "default", "cylinders", "Examples:", "csg-dice.zy"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in listing:\n%s", want, out)
		}
	}
}

func TestTurntable(t *testing.T) {
	tt := NewTurntable(30)
	for range 300 {
		tt.Update(1.0)
	}
	if math.Abs(tt.Velocity-1.0) > 1e-3 {
		t.Errorf("Expected velocity to settle at 1, got %v", tt.Velocity)
	}
	if tt.Angle <= 0 || tt.Angle >= 2*math.Pi {
		t.Errorf("Expected angle within (0, 2pi), got %v", tt.Angle)
	}

	for range 300 {
		tt.Update(0)
	}
	if tt.Moving() {
		t.Errorf("Expected the turntable to stop, velocity %v", tt.Velocity)
	}

	tt.Nudge(0.5)
	if !tt.Moving() {
		t.Error("Expected a nudge to start the turntable")
	}
}

func TestPreviewSize(t *testing.T) {
	if w, h := previewSize(80, 24); w != 80 || h != 48 {
		t.Errorf("Expected 80x48, got %dx%d", w, h)
	}
	if w, h := previewSize(0, 0); w != 1 || h != 2 {
		t.Errorf("Expected a 1x2 minimum, got %dx%d", w, h)
	}
}
