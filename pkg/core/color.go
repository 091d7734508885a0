package core

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB triple. Components may exceed 1 before clamping.
type Color struct {
	R, G, B float64
}

var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// NewColor creates a new color
func NewColor(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// ParseHexColor parses "#rrggbb" or "#rgb" into a color
func ParseHexColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Black, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return Color{R: c.R, G: c.G, B: c.B}, nil
}

// Add returns the sum of two colors
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Subtract returns the difference of two colors
func (c Color) Subtract(other Color) Color {
	return Color{c.R - other.R, c.G - other.G, c.B - other.B}
}

// Multiply scales the color by a scalar
func (c Color) Multiply(scalar float64) Color {
	return Color{c.R * scalar, c.G * scalar, c.B * scalar}
}

// Blend returns the Hadamard product of two colors
func (c Color) Blend(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B}
}

// Clamp returns a color with components clamped to [min, max]
func (c Color) Clamp(minVal, maxVal float64) Color {
	return Color{
		R: max(minVal, min(maxVal, c.R)),
		G: max(minVal, min(maxVal, c.G)),
		B: max(minVal, min(maxVal, c.B)),
	}
}

// RGB8 scales the clamped color to 0-255 channel values
func (c Color) RGB8() (r, g, b uint8) {
	clamped := c.Clamp(0, 1)
	return uint8(math.Round(clamped.R * 255)),
		uint8(math.Round(clamped.G * 255)),
		uint8(math.Round(clamped.B * 255))
}

// Hex formats the clamped color as "#rrggbb"
func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}

// Equals compares two colors within Epsilon
func (c Color) Equals(other Color) bool {
	return Equal(c.R, other.R) && Equal(c.G, other.G) && Equal(c.B, other.B)
}
