package renderer

import (
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// RenderStats contains statistics about a finished render
type RenderStats struct {
	TotalPixels int           // Pixels written to the canvas
	PrimaryRays int           // Camera rays traced, one per pixel
	Tiles       int           // Tiles the image was split into
	Workers     int           // Maximum tiles rendered concurrently
	MaxDepth    int           // Recursion budget handed to ColorAt
	Duration    time.Duration // Wall time of the render
}

// merge folds the counters of a finished tile into s
func (s *RenderStats) merge(tile RenderStats) {
	s.TotalPixels += tile.TotalPixels
	s.PrimaryRays += tile.PrimaryRays
}

// PixelsPerSecond returns the render throughput
func (s RenderStats) PixelsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalPixels) / s.Duration.Seconds()
}

// Luminance returns the Rec. 709 relative luminance of a linear color
func Luminance(c core.Color) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// CalculateAverageLuminance returns the mean luminance of the canvas after
// clamping each pixel to [0, 1]
func CalculateAverageLuminance(cv *Canvas) float64 {
	if cv.Width == 0 || cv.Height == 0 {
		return 0
	}
	total := 0.0
	for y := range cv.Height {
		for x := range cv.Width {
			total += Luminance(cv.PixelAt(x, y).Clamp(0, 1))
		}
	}
	return total / float64(cv.Width*cv.Height)
}
