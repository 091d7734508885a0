package renderer

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/world"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...any) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Config contains rendering configuration
type Config struct {
	Width       int     // Canvas width in pixels
	Height      int     // Canvas height in pixels
	FieldOfView float64 // Horizontal or vertical field of view in radians, whichever is longer
	MaxDepth    int     // Reflection/refraction bounce budget
	TileSize    int     // Size of each square tile
	NumWorkers  int     // Number of parallel workers (0 = use CPU count)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:       400,
		Height:      225,
		FieldOfView: math.Pi / 3,
		MaxDepth:    world.DefaultRemaining,
		TileSize:    32,
		NumWorkers:  runtime.NumCPU(),
	}
}

// NewCamera creates a camera sized by the config and oriented by a view
// transform from `from` towards `to`
func (c Config) NewCamera(from, to, up core.Tuple) *Camera {
	return NewCamera(c.Width, c.Height, c.FieldOfView).
		SetTransform(core.ViewTransform(from, to, up))
}

// Raytracer renders a world through a camera into a canvas
type Raytracer struct {
	world  *world.World
	camera *Camera
	config Config
	logger core.Logger
}

// NewRaytracer creates a raytracer. The world must not be modified while a
// render is running.
func NewRaytracer(w *world.World, camera *Camera, config Config, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.DiscardLogger{}
	}
	return &Raytracer{world: w, camera: camera, config: config, logger: logger}
}

// Render traces every pixel of the camera's canvas in parallel tiles. On
// cancellation it returns the partially filled canvas with ctx's error.
func (rt *Raytracer) Render(ctx context.Context) (*Canvas, RenderStats, error) {
	start := time.Now()
	canvas := NewCanvas(rt.camera.HSize, rt.camera.VSize)
	tiles := NewTileGrid(canvas.Width, canvas.Height, rt.config.TileSize)
	pool := NewWorkerPool(rt.config.NumWorkers)
	tr := NewTileRenderer(rt.world, rt.camera, rt.config.MaxDepth)

	rt.logger.Printf("Rendering %dx%d in %d tiles (using %d workers, depth %d)...\n",
		canvas.Width, canvas.Height, len(tiles), pool.GetNumWorkers(), rt.config.MaxDepth)

	stats, err := pool.Run(ctx, tiles, func(ctx context.Context, tile *Tile) (RenderStats, error) {
		return tr.RenderTileBounds(ctx, tile.Bounds, canvas)
	})
	stats.Tiles = len(tiles)
	stats.Workers = pool.GetNumWorkers()
	stats.MaxDepth = rt.config.MaxDepth
	stats.Duration = time.Since(start)
	if err != nil {
		rt.logger.Printf("Rendering cancelled after %v: %v\n", stats.Duration, err)
		return canvas, stats, err
	}

	rt.logger.Printf("Render completed in %v (%.0f pixels/s)\n", stats.Duration, stats.PixelsPerSecond())
	return canvas, stats, nil
}

// Render is a shorthand for NewRaytracer(w, camera, config, logger).Render(ctx)
func Render(ctx context.Context, w *world.World, camera *Camera, config Config, logger core.Logger) (*Canvas, RenderStats, error) {
	return NewRaytracer(w, camera, config, logger).Render(ctx)
}
