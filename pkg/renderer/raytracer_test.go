package renderer

import (
	"context"
	"errors"
	"image"
	"math"
	"sync/atomic"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/world"
)

func defaultWorldCamera() *Camera {
	return NewCamera(11, 11, math.Pi/2).SetTransform(
		core.ViewTransform(core.Point(0, 0, -5), core.Point(0, 0, 0), core.Vector(0, 1, 0)))
}

func TestRender_DefaultWorld(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 4
	cfg.NumWorkers = 3

	canvas, stats, err := Render(context.Background(), world.DefaultWorld(), defaultWorldCamera(), cfg, core.DiscardLogger{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	expected := core.NewColor(0.38066, 0.47583, 0.2855)
	if got := canvas.PixelAt(5, 5); !got.Equals(expected) {
		t.Errorf("Expected %v at the center, got %v", expected, got)
	}
	if stats.TotalPixels != 121 || stats.PrimaryRays != 121 {
		t.Errorf("Expected 121 pixels and rays, got %d and %d", stats.TotalPixels, stats.PrimaryRays)
	}
	if stats.Tiles != 9 {
		t.Errorf("Expected 9 tiles, got %d", stats.Tiles)
	}
	if stats.Workers != 3 || stats.MaxDepth != cfg.MaxDepth {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestRender_MatchesSerialTrace(t *testing.T) {
	w := world.DefaultWorld()
	cam := defaultWorldCamera()
	cfg := DefaultConfig()
	cfg.TileSize = 3

	canvas, _, err := Render(context.Background(), w, cam, cfg, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for y := range cam.VSize {
		for x := range cam.HSize {
			want := w.ColorAt(cam.RayForPixel(x, y), cfg.MaxDepth)
			if got := canvas.PixelAt(x, y); !got.Equals(want) {
				t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	canvas, _, err := Render(ctx, world.DefaultWorld(), defaultWorldCamera(), DefaultConfig(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if canvas == nil {
		t.Error("Expected a partial canvas even when cancelled")
	}
}

func TestNewTileGrid(t *testing.T) {
	width, height, tileSize := 400, 225, 64
	tiles := NewTileGrid(width, height, tileSize)

	expectedTilesX := (width + tileSize - 1) / tileSize   // 7 tiles
	expectedTilesY := (height + tileSize - 1) / tileSize  // 4 tiles
	expectedTotalTiles := expectedTilesX * expectedTilesY // 28 tiles
	if len(tiles) != expectedTotalTiles {
		t.Errorf("Expected %d tiles, got %d", expectedTotalTiles, len(tiles))
	}

	// tiles cover the image without gaps or overlaps
	covered := make([][]bool, height)
	for y := range covered {
		covered[y] = make([]bool, width)
	}
	for _, tile := range tiles {
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				if x >= width || y >= height {
					t.Fatalf("Tile %d extends beyond image bounds at (%d,%d)", tile.ID, x, y)
				}
				if covered[y][x] {
					t.Errorf("Pixel (%d,%d) is covered by multiple tiles", x, y)
				}
				covered[y][x] = true
			}
		}
	}
	for y := range height {
		for x := range width {
			if !covered[y][x] {
				t.Errorf("Pixel (%d,%d) is not covered by any tile", x, y)
			}
		}
	}
}

func TestNewTileGrid_NonPositiveSizeIsOneTile(t *testing.T) {
	tiles := NewTileGrid(30, 20, 0)
	if len(tiles) != 1 || tiles[0].Bounds != image.Rect(0, 0, 30, 20) {
		t.Errorf("Expected one full-image tile, got %d tiles", len(tiles))
	}
}

func TestWorkerPool_StopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	tiles := NewTileGrid(64, 64, 8)
	pool := NewWorkerPool(2)

	var calls atomic.Int32
	_, err := pool.Run(context.Background(), tiles, func(ctx context.Context, tile *Tile) (RenderStats, error) {
		calls.Add(1)
		if tile.ID == 3 {
			return RenderStats{}, boom
		}
		return RenderStats{TotalPixels: tile.Bounds.Dx() * tile.Bounds.Dy()}, nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
	if int(calls.Load()) > len(tiles) {
		t.Errorf("Task ran %d times for %d tiles", calls.Load(), len(tiles))
	}
}

func TestWorkerPool_MergesStats(t *testing.T) {
	tiles := NewTileGrid(50, 30, 16)
	stats, err := NewWorkerPool(0).Run(context.Background(), tiles, func(ctx context.Context, tile *Tile) (RenderStats, error) {
		n := tile.Bounds.Dx() * tile.Bounds.Dy()
		return RenderStats{TotalPixels: n, PrimaryRays: n}, nil
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.TotalPixels != 1500 || stats.PrimaryRays != 1500 {
		t.Errorf("Expected 1500 pixels, got %+v", stats)
	}
}

func TestCalculateAverageLuminance(t *testing.T) {
	// red 0.2126, green 0.7152, blue 0.0722, black 0: mean 0.25
	cv := NewCanvas(2, 2)
	cv.WritePixel(0, 0, core.NewColor(1, 0, 0))
	cv.WritePixel(1, 0, core.NewColor(0, 1, 0))
	cv.WritePixel(0, 1, core.NewColor(0, 0, 1))

	avgLum := CalculateAverageLuminance(cv)
	expected := 0.25
	tolerance := 0.0001
	if math.Abs(avgLum-expected) > tolerance {
		t.Errorf("Expected average luminance %f, got %f", expected, avgLum)
	}
}
