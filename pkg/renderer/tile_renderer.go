package renderer

import (
	"context"
	"image"

	"github.com/df07/go-whitted-raytracer/pkg/world"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{ID: id, Bounds: bounds}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	if tileSize <= 0 {
		tileSize = max(width, height, 1)
	}
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := range tilesY {
		for tileX := range tilesX {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}

// TileRenderer traces the pixels of one tile at a time into a shared canvas.
// Tiles never overlap, so concurrent calls on distinct tiles are safe as long
// as the world is not modified.
type TileRenderer struct {
	world    *world.World
	camera   *Camera
	maxDepth int
}

// NewTileRenderer creates a tile renderer for the given world and camera
func NewTileRenderer(w *world.World, camera *Camera, maxDepth int) *TileRenderer {
	return &TileRenderer{world: w, camera: camera, maxDepth: maxDepth}
}

// RenderTileBounds traces every pixel inside bounds and writes it to canvas.
// It stops between rows once ctx is cancelled.
func (tr *TileRenderer) RenderTileBounds(ctx context.Context, bounds image.Rectangle, canvas *Canvas) (RenderStats, error) {
	var stats RenderStats
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ray := tr.camera.RayForPixel(x, y)
			canvas.WritePixel(x, y, tr.world.ColorAt(ray, tr.maxDepth))
			stats.TotalPixels++
			stats.PrimaryRays++
		}
	}
	return stats, nil
}
