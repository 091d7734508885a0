package renderer

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Camera maps a canvas of HSize x VSize pixels onto a view plane one unit in
// front of the eye. The transform orients the world relative to the camera.
type Camera struct {
	HSize       int
	VSize       int
	FieldOfView float64

	transform core.Matrix
	inverse   core.Matrix

	halfWidth  float64
	halfHeight float64
	pixelSize  float64
}

// NewCamera creates a camera at the origin looking down -z
func NewCamera(hsize, vsize int, fieldOfView float64) *Camera {
	c := &Camera{
		HSize:       hsize,
		VSize:       vsize,
		FieldOfView: fieldOfView,
		transform:   core.Identity(),
		inverse:     core.Identity(),
	}

	halfView := math.Tan(fieldOfView / 2)
	aspect := float64(hsize) / float64(vsize)
	if aspect >= 1 {
		c.halfWidth = halfView
		c.halfHeight = halfView / aspect
	} else {
		c.halfWidth = halfView * aspect
		c.halfHeight = halfView
	}
	c.pixelSize = c.halfWidth * 2 / float64(hsize)
	return c
}

// PixelSize returns the world-space width of one pixel on the view plane
func (c *Camera) PixelSize() float64 {
	return c.pixelSize
}

// Transform returns the view transform
func (c *Camera) Transform() core.Matrix {
	return c.transform
}

// SetTransform sets the view transform. It panics if m is not invertible.
func (c *Camera) SetTransform(m core.Matrix) *Camera {
	c.transform = m
	c.inverse = m.Inverse()
	return c
}

// RayForPixel returns the world-space ray through the center of pixel (px, py)
func (c *Camera) RayForPixel(px, py int) core.Ray {
	xOffset := (float64(px) + 0.5) * c.pixelSize
	yOffset := (float64(py) + 0.5) * c.pixelSize

	// the canvas is at z = -1; +x is to the camera's left
	worldX := c.halfWidth - xOffset
	worldY := c.halfHeight - yOffset

	pixel := c.inverse.MultiplyTuple(core.Point(worldX, worldY, -1))
	origin := c.inverse.MultiplyTuple(core.Point(0, 0, 0))
	direction := pixel.Subtract(origin).Normalize()
	return core.NewRay(origin, direction)
}
