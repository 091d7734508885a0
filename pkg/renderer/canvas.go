package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ppmLineLimit is the longest line a PPM writer may emit
const ppmLineLimit = 70

// Canvas is a grid of linear colors, row-major, origin at the top left
type Canvas struct {
	Width  int
	Height int
	pixels []core.Color
}

// NewCanvas creates a black canvas
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Width:  width,
		Height: height,
		pixels: make([]core.Color, width*height),
	}
}

// WritePixel stores c at (x, y). Writes outside the canvas are ignored.
func (cv *Canvas) WritePixel(x, y int, c core.Color) {
	if !cv.inside(x, y) {
		return
	}
	cv.pixels[y*cv.Width+x] = c
}

// PixelAt returns the color at (x, y), or black outside the canvas
func (cv *Canvas) PixelAt(x, y int) core.Color {
	if !cv.inside(x, y) {
		return core.Black
	}
	return cv.pixels[y*cv.Width+x]
}

func (cv *Canvas) inside(x, y int) bool {
	return x >= 0 && x < cv.Width && y >= 0 && y < cv.Height
}

// WritePPM encodes the canvas as a plain (P3) PPM
func (cv *Canvas) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", cv.Width, cv.Height); err != nil {
		return fmt.Errorf("write ppm header: %w", err)
	}

	var line strings.Builder
	flush := func() error {
		if line.Len() == 0 {
			return nil
		}
		line.WriteByte('\n')
		_, err := bw.WriteString(line.String())
		line.Reset()
		return err
	}
	emit := func(v uint8) error {
		s := strconv.Itoa(int(v))
		if line.Len() > 0 && line.Len()+1+len(s) > ppmLineLimit {
			if err := flush(); err != nil {
				return err
			}
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(s)
		return nil
	}

	for y := range cv.Height {
		for x := range cv.Width {
			r, g, b := cv.PixelAt(x, y).RGB8()
			for _, v := range [3]uint8{r, g, b} {
				if err := emit(v); err != nil {
					return fmt.Errorf("write ppm row %d: %w", y, err)
				}
			}
		}
		// each row starts a new line
		if err := flush(); err != nil {
			return fmt.Errorf("write ppm row %d: %w", y, err)
		}
	}
	return bw.Flush()
}

// ToPPM returns the canvas as PPM text
func (cv *Canvas) ToPPM() string {
	var sb strings.Builder
	_ = cv.WritePPM(&sb)
	return sb.String()
}

// ToImage converts the canvas to an 8-bit RGBA image, clamping each channel
func (cv *Canvas) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cv.Width, cv.Height))
	for y := range cv.Height {
		for x := range cv.Width {
			r, g, b := cv.PixelAt(x, y).RGB8()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// Draw renders the canvas into a terminal area using upper half blocks: each
// cell shows two vertically stacked pixels. The canvas is sampled
// nearest-neighbour to fit the area.
func (cv *Canvas) Draw(scr uv.Screen, area uv.Rectangle) {
	cols, rows := area.Dx(), area.Dy()
	if cols <= 0 || rows <= 0 || cv.Width == 0 || cv.Height == 0 {
		return
	}
	for row := range rows {
		for col := range cols {
			x := col * cv.Width / cols
			top := (2 * row) * cv.Height / (2 * rows)
			bottom := (2*row + 1) * cv.Height / (2 * rows)
			scr.SetCell(area.Min.X+col, area.Min.Y+row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cv.rgba(x, top),
					Bg: cv.rgba(x, bottom),
				},
			})
		}
	}
}

func (cv *Canvas) rgba(x, y int) color.RGBA {
	r, g, b := cv.PixelAt(x, y).RGB8()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
