package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Turntable orbits the camera around the scene. Its angular velocity eases
// toward a target speed through a critically damped spring.
type Turntable struct {
	Angle    float64 // Current orbit angle in radians
	Velocity float64 // Radians per second
	fps      int
	spring   harmonica.Spring
	accel    float64 // spring velocity of Velocity
}

// NewTurntable creates a turntable at rest updated fps times per second
func NewTurntable(fps int) *Turntable {
	return &Turntable{
		fps:    fps,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances one frame, easing the velocity toward target
func (t *Turntable) Update(target float64) {
	t.Velocity, t.accel = t.spring.Update(t.Velocity, t.accel, target)
	t.Angle = math.Mod(t.Angle+t.Velocity/float64(t.fps), 2*math.Pi)
}

// Nudge adds an impulse to the angular velocity
func (t *Turntable) Nudge(delta float64) {
	t.Velocity += delta
}

// Moving reports whether the turntable still turns noticeably
func (t *Turntable) Moving() bool {
	return math.Abs(t.Velocity) > 1e-3
}

func newPreviewCmd() *cobra.Command {
	var flags renderFlags
	var spin bool
	var fps int
	var speed float64

	cmd := &cobra.Command{
		Use:   "preview [scene]",
		Short: "Render a scene into the terminal",
		Long: `Renders a scene with half-block characters, two pixels per terminal cell.

Keys: left/right nudge the camera, space toggles spinning, q or esc quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := "default"
			if len(args) > 0 {
				ref = args[0]
			}
			s, err := loadScene(ref, flags.scenesDir, core.DiscardLogger{})
			if err != nil {
				return err
			}
			flags.apply(s)
			if fps <= 0 {
				return fmt.Errorf("--fps must be positive")
			}
			return runPreview(cmd.Context(), s, previewOptions{spin: spin, fps: fps, speed: speed})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&spin, "spin", false, "orbit the camera around the scene")
	cmd.Flags().IntVar(&fps, "fps", 15, "frame rate while spinning")
	cmd.Flags().Float64Var(&speed, "speed", 0.6, "orbit speed in radians per second")
	return cmd
}

type previewOptions struct {
	spin  bool
	fps   int
	speed float64
}

// previewSize is the canvas size for a terminal of cols x rows cells
func previewSize(cols, rows int) (int, int) {
	return max(cols, 1), max(2*rows, 2)
}

func runPreview(ctx context.Context, s *scene.Scene, opts previewOptions) error {
	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type resize struct{ cols, rows int }
	resizes := make(chan resize, 1)
	nudges := make(chan float64, 8)
	toggles := make(chan struct{}, 1)

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				select {
				case resizes <- resize{ev.Width, ev.Height}:
				default:
				}
			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("q", "escape", "ctrl+c"):
					cancel()
					return
				case ev.MatchString("left", "a"):
					nudges <- -1
				case ev.MatchString("right", "d"):
					nudges <- 1
				case ev.MatchString("space"):
					select {
					case toggles <- struct{}{}:
					default:
					}
				}
			}
		}
	}()

	turntable := NewTurntable(opts.fps)
	spinning := opts.spin
	base := s.View
	dirty := true
	ticker := time.NewTicker(time.Second / time.Duration(opts.fps))
	defer ticker.Stop()

	for {
		if dirty {
			s.SetSize(previewSize(cols, rows))
			canvas, _, err := renderer.Render(ctx, s.World, s.CameraFor(base.Orbit(turntable.Angle)), s.Config, nil)
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				return fmt.Errorf("render frame: %w", err)
			}
			term.Draw(canvas)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
			dirty = false
		}

		select {
		case <-ctx.Done():
			return nil
		case r := <-resizes:
			cols, rows = r.cols, r.rows
			term.Erase()
			term.Resize(cols, rows)
			dirty = true
		case n := <-nudges:
			turntable.Nudge(n)
		case <-toggles:
			spinning = !spinning
		case <-ticker.C:
			target := 0.0
			if spinning {
				target = opts.speed
			}
			if spinning || turntable.Moving() {
				turntable.Update(target)
				dirty = true
			}
		}
	}
}
