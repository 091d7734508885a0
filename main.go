package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
	"github.com/df07/go-whitted-raytracer/web/server"
)

// defaultScenesDir holds the example scene scripts
const defaultScenesDir = "scenes"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		os.Exit(1)
	}
}

// renderFlags overrides a scene's render config. Zero values keep the scene's
// own settings.
type renderFlags struct {
	width, height int
	fov           float64
	depth         int
	workers       int
	tileSize      int
	scenesDir     string
	quiet         bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 0, "image width in pixels (default: scene setting)")
	cmd.Flags().IntVar(&f.height, "height", 0, "image height in pixels (default: scene setting)")
	cmd.Flags().Float64Var(&f.fov, "fov", 0, "field of view in radians (default: scene setting)")
	cmd.Flags().IntVar(&f.depth, "depth", -1, "reflection/refraction bounce budget (default: scene setting)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel workers (default: CPU count)")
	cmd.Flags().IntVar(&f.tileSize, "tile-size", 0, "tile size in pixels (default: 32)")
	cmd.Flags().StringVar(&f.scenesDir, "scenes-dir", defaultScenesDir, "directory searched for scene scripts")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "suppress progress output")
}

func (f *renderFlags) apply(s *scene.Scene) {
	s.SetSize(f.width, f.height)
	if f.fov > 0 {
		s.Config.FieldOfView = f.fov
	}
	if f.depth >= 0 {
		s.Config.MaxDepth = f.depth
	}
	if f.workers > 0 {
		s.Config.NumWorkers = f.workers
	}
	if f.tileSize > 0 {
		s.Config.TileSize = f.tileSize
	}
}

func (f *renderFlags) logger() core.Logger {
	if f.quiet {
		return core.DiscardLogger{}
	}
	return renderer.NewDefaultLogger()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "raytracer",
		Short: "Whitted-style recursive ray tracer",
		Long: `Renders scenes of spheres, planes, cubes, cylinders, cones, triangles, groups
and CSG solids with Phong shading, shadows, reflection and refraction.

Scenes are either built in (see "raytracer scenes") or described by Lisp
scene scripts (*.zy).`,
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd(), newPreviewCmd(), newScenesCmd(), newServeCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	var flags renderFlags
	var output string

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a scene to a PNG or PPM file",
		Example: `  raytracer render glass --width 800 --height 450
  raytracer render scenes/csg-dice.zy -o dice.ppm`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := "default"
			if len(args) > 0 {
				ref = args[0]
			}
			logger := flags.logger()

			s, err := loadScene(ref, flags.scenesDir, logger)
			if err != nil {
				return err
			}
			flags.apply(s)

			if output == "" {
				outputDir := createOutputDir(ref)
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
				output = filepath.Join(outputDir, fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
			}

			logger.Printf("Rendering %s (%d shapes)...\n", s.Name, s.GetShapeCount())
			canvas, _, err := s.Render(cmd.Context(), logger)
			if err != nil {
				return fmt.Errorf("render %s: %w", s.Name, err)
			}
			if err := writeImage(output, canvas); err != nil {
				return err
			}
			logger.Printf("Render saved as %s\n", output)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, .png or .ppm (default: output/<scene>/render_<timestamp>.png)")
	return cmd
}

func newScenesCmd() *cobra.Command {
	var scenesDir string

	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List built-in scenes and scene scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := scene.ListAllScenes(scenesDir, renderer.NewDefaultLogger())
			if err != nil {
				return err
			}
			return printScenes(cmd.OutOrStdout(), groups)
		},
	}
	cmd.Flags().StringVar(&scenesDir, "scenes-dir", defaultScenesDir, "directory searched for scene scripts")
	return cmd
}

func newServeCmd() *cobra.Command {
	var port int
	var scenesDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scene listings, renders and pixel inspection over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.NewServer(port, scenesDir, renderer.NewDefaultLogger())
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to serve on")
	cmd.Flags().StringVar(&scenesDir, "scenes-dir", defaultScenesDir, "directory searched for scene scripts")
	return cmd
}

func printScenes(w io.Writer, groups []scene.SceneGroup) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s:\n", g.Name)
		for _, s := range g.Scenes {
			ref := s.ID
			if s.Type == "script" {
				ref = s.FilePath
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", ref, s.DisplayName, s.Description)
		}
	}
	return tw.Flush()
}

// loadScene resolves ref as a built-in id, a script path, or the name of a
// script in scenesDir
func loadScene(ref, scenesDir string, logger core.Logger) (*scene.Scene, error) {
	if ref == "" {
		return nil, fmt.Errorf("no scene given")
	}
	if strings.HasSuffix(ref, scene.ScriptExt) {
		return scene.LoadFile(ref, logger)
	}
	if s, err := scene.NewBuiltin(ref); err == nil {
		return s, nil
	}

	path := filepath.Join(scenesDir, ref+scene.ScriptExt)
	if _, err := os.Stat(path); err == nil {
		return scene.LoadFile(path, logger)
	}
	return nil, fmt.Errorf("unknown scene %q: not a built-in and no %s", ref, path)
}

// createOutputDir names the output directory for a scene reference
func createOutputDir(ref string) string {
	base := filepath.Base(ref)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join("output", base)
}

// writeImage saves the canvas as PPM when path ends in .ppm and PNG otherwise
func writeImage(path string, canvas *renderer.Canvas) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		err = canvas.WritePPM(file)
	} else {
		err = png.Encode(file, canvas.ToImage())
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
