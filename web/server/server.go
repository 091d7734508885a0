// Package server exposes scene listing, rendering and pixel inspection over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Request limits
const (
	maxImageSize = 2000
	maxDepth     = 20
)

// Server handles web requests for the ray tracer
type Server struct {
	port      int
	scenesDir string
	logger    core.Logger
}

// NewServer creates a new web server that loads scene scripts from scenesDir
func NewServer(port int, scenesDir string, logger core.Logger) *Server {
	if logger == nil {
		logger = core.DiscardLogger{}
	}
	return &Server{port: port, scenesDir: scenesDir, logger: logger}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/image", s.handleImage)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Printf("Starting web server on http://localhost%s\n", srv.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and the scripts in the scenes directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	groups, err := scene.ListAllScenes(s.scenesDir, s.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleSceneConfig returns a scene's render settings and camera
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}
	sc, err := s.loadScene(sceneName, s.logger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scene":  sc.Name,
		"shapes": sc.GetShapeCount(),
		"defaults": map[string]any{
			"width":       sc.Config.Width,
			"height":      sc.Config.Height,
			"maxDepth":    sc.Config.MaxDepth,
			"fieldOfView": sc.Config.FieldOfView,
		},
		"camera": map[string]any{
			"from": tuple3(sc.View.From),
			"to":   tuple3(sc.View.To),
			"up":   tuple3(sc.View.Up),
		},
		"limits": map[string]any{
			"width":    map[string]int{"min": 1, "max": maxImageSize},
			"height":   map[string]int{"min": 1, "max": maxImageSize},
			"maxDepth": map[string]int{"min": 0, "max": maxDepth},
		},
	})
}

// loadScene resolves a scene id from the listing: a built-in id, or
// "script:<name>" for <name>.zy in the scenes directory
func (s *Server) loadScene(id string, logger core.Logger) (*scene.Scene, error) {
	if name, ok := strings.CutPrefix(id, "script:"); ok {
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			return nil, fmt.Errorf("invalid script name %q", name)
		}
		return scene.LoadFile(filepath.Join(s.scenesDir, name+scene.ScriptExt), logger)
	}
	return scene.NewBuiltin(id)
}

func tuple3(t core.Tuple) [3]float64 {
	return [3]float64{t.X, t.Y, t.Z}
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 instead of an empty 200
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

