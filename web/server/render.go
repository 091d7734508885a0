package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene    string `json:"scene"`    // Built-in id or "script:<name>"
	Width    int    `json:"width"`    // Image width
	Height   int    `json:"height"`   // Image height
	MaxDepth int    `json:"maxDepth"` // Reflection/refraction bounce budget
}

// RenderResult is the final event of a streamed render
type RenderResult struct {
	RenderID  string `json:"renderId"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels     int     `json:"totalPixels"`
	PrimaryRays     int     `json:"primaryRays"`
	Tiles           int     `json:"tiles"`
	Workers         int     `json:"workers"`
	PixelsPerSecond float64 `json:"pixelsPerSecond"`
}

// handleRender renders a scene and streams log lines followed by the image
// as server-sent events
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	renderID := uuid.NewString()
	consoleChan := make(chan ConsoleMessage, 64)
	logger := NewWebLogger(renderID, consoleChan, s.logger)

	type outcome struct {
		canvas *renderer.Canvas
		stats  renderer.RenderStats
		err    error
	}
	done := make(chan outcome, 1)
	startTime := time.Now()

	go func() {
		sc, err := s.prepareScene(req, logger)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		canvas, stats, err := sc.Render(r.Context(), logger)
		done <- outcome{canvas, stats, err}
	}()

	for {
		select {
		case msg := <-consoleChan:
			if err := s.sendSSEJSON(w, "console", msg); err != nil {
				return
			}
		case res := <-done:
			// Drain what the render logged before it finished
			for drained := false; !drained; {
				select {
				case msg := <-consoleChan:
					s.sendSSEJSON(w, "console", msg)
				default:
					drained = true
				}
			}
			if res.err != nil {
				s.sendSSEError(w, fmt.Sprintf("Render error: %v", res.err))
				return
			}
			imageData, err := imageToBase64PNG(res.canvas.ToImage())
			if err != nil {
				s.sendSSEError(w, fmt.Sprintf("failed to encode image: %v", err))
				return
			}
			s.sendSSEJSON(w, "result", RenderResult{
				RenderID:  renderID,
				ImageData: imageData,
				Stats:     toStats(res.stats),
				ElapsedMs: time.Since(startTime).Milliseconds(),
			})
			s.sendSSEEvent(w, "complete", "Rendering completed")
			return
		}
	}
}

// handleImage renders a scene and responds with the PNG
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	sc, err := s.prepareScene(req, s.logger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	canvas, _, err := sc.Render(r.Context(), s.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas.ToImage()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// prepareScene loads the requested scene and applies the request's size and depth
func (s *Server) prepareScene(req *RenderRequest, logger core.Logger) (*scene.Scene, error) {
	sc, err := s.loadScene(req.Scene, logger)
	if err != nil {
		return nil, err
	}
	sc.SetSize(req.Width, req.Height)
	if req.MaxDepth >= 0 {
		sc.Config.MaxDepth = req.MaxDepth
	}
	return sc, nil
}

// parseRenderRequest parses request parameters. Zero width or height keeps
// the scene's own size; a negative depth keeps the scene's bounce budget.
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, maxImageSize); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", -1, 0, maxDepth); err != nil {
		return nil, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func toStats(rs renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:     rs.TotalPixels,
		PrimaryRays:     rs.PrimaryRays,
		Tiles:           rs.Tiles,
		Workers:         rs.Workers,
		PixelsPerSecond: rs.PixelsPerSecond(),
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEJSON sends v as the JSON payload of an SSE event
func (s *Server) sendSSEJSON(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(w, event, string(data))
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
