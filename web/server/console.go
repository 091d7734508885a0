package server

import (
	"fmt"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ConsoleMessage is one log line of a render, streamed to the browser
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
// and to the server log
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	base        core.Logger
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, base core.Logger) core.Logger {
	if base == nil {
		base = core.DiscardLogger{}
	}
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		base:        base,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	wl.base.Printf("[%s] %s", wl.renderID, message)

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     "info",
	}:
	default:
		// Channel full, skip (don't block)
	}
}
