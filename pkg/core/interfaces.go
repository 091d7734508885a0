package core

// Logger is the logging sink used by the renderer, loaders and scene builders.
// The tracing core itself never logs.
type Logger interface {
	Printf(format string, args ...any)
}

// DiscardLogger drops every message
type DiscardLogger struct{}

func (DiscardLogger) Printf(string, ...any) {}
