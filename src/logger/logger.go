package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, structured, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable logs to stdout/stderr.
// Used for normal operation and debugging.
type ConsoleLogger struct{}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	fmt.Printf("[INFO] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+msg+"\n", args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	fmt.Printf("[DEBUG] "+msg+"\n", args...)
}

// SilentLogger discards all log messages.
// Used in tests and when the report text is the only thing written to stdout.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

// SlogLogger adapts a *slog.Logger to Logger. Messages are formatted printf
// style before being handed to slog.
// Used by long-running services and the MCP server, which owns stdout.
type SlogLogger struct {
	log *slog.Logger
}

// NewSlogLogger writes text-formatted records at or above level to w.
func NewSlogLogger(w io.Writer, level slog.Level) *SlogLogger {
	return &SlogLogger{log: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

func (s *SlogLogger) Info(msg string, args ...interface{}) {
	s.emit(slog.LevelInfo, msg, args)
}

func (s *SlogLogger) Error(msg string, args ...interface{}) {
	s.emit(slog.LevelError, msg, args)
}

func (s *SlogLogger) Debug(msg string, args ...interface{}) {
	s.emit(slog.LevelDebug, msg, args)
}

func (s *SlogLogger) emit(level slog.Level, msg string, args []interface{}) {
	ctx := context.Background()
	if !s.log.Enabled(ctx, level) {
		return
	}
	s.log.Log(ctx, level, fmt.Sprintf(msg, args...))
}

// LevelFromString converts a string to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelInfo for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
