package pkg

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Component identifies a subsystem for log filtering.
type Component string

// Driver component identifiers.
const (
	ComponentTWI      Component = "twi"      // master control plane and state machine
	ComponentHAL      Component = "hal"      // register-level peripheral events
	ComponentSim      Component = "sim"      // simulated bus faults
	ComponentClock    Component = "clock"    // system clock and prescaler
	ComponentRTC      Component = "rtc"      // DS1307 driver
	ComponentDateTime Component = "datetime" // calendar validation
	ComponentConfig   Component = "config"   // configuration loading
	ComponentShell    Component = "shell"    // interactive console
)

// LogFormat specifies the output format for logging.
type LogFormat int

// Log format options.
const (
	LogFormatText LogFormat = iota // Text format (default)
	LogFormatJSON                  // JSON format
)

var (
	// DefaultLogger is the default logger used by all driver packages.
	DefaultLogger *slog.Logger

	// logLevel is shared by DefaultLogger and by loggers created with nil
	// options, so SetLogLevel applies to all of them.
	logLevel = new(slog.LevelVar)

	logMutex sync.RWMutex
)

// Drivers are quiet by default: bus faults and per-transaction detail are
// debug, configuration is info.
func init() {
	logLevel.Set(slog.LevelWarn)
	DefaultLogger = NewLogger(os.Stderr, nil)
}

// SetLogLevel sets the minimum log level for all driver logging.
func SetLogLevel(level slog.Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logLevel.Set(level)
}

// GetLogLevel returns the current minimum log level.
func GetLogLevel() slog.Level {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return logLevel.Level()
}

// ParseLogLevel converts a level name (debug, info, warn, error) to a
// slog.Level. Unknown names return slog.LevelInfo and false.
func ParseLogLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// SetLogger replaces the default logger with a custom logger.
func SetLogger(logger *slog.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()
	DefaultLogger = logger
}

// SetLogFormat replaces the default logger with one writing the given
// format to os.Stderr at the package log level.
func SetLogFormat(format LogFormat) {
	var logger *slog.Logger
	if format == LogFormatJSON {
		logger = NewJSONLogger(os.Stderr, nil)
	} else {
		logger = NewLogger(os.Stderr, nil)
	}
	SetLogger(logger)
}

// NewLogger creates a text logger writing to w. With nil opts it follows
// the package log level.
func NewLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, withLevel(opts)))
}

// NewJSONLogger creates a JSON logger writing to w. With nil opts it
// follows the package log level.
func NewJSONLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, withLevel(opts)))
}

func withLevel(opts *slog.HandlerOptions) *slog.HandlerOptions {
	if opts == nil {
		return &slog.HandlerOptions{Level: logLevel}
	}
	return opts
}

func logger() *slog.Logger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return DefaultLogger
}

// LogEnabled reports whether a message at level would be written. The
// interrupt path checks it before building log attributes.
func LogEnabled(level slog.Level) bool {
	return logger().Enabled(context.Background(), level)
}

func logAt(level slog.Level, component Component, msg string, args []any) {
	l := logger()
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, msg, append([]any{"component", string(component)}, args...)...)
}

// LogDebug logs a debug message with the given component.
func LogDebug(component Component, msg string, args ...any) {
	logAt(slog.LevelDebug, component, msg, args)
}

// LogInfo logs an info message with the given component.
func LogInfo(component Component, msg string, args ...any) {
	logAt(slog.LevelInfo, component, msg, args)
}

// LogWarn logs a warning message with the given component.
func LogWarn(component Component, msg string, args ...any) {
	logAt(slog.LevelWarn, component, msg, args)
}

// LogError logs an error message with the given component.
func LogError(component Component, msg string, args ...any) {
	logAt(slog.LevelError, component, msg, args)
}
