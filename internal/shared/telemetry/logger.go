package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, "info", "json")
	level  = "info"
	format = "json"
)

// Init configures the process-wide logger. Unknown levels fall back to info and
// unknown formats fall back to json.
func Init(lvl, outputFormat string) {
	mu.Lock()
	defer mu.Unlock()
	level, format = lvl, outputFormat
	logger = newLogger(os.Stdout, level, format)
}

// SetOutput redirects log lines to w, keeping the configured level and format.
// It returns a function restoring stdout.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, level, format)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		logger = newLogger(os.Stdout, level, format)
	}
}

// Debug writes a debug-level log line with the given fields.
func Debug(msg string, fields map[string]any) {
	write(slog.LevelDebug, msg, fields)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(slog.LevelInfo, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(slog.LevelWarn, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(slog.LevelError, msg, fields)
}

// Logger returns the underlying slog logger for libraries that want one.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func write(lvl slog.Level, msg string, fields map[string]any) {
	l := Logger()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok && err != nil {
			v = err.Error()
		}
		attrs = append(attrs, slog.Any(k, v))
	}
	l.LogAttrs(context.Background(), lvl, msg, attrs...)
}

func newLogger(w io.Writer, lvl, outputFormat string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(lvl),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(outputFormat), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
