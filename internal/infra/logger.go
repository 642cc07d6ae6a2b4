package infra

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process-wide slog.Logger: JSON records to stdout
// and to a rotating file at the configured path, tagged with the app
// name. Falls back to stderr when the log directory cannot be created.
func NewLogger(cfg *Config) *slog.Logger {
	if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
	})
	return slog.New(handler).With(slog.String("app", cfg.App.Name))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
