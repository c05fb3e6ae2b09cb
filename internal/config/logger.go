package config

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds a slog.Logger writing JSON records to stderr, or, when
// rotation is enabled, to a lumberjack-rotated file (spec §4.11),
// grounded on atari's cmd/atari/logger.go SetupTUILogger.
func NewLogger(cfg LogRotationConfig, level string) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.Enabled {
		w = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch level {
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
