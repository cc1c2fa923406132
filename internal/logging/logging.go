// Package logging configures the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger. Output is JSON unless LOG_FORMAT=text,
// which selects the tint pretty handler for local development. debug lowers
// the level to Debug.
func Setup(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "text" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}
