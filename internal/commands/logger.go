package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/xiaolu2333/watchlist/internal/config"
)

// NewLogger builds the process logger: a charm console handler on console,
// plus a JSON handler on jsonOut when the log format is json.
func NewLogger(console, jsonOut io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	handlers := []slog.Handler{
		log.NewWithOptions(console, log.Options{ReportTimestamp: true, Level: level}),
	}
	if strings.EqualFold(cfg.Format, "json") {
		// charm levels share slog's numeric values.
		opts := &slog.HandlerOptions{Level: slog.Level(level)}
		handlers = append(handlers, slog.NewJSONHandler(jsonOut, opts))
	}

	return slog.New(slog.NewMultiHandler(handlers...)), nil
}
