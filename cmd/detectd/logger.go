package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"detectd/internal/detector"
)

// newLogger builds the process logger. Unknown levels fall back to info.
func newLogger(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	lvl := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "off":
		lvl = zerolog.Disabled
	case "":
	default:
		if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = l
		}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("svc", "detectd").Logger()
}

// logPublisher writes detector events to the process log.
type logPublisher struct {
	log zerolog.Logger
}

func (p logPublisher) Publish(e detector.Event) {
	ev := p.log.Debug()
	switch e.Name {
	case "model_loaded", "closed":
		ev = p.log.Info()
	case "detect_failed", "drain_timeout":
		ev = p.log.Warn()
	}
	ev.Fields(e.Fields).Str("event", e.Name).Msg("detector")
}
