package httpapi

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"detectd/internal/detector"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var defaultLogLevel = LevelInfo

// SetDefaultLogLevel sets the level used when a request carries no override.
func SetDefaultLogLevel(s string) {
	if strings.TrimSpace(s) == "" {
		defaultLogLevel = LevelInfo
		return
	}
	defaultLogLevel = parseLevel(s)
}

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logRequest writes one line per detection request. status 0 means the client
// went away before a response was written.
func logRequest(r *http.Request, status int, dur time.Duration, n int, err error) {
	lvl := requestLogLevel(r)
	if lvl == LevelOff || (err == nil && lvl < LevelInfo) {
		return
	}
	reqID := middleware.GetReqID(r.Context())
	if zlog != nil {
		var ev *zerolog.Event
		if err != nil {
			ev = zlog.Error().Err(err).Str("kind", detector.KindOf(err).String())
		} else {
			ev = zlog.Info()
		}
		ev.Str("request_id", reqID).
			Str("method", r.Method).
			Int("status", status).
			Int("detections", n).
			Dur("duration", dur).
			Msg("detect")
		return
	}
	if err != nil {
		log.Printf("detect %s id=%s status=%d dur=%s err=%v", r.Method, reqID, status, dur, err)
		return
	}
	log.Printf("detect %s id=%s status=%d detections=%d dur=%s", r.Method, reqID, status, n, dur)
}

// logDetections prints each detection when the request runs at debug level.
func logDetections(r *http.Request, dets []detector.Detection) {
	if requestLogLevel(r) < LevelDebug {
		return
	}
	reqID := middleware.GetReqID(r.Context())
	for i, d := range dets {
		if zlog != nil {
			zlog.Debug().
				Str("request_id", reqID).
				Int("n", i).
				Str("label", d.Label).
				Float32("score", d.Score).
				Float64("ymin", d.YMin).
				Float64("xmin", d.XMin).
				Float64("ymax", d.YMax).
				Float64("xmax", d.XMax).
				Msg("detection")
			continue
		}
		log.Printf("detection id=%s n=%d label=%s score=%g box=[%g %g %g %g]",
			reqID, i, d.Label, d.Score, d.YMin, d.XMin, d.YMax, d.XMax)
	}
}
