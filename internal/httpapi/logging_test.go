package httpapi

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"detectd/internal/detector"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"INFO":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("short query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/", nil)
	if got := requestLogLevel(r); got != defaultLogLevel {
		t.Fatalf("default level not used: %v", got)
	}
}

func TestSetDefaultLogLevel(t *testing.T) {
	defer SetDefaultLogLevel("")
	SetDefaultLogLevel("error")
	if defaultLogLevel != LevelError {
		t.Fatalf("level=%v", defaultLogLevel)
	}
	SetDefaultLogLevel("")
	if defaultLogLevel != LevelInfo {
		t.Fatalf("empty should reset to info, got %v", defaultLogLevel)
	}
}

func withBufferLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := zlog
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	t.Cleanup(func() { zlog = old })
	return &buf
}

func TestLogDetections_DebugOnly(t *testing.T) {
	buf := withBufferLogger(t)
	dets := []detector.Detection{{Label: "helmet", Score: 0.9}, {Label: "vest", Score: 0.4}}

	logDetections(httptest.NewRequest("GET", "/", nil), dets)
	if buf.Len() != 0 {
		t.Fatalf("info level should not print detections: %q", buf.String())
	}

	logDetections(httptest.NewRequest("GET", "/?log=debug", nil), dets)
	out := buf.String()
	if strings.Count(out, `"message":"detection"`) != 2 {
		t.Fatalf("want one line per detection, got %q", out)
	}
	if !strings.Contains(out, `"label":"vest"`) {
		t.Fatalf("missing label: %q", out)
	}
}

func TestLogRequest_ErrorCarriesKind(t *testing.T) {
	buf := withBufferLogger(t)
	err := detector.Wrap(detector.KindFetch, "fetch", errors.New("dial tcp: refused"))
	logRequest(httptest.NewRequest("GET", "/", nil), 500, time.Millisecond, 0, err)
	out := buf.String()
	if !strings.Contains(out, `"kind":"fetch"`) || !strings.Contains(out, `"status":500`) {
		t.Fatalf("unexpected log: %q", out)
	}
}

func TestLogRequest_Off(t *testing.T) {
	buf := withBufferLogger(t)
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Log-Level", "off")
	logRequest(r, 500, time.Millisecond, 0, errors.New("x"))
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
