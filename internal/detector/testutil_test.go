package detector

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"detectd/internal/labels"
)

// stubBackend returns a fixed output and records what it saw.
type stubBackend struct {
	mu     sync.Mutex
	out    RawOutput
	err    error
	delay  time.Duration
	frames []Frame
	closed bool

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (s *stubBackend) Detect(ctx context.Context, f Frame) (RawOutput, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		m := s.maxInflight.Load()
		if n <= m || s.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	s.frames = append(s.frames, f)
	s.mu.Unlock()
	if s.err != nil {
		return RawOutput{}, s.err
	}
	// hand out fresh slices so callers cannot alias each other
	out := RawOutput{NumDetections: s.out.NumDetections}
	out.Classes = append(out.Classes, s.out.Classes...)
	out.Scores = append(out.Scores, s.out.Scores...)
	out.Boxes = append(out.Boxes, s.out.Boxes...)
	return out, nil
}

func (s *stubBackend) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func testLabels(t *testing.T) labels.Map {
	t.Helper()
	m, err := labels.FromLines(
		[]string{"glove", "helmet", "vest", "no_glove", "no_helmet", "no_vest"},
		[]string{"1", "2", "3", "4", "5", "6"},
	)
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	return m
}

// pngImage encodes a w x h PNG filled with c.
func pngImage(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// writeModelFiles creates a graph file plus a label/index pair in a temp dir.
func writeModelFiles(t *testing.T, labelsText, indexesText string) (graph, lp, ip string) {
	t.Helper()
	dir := t.TempDir()
	graph = filepath.Join(dir, "frozen_inference_graph.pb")
	lp = filepath.Join(dir, "labels")
	ip = filepath.Join(dir, "label_indexes")
	for p, content := range map[string]string{graph: "not a real graph", lp: labelsText, ip: indexesText} {
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return graph, lp, ip
}
