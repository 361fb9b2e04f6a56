package e2e

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"detectd/internal/detector"
	"detectd/internal/fetch"
	"detectd/internal/httpapi"
	"detectd/internal/labels"
)

// fixedBackend always reports the same detections, after an optional delay.
type fixedBackend struct {
	out   detector.RawOutput
	delay time.Duration
}

func (b fixedBackend) Detect(ctx context.Context, f detector.Frame) (detector.RawOutput, error) {
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return detector.RawOutput{}, ctx.Err()
		}
	}
	out := detector.RawOutput{NumDetections: b.out.NumDetections}
	out.Classes = append(out.Classes, b.out.Classes...)
	out.Scores = append(out.Scores, b.out.Scores...)
	out.Boxes = append(out.Boxes, b.out.Boxes...)
	return out, nil
}

func (fixedBackend) Close() error { return nil }

// ppeOutput is three detections in graph order: helmet, no_vest, glove.
func ppeOutput() detector.RawOutput {
	return detector.RawOutput{
		NumDetections: 3,
		Classes:       []int{2, 6, 1},
		Scores:        []float32{0.96875, 0.5, 0.25},
		Boxes: [][4]float32{
			{0.1, 0.2, 0.5, 0.6},
			{0.25, 0.5, 0.75, 1},
			{0, 0, 1, 1},
		},
	}
}

func ppeLabels(t *testing.T) labels.Map {
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

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

type testEnv struct {
	api       *httptest.Server
	images    *httptest.Server
	det       *detector.Detector
	uploadDir string
	tempDir   string
}

func newTestEnv(t *testing.T, be detector.Backend, img []byte) *testEnv {
	t.Helper()
	env := &testEnv{uploadDir: t.TempDir(), tempDir: t.TempDir()}
	env.det = detector.NewWithConfig(detector.Config{
		Backend:     be,
		BackendName: "stub",
		Labels:      ppeLabels(t),
	})
	t.Cleanup(func() { _ = env.det.Close() })

	uploads, err := fetch.NewUploadStore(env.uploadDir, false, 0)
	if err != nil {
		t.Fatalf("upload store: %v", err)
	}
	src := &fetch.Source{
		Downloads: fetch.NewDownloader(env.tempDir, 5*time.Second, 0),
		Uploads:   uploads,
	}
	env.api = httptest.NewServer(httpapi.NewMux(env.det, src))
	t.Cleanup(env.api.Close)

	env.images = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/site.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(img)
		case "/notanimage.txt":
			_, _ = w.Write([]byte("hello"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(env.images.Close)
	return env
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func postUpload(t *testing.T, url, field, name string, data []byte) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write(data)
	_ = mw.Close()
	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	return len(ents)
}
