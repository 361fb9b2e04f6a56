package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"detectd/internal/labels"
)

const defaultDrainTimeout = 10 * time.Second

// Config holds everything needed to construct a Detector around an already
// opened Backend.
type Config struct {
	Backend     Backend
	BackendName string
	GraphPath   string
	Labels      labels.Map
	// MinScore drops detections below this score (0 keeps all).
	MinScore float32
	// MaxInputSide downscales larger images before inference (0 disables).
	MaxInputSide int
	DrainTimeout time.Duration
	Publisher    EventPublisher
}

// Detector owns the loaded graph and the category map. Backend access is
// serialized through a single slot; everything else is per request.
type Detector struct {
	mu        sync.RWMutex
	state     State
	lastErr   string
	startTime time.Time

	backend      Backend
	backendName  string
	graphPath    string
	labels       labels.Map
	minScore     float32
	maxInputSide int
	drainTimeout time.Duration
	publisher    EventPublisher

	slot    chan struct{} // size 1: single in-flight inference
	closing chan struct{}

	inferences atomic.Uint64
	failures   atomic.Uint64
}

// NewWithConfig constructs a ready Detector.
func NewWithConfig(cfg Config) *Detector {
	d := &Detector{
		state:        StateReady,
		startTime:    time.Now(),
		backend:      cfg.Backend,
		backendName:  cfg.BackendName,
		graphPath:    cfg.GraphPath,
		labels:       cfg.Labels,
		minScore:     cfg.MinScore,
		maxInputSide: cfg.MaxInputSide,
		drainTimeout: cfg.DrainTimeout,
		publisher:    cfg.Publisher,
		slot:         make(chan struct{}, 1),
		closing:      make(chan struct{}),
	}
	if d.drainTimeout <= 0 {
		d.drainTimeout = defaultDrainTimeout
	}
	if d.publisher == nil {
		d.publisher = noopPublisher{}
	}
	if d.backendName == "" {
		d.backendName = BackendTensorflow
	}
	return d
}

// LoadConfig describes the on-disk model: graph plus label/index pair.
type LoadConfig struct {
	Backend      BackendConfig
	LabelsPath   string
	IndexesPath  string
	MinScore     float32
	MaxInputSide int
	Publisher    EventPublisher
}

// Load reads the category map and opens the graph. Either failing is fatal to
// startup; there is no retry.
func Load(cfg LoadConfig) (*Detector, error) {
	lm, err := labels.Load(cfg.LabelsPath, cfg.IndexesPath)
	if err != nil {
		return nil, fmt.Errorf("load category map: %w", err)
	}
	be, err := OpenBackend(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	d := NewWithConfig(Config{
		Backend:      be,
		BackendName:  cfg.Backend.Name,
		GraphPath:    cfg.Backend.GraphPath,
		Labels:       lm,
		MinScore:     cfg.MinScore,
		MaxInputSide: cfg.MaxInputSide,
		Publisher:    cfg.Publisher,
	})
	d.publisher.Publish(Event{Name: "model_loaded", Fields: map[string]any{
		"backend": d.backendName,
		"graph":   d.graphPath,
		"labels":  lm.Len(),
	}})
	return d, nil
}

// Detect decodes the image read from r, runs the graph and returns the
// labelled detections scaled to the source image size.
func (d *Detector) Detect(ctx context.Context, r io.Reader) ([]Detection, error) {
	dets, err := d.detect(ctx, r)
	if err != nil {
		d.recordFailure(err)
		return nil, err
	}
	d.inferences.Add(1)
	for _, det := range dets {
		detectionsTotal.WithLabelValues(det.Label).Inc()
	}
	d.publisher.Publish(Event{Name: "detect_done", Fields: map[string]any{"detections": len(dets)}})
	return dets, nil
}

func (d *Detector) detect(ctx context.Context, r io.Reader) ([]Detection, error) {
	if !d.Ready() {
		return nil, ErrDependencyUnavailable("detector is not accepting requests")
	}
	frame, err := DecodeImage(r, d.maxInputSide)
	if err != nil {
		return nil, Wrap(KindDecode, "", err)
	}
	release, err := d.acquire(ctx)
	if err != nil {
		return nil, Wrap(KindInference, "wait for graph", err)
	}
	start := time.Now()
	raw, err := d.backend.Detect(ctx, frame)
	release()
	inferenceDuration.WithLabelValues(d.backendName).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, Wrap(KindInference, "run graph", err)
	}
	dets, err := Postprocess(raw, d.labels, frame.SourceWidth, frame.SourceHeight, d.minScore)
	if err != nil {
		return nil, Wrap(KindInference, "postprocess", err)
	}
	return dets, nil
}

func (d *Detector) recordFailure(err error) {
	d.failures.Add(1)
	failuresTotal.WithLabelValues(KindOf(err).String()).Inc()
	d.mu.Lock()
	d.lastErr = err.Error()
	d.mu.Unlock()
	d.publisher.Publish(Event{Name: "detect_failed", Fields: map[string]any{
		"kind":  KindOf(err).String(),
		"error": err.Error(),
	}})
}

// Labels exposes the read-only category map.
func (d *Detector) Labels() labels.Map { return d.labels }

// Ready reports whether the detector accepts new requests.
func (d *Detector) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state == StateReady
}

// ErrDrainTimeout is returned by Close when an inference outlived the drain
// timeout. The backend is left open since it is still in use.
var ErrDrainTimeout = errors.New("detector: drain timed out, backend left open")

// Close stops accepting work, waits up to the drain timeout for the running
// inference, then releases the backend.
func (d *Detector) Close() error {
	d.mu.Lock()
	if d.state != StateReady {
		d.mu.Unlock()
		return nil
	}
	d.state = StateDraining
	close(d.closing)
	d.mu.Unlock()

	timer := time.NewTimer(d.drainTimeout)
	defer timer.Stop()
	var err error
	select {
	case d.slot <- struct{}{}:
		// slot stays held: no inference may start after this point
		if d.backend != nil {
			err = d.backend.Close()
		}
	case <-timer.C:
		d.publisher.Publish(Event{Name: "drain_timeout", Fields: map[string]any{}})
		err = ErrDrainTimeout
	}
	d.mu.Lock()
	d.state = StateClosed
	d.mu.Unlock()
	d.publisher.Publish(Event{Name: "closed", Fields: map[string]any{}})
	return err
}
