package detector

import (
	"context"
	"fmt"

	"detectd/internal/common/fsutil"
)

// Backend names understood by OpenBackend.
const (
	BackendTensorflow = "tensorflow"
	BackendOpenCV     = "opencv"
)

// graphImportPrefix is the name scope the frozen graph is imported under.
const graphImportPrefix = "import"

// Backend runs the detection graph on one frame. Implementations need not be
// safe for concurrent use; the Detector serializes calls.
type Backend interface {
	Detect(ctx context.Context, f Frame) (RawOutput, error)
	Close() error
}

// BackendConfig selects and locates the inference runtime.
type BackendConfig struct {
	Name      string
	GraphPath string
	// GraphConfig is the optional text graph description used by OpenCV.
	GraphConfig string
}

// OpenBackend loads the frozen graph with the configured runtime.
func OpenBackend(cfg BackendConfig) (Backend, error) {
	p, err := fsutil.ExpandHome(cfg.GraphPath)
	if err != nil {
		return nil, err
	}
	if !fsutil.IsRegularFile(p) {
		return nil, fmt.Errorf("graph file not found: %s", cfg.GraphPath)
	}
	cfg.GraphPath = p
	if cfg.GraphConfig != "" {
		if cfg.GraphConfig, err = fsutil.ExpandHome(cfg.GraphConfig); err != nil {
			return nil, err
		}
	}
	switch cfg.Name {
	case "", BackendTensorflow:
		return openTensorflow(cfg)
	case BackendOpenCV:
		return openOpenCV(cfg)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Name)
	}
}
