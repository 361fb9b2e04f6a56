//go:build gocv

package detector

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// opencvBackend runs the frozen graph through the OpenCV DNN module. The
// network emits a [1,1,N,7] blob of (batch, class, score, left, top, right,
// bottom) rows with normalized coordinates.
type opencvBackend struct {
	net gocv.Net
}

func openOpenCV(cfg BackendConfig) (Backend, error) {
	net := gocv.ReadNet(cfg.GraphPath, cfg.GraphConfig)
	if net.Empty() {
		return nil, fmt.Errorf("opencv could not load graph %s", cfg.GraphPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		_ = net.Close()
		return nil, fmt.Errorf("set backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		_ = net.Close()
		return nil, fmt.Errorf("set target: %w", err)
	}
	return &opencvBackend{net: net}, nil
}

func (b *opencvBackend) Detect(ctx context.Context, f Frame) (RawOutput, error) {
	if err := ctx.Err(); err != nil {
		return RawOutput{}, err
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
	if err != nil {
		return RawOutput{}, fmt.Errorf("input mat: %w", err)
	}
	defer mat.Close()
	// Pix is already RGB, so no channel swap.
	blob := gocv.BlobFromImage(mat, 1.0, image.Pt(f.Width, f.Height), gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()
	b.net.SetInput(blob, "")
	res := b.net.Forward("")
	defer res.Close()
	if res.Empty() {
		return RawOutput{}, errors.New("empty network output")
	}

	var out RawOutput
	total := res.Total()
	for i := 0; i+6 < total; i += 7 {
		score := res.GetFloatAt(0, i+2)
		if score <= 0 {
			continue
		}
		left := res.GetFloatAt(0, i+3)
		top := res.GetFloatAt(0, i+4)
		right := res.GetFloatAt(0, i+5)
		bottom := res.GetFloatAt(0, i+6)
		out.Classes = append(out.Classes, int(res.GetFloatAt(0, i+1)))
		out.Scores = append(out.Scores, score)
		out.Boxes = append(out.Boxes, [4]float32{top, left, bottom, right})
	}
	out.NumDetections = len(out.Scores)
	return out, nil
}

func (b *opencvBackend) Close() error { return b.net.Close() }
