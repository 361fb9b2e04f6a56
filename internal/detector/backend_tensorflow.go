//go:build tensorflow

package detector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	tf "github.com/wamuir/graft/tensorflow"
)

// tensorflowBackend runs an Object Detection API frozen graph in-process.
type tensorflowBackend struct {
	graph   *tf.Graph
	sess    *tf.Session
	input   tf.Output
	outputs []tf.Output // num_detections, detection_boxes, detection_scores, detection_classes
}

func openTensorflow(cfg BackendConfig) (Backend, error) {
	def, err := os.ReadFile(cfg.GraphPath)
	if err != nil {
		return nil, err
	}
	g := tf.NewGraph()
	if err := g.Import(def, graphImportPrefix); err != nil {
		return nil, fmt.Errorf("import graph %s: %w", cfg.GraphPath, err)
	}
	lookup := func(name string) (tf.Output, error) {
		op := g.Operation(graphImportPrefix + "/" + name)
		if op == nil {
			return tf.Output{}, fmt.Errorf("graph %s has no %q operation", cfg.GraphPath, name)
		}
		return op.Output(0), nil
	}
	b := &tensorflowBackend{graph: g}
	if b.input, err = lookup("image_tensor"); err != nil {
		return nil, err
	}
	for _, name := range []string{"num_detections", "detection_boxes", "detection_scores", "detection_classes"} {
		out, err := lookup(name)
		if err != nil {
			return nil, err
		}
		b.outputs = append(b.outputs, out)
	}
	if b.sess, err = tf.NewSession(g, nil); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	return b, nil
}

func (b *tensorflowBackend) Detect(ctx context.Context, f Frame) (RawOutput, error) {
	if err := ctx.Err(); err != nil {
		return RawOutput{}, err
	}
	in, err := tf.ReadTensor(tf.Uint8, []int64{1, int64(f.Height), int64(f.Width), 3}, bytes.NewReader(f.Pix))
	if err != nil {
		return RawOutput{}, fmt.Errorf("input tensor: %w", err)
	}
	res, err := b.sess.Run(map[tf.Output]*tf.Tensor{b.input: in}, b.outputs, nil)
	if err != nil {
		return RawOutput{}, err
	}
	num, ok1 := res[0].Value().([]float32)
	boxes, ok2 := res[1].Value().([][][]float32)
	scores, ok3 := res[2].Value().([][]float32)
	classes, ok4 := res[3].Value().([][]float32)
	if !ok1 || !ok2 || !ok3 || !ok4 || len(num) == 0 || len(boxes) == 0 || len(scores) == 0 || len(classes) == 0 {
		return RawOutput{}, errors.New("unexpected detection output shapes")
	}
	out := RawOutput{NumDetections: int(num[0])}
	for i := range scores[0] {
		out.Scores = append(out.Scores, scores[0][i])
		out.Classes = append(out.Classes, int(classes[0][i]))
		var box [4]float32
		copy(box[:], boxes[0][i])
		out.Boxes = append(out.Boxes, box)
	}
	return out, nil
}

func (b *tensorflowBackend) Close() error {
	if b.sess == nil {
		return nil
	}
	err := b.sess.Close()
	b.sess = nil
	return err
}
