package detector

import (
	"fmt"

	"detectd/internal/labels"
)

// Postprocess maps class ids to labels and scales normalized boxes to pixel
// offsets in a width x height image. Output order follows the backend order.
// Detections scoring below minScore are dropped.
func Postprocess(raw RawOutput, lm labels.Map, width, height int, minScore float32) ([]Detection, error) {
	n := raw.NumDetections
	if n < 0 || n > len(raw.Scores) || n > len(raw.Classes) || n > len(raw.Boxes) {
		return nil, fmt.Errorf("inconsistent graph output: %d detections, %d scores, %d classes, %d boxes",
			n, len(raw.Scores), len(raw.Classes), len(raw.Boxes))
	}
	w, h := float64(width), float64(height)
	out := make([]Detection, 0, n)
	for i := 0; i < n; i++ {
		if raw.Scores[i] < minScore {
			continue
		}
		label, ok := lm.Label(raw.Classes[i])
		if !ok {
			return nil, fmt.Errorf("unknown class index %d", raw.Classes[i])
		}
		box := raw.Boxes[i]
		out = append(out, Detection{
			Class: raw.Classes[i],
			Label: label,
			Score: raw.Scores[i],
			YMin:  float64(box[0]) * h,
			XMin:  float64(box[1]) * w,
			YMax:  float64(box[2]) * h,
			XMax:  float64(box[3]) * w,
		})
	}
	return out, nil
}
