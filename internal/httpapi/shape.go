package httpapi

import (
	"math"
	"strconv"

	"detectd/internal/detector"
	"detectd/pkg/types"
)

// scoredDetections shapes the URL variant: raw score as a string, float boxes.
func scoredDetections(dets []detector.Detection) []types.ScoredDetection {
	out := make([]types.ScoredDetection, 0, len(dets))
	for _, d := range dets {
		out = append(out, types.ScoredDetection{
			Label: d.Label,
			Score: strconv.FormatFloat(float64(d.Score), 'g', -1, 32),
			YMin:  d.YMin,
			XMin:  d.XMin,
			YMax:  d.YMax,
			XMax:  d.XMax,
		})
	}
	return out
}

// classifiedDetections shapes the upload variant: percentage confidence and
// whole-pixel boxes.
func classifiedDetections(dets []detector.Detection) []types.ClassifiedDetection {
	out := make([]types.ClassifiedDetection, 0, len(dets))
	for _, d := range dets {
		out = append(out, types.ClassifiedDetection{
			Label:      d.Label,
			Confidence: int(math.Round(float64(d.Score) * 100)),
			YMin:       int(d.YMin),
			XMin:       int(d.XMin),
			YMax:       int(d.YMax),
			XMax:       int(d.XMax),
		})
	}
	return out
}

// ClassifyResponse builds the POST / body for dets. The CLI prints the same
// shape for one-shot detection.
func ClassifyResponse(dets []detector.Detection) types.ClassifyResponse {
	return types.ClassifyResponse{Result: "success", Classified: classifiedDetections(dets)}
}
