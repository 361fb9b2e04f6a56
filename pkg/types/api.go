package types

// ScoredDetection is one element of the GET /?url= response.
type ScoredDetection struct {
	// Human-readable class label from the category map.
	// example: helmet
	Label string `json:"label" example:"helmet"`
	// Raw detection score formatted as a string.
	// example: 0.9734
	Score string `json:"score" example:"0.9734"`
	// Box top edge in source image pixels.
	// example: 12.5
	YMin float64 `json:"ymin" example:"12.5"`
	// Box left edge in source image pixels.
	// example: 40.25
	XMin float64 `json:"xmin" example:"40.25"`
	// Box bottom edge in source image pixels.
	// example: 210
	YMax float64 `json:"ymax" example:"210"`
	// Box right edge in source image pixels.
	// example: 188.75
	XMax float64 `json:"xmax" example:"188.75"`
}

// ClassifiedDetection is one element of the POST / response.
type ClassifiedDetection struct {
	// Human-readable class label from the category map.
	// example: no_vest
	Label string `json:"label" example:"no_vest"`
	// Score scaled to 0-100 and rounded.
	// example: 97
	Confidence int `json:"confidence" example:"97"`
	// example: 12
	YMin int `json:"ymin" example:"12"`
	// example: 40
	XMin int `json:"xmin" example:"40"`
	// example: 210
	YMax int `json:"ymax" example:"210"`
	// example: 188
	XMax int `json:"xmax" example:"188"`
}

// ClassifyResponse is returned by POST /.
type ClassifyResponse struct {
	// Always "success" on a 200 response.
	// example: success
	Result string `json:"result" example:"success"`
	// Detections in model output order.
	Classified []ClassifiedDetection `json:"classified"`
}

// LabelEntry is one row of the category map.
type LabelEntry struct {
	// example: 1
	Index string `json:"index" example:"1"`
	// example: helmet
	Label string `json:"label" example:"helmet"`
}

// LabelsResponse wraps the category map returned by GET /labels.
type LabelsResponse struct {
	Labels []LabelEntry `json:"labels"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Detector lifecycle state (ready, draining, closed).
	// example: ready
	State string `json:"state" example:"ready"`
	// Inference runtime in use.
	// example: tensorflow
	Backend string `json:"backend" example:"tensorflow"`
	// Path of the loaded frozen graph.
	// example: ./model/frozen_inference_graph.pb
	GraphPath string `json:"graph_path" example:"./model/frozen_inference_graph.pb"`
	// Number of entries in the category map.
	// example: 6
	Labels int `json:"labels" example:"6"`
	// Whether an inference is running right now.
	// example: false
	Busy bool `json:"busy" example:"false"`
	// Completed inferences since start.
	// example: 120
	InferencesTotal uint64 `json:"inferences_total" example:"120"`
	// Failed inferences since start.
	// example: 2
	FailuresTotal uint64 `json:"failures_total" example:"2"`
	// Last inference error, if any.
	LastError string `json:"last_error,omitempty"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
