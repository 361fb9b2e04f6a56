package detector

import "github.com/prometheus/client_golang/prometheus"

var (
	inferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "detectd",
			Subsystem: "detector",
			Name:      "inference_duration_seconds",
			Help:      "Time spent running the detection graph",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	detectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "detectd",
			Subsystem: "detector",
			Name:      "detections_total",
			Help:      "Objects returned to clients, by label",
		},
		[]string{"label"},
	)

	failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "detectd",
			Subsystem: "detector",
			Name:      "failures_total",
			Help:      "Failed detections, by error kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(inferenceDuration, detectionsTotal, failuresTotal)
}
