package detector

// State represents the lifecycle state of the detector.
type State string

const (
	StateReady    State = "ready"
	StateDraining State = "draining"
	StateClosed   State = "closed"
)

// Frame is a decoded image ready to feed the graph.
type Frame struct {
	// Width and Height describe Pix, which may be downscaled.
	Width  int
	Height int
	// SourceWidth and SourceHeight are the dimensions of the image as
	// uploaded; boxes are always scaled against these.
	SourceWidth  int
	SourceHeight int
	// Pix holds Height*Width*3 bytes, row-major RGB.
	Pix    []uint8
	Format string
}

// RawOutput is what a Backend returns for a single image. Boxes are
// normalized [ymin, xmin, ymax, xmax] in the [0,1] range.
type RawOutput struct {
	NumDetections int
	Classes       []int
	Scores        []float32
	Boxes         [][4]float32
}

// Detection is one labelled object with its box in source image pixels.
type Detection struct {
	Class int
	Label string
	Score float32
	YMin  float64
	XMin  float64
	YMax  float64
	XMax  float64
}
