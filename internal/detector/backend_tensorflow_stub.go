//go:build !tensorflow

package detector

// Default builds carry no libtensorflow dependency. The real runtime lives in
// backend_tensorflow.go behind the 'tensorflow' build tag.

func openTensorflow(cfg BackendConfig) (Backend, error) {
	return nil, ErrDependencyUnavailable("tensorflow support not built (missing 'tensorflow' build tag)")
}
