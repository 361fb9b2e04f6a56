//go:build !gocv

package detector

func openOpenCV(cfg BackendConfig) (Backend, error) {
	return nil, ErrDependencyUnavailable("opencv support not built (missing 'gocv' build tag)")
}
