package fetch

import (
	"errors"
	"os"
)

// TempFile is an image on local disk opened for reading. Close removes it
// unless it was saved with keep set.
type TempFile struct {
	f    *os.File
	path string
	keep bool
}

func (t *TempFile) Read(p []byte) (int, error) { return t.f.Read(p) }

// Path returns the on-disk location.
func (t *TempFile) Path() string { return t.path }

func (t *TempFile) Close() error {
	err := t.f.Close()
	if t.keep {
		return err
	}
	if rmErr := os.Remove(t.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}

// reopen closes w and opens path again for reading, so callers decode what
// actually landed on disk.
func reopen(w *os.File, keep bool) (*TempFile, error) {
	path := w.Name()
	if err := w.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	r, err := os.Open(path)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return &TempFile{f: r, path: path, keep: keep}, nil
}

// discard closes and removes a partially written file.
func discard(w *os.File) {
	_ = w.Close()
	_ = os.Remove(w.Name())
}
