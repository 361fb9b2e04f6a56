package fetch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"detectd/internal/common/fsutil"
)

// UploadStore saves multipart uploads under Dir.
type UploadStore struct {
	Dir      string
	Keep     bool
	MaxBytes int64
}

// NewUploadStore creates dir if needed.
func NewUploadStore(dir string, keep bool, maxBytes int64) (*UploadStore, error) {
	abs, err := fsutil.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &UploadStore{Dir: abs, Keep: keep, MaxBytes: maxBytes}, nil
}

// Save writes src to a uniquely named file derived from filename and returns
// it reopened for reading.
func (s *UploadStore) Save(filename string, src io.Reader) (*TempFile, error) {
	name := fsutil.SecureFilename(filename)
	if name == "" {
		name = "upload"
	}
	path := filepath.Join(s.Dir, uuid.NewString()+"-"+name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	max := s.MaxBytes
	if max <= 0 {
		max = defaultMaxBytes
	}
	n, err := io.Copy(f, io.LimitReader(src, max+1))
	if err != nil {
		discard(f)
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if n > max {
		discard(f)
		return nil, fmt.Errorf("save upload: file exceeds %d bytes", max)
	}
	if n == 0 {
		discard(f)
		return nil, errors.New("save upload: empty file")
	}
	return reopen(f, s.Keep)
}
