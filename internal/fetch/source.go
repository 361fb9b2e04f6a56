package fetch

import (
	"context"
	"io"
)

// Source bundles both ways of acquiring an image.
type Source struct {
	Downloads *Downloader
	Uploads   *UploadStore
}

func (s *Source) FetchURL(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	f, err := s.Downloads.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Source) SaveUpload(filename string, r io.Reader) (io.ReadCloser, error) {
	f, err := s.Uploads.Save(filename, r)
	if err != nil {
		return nil, err
	}
	return f, nil
}
