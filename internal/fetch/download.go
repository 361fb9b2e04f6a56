package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultMaxBytes int64 = 32 << 20

// Downloader fetches remote images into scoped temporary files.
type Downloader struct {
	Client   *http.Client
	Dir      string // "" uses os.TempDir()
	MaxBytes int64
}

// NewDownloader returns a Downloader with its own client and timeout.
func NewDownloader(dir string, timeout time.Duration, maxBytes int64) *Downloader {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Downloader{
		Client:   &http.Client{Timeout: timeout},
		Dir:      dir,
		MaxBytes: maxBytes,
	}
}

// Fetch downloads rawURL into a temporary file. The caller must Close the
// result, which also deletes the file.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) (*TempFile, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("missing url parameter")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", u.Redacted(), resp.Status)
	}

	f, err := os.CreateTemp(d.Dir, "detectd-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	max := d.MaxBytes
	if max <= 0 {
		max = defaultMaxBytes
	}
	n, err := io.Copy(f, io.LimitReader(resp.Body, max+1))
	if err != nil {
		discard(f)
		return nil, fmt.Errorf("download %s: %w", u.Redacted(), err)
	}
	if n > max {
		discard(f)
		return nil, fmt.Errorf("download %s: image exceeds %d bytes", u.Redacted(), max)
	}
	return reopen(f, false)
}
