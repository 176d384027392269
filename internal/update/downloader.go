package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Downloader fetches URLs to disk.
type Downloader struct {
	client    *http.Client
	userAgent string
}

// NewDownloader creates a new downloader. Timeouts come from the caller's context.
func NewDownloader(userAgent string) *Downloader {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Downloader{
		client:    &http.Client{},
		userAgent: userAgent,
	}
}

// get issues the request and checks the status. The caller closes the body.
func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()

		return nil, fmt.Errorf("%w: unexpected status: %d", ErrDownloadFailed, resp.StatusCode)
	}

	return resp, nil
}

// DownloadTemp downloads url into a new temporary file whose name ends with
// the base name of assetName, so the archive suffix survives.
// The caller removes the returned path.
func (d *Downloader) DownloadTemp(ctx context.Context, url, assetName string) (string, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	tmpFile, err := os.CreateTemp("", "cm-*-"+filepath.Base(assetName))
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %w", ErrDownloadFailed, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)

		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	return tmpPath, nil
}

// DownloadToFile downloads url to dest, creating parent directories.
// The body is staged next to dest and renamed over it, so a failed transfer
// leaves any existing file intact. Returns the number of bytes written.
func (d *Downloader) DownloadToFile(ctx context.Context, url, dest string) (int64, error) {
	resp, err := d.get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("%w: create dest dir: %w", ErrDownloadFailed, err)
	}

	var n int64
	err = writeAtomic(dest, 0o644, func(w io.Writer) error {
		var copyErr error
		n, copyErr = io.Copy(w, resp.Body)

		return copyErr
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	return n, nil
}

// writeAtomic writes through fill into a temporary file in dest's directory
// and renames it over dest.
func writeAtomic(dest string, perm os.FileMode, fill func(io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := fill(tmpFile); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)

		return err
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("chmod failed: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("rename failed: %w", err)
	}

	return nil
}
