// Package images persists found images to the saved_images working
// directory and hands them over to the DaVinci export directory.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Placeholder responses (error pages, 1px gifs) are smaller than any real
// photo; anything under this is rejected.
const minImageBytes = 1000

// maxConcurrent bounds in-flight downloads.
const maxConcurrent = 5

var knownExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
}

// Downloader fetches image URLs into a target directory.
type Downloader struct {
	HTTPClient *http.Client
	// SavedDir receives downloads; UsedDir receives images marked as used.
	SavedDir string
	UsedDir  string
}

// NewDownloader returns a Downloader writing into the standard working
// directories under root.
func NewDownloader(root string) *Downloader {
	return &Downloader{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		SavedDir: filepath.Join(root, "saved_images"),
		UsedDir:  filepath.Join(root, "used_in_davinci"),
	}
}

// DownloadAll fetches the given URLs concurrently, at most five in flight,
// and returns the paths of the files that made it to disk. Individual
// failures are logged and skipped.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string) []string {
	if err := os.MkdirAll(d.SavedDir, 0755); err != nil {
		slog.Error("Failed to create download directory", "dir", d.SavedDir, "error", err)
		return nil
	}

	paths := make([]string, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, url := range urls {
		g.Go(func() error {
			path, err := d.downloadOne(ctx, url, i)
			if err != nil {
				slog.Warn("Image download failed", "url", url, "error", err)
				return nil
			}
			paths[i] = path
			return nil
		})
	}
	_ = g.Wait()

	downloaded := make([]string, 0, len(urls))
	for _, path := range paths {
		if path != "" {
			downloaded = append(downloaded, path)
		}
	}
	return downloaded
}

func (d *Downloader) downloadOne(ctx context.Context, url string, index int) (string, error) {
	data, err := d.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if len(data) < minImageBytes {
		return "", fmt.Errorf("image too small (likely placeholder), size: %d bytes", len(data))
	}

	name := fmt.Sprintf("image_%d_%s.%s", index+1, uuid.NewString()[:8], extensionFor(url))
	path := filepath.Join(d.SavedDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	slog.Debug("Downloaded image", "url", url, "path", path, "bytes", len(data))
	return path, nil
}

// fetch retrieves the image bytes, retrying twice on 429 with a short
// backoff.
func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	const attempts = 3

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

		resp, err := d.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < attempts {
			resp.Body.Close()
			slog.Debug("Rate limited, retrying download", "url", url, "attempt", attempt)
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("image URL returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read image data: %w", err)
		}
		return data, nil
	}
}

// MarkUsed moves a saved image into the DaVinci export directory.
func (d *Downloader) MarkUsed(name string) (string, error) {
	if err := os.MkdirAll(d.UsedDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	src := filepath.Join(d.SavedDir, filepath.Base(name))
	dst := filepath.Join(d.UsedDir, filepath.Base(name))
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("failed to move image: %w", err)
	}
	return dst, nil
}

// extensionFor infers a file extension from the URL, defaulting to jpg.
func extensionFor(url string) string {
	trimmed := url
	if i := strings.IndexAny(trimmed, "?#"); i != -1 {
		trimmed = trimmed[:i]
	}
	if i := strings.LastIndex(trimmed, "."); i != -1 {
		ext := strings.ToLower(trimmed[i+1:])
		if knownExtensions[ext] {
			return ext
		}
	}
	return "jpg"
}
