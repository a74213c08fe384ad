package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/jkroepke/setup-vals/internal/config"
	"github.com/jkroepke/setup-vals/internal/logger"
)

// defaultInitialInterval is the first retry delay; later delays grow
// exponentially with jitter.
const defaultInitialInterval = time.Second

// HTTPStatusError is returned for non-200 responses.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Retryable reports whether a later attempt may succeed. Client errors
// other than timeouts and rate limiting are permanent.
func (e *HTTPStatusError) Retryable() bool {
	if e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode < 400 || e.StatusCode >= 500
}

// Downloader handles HTTP downloads with retry logic
type Downloader struct {
	client          *http.Client
	tempDir         string
	userAgent       string
	retries         int
	initialInterval time.Duration
	log             *logger.Logger
}

// NewDownloader creates a downloader placing files in tempDir
func NewDownloader(tempDir string, httpCfg config.HTTPConfig, log *logger.Logger) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: httpCfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Release assets redirect to object storage; allow up to 10 hops
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		tempDir:         tempDir,
		userAgent:       httpCfg.UserAgent,
		retries:         httpCfg.Retries,
		initialInterval: defaultInitialInterval,
		log:             log,
	}
}

// DownloadTool downloads url to a new uniquely named file in the temp
// directory and returns its path.
func (d *Downloader) DownloadTool(ctx context.Context, url string) (string, error) {
	destPath := filepath.Join(d.tempDir, uuid.NewString())

	if err := d.DownloadToFile(ctx, url, destPath); err != nil {
		return "", err
	}

	return destPath, nil
}

// DownloadToFile downloads a URL to a specific file path
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	attempts := 0

	operation := func() (struct{}, error) {
		attempts++

		err := d.downloadOnce(ctx, url, destPath)
		if err == nil {
			return struct{}{}, nil
		}

		// Don't retry on context cancellation or client errors
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return struct{}{}, backoff.Permanent(err)
		}

		d.log.Debugw("download attempt failed", "url", url, "attempt", attempts, "error", err)
		return struct{}{}, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.initialInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(d.retries+1)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("download failed after %d attempts: %w", attempts, err)
	}

	return nil
}

// downloadOnce performs a single download attempt
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	// Track whether we need to clean up the temp file
	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}
