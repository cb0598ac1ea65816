// Package download fetches model files over HTTP into place, verifying a
// pinned sha256 before the destination is ever visible.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	defaultRetries = 3
	userAgent      = "voxserve/1"
)

type Options struct {
	URL            string
	Destination    string
	ExpectedSHA256 string
	Retries        int
	NoProgress     bool
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// StatusError reports a non-200 answer. Client errors are not retried.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// ChecksumError reports a payload whose digest differs from the pinned one.
type ChecksumError struct {
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// DownloadFile stores opts.URL at opts.Destination. The payload is written to
// a temporary sibling and renamed only after the checksum matches, so an
// interrupted download never leaves a truncated model behind.
func DownloadFile(ctx context.Context, opts Options) error {
	if opts.URL == "" {
		return errors.New("download URL is required")
	}
	if opts.Destination == "" {
		return errors.New("destination path is required")
	}
	if opts.Retries <= 0 {
		opts.Retries = defaultRetries
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	logger := opts.Logger.With(zap.String("url", opts.URL), zap.String("destination", opts.Destination))
	expected := strings.ToLower(strings.TrimSpace(opts.ExpectedSHA256))

	if err := os.MkdirAll(filepath.Dir(opts.Destination), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		if attempt > 1 {
			logger.Warn("retrying download", zap.Int("attempt", attempt), zap.Int("max", opts.Retries), zap.Error(lastErr))
			if err := sleepContext(ctx, time.Duration(attempt)*300*time.Millisecond); err != nil {
				return err
			}
		}

		started := time.Now()
		written, err := fetch(ctx, opts, expected)
		if err == nil {
			logger.Info("download complete", zap.Int64("bytes", written), zap.Duration("elapsed", time.Since(started)))
			return nil
		}
		lastErr = err

		if !retryable(err) {
			break
		}
	}

	return lastErr
}

// VerifyFileChecksum compares the sha256 of path with expectedSHA256. An
// empty expectation always passes.
func VerifyFileChecksum(path, expectedSHA256 string) error {
	expected := strings.ToLower(strings.TrimSpace(expectedSHA256))
	if expected == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}

	if actual := hex.EncodeToString(h.Sum(nil)); actual != expected {
		return &ChecksumError{Expected: expected, Actual: actual}
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

func fetch(ctx context.Context, opts Options, expected string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(opts.Destination), filepath.Base(opts.Destination)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	hash := sha256.New()
	sinks := []io.Writer{tmp, hash}
	bar := newProgressBar(opts.NoProgress, resp.ContentLength)
	if bar != nil {
		sinks = append(sinks, bar)
	}

	written, err := io.Copy(io.MultiWriter(sinks...), resp.Body)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return written, fmt.Errorf("download body: %w", err)
	}

	if actual := hex.EncodeToString(hash.Sum(nil)); expected != "" && actual != expected {
		return written, &ChecksumError{Expected: expected, Actual: actual}
	}

	if err := tmp.Sync(); err != nil {
		return written, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, opts.Destination); err != nil {
		return written, fmt.Errorf("move temp file into destination: %w", err)
	}

	committed = true
	return written, nil
}

// newProgressBar renders on stderr only; stdout belongs to the protocol.
func newProgressBar(noProgress bool, contentLength int64) *progressbar.ProgressBar {
	if noProgress || contentLength <= 0 || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}

	return progressbar.NewOptions64(
		contentLength,
		progressbar.OptionSetDescription("downloading model"),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
