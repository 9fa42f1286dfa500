// Package download implements the streamed-GET-plus-checksum-plus-cache
// downloader (C5), adapted near-directly from the predecessor's pkg/download:
// same functional-options shape, same redirect-logging HTTP client, same
// progress reader. It adds the pieces the design require that the
// predecessor has no equivalent of: CDN URL rewriting, exponential-backoff
// retry, and a context-based per-request deadline.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/vx/internal/cache"
	"github.com/flanksource/vx/internal/checksum"
	"github.com/flanksource/vx/internal/vxerrors"
)

// DefaultTimeout is the per-request deadline absent an
// explicit context deadline.
const DefaultTimeout = 300 * time.Second

// Option configures a Download call.
type Option func(*config)

type config struct {
	expectedChecksum string
	cacheDir         string
	task             *task.Task
	skipProgress     bool
	retry            RetryPolicy
	rewrite          func(string) string
	timeout          time.Duration
}

// WithChecksum sets the expected checksum ("type:value" or bare hex,
// type-detected) to verify the downloaded file against.
func WithChecksum(expected string) Option {
	return func(c *config) { c.expectedChecksum = strings.TrimSpace(expected) }
}

// WithCacheDir enables the content-addressed cache at dir.
func WithCacheDir(dir string) Option {
	return func(c *config) { c.cacheDir = dir }
}

// WithTask attaches a clicky task for progress reporting, the same
// SetProgress/SetDescription/Infof surface the predecessor's ProgressReader uses.
func WithTask(t *task.Task) Option {
	return func(c *config) { c.task = t }
}

// WithoutProgress disables progress updates even if a task is attached.
func WithoutProgress() Option {
	return func(c *config) { c.skipProgress = true }
}

// WithRetry overrides the default retry policy.
func WithRetry(policy RetryPolicy) Option {
	return func(c *config) { c.retry = policy }
}

// WithRewrite installs a CDN URL rewrite function applied before every
// connection attempt.
func WithRewrite(rewrite func(string) string) Option {
	return func(c *config) { c.rewrite = rewrite }
}

// WithTimeout overrides DefaultTimeout for this download.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

func newHTTPClient(t *task.Task) *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (limit: 10)")
			}
			if t != nil && len(via) > 0 {
				t.V(4).Infof("redirect: %s -> %s", via[len(via)-1].URL, req.URL)
			}
			return nil
		},
	}
}

// progressReader wraps the response body, forwarding byte counts to the
// attached task at most 10 times a second.
type progressReader struct {
	io.Reader
	total, current int64
	task           *task.Task
	last           time.Time
	start          time.Time
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.current += int64(n)
	now := time.Now()
	if now.Sub(pr.last) >= 100*time.Millisecond {
		if pr.total > 0 {
			pr.task.SetProgress(int(pr.current), int(pr.total))
		}
		pr.task.SetDescription(fmt.Sprintf("%d/%d bytes", pr.current, pr.total))
		pr.last = now
	}
	return n, err
}

// Get downloads url to dest, verifying against cfg.expectedChecksum when set,
// honoring the cache, retry policy, CDN rewrite, and deadline described in
// the design. On checksum mismatch it returns a *vxerrors.Error of kind
// KindChecksumMismatch; on exhausted retries, KindDownloadFailed.
func Get(ctx context.Context, url, dest string, opts ...Option) error {
	cfg := &config{retry: DefaultRetryPolicy(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	filename := filepath.Base(dest)
	if cachePath, ok := cache.Lookup(cfg.cacheDir, url, filename); ok {
		if cfg.expectedChecksum == "" || checksumMatches(cachePath, cfg.expectedChecksum) {
			return cache.CopyOut(cachePath, dest)
		}
	}

	effectiveURL := url
	if cfg.rewrite != nil {
		effectiveURL = cfg.rewrite(url)
	}

	err := WithBackoff(ctx, cfg.retry, func(ctx context.Context) error {
		return attemptDownload(ctx, effectiveURL, dest, cfg)
	})
	if err != nil {
		if vxErr, ok := err.(*vxerrors.Error); ok {
			return vxErr
		}
		return vxerrors.DownloadFailed(url, err.Error(), err)
	}

	if err := cache.Store(cfg.cacheDir, url, dest); err != nil && cfg.task != nil {
		cfg.task.V(3).Infof("failed to save to cache: %v", err)
	}
	return nil
}

func attemptDownload(ctx context.Context, url, dest string, cfg *config) error {
	reqCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	client := newHTTPClient(cfg.task)
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		out.Close()
		if _, statErr := os.Stat(tmp); statErr == nil {
			os.Remove(tmp)
		}
	}()

	var reader io.Reader = resp.Body
	if cfg.task != nil && !cfg.skipProgress {
		reader = &progressReader{Reader: resp.Body, total: resp.ContentLength, task: cfg.task, start: time.Now(), last: time.Now()}
	}

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("streaming download body: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if cfg.expectedChecksum != "" && !checksumMatches(tmp, cfg.expectedChecksum) {
		actual, _ := checksum.OfFile(tmp, checksum.DetectHashType(cfg.expectedChecksum))
		expected, _ := checksum.Parse(cfg.expectedChecksum)
		return vxerrors.ChecksumMismatch(dest, expected, actual)
	}

	return os.Rename(tmp, dest)
}

func checksumMatches(path, expected string) bool {
	ok, _, err := checksum.Verify(path, expected)
	return err == nil && ok
}
