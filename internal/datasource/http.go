package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// HTTPConfig configures HTTPSource's retry/backoff behaviour, mirroring
// the teacher's httpds.Config (zero values get the same defaults).
type HTTPConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 200 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	return c
}

// HTTPSource fetches a remote CSV/metadata resource over HTTP, retrying
// transient failures with exponential backoff, and caches the downloaded
// bytes at a local path so a later fetch of the same URL is served from
// disk without a second network round trip.
type HTTPSource struct {
	client *http.Client
	cfg    HTTPConfig
	cache  *Cache
	sleep  func(time.Duration)

	// RunID tags every retry/error message this source produces, so log
	// lines from concurrent table pipelines in the same run can be
	// correlated without threading a context value through every call.
	RunID string
}

func NewHTTPSource(cfg HTTPConfig, cache *Cache) *HTTPSource {
	cfg = cfg.withDefaults()
	return &HTTPSource{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		cache:  cache,
		sleep:  time.Sleep,
		RunID:  uuid.NewString(),
	}
}

func (h *HTTPSource) Fetch(ctx context.Context, rawURL string) (string, error) {
	if h.cache != nil {
		if path, ok := h.cache.Lookup(rawURL); ok {
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	resp, err := h.doWithRetry(ctx, rawURL)
	if err != nil {
		return "", &FetchError{URL: rawURL, Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &FetchError{URL: rawURL, NotFound: true, Underlying: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 300 {
		return "", &FetchError{URL: rawURL, Underlying: fmt.Errorf("status %d", resp.StatusCode)}
	}

	path, err := h.store(rawURL, resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Underlying: err}
	}
	if h.cache != nil {
		resolved := rawURL
		if resp.Request != nil && resp.Request.URL != nil {
			resolved = resp.Request.URL.String()
		}
		_ = h.cache.StoreResolved(rawURL, resolved, path)
	}
	return path, nil
}

// ResolvedURLMismatch reports whether a previously cached fetch of rawURL
// settled on a different final URL than the one requested. The validator
// checks this once per table, after Fetch, to surface
// source_url_mismatch instead of silently treating redirected bytes as an
// exact match for the requested resource.
func (h *HTTPSource) ResolvedURLMismatch(rawURL string) (resolvedURL string, mismatched bool) {
	if h.cache == nil {
		return "", false
	}
	return h.cache.ResolvedURLMismatch(rawURL)
}

func (h *HTTPSource) store(rawURL string, body io.Reader) (string, error) {
	path := h.cache.pathFor(rawURL)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create cache file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write cache file: %w", err)
	}
	return path, nil
}

func (h *HTTPSource) doWithRetry(ctx context.Context, rawURL string) (*http.Response, error) {
	attempts := h.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
		} else if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		} else {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("run %s: retryable status %d from GET %s", h.RunID, resp.StatusCode, rawURL)
		}

		if attempt+1 >= attempts {
			return nil, lastErr
		}
		if err := sleepWithContext(ctx, h.sleep, backoffDuration(h.cfg.InitialBackoff, attempt, h.cfg.MaxBackoff)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt <= 0 {
		if initial > max {
			return max
		}
		return initial
	}
	d := initial << attempt
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, sleep func(time.Duration), d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		sleep(0)
		return nil
	}
}
