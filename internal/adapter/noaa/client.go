package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/swe-alert-service/internal/observability"
	"github.com/couchcryptid/swe-alert-service/internal/snowplot"
)

const (
	userAgent = "swe-alert-service/1.0 (+https://github.com/couchcryptid/swe-alert-service)"

	// maxPageBytes bounds how much of a response body is read.
	maxPageBytes = 8 << 20
)

// ErrPageTooLarge is returned when the body exceeds maxPageBytes.
var ErrPageTooLarge = errors.New("page exceeds size limit")

// StatusError is returned when the page responds with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client retrieves NWRFC snow plot pages over HTTP.
type Client struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a page client with the given request timeout.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the page body at url decoded to UTF-8. Transport failures are
// wrapped; non-2xx responses return a *StatusError and bodies over the size
// limit ErrPageTooLarge.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	c.logger.Debug("fetching snow plot page", "url", url, "timeout", c.httpClient.Timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("fetch failed", "url", url, "error", err)
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("fetch returned error status", "url", url, "status", resp.StatusCode)
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
	if err != nil {
		c.logger.Error("read body failed", "url", url, "error", err)
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	if len(raw) > maxPageBytes {
		c.logger.Error("page too large", "url", url, "limit_bytes", maxPageBytes)
		return "", fmt.Errorf("read %s: %w (%d bytes)", url, ErrPageTooLarge, maxPageBytes)
	}

	body, err := snowplot.Decode(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		c.logger.Error("decode body failed", "url", url, "error", err)
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	c.logger.Debug("fetched snow plot page", "url", url, "bytes", len(raw))
	return body, nil
}
