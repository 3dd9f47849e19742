// Package fetcher retrieves raw product pages over HTTP with bounded
// timeouts and retry on transient failures.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/shopsight/product-scraper/internal/config"
	"github.com/shopsight/product-scraper/internal/metrics"
	"github.com/shopsight/product-scraper/internal/models"
)

type Fetcher struct {
	client     *http.Client
	userAgent  string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func New(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent:  cfg.Scraper.UserAgent,
		timeout:    time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
		maxRetries: cfg.Scraper.MaxRetries,
		backoff:    time.Duration(cfg.Scraper.RetryBackoffMillis) * time.Millisecond,
		logger:     logger.With("component", "fetcher"),
		metrics:    m,
	}
}

// Client exposes the underlying HTTP client so tests can swap its
// transport.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch issues a GET for url and returns the body plus the final resolved
// URL after redirects. Connection errors, timeouts, 429 and 5xx responses
// are retried up to MaxRetries with exponential backoff; 4xx responses are
// permanent failures.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.Document, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			f.metrics.IncRetry()
			select {
			case <-ctx.Done():
				return nil, models.NewError(models.ErrCancelled, url, ctx.Err())
			case <-time.After(f.backoff * time.Duration(1<<(attempt-1))):
			}
		}

		doc, retryable, err := f.attempt(ctx, url)
		if err == nil {
			return doc, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			"url", url,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return nil, lastErr
}

func (f *Fetcher) attempt(ctx context.Context, url string) (*models.Document, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, models.NewError(models.ErrFetchFailed, url, err)
	}

	// Sites commonly reject obvious non-browser clients.
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() == context.Canceled {
			return nil, false, models.NewError(models.ErrCancelled, url, ctx.Err())
		}
		if isTimeout(err) {
			return nil, true, models.NewError(models.ErrTimeout, url, err)
		}
		return nil, true, models.NewError(models.ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError ||
		resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, models.NewError(models.ErrFetchFailed, url,
			fmt.Errorf("http status %d", resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, false, models.NewError(models.ErrFetchFailed, url,
			fmt.Errorf("http status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, true, models.NewError(models.ErrTimeout, url, err)
		}
		return nil, true, models.NewError(models.ErrFetchFailed, url, err)
	}

	return &models.Document{
		URL:        resp.Request.URL.String(),
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now().UTC(),
	}, false, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
