// Package fetcher retrieves target pages per viewport profile.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sitepulse/packages/domain"
)

const maxBodyBytes = 4 << 20

// Client is the basic (no browser) fetcher. It captures HTML, headers and
// wall-clock load time; DOM facts need the rendered fetcher.
type Client struct {
	httpClient   *http.Client
	probeClient  *http.Client
	userAgent    string
}

func New(fetchTimeout, probeTimeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: fetchTimeout},
		probeClient: &http.Client{Timeout: probeTimeout},
		userAgent:   userAgent,
	}
}

// Fetch retrieves one snapshot of url under the given viewport profile.
// Non-2xx responses and transport failures come back as *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, url string, profile domain.ViewportProfile) (*domain.PageSnapshot, error) {
	slog.Debug("Fetching page", "url", url, "profile", profile.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchNetwork, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Viewport-Width", fmt.Sprintf("%d", profile.Width))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportErr(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("Fetch returned bad status code", "url", url, "status_code", resp.StatusCode)
		return nil, &domain.FetchError{Kind: domain.FetchBadStatus, URL: url, Status: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransportErr(url, err)
	}
	elapsed := time.Since(start)

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	snap := &domain.PageSnapshot{
		Profile:    profile,
		FinalURL:   resp.Request.URL.String(),
		HTTPStatus: resp.StatusCode,
		Headers:    headers,
		RawHTML:    string(bodyBytes),
		LoadTime:   elapsed,
	}
	slog.Debug("Fetched page", "url", url, "profile", profile.Name,
		"status", resp.StatusCode, "bytes", len(snap.RawHTML), "elapsed", elapsed)
	return snap, nil
}

// HeadProbe measures round-trip time without pulling the body. Last-resort
// timing source when full fetches are unavailable.
func (c *Client) HeadProbe(ctx context.Context, url string) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, &domain.FetchError{Kind: domain.FetchNetwork, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.probeClient.Do(req)
	if err != nil {
		return 0, classifyTransportErr(url, err)
	}
	resp.Body.Close()
	return time.Since(start), nil
}

func classifyTransportErr(url string, err error) *domain.FetchError {
	kind := domain.FetchNetwork
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		kind = domain.FetchTimeout
	}
	return &domain.FetchError{Kind: kind, URL: url, Err: err}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	if errors.As(err, &t) {
		return t.Timeout()
	}
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}
