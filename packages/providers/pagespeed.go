package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
)

const psiEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// GooglePSI queries the PageSpeed Insights v5 API. Any failure collapses to
// domain.ErrProviderUnavailable; callers fall back to local timing.
type GooglePSI struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewGooglePSI(apiKey string, timeout time.Duration) *GooglePSI {
	return &GooglePSI{apiKey: apiKey, endpoint: psiEndpoint, httpClient: &http.Client{Timeout: timeout}}
}

type psiResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]struct {
			NumericValue float64 `json:"numericValue"`
		} `json:"audits"`
	} `json:"lighthouseResult"`
}

func (p *GooglePSI) Metrics(ctx context.Context, target string, strategy Strategy) (PageSpeedMetrics, error) {
	q := url.Values{}
	q.Set("url", target)
	q.Set("strategy", string(strategy))
	q.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return PageSpeedMetrics{}, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("pagespeed", "error").Inc()
		slog.Debug("PageSpeed request failed", "url", target, "error", err)
		return PageSpeedMetrics{}, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ProviderRequests.WithLabelValues("pagespeed", fmt.Sprintf("%d", resp.StatusCode)).Inc()
		slog.Debug("PageSpeed returned non-200", "url", target, "status_code", resp.StatusCode)
		return PageSpeedMetrics{}, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PageSpeedMetrics{}, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	var parsed psiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return PageSpeedMetrics{}, fmt.Errorf("%w: decode: %v", domain.ErrProviderUnavailable, err)
	}

	metrics.ProviderRequests.WithLabelValues("pagespeed", "ok").Inc()
	audits := parsed.LighthouseResult.Audits
	return PageSpeedMetrics{
		FCPms:   audits["first-contentful-paint"].NumericValue,
		LCPms:   audits["largest-contentful-paint"].NumericValue,
		CLS:     audits["cumulative-layout-shift"].NumericValue,
		FIDms:   audits["max-potential-fid"].NumericValue,
		Score01: parsed.LighthouseResult.Categories.Performance.Score,
	}, nil
}
