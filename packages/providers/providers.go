// Package providers wraps the optional third-party signal sources. Every
// implementation reports absence with domain.ErrProviderUnavailable so the
// extractors never branch on configuration.
package providers

import (
	"context"

	"sitepulse/packages/domain"
)

type Strategy string

const (
	StrategyDesktop Strategy = "desktop"
	StrategyMobile  Strategy = "mobile"
)

// PageSpeedMetrics are lab metrics for one url+strategy.
type PageSpeedMetrics struct {
	FCPms   float64 `json:"fcp_ms"`
	LCPms   float64 `json:"lcp_ms"`
	CLS     float64 `json:"cls"`
	FIDms   float64 `json:"fid_ms"`
	Score01 float64 `json:"performance_score"`
}

// LoadTimeSeconds is the load-time proxy: max(FCP, LCP) converted to seconds.
func (m PageSpeedMetrics) LoadTimeSeconds() float64 {
	ms := m.FCPms
	if m.LCPms > ms {
		ms = m.LCPms
	}
	return ms / 1000.0
}

type PageSpeed interface {
	Metrics(ctx context.Context, url string, strategy Strategy) (PageSpeedMetrics, error)
}

type MobileVerdict string

const (
	MobileFriendly    MobileVerdict = "MOBILE_FRIENDLY"
	NotMobileFriendly MobileVerdict = "NOT_MOBILE_FRIENDLY"
)

type MobileFriendliness interface {
	Verdict(ctx context.Context, url string) (MobileVerdict, error)
}

// Set is what the extractors receive; both fields are always non-nil.
type Set struct {
	PageSpeed PageSpeed
	Mobile    MobileFriendliness
}

// Unavailable is the required basic implementation of both interfaces.
type Unavailable struct{}

func (Unavailable) Metrics(context.Context, string, Strategy) (PageSpeedMetrics, error) {
	return PageSpeedMetrics{}, domain.ErrProviderUnavailable
}

func (Unavailable) Verdict(context.Context, string) (MobileVerdict, error) {
	return "", domain.ErrProviderUnavailable
}

// NoneAvailable is the default provider set.
func NoneAvailable() Set {
	return Set{PageSpeed: Unavailable{}, Mobile: Unavailable{}}
}
